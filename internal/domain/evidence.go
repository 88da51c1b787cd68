package domain

// EvidenceItem is one fired rule in the evidence ledger. Code is the short
// rule mnemonic (BA1, PVS1, ...), Evidence the concrete observation that
// triggered it.
type EvidenceItem struct {
	Code        string            `json:"code"`
	Direction   EvidenceDirection `json:"direction"`
	Description string            `json:"description"`
	Evidence    string            `json:"evidence"`
}

// EvidenceLedger groups fired evidence items by direction, in append order.
// A ledger belongs to exactly one classification pass and is never shared
// across variants.
type EvidenceLedger struct {
	Pathogenic  []EvidenceItem `json:"pathogenic"`
	Benign      []EvidenceItem `json:"benign"`
	Supporting  []EvidenceItem `json:"supporting_evidence"`
	Conflicting []EvidenceItem `json:"conflicting_evidence"`
}

// Add appends the item to the bucket matching its direction. Items with an
// unknown direction are dropped.
func (l *EvidenceLedger) Add(item EvidenceItem) {
	switch item.Direction {
	case EvidencePathogenic:
		l.Pathogenic = append(l.Pathogenic, item)
	case EvidenceBenign:
		l.Benign = append(l.Benign, item)
	case EvidenceSupporting:
		l.Supporting = append(l.Supporting, item)
	case EvidenceConflicting:
		l.Conflicting = append(l.Conflicting, item)
	}
}

// Count returns the total number of items across all buckets.
func (l EvidenceLedger) Count() int {
	return len(l.Pathogenic) + len(l.Benign) + len(l.Supporting) + len(l.Conflicting)
}

// Codes returns the fired rule codes in bucket order (pathogenic, benign,
// supporting, conflicting), preserving append order within each bucket.
func (l EvidenceLedger) Codes() []string {
	codes := make([]string, 0, l.Count())
	for _, bucket := range [][]EvidenceItem{l.Pathogenic, l.Benign, l.Supporting, l.Conflicting} {
		for _, item := range bucket {
			codes = append(codes, item.Code)
		}
	}
	return codes
}
