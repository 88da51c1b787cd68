// Package domain contains the core entities for consumer genome analysis:
// parsed and standardized variants, knowledgebase annotation records,
// evidence ledgers, classifications and processing runs.
//
// Classifications follow a deliberately simplified subset of the ACMG-2015
// five-tier scheme; evidence codes are loosely modeled on, but not identical
// to, the published criterion codes.
package domain

// Classification is the five-tier clinical-actionability label assigned to a
// variant, ordered here from most to least clinically actionable.
type Classification string

const (
	Pathogenic            Classification = "Pathogenic"
	LikelyPathogenic      Classification = "Likely Pathogenic"
	UncertainSignificance Classification = "VUS"
	LikelyBenign          Classification = "Likely Benign"
	Benign                Classification = "Benign"
)

// IsValid reports whether the classification is one of the five known tiers.
func (c Classification) IsValid() bool {
	switch c {
	case Pathogenic, LikelyPathogenic, UncertainSignificance, LikelyBenign, Benign:
		return true
	default:
		return false
	}
}

// String returns the string representation of the classification.
func (c Classification) String() string {
	return string(c)
}

// SeverityRank orders classifications from most actionable (0) to least (4).
// Unknown labels rank after all known ones.
func (c Classification) SeverityRank() int {
	switch c {
	case Pathogenic:
		return 0
	case LikelyPathogenic:
		return 1
	case UncertainSignificance:
		return 2
	case LikelyBenign:
		return 3
	case Benign:
		return 4
	default:
		return 5
	}
}

// RequiresClinicalAction reports whether the classification warrants
// clinical follow-up.
func (c Classification) RequiresClinicalAction() bool {
	switch c {
	case Pathogenic, LikelyPathogenic:
		return true
	default:
		return false
	}
}

// EvidenceDirection indicates which way a piece of evidence points.
type EvidenceDirection string

const (
	EvidencePathogenic  EvidenceDirection = "PATHOGENIC"
	EvidenceBenign      EvidenceDirection = "BENIGN"
	EvidenceSupporting  EvidenceDirection = "SUPPORTING"
	EvidenceConflicting EvidenceDirection = "CONFLICTING"
)

// IsValid reports whether the direction is one of the four known values.
func (d EvidenceDirection) IsValid() bool {
	switch d {
	case EvidencePathogenic, EvidenceBenign, EvidenceSupporting, EvidenceConflicting:
		return true
	default:
		return false
	}
}

// ProcessingStatus tracks the lifecycle of one file-processing run.
type ProcessingStatus string

const (
	StatusPending    ProcessingStatus = "pending"
	StatusProcessing ProcessingStatus = "processing"
	StatusCompleted  ProcessingStatus = "completed"
	StatusFailed     ProcessingStatus = "failed"
)

// Terminal reports whether the status is a final state.
func (s ProcessingStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// chromosomeOrder is the canonical genomic sort order: autosomes 1-22,
// then X, Y and the mitochondrial contig.
var chromosomeOrder = []string{
	"1", "2", "3", "4", "5", "6", "7", "8", "9", "10",
	"11", "12", "13", "14", "15", "16", "17", "18", "19", "20",
	"21", "22", "X", "Y", "MT",
}

var chromosomeRank = func() map[string]int {
	m := make(map[string]int, len(chromosomeOrder))
	for i, c := range chromosomeOrder {
		m[c] = i
	}
	return m
}()

// ChromosomeRank returns the canonical rank of a chromosome name and whether
// the name is part of the valid set.
func ChromosomeRank(chromosome string) (int, bool) {
	rank, ok := chromosomeRank[chromosome]
	return rank, ok
}

// ValidChromosome reports whether the chromosome name is in the accepted
// set 1-22, X, Y, MT.
func ValidChromosome(chromosome string) bool {
	_, ok := chromosomeRank[chromosome]
	return ok
}

// Chromosomes returns the canonical chromosome ordering.
func Chromosomes() []string {
	out := make([]string, len(chromosomeOrder))
	copy(out, chromosomeOrder)
	return out
}
