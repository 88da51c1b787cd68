package domain

import "time"

// VariantResult is the terminal record produced for one variant by the
// classification pipeline. It is created once and only ever read afterwards,
// for persistence, reports and chat context.
type VariantResult struct {
	ID      string              `json:"id"`
	RunID   string              `json:"run_id"`
	Variant StandardizedVariant `json:"variant"`

	Classification Classification `json:"classification"`
	// Faulted marks results whose classification fell back to VUS because of
	// an internal error rather than genuinely insufficient evidence.
	Faulted     bool           `json:"faulted,omitempty"`
	FaultReason string         `json:"fault_reason,omitempty"`
	Ledger      EvidenceLedger `json:"evidence"`
	Confidence  float64        `json:"confidence_score"`

	Interpretation string `json:"interpretation"`

	ClinVar *ClinVarRecord `json:"clinvar_info,omitempty"`
	Gnomad  *GnomadRecord  `json:"gnomad_info,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// ClassificationTally summarizes a completed run's results per tier.
type ClassificationTally struct {
	Total            int `json:"total"`
	Pathogenic       int `json:"pathogenic"`
	LikelyPathogenic int `json:"likely_pathogenic"`
	VUS              int `json:"vus"`
	LikelyBenign     int `json:"likely_benign"`
	Benign           int `json:"benign"`
}

// Add counts one classification into the tally.
func (t *ClassificationTally) Add(c Classification) {
	t.Total++
	switch c {
	case Pathogenic:
		t.Pathogenic++
	case LikelyPathogenic:
		t.LikelyPathogenic++
	case UncertainSignificance:
		t.VUS++
	case LikelyBenign:
		t.LikelyBenign++
	case Benign:
		t.Benign++
	}
}

// ProcessingRun tracks one end-to-end traversal of an uploaded file.
// The orchestrator is the sole writer; status-polling callers read snapshots
// and must tolerate mid-update values. FilePath is serialized so run stores
// can round-trip it; API responses use their own view and never expose it.
type ProcessingRun struct {
	ID       string `json:"run_id"`
	Filename string `json:"filename"`
	FilePath string `json:"file_path,omitempty"`
	FileSize int64  `json:"file_size"`

	Status   ProcessingStatus `json:"status"`
	Progress float64          `json:"progress"`
	Message  string           `json:"message"`

	TotalVariants     int      `json:"total_variants"`
	ProcessedVariants int      `json:"variants_processed"`
	Errors            []string `json:"errors"`

	Summary *ClassificationTally `json:"summary,omitempty"`

	CreatedAt   time.Time  `json:"created_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// Clone returns a deep copy of the run so stores can hand out snapshots
// without exposing the orchestrator's working state.
func (r *ProcessingRun) Clone() *ProcessingRun {
	cp := *r
	cp.Errors = append([]string(nil), r.Errors...)
	if r.Summary != nil {
		s := *r.Summary
		cp.Summary = &s
	}
	if r.CompletedAt != nil {
		t := *r.CompletedAt
		cp.CompletedAt = &t
	}
	return &cp
}
