package domain

import "context"

// AnnotationStore provides bulk keyed lookups against the reference
// knowledgebases. Missing identifiers are simply absent from the returned
// map; only infrastructure failures produce an error.
type AnnotationStore interface {
	ClinVarBatch(ctx context.Context, rsids []string) (map[string]ClinVarRecord, error)
	GnomadBatch(ctx context.Context, rsids []string) (map[string]GnomadRecord, error)
}

// ResultStore persists terminal variant results keyed by result and run
// identifiers.
type ResultStore interface {
	SaveResult(ctx context.Context, result *VariantResult) error
	ResultsByRun(ctx context.Context, runID string) ([]VariantResult, error)
	Close() error
}

// RunStore holds processing-run state for status polling. Implementations
// must return snapshots from Get so concurrent readers never observe the
// orchestrator's working copy. Runs are retained until explicitly purged.
type RunStore interface {
	Get(ctx context.Context, runID string) (*ProcessingRun, error)
	Put(ctx context.Context, run *ProcessingRun) error
	Delete(ctx context.Context, runID string) error
}

// TextGenerator is the interface to the external text-generation service
// used for the chat surface.
type TextGenerator interface {
	Generate(ctx context.Context, prompt string, maxTokens int) (string, error)
}
