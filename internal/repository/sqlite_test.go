package repository

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lucianareynaud/biogpt/internal/domain"
)

func newResultStore(t *testing.T) *SQLiteResultStore {
	t.Helper()
	store, err := NewSQLiteResultStore(filepath.Join(t.TempDir(), "results.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func sampleResult(runID, rsid, chromosome string, position int64) *domain.VariantResult {
	return &domain.VariantResult{
		ID:    rsid + "-" + runID,
		RunID: runID,
		Variant: domain.StandardizedVariant{
			RSID:       rsid,
			Chromosome: chromosome,
			Position:   position,
			Genotype:   "AG",
			Source:     "23andMe",
		},
		Classification: domain.UncertainSignificance,
		Confidence:     0.6,
		Interpretation: "insufficient evidence",
		CreatedAt:      time.Now().UTC().Truncate(time.Second),
	}
}

func TestSaveAndLoadResults(t *testing.T) {
	store := newResultStore(t)
	ctx := context.Background()

	result := sampleResult("run-1", "rs123", "7", 117559590)
	result.Classification = domain.Pathogenic
	result.Ledger.Add(domain.EvidenceItem{Code: "PS1", Direction: domain.EvidencePathogenic})
	result.ClinVar = &domain.ClinVarRecord{RSID: "rs123", ClinicalSignificance: "Pathogenic", GeneSymbol: "CFTR"}

	require.NoError(t, store.SaveResult(ctx, result))

	loaded, err := store.ResultsByRun(ctx, "run-1")
	require.NoError(t, err)
	require.Len(t, loaded, 1)

	assert.Equal(t, *result, loaded[0])
	require.NotNil(t, loaded[0].ClinVar)
	assert.Equal(t, "CFTR", loaded[0].ClinVar.GeneSymbol)
	assert.Equal(t, []string{"PS1"}, loaded[0].Ledger.Codes())
}

func TestResultsByRunCanonicalOrder(t *testing.T) {
	store := newResultStore(t)
	ctx := context.Background()

	// Inserted out of order; chromosome 10 must not sort before 2.
	for _, r := range []*domain.VariantResult{
		sampleResult("run-1", "rs4", "MT", 100),
		sampleResult("run-1", "rs3", "10", 500),
		sampleResult("run-1", "rs2", "2", 900),
		sampleResult("run-1", "rs1", "2", 100),
	} {
		require.NoError(t, store.SaveResult(ctx, r))
	}

	loaded, err := store.ResultsByRun(ctx, "run-1")
	require.NoError(t, err)
	require.Len(t, loaded, 4)

	var order []string
	for _, r := range loaded {
		order = append(order, r.Variant.RSID)
	}
	assert.Equal(t, []string{"rs1", "rs2", "rs3", "rs4"}, order)
}

func TestResultsByRunIsolatesRuns(t *testing.T) {
	store := newResultStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveResult(ctx, sampleResult("run-1", "rs1", "1", 100)))
	require.NoError(t, store.SaveResult(ctx, sampleResult("run-2", "rs2", "1", 200)))

	loaded, err := store.ResultsByRun(ctx, "run-1")
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, "rs1", loaded[0].Variant.RSID)

	empty, err := store.ResultsByRun(ctx, "run-3")
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestSaveResultDuplicateID(t *testing.T) {
	store := newResultStore(t)
	ctx := context.Background()

	result := sampleResult("run-1", "rs1", "1", 100)
	require.NoError(t, store.SaveResult(ctx, result))
	assert.Error(t, store.SaveResult(ctx, result))
}

func TestFaultedResultRoundTrip(t *testing.T) {
	store := newResultStore(t)
	ctx := context.Background()

	result := sampleResult("run-1", "rs1", "1", 100)
	result.Faulted = true
	result.FaultReason = "classification panic: boom"
	require.NoError(t, store.SaveResult(ctx, result))

	loaded, err := store.ResultsByRun(ctx, "run-1")
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.True(t, loaded[0].Faulted)
	assert.Equal(t, "classification panic: boom", loaded[0].FaultReason)
}
