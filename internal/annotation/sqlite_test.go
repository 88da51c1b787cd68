package annotation

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lucianareynaud/biogpt/internal/domain"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	log := logrus.New()
	log.SetOutput(io.Discard)

	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "annotations.db"), 100, log)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func seedClinVar(t *testing.T, store *SQLiteStore, records ...domain.ClinVarRecord) {
	t.Helper()
	for _, record := range records {
		require.NoError(t, store.UpsertClinVar(context.Background(), record))
	}
}

func seedGnomad(t *testing.T, store *SQLiteStore, records ...domain.GnomadRecord) {
	t.Helper()
	for _, record := range records {
		require.NoError(t, store.UpsertGnomad(context.Background(), record))
	}
}

func TestClinVarBatch(t *testing.T) {
	store := newTestStore(t)
	seedClinVar(t, store,
		domain.ClinVarRecord{
			RSID:                 "rs429358",
			Chromosome:           "19",
			Position:             44908684,
			ReferenceAllele:      "T",
			AlternateAllele:      "C",
			ClinicalSignificance: "Pathogenic",
			ReviewStatus:         "reviewed by expert panel",
			GeneSymbol:           "APOE",
			MolecularConsequence: "missense_variant",
		},
		domain.ClinVarRecord{
			RSID:                 "rs7412",
			Chromosome:           "19",
			Position:             44908822,
			ClinicalSignificance: "Benign",
			ReviewStatus:         "criteria provided, multiple submitters",
		},
	)

	found, err := store.ClinVarBatch(context.Background(), []string{"rs429358", "rs7412", "rs999999"})
	require.NoError(t, err)
	require.Len(t, found, 2)

	assert.Equal(t, "APOE", found["rs429358"].GeneSymbol)
	assert.Equal(t, "Pathogenic", found["rs429358"].ClinicalSignificance)
	assert.Equal(t, int64(44908822), found["rs7412"].Position)
	_, ok := found["rs999999"]
	assert.False(t, ok)
}

func TestClinVarBatchServedFromCache(t *testing.T) {
	store := newTestStore(t)
	record := domain.ClinVarRecord{
		RSID:                 "rs1",
		ClinicalSignificance: "Pathogenic",
		ReviewStatus:         "criteria provided",
	}
	seedClinVar(t, store, record)

	first, err := store.ClinVarBatch(context.Background(), []string{"rs1"})
	require.NoError(t, err)
	require.Len(t, first, 1)

	// A second lookup is answered by the cache even if the row vanishes
	// underneath.
	_, err = store.db.Exec("DELETE FROM clinvar_variants")
	require.NoError(t, err)

	second, err := store.ClinVarBatch(context.Background(), []string{"rs1"})
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestGnomadBatch(t *testing.T) {
	store := newTestStore(t)
	seedGnomad(t, store,
		domain.GnomadRecord{RSID: "rs1", AlleleFrequency: 0.31, AlleleCount: 4712, AlleleNumber: 15200, Population: "global"},
		domain.GnomadRecord{RSID: "rs2", AlleleFrequency: 0.00002, AlleleCount: 3, AlleleNumber: 150000, Population: "nfe"},
	)

	found, err := store.GnomadBatch(context.Background(), []string{"rs1", "rs2", "rs3"})
	require.NoError(t, err)
	require.Len(t, found, 2)

	assert.InDelta(t, 0.31, found["rs1"].AlleleFrequency, 1e-9)
	assert.Equal(t, "nfe", found["rs2"].Population)
}

func TestBatchLookupChunking(t *testing.T) {
	store := newTestStore(t)

	total := lookupChunkSize + 50
	rsids := make([]string, total)
	for i := 0; i < total; i++ {
		rsid := fmt.Sprintf("rs%d", i+1)
		rsids[i] = rsid
		seedGnomad(t, store, domain.GnomadRecord{RSID: rsid, AlleleFrequency: 0.01})
	}

	found, err := store.GnomadBatch(context.Background(), rsids)
	require.NoError(t, err)
	assert.Len(t, found, total)
}

func TestEmptyBatch(t *testing.T) {
	store := newTestStore(t)

	clinvar, err := store.ClinVarBatch(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, clinvar)

	gnomad, err := store.GnomadBatch(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, gnomad)
}

func TestPathogenicVariants(t *testing.T) {
	store := newTestStore(t)
	seedClinVar(t, store,
		domain.ClinVarRecord{RSID: "rs1", ClinicalSignificance: "Pathogenic", GeneSymbol: "BRCA1"},
		domain.ClinVarRecord{RSID: "rs2", ClinicalSignificance: "Likely pathogenic", GeneSymbol: "BRCA2"},
		domain.ClinVarRecord{RSID: "rs3", ClinicalSignificance: "Benign"},
		domain.ClinVarRecord{RSID: "rs4", ClinicalSignificance: "Uncertain significance"},
	)

	records, err := store.PathogenicVariants(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "rs1", records[0].RSID)
	assert.Equal(t, "rs2", records[1].RSID)

	limited, err := store.PathogenicVariants(context.Background(), 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestUpsertClinVarRefreshesRecord(t *testing.T) {
	store := newTestStore(t)
	seedClinVar(t, store, domain.ClinVarRecord{RSID: "rs1", ClinicalSignificance: "Uncertain significance"})
	seedClinVar(t, store, domain.ClinVarRecord{RSID: "rs1", ClinicalSignificance: "Pathogenic"})

	found, err := store.ClinVarBatch(context.Background(), []string{"rs1"})
	require.NoError(t, err)
	assert.Equal(t, "Pathogenic", found["rs1"].ClinicalSignificance)
}
