package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassificationIsValid(t *testing.T) {
	for _, c := range []Classification{Pathogenic, LikelyPathogenic, UncertainSignificance, LikelyBenign, Benign} {
		assert.True(t, c.IsValid(), c)
	}
	assert.False(t, Classification("Probably Fine").IsValid())
}

func TestClassificationSeverityRank(t *testing.T) {
	ordered := []Classification{Pathogenic, LikelyPathogenic, UncertainSignificance, LikelyBenign, Benign}
	for i := 1; i < len(ordered); i++ {
		assert.Less(t, ordered[i-1].SeverityRank(), ordered[i].SeverityRank())
	}
}

func TestChromosomeRank(t *testing.T) {
	tests := []struct {
		chromosome string
		rank       int
		ok         bool
	}{
		{"1", 0, true},
		{"22", 21, true},
		{"X", 22, true},
		{"Y", 23, true},
		{"MT", 24, true},
		{"23", 0, false},
		{"chr1", 0, false},
		{"", 0, false},
	}

	for _, tt := range tests {
		rank, ok := ChromosomeRank(tt.chromosome)
		assert.Equal(t, tt.ok, ok, tt.chromosome)
		if tt.ok {
			assert.Equal(t, tt.rank, rank, tt.chromosome)
		}
	}
}

func TestParsedVariantValid(t *testing.T) {
	tests := []struct {
		name    string
		variant ParsedVariant
		want    bool
	}{
		{"valid homozygous", ParsedVariant{RSID: "rs123", Chromosome: "1", Position: 1000, Genotype: "AA"}, true},
		{"valid no-call", ParsedVariant{RSID: "rs4567", Chromosome: "X", Position: 5, Genotype: "--"}, true},
		{"bad rsid prefix", ParsedVariant{RSID: "i4000123", Chromosome: "1", Position: 1000, Genotype: "AA"}, false},
		{"rsid without digits", ParsedVariant{RSID: "rs", Chromosome: "1", Position: 1000, Genotype: "AA"}, false},
		{"bad chromosome", ParsedVariant{RSID: "rs123", Chromosome: "26", Position: 1000, Genotype: "AA"}, false},
		{"single base genotype", ParsedVariant{RSID: "rs123", Chromosome: "1", Position: 1000, Genotype: "A"}, false},
		{"lowercase genotype", ParsedVariant{RSID: "rs123", Chromosome: "1", Position: 1000, Genotype: "aa"}, false},
		{"genotype with N", ParsedVariant{RSID: "rs123", Chromosome: "1", Position: 1000, Genotype: "AN"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.variant.Valid())
		})
	}
}

func TestHomozygousAlternate(t *testing.T) {
	het := false
	v := StandardizedVariant{Genotype: "AA", Allele1: "A", Allele2: "A", Heterozygous: &het}
	assert.True(t, v.HomozygousAlternate())

	v.Genotype = "AG"
	assert.False(t, v.HomozygousAlternate())

	v = StandardizedVariant{Genotype: NoCall}
	assert.False(t, v.HomozygousAlternate())
}

func TestEvidenceLedger(t *testing.T) {
	var ledger EvidenceLedger
	ledger.Add(EvidenceItem{Code: "BA1", Direction: EvidenceBenign})
	ledger.Add(EvidenceItem{Code: "PVS1", Direction: EvidencePathogenic})
	ledger.Add(EvidenceItem{Code: "Genotype", Direction: EvidenceSupporting})
	ledger.Add(EvidenceItem{Code: "bogus", Direction: EvidenceDirection("SIDEWAYS")})

	assert.Equal(t, 3, ledger.Count())
	assert.Equal(t, []string{"PVS1", "BA1", "Genotype"}, ledger.Codes())
}

func TestProcessingRunClone(t *testing.T) {
	run := &ProcessingRun{
		ID:      "run-1",
		Status:  StatusProcessing,
		Errors:  []string{"variant rs1: boom"},
		Summary: &ClassificationTally{Total: 1, VUS: 1},
	}

	snap := run.Clone()
	snap.Errors = append(snap.Errors, "extra")
	snap.Summary.Total = 99

	assert.Len(t, run.Errors, 1)
	assert.Equal(t, 1, run.Summary.Total)
}

func TestClassificationTallyAdd(t *testing.T) {
	var tally ClassificationTally
	for _, c := range []Classification{Pathogenic, LikelyPathogenic, UncertainSignificance, LikelyBenign, Benign, Benign} {
		tally.Add(c)
	}
	assert.Equal(t, 6, tally.Total)
	assert.Equal(t, 1, tally.Pathogenic)
	assert.Equal(t, 2, tally.Benign)
}
