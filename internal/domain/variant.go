package domain

import (
	"regexp"
	"strings"
)

// NoCall is the sentinel genotype emitted when the array could not read the
// site.
const NoCall = "--"

// RSIDPrefix is the knowledgebase identifier prefix for SNP records.
const RSIDPrefix = "rs"

var (
	rsidPattern     = regexp.MustCompile(`^rs\d+$`)
	genotypePattern = regexp.MustCompile(`^[ATCG]{2}$`)
)

// ParsedVariant is one surviving data row of a genome export file.
// Instances are immutable after creation; rows that fail validation are
// discarded by the cleaning pipeline rather than repaired.
type ParsedVariant struct {
	RSID       string `json:"rsid"`
	Chromosome string `json:"chromosome"`
	Position   int64  `json:"position"`
	Genotype   string `json:"genotype"`
}

// Valid reports whether the variant satisfies all row invariants:
// rs-prefixed numeric identifier, known chromosome, and a two-base genotype
// or the explicit no-call token.
func (v ParsedVariant) Valid() bool {
	if !rsidPattern.MatchString(v.RSID) {
		return false
	}
	if !ValidChromosome(v.Chromosome) {
		return false
	}
	return ValidGenotype(v.Genotype)
}

// ValidGenotype reports whether the call is two upper-case bases or the
// no-call token.
func ValidGenotype(genotype string) bool {
	return genotype == NoCall || genotypePattern.MatchString(genotype)
}

// StandardizedVariant is a ParsedVariant expanded with derived allele fields
// and provenance tags. Allele1/Allele2 are empty and Heterozygous is nil when
// the genotype is a no-call. One StandardizedVariant exists per unique rsID
// within a processing run.
type StandardizedVariant struct {
	RSID       string `json:"rsid"`
	Chromosome string `json:"chromosome"`
	Position   int64  `json:"position"`
	Genotype   string `json:"genotype"`

	Allele1      string `json:"allele1,omitempty"`
	Allele2      string `json:"allele2,omitempty"`
	Heterozygous *bool  `json:"is_heterozygous,omitempty"`

	Source       string `json:"source"`
	SourceFormat string `json:"source_format"`
}

// HomozygousAlternate reports whether both allele characters are equal and
// the site is not a no-call. Consumer arrays do not distinguish reference
// from alternate, so any non-reference homozygote is treated as potentially
// significant.
func (v StandardizedVariant) HomozygousAlternate() bool {
	g := strings.ToUpper(v.Genotype)
	if len(g) != 2 || g == NoCall {
		return false
	}
	return g[0] == g[1]
}
