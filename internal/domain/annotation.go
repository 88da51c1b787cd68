package domain

// ClinVarRecord is a clinical-significance annotation supplied by the
// knowledgebase store. ClinicalSignificance and ReviewStatus are free text
// from the upstream archive, matched by keyword rather than parsed as enums.
// Phenotype, GeneSymbol, HGVSCoding, HGVSProtein and MolecularConsequence
// are optional and empty when the upstream record omits them.
type ClinVarRecord struct {
	RSID                 string `json:"rsid"`
	Chromosome           string `json:"chromosome"`
	Position             int64  `json:"position"`
	ReferenceAllele      string `json:"reference_allele"`
	AlternateAllele      string `json:"alternate_allele"`
	ClinicalSignificance string `json:"clinical_significance"`
	ReviewStatus         string `json:"review_status"`
	Phenotype            string `json:"phenotype,omitempty"`
	GeneSymbol           string `json:"gene_symbol,omitempty"`
	HGVSCoding           string `json:"hgvs_c,omitempty"`
	HGVSProtein          string `json:"hgvs_p,omitempty"`
	MolecularConsequence string `json:"molecular_consequence,omitempty"`
}

// GnomadRecord is a population allele-frequency annotation supplied by the
// knowledgebase store. AlleleFrequency is the fraction of reference-population
// chromosomes carrying the alternate allele, in [0,1].
type GnomadRecord struct {
	RSID            string  `json:"rsid"`
	Chromosome      string  `json:"chromosome"`
	Position        int64   `json:"position"`
	ReferenceAllele string  `json:"reference_allele"`
	AlternateAllele string  `json:"alternate_allele"`
	AlleleFrequency float64 `json:"allele_frequency"`
	AlleleCount     int     `json:"allele_count"`
	AlleleNumber    int     `json:"allele_number"`
	Population      string  `json:"population"`
}
