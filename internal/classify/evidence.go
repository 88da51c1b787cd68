package classify

import (
	"fmt"
	"strings"

	"github.com/lucianareynaud/biogpt/internal/domain"
)

// Population frequency thresholds from the ACMG-2015 guideline.
const (
	BA1Threshold = 0.05
	BS1Threshold = 0.01
	PM2Threshold = 0.0001
)

// Review status phrases that mark a ClinVar assertion as high confidence.
var expertReviewPhrases = []string{
	"reviewed by expert panel",
	"practice guideline",
}

// ruleInput is the evidence available for a single variant when the
// rule table runs. Nil pointers mean the lookup had no record.
type ruleInput struct {
	variant   domain.StandardizedVariant
	clinvar   *domain.ClinVarRecord
	frequency *float64
}

func (in ruleInput) significance() string {
	if in.clinvar == nil {
		return ""
	}
	return strings.ToLower(in.clinvar.ClinicalSignificance)
}

func (in ruleInput) reviewStatus() string {
	if in.clinvar == nil {
		return ""
	}
	return strings.ToLower(in.clinvar.ReviewStatus)
}

func (in ruleInput) consequence() string {
	if in.clinvar == nil {
		return ""
	}
	return strings.ToLower(in.clinvar.MolecularConsequence)
}

func expertReviewed(reviewStatus string) bool {
	for _, phrase := range expertReviewPhrases {
		if strings.Contains(reviewStatus, phrase) {
			return true
		}
	}
	return false
}

func containsAny(s string, terms ...string) bool {
	for _, term := range terms {
		if strings.Contains(s, term) {
			return true
		}
	}
	return false
}

// evidenceRule is one row of the aggregation table. Mutual exclusion
// between related codes lives in each rule's guard, so the table order
// is the only sequencing the aggregator needs. eval returns the
// supporting evidence string when the rule fires.
type evidenceRule struct {
	code        string
	direction   domain.EvidenceDirection
	description string
	eval        func(ruleInput) (string, bool)
}

var evidenceRules = []evidenceRule{
	{
		code:        "BA1",
		direction:   domain.EvidenceBenign,
		description: "Allele frequency >5% in general population",
		eval: func(in ruleInput) (string, bool) {
			if in.frequency == nil || *in.frequency <= BA1Threshold {
				return "", false
			}
			return fmt.Sprintf("gnomAD frequency: %.4f", *in.frequency), true
		},
	},
	{
		code:        "BS1",
		direction:   domain.EvidenceBenign,
		description: "Allele frequency >1% in population",
		eval: func(in ruleInput) (string, bool) {
			if in.frequency == nil || *in.frequency <= BS1Threshold || *in.frequency > BA1Threshold {
				return "", false
			}
			return fmt.Sprintf("gnomAD frequency: %.4f", *in.frequency), true
		},
	},
	{
		code:        "PM2_Supporting",
		direction:   domain.EvidenceSupporting,
		description: "Very rare variant in population",
		eval: func(in ruleInput) (string, bool) {
			if in.frequency == nil || *in.frequency >= PM2Threshold {
				return "", false
			}
			return fmt.Sprintf("gnomAD frequency: %.6f", *in.frequency), true
		},
	},
	{
		code:        "PS1",
		direction:   domain.EvidencePathogenic,
		description: "Expert panel reviewed pathogenic",
		eval: func(in ruleInput) (string, bool) {
			sig := in.significance()
			if !strings.Contains(sig, "pathogenic") || !expertReviewed(in.reviewStatus()) {
				return "", false
			}
			return fmt.Sprintf("ClinVar: %s", sig), true
		},
	},
	{
		code:        "PP5",
		direction:   domain.EvidenceSupporting,
		description: "Reported as pathogenic in ClinVar",
		eval: func(in ruleInput) (string, bool) {
			sig := in.significance()
			if !strings.Contains(sig, "pathogenic") || expertReviewed(in.reviewStatus()) {
				return "", false
			}
			return fmt.Sprintf("ClinVar: %s", sig), true
		},
	},
	{
		code:        "BP6",
		direction:   domain.EvidenceBenign,
		description: "Reported as benign in ClinVar",
		eval: func(in ruleInput) (string, bool) {
			sig := in.significance()
			// "likely pathogenic" also contains "pathogenic", so the
			// guard keeps conflicting assertions out of BP6.
			if !strings.Contains(sig, "benign") || strings.Contains(sig, "pathogenic") {
				return "", false
			}
			return fmt.Sprintf("ClinVar: %s", sig), true
		},
	},
	{
		code:        "PVS1",
		direction:   domain.EvidencePathogenic,
		description: "Null variant in gene where LOF is pathogenic",
		eval: func(in ruleInput) (string, bool) {
			csq := in.consequence()
			if !containsAny(csq, "stop_gained", "frameshift") {
				return "", false
			}
			return fmt.Sprintf("Consequence: %s", csq), true
		},
	},
	{
		code:        "BP7",
		direction:   domain.EvidenceBenign,
		description: "Silent/intronic variant with no impact",
		eval: func(in ruleInput) (string, bool) {
			csq := in.consequence()
			if csq == "" || containsAny(csq, "stop_gained", "frameshift") {
				return "", false
			}
			if !containsAny(csq, "synonymous", "intron") {
				return "", false
			}
			return fmt.Sprintf("Consequence: %s", csq), true
		},
	},
	{
		code:        "Genotype",
		direction:   domain.EvidenceSupporting,
		description: "Homozygous alternate genotype",
		eval: func(in ruleInput) (string, bool) {
			if !in.variant.HomozygousAlternate() {
				return "", false
			}
			return fmt.Sprintf("Genotype: %s", in.variant.Genotype), true
		},
	},
}

// GatherEvidence runs the rule table against one variant and the
// annotation records found for it. Missing records simply suppress the
// rules that need them.
func GatherEvidence(variant domain.StandardizedVariant, clinvar *domain.ClinVarRecord, gnomad *domain.GnomadRecord) domain.EvidenceLedger {
	in := ruleInput{variant: variant, clinvar: clinvar}
	if gnomad != nil {
		freq := gnomad.AlleleFrequency
		in.frequency = &freq
	}

	var ledger domain.EvidenceLedger
	for _, rule := range evidenceRules {
		if evidence, ok := rule.eval(in); ok {
			ledger.Add(domain.EvidenceItem{
				Code:        rule.code,
				Direction:   rule.direction,
				Description: rule.description,
				Evidence:    evidence,
			})
		}
	}
	return ledger
}
