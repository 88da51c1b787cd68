package classify

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/lucianareynaud/biogpt/internal/domain"
)

// Molecular consequence terms used by the evidence accumulator.
var (
	highImpactConsequences = []string{
		"stop_gained", "frameshift", "splice_acceptor", "splice_donor",
	}
	moderateImpactConsequences = []string{
		"missense", "inframe_deletion", "inframe_insertion",
	}
)

// Outcome is the result of classifying a single variant. Faulted marks
// the default VUS assigned when classification itself failed, so
// downstream consumers can tell it apart from a VUS the evidence
// actually supports.
type Outcome struct {
	Classification domain.Classification
	Faulted        bool
	FaultReason    string
}

// Classifier assigns one of the five ACMG tiers to a variant using
// ClinVar assertions, gnomAD population frequency and genotype.
type Classifier struct {
	log *logrus.Logger
}

func NewClassifier(log *logrus.Logger) *Classifier {
	return &Classifier{log: log}
}

// Classify applies the tier precedence: high-confidence ClinVar
// assertions first, then population frequency, then the accumulated
// evidence score. A panic in any branch yields a faulted VUS rather
// than taking the whole run down.
func (c *Classifier) Classify(variant domain.StandardizedVariant, clinvar *domain.ClinVarRecord, gnomad *domain.GnomadRecord) (out Outcome) {
	defer func() {
		if r := recover(); r != nil {
			c.log.WithFields(logrus.Fields{
				"rsid":  variant.RSID,
				"panic": r,
			}).Error("Variant classification failed, defaulting to VUS")
			out = Outcome{
				Classification: domain.UncertainSignificance,
				Faulted:        true,
				FaultReason:    fmt.Sprintf("classification panic: %v", r),
			}
		}
	}()

	c.log.WithField("rsid", variant.RSID).Debug("Classifying variant")

	if clinvar != nil {
		if label, ok := classifyFromClinVar(clinvar); ok {
			return Outcome{Classification: label}
		}
	}

	if gnomad != nil {
		if gnomad.AlleleFrequency > BA1Threshold {
			return Outcome{Classification: domain.Benign}
		}
		if gnomad.AlleleFrequency > BS1Threshold {
			return Outcome{Classification: domain.LikelyBenign}
		}
	}

	score := evidenceScore(variant, clinvar)

	switch {
	case score >= 3:
		return Outcome{Classification: domain.LikelyPathogenic}
	case score >= 1:
		return Outcome{Classification: domain.UncertainSignificance}
	}

	if gnomad != nil && gnomad.AlleleFrequency < PM2Threshold {
		return Outcome{Classification: domain.UncertainSignificance}
	}
	return Outcome{Classification: domain.LikelyBenign}
}

// classifyFromClinVar resolves high-confidence ClinVar assertions.
// Expert review upgrades a likely call to the definite tier.
func classifyFromClinVar(record *domain.ClinVarRecord) (domain.Classification, bool) {
	sig := strings.ToLower(record.ClinicalSignificance)
	reviewed := expertReviewed(strings.ToLower(record.ReviewStatus))

	if strings.Contains(sig, "pathogenic") {
		switch {
		case reviewed:
			return domain.Pathogenic, true
		case strings.Contains(sig, "likely pathogenic"):
			return domain.LikelyPathogenic, true
		default:
			return domain.Pathogenic, true
		}
	}

	if strings.Contains(sig, "benign") {
		switch {
		case reviewed:
			return domain.Benign, true
		case strings.Contains(sig, "likely benign"):
			return domain.LikelyBenign, true
		default:
			return domain.Benign, true
		}
	}

	return "", false
}

// evidenceScore accumulates the weaker signals used when neither a
// ClinVar assertion nor population frequency decides the tier.
func evidenceScore(variant domain.StandardizedVariant, clinvar *domain.ClinVarRecord) int {
	score := 0

	if variant.HomozygousAlternate() {
		score++
	}

	if clinvar != nil {
		csq := strings.ToLower(clinvar.MolecularConsequence)
		if containsAny(csq, highImpactConsequences...) {
			score += 2
		} else if containsAny(csq, moderateImpactConsequences...) {
			score++
		}
	}

	return score
}
