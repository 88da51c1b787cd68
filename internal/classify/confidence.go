package classify

import "github.com/lucianareynaud/biogpt/internal/domain"

// Confidence score weights. The base reflects that every call carries
// some uncertainty; each evidence item shifts it by its strength.
const (
	confidenceBase     = 0.5
	pathogenicWeight   = 0.2
	benignWeight       = 0.15
	supportingWeight   = 0.1
	conflictingPenalty = 0.1
)

// Score converts an evidence ledger into a confidence value in [0, 1].
func Score(ledger domain.EvidenceLedger) float64 {
	score := confidenceBase
	score += float64(len(ledger.Pathogenic)) * pathogenicWeight
	score += float64(len(ledger.Benign)) * benignWeight
	score += float64(len(ledger.Supporting)) * supportingWeight
	score -= float64(len(ledger.Conflicting)) * conflictingPenalty

	if score > 1.0 {
		return 1.0
	}
	if score < 0.0 {
		return 0.0
	}
	return score
}
