package classify

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lucianareynaud/biogpt/internal/domain"
)

func ledgerWith(pathogenic, benign, supporting, conflicting int) domain.EvidenceLedger {
	var ledger domain.EvidenceLedger
	add := func(n int, direction domain.EvidenceDirection) {
		for i := 0; i < n; i++ {
			ledger.Add(domain.EvidenceItem{
				Code:      fmt.Sprintf("C%d", i),
				Direction: direction,
			})
		}
	}
	add(pathogenic, domain.EvidencePathogenic)
	add(benign, domain.EvidenceBenign)
	add(supporting, domain.EvidenceSupporting)
	add(conflicting, domain.EvidenceConflicting)
	return ledger
}

func TestScore(t *testing.T) {
	tests := []struct {
		name   string
		ledger domain.EvidenceLedger
		want   float64
	}{
		{"empty ledger scores the base", ledgerWith(0, 0, 0, 0), 0.5},
		{"one pathogenic item", ledgerWith(1, 0, 0, 0), 0.7},
		{"one benign item", ledgerWith(0, 1, 0, 0), 0.65},
		{"one supporting item", ledgerWith(0, 0, 1, 0), 0.6},
		{"conflicting evidence lowers the score", ledgerWith(0, 0, 0, 2), 0.3},
		{"mixed evidence", ledgerWith(1, 1, 1, 1), 0.85},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Score(tt.ledger), 1e-9)
		})
	}
}

func TestScoreClampedToUnitInterval(t *testing.T) {
	assert.Equal(t, 1.0, Score(ledgerWith(100, 0, 0, 0)))
	assert.Equal(t, 0.0, Score(ledgerWith(0, 0, 0, 100)))
}
