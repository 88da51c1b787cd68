package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"

	"github.com/lucianareynaud/biogpt/internal/domain"
)

// PostgresResultStore implements domain.ResultStore on PostgreSQL. The
// schema is managed by migrations; see internal/database.
type PostgresResultStore struct {
	db  *pgxpool.Pool
	log *logrus.Logger
}

func NewPostgresResultStore(db *pgxpool.Pool, log *logrus.Logger) *PostgresResultStore {
	return &PostgresResultStore{db: db, log: log}
}

// SaveResult persists one classified variant.
func (s *PostgresResultStore) SaveResult(ctx context.Context, result *domain.VariantResult) error {
	payload, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to encode result %s: %w", result.ID, err)
	}

	_, err = s.db.Exec(ctx, `
		INSERT INTO variant_results (
			id, run_id, rsid, chromosome, position, genotype,
			classification, faulted, confidence_score, payload, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		result.ID, result.RunID, result.Variant.RSID,
		result.Variant.Chromosome, result.Variant.Position, result.Variant.Genotype,
		string(result.Classification), result.Faulted,
		result.Confidence, payload, result.CreatedAt,
	)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"result_id": result.ID,
			"run_id":    result.RunID,
			"error":     err,
		}).Error("Failed to save variant result")
		return fmt.Errorf("failed to save result %s: %w", result.ID, err)
	}
	return nil
}

// ResultsByRun returns all results of a run in canonical genomic order.
func (s *PostgresResultStore) ResultsByRun(ctx context.Context, runID string) ([]domain.VariantResult, error) {
	rows, err := s.db.Query(ctx,
		"SELECT payload FROM variant_results WHERE run_id = $1", runID)
	if err != nil {
		return nil, fmt.Errorf("failed to load results for run %s: %w", runID, err)
	}
	defer rows.Close()

	var results []domain.VariantResult
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("failed to scan result for run %s: %w", runID, err)
		}
		var result domain.VariantResult
		if err := json.Unmarshal(payload, &result); err != nil {
			return nil, fmt.Errorf("failed to decode result for run %s: %w", runID, err)
		}
		results = append(results, result)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to load results for run %s: %w", runID, err)
	}

	sortResults(results)
	return results, nil
}

// Close releases the connection pool.
func (s *PostgresResultStore) Close() error {
	s.db.Close()
	return nil
}
