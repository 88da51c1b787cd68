// Package repository persists classified variant results. Two backends are
// provided: SQLite for single-node deployments and PostgreSQL for shared
// ones. Both keep the full result as JSON next to the columns used for
// filtering and ordering.
package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	_ "modernc.org/sqlite"

	"github.com/lucianareynaud/biogpt/internal/domain"
)

// SQLiteResultStore implements domain.ResultStore on a local SQLite file.
type SQLiteResultStore struct {
	db     *sql.DB
	dbPath string
}

// NewSQLiteResultStore opens (or creates) the results database at dbPath.
func NewSQLiteResultStore(dbPath string) (*SQLiteResultStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open results database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set WAL mode: %w", err)
	}

	if err := createResultSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &SQLiteResultStore{db: db, dbPath: dbPath}, nil
}

func createResultSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS variant_results (
		id TEXT PRIMARY KEY,
		run_id TEXT NOT NULL,
		rsid TEXT NOT NULL,
		chromosome TEXT NOT NULL,
		position INTEGER NOT NULL,
		genotype TEXT NOT NULL,
		classification TEXT NOT NULL,
		faulted INTEGER NOT NULL DEFAULT 0,
		confidence_score REAL NOT NULL,
		payload TEXT NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_results_run ON variant_results(run_id);
	CREATE INDEX IF NOT EXISTS idx_results_run_class ON variant_results(run_id, classification);
	`

	_, err := db.Exec(schema)
	return err
}

// SaveResult persists one classified variant.
func (s *SQLiteResultStore) SaveResult(ctx context.Context, result *domain.VariantResult) error {
	payload, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to encode result %s: %w", result.ID, err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO variant_results (
			id, run_id, rsid, chromosome, position, genotype,
			classification, faulted, confidence_score, payload, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		result.ID, result.RunID, result.Variant.RSID,
		result.Variant.Chromosome, result.Variant.Position, result.Variant.Genotype,
		string(result.Classification), boolToInt(result.Faulted),
		result.Confidence, string(payload), result.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save result %s: %w", result.ID, err)
	}
	return nil
}

// ResultsByRun returns all results of a run in canonical genomic order.
func (s *SQLiteResultStore) ResultsByRun(ctx context.Context, runID string) ([]domain.VariantResult, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT payload FROM variant_results WHERE run_id = ?", runID)
	if err != nil {
		return nil, fmt.Errorf("failed to load results for run %s: %w", runID, err)
	}
	defer rows.Close()

	results, err := decodeResults(rows)
	if err != nil {
		return nil, fmt.Errorf("failed to decode results for run %s: %w", runID, err)
	}
	sortResults(results)
	return results, nil
}

// Close closes the underlying database.
func (s *SQLiteResultStore) Close() error {
	return s.db.Close()
}

func decodeResults(rows *sql.Rows) ([]domain.VariantResult, error) {
	var results []domain.VariantResult
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, err
		}
		var result domain.VariantResult
		if err := json.Unmarshal([]byte(payload), &result); err != nil {
			return nil, err
		}
		results = append(results, result)
	}
	return results, rows.Err()
}

// sortResults orders by canonical chromosome rank then position. Text
// ordering in SQL would put chromosome 10 before 2, so ordering happens
// here instead.
func sortResults(results []domain.VariantResult) {
	sort.SliceStable(results, func(i, j int) bool {
		ri, _ := domain.ChromosomeRank(results[i].Variant.Chromosome)
		rj, _ := domain.ChromosomeRank(results[j].Variant.Chromosome)
		if ri != rj {
			return ri < rj
		}
		return results[i].Variant.Position < results[j].Variant.Position
	})
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
