// Package annotation provides lookups against the local reference
// knowledgebases: ClinVar assertions and gnomAD population frequencies.
package annotation

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/sirupsen/logrus"

	_ "modernc.org/sqlite"

	"github.com/lucianareynaud/biogpt/internal/domain"
)

// DefaultCacheSize bounds each of the two in-memory record caches.
const DefaultCacheSize = 10000

// SQLite limits bound parameters per statement, so batch lookups are
// chunked.
const lookupChunkSize = 500

// SQLiteStore serves batch annotation lookups from a local SQLite
// knowledgebase, fronted by per-source LRU caches. Consumer genome exports
// repeat the same common rsIDs across uploads, so the caches absorb most of
// the read load.
type SQLiteStore struct {
	db     *sql.DB
	dbPath string
	log    *logrus.Logger

	clinvarCache *lru.Cache[string, domain.ClinVarRecord]
	gnomadCache  *lru.Cache[string, domain.GnomadRecord]
}

// NewSQLiteStore opens (or creates) the knowledgebase at dbPath.
func NewSQLiteStore(dbPath string, cacheSize int, log *logrus.Logger) (*SQLiteStore, error) {
	if cacheSize <= 0 {
		cacheSize = DefaultCacheSize
	}

	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open annotation database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set WAL mode: %w", err)
	}

	if err := createSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	clinvarCache, err := lru.New[string, domain.ClinVarRecord](cacheSize)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create ClinVar cache: %w", err)
	}
	gnomadCache, err := lru.New[string, domain.GnomadRecord](cacheSize)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create gnomAD cache: %w", err)
	}

	return &SQLiteStore{
		db:           db,
		dbPath:       dbPath,
		log:          log,
		clinvarCache: clinvarCache,
		gnomadCache:  gnomadCache,
	}, nil
}

func createSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS clinvar_variants (
		rsid TEXT PRIMARY KEY,
		chromosome TEXT,
		position INTEGER,
		reference_allele TEXT,
		alternate_allele TEXT,
		clinical_significance TEXT,
		review_status TEXT,
		phenotype TEXT DEFAULT '',
		gene_symbol TEXT DEFAULT '',
		hgvs_c TEXT DEFAULT '',
		hgvs_p TEXT DEFAULT '',
		molecular_consequence TEXT DEFAULT ''
	);

	CREATE TABLE IF NOT EXISTS gnomad_frequencies (
		rsid TEXT PRIMARY KEY,
		chromosome TEXT,
		position INTEGER,
		reference_allele TEXT,
		alternate_allele TEXT,
		allele_frequency REAL,
		allele_count INTEGER,
		allele_number INTEGER,
		population TEXT DEFAULT ''
	);

	CREATE INDEX IF NOT EXISTS idx_clinvar_gene ON clinvar_variants(gene_symbol);
	CREATE INDEX IF NOT EXISTS idx_clinvar_significance ON clinvar_variants(clinical_significance);
	`

	_, err := db.Exec(schema)
	return err
}

// ClinVarBatch returns ClinVar records for the given rsIDs. Unknown rsIDs
// are simply absent from the result.
func (s *SQLiteStore) ClinVarBatch(ctx context.Context, rsids []string) (map[string]domain.ClinVarRecord, error) {
	found := make(map[string]domain.ClinVarRecord, len(rsids))
	var misses []string

	for _, rsid := range rsids {
		if record, ok := s.clinvarCache.Get(rsid); ok {
			found[rsid] = record
		} else {
			misses = append(misses, rsid)
		}
	}

	for _, chunk := range chunked(misses, lookupChunkSize) {
		query := fmt.Sprintf(`
			SELECT rsid, chromosome, position, reference_allele, alternate_allele,
			       clinical_significance, review_status, phenotype, gene_symbol,
			       hgvs_c, hgvs_p, molecular_consequence
			FROM clinvar_variants
			WHERE rsid IN (%s)`, placeholders(len(chunk)))

		rows, err := s.db.QueryContext(ctx, query, asArgs(chunk)...)
		if err != nil {
			return nil, fmt.Errorf("ClinVar batch lookup failed: %w", err)
		}

		for rows.Next() {
			record, err := scanClinVar(rows)
			if err != nil {
				rows.Close()
				return nil, fmt.Errorf("failed to scan ClinVar record: %w", err)
			}
			found[record.RSID] = record
			s.clinvarCache.Add(record.RSID, record)
		}
		if err := rows.Err(); err != nil {
			rows.Close()
			return nil, fmt.Errorf("ClinVar batch lookup failed: %w", err)
		}
		rows.Close()
	}

	s.log.WithFields(logrus.Fields{
		"requested": len(rsids),
		"found":     len(found),
	}).Debug("ClinVar batch lookup completed")

	return found, nil
}

// GnomadBatch returns gnomAD frequency records for the given rsIDs.
func (s *SQLiteStore) GnomadBatch(ctx context.Context, rsids []string) (map[string]domain.GnomadRecord, error) {
	found := make(map[string]domain.GnomadRecord, len(rsids))
	var misses []string

	for _, rsid := range rsids {
		if record, ok := s.gnomadCache.Get(rsid); ok {
			found[rsid] = record
		} else {
			misses = append(misses, rsid)
		}
	}

	for _, chunk := range chunked(misses, lookupChunkSize) {
		query := fmt.Sprintf(`
			SELECT rsid, chromosome, position, reference_allele, alternate_allele,
			       allele_frequency, allele_count, allele_number, population
			FROM gnomad_frequencies
			WHERE rsid IN (%s)`, placeholders(len(chunk)))

		rows, err := s.db.QueryContext(ctx, query, asArgs(chunk)...)
		if err != nil {
			return nil, fmt.Errorf("gnomAD batch lookup failed: %w", err)
		}

		for rows.Next() {
			var record domain.GnomadRecord
			if err := rows.Scan(
				&record.RSID, &record.Chromosome, &record.Position,
				&record.ReferenceAllele, &record.AlternateAllele,
				&record.AlleleFrequency, &record.AlleleCount,
				&record.AlleleNumber, &record.Population,
			); err != nil {
				rows.Close()
				return nil, fmt.Errorf("failed to scan gnomAD record: %w", err)
			}
			found[record.RSID] = record
			s.gnomadCache.Add(record.RSID, record)
		}
		if err := rows.Err(); err != nil {
			rows.Close()
			return nil, fmt.Errorf("gnomAD batch lookup failed: %w", err)
		}
		rows.Close()
	}

	s.log.WithFields(logrus.Fields{
		"requested": len(rsids),
		"found":     len(found),
	}).Debug("gnomAD batch lookup completed")

	return found, nil
}

// PathogenicVariants returns up to limit ClinVar records with pathogenic
// assertions, used to build retrieval context for the chat surface.
func (s *SQLiteStore) PathogenicVariants(ctx context.Context, limit int) ([]domain.ClinVarRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT rsid, chromosome, position, reference_allele, alternate_allele,
		       clinical_significance, review_status, phenotype, gene_symbol,
		       hgvs_c, hgvs_p, molecular_consequence
		FROM clinvar_variants
		WHERE lower(clinical_significance) LIKE '%pathogenic%'
		ORDER BY rsid
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("pathogenic variant lookup failed: %w", err)
	}
	defer rows.Close()

	var records []domain.ClinVarRecord
	for rows.Next() {
		record, err := scanClinVar(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan ClinVar record: %w", err)
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

// UpsertClinVar loads or refreshes a ClinVar record. Used by the reference
// data loader and tests.
func (s *SQLiteStore) UpsertClinVar(ctx context.Context, record domain.ClinVarRecord) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO clinvar_variants (
			rsid, chromosome, position, reference_allele, alternate_allele,
			clinical_significance, review_status, phenotype, gene_symbol,
			hgvs_c, hgvs_p, molecular_consequence
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(rsid) DO UPDATE SET
			clinical_significance = excluded.clinical_significance,
			review_status = excluded.review_status,
			phenotype = excluded.phenotype,
			gene_symbol = excluded.gene_symbol,
			hgvs_c = excluded.hgvs_c,
			hgvs_p = excluded.hgvs_p,
			molecular_consequence = excluded.molecular_consequence`,
		record.RSID, record.Chromosome, record.Position,
		record.ReferenceAllele, record.AlternateAllele,
		record.ClinicalSignificance, record.ReviewStatus,
		record.Phenotype, record.GeneSymbol,
		record.HGVSCoding, record.HGVSProtein, record.MolecularConsequence,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert ClinVar record %s: %w", record.RSID, err)
	}
	s.clinvarCache.Remove(record.RSID)
	return nil
}

// UpsertGnomad loads or refreshes a gnomAD frequency record.
func (s *SQLiteStore) UpsertGnomad(ctx context.Context, record domain.GnomadRecord) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO gnomad_frequencies (
			rsid, chromosome, position, reference_allele, alternate_allele,
			allele_frequency, allele_count, allele_number, population
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(rsid) DO UPDATE SET
			allele_frequency = excluded.allele_frequency,
			allele_count = excluded.allele_count,
			allele_number = excluded.allele_number,
			population = excluded.population`,
		record.RSID, record.Chromosome, record.Position,
		record.ReferenceAllele, record.AlternateAllele,
		record.AlleleFrequency, record.AlleleCount,
		record.AlleleNumber, record.Population,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert gnomAD record %s: %w", record.RSID, err)
	}
	s.gnomadCache.Remove(record.RSID)
	return nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func scanClinVar(rows *sql.Rows) (domain.ClinVarRecord, error) {
	var record domain.ClinVarRecord
	err := rows.Scan(
		&record.RSID, &record.Chromosome, &record.Position,
		&record.ReferenceAllele, &record.AlternateAllele,
		&record.ClinicalSignificance, &record.ReviewStatus,
		&record.Phenotype, &record.GeneSymbol,
		&record.HGVSCoding, &record.HGVSProtein, &record.MolecularConsequence,
	)
	return record, err
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

func asArgs(rsids []string) []any {
	args := make([]any, len(rsids))
	for i, rsid := range rsids {
		args[i] = rsid
	}
	return args
}

func chunked(items []string, size int) [][]string {
	var chunks [][]string
	for start := 0; start < len(items); start += size {
		end := start + size
		if end > len(items) {
			end = len(items)
		}
		chunks = append(chunks, items[start:end])
	}
	return chunks
}
