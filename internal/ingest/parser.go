package ingest

import (
	"bufio"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/lucianareynaud/biogpt/internal/domain"
)

// Source tags carried on every standardized variant.
const (
	sourceTag       = "23andMe"
	sourceFormatTag = "txt"
)

// malformedRowTolerance bounds how large a share of data rows may have the
// wrong column count before the file is rejected outright instead of the
// bad rows being dropped.
const malformedRowTolerance = 0.5

// Parser extracts and normalizes variants from genome export files.
type Parser struct {
	log *logrus.Logger
}

// NewParser creates a parser with the given logger.
func NewParser(logger *logrus.Logger) *Parser {
	return &Parser{log: logger}
}

// ParseFile reads a genome export file and returns the cleaned, deduplicated
// and canonically sorted variants. It returns a ParseError when the file is
// unreadable or no rows survive cleaning, and a FormatError when the
// four-column structure is violated beyond tolerance.
func (p *Parser) ParseFile(path string) ([]domain.ParsedVariant, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &domain.ParseError{Path: path, Reason: "file not readable", Err: err}
	}
	defer f.Close()

	var (
		variants  []domain.ParsedVariant
		dataRows  int
		malformed int
	)

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r\n")
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, commentPrefix) {
			continue
		}
		dataRows++

		fields := strings.Split(line, "\t")
		if len(fields) != expectedFields {
			malformed++
			continue
		}

		variant, ok := parseRow(fields)
		if !ok {
			continue
		}
		variants = append(variants, variant)
	}
	if err := scanner.Err(); err != nil {
		return nil, &domain.ParseError{Path: path, Reason: "read failed", Err: err}
	}

	if dataRows > 0 && float64(malformed)/float64(dataRows) > malformedRowTolerance {
		return nil, &domain.FormatError{
			Reason: fmt.Sprintf("%d of %d data rows do not have %d tab-separated columns", malformed, dataRows, expectedFields),
		}
	}

	p.log.WithFields(logrus.Fields{
		"path":      path,
		"data_rows": dataRows,
		"surviving": len(variants),
	}).Info("Raw variant rows loaded")

	variants = dedupeVariants(variants)
	sortVariants(variants)

	if len(variants) == 0 {
		return nil, &domain.ParseError{Path: path, Reason: "no variants survived cleaning"}
	}

	p.log.WithField("variants", len(variants)).Info("Variant cleaning completed")
	return variants, nil
}

// parseRow converts one four-field data row into a ParsedVariant, applying
// the row-level cleaning stages: no missing fields, rs-prefixed identifier,
// valid chromosome, valid genotype.
func parseRow(fields []string) (domain.ParsedVariant, bool) {
	rsid := strings.TrimSpace(fields[0])
	chromosome := strings.TrimSpace(fields[1])
	positionText := strings.TrimSpace(fields[2])
	genotype := strings.TrimSpace(fields[3])

	if rsid == "" || chromosome == "" || positionText == "" || genotype == "" {
		return domain.ParsedVariant{}, false
	}
	if !strings.HasPrefix(rsid, domain.RSIDPrefix) {
		return domain.ParsedVariant{}, false
	}
	if !domain.ValidChromosome(chromosome) {
		return domain.ParsedVariant{}, false
	}
	if !domain.ValidGenotype(genotype) {
		return domain.ParsedVariant{}, false
	}
	position, err := strconv.ParseInt(positionText, 10, 64)
	if err != nil {
		return domain.ParsedVariant{}, false
	}

	variant := domain.ParsedVariant{
		RSID:       rsid,
		Chromosome: chromosome,
		Position:   position,
		Genotype:   genotype,
	}
	if !variant.Valid() {
		return domain.ParsedVariant{}, false
	}
	return variant, true
}

// dedupeVariants keeps the first occurrence of each rsID in file order.
func dedupeVariants(variants []domain.ParsedVariant) []domain.ParsedVariant {
	seen := make(map[string]struct{}, len(variants))
	out := variants[:0]
	for _, v := range variants {
		if _, dup := seen[v.RSID]; dup {
			continue
		}
		seen[v.RSID] = struct{}{}
		out = append(out, v)
	}
	return out
}

// sortVariants orders variants by canonical chromosome rank, then position.
func sortVariants(variants []domain.ParsedVariant) {
	sort.SliceStable(variants, func(i, j int) bool {
		ri, _ := domain.ChromosomeRank(variants[i].Chromosome)
		rj, _ := domain.ChromosomeRank(variants[j].Chromosome)
		if ri != rj {
			return ri < rj
		}
		return variants[i].Position < variants[j].Position
	})
}

// ConvertToStandard expands parsed variants into standardized form with
// allele decomposition, heterozygosity and provenance tags. A failure to
// standardize one record is logged and the record skipped; it never aborts
// the batch.
func (p *Parser) ConvertToStandard(variants []domain.ParsedVariant) []domain.StandardizedVariant {
	standardized := make([]domain.StandardizedVariant, 0, len(variants))
	for _, v := range variants {
		sv, err := standardize(v)
		if err != nil {
			p.log.WithFields(logrus.Fields{
				"rsid":  v.RSID,
				"error": err,
			}).Warn("Skipping variant that failed standardization")
			continue
		}
		standardized = append(standardized, sv)
	}
	return standardized
}

func standardize(v domain.ParsedVariant) (domain.StandardizedVariant, error) {
	if !v.Valid() {
		return domain.StandardizedVariant{}, fmt.Errorf("variant fails row invariants")
	}

	sv := domain.StandardizedVariant{
		RSID:         v.RSID,
		Chromosome:   v.Chromosome,
		Position:     v.Position,
		Genotype:     v.Genotype,
		Source:       sourceTag,
		SourceFormat: sourceFormatTag,
	}

	if v.Genotype != domain.NoCall && len(v.Genotype) == 2 {
		sv.Allele1 = string(v.Genotype[0])
		sv.Allele2 = string(v.Genotype[1])
		het := sv.Allele1 != sv.Allele2
		sv.Heterozygous = &het
	}

	return sv, nil
}

// HeaderInfo is the free-form metadata carried in a file's leading comment
// block: colon-separated pairs plus any bare comment lines.
type HeaderInfo struct {
	Fields  map[string]string `json:"fields"`
	General []string          `json:"general_info,omitempty"`
}

// ExtractHeaderInfo reads the leading comment block of a genome export and
// parses colon-separated key:value pairs. Parsing stops at the first
// non-comment line.
func ExtractHeaderInfo(path string) (HeaderInfo, error) {
	info := HeaderInfo{Fields: make(map[string]string)}

	f, err := os.Open(path)
	if err != nil {
		return info, err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if !strings.HasPrefix(line, commentPrefix) {
			break
		}
		line = strings.TrimSpace(strings.TrimPrefix(line, commentPrefix))
		if line == "" {
			continue
		}
		if key, value, found := strings.Cut(line, ":"); found {
			info.Fields[strings.TrimSpace(key)] = strings.TrimSpace(value)
		} else {
			info.General = append(info.General, line)
		}
	}
	return info, scanner.Err()
}

// FileStatistics summarizes a parsable genome export file.
type FileStatistics struct {
	TotalVariants        int                    `json:"total_variants"`
	Chromosomes          []string               `json:"chromosomes"`
	VariantsByChromosome map[string]int         `json:"variants_by_chromosome"`
	GenotypeDistribution map[string]int         `json:"genotype_distribution"`
	FileSizeBytes        int64                  `json:"file_size_bytes"`
	SampleVariants       []domain.ParsedVariant `json:"sample_variants,omitempty"`
}

// Statistics parses the file and reports per-chromosome and per-genotype
// counts together with a handful of sample rows.
func Statistics(path string) (*FileStatistics, error) {
	parser := NewParser(logrus.New())
	parser.log.SetLevel(logrus.WarnLevel)

	variants, err := parser.ParseFile(path)
	if err != nil {
		return nil, err
	}

	stats := &FileStatistics{
		TotalVariants:        len(variants),
		VariantsByChromosome: make(map[string]int),
		GenotypeDistribution: make(map[string]int),
	}
	if info, err := os.Stat(path); err == nil {
		stats.FileSizeBytes = info.Size()
	}

	seen := make(map[string]struct{})
	for _, v := range variants {
		stats.VariantsByChromosome[v.Chromosome]++
		stats.GenotypeDistribution[v.Genotype]++
		seen[v.Chromosome] = struct{}{}
	}
	for _, c := range domain.Chromosomes() {
		if _, ok := seen[c]; ok {
			stats.Chromosomes = append(stats.Chromosomes, c)
		}
	}

	limit := 5
	if len(variants) < limit {
		limit = len(variants)
	}
	stats.SampleVariants = append(stats.SampleVariants, variants[:limit]...)

	return stats, nil
}
