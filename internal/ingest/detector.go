// Package ingest implements the file ingestion pipeline: content-based
// format detection, structural validation, parsing and normalization of
// consumer genome exports.
package ingest

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/lucianareynaud/biogpt/internal/domain"
)

// Recognized format tags.
const (
	FormatGenomeTXT  = "23andme_txt"
	FormatUnknownTXT = "unknown_txt"
	FormatUnknown    = "unknown"
)

// Detection and validation policy constants. The byte bounds are policy,
// not derived from anything.
const (
	// AcceptThreshold is the confidence gate below which a file is not
	// accepted as the supported import format.
	AcceptThreshold = 0.7

	maxDetectLines   = 50
	maxValidateLines = 100

	minFileBytes = 100
	maxFileBytes = 100 * 1024 * 1024

	// Format-specific bounds applied by the strict validator.
	minFormatBytes = 1024
	maxFormatBytes = 50 * 1024 * 1024
)

const (
	vendorToken    = "23andme"
	rsidHintToken  = "rsid"
	commentPrefix  = "#"
	expectedFields = 4
)

// Verdict is the outcome of content-based format detection.
type Verdict struct {
	Format     string  `json:"format"`
	Confidence float64 `json:"confidence"`
	Error      string  `json:"error,omitempty"`
}

// Accepted reports whether the verdict clears the acceptance gate.
func (v Verdict) Accepted() bool {
	return v.Confidence >= AcceptThreshold && v.Error == ""
}

// ValidationResult is the outcome of full-file validation.
type ValidationResult struct {
	Valid      bool            `json:"valid"`
	Format     string          `json:"format"`
	Confidence float64         `json:"confidence"`
	Error      string          `json:"error,omitempty"`
	FileSize   int64           `json:"file_size"`
	LineCount  int             `json:"line_count"`
	Statistics *FileStatistics `json:"statistics,omitempty"`
}

// DetectFormat scores the supported import format against the leading lines
// of a file. It accumulates weighted evidence rather than enforcing a strict
// grammar, so header variations are tolerated; the caller applies the
// acceptance gate via Verdict.Accepted.
func DetectFormat(lines []string) Verdict {
	if len(lines) == 0 {
		return Verdict{Format: FormatUnknown, Error: "empty file"}
	}

	score := 0.0

	var headerLines []string
	for _, line := range lines {
		if strings.HasPrefix(line, commentPrefix) {
			headerLines = append(headerLines, line)
		}
	}
	if len(headerLines) > 0 {
		score += 0.3
		headerText := strings.ToLower(strings.Join(headerLines, " "))
		if strings.Contains(headerText, vendorToken) {
			score += 0.4
		}
		if strings.Contains(headerText, rsidHintToken) {
			score += 0.2
		}
	}

	if first, ok := firstDataLine(lines); ok {
		fields := strings.Split(first, "\t")
		if len(fields) == expectedFields {
			score += 0.3
			if looksLikeRSID(strings.TrimSpace(fields[0])) {
				score += 0.3
			}
			if _, err := strconv.ParseInt(strings.TrimSpace(fields[2]), 10, 64); err == nil {
				score += 0.2
			}
			if looksLikeGenotype(strings.TrimSpace(fields[3])) {
				score += 0.2
			}
		}
	}

	if score >= AcceptThreshold {
		if score > 0.95 {
			score = 0.95
		}
		return Verdict{Format: FormatGenomeTXT, Confidence: score}
	}
	return Verdict{
		Format:     FormatUnknownTXT,
		Confidence: score,
		Error:      "could not determine a supported genome export format",
	}
}

// DetectFile reads the leading lines of the file at path and runs content
// detection on them. Hard size bounds apply before any content scoring.
func DetectFile(path string) Verdict {
	info, err := os.Stat(path)
	if err != nil {
		return Verdict{Format: FormatUnknown, Error: "file not found"}
	}
	if info.Size() == 0 {
		return Verdict{Format: FormatUnknown, Error: "empty file"}
	}

	lines, err := readLeadingLines(path, maxDetectLines)
	if err != nil {
		return Verdict{Format: FormatUnknown, Error: err.Error()}
	}
	return DetectFormat(lines)
}

// ValidateFile performs full validation of an uploaded genome file: hard
// byte bounds, content detection, the strict format check, and, for accepted
// files, summary statistics.
func ValidateFile(path string) ValidationResult {
	info, err := os.Stat(path)
	if err != nil {
		return ValidationResult{Format: FormatUnknown, Error: "file not found"}
	}
	size := info.Size()

	if size > maxFileBytes {
		return ValidationResult{Format: FormatUnknown, Error: "file too large (>100MB)", FileSize: size}
	}
	if size < minFileBytes {
		return ValidationResult{Format: FormatUnknown, Error: "file too small (<100 bytes)", FileSize: size}
	}

	lineCount := countLines(path)
	verdict := DetectFile(path)

	result := ValidationResult{
		Valid:      verdict.Accepted(),
		Format:     verdict.Format,
		Confidence: verdict.Confidence,
		Error:      verdict.Error,
		FileSize:   size,
		LineCount:  lineCount,
	}

	if verdict.Format == FormatGenomeTXT && verdict.Accepted() {
		if err := validateGenomeFormat(path, size); err != nil {
			result.Valid = false
			result.Error = err.Error()
			return result
		}
		if stats, err := Statistics(path); err == nil {
			result.Statistics = stats
		}
	}

	return result
}

// validateGenomeFormat applies the stricter format-specific checks used
// once content scoring has already accepted the file.
func validateGenomeFormat(path string, size int64) error {
	if !strings.HasSuffix(strings.ToLower(path), ".txt") {
		return &domain.FormatError{Reason: "file must have .txt extension"}
	}
	if size > maxFormatBytes {
		return &domain.FormatError{Reason: "file too large (>50MB)"}
	}
	if size < minFormatBytes {
		return &domain.FormatError{Reason: "file too small (<1KB)"}
	}

	lines, err := readLeadingLines(path, maxValidateLines)
	if err != nil {
		return &domain.FormatError{Reason: err.Error()}
	}

	hasComments := false
	for _, line := range lines {
		if strings.HasPrefix(line, commentPrefix) {
			hasComments = true
			break
		}
	}
	if !hasComments {
		return &domain.FormatError{Reason: "missing header comments (lines starting with #)"}
	}

	first, ok := firstDataLine(lines)
	if !ok {
		return &domain.FormatError{Reason: "no data lines found"}
	}
	fields := strings.Split(first, "\t")
	if len(fields) != expectedFields {
		return &domain.FormatError{Reason: fmt.Sprintf("expected %d columns, found %d", expectedFields, len(fields))}
	}
	if !strings.HasPrefix(strings.TrimSpace(fields[0]), domain.RSIDPrefix) {
		return &domain.FormatError{Reason: fmt.Sprintf("first column should be an rsID, found: %s", fields[0])}
	}
	if _, err := strconv.ParseInt(strings.TrimSpace(fields[2]), 10, 64); err != nil {
		return &domain.FormatError{Reason: fmt.Sprintf("third column should be a numeric position, found: %s", fields[2])}
	}

	return nil
}

func firstDataLine(lines []string) (string, bool) {
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, commentPrefix) {
			continue
		}
		return trimmed, true
	}
	return "", false
}

func looksLikeRSID(s string) bool {
	if !strings.HasPrefix(s, domain.RSIDPrefix) || len(s) <= len(domain.RSIDPrefix) {
		return false
	}
	for _, r := range s[len(domain.RSIDPrefix):] {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func looksLikeGenotype(s string) bool {
	if s == "" || len(s) > 2 {
		return false
	}
	for _, r := range s {
		if !strings.ContainsRune("ATCG-", r) {
			return false
		}
	}
	return true
}

func readLeadingLines(path string, limit int) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r\n")
		if !utf8.ValidString(line) {
			return nil, fmt.Errorf("file is not valid text")
		}
		lines = append(lines, line)
		if len(lines) >= limit {
			break
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return lines, nil
}

func countLines(path string) int {
	f, err := os.Open(path)
	if err != nil {
		return 0
	}
	defer f.Close()

	count := 0
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		count++
	}
	return count
}
