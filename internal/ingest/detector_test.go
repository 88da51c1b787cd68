package ingest

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		name       string
		lines      []string
		wantFormat string
		accepted   bool
	}{
		{
			name: "vendor header and clean data line",
			lines: []string{
				"# This data file generated by 23andMe",
				"# rsid\tchromosome\tposition\tgenotype",
				"rs123\t1\t1000\tAA",
			},
			wantFormat: FormatGenomeTXT,
			accepted:   true,
		},
		{
			name: "generic rsid header still clears the gate",
			lines: []string{
				"#rsid chromosome position genotype",
				"rs123\t1\t1000\tAA",
			},
			wantFormat: FormatGenomeTXT,
			accepted:   true,
		},
		{
			name: "clean data line clears the gate without a header",
			lines: []string{
				"rs123\t1\t1000\tAA",
			},
			wantFormat: FormatGenomeTXT,
			accepted:   true, // 0.3+0.3+0.2+0.2 from the data line alone
		},
		{
			name: "wrong column count",
			lines: []string{
				"# header",
				"rs123,1,1000,AA",
			},
			wantFormat: FormatUnknownTXT,
			accepted:   false,
		},
		{
			name:       "empty input",
			lines:      nil,
			wantFormat: FormatUnknown,
			accepted:   false,
		},
		{
			name: "header only, no data",
			lines: []string{
				"# some header",
				"# another line",
			},
			wantFormat: FormatUnknownTXT,
			accepted:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verdict := DetectFormat(tt.lines)
			assert.Equal(t, tt.wantFormat, verdict.Format)
			assert.Equal(t, tt.accepted, verdict.Accepted())
			assert.LessOrEqual(t, verdict.Confidence, 0.95)
		})
	}
}

func TestDetectFormatNonNumericPositionLowersScore(t *testing.T) {
	with := DetectFormat([]string{"rs123\t1\t1000\tAA"})
	without := DetectFormat([]string{"rs123\t1\tabc\tAA"})
	assert.Greater(t, with.Confidence, without.Confidence)
}

func writeTempFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// genomeFileContent builds a well-formed export with enough rows to clear
// the minimum-size validator bound.
func genomeFileContent(rows int) string {
	var b strings.Builder
	b.WriteString("# This data file generated by 23andMe at: 2023-01-01\n")
	b.WriteString("# rsid\tchromosome\tposition\tgenotype\n")
	for i := 0; i < rows; i++ {
		fmt.Fprintf(&b, "rs%d\t1\t%d\tAA\n", 1000+i, 1000+i)
	}
	return b.String()
}

func TestValidateFileAcceptsWellFormedExport(t *testing.T) {
	path := writeTempFile(t, "genome.txt", genomeFileContent(100))

	result := ValidateFile(path)
	require.Empty(t, result.Error)
	assert.True(t, result.Valid)
	assert.Equal(t, FormatGenomeTXT, result.Format)
	assert.GreaterOrEqual(t, result.Confidence, AcceptThreshold)
	assert.NotNil(t, result.Statistics)
	assert.Equal(t, 100, result.Statistics.TotalVariants)
}

func TestValidateFileRejectsTinyFile(t *testing.T) {
	path := writeTempFile(t, "tiny.txt", "# x\n")

	result := ValidateFile(path)
	assert.False(t, result.Valid)
	assert.Contains(t, result.Error, "too small")
}

func TestValidateFileRejectsMissingFile(t *testing.T) {
	result := ValidateFile(filepath.Join(t.TempDir(), "nope.txt"))
	assert.False(t, result.Valid)
	assert.Equal(t, "file not found", result.Error)
}

func TestValidateFileRejectsWrongExtension(t *testing.T) {
	path := writeTempFile(t, "genome.csv", genomeFileContent(100))

	result := ValidateFile(path)
	assert.False(t, result.Valid)
	assert.Contains(t, result.Error, ".txt extension")
}

func TestValidateFileRejectsHeaderlessFile(t *testing.T) {
	content := strings.TrimPrefix(genomeFileContent(100), "# This data file generated by 23andMe at: 2023-01-01\n")
	content = strings.TrimPrefix(content, "# rsid\tchromosome\tposition\tgenotype\n")
	path := writeTempFile(t, "noheader.txt", content)

	result := ValidateFile(path)
	// Without a comment block the content score stays at 1.0 from the data
	// line, so detection passes but the strict validator rejects it.
	assert.False(t, result.Valid)
	assert.Contains(t, result.Error, "header comments")
}
