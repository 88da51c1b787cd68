package ingest

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lucianareynaud/biogpt/internal/domain"
)

func newTestParser() *Parser {
	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)
	return NewParser(logger)
}

func TestParseFileCleaningPipeline(t *testing.T) {
	content := "# rsid\tchromosome\tposition\tgenotype\n" +
		"rs3\tX\t500\tAG\n" + // valid, sorts after autosomes
		"rs1\t1\t2000\tAA\n" + // valid
		"rs2\t1\t1000\tCT\n" + // valid, earlier position on same chromosome
		"rs1\t1\t9999\tGG\n" + // duplicate rsID, dropped (first wins)
		"i705\t1\t1500\tAA\n" + // identifier without rs prefix
		"rs4\t26\t100\tAA\n" + // invalid chromosome
		"rs5\t2\t100\tAZ\n" + // invalid genotype
		"rs6\t2\t\tAA\n" + // missing field
		"rs7\tMT\t42\t--\n" // valid no-call
	path := writeTempFile(t, "sample.txt", content)

	variants, err := newTestParser().ParseFile(path)
	require.NoError(t, err)

	var ids []string
	for _, v := range variants {
		ids = append(ids, v.RSID)
	}
	assert.Equal(t, []string{"rs2", "rs1", "rs3", "rs7"}, ids)

	// First occurrence wins on duplicates.
	assert.Equal(t, int64(2000), variants[1].Position)
	assert.Equal(t, "AA", variants[1].Genotype)
}

func TestParseFileSortOrderNonDecreasing(t *testing.T) {
	content := "# rsid\tchromosome\tposition\tgenotype\n" +
		"rs10\tMT\t1\tAA\n" +
		"rs11\tY\t10\tCC\n" +
		"rs12\tX\t5\tGG\n" +
		"rs13\t22\t7\tTT\n" +
		"rs14\t2\t9\tAC\n" +
		"rs15\t2\t3\tAC\n" +
		"rs16\t10\t1\tAG\n"
	path := writeTempFile(t, "order.txt", content)

	variants, err := newTestParser().ParseFile(path)
	require.NoError(t, err)

	for i := 1; i < len(variants); i++ {
		prevRank, _ := domain.ChromosomeRank(variants[i-1].Chromosome)
		rank, _ := domain.ChromosomeRank(variants[i].Chromosome)
		if prevRank == rank {
			assert.LessOrEqual(t, variants[i-1].Position, variants[i].Position)
		} else {
			assert.Less(t, prevRank, rank)
		}
	}
}

func TestParseFileUniqueIdentifiers(t *testing.T) {
	path := writeTempFile(t, "dups.txt", genomeFileContent(50)+genomeFileContent(50))

	variants, err := newTestParser().ParseFile(path)
	require.NoError(t, err)

	seen := make(map[string]bool)
	for _, v := range variants {
		assert.False(t, seen[v.RSID], "duplicate rsID %s", v.RSID)
		seen[v.RSID] = true
	}
}

func TestParseFileNoSurvivors(t *testing.T) {
	content := "# header\n" +
		"i1\t1\t100\tAA\n" +
		"i2\t1\t200\tAA\n"
	path := writeTempFile(t, "nosurvivors.txt", content)

	_, err := newTestParser().ParseFile(path)
	var parseErr *domain.ParseError
	require.True(t, errors.As(err, &parseErr))
	assert.Contains(t, parseErr.Error(), "no variants survived")
}

func TestParseFileUnreadable(t *testing.T) {
	_, err := newTestParser().ParseFile(filepath.Join(t.TempDir(), "missing.txt"))
	var parseErr *domain.ParseError
	require.True(t, errors.As(err, &parseErr))
}

func TestParseFileColumnStructureBeyondTolerance(t *testing.T) {
	content := "# header\n" +
		"rs1\t1\t100\tAA\n" +
		"rs2,1,200,AA\n" +
		"rs3,1,300,AA\n" +
		"rs4,1,400,AA\n"
	path := writeTempFile(t, "badcols.txt", content)

	_, err := newTestParser().ParseFile(path)
	var formatErr *domain.FormatError
	require.True(t, errors.As(err, &formatErr))
}

func TestConvertToStandard(t *testing.T) {
	parser := newTestParser()
	variants := []domain.ParsedVariant{
		{RSID: "rs1", Chromosome: "1", Position: 100, Genotype: "AA"},
		{RSID: "rs2", Chromosome: "1", Position: 200, Genotype: "AG"},
		{RSID: "rs3", Chromosome: "1", Position: 300, Genotype: "--"},
	}

	standardized := parser.ConvertToStandard(variants)
	require.Len(t, standardized, 3)

	homozygous := standardized[0]
	require.NotNil(t, homozygous.Heterozygous)
	assert.False(t, *homozygous.Heterozygous)
	assert.Equal(t, "A", homozygous.Allele1)
	assert.Equal(t, "A", homozygous.Allele2)
	assert.True(t, homozygous.HomozygousAlternate())

	heterozygous := standardized[1]
	require.NotNil(t, heterozygous.Heterozygous)
	assert.True(t, *heterozygous.Heterozygous)
	assert.False(t, heterozygous.HomozygousAlternate())

	nocall := standardized[2]
	assert.Nil(t, nocall.Heterozygous)
	assert.Empty(t, nocall.Allele1)
	assert.Empty(t, nocall.Allele2)

	for _, sv := range standardized {
		assert.Equal(t, "23andMe", sv.Source)
		assert.Equal(t, "txt", sv.SourceFormat)
	}
}

func TestConvertToStandardSkipsInvalid(t *testing.T) {
	parser := newTestParser()
	variants := []domain.ParsedVariant{
		{RSID: "rs1", Chromosome: "1", Position: 100, Genotype: "AA"},
		{RSID: "bogus", Chromosome: "1", Position: 200, Genotype: "AG"},
	}

	standardized := parser.ConvertToStandard(variants)
	require.Len(t, standardized, 1)
	assert.Equal(t, "rs1", standardized[0].RSID)
}

func TestExtractHeaderInfo(t *testing.T) {
	content := "# This data file generated by 23andMe\n" +
		"# reference: build 37\n" +
		"# rsid\tchromosome\tposition\tgenotype\n" +
		"rs1\t1\t100\tAA\n" +
		"# trailing comment is past the header block\n"
	path := writeTempFile(t, "header.txt", content)

	info, err := ExtractHeaderInfo(path)
	require.NoError(t, err)
	assert.Equal(t, "build 37", info.Fields["reference"])
	assert.Contains(t, info.General, "This data file generated by 23andMe")
	assert.NotContains(t, info.General, "trailing comment is past the header block")
}

func TestStatistics(t *testing.T) {
	content := "# rsid\tchromosome\tposition\tgenotype\n" +
		"rs1\t1\t100\tAA\n" +
		"rs2\t1\t200\tAG\n" +
		"rs3\tX\t50\t--\n"
	path := writeTempFile(t, "stats.txt", content)

	stats, err := Statistics(path)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.TotalVariants)
	assert.Equal(t, []string{"1", "X"}, stats.Chromosomes)
	assert.Equal(t, 2, stats.VariantsByChromosome["1"])
	assert.Equal(t, 1, stats.GenotypeDistribution["--"])
	assert.Len(t, stats.SampleVariants, 3)
}
