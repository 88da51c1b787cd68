package rag

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lucianareynaud/biogpt/internal/classify"
	"github.com/lucianareynaud/biogpt/internal/domain"
)

type fakeResults struct {
	results []domain.VariantResult
	err     error
}

func (f *fakeResults) SaveResult(_ context.Context, _ *domain.VariantResult) error { return nil }

func (f *fakeResults) ResultsByRun(_ context.Context, _ string) ([]domain.VariantResult, error) {
	return f.results, f.err
}

func (f *fakeResults) Close() error { return nil }

type fakePathogenic struct {
	records []domain.ClinVarRecord
	err     error
}

func (f *fakePathogenic) PathogenicVariants(_ context.Context, limit int) ([]domain.ClinVarRecord, error) {
	if f.err != nil {
		return nil, f.err
	}
	if len(f.records) > limit {
		return f.records[:limit], nil
	}
	return f.records, nil
}

type fakeGenerator struct {
	prompt string
	text   string
	err    error
}

func (f *fakeGenerator) Generate(_ context.Context, prompt string, _ int) (string, error) {
	f.prompt = prompt
	return f.text, f.err
}

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func resultWith(rsid string, classification domain.Classification, confidence float64) domain.VariantResult {
	return domain.VariantResult{
		ID:    "result-" + rsid,
		RunID: "run-1",
		Variant: domain.StandardizedVariant{
			RSID:       rsid,
			Chromosome: "1",
			Position:   1000,
			Genotype:   "AA",
		},
		Classification: classification,
		Confidence:     confidence,
		Interpretation: "Variante de teste.",
	}
}

func completedRun(summary *domain.ClassificationTally) *domain.ProcessingRun {
	return &domain.ProcessingRun{
		ID:            "run-1",
		Filename:      "genome.txt",
		Status:        domain.StatusCompleted,
		TotalVariants: 10,
		Summary:       summary,
	}
}

func TestRetrieveUsesOwnActionableVariants(t *testing.T) {
	results := &fakeResults{results: []domain.VariantResult{
		resultWith("rs100", domain.Benign, 0.9),
		resultWith("rs200", domain.Pathogenic, 0.8),
		resultWith("rs300", domain.UncertainSignificance, 0.5),
	}}
	engine := NewEngine(results, &fakePathogenic{}, &fakeGenerator{}, classify.LanguagePTBR, quietLogger())

	run := completedRun(&domain.ClassificationTally{Total: 10, Pathogenic: 1, VUS: 1, Benign: 8})
	retrieved := engine.Retrieve(context.Background(), "o que foi encontrado?", run)

	assert.Contains(t, retrieved.Text, "Análise do arquivo genome.txt:")
	assert.Contains(t, retrieved.Text, "rs200")
	assert.Contains(t, retrieved.Text, "Patogênica")
	assert.Contains(t, retrieved.Text, "Informações ClinVar sobre suas variantes:")
	assert.NotContains(t, retrieved.Text, "Exemplos de variantes patogênicas conhecidas")
	assert.Equal(t, []string{
		"Resultados da sua análise genômica",
		"Conhecimento genômico",
		"Base de dados ClinVar",
	}, retrieved.Sources)
}

func TestRetrieveFallsBackToKnownPathogenicRecords(t *testing.T) {
	clinvar := &fakePathogenic{records: []domain.ClinVarRecord{
		{RSID: "rs429358", GeneSymbol: "APOE", ClinicalSignificance: "Pathogenic", Phenotype: "Alzheimer disease"},
		{RSID: "rs777", ClinicalSignificance: "Pathogenic"},
	}}
	engine := NewEngine(&fakeResults{}, clinvar, &fakeGenerator{}, classify.LanguagePTBR, quietLogger())

	retrieved := engine.Retrieve(context.Background(), "pergunta", completedRun(nil))

	assert.Contains(t, retrieved.Text, "Exemplos de variantes patogênicas conhecidas no ClinVar:")
	assert.Contains(t, retrieved.Text, "rs429358 no gene APOE: Pathogenic. Associado a Alzheimer disease")
	assert.Contains(t, retrieved.Text, "rs777 no gene gene desconhecido")
	assert.Contains(t, retrieved.Sources, "Base de dados ClinVar")
}

func TestRetrieveDegradesOnResultStoreError(t *testing.T) {
	results := &fakeResults{err: errors.New("store offline")}
	engine := NewEngine(results, &fakePathogenic{}, &fakeGenerator{}, classify.LanguagePTBR, quietLogger())

	retrieved := engine.Retrieve(context.Background(), "pergunta", completedRun(nil))

	assert.Equal(t, "Contexto limitado disponível devido a erro técnico.", retrieved.Text)
	assert.Empty(t, retrieved.Sources)
}

func TestKnowledgeContextKeywordRouting(t *testing.T) {
	engine := NewEngine(&fakeResults{}, &fakePathogenic{}, &fakeGenerator{}, classify.LanguageEN, quietLogger())

	tests := []struct {
		name  string
		query string
		want  string
	}{
		{"guideline terms", "How does ACMG classification work?", "ACMG-2015 guidelines"},
		{"array terms", "what are the limitations of 23andme?", "Limitations of 23andMe data"},
		{"general fallback", "tell me about my genome", "ClinVar provides clinical classifications"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Contains(t, engine.knowledgeContext(tt.query), tt.want)
		})
	}
}

func TestSignificantResultsOrdering(t *testing.T) {
	results := []domain.VariantResult{
		resultWith("rs1", domain.UncertainSignificance, 0.9),
		resultWith("rs2", domain.Pathogenic, 0.6),
		resultWith("rs3", domain.Benign, 0.99),
		resultWith("rs4", domain.Pathogenic, 0.8),
		resultWith("rs5", domain.LikelyPathogenic, 0.7),
	}

	significant := significantResults(results)

	require.Len(t, significant, 4)
	got := make([]string, len(significant))
	for i, r := range significant {
		got[i] = r.Variant.RSID
	}
	assert.Equal(t, []string{"rs4", "rs2", "rs5", "rs1"}, got)
}

func TestAnswerBuildsGroundedPrompt(t *testing.T) {
	generator := &fakeGenerator{text: "Your APOE variant is clinically relevant."}
	results := &fakeResults{results: []domain.VariantResult{
		resultWith("rs429358", domain.Pathogenic, 0.9),
	}}
	engine := NewEngine(results, &fakePathogenic{}, generator, classify.LanguageEN, quietLogger())

	run := completedRun(&domain.ClassificationTally{Total: 10, Pathogenic: 1, VUS: 2, Benign: 7})
	response, err := engine.Answer(context.Background(), "what does rs429358 mean?", run)
	require.NoError(t, err)

	assert.Equal(t, "Your APOE variant is clinically relevant.", response.Content)
	assert.Contains(t, generator.prompt, "what does rs429358 mean?")
	assert.Contains(t, generator.prompt, "- File: genome.txt")
	assert.Contains(t, generator.prompt, "- Pathogenic variants: 1")
	assert.Contains(t, generator.prompt, "rs429358")
	assert.NotEmpty(t, response.Sources)
}

func TestAnswerFallsBackWhenGenerationFails(t *testing.T) {
	generator := &fakeGenerator{err: errors.New("model server down")}
	engine := NewEngine(&fakeResults{}, &fakePathogenic{}, generator, classify.LanguagePTBR, quietLogger())

	response, err := engine.Answer(context.Background(), "pergunta", completedRun(nil))
	require.NoError(t, err)

	assert.Equal(t, "Desculpe, não foi possível gerar uma resposta no momento. Tente novamente.", response.Content)
}

func TestSuggestedQuestionsFollowSummary(t *testing.T) {
	engine := NewEngine(&fakeResults{}, &fakePathogenic{}, &fakeGenerator{}, classify.LanguageEN, quietLogger())

	withPathogenic := engine.SuggestedQuestions(completedRun(&domain.ClassificationTally{Pathogenic: 2}))
	require.Len(t, withPathogenic, 4)
	assert.Equal(t, "What are the clinical implications of the pathogenic variants found?", withPathogenic[0])

	vusOnly := engine.SuggestedQuestions(completedRun(&domain.ClassificationTally{VUS: 3}))
	require.Len(t, vusOnly, 4)
	assert.Equal(t, "What do variants of uncertain significance (VUS) mean?", vusOnly[0])

	clean := engine.SuggestedQuestions(completedRun(&domain.ClassificationTally{Benign: 5}))
	require.Len(t, clean, 4)
	assert.Equal(t, "How should I interpret the results of this analysis?", clean[0])
}
