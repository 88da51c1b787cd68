// Package rag assembles retrieval context for the chat surface: the
// caller's own analysis results, curated genomic background texts and
// knowledgebase excerpts, combined into a grounded prompt for the
// text-generation service.
package rag

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/lucianareynaud/biogpt/internal/classify"
	"github.com/lucianareynaud/biogpt/internal/domain"
)

const (
	// contextLimit bounds how many context blocks go into one prompt so
	// the model's input window is not overflowed.
	contextLimit = 5

	// significantLimit bounds how many clinically relevant variants are
	// considered when building context.
	significantLimit = 20

	// interpretationExcerptLen truncates long interpretation texts inside
	// context blocks.
	interpretationExcerptLen = 200

	maxAnswerTokens = 512

	maxSuggestions = 4
)

// PathogenicSource supplies known pathogenic knowledgebase records for
// callers whose own analysis surfaced nothing clinically relevant.
type PathogenicSource interface {
	PathogenicVariants(ctx context.Context, limit int) ([]domain.ClinVarRecord, error)
}

// Engine answers questions about a completed analysis. It is safe for
// concurrent use.
type Engine struct {
	results   domain.ResultStore
	clinvar   PathogenicSource
	generator domain.TextGenerator
	lang      classify.Language
	log       *logrus.Logger
}

// NewEngine creates a chat engine over the given stores and generator.
func NewEngine(results domain.ResultStore, clinvar PathogenicSource, generator domain.TextGenerator, lang classify.Language, log *logrus.Logger) *Engine {
	if _, ok := lexicons[lang]; !ok {
		lang = classify.LanguagePTBR
	}
	return &Engine{
		results:   results,
		clinvar:   clinvar,
		generator: generator,
		lang:      lang,
		log:       log,
	}
}

// Context is the retrieval result fed into the prompt: the combined context
// text and the human-readable names of where it came from.
type Context struct {
	Text    string   `json:"context"`
	Sources []string `json:"sources"`
}

// Response is one chat turn: the generated answer, the context sources it
// was grounded on, and follow-up questions tailored to the run's summary.
type Response struct {
	Content            string   `json:"content"`
	Sources            []string `json:"sources"`
	SuggestedQuestions []string `json:"suggested_questions"`
}

// Answer runs one chat turn for a completed run. Generation failures
// degrade to a polite fallback message instead of an error; only context
// retrieval is allowed to fail the turn.
func (e *Engine) Answer(ctx context.Context, query string, run *domain.ProcessingRun) (Response, error) {
	retrieved := e.Retrieve(ctx, query, run)

	prompt := e.BuildPrompt(query, retrieved.Text, run)
	content, err := e.generator.Generate(ctx, prompt, maxAnswerTokens)
	if err != nil {
		e.log.WithFields(logrus.Fields{
			"run_id": run.ID,
			"error":  err.Error(),
		}).Error("Text generation failed")
		content = e.lex().generationFailed
	}

	return Response{
		Content:            content,
		Sources:            retrieved.Sources,
		SuggestedQuestions: e.SuggestedQuestions(run),
	}, nil
}

// Retrieve gathers up to contextLimit context blocks for a query: the run's
// own analysis summary, a background text routed by query keywords, and
// knowledgebase excerpts. Retrieval never fails; on store errors it degrades
// to a minimal context.
func (e *Engine) Retrieve(ctx context.Context, query string, run *domain.ProcessingRun) Context {
	lex := e.lex()

	results, err := e.results.ResultsByRun(ctx, run.ID)
	if err != nil {
		e.log.WithFields(logrus.Fields{
			"run_id": run.ID,
			"error":  err.Error(),
		}).Error("Loading results for chat context failed")
		return Context{Text: lex.degradedContext, Sources: []string{}}
	}
	significant := significantResults(results)

	var contexts []string
	var sources []string

	contexts = append(contexts, e.analysisContext(run, significant))
	sources = append(sources, lex.analysisSource)

	contexts = append(contexts, e.knowledgeContext(query))
	sources = append(sources, lex.knowledgeSource)

	if clinvarContext, ok := e.clinvarContext(ctx, significant); ok {
		contexts = append(contexts, clinvarContext)
		sources = append(sources, lex.clinvarSource)
	}

	if len(contexts) > contextLimit {
		contexts = contexts[:contextLimit]
		sources = sources[:contextLimit]
	}
	return Context{
		Text:    strings.Join(contexts, "\n\n"),
		Sources: sources,
	}
}

// BuildPrompt renders the chat prompt: analysis summary header, retrieved
// context, the user's question and answering instructions.
func (e *Engine) BuildPrompt(query, contextText string, run *domain.ProcessingRun) string {
	summary := run.Summary
	if summary == nil {
		summary = &domain.ClassificationTally{}
	}
	return fmt.Sprintf(e.lex().promptTemplate,
		run.Filename,
		summary.Total,
		summary.Pathogenic,
		summary.LikelyPathogenic,
		summary.VUS,
		contextText,
		query,
	)
}

// SuggestedQuestions returns up to maxSuggestions follow-up questions,
// leading with ones relevant to what the run actually found.
func (e *Engine) SuggestedQuestions(run *domain.ProcessingRun) []string {
	lex := e.lex()

	var suggestions []string
	if summary := run.Summary; summary != nil {
		if summary.Pathogenic > 0 || summary.LikelyPathogenic > 0 {
			suggestions = append(suggestions, lex.pathogenicSuggestions...)
		}
		if summary.VUS > 0 {
			suggestions = append(suggestions, lex.vusSuggestions...)
		}
	}
	suggestions = append(suggestions, lex.generalSuggestions...)

	if len(suggestions) > maxSuggestions {
		suggestions = suggestions[:maxSuggestions]
	}
	return suggestions
}

func (e *Engine) lex() lexicon {
	return lexicons[e.lang]
}

// significantResults filters to clinically relevant classifications and
// orders them most actionable first, ties broken by confidence.
func significantResults(results []domain.VariantResult) []domain.VariantResult {
	var significant []domain.VariantResult
	for _, r := range results {
		switch r.Classification {
		case domain.Pathogenic, domain.LikelyPathogenic, domain.UncertainSignificance:
			significant = append(significant, r)
		}
	}
	sort.SliceStable(significant, func(i, j int) bool {
		ri, rj := significant[i].Classification.SeverityRank(), significant[j].Classification.SeverityRank()
		if ri != rj {
			return ri < rj
		}
		return significant[i].Confidence > significant[j].Confidence
	})
	if len(significant) > significantLimit {
		significant = significant[:significantLimit]
	}
	return significant
}

func (e *Engine) analysisContext(run *domain.ProcessingRun, significant []domain.VariantResult) string {
	lex := e.lex()

	var parts []string
	parts = append(parts, fmt.Sprintf(lex.analysisHeader, run.Filename))
	parts = append(parts, fmt.Sprintf(lex.totalLine, run.TotalVariants))
	if summary := run.Summary; summary != nil {
		for _, tier := range []struct {
			classification domain.Classification
			count          int
		}{
			{domain.Pathogenic, summary.Pathogenic},
			{domain.LikelyPathogenic, summary.LikelyPathogenic},
			{domain.UncertainSignificance, summary.VUS},
			{domain.LikelyBenign, summary.LikelyBenign},
			{domain.Benign, summary.Benign},
		} {
			if tier.count > 0 {
				parts = append(parts, fmt.Sprintf(lex.summaryLine, lex.label(tier.classification), tier.count))
			}
		}
	}

	if len(significant) > 0 {
		parts = append(parts, lex.significantHeader)
		for _, r := range significant[:min(len(significant), contextLimit)] {
			line := fmt.Sprintf(lex.variantLine, r.Variant.RSID, r.Variant.Genotype, lex.label(r.Classification))
			if r.Interpretation != "" {
				line += ". " + excerpt(r.Interpretation, interpretationExcerptLen)
			}
			parts = append(parts, line)
		}
	}
	return strings.Join(parts, "\n")
}

// clinvarContext describes knowledgebase evidence: the caller's own
// actionable variants when there are any, otherwise examples of known
// pathogenic records.
func (e *Engine) clinvarContext(ctx context.Context, significant []domain.VariantResult) (string, bool) {
	lex := e.lex()

	if len(significant) == 0 {
		known, err := e.clinvar.PathogenicVariants(ctx, 10)
		if err != nil {
			e.log.WithField("error", err.Error()).Warn("Pathogenic knowledgebase lookup failed")
			return "", false
		}
		if len(known) == 0 {
			return "", false
		}
		parts := []string{lex.knownPathogenicHeader}
		for _, record := range known[:min(len(known), contextLimit)] {
			parts = append(parts, fmt.Sprintf(lex.knownPathogenicLine,
				record.RSID,
				orDefault(record.GeneSymbol, lex.unknownGene),
				orDefault(record.ClinicalSignificance, lex.unknownSignificance),
				orDefault(record.Phenotype, lex.unknownPhenotype),
			))
		}
		return strings.Join(parts, "\n"), true
	}

	parts := []string{lex.ownVariantsHeader}
	for _, r := range significant[:min(len(significant), 3)] {
		if !r.Classification.RequiresClinicalAction() {
			continue
		}
		parts = append(parts, fmt.Sprintf(lex.ownVariantLine, r.Variant.RSID, lex.label(r.Classification)))
	}
	if len(parts) == 1 {
		return "", false
	}
	return strings.Join(parts, "\n"), true
}

// knowledgeContext routes the query to a curated background text by keyword.
func (e *Engine) knowledgeContext(query string) string {
	lex := e.lex()
	lowered := strings.ToLower(query)

	if containsAny(lowered, guidelineTerms) {
		return lex.guidelineKnowledge
	}
	if containsAny(lowered, arrayTerms) {
		return lex.arrayKnowledge
	}
	return lex.generalKnowledge
}

var (
	guidelineTerms = []string{"acmg", "classificação", "classification", "critérios", "criteria", "guidelines"}
	arrayTerms     = []string{"23andme", "limitações", "limitations"}
)

func containsAny(s string, terms []string) bool {
	for _, term := range terms {
		if strings.Contains(s, term) {
			return true
		}
	}
	return false
}

// excerpt truncates by runes so accented interpretation text is never cut
// mid-character.
func excerpt(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "..."
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
