// Package report renders markdown clinical reports from a completed run's
// results.
package report

import (
	"fmt"
	"strings"
	"text/template"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/lucianareynaud/biogpt/internal/classify"
	"github.com/lucianareynaud/biogpt/internal/domain"
)

const (
	// maxSignificant caps how many pathogenic or likely pathogenic
	// variants get a full section; the rest are summarized in a note.
	maxSignificant = 10

	// maxVUS caps the listed variants of uncertain significance.
	maxVUS = 5
)

// Generator renders reports in one language. It is safe for concurrent use.
type Generator struct {
	lang classify.Language
	tmpl *template.Template
	loc  reportLocale
	now  func() time.Time
	log  *logrus.Logger
}

// NewGenerator builds a report generator for the given language, falling
// back to Portuguese for unknown languages.
func NewGenerator(lang classify.Language, log *logrus.Logger) *Generator {
	loc, ok := locales[lang]
	if !ok {
		lang = classify.LanguagePTBR
		loc = locales[lang]
	}
	return &Generator{
		lang: lang,
		tmpl: template.Must(template.New("report").Parse(loc.template)),
		loc:  loc,
		now:  time.Now,
		log:  log,
	}
}

type summaryRow struct {
	Label   string
	Count   int
	Percent string
}

type variantSection struct {
	RSID           string
	Classification string
	Chromosome     string
	Position       int64
	Genotype       string
	ConfidencePct  string
	Interpretation string
}

type vusLine struct {
	RSID       string
	Chromosome string
	Position   int64
	Genotype   string
}

type reportView struct {
	GeneratedAt     string
	GeneratedAtLong string
	Filename        string
	RunID           string
	Total           int

	Rows []summaryRow

	Significant      []variantSection
	SignificantTotal int

	VUS          []vusLine
	VUSTotal     int
	VUSRemainder int

	HasActionable bool
}

// Markdown renders the full clinical report for a completed run.
func (g *Generator) Markdown(run *domain.ProcessingRun, results []domain.VariantResult) (string, error) {
	view := g.buildView(run, results)

	var out strings.Builder
	if err := g.tmpl.Execute(&out, view); err != nil {
		return "", fmt.Errorf("rendering report for run %s: %w", run.ID, err)
	}

	g.log.WithFields(logrus.Fields{
		"run_id":   run.ID,
		"language": string(g.lang),
		"variants": view.Total,
	}).Info("Clinical report generated")
	return out.String(), nil
}

func (g *Generator) buildView(run *domain.ProcessingRun, results []domain.VariantResult) reportView {
	summary := run.Summary
	if summary == nil {
		summary = tally(results)
	}

	now := g.now()
	view := reportView{
		GeneratedAt:     now.Format(g.loc.dateFormat),
		GeneratedAtLong: now.Format(g.loc.dateFormatLong),
		Filename:        run.Filename,
		RunID:           run.ID,
		Total:           summary.Total,
		HasActionable:   summary.Pathogenic > 0 || summary.LikelyPathogenic > 0,
	}

	for _, row := range []struct {
		classification domain.Classification
		count          int
	}{
		{domain.Pathogenic, summary.Pathogenic},
		{domain.LikelyPathogenic, summary.LikelyPathogenic},
		{domain.UncertainSignificance, summary.VUS},
		{domain.LikelyBenign, summary.LikelyBenign},
		{domain.Benign, summary.Benign},
	} {
		view.Rows = append(view.Rows, summaryRow{
			Label:   g.loc.tableLabels[row.classification],
			Count:   row.count,
			Percent: percent(row.count, summary.Total),
		})
	}

	for _, r := range results {
		switch r.Classification {
		case domain.Pathogenic, domain.LikelyPathogenic:
			view.SignificantTotal++
			if len(view.Significant) < maxSignificant {
				view.Significant = append(view.Significant, variantSection{
					RSID:           r.Variant.RSID,
					Classification: g.loc.labels[r.Classification],
					Chromosome:     r.Variant.Chromosome,
					Position:       r.Variant.Position,
					Genotype:       r.Variant.Genotype,
					ConfidencePct:  fmt.Sprintf("%.1f", r.Confidence*100),
					Interpretation: r.Interpretation,
				})
			}
		case domain.UncertainSignificance:
			view.VUSTotal++
			if len(view.VUS) < maxVUS {
				view.VUS = append(view.VUS, vusLine{
					RSID:       r.Variant.RSID,
					Chromosome: r.Variant.Chromosome,
					Position:   r.Variant.Position,
					Genotype:   r.Variant.Genotype,
				})
			}
		}
	}
	view.VUSRemainder = view.VUSTotal - len(view.VUS)

	return view
}

func tally(results []domain.VariantResult) *domain.ClassificationTally {
	t := &domain.ClassificationTally{}
	for _, r := range results {
		t.Add(r.Classification)
	}
	return t
}

func percent(count, total int) string {
	if total == 0 {
		return "0.0"
	}
	return fmt.Sprintf("%.1f", float64(count)/float64(total)*100)
}
