package classify

import (
	"fmt"

	"github.com/lucianareynaud/biogpt/internal/domain"
)

// Language selects the interpretation text locale.
type Language string

const (
	LanguagePTBR Language = "pt-BR"
	LanguageEN   Language = "en"
)

var interpretationTemplates = map[Language]map[domain.Classification]string{
	LanguagePTBR: {
		domain.Pathogenic: "A variante %s (genótipo: %s) foi classificada como " +
			"PATOGÊNICA com base nos critérios ACMG-2015. Esta variante está " +
			"associada a risco aumentado de desenvolvimento de condições genéticas. " +
			"Recomenda-se acompanhamento médico especializado.",
		domain.LikelyPathogenic: "A variante %s (genótipo: %s) foi classificada como " +
			"PROVAVELMENTE PATOGÊNICA. Existe evidência sugestiva de que esta " +
			"variante possa estar associada a risco de condições genéticas. " +
			"Recomenda-se consulta com geneticista.",
		domain.UncertainSignificance: "A variante %s (genótipo: %s) foi classificada como " +
			"VARIANTE DE SIGNIFICADO INCERTO (VUS). Não há evidência suficiente " +
			"para determinar o impacto clínico desta variante. Reavaliação " +
			"periódica pode ser necessária conforme novas evidências emergem.",
		domain.LikelyBenign: "A variante %s (genótipo: %s) foi classificada como " +
			"PROVAVELMENTE BENIGNA. É improvável que esta variante cause " +
			"condições genéticas significativas.",
		domain.Benign: "A variante %s (genótipo: %s) foi classificada como " +
			"BENIGNA. Esta variante não está associada a risco de condições " +
			"genéticas e é considerada uma variação normal.",
	},
	LanguageEN: {
		domain.Pathogenic: "Variant %s (genotype: %s) was classified as " +
			"PATHOGENIC based on ACMG-2015 criteria. This variant is " +
			"associated with increased risk of genetic conditions. " +
			"Specialized medical follow-up is recommended.",
		domain.LikelyPathogenic: "Variant %s (genotype: %s) was classified as " +
			"LIKELY PATHOGENIC. There is suggestive evidence that this " +
			"variant may be associated with risk of genetic conditions. " +
			"Consultation with a geneticist is recommended.",
		domain.UncertainSignificance: "Variant %s (genotype: %s) was classified as " +
			"VARIANT OF UNCERTAIN SIGNIFICANCE (VUS). There is insufficient " +
			"evidence to determine the clinical impact of this variant. " +
			"Periodic reassessment may be necessary as new evidence emerges.",
		domain.LikelyBenign: "Variant %s (genotype: %s) was classified as " +
			"LIKELY BENIGN. This variant is unlikely to cause significant " +
			"genetic conditions.",
		domain.Benign: "Variant %s (genotype: %s) was classified as " +
			"BENIGN. This variant is not associated with risk of genetic " +
			"conditions and is considered normal variation.",
	},
}

// Interpret renders the clinical narrative for a classified variant.
// Unknown languages fall back to Portuguese, matching the service
// default. Conflicting items are excluded from the evidence count
// because they weaken rather than support the call.
func Interpret(classification domain.Classification, ledger domain.EvidenceLedger, variant domain.StandardizedVariant, lang Language) string {
	templates, ok := interpretationTemplates[lang]
	if !ok {
		lang = LanguagePTBR
		templates = interpretationTemplates[LanguagePTBR]
	}

	base, ok := templates[classification]
	if !ok {
		if lang == LanguagePTBR {
			return "Classificação indeterminada."
		}
		return "Indeterminate classification."
	}

	text := fmt.Sprintf(base, variant.RSID, variant.Genotype)
	supporting := len(ledger.Pathogenic) + len(ledger.Benign) + len(ledger.Supporting)

	if lang == LanguagePTBR {
		return text + fmt.Sprintf("\n\nEsta classificação é baseada em %d critério(s) ACMG.", supporting)
	}
	return text + fmt.Sprintf("\n\nThis classification is based on %d ACMG criteria.", supporting)
}
