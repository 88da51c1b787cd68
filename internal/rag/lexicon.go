package rag

import (
	"github.com/lucianareynaud/biogpt/internal/classify"
	"github.com/lucianareynaud/biogpt/internal/domain"
)

// lexicon holds every user-visible chat string for one language.
type lexicon struct {
	labels map[domain.Classification]string

	degradedContext  string
	generationFailed string

	analysisSource  string
	knowledgeSource string
	clinvarSource   string

	analysisHeader    string
	totalLine         string
	summaryLine       string
	significantHeader string
	variantLine       string

	knownPathogenicHeader string
	knownPathogenicLine   string
	unknownGene           string
	unknownSignificance   string
	unknownPhenotype      string
	ownVariantsHeader     string
	ownVariantLine        string

	guidelineKnowledge string
	arrayKnowledge     string
	generalKnowledge   string

	promptTemplate string

	pathogenicSuggestions []string
	vusSuggestions        []string
	generalSuggestions    []string
}

func (l lexicon) label(c domain.Classification) string {
	if label, ok := l.labels[c]; ok {
		return label
	}
	return string(c)
}

var lexicons = map[classify.Language]lexicon{
	classify.LanguagePTBR: {
		labels: map[domain.Classification]string{
			domain.Pathogenic:            "Patogênica",
			domain.LikelyPathogenic:      "Provavelmente Patogênica",
			domain.UncertainSignificance: "VUS",
			domain.LikelyBenign:          "Provavelmente Benigna",
			domain.Benign:                "Benigna",
		},

		degradedContext:  "Contexto limitado disponível devido a erro técnico.",
		generationFailed: "Desculpe, não foi possível gerar uma resposta no momento. Tente novamente.",

		analysisSource:  "Resultados da sua análise genômica",
		knowledgeSource: "Conhecimento genômico",
		clinvarSource:   "Base de dados ClinVar",

		analysisHeader:    "Análise do arquivo %s:",
		totalLine:         "- Total de variantes analisadas: %d",
		summaryLine:       "- %s: %d variantes",
		significantHeader: "\nVariantes de interesse clínico identificadas:",
		variantLine:       "- %s (genótipo %s): classificada como %s",

		knownPathogenicHeader: "Exemplos de variantes patogênicas conhecidas no ClinVar:",
		knownPathogenicLine:   "- %s no gene %s: %s. Associado a %s",
		unknownGene:           "gene desconhecido",
		unknownSignificance:   "significado desconhecido",
		unknownPhenotype:      "fenótipo não especificado",
		ownVariantsHeader:     "Informações ClinVar sobre suas variantes:",
		ownVariantLine:        "- %s: classificada como %s com base em evidências do ClinVar",

		guidelineKnowledge: `As diretrizes ACMG-2015 (American College of Medical Genetics) estabelecem critérios padronizados para classificação de variantes genéticas em cinco categorias:
1. Patogênica: Variante que causa doença
2. Provavelmente Patogênica: Evidência forte de patogenicidade
3. VUS (Variante de Significado Incerto): Evidência insuficiente
4. Provavelmente Benigna: Evidência de que não causa doença
5. Benigna: Variante normal na população

Os critérios incluem evidência populacional, computacional, funcional e segregação familiar.`,
		arrayKnowledge: `Limitações dos dados 23andMe:
- Cobertura limitada do genoma (aproximadamente 600.000 variantes)
- Foco em SNPs comuns, não incluindo indels ou variantes estruturais
- Não substitui sequenciamento clínico completo
- Dados podem ter taxa de erro de genotipagem
- Interpretação requer validação clínica`,
		generalKnowledge: `A análise genômica moderna utiliza bancos de dados como ClinVar e gnomAD para interpretar variantes.
ClinVar fornece classificações clínicas de variantes, enquanto gnomAD oferece frequências populacionais.
A interpretação deve sempre considerar o contexto clínico e histórico familiar.`,

		promptTemplate: `Você é um assistente especializado em genética médica. Responda à pergunta do usuário com base na análise genômica realizada e no contexto científico fornecido.

ANÁLISE REALIZADA:
- Arquivo: %s
- Total de variantes: %d
- Variantes patogênicas: %d
- Variantes provavelmente patogênicas: %d
- Variantes VUS: %d

CONTEXTO CIENTÍFICO:
%s

PERGUNTA DO USUÁRIO:
%s

INSTRUÇÕES:
1. Responda de forma clara e acessível
2. Use terminologia médica quando apropriado, mas explique conceitos complexos
3. Cite evidências científicas quando relevante
4. Sempre mencione que interpretações devem ser validadas por profissional médico
5. Seja objetivo e preciso

RESPOSTA:
`,

		pathogenicSuggestions: []string{
			"Quais são as implicações clínicas das variantes patogênicas encontradas?",
			"Que exames complementares são recomendados?",
			"Como essas variantes podem afetar minha saúde?",
		},
		vusSuggestions: []string{
			"O que significam as variantes de significado incerto (VUS)?",
			"As variantes VUS podem se tornar significativas no futuro?",
		},
		generalSuggestions: []string{
			"Como interpretar os resultados desta análise?",
			"Quais são as limitações desta análise genética?",
			"Devo compartilhar esses resultados com minha família?",
			"Com que frequência devo reavaliar estes resultados?",
		},
	},

	classify.LanguageEN: {
		labels: map[domain.Classification]string{
			domain.Pathogenic:            "Pathogenic",
			domain.LikelyPathogenic:      "Likely Pathogenic",
			domain.UncertainSignificance: "VUS",
			domain.LikelyBenign:          "Likely Benign",
			domain.Benign:                "Benign",
		},

		degradedContext:  "Limited context available due to a technical error.",
		generationFailed: "Sorry, a response could not be generated right now. Please try again.",

		analysisSource:  "Your genomic analysis results",
		knowledgeSource: "Genomic knowledge",
		clinvarSource:   "ClinVar database",

		analysisHeader:    "Analysis of file %s:",
		totalLine:         "- Total variants analyzed: %d",
		summaryLine:       "- %s: %d variants",
		significantHeader: "\nVariants of clinical interest identified:",
		variantLine:       "- %s (genotype %s): classified as %s",

		knownPathogenicHeader: "Examples of known pathogenic variants in ClinVar:",
		knownPathogenicLine:   "- %s in gene %s: %s. Associated with %s",
		unknownGene:           "unknown gene",
		unknownSignificance:   "unknown significance",
		unknownPhenotype:      "unspecified phenotype",
		ownVariantsHeader:     "ClinVar information about your variants:",
		ownVariantLine:        "- %s: classified as %s based on ClinVar evidence",

		guidelineKnowledge: `The ACMG-2015 guidelines (American College of Medical Genetics) establish standardized criteria for classifying genetic variants into five categories:
1. Pathogenic: disease-causing variant
2. Likely Pathogenic: strong evidence of pathogenicity
3. VUS (Variant of Uncertain Significance): insufficient evidence
4. Likely Benign: evidence against disease causation
5. Benign: normal population variant

The criteria cover population, computational, functional and family-segregation evidence.`,
		arrayKnowledge: `Limitations of 23andMe data:
- Limited genome coverage (roughly 600,000 variants)
- Focused on common SNPs, excluding indels and structural variants
- Not a substitute for full clinical sequencing
- Genotyping error rates apply
- Interpretation requires clinical validation`,
		generalKnowledge: `Modern genomic analysis uses databases such as ClinVar and gnomAD to interpret variants.
ClinVar provides clinical classifications of variants, while gnomAD provides population frequencies.
Interpretation should always consider clinical context and family history.`,

		promptTemplate: `You are an assistant specialized in medical genetics. Answer the user's question based on the genomic analysis performed and the scientific context provided.

ANALYSIS PERFORMED:
- File: %s
- Total variants: %d
- Pathogenic variants: %d
- Likely pathogenic variants: %d
- VUS variants: %d

SCIENTIFIC CONTEXT:
%s

USER QUESTION:
%s

INSTRUCTIONS:
1. Answer clearly and accessibly
2. Use medical terminology where appropriate, but explain complex concepts
3. Cite scientific evidence when relevant
4. Always mention that interpretations must be validated by a medical professional
5. Be objective and precise

ANSWER:
`,

		pathogenicSuggestions: []string{
			"What are the clinical implications of the pathogenic variants found?",
			"Which follow-up tests are recommended?",
			"How could these variants affect my health?",
		},
		vusSuggestions: []string{
			"What do variants of uncertain significance (VUS) mean?",
			"Could VUS variants become significant in the future?",
		},
		generalSuggestions: []string{
			"How should I interpret the results of this analysis?",
			"What are the limitations of this genetic analysis?",
			"Should I share these results with my family?",
			"How often should I re-evaluate these results?",
		},
	},
}
