package report

import (
	"github.com/lucianareynaud/biogpt/internal/classify"
	"github.com/lucianareynaud/biogpt/internal/domain"
)

// reportLocale carries everything language-specific about a report: date
// layouts, classification display names and the markdown template itself.
type reportLocale struct {
	dateFormat     string
	dateFormatLong string
	labels         map[domain.Classification]string
	tableLabels    map[domain.Classification]string
	template       string
}

var locales = map[classify.Language]reportLocale{
	classify.LanguagePTBR: {
		dateFormat:     "02/01/2006 15:04",
		dateFormatLong: "02/01/2006 às 15:04",
		labels: map[domain.Classification]string{
			domain.Pathogenic:            "Patogênica",
			domain.LikelyPathogenic:      "Provavelmente Patogênica",
			domain.UncertainSignificance: "VUS",
			domain.LikelyBenign:          "Provavelmente Benigna",
			domain.Benign:                "Benigna",
		},
		tableLabels: map[domain.Classification]string{
			domain.Pathogenic:            "Patogênica",
			domain.LikelyPathogenic:      "Provavelmente Patogênica",
			domain.UncertainSignificance: "VUS (Significado Incerto)",
			domain.LikelyBenign:          "Provavelmente Benigna",
			domain.Benign:                "Benigna",
		},
		template: `# Relatório de Análise Genômica

**Data de Geração:** {{.GeneratedAt}}
**Arquivo Analisado:** {{.Filename}}
**ID da Análise:** {{.RunID}}

---

## Resumo Executivo

Esta análise genômica foi realizada sobre o arquivo **{{.Filename}}** utilizando dados do 23andMe. O relatório apresenta a classificação de {{.Total}} variantes genéticas de acordo com as diretrizes ACMG-2015 simplificadas.

### Estatísticas Gerais

| Classificação | Quantidade | Percentual |
|--------------|------------|-------------|
{{range .Rows}}| **{{.Label}}** | {{.Count}} | {{.Percent}}% |
{{end}}
---

## Variantes de Significado Clínico

{{if .Significant}}### Variantes Patogênicas e Provavelmente Patogênicas

{{range .Significant}}#### {{.RSID}} - {{.Classification}}

**Localização:** Cromossomo {{.Chromosome}}, posição {{.Position}}
**Genótipo:** {{.Genotype}}
**Nível de Confiança:** {{.ConfidencePct}}%

{{.Interpretation}}

---
{{end}}{{if gt .SignificantTotal 10}}
*Nota: Este relatório mostra as primeiras 10 variantes significativas. O total de variantes patogênicas/provavelmente patogênicas é {{.SignificantTotal}}.*
{{end}}{{else}}### Nenhuma Variante Patogênica Identificada

Não foram identificadas variantes classificadas como patogênicas ou provavelmente patogênicas nesta análise.
{{end}}
---

## Variantes de Significado Incerto (VUS)

{{if .VUS}}Foram identificadas {{.VUSTotal}} variantes de significado incerto (VUS). Estas variantes requerem mais evidências científicas para determinação de seu impacto clínico.

### Primeiras 5 Variantes VUS

{{range .VUS}}- **{{.RSID}}** (Chr{{.Chromosome}}:{{.Position}}) - Genótipo: {{.Genotype}}
{{end}}{{if gt .VUSRemainder 0}}
*E mais {{.VUSRemainder}} variantes VUS...*
{{end}}{{end}}
---

## Metodologia

### Dados Utilizados
- **Fonte dos Dados:** Arquivo 23andMe (.txt)
- **Banco de Dados de Referência:** ClinVar, gnomAD
- **Diretrizes de Classificação:** ACMG-2015 (versão simplificada)
- **Modelo de IA:** PubMedBERT para interpretação clínica

### Limitações
1. Esta análise utiliza uma versão simplificada das diretrizes ACMG-2015
2. Os dados do 23andMe possuem limitações em comparação com sequenciamento clínico
3. Interpretações clínicas são geradas por IA e devem ser validadas por profissional habilitado
4. Variantes raras podem não ter dados suficientes para classificação definitiva

---

## Recomendações

{{if .HasActionable}}⚠️ **IMPORTANTE:** Foram identificadas variantes potencialmente significativas. Recomenda-se:

1. Consulta com médico geneticista
2. Validação por sequenciamento clínico
3. Aconselhamento genético familiar
4. Acompanhamento médico especializado
{{else}}✅ **Resultado Favorável:** Não foram identificadas variantes patogênicas conhecidas.

**Recomendações:**
1. Manter acompanhamento médico de rotina
2. Reavaliar periodicamente conforme novas evidências científicas
3. Considerar histórico familiar para decisões clínicas
{{end}}
---

## Considerações Importantes

Este relatório é baseado em análise computacional de dados genéticos e **NÃO substitui consulta médica especializada**. As interpretações apresentadas devem ser validadas por profissional habilitado antes de qualquer decisão clínica.

Para mais informações ou dúvidas sobre este relatório, utilize o sistema de chat disponível na plataforma.

---

*Relatório gerado pelo sistema BioGPT em {{.GeneratedAtLong}}*
`,
	},

	classify.LanguageEN: {
		dateFormat:     "01/02/2006 15:04",
		dateFormatLong: "01/02/2006 at 15:04",
		labels: map[domain.Classification]string{
			domain.Pathogenic:            "Pathogenic",
			domain.LikelyPathogenic:      "Likely Pathogenic",
			domain.UncertainSignificance: "VUS",
			domain.LikelyBenign:          "Likely Benign",
			domain.Benign:                "Benign",
		},
		tableLabels: map[domain.Classification]string{
			domain.Pathogenic:            "Pathogenic",
			domain.LikelyPathogenic:      "Likely Pathogenic",
			domain.UncertainSignificance: "VUS (Uncertain Significance)",
			domain.LikelyBenign:          "Likely Benign",
			domain.Benign:                "Benign",
		},
		template: `# Genomic Analysis Report

**Generation Date:** {{.GeneratedAt}}
**Analyzed File:** {{.Filename}}
**Analysis ID:** {{.RunID}}

---

## Executive Summary

This genomic analysis was performed on the file **{{.Filename}}** using 23andMe data. The report presents the classification of {{.Total}} genetic variants according to simplified ACMG-2015 guidelines.

### General Statistics

| Classification | Count | Percentage |
|---------------|-------|------------|
{{range .Rows}}| **{{.Label}}** | {{.Count}} | {{.Percent}}% |
{{end}}
---

## Clinically Significant Variants

{{if .Significant}}### Pathogenic and Likely Pathogenic Variants

{{range .Significant}}#### {{.RSID}} - {{.Classification}}

**Location:** Chromosome {{.Chromosome}}, position {{.Position}}
**Genotype:** {{.Genotype}}
**Confidence Level:** {{.ConfidencePct}}%

{{.Interpretation}}

---
{{end}}{{if gt .SignificantTotal 10}}
*Note: This report shows the first 10 significant variants. Total pathogenic/likely pathogenic variants: {{.SignificantTotal}}.*
{{end}}{{else}}### No Pathogenic Variants Identified

No variants classified as pathogenic or likely pathogenic were identified in this analysis.
{{end}}
---

## Variants of Uncertain Significance (VUS)

{{if .VUS}}{{.VUSTotal}} variants of uncertain significance (VUS) were identified. These variants require more scientific evidence to determine their clinical impact.

### First 5 VUS Variants

{{range .VUS}}- **{{.RSID}}** (Chr{{.Chromosome}}:{{.Position}}) - Genotype: {{.Genotype}}
{{end}}{{if gt .VUSRemainder 0}}
*And {{.VUSRemainder}} more VUS variants...*
{{end}}{{end}}
---

## Methodology

### Data Sources
- **Data Source:** 23andMe file (.txt)
- **Reference Databases:** ClinVar, gnomAD
- **Classification Guidelines:** ACMG-2015 (simplified version)
- **AI Model:** PubMedBERT for clinical interpretation

### Limitations
1. This analysis uses a simplified version of ACMG-2015 guidelines
2. 23andMe data has limitations compared to clinical sequencing
3. Clinical interpretations are AI-generated and should be validated by qualified professionals
4. Rare variants may lack sufficient data for definitive classification

---

## Recommendations

{{if .HasActionable}}⚠️ **IMPORTANT:** Potentially significant variants were identified. Recommendations:

1. Consultation with medical geneticist
2. Validation through clinical sequencing
3. Family genetic counseling
4. Specialized medical follow-up
{{else}}✅ **Favorable Result:** No known pathogenic variants were identified.

**Recommendations:**
1. Maintain routine medical follow-up
2. Periodic reassessment as new scientific evidence emerges
3. Consider family history for clinical decisions
{{end}}
---

## Important Considerations

This report is based on computational analysis of genetic data and **DOES NOT replace specialized medical consultation**. The interpretations presented should be validated by qualified professionals before any clinical decision.

For more information or questions about this report, use the chat system available on the platform.

---

*Report generated by the BioGPT system on {{.GeneratedAtLong}}*
`,
	},
}
