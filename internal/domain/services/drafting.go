package services

import (
	"encoding/json"
	"strings"

	"github.com/ersonp/sarcheck/internal/domain/entities"
)

// BuildDraftPrompt composes the drafting instruction from case facts.
func BuildDraftPrompt(caseData string, facts entities.FiveWs) string {
	var b strings.Builder
	b.WriteString("\nYou are assisting an AML analyst to draft a SAR narrative.\n")
	b.WriteString("Follow FinCEN guidance: be clear, concise, chronological; avoid speculation.\n")
	b.WriteString("Include Who/What/When/Where/Why and key facts only.\n")
	b.WriteString("Label the output as 'AI-assisted draft'.\n\n")
	b.WriteString("5Ws:\n")
	b.WriteString(strings.TrimRight(facts.String(), "\n"))
	b.WriteString("\n\nFacts:\n")
	b.WriteString(caseData)
	b.WriteString("\n\nProduce a single narrative paragraph set appropriate for a SAR filing.\n")
	return b.String()
}

// RecordsToCaseData renders records one JSON object per line for prompting.
func RecordsToCaseData(records []entities.FactRecord) string {
	lines := make([]string, 0, len(records))
	for _, rec := range records {
		data, err := json.Marshal(rec)
		if err != nil {
			continue
		}
		lines = append(lines, string(data))
	}
	return strings.Join(lines, "\n")
}
