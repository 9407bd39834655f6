package services

import (
	"fmt"
	"strings"

	"github.com/ersonp/sarcheck/internal/domain/entities"
)

// AIDraftLabel prefixes generated narratives that do not already carry a disclaimer.
const AIDraftLabel = "AI-assisted draft:\n"

const aiMarker = "AI-assisted"

// BuildRemediationPrompt turns a compliance report and the narrative it was
// computed on into a directive for a text generator. Every failed item is
// listed with its label and remediation text.
func BuildRemediationPrompt(report *entities.ComplianceReport, narrative string) string {
	var failed []entities.ChecklistItem
	if report != nil {
		failed = report.Failed()
	}

	var b strings.Builder
	b.WriteString("You are assisting an AML analyst to revise a SAR narrative that failed compliance review.\n")
	b.WriteString("Follow FinCEN guidance: be clear, concise, chronological; avoid speculation.\n")
	b.WriteString("Keep every fact already present. Do not invent names, amounts, dates or locations.\n\n")

	b.WriteString("Failed checklist items:\n")
	if len(failed) == 0 {
		b.WriteString("(none)\n")
	}
	for i, item := range failed {
		fmt.Fprintf(&b, "%d. %s\n", i+1, item.Label)
		if item.Remediation != "" {
			b.WriteString("   Remediation: ")
			b.WriteString(strings.ReplaceAll(item.Remediation, "\n", "\n   "))
			b.WriteString("\n")
		}
	}

	keys := make([]string, 0, len(failed))
	for _, item := range failed {
		keys = append(keys, string(item.Key))
	}
	b.WriteString("\nYou must fix: ")
	if len(keys) == 0 {
		b.WriteString("nothing")
	} else {
		b.WriteString(strings.Join(keys, ", "))
	}
	b.WriteString(".\n\n")

	b.WriteString("Current narrative:\n")
	b.WriteString(narrative)
	b.WriteString("\n\nReturn only the revised narrative text. Label the output as 'AI-assisted draft'.\n")
	return b.String()
}

// LabelAIDraft prefixes text with AIDraftLabel unless it already mentions
// that it is AI-assisted.
func LabelAIDraft(text string) string {
	if strings.Contains(text, aiMarker) {
		return text
	}
	return AIDraftLabel + text
}
