package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/ersonp/sarcheck/internal/domain/entities"
)

var (
	deletedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Strikethrough(true)
	insertedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Underline(true)
	blockLabelStyle = lipgloss.NewStyle().Faint(true).Italic(true)
)

// reportMarkdown renders a compliance report as a markdown checklist.
func reportMarkdown(report *entities.ComplianceReport) string {
	var b strings.Builder

	status := "PASS"
	if !report.Overall {
		status = "FAIL"
	}
	fmt.Fprintf(&b, "# Compliance checklist: %s\n\n", status)
	fmt.Fprintf(&b, "Narrative length: %d characters\n\n", report.Length)

	b.WriteString("| Who | What | When | Where | Why |\n")
	b.WriteString("|-----|------|------|-------|-----|\n")
	fmt.Fprintf(&b, "| %d | %d | %d | %d | %d |\n\n",
		report.FiveWsCounts[entities.CategoryWho],
		report.FiveWsCounts[entities.CategoryWhat],
		report.FiveWsCounts[entities.CategoryWhen],
		report.FiveWsCounts[entities.CategoryWhere],
		report.FiveWsCounts[entities.CategoryWhy],
	)

	for _, item := range report.Items {
		mark := "x"
		if !item.Passed {
			mark = " "
		}
		fmt.Fprintf(&b, "- [%s] **%s**\n", mark, item.Label)
		if item.Details != nil {
			writeDetails(&b, item.Details)
		}
		if !item.Passed && item.Remediation != "" {
			for line := range strings.SplitSeq(item.Remediation, "\n") {
				fmt.Fprintf(&b, "  > %s\n", line)
			}
		}
	}

	return b.String()
}

func writeDetails(b *strings.Builder, d *entities.ItemDetails) {
	if len(d.Missing) > 0 {
		missing := make([]string, 0, len(d.Missing))
		for _, c := range d.Missing {
			missing = append(missing, string(c))
		}
		fmt.Fprintf(b, "  - missing: %s\n", strings.Join(missing, ", "))
	}
	if d.First != "" {
		fmt.Fprintf(b, "  - first: %s, last: %s\n", d.First, d.Last)
	}
	if d.Error != "" {
		fmt.Fprintf(b, "  - %s\n", d.Error)
	}
	if len(d.Matches) > 0 {
		fmt.Fprintf(b, "  - matched: %s\n", strings.Join(d.Matches, ", "))
	}
}

// renderMarkdown styles markdown for the terminal. The raw markdown is
// returned when the renderer cannot be built.
func renderMarkdown(md string) string {
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		return md
	}
	out, err := renderer.Render(md)
	if err != nil {
		return md
	}
	return out
}

func writeLabel(b *strings.Builder, seg entities.DiffSegment) {
	if label := seg.Label(); label != "" {
		b.WriteString(blockLabelStyle.Render("[" + label + "]"))
		b.WriteString("\n")
	}
}

// renderDiffTerminal colours a diff: deletions red and struck through,
// insertions green and underlined.
func renderDiffTerminal(result entities.DiffResult) string {
	if result.Identical {
		return entities.NoChangesMessage + "\n"
	}

	var b strings.Builder
	for _, seg := range result.Segments {
		switch seg.Kind {
		case entities.SegmentUnchanged:
			b.WriteString(seg.Text)
		case entities.SegmentDeleted:
			writeLabel(&b, seg)
			b.WriteString(deletedStyle.Render(seg.Text))
		case entities.SegmentInserted:
			writeLabel(&b, seg)
			b.WriteString(insertedStyle.Render(seg.Text))
		case entities.SegmentEdited:
			for _, span := range seg.Spans {
				switch span.Kind {
				case entities.SegmentDeleted:
					b.WriteString(deletedStyle.Render(span.Text))
				case entities.SegmentInserted:
					b.WriteString(insertedStyle.Render(span.Text))
				default:
					b.WriteString(span.Text)
				}
			}
		}
	}

	if !strings.HasSuffix(b.String(), "\n") {
		b.WriteString("\n")
	}
	return b.String()
}
