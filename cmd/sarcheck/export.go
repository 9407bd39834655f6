package main

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/ersonp/sarcheck/internal/domain/entities"
)

type exportFlags struct {
	format string
	output string
}

func newExportCmd() *cobra.Command {
	var flags exportFlags

	cmd := &cobra.Command{
		Use:   "export <case-id>",
		Short: "Export a signed-off case",
		Long:  "Exports the final narrative, its SHA-256, the evidence, the checklist report and the audit trail. CSV exports the audit trail only.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(cmd, args[0], flags)
		},
	}

	cmd.Flags().StringVarP(&flags.format, "format", "f", "json", "Output format (json, csv, markdown)")
	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "Output file (default: stdout)")

	return cmd
}

func runExport(cmd *cobra.Command, caseID string, flags exportFlags) error {
	if err := checkFormat(flags.format, exportFormats); err != nil {
		return err
	}

	ctx := cmd.Context()

	return withDeps(ctx, func(d *Deps) error {
		bundle, err := d.Review.Export(ctx, caseID)
		if err != nil {
			return err
		}

		err = writeOutput(flags.output, func(w io.Writer) error {
			return formatBundle(w, bundle, flags.format)
		})
		if err != nil {
			return fmt.Errorf("formatting output: %w", err)
		}

		if flags.output != "" {
			fmt.Printf("Exported case %s to %s\n", caseID, flags.output)
		}
		return nil
	})
}

func formatBundle(w io.Writer, bundle *entities.ExportBundle, format string) error {
	switch format {
	case "json":
		return formatJSON(w, bundle)
	case "csv":
		return formatAuditCSV(w, bundle.AuditTrail)
	case "markdown":
		return formatMarkdown(w, bundle)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

func formatJSON(w io.Writer, bundle *entities.ExportBundle) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(bundle)
}

func formatMarkdown(w io.Writer, bundle *entities.ExportBundle) error {
	var b strings.Builder

	fmt.Fprintf(&b, "# SAR narrative export\n\n")
	if bundle.CaseID != "" {
		fmt.Fprintf(&b, "- Case: `%s`\n", bundle.CaseID)
	}
	fmt.Fprintf(&b, "- Generated: %s\n", bundle.GeneratedAt.Format(time.RFC3339))
	fmt.Fprintf(&b, "- Narrative SHA-256: `%s`\n", bundle.NarrativeSHA256)
	fmt.Fprintf(&b, "- Evidence records: %d\n\n", len(bundle.Facts))

	b.WriteString("## Narrative\n\n")
	b.WriteString(strings.TrimSpace(bundle.Narrative))
	b.WriteString("\n\n")

	if bundle.ChecklistReport != nil {
		b.WriteString("## Checklist\n\n")
		b.WriteString("| Item | Result |\n")
		b.WriteString("|------|--------|\n")
		for _, item := range bundle.ChecklistReport.Items {
			result := "pass"
			if !item.Passed {
				result = "FAIL"
			}
			fmt.Fprintf(&b, "| %s | %s |\n", escapeMarkdown(item.Label), result)
		}
		b.WriteString("\n")
	}

	b.WriteString("## Audit trail\n\n")
	b.WriteString("| Time | Action | Details |\n")
	b.WriteString("|------|--------|---------|\n")
	for _, e := range bundle.AuditTrail {
		fmt.Fprintf(&b, "| %s | %s | %s |\n",
			e.CreatedAt.Format(time.RFC3339), e.Action, escapeMarkdown(detailsString(e.Details)))
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func formatAuditJSON(w io.Writer, trail []entities.AuditEntry) error {
	if trail == nil {
		trail = []entities.AuditEntry{}
	}
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(trail)
}

func formatAuditCSV(w io.Writer, trail []entities.AuditEntry) error {
	writer := csv.NewWriter(w)

	header := []string{"id", "case_id", "action", "details", "created_at"}
	if err := writer.Write(header); err != nil {
		return err
	}

	for _, e := range trail {
		details := ""
		if len(e.Details) > 0 {
			data, err := json.Marshal(e.Details)
			if err != nil {
				return err
			}
			details = string(data)
		}
		row := []string{
			fmt.Sprintf("%d", e.ID),
			e.CaseID,
			e.Action,
			details,
			e.CreatedAt.Format(time.RFC3339),
		}
		if err := writer.Write(row); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}

func formatAuditText(w io.Writer, trail []entities.AuditEntry) error {
	if len(trail) == 0 {
		_, err := fmt.Fprintln(w, "No audit entries.")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "TIME\tACTION\tDETAILS")
	for _, e := range trail {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", e.CreatedAt.Format(time.DateTime), e.Action, detailsString(e.Details))
	}
	return tw.Flush()
}

// detailsString renders details as sorted key=value pairs.
func detailsString(details map[string]any) string {
	keys := make([]string, 0, len(details))
	for k := range details {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, details[k]))
	}
	return strings.Join(parts, " ")
}

func escapeMarkdown(s string) string {
	s = strings.ReplaceAll(s, "|", "\\|")
	s = strings.ReplaceAll(s, "\n", " ")
	return s
}
