package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/ersonp/sarcheck/internal/domain/entities"
	"github.com/ersonp/sarcheck/internal/domain/services"
	"github.com/ersonp/sarcheck/internal/infrastructure/config"
)

var errChecklistFailed = errors.New("compliance checklist failed")

type checkFlags struct {
	records string
	format  string
	strict  bool
}

func newCheckCmd() *cobra.Command {
	var flags checkFlags

	cmd := &cobra.Command{
		Use:   "check <narrative-file>",
		Short: "Run the compliance checklist on a narrative",
		Long:  "Checks a narrative (\"-\" for stdin) for the 5Ws, chronology, clarity, speculative language and length. Facts come from --records.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd, args[0], flags)
		},
	}

	cmd.Flags().StringVarP(&flags.records, "records", "r", "", "Evidence file (json, csv, xlsx)")
	cmd.Flags().StringVarP(&flags.format, "format", "f", "text", "Output format (text, markdown, json)")
	cmd.Flags().BoolVar(&flags.strict, "strict", false, "Exit with an error when any item fails")

	return cmd
}

func runCheck(cmd *cobra.Command, path string, flags checkFlags) error {
	if err := checkFormat(flags.format, reportFormats); err != nil {
		return err
	}

	narrative, err := readNarrative(path)
	if err != nil {
		return err
	}
	records, err := loadRecords(flags.records)
	if err != nil {
		return err
	}

	return withEngine(func(_ *config.Config, rules *services.RuleSet) error {
		report := rules.Evaluate(narrative, services.Extract(records))

		if err := writeReport(cmd.OutOrStdout(), report, flags.format); err != nil {
			return err
		}
		if flags.strict && !report.Overall {
			return fmt.Errorf("%w: %v", errChecklistFailed, report.FailedKeys())
		}
		return nil
	})
}

// writeReport prints a report as styled terminal text, markdown or JSON.
func writeReport(w io.Writer, report *entities.ComplianceReport, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	case "markdown":
		_, err := fmt.Fprint(w, reportMarkdown(report))
		return err
	default:
		_, err := fmt.Fprint(w, renderMarkdown(reportMarkdown(report)))
		return err
	}
}
