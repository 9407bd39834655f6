package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/ersonp/sarcheck/internal/domain/entities"
	"github.com/ersonp/sarcheck/internal/domain/services"
)

type diffFlags struct {
	format string
	output string
}

func newDiffCmd() *cobra.Command {
	var flags diffFlags

	cmd := &cobra.Command{
		Use:   "diff <original-file> <revised-file>",
		Short: "Compare two narrative versions",
		Long:  "Highlights paragraph and word level changes between two narratives, such as an AI draft and the analyst's edit.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkFormat(flags.format, diffFormats); err != nil {
				return err
			}

			original, err := readNarrative(args[0])
			if err != nil {
				return err
			}
			revised, err := readNarrative(args[1])
			if err != nil {
				return err
			}

			result := services.Diff(original, revised)
			return writeOutput(flags.output, func(w io.Writer) error {
				return writeDiff(w, result, flags.format)
			})
		},
	}

	cmd.Flags().StringVarP(&flags.format, "format", "f", "text", "Output format (text, json, html)")
	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "Output file (default: stdout)")

	return cmd
}

// writeDiff prints a diff as coloured terminal text, JSON or an HTML document.
func writeDiff(w io.Writer, result entities.DiffResult, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	case "html":
		_, err := fmt.Fprint(w, services.RenderDiffDocument("Narrative changes", result))
		return err
	default:
		_, err := fmt.Fprint(w, renderDiffTerminal(result))
		return err
	}
}
