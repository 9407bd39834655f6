package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/ersonp/sarcheck/internal/domain/services"
)

func newExtractCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "extract <records-file>",
		Short: "Extract the 5Ws from evidence records",
		Long:  "Reads a JSON, CSV or XLSX evidence file and prints the Who/What/When/Where/Why facts found in it.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			records, err := loadRecords(args[0])
			if err != nil {
				return err
			}

			facts := services.Extract(records)

			return writeOutput("", func(w io.Writer) error {
				if asJSON {
					enc := json.NewEncoder(w)
					enc.SetIndent("", "  ")
					return enc.Encode(facts.Compact())
				}
				_, err := fmt.Fprint(w, facts.String())
				return err
			})
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print facts as JSON")

	return cmd
}
