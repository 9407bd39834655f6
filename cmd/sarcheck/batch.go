package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/ersonp/sarcheck/internal/domain/services"
	"github.com/ersonp/sarcheck/internal/infrastructure/config"
)

type batchFlags struct {
	concurrency int
	output      string
}

func newBatchCmd() *cobra.Command {
	var flags batchFlags

	cmd := &cobra.Command{
		Use:   "batch <items-file>",
		Short: "Check many narratives at once",
		Long: `Reads a JSON array of {"id", "narrative", "records"} items and writes one
result per item, in input order, with the extracted facts and checklist report.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBatch(cmd, args[0], flags)
		},
	}

	cmd.Flags().IntVarP(&flags.concurrency, "concurrency", "c", 0, "Items evaluated in parallel (default: GOMAXPROCS)")
	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "Output file (default: stdout)")

	return cmd
}

func runBatch(cmd *cobra.Command, path string, flags batchFlags) error {
	items, err := readBatchItems(path)
	if err != nil {
		return err
	}

	return withEngine(func(_ *config.Config, rules *services.RuleSet) error {
		results := services.NewBatchEvaluator(rules, flags.concurrency).Evaluate(cmd.Context(), items)

		failed := 0
		for _, r := range results {
			if r.Err != nil || (r.Report != nil && !r.Report.Overall) {
				failed++
			}
		}

		err := writeOutput(flags.output, func(w io.Writer) error {
			enc := json.NewEncoder(w)
			enc.SetIndent("", "  ")
			return enc.Encode(results)
		})
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.ErrOrStderr(), "Checked %d narratives: %d passed, %d failed\n", len(results), len(results)-failed, failed)
		return cmd.Context().Err()
	})
}

func readBatchItems(path string) ([]services.BatchItem, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading batch file: %w", err)
	}

	var items []services.BatchItem
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("parsing batch file: %w", err)
	}
	for i := range items {
		if items[i].ID == "" {
			items[i].ID = fmt.Sprintf("%d", i+1)
		}
	}
	return items, nil
}
