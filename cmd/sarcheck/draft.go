package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ersonp/sarcheck/internal/domain/entities"
	"github.com/ersonp/sarcheck/internal/domain/services"
	"github.com/ersonp/sarcheck/internal/infrastructure/config"
)

func newDraftCmd() *cobra.Command {
	var promptOnly bool

	cmd := &cobra.Command{
		Use:   "draft <records-file>",
		Short: "Draft a narrative from evidence records",
		Long:  "Asks the configured text generator for an AI-assisted draft built from the 5Ws and the case facts.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			records, err := loadRecords(args[0])
			if err != nil {
				return err
			}
			if len(records) == 0 {
				return fmt.Errorf("%w: no records in %s", entities.ErrInvalidInput, args[0])
			}

			if promptOnly {
				prompt := services.BuildDraftPrompt(services.RecordsToCaseData(records), services.Extract(records))
				fmt.Fprintln(cmd.OutOrStdout(), prompt)
				return nil
			}

			return withNarratives(cmd.Context(), func(_ *config.Config, _ *services.RuleSet, narratives *services.NarrativeService) error {
				text, err := narratives.Draft(cmd.Context(), records)
				if err != nil {
					return generationError("drafting narrative", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), text)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&promptOnly, "prompt-only", false, "Print the prompt instead of calling the generator")

	return cmd
}

func newRemediateCmd() *cobra.Command {
	var (
		records    string
		promptOnly bool
	)

	cmd := &cobra.Command{
		Use:   "remediate <narrative-file>",
		Short: "Fix the failed checklist items of a narrative",
		Long:  "Runs the checklist and asks the text generator for a revision that addresses every failed item. Nothing is generated when the narrative already passes.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			narrative, err := readNarrative(args[0])
			if err != nil {
				return err
			}
			recs, err := loadRecords(records)
			if err != nil {
				return err
			}

			return withNarratives(cmd.Context(), func(_ *config.Config, rules *services.RuleSet, narratives *services.NarrativeService) error {
				report := rules.Evaluate(narrative, services.Extract(recs))
				if report.Overall {
					fmt.Fprintln(cmd.OutOrStdout(), "All checklist items pass; nothing to remediate.")
					return nil
				}

				if promptOnly {
					fmt.Fprintln(cmd.OutOrStdout(), services.BuildRemediationPrompt(report, narrative))
					return nil
				}

				text, err := narratives.Remediate(cmd.Context(), report, narrative)
				if err != nil {
					return generationError("remediating narrative", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), text)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&records, "records", "r", "", "Evidence file (json, csv, xlsx)")
	cmd.Flags().BoolVar(&promptOnly, "prompt-only", false, "Print the prompt instead of calling the generator")

	return cmd
}

// generationError adds a hint for failures that outlived the retry policy.
func generationError(op string, err error) error {
	if errors.Is(err, entities.ErrUpstreamService) {
		return fmt.Errorf("%s: %w (the analyst narrative is unchanged; try again later)", op, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}
