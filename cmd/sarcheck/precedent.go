package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ersonp/sarcheck/internal/application/handlers"
)

func newPrecedentCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "precedent",
		Short: "Index and search signed-off narratives",
		Long:  "Stores signed-off narratives in Qdrant so analysts can find similar prior filings.",
	}

	cmd.AddCommand(newPrecedentIndexCmd(), newPrecedentSearchCmd())

	return cmd
}

func newPrecedentIndexCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "index <case-id>",
		Short: "Index the signed-off narrative of a case",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return withPrecedentHandler(ctx, func(h *handlers.PrecedentHandler) error {
				p, err := h.Index(ctx, args[0])
				if err != nil {
					return fmt.Errorf("indexing precedent: %w", err)
				}
				fmt.Printf("Indexed case %s as precedent %s\n", p.CaseID, p.ID)
				return nil
			})
		},
	}
}

func newPrecedentSearchCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "search <narrative-file>",
		Short: "Find prior narratives similar to a narrative",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			narrative, err := readNarrative(args[0])
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			return withPrecedentHandler(ctx, func(h *handlers.PrecedentHandler) error {
				results, err := h.Search(ctx, strings.TrimSpace(narrative), limit)
				if err != nil {
					return fmt.Errorf("searching precedents: %w", err)
				}
				if len(results) == 0 {
					fmt.Println("No similar narratives found.")
					return nil
				}

				fmt.Printf("Found %d similar narratives:\n\n", len(results))
				for i, p := range results {
					fmt.Printf("%d. case %s (score: %.3f)\n", i+1, p.CaseID, p.Score)
					fmt.Printf("   %s\n\n", truncate(p.Narrative, 200))
				}
				return nil
			})
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "l", DefaultSearchLimit, "Maximum number of results")

	return cmd
}

func truncate(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}
