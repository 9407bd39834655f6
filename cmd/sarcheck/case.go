package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/ersonp/sarcheck/internal/application/handlers"
	"github.com/ersonp/sarcheck/internal/domain/entities"
)

func newCaseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "case",
		Short: "Manage investigation cases",
		Long:  "Cases keep evidence, every narrative version and an append-only audit trail in the project database.",
	}

	cmd.AddCommand(
		newCaseCreateCmd(),
		newCaseListCmd(),
		newCaseEvidenceCmd(),
		newCaseNarrativeCmd(),
		newCaseHistoryCmd(),
		newCaseCheckCmd(),
		newCaseCompareCmd(),
		newCaseSignOffCmd(),
		newCaseAuditCmd(),
	)

	return cmd
}

func newCaseCreateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "create <name>",
		Short: "Open a new case",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDeps(cmd.Context(), func(d *Deps) error {
				c, err := d.Intake.CreateCase(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				fmt.Printf("Created case %s (%s)\n", c.ID, c.Name)
				return nil
			})
		},
	}
}

func newCaseListCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List cases, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDeps(cmd.Context(), func(d *Deps) error {
				cases, err := d.Intake.ListCases(cmd.Context(), limit)
				if err != nil {
					return err
				}
				if len(cases) == 0 {
					fmt.Println("No cases found.")
					return nil
				}

				w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
				fmt.Fprintln(w, "ID\tNAME\tSTATUS\tCREATED")
				for _, c := range cases {
					fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", c.ID, c.Name, c.Status, c.CreatedAt.Format(time.DateTime))
				}
				return w.Flush()
			})
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "l", DefaultListLimit, "Maximum number of cases to display")

	return cmd
}

func newCaseEvidenceCmd() *cobra.Command {
	var opts handlers.ImportOptions

	cmd := &cobra.Command{
		Use:   "evidence <case-id> <file>",
		Short: "Add evidence records to a case",
		Long:  "Imports alert or transaction records from JSON, CSV or XLSX. Invalid records are reported and skipped.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDeps(cmd.Context(), func(d *Deps) error {
				fmt.Printf("Importing %s...\n", args[1])

				result, err := d.Intake.ImportEvidence(cmd.Context(), args[0], args[1], opts)
				if err != nil {
					return fmt.Errorf("importing evidence: %w", err)
				}

				// Display errors
				if len(result.Errors) > 0 {
					fmt.Printf("\nValidation errors (%d):\n", len(result.Errors))
					for _, e := range result.Errors {
						fmt.Printf("  %s\n", e.Error())
					}
				}

				// Display summary
				fmt.Println()
				if opts.DryRun {
					fmt.Printf("Dry run: %d records would be imported", result.Imported)
				} else {
					fmt.Printf("Imported: %d records", result.Imported)
				}
				if result.Skipped > 0 {
					fmt.Printf(", %d skipped (already on the case)", result.Skipped)
				}
				if len(result.Errors) > 0 {
					fmt.Printf(", %d errors", len(result.Errors))
				}
				fmt.Println()

				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&opts.Format, "format", "f", "auto", "File format (json, csv, xlsx, auto)")
	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "Validate without saving")
	cmd.Flags().BoolVar(&opts.SkipDuplicates, "skip-duplicates", false, "Skip records already on the case")

	return cmd
}

type narrativeFlags struct {
	kind   string
	author string
	draft  bool
	fix    bool
}

func newCaseNarrativeCmd() *cobra.Command {
	var flags narrativeFlags

	cmd := &cobra.Command{
		Use:   "narrative <case-id> [file]",
		Short: "Save a new narrative version",
		Long: `Stores a narrative version read from a file ("-" for stdin).
With --draft the text generator drafts one from the case evidence; with --fix it
revises the current narrative to address failed checklist items.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCaseNarrative(cmd, args, flags)
		},
	}

	cmd.Flags().StringVarP(&flags.kind, "kind", "k", string(entities.VersionAnalystEdit), "Version kind (analyst_edit, final)")
	cmd.Flags().StringVarP(&flags.author, "author", "a", "", "Analyst who wrote the version")
	cmd.Flags().BoolVar(&flags.draft, "draft", false, "Generate an AI draft from the case evidence")
	cmd.Flags().BoolVar(&flags.fix, "fix", false, "Generate an AI fix for failed checklist items")
	cmd.MarkFlagsMutuallyExclusive("draft", "fix")

	return cmd
}

func runCaseNarrative(cmd *cobra.Command, args []string, flags narrativeFlags) error {
	ctx := cmd.Context()
	caseID := args[0]

	if flags.draft || flags.fix {
		return withGeneratingDeps(ctx, func(d *Deps) error {
			if flags.draft {
				v, err := d.Review.Draft(ctx, caseID)
				if err != nil {
					return generationError("drafting narrative", err)
				}
				printVersion(v)
				return nil
			}

			result, err := d.Review.Fix(ctx, caseID)
			if err != nil {
				return generationError("fixing narrative", err)
			}
			if result.Version == nil {
				fmt.Println("All checklist items pass; nothing to fix.")
				return nil
			}
			fmt.Printf("Fixed: %v\n", result.Report.FailedKeys())
			printVersion(result.Version)
			return nil
		})
	}

	if len(args) < 2 {
		return fmt.Errorf("%w: a narrative file is required without --draft or --fix", entities.ErrInvalidInput)
	}
	text, err := readNarrative(args[1])
	if err != nil {
		return err
	}

	return withDeps(ctx, func(d *Deps) error {
		v, err := d.Review.Save(ctx, caseID, entities.VersionKind(flags.kind), text, flags.author)
		if err != nil {
			return err
		}
		printVersion(v)
		return nil
	})
}

func printVersion(v *entities.NarrativeVersion) {
	fmt.Printf("Saved version %d (%s)\n\n%s\n", v.Version, v.Kind, v.Text)
}

func newCaseHistoryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "history <case-id>",
		Short: "List the narrative versions of a case",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDeps(cmd.Context(), func(d *Deps) error {
				versions, err := d.Review.History(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if len(versions) == 0 {
					fmt.Println("No narrative versions.")
					return nil
				}

				w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
				fmt.Fprintln(w, "VERSION\tKIND\tAUTHOR\tLENGTH\tCREATED")
				for _, v := range versions {
					fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%s\n",
						v.Version, v.Kind, v.Author, len([]rune(v.Text)), v.CreatedAt.Format(time.DateTime))
				}
				return w.Flush()
			})
		},
	}
}

func newCaseCheckCmd() *cobra.Command {
	var (
		format string
		strict bool
	)

	cmd := &cobra.Command{
		Use:   "check <case-id>",
		Short: "Run the checklist on the current narrative of a case",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkFormat(format, reportFormats); err != nil {
				return err
			}
			return withDeps(cmd.Context(), func(d *Deps) error {
				report, err := d.Review.Check(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if err := writeReport(cmd.OutOrStdout(), report, format); err != nil {
					return err
				}
				if strict && !report.Overall {
					return fmt.Errorf("%w: %v", errChecklistFailed, report.FailedKeys())
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "text", "Output format (text, markdown, json)")
	cmd.Flags().BoolVar(&strict, "strict", false, "Exit with an error when any item fails")

	return cmd
}

func newCaseCompareCmd() *cobra.Command {
	var (
		from, to int
		flags    diffFlags
	)

	cmd := &cobra.Command{
		Use:   "compare <case-id>",
		Short: "Diff two narrative versions of a case",
		Long:  "By default compares the latest AI-authored version with the current version.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkFormat(flags.format, diffFormats); err != nil {
				return err
			}
			return withDeps(cmd.Context(), func(d *Deps) error {
				result, err := d.Review.Compare(cmd.Context(), args[0], from, to)
				if err != nil {
					return err
				}
				return writeOutput(flags.output, func(w io.Writer) error {
					return writeDiff(w, *result, flags.format)
				})
			})
		},
	}

	cmd.Flags().IntVar(&from, "from", 0, "Original version (default: latest AI version)")
	cmd.Flags().IntVar(&to, "to", 0, "Revised version (default: current)")
	cmd.Flags().StringVarP(&flags.format, "format", "f", "text", "Output format (text, json, html)")
	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "Output file (default: stdout)")

	return cmd
}

func newCaseSignOffCmd() *cobra.Command {
	var analyst string

	cmd := &cobra.Command{
		Use:   "signoff <case-id>",
		Short: "Sign off the current narrative of a case",
		Long:  "Freezes the case and records the analyst and the SHA-256 of the signed narrative in the audit trail.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDeps(cmd.Context(), func(d *Deps) error {
				c, err := d.Review.SignOff(cmd.Context(), args[0], analyst)
				if err != nil {
					return err
				}
				fmt.Printf("Case %s signed off by %s at %s\n", c.ID, c.SignedOffBy, c.SignedOffAt.Format(time.RFC3339))
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&analyst, "analyst", "", "Analyst signing off (required)")
	_ = cmd.MarkFlagRequired("analyst")

	return cmd
}

func newCaseAuditCmd() *cobra.Command {
	var (
		format string
		output string
	)

	cmd := &cobra.Command{
		Use:   "audit <case-id>",
		Short: "Show the audit trail of a case",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkFormat(format, auditFormats); err != nil {
				return err
			}
			return withDeps(cmd.Context(), func(d *Deps) error {
				trail, err := d.Review.AuditTrail(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				return writeOutput(output, func(w io.Writer) error {
					switch format {
					case "json":
						return formatAuditJSON(w, trail)
					case "csv":
						return formatAuditCSV(w, trail)
					default:
						return formatAuditText(w, trail)
					}
				})
			})
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "text", "Output format (text, json, csv)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default: stdout)")

	return cmd
}
