// Package main provides the entry point for the sarcheck CLI application.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ersonp/sarcheck/internal/infrastructure/config"
)

var version = "0.1.0-dev"

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	err := run(ctx)
	_ = zap.L().Sync()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	rootCmd := &cobra.Command{
		Use:           "sarcheck",
		Short:         "SAR narrative compliance checking, diffing and remediation",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initLogging()
		},
	}

	rootCmd.AddCommand(
		newInitCmd(),
		newExtractCmd(),
		newCheckCmd(),
		newDiffCmd(),
		newDraftCmd(),
		newRemediateCmd(),
		newCaseCmd(),
		newExportCmd(),
		newPrecedentCmd(),
		newBatchCmd(),
		newWatchCmd(),
		newServeCmd(),
		newMCPCmd(),
	)

	return rootCmd.ExecuteContext(ctx)
}

// initLogging installs the global logger from the project config, or the
// defaults when the project is not initialized.
func initLogging() error {
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("getting current directory: %w", err)
	}
	cfg, err := config.LoadOrDefault(cwd)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	return config.InitLogger(cfg.Log)
}
