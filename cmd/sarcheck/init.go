package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ersonp/sarcheck/internal/application/handlers"
	"github.com/ersonp/sarcheck/internal/infrastructure/config"
	"github.com/ersonp/sarcheck/internal/infrastructure/embedder"
	"github.com/ersonp/sarcheck/internal/infrastructure/vectordb/qdrant"
)

func newInitCmd() *cobra.Command {
	var withPrecedents bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize a new sarcheck project",
		Long:  "Creates a .sarcheck directory with default configuration and the case database. With --precedents it also sets up the Qdrant collection.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(cmd, withPrecedents)
		},
	}

	cmd.Flags().BoolVar(&withPrecedents, "precedents", false, "Also create the Qdrant precedent collection")

	return cmd
}

func runInit(cmd *cobra.Command, withPrecedents bool) error {
	ctx := cmd.Context()

	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("getting current directory: %w", err)
	}

	var handler *handlers.InitHandler
	if withPrecedents {
		// The file does not exist yet, so this is the default config plus env.
		cfg, err := config.LoadOrDefault(cwd)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}

		repo, err := qdrant.NewRepository(cfg.Qdrant)
		if err != nil {
			return fmt.Errorf("connecting to qdrant: %w", err)
		}
		defer repo.Close()

		handler = handlers.NewInitHandler(repo, embedder.VectorSize(cfg.Embedder))
	} else {
		handler = handlers.NewInitHandler(nil, 0)
	}

	result, err := handler.Handle(ctx, cwd)
	if err != nil {
		return err
	}

	fmt.Printf("Created %s\n", result.ConfigPath)
	fmt.Printf("Created case database: %s\n", result.DatabasePath)
	if result.CollectionName != "" {
		fmt.Printf("Created Qdrant collection: %s\n", result.CollectionName)
	}
	fmt.Println("sarcheck initialized successfully!")

	return nil
}
