package main

import (
	"context"
	"fmt"
	"os"

	"github.com/ersonp/sarcheck/internal/application/handlers"
	"github.com/ersonp/sarcheck/internal/domain/services"
	"github.com/ersonp/sarcheck/internal/infrastructure/config"
	"github.com/ersonp/sarcheck/internal/infrastructure/embedder"
	"github.com/ersonp/sarcheck/internal/infrastructure/llm"
	"github.com/ersonp/sarcheck/internal/infrastructure/relationaldb/sqlite"
	"github.com/ersonp/sarcheck/internal/infrastructure/vectordb/qdrant"
	"github.com/ersonp/sarcheck/internal/resilience"
)

// Deps holds high-level dependencies for case commands.
// Only handlers are exposed - services and repositories are internal.
type Deps struct {
	Config *config.Config
	Rules  *services.RuleSet
	Intake *handlers.IntakeHandler
	Review *handlers.ReviewHandler
}

// internalDeps holds all dependencies including low-level components.
type internalDeps struct {
	Deps
	cases *services.CaseService
}

// withDeps loads config, opens the case database and builds the handlers,
// then calls the provided function. It handles cleanup automatically.
func withDeps(ctx context.Context, fn func(*Deps) error) error {
	return withInternalDeps(ctx, false, func(d *internalDeps) error {
		return fn(&d.Deps)
	})
}

// withGeneratingDeps is withDeps plus a text generator for drafting and fixing.
func withGeneratingDeps(ctx context.Context, fn func(*Deps) error) error {
	return withInternalDeps(ctx, true, func(d *internalDeps) error {
		return fn(&d.Deps)
	})
}

func withInternalDeps(ctx context.Context, generate bool, fn func(*internalDeps) error) error {
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("getting current directory: %w", err)
	}

	cfg, err := config.Load(cwd)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	rules, err := ruleSetFromConfig(cfg.Rules)
	if err != nil {
		return err
	}

	store, err := sqlite.NewRepository(config.SQLiteConfig{Path: cfg.SQLitePath(cwd)})
	if err != nil {
		return fmt.Errorf("creating sqlite repository: %w", err)
	}
	defer store.Close()

	if err := store.EnsureSchema(ctx); err != nil {
		return fmt.Errorf("ensuring sqlite schema: %w", err)
	}

	var narratives *services.NarrativeService
	if generate {
		narratives, err = narrativeServiceFromConfig(ctx, cfg)
		if err != nil {
			return err
		}
	}

	cases := services.NewCaseService(store, rules)

	deps := &internalDeps{
		Deps: Deps{
			Config: cfg,
			Rules:  rules,
			Intake: handlers.NewIntakeHandler(cases),
			Review: handlers.NewReviewHandler(cases, narratives),
		},
		cases: cases,
	}

	return fn(deps)
}

// withPrecedentHandler adds the embedder and Qdrant index to the case deps.
func withPrecedentHandler(ctx context.Context, fn func(*handlers.PrecedentHandler) error) error {
	return withInternalDeps(ctx, false, func(d *internalDeps) error {
		repo, err := qdrant.NewRepository(d.Config.Qdrant)
		if err != nil {
			return fmt.Errorf("creating qdrant repository: %w", err)
		}
		defer repo.Close()

		emb, err := embedder.New(ctx, d.Config.Embedder)
		if err != nil {
			return fmt.Errorf("creating embedder: %w", err)
		}
		if err := repo.EnsureCollection(ctx, emb.Dimensions()); err != nil {
			return fmt.Errorf("ensuring precedent collection: %w", err)
		}

		precedents := services.NewPrecedentService(emb, repo)
		return fn(handlers.NewPrecedentHandler(d.cases, precedents))
	})
}

// withEngine provides the config and rulebook for commands that work on
// files without a project database. Defaults apply when the project is
// not initialized.
func withEngine(fn func(*config.Config, *services.RuleSet) error) error {
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("getting current directory: %w", err)
	}

	cfg, err := config.LoadOrDefault(cwd)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	rules, err := ruleSetFromConfig(cfg.Rules)
	if err != nil {
		return err
	}

	return fn(cfg, rules)
}

// withNarratives adds text generation to withEngine.
func withNarratives(ctx context.Context, fn func(*config.Config, *services.RuleSet, *services.NarrativeService) error) error {
	return withEngine(func(cfg *config.Config, rules *services.RuleSet) error {
		narratives, err := narrativeServiceFromConfig(ctx, cfg)
		if err != nil {
			return err
		}
		return fn(cfg, rules, narratives)
	})
}

// ruleSetFromConfig builds the rulebook, falling back to the default
// bounds and phrases for unset values.
func ruleSetFromConfig(cfg config.RulesConfig) (*services.RuleSet, error) {
	def := services.DefaultRuleSet()
	minLen, maxLen, clarityMin := cfg.MinLength, cfg.MaxLength, cfg.ClarityMinLength
	if minLen == 0 {
		minLen = def.MinLength
	}
	if maxLen == 0 {
		maxLen = def.MaxLength
	}
	if clarityMin == 0 {
		clarityMin = def.ClarityMinLength
	}
	phrases := cfg.SpeculativePhrases
	if len(phrases) == 0 {
		phrases = services.DefaultSpeculativePhrases
	}

	rules, err := services.NewRuleSet(minLen, maxLen, clarityMin, phrases)
	if err != nil {
		return nil, fmt.Errorf("building rule set: %w", err)
	}
	return rules, nil
}

// narrativeServiceFromConfig wires the configured text generator behind
// the retry policy and rate limiter.
func narrativeServiceFromConfig(ctx context.Context, cfg *config.Config) (*services.NarrativeService, error) {
	gen, err := llm.NewTextGenerator(ctx, cfg.LLM)
	if err != nil {
		return nil, fmt.Errorf("creating text generator: %w", err)
	}

	retry := resilience.DefaultRetryConfig()
	if cfg.Retry.MaxAttempts > 0 {
		retry.MaxAttempts = cfg.Retry.MaxAttempts
	}
	if cfg.Retry.InitialBackoff > 0 {
		retry.InitialBackoff = cfg.Retry.InitialBackoff
	}
	if cfg.Retry.MaxBackoff > 0 {
		retry.MaxBackoff = cfg.Retry.MaxBackoff
	}
	if cfg.Retry.Multiplier > 0 {
		retry.Multiplier = cfg.Retry.Multiplier
	}
	if cfg.Retry.JitterFraction > 0 {
		retry.JitterFraction = cfg.Retry.JitterFraction
	}

	opts := []services.NarrativeOption{
		services.WithRetryConfig(retry),
		services.WithLimiter(resilience.NewLimiter(cfg.Retry.RequestsPerSecond, 1)),
	}
	if cfg.LLM.Timeout > 0 {
		opts = append(opts, services.WithTimeout(cfg.LLM.Timeout))
	}

	return services.NewNarrativeService(gen, opts...), nil
}
