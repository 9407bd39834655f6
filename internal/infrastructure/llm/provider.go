// Package llm selects a text-generation adapter from configuration.
package llm

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/ersonp/sarcheck/internal/domain/ports"
	"github.com/ersonp/sarcheck/internal/infrastructure/config"
	"github.com/ersonp/sarcheck/internal/infrastructure/llm/anthropic"
	"github.com/ersonp/sarcheck/internal/infrastructure/llm/gemini"
	"github.com/ersonp/sarcheck/internal/infrastructure/llm/openai"
	"github.com/ersonp/sarcheck/internal/infrastructure/llm/placeholder"
)

// Supported provider names.
const (
	ProviderOpenAI      = "openai"
	ProviderAnthropic   = "anthropic"
	ProviderGemini      = "gemini"
	ProviderPlaceholder = "placeholder"
)

// NewTextGenerator builds the generator named by cfg.Provider. A provider
// without an API key falls back to the placeholder generator.
func NewTextGenerator(ctx context.Context, cfg config.LLMConfig) (ports.TextGenerator, error) {
	if cfg.Provider == ProviderPlaceholder {
		return placeholder.New(), nil
	}

	if cfg.APIKey == "" {
		zap.L().Warn("no API key configured, using placeholder text generator",
			zap.String("provider", cfg.Provider))
		return placeholder.New(), nil
	}

	switch cfg.Provider {
	case "", ProviderOpenAI:
		return openai.NewClient(cfg)
	case ProviderAnthropic:
		return anthropic.NewClient(cfg)
	case ProviderGemini:
		return gemini.NewClient(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown llm provider: %q", cfg.Provider)
	}
}
