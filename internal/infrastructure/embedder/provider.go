// Package embedder selects an embedding adapter from configuration.
package embedder

import (
	"context"
	"fmt"

	"github.com/ersonp/sarcheck/internal/domain/ports"
	"github.com/ersonp/sarcheck/internal/infrastructure/config"
	"github.com/ersonp/sarcheck/internal/infrastructure/embedder/gemini"
	"github.com/ersonp/sarcheck/internal/infrastructure/embedder/openai"
)

// New builds the embedder named by cfg.Provider. Unlike text generation
// there is no placeholder: precedent search needs real vectors.
func New(ctx context.Context, cfg config.EmbedderConfig) (ports.Embedder, error) {
	switch cfg.Provider {
	case "", "openai":
		return openai.NewEmbedder(cfg)
	case "gemini":
		return gemini.NewEmbedder(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown embedder provider: %q", cfg.Provider)
	}
}

// VectorSize returns the embedding dimensions of the configured provider
// and model without building a client. Unknown providers report 0.
func VectorSize(cfg config.EmbedderConfig) uint64 {
	switch cfg.Provider {
	case "", "openai":
		return openai.ModelDimensions(cfg.Model)
	case "gemini":
		return gemini.VectorSize
	default:
		return 0
	}
}
