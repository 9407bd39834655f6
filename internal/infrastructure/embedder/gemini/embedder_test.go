package gemini

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ersonp/sarcheck/internal/infrastructure/config"
)

func TestNewEmbedder(t *testing.T) {
	_, err := NewEmbedder(t.Context(), config.EmbedderConfig{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "API key is required")

	embedder, err := NewEmbedder(t.Context(), config.EmbedderConfig{APIKey: "test-key"})
	require.NoError(t, err)
	assert.Equal(t, DefaultModel, embedder.model)
	assert.Equal(t, uint64(VectorSize), embedder.Dimensions())
}

func TestEmbedder_EmbedBatchEmpty(t *testing.T) {
	embedder, err := NewEmbedder(t.Context(), config.EmbedderConfig{APIKey: "test-key", Model: "text-embedding-004"})
	require.NoError(t, err)

	result, err := embedder.EmbedBatch(t.Context(), nil)

	require.NoError(t, err)
	assert.Nil(t, result)
}
