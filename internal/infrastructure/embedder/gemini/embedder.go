// Package gemini provides an Embedder implementation using Google's Gemini API.
package gemini

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/genai"

	"github.com/ersonp/sarcheck/internal/infrastructure/config"
	llmgemini "github.com/ersonp/sarcheck/internal/infrastructure/llm/gemini"
)

const (
	// DefaultModel is used when the config leaves the model empty.
	DefaultModel = "gemini-embedding-001"
	// VectorSize is the requested output dimensionality.
	VectorSize = 768
)

// Embedder implements the Embedder interface using Gemini embeddings.
type Embedder struct {
	client *genai.Client
	model  string
}

// NewEmbedder creates a new Gemini embedder.
func NewEmbedder(ctx context.Context, cfg config.EmbedderConfig) (*Embedder, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("Gemini API key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("creating Gemini client: %w", err)
	}

	model := DefaultModel
	if cfg.Model != "" {
		model = cfg.Model
	}

	return &Embedder{
		client: client,
		model:  model,
	}, nil
}

// Dimensions returns the vector size.
func (e *Embedder) Dimensions() uint64 {
	return VectorSize
}

// Embed generates a vector embedding for the given text.
func (e *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	embeddings, err := e.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}

	if len(embeddings) == 0 {
		return nil, errors.New("no embeddings returned")
	}

	return embeddings[0], nil
}

// EmbedBatch generates vector embeddings for multiple texts in one request.
func (e *Embedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	contents := make([]*genai.Content, len(texts))
	for i, text := range texts {
		contents[i] = genai.NewContentFromText(text, genai.RoleUser)
	}

	result, err := e.client.Models.EmbedContent(ctx, e.model, contents, &genai.EmbedContentConfig{
		TaskType:             "SEMANTIC_SIMILARITY",
		OutputDimensionality: genai.Ptr[int32](VectorSize),
	})
	if err != nil {
		return nil, fmt.Errorf("creating embeddings: %w", llmgemini.Classify(err))
	}

	embeddings := make([][]float32, len(result.Embeddings))
	for i, emb := range result.Embeddings {
		embeddings[i] = emb.Values
	}

	return embeddings, nil
}
