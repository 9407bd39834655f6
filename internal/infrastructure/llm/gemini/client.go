// Package gemini provides a TextGenerator implementation using Google's Gemini API.
package gemini

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/genai"

	"github.com/ersonp/sarcheck/internal/infrastructure/config"
	"github.com/ersonp/sarcheck/internal/resilience"
)

// DefaultModel is used when the config leaves the model empty.
const DefaultModel = "gemini-2.5-flash"

// Client implements ports.TextGenerator using GenerateContent.
type Client struct {
	client    *genai.Client
	model     string
	maxTokens int32
}

// NewClient creates a new Gemini text generator.
func NewClient(ctx context.Context, cfg config.LLMConfig) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("Gemini API key is required")
	}

	clientCfg := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		clientCfg.HTTPOptions.BaseURL = cfg.BaseURL
	}

	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		return nil, fmt.Errorf("creating Gemini client: %w", err)
	}

	model := DefaultModel
	if cfg.Model != "" {
		model = cfg.Model
	}

	return &Client{
		client:    client,
		model:     model,
		maxTokens: int32(cfg.MaxTokens),
	}, nil
}

// Name identifies the provider and model.
func (c *Client) Name() string {
	return "gemini/" + c.model
}

// Generate sends prompt as a single user turn and returns the reply text.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	genCfg := &genai.GenerateContentConfig{
		Temperature: genai.Ptr[float32](0.2),
	}
	if c.maxTokens > 0 {
		genCfg.MaxOutputTokens = c.maxTokens
	}

	resp, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(prompt), genCfg)
	if err != nil {
		return "", fmt.Errorf("calling Gemini: %w", Classify(err))
	}

	text := resp.Text()
	if text == "" {
		return "", errors.New("no text in Gemini response")
	}
	return text, nil
}

// Classify marks retryable Gemini API errors as transient.
func Classify(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return resilience.WrapHTTPStatus(err, apiErr.Code)
	}
	return err
}
