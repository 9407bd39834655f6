// Package anthropic provides a TextGenerator implementation using Claude models.
package anthropic

import (
	"context"
	"errors"
	"fmt"
	"strings"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/ersonp/sarcheck/internal/infrastructure/config"
	"github.com/ersonp/sarcheck/internal/resilience"
)

const (
	// DefaultModel is used when the config leaves the model empty.
	DefaultModel = "claude-sonnet-4-5"
	// DefaultMaxTokens bounds the completion when the config does not.
	DefaultMaxTokens = 1024
)

// Client implements ports.TextGenerator using the Messages API.
type Client struct {
	client    sdk.Client
	model     string
	maxTokens int64
}

// NewClient creates a new Anthropic text generator. SDK retries are
// disabled; the caller's retry policy owns them.
func NewClient(cfg config.LLMConfig) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("Anthropic API key is required")
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	model := DefaultModel
	if cfg.Model != "" {
		model = cfg.Model
	}
	maxTokens := int64(DefaultMaxTokens)
	if cfg.MaxTokens > 0 {
		maxTokens = int64(cfg.MaxTokens)
	}

	return &Client{
		client:    sdk.NewClient(opts...),
		model:     model,
		maxTokens: maxTokens,
	}, nil
}

// Name identifies the provider and model.
func (c *Client) Name() string {
	return "anthropic/" + c.model
}

// Generate sends prompt as a single user message and joins the text blocks
// of the reply.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	msg, err := c.client.Messages.New(ctx, sdk.MessageNewParams{
		Model:     sdk.Model(c.model),
		MaxTokens: c.maxTokens,
		Messages: []sdk.MessageParam{
			sdk.NewUserMessage(sdk.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		var apiErr *sdk.Error
		if errors.As(err, &apiErr) {
			err = resilience.WrapHTTPStatus(err, apiErr.StatusCode)
		}
		return "", fmt.Errorf("calling Anthropic: %w", err)
	}

	var b strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			b.WriteString(block.Text)
		}
	}
	if b.Len() == 0 {
		return "", errors.New("no text in Anthropic response")
	}
	return b.String(), nil
}
