// Package mocks provides mock implementations for testing.
package mocks

import (
	"context"
	"sync"
)

// TextGenerator is a mock implementation of ports.TextGenerator.
// Each call consumes the next entry of Errs (if any) before returning Response.
type TextGenerator struct {
	Response string
	Err      error
	// Errs are returned in order by the first calls, ahead of Err.
	Errs []error

	// Call tracking
	mu        sync.Mutex
	CallCount int
	Prompts   []string
}

// Generate records the prompt and returns the configured result.
func (m *TextGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.CallCount++
	m.Prompts = append(m.Prompts, prompt)
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if m.CallCount <= len(m.Errs) && m.Errs[m.CallCount-1] != nil {
		return "", m.Errs[m.CallCount-1]
	}
	if m.Err != nil {
		return "", m.Err
	}
	return m.Response, nil
}

// Name identifies the mock.
func (m *TextGenerator) Name() string {
	return "mock"
}

// LastPrompt returns the most recent prompt, or "" if none.
func (m *TextGenerator) LastPrompt() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Prompts) == 0 {
		return ""
	}
	return m.Prompts[len(m.Prompts)-1]
}
