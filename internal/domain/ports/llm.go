// Package ports defines interfaces for external service communication.
package ports

import "context"

// TextGenerator is the opaque text-generation collaborator: one prompt in,
// one completion out.
type TextGenerator interface {
	// Generate returns the completion for prompt.
	Generate(ctx context.Context, prompt string) (string, error)

	// Name identifies the provider and model, for audit records.
	Name() string
}
