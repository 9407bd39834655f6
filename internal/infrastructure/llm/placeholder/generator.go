// Package placeholder provides a TextGenerator used when no provider
// credentials are configured.
package placeholder

import (
	"context"
	"strings"
)

// Label prefixes every placeholder response.
const Label = "[PLACEHOLDER: no text-generation credentials configured]"

// Generator returns a labelled placeholder built from the first non-empty
// prompt line. It never calls out and never fails.
type Generator struct{}

// New creates a placeholder generator.
func New() *Generator {
	return &Generator{}
}

// Name identifies the generator in audit records.
func (g *Generator) Name() string {
	return "placeholder"
}

// Generate echoes the first prompt line under the placeholder label.
func (g *Generator) Generate(ctx context.Context, prompt string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return Label + "\n" + firstLine(prompt), nil
}

func firstLine(s string) string {
	for line := range strings.SplitSeq(s, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			return line
		}
	}
	return ""
}
