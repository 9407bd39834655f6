package ports

import (
	"context"

	"github.com/ersonp/sarcheck/internal/domain/entities"
)

// PrecedentIndex stores signed-off narratives for similarity search.
type PrecedentIndex interface {
	// Save stores a precedent with its embedding.
	Save(ctx context.Context, precedent entities.Precedent) error

	// Search returns the precedents closest to embedding, best first.
	Search(ctx context.Context, embedding []float32, limit int) ([]entities.Precedent, error)

	// DeleteByCase removes every precedent indexed for a case.
	DeleteByCase(ctx context.Context, caseID string) error
}
