package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/ersonp/sarcheck/internal/domain/entities"
	"github.com/ersonp/sarcheck/internal/domain/ports"
)

// DefaultSearchLimit is the default number of precedents to return.
const DefaultSearchLimit = 5

// PrecedentService indexes signed-off narratives and finds similar ones.
type PrecedentService struct {
	embedder ports.Embedder
	index    ports.PrecedentIndex
}

// NewPrecedentService creates a new precedent service.
func NewPrecedentService(embedder ports.Embedder, index ports.PrecedentIndex) *PrecedentService {
	return &PrecedentService{
		embedder: embedder,
		index:    index,
	}
}

// Index embeds a narrative and stores it as the case's precedent,
// replacing whatever was indexed for the case before.
func (s *PrecedentService) Index(ctx context.Context, caseID, narrative string) (*entities.Precedent, error) {
	if strings.TrimSpace(narrative) == "" {
		return nil, fmt.Errorf("%w: narrative is empty", entities.ErrInvalidInput)
	}

	embedding, err := s.embedder.Embed(ctx, narrative)
	if err != nil {
		return nil, fmt.Errorf("generating narrative embedding: %w", err)
	}

	if err := s.index.DeleteByCase(ctx, caseID); err != nil {
		return nil, fmt.Errorf("removing previous precedent: %w", err)
	}

	p := entities.Precedent{
		ID:        uuid.New().String(),
		CaseID:    caseID,
		Narrative: narrative,
		Embedding: embedding,
		CreatedAt: timeNow(),
	}
	if err := s.index.Save(ctx, p); err != nil {
		return nil, fmt.Errorf("saving precedent: %w", err)
	}
	return &p, nil
}

// Similar finds prior narratives semantically close to narrative, best first.
func (s *PrecedentService) Similar(ctx context.Context, narrative string, limit int) ([]entities.Precedent, error) {
	if limit <= 0 {
		limit = DefaultSearchLimit
	}

	embedding, err := s.embedder.Embed(ctx, narrative)
	if err != nil {
		return nil, fmt.Errorf("generating query embedding: %w", err)
	}

	precedents, err := s.index.Search(ctx, embedding, limit)
	if err != nil {
		return nil, fmt.Errorf("searching precedents: %w", err)
	}

	return precedents, nil
}
