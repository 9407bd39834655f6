package handlers

import (
	"context"
	"fmt"

	"github.com/ersonp/sarcheck/internal/domain/entities"
	"github.com/ersonp/sarcheck/internal/domain/services"
)

// PrecedentHandler indexes signed-off narratives and searches them.
type PrecedentHandler struct {
	cases      *services.CaseService
	precedents *services.PrecedentService
}

// NewPrecedentHandler creates a new precedent handler.
func NewPrecedentHandler(cases *services.CaseService, precedents *services.PrecedentService) *PrecedentHandler {
	return &PrecedentHandler{
		cases:      cases,
		precedents: precedents,
	}
}

// Index stores the current narrative of a signed-off case as a precedent.
func (h *PrecedentHandler) Index(ctx context.Context, caseID string) (*entities.Precedent, error) {
	c, err := h.cases.GetCase(ctx, caseID)
	if err != nil {
		return nil, err
	}
	if !c.IsSignedOff() {
		return nil, fmt.Errorf("%w: %s", entities.ErrNotSignedOff, caseID)
	}

	current, err := h.cases.CurrentNarrative(ctx, caseID)
	if err != nil {
		return nil, err
	}

	return h.precedents.Index(ctx, caseID, current.Text)
}

// Search returns precedents similar to narrative, best first.
func (h *PrecedentHandler) Search(ctx context.Context, narrative string, limit int) ([]entities.Precedent, error) {
	if narrative == "" {
		return nil, fmt.Errorf("%w: narrative is empty", entities.ErrInvalidInput)
	}
	return h.precedents.Similar(ctx, narrative, limit)
}
