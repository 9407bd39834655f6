package handlers

import (
	"context"
	"fmt"

	"github.com/ersonp/sarcheck/internal/domain/entities"
	"github.com/ersonp/sarcheck/internal/domain/services"
)

// ReviewHandler handles the narrative review cycle of a case: drafting,
// editing, checking, fixing, comparing and sign-off.
type ReviewHandler struct {
	cases      *services.CaseService
	narratives *services.NarrativeService
}

// NewReviewHandler creates a new review handler. narratives may be nil when
// only analyst-authored narratives are used; Draft and Fix then fail.
func NewReviewHandler(cases *services.CaseService, narratives *services.NarrativeService) *ReviewHandler {
	return &ReviewHandler{
		cases:      cases,
		narratives: narratives,
	}
}

// FixResult contains the outcome of a remediation run.
type FixResult struct {
	Report  *entities.ComplianceReport
	Version *entities.NarrativeVersion // nil when the narrative already passes
}

// Draft generates a first narrative from the case evidence and stores it
// as an ai_draft version.
func (h *ReviewHandler) Draft(ctx context.Context, caseID string) (*entities.NarrativeVersion, error) {
	if err := h.requireGenerator(); err != nil {
		return nil, err
	}
	if err := h.requireOpen(ctx, caseID); err != nil {
		return nil, err
	}

	records, err := h.cases.Records(ctx, caseID)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: case %s has no evidence", entities.ErrInvalidInput, caseID)
	}

	text, err := h.narratives.Draft(ctx, records)
	if logErr := h.cases.RecordAIRequest(ctx, caseID, "draft", h.narratives.Generator().Name(), err); logErr != nil {
		return nil, fmt.Errorf("logging ai request: %w", logErr)
	}
	if err != nil {
		return nil, fmt.Errorf("drafting narrative: %w", err)
	}

	return h.cases.SaveNarrative(ctx, caseID, entities.VersionAIDraft, text, "")
}

// Save stores an analyst-supplied narrative version.
func (h *ReviewHandler) Save(ctx context.Context, caseID string, kind entities.VersionKind, text, author string) (*entities.NarrativeVersion, error) {
	return h.cases.SaveNarrative(ctx, caseID, kind, text, author)
}

// Check runs the checklist on the case's current narrative.
func (h *ReviewHandler) Check(ctx context.Context, caseID string) (*entities.ComplianceReport, error) {
	return h.cases.Check(ctx, caseID)
}

// Fix checks the current narrative and, when items fail, asks the generator
// for a corrected version stored as ai_fix.
func (h *ReviewHandler) Fix(ctx context.Context, caseID string) (*FixResult, error) {
	if err := h.requireGenerator(); err != nil {
		return nil, err
	}
	if err := h.requireOpen(ctx, caseID); err != nil {
		return nil, err
	}

	report, err := h.cases.Check(ctx, caseID)
	if err != nil {
		return nil, err
	}
	result := &FixResult{Report: report}
	if report.Overall {
		return result, nil
	}

	current, err := h.cases.CurrentNarrative(ctx, caseID)
	if err != nil {
		return nil, err
	}

	text, err := h.narratives.Remediate(ctx, report, current.Text)
	if logErr := h.cases.RecordAIRequest(ctx, caseID, "fix", h.narratives.Generator().Name(), err); logErr != nil {
		return nil, fmt.Errorf("logging ai request: %w", logErr)
	}
	if err != nil {
		return nil, fmt.Errorf("remediating narrative: %w", err)
	}

	v, err := h.cases.SaveNarrative(ctx, caseID, entities.VersionAIFix, text, "")
	if err != nil {
		return nil, err
	}
	result.Version = v
	return result, nil
}

// Compare diffs two narrative versions of a case. Zero selects the defaults.
func (h *ReviewHandler) Compare(ctx context.Context, caseID string, from, to int) (*entities.DiffResult, error) {
	return h.cases.Compare(ctx, caseID, from, to)
}

// History returns the narrative versions of a case, oldest first.
func (h *ReviewHandler) History(ctx context.Context, caseID string) ([]entities.NarrativeVersion, error) {
	return h.cases.History(ctx, caseID)
}

// SignOff closes the case under the analyst's name.
func (h *ReviewHandler) SignOff(ctx context.Context, caseID, analyst string) (*entities.Case, error) {
	return h.cases.SignOff(ctx, caseID, analyst)
}

// AuditTrail returns the case's audit entries, oldest first.
func (h *ReviewHandler) AuditTrail(ctx context.Context, caseID string) ([]entities.AuditEntry, error) {
	return h.cases.AuditTrail(ctx, caseID)
}

// Export builds the audit bundle of a signed-off case.
func (h *ReviewHandler) Export(ctx context.Context, caseID string) (*entities.ExportBundle, error) {
	return h.cases.Export(ctx, caseID)
}

func (h *ReviewHandler) requireGenerator() error {
	if h.narratives == nil {
		return fmt.Errorf("%w: no text generator configured", entities.ErrInvalidInput)
	}
	return nil
}

// requireOpen fails before any generation call is made for a frozen case.
func (h *ReviewHandler) requireOpen(ctx context.Context, caseID string) error {
	c, err := h.cases.GetCase(ctx, caseID)
	if err != nil {
		return err
	}
	if c.IsSignedOff() {
		return fmt.Errorf("%w: %s", entities.ErrCaseSignedOff, caseID)
	}
	return nil
}
