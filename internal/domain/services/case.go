package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ersonp/sarcheck/internal/domain/entities"
	"github.com/ersonp/sarcheck/internal/domain/ports"
)

// DefaultListLimit caps case listings when no limit is given.
const DefaultListLimit = 50

var timeNow = time.Now

// CaseService runs the per-case workflow: evidence intake, narrative
// versioning, checks, comparisons, sign-off and export. Every operation is
// scoped to one case and recorded in that case's audit trail.
type CaseService struct {
	store ports.CaseStore
	rules *RuleSet
}

// NewCaseService creates a new CaseService. A nil rules uses DefaultRuleSet.
func NewCaseService(store ports.CaseStore, rules *RuleSet) *CaseService {
	if rules == nil {
		rules = DefaultRuleSet()
	}
	return &CaseService{
		store: store,
		rules: rules,
	}
}

// Rules returns the rulebook used by Check.
func (s *CaseService) Rules() *RuleSet {
	return s.rules
}

// CreateCase opens a new case.
func (s *CaseService) CreateCase(ctx context.Context, name string) (*entities.Case, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: case name is required", entities.ErrInvalidInput)
	}

	c := &entities.Case{
		ID:        uuid.New().String(),
		Name:      name,
		Status:    entities.CaseOpen,
		CreatedAt: timeNow(),
	}
	if err := s.store.SaveCase(ctx, c); err != nil {
		return nil, fmt.Errorf("saving case: %w", err)
	}
	if err := s.store.LogAction(ctx, c.ID, entities.ActionCaseCreated, map[string]any{"name": name}); err != nil {
		return nil, fmt.Errorf("logging case creation: %w", err)
	}
	return c, nil
}

// GetCase returns a case or entities.ErrCaseNotFound.
func (s *CaseService) GetCase(ctx context.Context, caseID string) (*entities.Case, error) {
	c, err := s.store.FindCase(ctx, caseID)
	if err != nil {
		return nil, fmt.Errorf("finding case: %w", err)
	}
	if c == nil {
		return nil, fmt.Errorf("%w: %s", entities.ErrCaseNotFound, caseID)
	}
	return c, nil
}

// ListCases lists cases, newest first.
func (s *CaseService) ListCases(ctx context.Context, limit int) ([]entities.Case, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	return s.store.ListCases(ctx, limit)
}

// openCase returns a case that can still be modified.
func (s *CaseService) openCase(ctx context.Context, caseID string) (*entities.Case, error) {
	c, err := s.GetCase(ctx, caseID)
	if err != nil {
		return nil, err
	}
	if c.IsSignedOff() {
		return nil, fmt.Errorf("%w: %s", entities.ErrCaseSignedOff, caseID)
	}
	return c, nil
}

// AddEvidence appends records to a case. input is normalized with
// NormalizeRecords, so a single mapping or a sequence of mappings is accepted.
func (s *CaseService) AddEvidence(ctx context.Context, caseID, source string, input any) ([]entities.Evidence, error) {
	records, err := NormalizeRecords(input)
	if err != nil {
		return nil, err
	}
	if _, err := s.openCase(ctx, caseID); err != nil {
		return nil, err
	}

	added, err := s.store.AppendEvidence(ctx, caseID, source, records)
	if err != nil {
		return nil, fmt.Errorf("storing evidence: %w", err)
	}

	details := map[string]any{"count": len(added)}
	if source != "" {
		details["source"] = source
	}
	if err := s.store.LogAction(ctx, caseID, entities.ActionEvidenceAdded, details); err != nil {
		return nil, fmt.Errorf("logging evidence: %w", err)
	}
	return added, nil
}

// Records returns the case evidence as fact records, in insertion order.
func (s *CaseService) Records(ctx context.Context, caseID string) ([]entities.FactRecord, error) {
	if _, err := s.GetCase(ctx, caseID); err != nil {
		return nil, err
	}
	evidence, err := s.store.ListEvidence(ctx, caseID)
	if err != nil {
		return nil, fmt.Errorf("listing evidence: %w", err)
	}
	records := make([]entities.FactRecord, 0, len(evidence))
	for _, ev := range evidence {
		records = append(records, ev.Record)
	}
	return records, nil
}

// Facts extracts the 5Ws from the case evidence.
func (s *CaseService) Facts(ctx context.Context, caseID string) (entities.FiveWs, error) {
	records, err := s.Records(ctx, caseID)
	if err != nil {
		return nil, err
	}
	return Extract(records), nil
}

// SaveNarrative stores a new immutable narrative version. It becomes the
// case's current narrative.
func (s *CaseService) SaveNarrative(ctx context.Context, caseID string, kind entities.VersionKind, text, author string) (*entities.NarrativeVersion, error) {
	if !kind.IsValid() {
		return nil, fmt.Errorf("%w: unknown narrative kind %q", entities.ErrInvalidInput, kind)
	}
	if _, err := s.openCase(ctx, caseID); err != nil {
		return nil, err
	}

	v := &entities.NarrativeVersion{
		ID:        uuid.New().String(),
		CaseID:    caseID,
		Kind:      kind,
		Text:      text,
		Author:    author,
		CreatedAt: timeNow(),
	}
	if err := s.store.AppendVersion(ctx, v); err != nil {
		return nil, fmt.Errorf("saving narrative version: %w", err)
	}

	details := map[string]any{
		"version": v.Version,
		"kind":    string(kind),
		"length":  len([]rune(strings.TrimSpace(text))),
	}
	if author != "" {
		details["author"] = author
	}
	if err := s.store.LogAction(ctx, caseID, entities.ActionNarrativeSaved, details); err != nil {
		return nil, fmt.Errorf("logging narrative: %w", err)
	}
	return v, nil
}

// History returns every narrative version of a case, oldest first.
func (s *CaseService) History(ctx context.Context, caseID string) ([]entities.NarrativeVersion, error) {
	if _, err := s.GetCase(ctx, caseID); err != nil {
		return nil, err
	}
	return s.store.FindVersions(ctx, caseID)
}

// CurrentNarrative returns the latest version or entities.ErrNoNarrative.
func (s *CaseService) CurrentNarrative(ctx context.Context, caseID string) (*entities.NarrativeVersion, error) {
	if _, err := s.GetCase(ctx, caseID); err != nil {
		return nil, err
	}
	v, err := s.store.FindLatestVersion(ctx, caseID)
	if err != nil {
		return nil, fmt.Errorf("finding current narrative: %w", err)
	}
	if v == nil {
		return nil, fmt.Errorf("%w: %s", entities.ErrNoNarrative, caseID)
	}
	return v, nil
}

// Check runs the compliance checklist on the current narrative against
// facts extracted from the case evidence.
func (s *CaseService) Check(ctx context.Context, caseID string) (*entities.ComplianceReport, error) {
	current, err := s.CurrentNarrative(ctx, caseID)
	if err != nil {
		return nil, err
	}
	facts, err := s.Facts(ctx, caseID)
	if err != nil {
		return nil, err
	}

	report := s.rules.Evaluate(current.Text, facts)

	details := map[string]any{
		"version": current.Version,
		"overall": report.Overall,
		"failed":  report.FailedKeys(),
	}
	if err := s.store.LogAction(ctx, caseID, entities.ActionChecklistRun, details); err != nil {
		return nil, fmt.Errorf("logging checklist run: %w", err)
	}
	return report, nil
}

// Compare diffs two narrative versions. A zero from selects the latest
// AI-authored version (or the first version when none is AI-authored);
// a zero to selects the current version.
func (s *CaseService) Compare(ctx context.Context, caseID string, from, to int) (*entities.DiffResult, error) {
	versions, err := s.History(ctx, caseID)
	if err != nil {
		return nil, err
	}
	if len(versions) == 0 {
		return nil, fmt.Errorf("%w: %s", entities.ErrNoNarrative, caseID)
	}

	original, err := pickVersion(versions, from, func() entities.NarrativeVersion {
		for i := len(versions) - 1; i >= 0; i-- {
			if versions[i].Kind.IsAI() {
				return versions[i]
			}
		}
		return versions[0]
	})
	if err != nil {
		return nil, err
	}
	revised, err := pickVersion(versions, to, func() entities.NarrativeVersion {
		return versions[len(versions)-1]
	})
	if err != nil {
		return nil, err
	}

	result := Diff(original.Text, revised.Text)

	details := map[string]any{
		"from":      original.Version,
		"to":        revised.Version,
		"identical": result.Identical,
	}
	for kind, n := range result.Stats() {
		details[string(kind)] = n
	}
	if err := s.store.LogAction(ctx, caseID, entities.ActionDiffViewed, details); err != nil {
		return nil, fmt.Errorf("logging diff: %w", err)
	}
	return &result, nil
}

func pickVersion(versions []entities.NarrativeVersion, number int, fallback func() entities.NarrativeVersion) (entities.NarrativeVersion, error) {
	if number == 0 {
		return fallback(), nil
	}
	for _, v := range versions {
		if v.Version == number {
			return v, nil
		}
	}
	return entities.NarrativeVersion{}, fmt.Errorf("%w: version %d", entities.ErrVersionNotFound, number)
}

// SignOff closes a case under the analyst's name. The current narrative's
// hash is recorded so later tampering is detectable.
func (s *CaseService) SignOff(ctx context.Context, caseID, analyst string) (*entities.Case, error) {
	analyst = strings.TrimSpace(analyst)
	if analyst == "" {
		return nil, fmt.Errorf("%w: analyst is required for sign-off", entities.ErrInvalidInput)
	}
	c, err := s.openCase(ctx, caseID)
	if err != nil {
		return nil, err
	}
	current, err := s.CurrentNarrative(ctx, caseID)
	if err != nil {
		return nil, err
	}

	now := timeNow()
	c.Status = entities.CaseSignedOff
	c.SignedOffBy = analyst
	c.SignedOffAt = &now
	if err := s.store.SaveCase(ctx, c); err != nil {
		return nil, fmt.Errorf("saving sign-off: %w", err)
	}

	details := map[string]any{
		"analyst":          analyst,
		"version":          current.Version,
		"narrative_sha256": NarrativeSHA256(current.Text),
	}
	if err := s.store.LogAction(ctx, caseID, entities.ActionSignedOff, details); err != nil {
		return nil, fmt.Errorf("logging sign-off: %w", err)
	}
	return c, nil
}

// RecordAIRequest logs a text-generation request made for a case.
func (s *CaseService) RecordAIRequest(ctx context.Context, caseID, purpose, provider string, callErr error) error {
	details := map[string]any{
		"purpose":  purpose,
		"provider": provider,
		"success":  callErr == nil,
	}
	if callErr != nil {
		details["error"] = callErr.Error()
	}
	return s.store.LogAction(ctx, caseID, entities.ActionAIRequested, details)
}

// AuditTrail returns a case's audit entries, oldest first.
func (s *CaseService) AuditTrail(ctx context.Context, caseID string) ([]entities.AuditEntry, error) {
	if _, err := s.GetCase(ctx, caseID); err != nil {
		return nil, err
	}
	return s.store.FindAuditLog(ctx, caseID)
}

// RecentActivity lists the latest audit entries of one action across cases.
func (s *CaseService) RecentActivity(ctx context.Context, action string, limit int) ([]entities.AuditEntry, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	return s.store.FindAuditLogByAction(ctx, action, limit)
}

// Export builds the export bundle of a signed-off case and records the export.
func (s *CaseService) Export(ctx context.Context, caseID string) (*entities.ExportBundle, error) {
	c, err := s.GetCase(ctx, caseID)
	if err != nil {
		return nil, err
	}
	if !c.IsSignedOff() {
		return nil, fmt.Errorf("%w: %s", entities.ErrNotSignedOff, caseID)
	}

	current, err := s.CurrentNarrative(ctx, caseID)
	if err != nil {
		return nil, err
	}
	records, err := s.Records(ctx, caseID)
	if err != nil {
		return nil, err
	}
	trail, err := s.store.FindAuditLog(ctx, caseID)
	if err != nil {
		return nil, fmt.Errorf("loading audit trail: %w", err)
	}

	report := s.rules.Evaluate(current.Text, Extract(records))

	bundle, err := NewExportBundle(current.Text, records, report, trail)
	if err != nil {
		return nil, err
	}
	bundle.CaseID = caseID

	if err := s.store.LogAction(ctx, caseID, entities.ActionExported, map[string]any{
		"narrative_sha256": bundle.NarrativeSHA256,
	}); err != nil {
		return nil, fmt.Errorf("logging export: %w", err)
	}
	return bundle, nil
}
