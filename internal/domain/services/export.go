package services

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/ersonp/sarcheck/internal/domain/entities"
)

// NewExportBundle assembles the export document. narrative must be a string
// and facts a sequence of mappings; other shapes fail with
// entities.ErrInvalidInput rather than being coerced.
func NewExportBundle(narrative any, facts any, report *entities.ComplianceReport, trail []entities.AuditEntry) (*entities.ExportBundle, error) {
	text, ok := narrative.(string)
	if !ok {
		return nil, fmt.Errorf("%w: narrative must be text, got %T", entities.ErrInvalidInput, narrative)
	}

	switch facts.(type) {
	case []entities.FactRecord, []map[string]any, []any:
	default:
		return nil, fmt.Errorf("%w: facts must be a sequence of mappings, got %T", entities.ErrInvalidInput, facts)
	}
	records, err := NormalizeRecords(facts)
	if err != nil {
		return nil, err
	}

	if report == nil {
		return nil, fmt.Errorf("%w: checklist report is missing", entities.ErrInvalidInput)
	}
	if trail == nil {
		trail = []entities.AuditEntry{}
	}

	return &entities.ExportBundle{
		Narrative:       text,
		NarrativeSHA256: NarrativeSHA256(text),
		Facts:           records,
		ChecklistReport: report,
		AuditTrail:      trail,
		GeneratedAt:     timeNow().UTC(),
	}, nil
}

// NarrativeSHA256 returns the hex SHA-256 of the narrative text.
func NarrativeSHA256(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}
