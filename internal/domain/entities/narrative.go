package entities

import "time"

// VersionKind indicates who produced a narrative version.
type VersionKind string

const (
	VersionAIDraft     VersionKind = "ai_draft"
	VersionAnalystEdit VersionKind = "analyst_edit"
	VersionAIFix       VersionKind = "ai_fix"
	VersionFinal       VersionKind = "final"
)

// IsValid reports whether k is a known version kind.
func (k VersionKind) IsValid() bool {
	switch k {
	case VersionAIDraft, VersionAnalystEdit, VersionAIFix, VersionFinal:
		return true
	default:
		return false
	}
}

// IsAI reports whether the version was authored by the text generator.
func (k VersionKind) IsAI() bool {
	return k == VersionAIDraft || k == VersionAIFix
}

// NarrativeVersion is an immutable snapshot of a case narrative.
// The highest Version of a case is its current narrative.
type NarrativeVersion struct {
	ID        string      `json:"id"`
	CaseID    string      `json:"case_id"`
	Version   int         `json:"version"`
	Kind      VersionKind `json:"kind"`
	Text      string      `json:"text"`
	Author    string      `json:"author,omitempty"`
	CreatedAt time.Time   `json:"created_at"`
}
