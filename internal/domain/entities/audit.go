package entities

import "time"

// Audit actions recorded by the case workflow.
const (
	ActionCaseCreated    = "case_created"
	ActionEvidenceAdded  = "evidence_added"
	ActionNarrativeSaved = "narrative_saved"
	ActionChecklistRun   = "checklist_run"
	ActionDiffViewed     = "diff_viewed"
	ActionAIRequested    = "ai_requested"
	ActionSignedOff      = "signed_off"
	ActionExported       = "exported"
)

// AuditEntry represents a logged action in the system. Entries are append-only.
type AuditEntry struct {
	ID        int64          `json:"id"`
	CaseID    string         `json:"case_id,omitempty"`
	Action    string         `json:"action"`
	Details   map[string]any `json:"details,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}
