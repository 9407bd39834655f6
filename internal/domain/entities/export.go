package entities

import "time"

// ExportBundle is the document handed to export formatters.
type ExportBundle struct {
	CaseID          string            `json:"case_id,omitempty"`
	Narrative       string            `json:"narrative"`
	NarrativeSHA256 string            `json:"narrative_sha256"`
	Facts           []FactRecord      `json:"facts"`
	ChecklistReport *ComplianceReport `json:"checklist_report"`
	AuditTrail      []AuditEntry      `json:"audit_trail"`
	GeneratedAt     time.Time         `json:"generated_at"`
}
