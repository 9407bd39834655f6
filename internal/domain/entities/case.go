package entities

import "time"

// CaseStatus is the lifecycle state of a case.
type CaseStatus string

const (
	CaseOpen      CaseStatus = "open"
	CaseSignedOff CaseStatus = "signed_off"
)

// Case groups the evidence, narrative versions and audit trail of one investigation.
type Case struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Status      CaseStatus `json:"status"`
	SignedOffBy string     `json:"signed_off_by,omitempty"`
	SignedOffAt *time.Time `json:"signed_off_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// IsSignedOff reports whether the case has been signed off.
func (c *Case) IsSignedOff() bool {
	return c.Status == CaseSignedOff
}

// Evidence is a FactRecord stored against a case. It is never modified after insert.
type Evidence struct {
	ID        string     `json:"id"`
	CaseID    string     `json:"case_id"`
	Seq       int        `json:"seq"`
	Source    string     `json:"source,omitempty"`
	Record    FactRecord `json:"record"`
	CreatedAt time.Time  `json:"created_at"`
}
