package ports

import (
	"context"

	"github.com/ersonp/sarcheck/internal/domain/entities"
)

// CaseStore persists cases, their evidence, narrative versions and audit trail.
// Every read and write is scoped to a single case.
type CaseStore interface {
	// EnsureSchema creates the database schema if it doesn't exist.
	EnsureSchema(ctx context.Context) error

	// Close closes the database connection.
	Close() error

	// SaveCase inserts a case or updates its status and sign-off fields.
	SaveCase(ctx context.Context, c *entities.Case) error

	// FindCase returns the case with the given ID, or nil if none exists.
	FindCase(ctx context.Context, id string) (*entities.Case, error)

	// ListCases lists cases, newest first.
	ListCases(ctx context.Context, limit int) ([]entities.Case, error)

	// AppendEvidence stores records for a case after any already stored.
	AppendEvidence(ctx context.Context, caseID, source string, records []entities.FactRecord) ([]entities.Evidence, error)

	// ListEvidence returns a case's evidence in insertion order.
	ListEvidence(ctx context.Context, caseID string) ([]entities.Evidence, error)

	// AppendVersion stores a new narrative version numbered after the case's
	// latest one. The assigned number is written back to version.Version.
	AppendVersion(ctx context.Context, version *entities.NarrativeVersion) error

	// FindVersions returns all versions of a case narrative, oldest first.
	FindVersions(ctx context.Context, caseID string) ([]entities.NarrativeVersion, error)

	// FindVersion returns one version, or nil if it does not exist.
	FindVersion(ctx context.Context, caseID string, version int) (*entities.NarrativeVersion, error)

	// FindLatestVersion returns the current narrative, or nil if none was saved.
	FindLatestVersion(ctx context.Context, caseID string) (*entities.NarrativeVersion, error)

	// LogAction appends an entry to the audit log.
	LogAction(ctx context.Context, caseID, action string, details map[string]any) error

	// FindAuditLog returns a case's audit entries, oldest first.
	FindAuditLog(ctx context.Context, caseID string) ([]entities.AuditEntry, error)

	// FindAuditLogByAction returns entries for an action across cases, newest first.
	FindAuditLogByAction(ctx context.Context, action string, limit int) ([]entities.AuditEntry, error)
}
