// Package sqlite provides a SQLite implementation of the CaseStore interface.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/ersonp/sarcheck/internal/domain/entities"
	"github.com/ersonp/sarcheck/internal/infrastructure/config"
)

// generateUUID returns a new UUID string.
func generateUUID() string {
	return uuid.New().String()
}

// timeNow returns the current time (can be mocked in tests).
var timeNow = time.Now

// Repository implements ports.CaseStore using SQLite.
type Repository struct {
	db   *sql.DB
	path string
}

// NewRepository creates a new SQLite repository.
func NewRepository(cfg config.SQLiteConfig) (*Repository, error) {
	if cfg.Path == "" {
		return nil, errors.New("sqlite path is required")
	}

	db, err := sql.Open("sqlite", dataSourceName(cfg.Path))
	if err != nil {
		return nil, fmt.Errorf("opening sqlite database: %w", err)
	}

	// Every pooled connection to :memory: would get its own empty database.
	if cfg.Path == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connecting to sqlite database: %w", err)
	}

	return &Repository{
		db:   db,
		path: cfg.Path,
	}, nil
}

// dataSourceName carries the connection settings as DSN parameters so each
// pooled connection applies them. Write transactions begin IMMEDIATE.
func dataSourceName(path string) string {
	params := url.Values{}
	params.Add("_pragma", "busy_timeout(5000)")
	params.Add("_pragma", "foreign_keys(1)")
	params.Add("_pragma", "journal_mode(WAL)")
	params.Set("_txlock", "immediate")
	return path + "?" + params.Encode()
}

// Close closes the database connection.
func (r *Repository) Close() error {
	return r.db.Close()
}

// Path returns the database file path.
func (r *Repository) Path() string {
	return r.path
}

// EnsureSchema creates the database schema if it doesn't exist.
func (r *Repository) EnsureSchema(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS cases (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		status TEXT NOT NULL,
		signed_off_by TEXT,
		signed_off_at TIMESTAMP,
		created_at TIMESTAMP NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_cases_created ON cases(created_at);

	-- Evidence rows are append-only; seq orders them within a case
	CREATE TABLE IF NOT EXISTS evidence (
		id TEXT PRIMARY KEY,
		case_id TEXT NOT NULL REFERENCES cases(id),
		seq INTEGER NOT NULL,
		source TEXT,
		record TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL,
		UNIQUE(case_id, seq)
	);

	-- Narrative history; the highest version is the current narrative
	CREATE TABLE IF NOT EXISTS narrative_versions (
		id TEXT PRIMARY KEY,
		case_id TEXT NOT NULL REFERENCES cases(id),
		version INTEGER NOT NULL,
		kind TEXT NOT NULL,
		text TEXT NOT NULL,
		author TEXT,
		created_at TIMESTAMP NOT NULL,
		UNIQUE(case_id, version)
	);

	-- Audit log (tracks all actions)
	CREATE TABLE IF NOT EXISTS audit_log (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		case_id TEXT,
		action TEXT NOT NULL,
		details TEXT,
		created_at TIMESTAMP NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_audit_log_case ON audit_log(case_id);
	CREATE INDEX IF NOT EXISTS idx_audit_log_action ON audit_log(action);
	`

	_, err := r.db.ExecContext(ctx, schema)
	if err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	return nil
}

// SaveCase inserts a case or updates its status and sign-off fields.
func (r *Repository) SaveCase(ctx context.Context, c *entities.Case) error {
	if c.CreatedAt.IsZero() {
		c.CreatedAt = timeNow().UTC()
	}

	var signedOffBy sql.NullString
	if c.SignedOffBy != "" {
		signedOffBy = sql.NullString{String: c.SignedOffBy, Valid: true}
	}
	var signedOffAt sql.NullTime
	if c.SignedOffAt != nil {
		signedOffAt = sql.NullTime{Time: c.SignedOffAt.UTC(), Valid: true}
	}

	query := `
		INSERT INTO cases (id, name, status, signed_off_by, signed_off_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			status = excluded.status,
			signed_off_by = excluded.signed_off_by,
			signed_off_at = excluded.signed_off_at
	`
	_, err := r.db.ExecContext(ctx, query,
		c.ID,
		c.Name,
		string(c.Status),
		signedOffBy,
		signedOffAt,
		c.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("saving case: %w", err)
	}
	return nil
}

// FindCase returns the case with the given ID, or nil if none exists.
func (r *Repository) FindCase(ctx context.Context, id string) (*entities.Case, error) {
	query := `
		SELECT id, name, status, signed_off_by, signed_off_at, created_at
		FROM cases
		WHERE id = ?
	`
	c, err := scanCase(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

// ListCases lists cases, newest first. A non-positive limit lists all.
func (r *Repository) ListCases(ctx context.Context, limit int) ([]entities.Case, error) {
	if limit <= 0 {
		limit = -1
	}
	query := `
		SELECT id, name, status, signed_off_by, signed_off_at, created_at
		FROM cases
		ORDER BY created_at DESC, rowid DESC
		LIMIT ?
	`
	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("querying cases: %w", err)
	}
	defer rows.Close()

	cases := make([]entities.Case, 0, 16)
	for rows.Next() {
		c, err := scanCase(rows)
		if err != nil {
			return nil, err
		}
		cases = append(cases, *c)
	}
	return cases, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCase(row rowScanner) (*entities.Case, error) {
	var c entities.Case
	var status string
	var signedOffBy sql.NullString
	var signedOffAt sql.NullTime

	err := row.Scan(&c.ID, &c.Name, &status, &signedOffBy, &signedOffAt, &c.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("scanning case: %w", err)
	}

	c.Status = entities.CaseStatus(status)
	c.SignedOffBy = signedOffBy.String
	if signedOffAt.Valid {
		at := signedOffAt.Time
		c.SignedOffAt = &at
	}
	return &c, nil
}

// AppendEvidence stores records for a case after any already stored.
func (r *Repository) AppendEvidence(ctx context.Context, caseID, source string, records []entities.FactRecord) ([]entities.Evidence, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	var seq int
	if err := tx.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(seq), 0) FROM evidence WHERE case_id = ?`, caseID,
	).Scan(&seq); err != nil {
		return nil, fmt.Errorf("reading evidence sequence: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO evidence (id, case_id, seq, source, record, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return nil, fmt.Errorf("preparing evidence insert: %w", err)
	}
	defer stmt.Close()

	now := timeNow().UTC()
	added := make([]entities.Evidence, 0, len(records))
	for _, rec := range records {
		data, err := json.Marshal(rec)
		if err != nil {
			return nil, fmt.Errorf("marshaling evidence record: %w", err)
		}

		seq++
		ev := entities.Evidence{
			ID:        generateUUID(),
			CaseID:    caseID,
			Seq:       seq,
			Source:    source,
			Record:    rec,
			CreatedAt: now,
		}
		if _, err := stmt.ExecContext(ctx, ev.ID, ev.CaseID, ev.Seq, nullString(source), string(data), ev.CreatedAt); err != nil {
			return nil, fmt.Errorf("saving evidence: %w", err)
		}
		added = append(added, ev)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing evidence: %w", err)
	}
	return added, nil
}

// ListEvidence returns a case's evidence in insertion order.
func (r *Repository) ListEvidence(ctx context.Context, caseID string) ([]entities.Evidence, error) {
	query := `
		SELECT id, case_id, seq, source, record, created_at
		FROM evidence
		WHERE case_id = ?
		ORDER BY seq ASC
	`
	rows, err := r.db.QueryContext(ctx, query, caseID)
	if err != nil {
		return nil, fmt.Errorf("querying evidence: %w", err)
	}
	defer rows.Close()

	evidence := make([]entities.Evidence, 0, 16)
	for rows.Next() {
		var ev entities.Evidence
		var source sql.NullString
		var data string

		if err := rows.Scan(&ev.ID, &ev.CaseID, &ev.Seq, &source, &data, &ev.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning evidence: %w", err)
		}
		ev.Source = source.String
		if err := json.Unmarshal([]byte(data), &ev.Record); err != nil {
			return nil, fmt.Errorf("unmarshaling evidence record: %w", err)
		}
		evidence = append(evidence, ev)
	}
	return evidence, rows.Err()
}

// AppendVersion stores a narrative version numbered after the case's latest
// one. The number is allocated by the insert itself.
func (r *Repository) AppendVersion(ctx context.Context, v *entities.NarrativeVersion) error {
	if v.ID == "" {
		v.ID = generateUUID()
	}
	if v.CreatedAt.IsZero() {
		v.CreatedAt = timeNow().UTC()
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	query := `
		INSERT INTO narrative_versions (id, case_id, version, kind, text, author, created_at)
		SELECT ?, ?, COALESCE(MAX(version), 0) + 1, ?, ?, ?, ?
		FROM narrative_versions
		WHERE case_id = ?
		RETURNING version
	`
	err = tx.QueryRowContext(ctx, query,
		v.ID,
		v.CaseID,
		string(v.Kind),
		v.Text,
		nullString(v.Author),
		v.CreatedAt,
		v.CaseID,
	).Scan(&v.Version)
	if err != nil {
		return fmt.Errorf("saving narrative version: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing narrative version: %w", err)
	}
	return nil
}

// FindVersions returns all versions of a case narrative, oldest first.
func (r *Repository) FindVersions(ctx context.Context, caseID string) ([]entities.NarrativeVersion, error) {
	query := `
		SELECT id, case_id, version, kind, text, author, created_at
		FROM narrative_versions
		WHERE case_id = ?
		ORDER BY version ASC
	`
	rows, err := r.db.QueryContext(ctx, query, caseID)
	if err != nil {
		return nil, fmt.Errorf("querying narrative versions: %w", err)
	}
	defer rows.Close()

	versions := make([]entities.NarrativeVersion, 0, 16)
	for rows.Next() {
		v, err := scanVersion(rows)
		if err != nil {
			return nil, err
		}
		versions = append(versions, *v)
	}
	return versions, rows.Err()
}

// FindVersion returns one version, or nil if it does not exist.
func (r *Repository) FindVersion(ctx context.Context, caseID string, version int) (*entities.NarrativeVersion, error) {
	query := `
		SELECT id, case_id, version, kind, text, author, created_at
		FROM narrative_versions
		WHERE case_id = ? AND version = ?
	`
	v, err := scanVersion(r.db.QueryRowContext(ctx, query, caseID, version))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return v, err
}

// FindLatestVersion returns the current narrative, or nil if none was saved.
func (r *Repository) FindLatestVersion(ctx context.Context, caseID string) (*entities.NarrativeVersion, error) {
	query := `
		SELECT id, case_id, version, kind, text, author, created_at
		FROM narrative_versions
		WHERE case_id = ?
		ORDER BY version DESC
		LIMIT 1
	`
	v, err := scanVersion(r.db.QueryRowContext(ctx, query, caseID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return v, err
}

func scanVersion(row rowScanner) (*entities.NarrativeVersion, error) {
	var v entities.NarrativeVersion
	var kind string
	var author sql.NullString

	err := row.Scan(&v.ID, &v.CaseID, &v.Version, &kind, &v.Text, &author, &v.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("scanning narrative version: %w", err)
	}

	v.Kind = entities.VersionKind(kind)
	v.Author = author.String
	return &v, nil
}

// LogAction logs an action to the audit log.
func (r *Repository) LogAction(ctx context.Context, caseID, action string, details map[string]any) error {
	var detailsJSON sql.NullString
	if details != nil {
		data, err := json.Marshal(details)
		if err != nil {
			return fmt.Errorf("marshaling details: %w", err)
		}
		detailsJSON = sql.NullString{String: string(data), Valid: true}
	}

	query := `INSERT INTO audit_log (case_id, action, details, created_at) VALUES (?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query, nullString(caseID), action, detailsJSON, timeNow().UTC())
	if err != nil {
		return fmt.Errorf("logging action: %w", err)
	}
	return nil
}

// FindAuditLog returns a case's audit entries, oldest first.
func (r *Repository) FindAuditLog(ctx context.Context, caseID string) ([]entities.AuditEntry, error) {
	query := `
		SELECT id, case_id, action, details, created_at
		FROM audit_log
		WHERE case_id = ?
		ORDER BY id ASC
	`
	return r.queryAuditLog(ctx, query, caseID)
}

// FindAuditLogByAction finds audit log entries by action type, newest first.
func (r *Repository) FindAuditLogByAction(ctx context.Context, action string, limit int) ([]entities.AuditEntry, error) {
	if limit <= 0 {
		limit = -1
	}
	query := `
		SELECT id, case_id, action, details, created_at
		FROM audit_log
		WHERE action = ?
		ORDER BY id DESC
		LIMIT ?
	`
	return r.queryAuditLog(ctx, query, action, limit)
}

// queryAuditLog is a helper to execute audit log queries.
func (r *Repository) queryAuditLog(ctx context.Context, query string, args ...any) ([]entities.AuditEntry, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying audit log: %w", err)
	}
	defer rows.Close()

	// Use limit parameter as capacity hint if available
	var entries []entities.AuditEntry
	if len(args) > 0 {
		if limit, ok := args[len(args)-1].(int); ok && limit > 0 {
			entries = make([]entities.AuditEntry, 0, limit)
		}
	}

	for rows.Next() {
		var entry entities.AuditEntry
		var caseID, details sql.NullString

		if err := rows.Scan(
			&entry.ID,
			&caseID,
			&entry.Action,
			&details,
			&entry.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning audit entry: %w", err)
		}

		entry.CaseID = caseID.String

		if details.Valid && details.String != "" {
			if err := json.Unmarshal([]byte(details.String), &entry.Details); err != nil {
				return nil, fmt.Errorf("unmarshaling details: %w", err)
			}
		}

		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
