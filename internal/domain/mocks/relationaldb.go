package mocks

import (
	"context"
	"fmt"
	"maps"
	"sort"
	"sync"
	"time"

	"github.com/ersonp/sarcheck/internal/domain/entities"
)

// CaseStore is an in-memory implementation of ports.CaseStore.
type CaseStore struct {
	Err error

	mu       sync.Mutex
	cases    map[string]entities.Case
	evidence map[string][]entities.Evidence
	versions map[string][]entities.NarrativeVersion
	audit    []entities.AuditEntry
	clock    time.Time
}

// NewCaseStore creates an empty in-memory store.
func NewCaseStore() *CaseStore {
	return &CaseStore{
		cases:    make(map[string]entities.Case),
		evidence: make(map[string][]entities.Evidence),
		versions: make(map[string][]entities.NarrativeVersion),
		clock:    time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

// now returns a strictly increasing timestamp so ordering is deterministic.
func (m *CaseStore) now() time.Time {
	m.clock = m.clock.Add(time.Second)
	return m.clock
}

// EnsureSchema returns the configured error.
func (m *CaseStore) EnsureSchema(_ context.Context) error {
	return m.Err
}

// Close does nothing.
func (m *CaseStore) Close() error {
	return nil
}

// SaveCase inserts or updates a case.
func (m *CaseStore) SaveCase(_ context.Context, c *entities.Case) error {
	if m.Err != nil {
		return m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if c.CreatedAt.IsZero() {
		c.CreatedAt = m.now()
	}
	m.cases[c.ID] = *c
	return nil
}

// FindCase returns a copy of the case, or nil.
func (m *CaseStore) FindCase(_ context.Context, id string) (*entities.Case, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.cases[id]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

// ListCases lists cases newest first.
func (m *CaseStore) ListCases(_ context.Context, limit int) ([]entities.Case, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]entities.Case, 0, len(m.cases))
	for _, c := range m.cases {
		result = append(result, c)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

// AppendEvidence stores records after the case's existing evidence.
func (m *CaseStore) AppendEvidence(_ context.Context, caseID, source string, records []entities.FactRecord) ([]entities.Evidence, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	seq := len(m.evidence[caseID])
	added := make([]entities.Evidence, 0, len(records))
	for _, rec := range records {
		seq++
		ev := entities.Evidence{
			ID:        fmt.Sprintf("ev-%s-%d", caseID, seq),
			CaseID:    caseID,
			Seq:       seq,
			Source:    source,
			Record:    maps.Clone(rec),
			CreatedAt: m.now(),
		}
		added = append(added, ev)
	}
	m.evidence[caseID] = append(m.evidence[caseID], added...)
	return added, nil
}

// ListEvidence returns the case evidence in insertion order.
func (m *CaseStore) ListEvidence(_ context.Context, caseID string) ([]entities.Evidence, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]entities.Evidence(nil), m.evidence[caseID]...), nil
}

// AppendVersion stores a narrative version after the latest one.
func (m *CaseStore) AppendVersion(_ context.Context, v *entities.NarrativeVersion) error {
	if m.Err != nil {
		return m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	v.Version = len(m.versions[v.CaseID]) + 1
	if v.CreatedAt.IsZero() {
		v.CreatedAt = m.now()
	}
	m.versions[v.CaseID] = append(m.versions[v.CaseID], *v)
	return nil
}

// FindVersions returns all versions oldest first.
func (m *CaseStore) FindVersions(_ context.Context, caseID string) ([]entities.NarrativeVersion, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]entities.NarrativeVersion(nil), m.versions[caseID]...), nil
}

// FindVersion returns one version, or nil.
func (m *CaseStore) FindVersion(_ context.Context, caseID string, version int) (*entities.NarrativeVersion, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, v := range m.versions[caseID] {
		if v.Version == version {
			return &v, nil
		}
	}
	return nil, nil
}

// FindLatestVersion returns the highest version, or nil.
func (m *CaseStore) FindLatestVersion(_ context.Context, caseID string) (*entities.NarrativeVersion, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	versions := m.versions[caseID]
	if len(versions) == 0 {
		return nil, nil
	}
	latest := versions[len(versions)-1]
	return &latest, nil
}

// LogAction appends an audit entry.
func (m *CaseStore) LogAction(_ context.Context, caseID, action string, details map[string]any) error {
	if m.Err != nil {
		return m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.audit = append(m.audit, entities.AuditEntry{
		ID:        int64(len(m.audit) + 1),
		CaseID:    caseID,
		Action:    action,
		Details:   maps.Clone(details),
		CreatedAt: m.now(),
	})
	return nil
}

// FindAuditLog returns a case's entries oldest first.
func (m *CaseStore) FindAuditLog(_ context.Context, caseID string) ([]entities.AuditEntry, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []entities.AuditEntry
	for _, e := range m.audit {
		if e.CaseID == caseID {
			result = append(result, e)
		}
	}
	return result, nil
}

// FindAuditLogByAction returns entries for an action newest first.
func (m *CaseStore) FindAuditLogByAction(_ context.Context, action string, limit int) ([]entities.AuditEntry, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []entities.AuditEntry
	for i := len(m.audit) - 1; i >= 0; i-- {
		if m.audit[i].Action != action {
			continue
		}
		result = append(result, m.audit[i])
		if limit > 0 && len(result) == limit {
			break
		}
	}
	return result, nil
}
