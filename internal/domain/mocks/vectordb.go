package mocks

import (
	"context"

	"github.com/ersonp/sarcheck/internal/domain/entities"
)

// PrecedentIndex is a mock implementation of ports.PrecedentIndex.
type PrecedentIndex struct {
	// Results are returned by Search, truncated to the limit.
	Results []entities.Precedent
	Err     error

	// Call tracking
	Saved           []entities.Precedent
	SearchCallCount int
	LastSearchLimit int
	DeletedCases    []string
}

// Save records the precedent.
func (m *PrecedentIndex) Save(_ context.Context, precedent entities.Precedent) error {
	if m.Err != nil {
		return m.Err
	}
	m.Saved = append(m.Saved, precedent)
	return nil
}

// Search returns the configured results.
func (m *PrecedentIndex) Search(_ context.Context, _ []float32, limit int) ([]entities.Precedent, error) {
	m.SearchCallCount++
	m.LastSearchLimit = limit
	if m.Err != nil {
		return nil, m.Err
	}
	if limit > 0 && len(m.Results) > limit {
		return m.Results[:limit], nil
	}
	return m.Results, nil
}

// DeleteByCase records the case and drops its saved precedents.
func (m *PrecedentIndex) DeleteByCase(_ context.Context, caseID string) error {
	if m.Err != nil {
		return m.Err
	}
	m.DeletedCases = append(m.DeletedCases, caseID)
	kept := m.Saved[:0]
	for _, p := range m.Saved {
		if p.CaseID != caseID {
			kept = append(kept, p)
		}
	}
	m.Saved = kept
	return nil
}
