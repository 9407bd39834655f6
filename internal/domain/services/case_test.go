package services

import (
	"errors"
	"sort"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ersonp/sarcheck/internal/domain/entities"
	"github.com/ersonp/sarcheck/internal/domain/mocks"
)

func newTestCaseService(t *testing.T) (*CaseService, *mocks.CaseStore) {
	t.Helper()
	store := mocks.NewCaseStore()
	return NewCaseService(store, nil), store
}

func auditActions(t *testing.T, svc *CaseService, caseID string) []string {
	t.Helper()
	trail, err := svc.AuditTrail(t.Context(), caseID)
	require.NoError(t, err)
	actions := make([]string, 0, len(trail))
	for _, e := range trail {
		actions = append(actions, e.Action)
	}
	return actions
}

func TestCaseService_CreateCase(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantName string
		wantErr  error
	}{
		{name: "trims name", input: "  Case 42  ", wantName: "Case 42"},
		{name: "empty name", input: "   ", wantErr: entities.ErrInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _ := newTestCaseService(t)

			c, err := svc.CreateCase(t.Context(), tt.input)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.NotEmpty(t, c.ID)
			assert.Equal(t, tt.wantName, c.Name)
			assert.Equal(t, entities.CaseOpen, c.Status)
			assert.Equal(t, []string{entities.ActionCaseCreated}, auditActions(t, svc, c.ID))
		})
	}
}

func TestCaseService_GetCase_NotFound(t *testing.T) {
	svc, _ := newTestCaseService(t)

	_, err := svc.GetCase(t.Context(), "missing")

	assert.ErrorIs(t, err, entities.ErrCaseNotFound)
}

func TestCaseService_ListCases(t *testing.T) {
	svc, _ := newTestCaseService(t)
	for _, name := range []string{"a", "b", "c"} {
		_, err := svc.CreateCase(t.Context(), name)
		require.NoError(t, err)
	}

	all, err := svc.ListCases(t.Context(), 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	limited, err := svc.ListCases(t.Context(), 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}

func TestCaseService_FullWorkflow(t *testing.T) {
	svc, _ := newTestCaseService(t)
	ctx := t.Context()

	c, err := svc.CreateCase(ctx, "Structuring review")
	require.NoError(t, err)

	added, err := svc.AddEvidence(ctx, c.ID, "alerts.csv", fullRecord())
	require.NoError(t, err)
	require.Len(t, added, 1)

	facts, err := svc.Facts(ctx, c.ID)
	require.NoError(t, err)
	assert.Empty(t, facts.Missing())

	draft, err := svc.SaveNarrative(ctx, c.ID, entities.VersionAIDraft, "Draft narrative.", "")
	require.NoError(t, err)
	assert.Equal(t, 1, draft.Version)

	edit, err := svc.SaveNarrative(ctx, c.ID, entities.VersionAnalystEdit, cleanNarrative, "analyst-1")
	require.NoError(t, err)
	assert.Equal(t, 2, edit.Version)

	current, err := svc.CurrentNarrative(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, cleanNarrative, current.Text)

	report, err := svc.Check(ctx, c.ID)
	require.NoError(t, err)
	assert.True(t, report.Overall)

	diff, err := svc.Compare(ctx, c.ID, 0, 0)
	require.NoError(t, err)
	assert.False(t, diff.Identical)
	assert.Equal(t, "Draft narrative.", diff.OriginalText())
	assert.Equal(t, cleanNarrative, diff.RevisedText())

	signed, err := svc.SignOff(ctx, c.ID, "analyst-1")
	require.NoError(t, err)
	assert.True(t, signed.IsSignedOff())
	assert.Equal(t, "analyst-1", signed.SignedOffBy)
	require.NotNil(t, signed.SignedOffAt)

	bundle, err := svc.Export(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, c.ID, bundle.CaseID)
	assert.Equal(t, cleanNarrative, bundle.Narrative)
	assert.Equal(t, NarrativeSHA256(cleanNarrative), bundle.NarrativeSHA256)
	assert.Len(t, bundle.Facts, 1)
	assert.True(t, bundle.ChecklistReport.Overall)

	assert.Equal(t, []string{
		entities.ActionCaseCreated,
		entities.ActionEvidenceAdded,
		entities.ActionNarrativeSaved,
		entities.ActionNarrativeSaved,
		entities.ActionChecklistRun,
		entities.ActionDiffViewed,
		entities.ActionSignedOff,
		entities.ActionExported,
	}, auditActions(t, svc, c.ID))

	trail, err := svc.AuditTrail(ctx, c.ID)
	require.NoError(t, err)
	signOff := trail[6]
	assert.Equal(t, "analyst-1", signOff.Details["analyst"])
	assert.Equal(t, NarrativeSHA256(cleanNarrative), signOff.Details["narrative_sha256"])
	checklist := trail[4]
	assert.Equal(t, true, checklist.Details["overall"])
}

func TestCaseService_SignedOffCaseIsFrozen(t *testing.T) {
	svc, _ := newTestCaseService(t)
	ctx := t.Context()
	c, err := svc.CreateCase(ctx, "frozen")
	require.NoError(t, err)
	_, err = svc.SaveNarrative(ctx, c.ID, entities.VersionFinal, cleanNarrative, "analyst-1")
	require.NoError(t, err)
	_, err = svc.SignOff(ctx, c.ID, "analyst-1")
	require.NoError(t, err)

	_, err = svc.AddEvidence(ctx, c.ID, "", fullRecord())
	assert.ErrorIs(t, err, entities.ErrCaseSignedOff)

	_, err = svc.SaveNarrative(ctx, c.ID, entities.VersionAnalystEdit, "late edit", "analyst-2")
	assert.ErrorIs(t, err, entities.ErrCaseSignedOff)

	_, err = svc.SignOff(ctx, c.ID, "analyst-2")
	assert.ErrorIs(t, err, entities.ErrCaseSignedOff)
}

func TestCaseService_Errors(t *testing.T) {
	svc, _ := newTestCaseService(t)
	ctx := t.Context()
	c, err := svc.CreateCase(ctx, "errors")
	require.NoError(t, err)

	_, err = svc.CurrentNarrative(ctx, c.ID)
	assert.ErrorIs(t, err, entities.ErrNoNarrative)

	_, err = svc.Check(ctx, c.ID)
	assert.ErrorIs(t, err, entities.ErrNoNarrative)

	_, err = svc.SignOff(ctx, c.ID, "analyst-1")
	assert.ErrorIs(t, err, entities.ErrNoNarrative)

	_, err = svc.SignOff(ctx, c.ID, " ")
	assert.ErrorIs(t, err, entities.ErrInvalidInput)

	_, err = svc.Export(ctx, c.ID)
	assert.ErrorIs(t, err, entities.ErrNotSignedOff)

	_, err = svc.SaveNarrative(ctx, c.ID, entities.VersionKind("rewrite"), "text", "")
	assert.ErrorIs(t, err, entities.ErrInvalidInput)

	_, err = svc.AddEvidence(ctx, c.ID, "", "not a record")
	assert.ErrorIs(t, err, entities.ErrInvalidInput)

	_, err = svc.SaveNarrative(ctx, c.ID, entities.VersionAIDraft, "v1", "")
	require.NoError(t, err)
	_, err = svc.Compare(ctx, c.ID, 1, 7)
	assert.ErrorIs(t, err, entities.ErrVersionNotFound)
}

func TestCaseService_CompareDefaults(t *testing.T) {
	tests := []struct {
		name         string
		kinds        []entities.VersionKind
		from, to     int
		wantOriginal string
		wantRevised  string
	}{
		{
			name:         "latest AI version against current",
			kinds:        []entities.VersionKind{entities.VersionAIDraft, entities.VersionAnalystEdit, entities.VersionAIFix, entities.VersionAnalystEdit},
			wantOriginal: "v3",
			wantRevised:  "v4",
		},
		{
			name:         "first version when none is AI-authored",
			kinds:        []entities.VersionKind{entities.VersionAnalystEdit, entities.VersionAnalystEdit},
			wantOriginal: "v1",
			wantRevised:  "v2",
		},
		{
			name:         "explicit versions",
			kinds:        []entities.VersionKind{entities.VersionAIDraft, entities.VersionAnalystEdit, entities.VersionFinal},
			from:         2,
			to:           1,
			wantOriginal: "v2",
			wantRevised:  "v1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _ := newTestCaseService(t)
			c, err := svc.CreateCase(t.Context(), "compare")
			require.NoError(t, err)
			for i, kind := range tt.kinds {
				_, err := svc.SaveNarrative(t.Context(), c.ID, kind, "v"+string(rune('1'+i)), "")
				require.NoError(t, err)
			}

			diff, err := svc.Compare(t.Context(), c.ID, tt.from, tt.to)

			require.NoError(t, err)
			assert.Equal(t, tt.wantOriginal, diff.OriginalText())
			assert.Equal(t, tt.wantRevised, diff.RevisedText())
		})
	}
}

func TestCaseService_RecordAIRequest(t *testing.T) {
	svc, store := newTestCaseService(t)
	c, err := svc.CreateCase(t.Context(), "ai")
	require.NoError(t, err)

	require.NoError(t, svc.RecordAIRequest(t.Context(), c.ID, "draft", "openai/gpt-4o-mini", nil))
	require.NoError(t, svc.RecordAIRequest(t.Context(), c.ID, "fix", "openai/gpt-4o-mini", errors.New("timeout")))

	entries, err := store.FindAuditLogByAction(t.Context(), entities.ActionAIRequested, 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "fix", entries[0].Details["purpose"])
	assert.Equal(t, false, entries[0].Details["success"])
	assert.Equal(t, "timeout", entries[0].Details["error"])
	assert.Equal(t, true, entries[1].Details["success"])

	recent, err := svc.RecentActivity(t.Context(), entities.ActionAIRequested, 1)
	require.NoError(t, err)
	assert.Len(t, recent, 1)
}

func TestCaseService_StoreFailure(t *testing.T) {
	store := mocks.NewCaseStore()
	store.Err = errors.New("disk full")
	svc := NewCaseService(store, nil)

	_, err := svc.CreateCase(t.Context(), "x")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
}

func TestCaseService_SaveNarrativeConcurrent(t *testing.T) {
	svc, _ := newTestCaseService(t)
	c, err := svc.CreateCase(t.Context(), "Concurrent edits")
	require.NoError(t, err)

	const writers = 8
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		numbers []int
	)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := svc.SaveNarrative(t.Context(), c.ID, entities.VersionAnalystEdit, "Edit.", "analyst-1")
			if !assert.NoError(t, err) {
				return
			}
			mu.Lock()
			numbers = append(numbers, v.Version)
			mu.Unlock()
		}()
	}
	wg.Wait()

	sort.Ints(numbers)
	assert.Equal(t, []int{1, 2, 3, 4, 5, 6, 7, 8}, numbers)
}
