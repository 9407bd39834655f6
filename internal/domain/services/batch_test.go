package services

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/ersonp/sarcheck/internal/domain/entities"
)

func TestBatchEvaluator_PreservesOrder(t *testing.T) {
	defer goleak.VerifyNone(t)

	items := make([]BatchItem, 20)
	for i := range items {
		narrative := "Short."
		if i%2 == 0 {
			narrative = cleanNarrative
		}
		items[i] = BatchItem{
			ID:        fmt.Sprintf("item-%02d", i),
			Narrative: narrative,
			Records:   []entities.FactRecord{fullRecord()},
		}
	}

	results := NewBatchEvaluator(nil, 4).Evaluate(t.Context(), items)

	require.Len(t, results, len(items))
	for i, r := range results {
		assert.Equal(t, items[i].ID, r.ID)
		require.NoError(t, r.Err)
		require.NotNil(t, r.Report)
		assert.Equal(t, i%2 == 0, r.Report.Overall, r.ID)
		assert.Equal(t, RunChecklist(items[i].Narrative, Extract(items[i].Records)), r.Report)
	}
}

func TestBatchEvaluator_Empty(t *testing.T) {
	defer goleak.VerifyNone(t)

	results := NewBatchEvaluator(nil, 0).Evaluate(t.Context(), nil)

	assert.Empty(t, results)
}

func TestBatchEvaluator_Cancelled(t *testing.T) {
	defer goleak.VerifyNone(t)

	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	results := NewBatchEvaluator(nil, 2).Evaluate(ctx, []BatchItem{{ID: "a"}, {ID: "b"}})

	require.Len(t, results, 2)
	for _, r := range results {
		assert.ErrorIs(t, r.Err, context.Canceled)
		assert.Nil(t, r.Report)
		assert.NotEmpty(t, r.Error)
	}
}

func TestBatchEvaluator_UsesRuleSet(t *testing.T) {
	rules, err := NewRuleSet(1, 10, 1, nil)
	require.NoError(t, err)

	results := NewBatchEvaluator(rules, 1).Evaluate(t.Context(), []BatchItem{
		{ID: "short", Narrative: "Brief.", Records: []entities.FactRecord{fullRecord()}},
	})

	require.Len(t, results, 1)
	assert.True(t, mustItem(t, results[0].Report, entities.CheckLengthBounds).Passed)
}
