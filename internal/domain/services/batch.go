package services

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/ersonp/sarcheck/internal/domain/entities"
)

// BatchItem is one narrative to evaluate together with its evidence.
type BatchItem struct {
	ID        string                `json:"id"`
	Narrative string                `json:"narrative"`
	Records   []entities.FactRecord `json:"records"`
}

// BatchResult is the outcome for one BatchItem. Err is set when the item
// could not be evaluated, such as when the batch was cancelled.
type BatchResult struct {
	ID     string                     `json:"id"`
	Facts  entities.FiveWs            `json:"facts,omitempty"`
	Report *entities.ComplianceReport `json:"report,omitempty"`
	Err    error                      `json:"-"`
	Error  string                     `json:"error,omitempty"`
}

// BatchEvaluator runs the checklist over many narratives concurrently.
type BatchEvaluator struct {
	rules       *RuleSet
	concurrency int
}

// NewBatchEvaluator creates a batch evaluator. A nil rules uses
// DefaultRuleSet; a non-positive concurrency uses GOMAXPROCS.
func NewBatchEvaluator(rules *RuleSet, concurrency int) *BatchEvaluator {
	if rules == nil {
		rules = DefaultRuleSet()
	}
	if concurrency <= 0 {
		concurrency = runtime.GOMAXPROCS(0)
	}
	return &BatchEvaluator{
		rules:       rules,
		concurrency: concurrency,
	}
}

// Evaluate returns one result per item, in input order. A failing item does
// not abort the batch.
func (e *BatchEvaluator) Evaluate(ctx context.Context, items []BatchItem) []BatchResult {
	results := make([]BatchResult, len(items))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.concurrency)

	for i, item := range items {
		g.Go(func() error {
			results[i] = e.evaluate(gctx, item)
			return nil
		})
	}
	_ = g.Wait()

	return results
}

func (e *BatchEvaluator) evaluate(ctx context.Context, item BatchItem) BatchResult {
	result := BatchResult{ID: item.ID}
	if err := ctx.Err(); err != nil {
		result.Err = err
		result.Error = err.Error()
		return result
	}

	facts := Extract(item.Records)
	result.Facts = facts
	result.Report = e.rules.Evaluate(item.Narrative, facts)
	return result
}
