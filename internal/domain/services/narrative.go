package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ersonp/sarcheck/internal/domain/entities"
	"github.com/ersonp/sarcheck/internal/domain/ports"
	"github.com/ersonp/sarcheck/internal/resilience"
)

// DefaultGenerationTimeout bounds a single text-generation attempt.
const DefaultGenerationTimeout = 10 * time.Second

var errEmptyCompletion = errors.New("empty completion")

// NarrativeService drafts and repairs narratives through a text generator.
// Every call runs under a per-attempt timeout and an explicit retry policy.
type NarrativeService struct {
	gen     ports.TextGenerator
	retry   resilience.RetryConfig
	timeout time.Duration
	limiter *resilience.Limiter
}

// NarrativeOption configures a NarrativeService.
type NarrativeOption func(*NarrativeService)

// WithRetryConfig sets the retry policy.
func WithRetryConfig(cfg resilience.RetryConfig) NarrativeOption {
	return func(s *NarrativeService) {
		s.retry = cfg
	}
}

// WithTimeout sets the per-attempt timeout.
func WithTimeout(d time.Duration) NarrativeOption {
	return func(s *NarrativeService) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// WithLimiter paces generator calls.
func WithLimiter(l *resilience.Limiter) NarrativeOption {
	return func(s *NarrativeService) {
		s.limiter = l
	}
}

// NewNarrativeService creates a new narrative service.
func NewNarrativeService(gen ports.TextGenerator, opts ...NarrativeOption) *NarrativeService {
	s := &NarrativeService{
		gen:     gen,
		retry:   resilience.DefaultRetryConfig(),
		timeout: DefaultGenerationTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.retry.OnRetry == nil {
		s.retry.OnRetry = resilience.RetryLogger(gen.Name(), "generate")
	}
	return s
}

// Generator returns the underlying text generator.
func (s *NarrativeService) Generator() ports.TextGenerator {
	return s.gen
}

// Draft asks the generator for a first narrative from case records.
// The result always carries the AI disclaimer label.
func (s *NarrativeService) Draft(ctx context.Context, records []entities.FactRecord) (string, error) {
	prompt := BuildDraftPrompt(RecordsToCaseData(records), Extract(records))
	text, err := s.Generate(ctx, prompt)
	if err != nil {
		return "", err
	}
	return LabelAIDraft(text), nil
}

// Remediate asks the generator to fix the failed items of report.
func (s *NarrativeService) Remediate(ctx context.Context, report *entities.ComplianceReport, narrative string) (string, error) {
	text, err := s.Generate(ctx, BuildRemediationPrompt(report, narrative))
	if err != nil {
		return "", err
	}
	return LabelAIDraft(text), nil
}

// Generate sends a raw prompt. Failures that survive the retry policy are
// wrapped in entities.ErrUpstreamService.
func (s *NarrativeService) Generate(ctx context.Context, prompt string) (string, error) {
	text, err := resilience.DoVal(ctx, s.retry, func(ctx context.Context) (string, error) {
		if err := s.limiter.Wait(ctx); err != nil {
			return "", err
		}

		callCtx, cancel := context.WithTimeout(ctx, s.timeout)
		defer cancel()

		out, err := s.gen.Generate(callCtx, prompt)
		if err != nil {
			return "", err
		}
		if strings.TrimSpace(out) == "" {
			return "", errEmptyCompletion
		}
		return out, nil
	})
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", entities.ErrUpstreamService, s.gen.Name(), err)
	}
	return text, nil
}
