package handlers

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ersonp/sarcheck/internal/domain/entities"
	"github.com/ersonp/sarcheck/internal/domain/services"
	"github.com/ersonp/sarcheck/internal/infrastructure/parsers"
)

// IntakeHandler handles case creation and evidence import.
type IntakeHandler struct {
	cases   *services.CaseService
	imports *services.ImportService
}

// NewIntakeHandler creates a new intake handler.
func NewIntakeHandler(cases *services.CaseService) *IntakeHandler {
	return &IntakeHandler{
		cases:   cases,
		imports: services.NewImportService(cases),
	}
}

// ImportOptions controls evidence import behavior.
type ImportOptions struct {
	Format         string // "json", "csv", "xlsx" or "auto"
	DryRun         bool   // Validate without saving
	SkipDuplicates bool   // Skip records already on the case
}

// ImportResult contains the result of an import operation.
type ImportResult struct {
	Source   string
	Imported int
	Skipped  int
	Errors   []services.ImportError
}

// CreateCase opens a new case.
func (h *IntakeHandler) CreateCase(ctx context.Context, name string) (*entities.Case, error) {
	return h.cases.CreateCase(ctx, name)
}

// ListCases lists cases, newest first.
func (h *IntakeHandler) ListCases(ctx context.Context, limit int) ([]entities.Case, error) {
	return h.cases.ListCases(ctx, limit)
}

// ImportEvidence parses an evidence file and adds its valid records to a case.
func (h *IntakeHandler) ImportEvidence(ctx context.Context, caseID, filePath string, opts ImportOptions) (*ImportResult, error) {
	// Get parser
	var parser parsers.Parser
	if opts.Format == "" || opts.Format == "auto" {
		parser = parsers.ForFile(filePath)
	} else {
		parser = parsers.ForFormat(opts.Format)
	}

	if parser == nil {
		return nil, fmt.Errorf("%w: unsupported format for file: %s", entities.ErrInvalidInput, filePath)
	}

	// Open file
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("opening file: %w", err)
	}
	defer file.Close()

	// Parse records
	raw, err := parser.Parse(file)
	if err != nil {
		return nil, fmt.Errorf("parsing file: %w", err)
	}

	source := filepath.Base(filePath)
	if len(raw) == 0 {
		return &ImportResult{Source: source}, nil
	}

	serviceResult, err := h.imports.Import(ctx, caseID, raw, services.ImportOptions{
		DryRun:         opts.DryRun,
		SkipDuplicates: opts.SkipDuplicates,
		Source:         source,
	})
	if err != nil {
		return nil, err
	}

	return &ImportResult{
		Source:   source,
		Imported: serviceResult.Imported,
		Skipped:  serviceResult.Skipped,
		Errors:   serviceResult.Errors,
	}, nil
}
