package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ersonp/sarcheck/internal/domain/entities"
	"github.com/ersonp/sarcheck/internal/infrastructure/parsers"
)

// ImportOptions controls import behavior.
type ImportOptions struct {
	DryRun         bool   // Validate without saving
	SkipDuplicates bool   // Skip records identical to evidence already on the case
	Source         string // Recorded on every stored evidence item
}

// ImportError represents an error for a specific record during import.
type ImportError struct {
	Line    int    // Line number (1-indexed, 0 if unknown)
	Field   string // Which field has the error
	Value   string // The invalid value
	Message string // Human-readable error message
}

func (e ImportError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s", e.Line, e.Message)
	}
	return e.Message
}

// ImportResult contains the result of an import operation.
type ImportResult struct {
	Imported int
	Skipped  int
	Errors   []ImportError
}

// numericField bounds a numeric evidence field. A nil bounds only
// requires the value to be a number.
type numericField struct {
	name   string
	bounds *[2]float64
}

var numericFields = []numericField{
	{name: entities.FieldTransactionAmount},
	{name: entities.FieldRiskScore, bounds: &[2]float64{0, 100}},
	{name: entities.FieldOriginLatitude, bounds: &[2]float64{-90, 90}},
	{name: entities.FieldOriginLongitude, bounds: &[2]float64{-180, 180}},
}

// ImportService validates parsed evidence and adds it to a case.
type ImportService struct {
	cases *CaseService
}

// NewImportService creates a new import service.
func NewImportService(cases *CaseService) *ImportService {
	return &ImportService{cases: cases}
}

// Import validates raw records and appends the valid ones to the case.
// Invalid records are reported in the result and never stored.
func (s *ImportService) Import(ctx context.Context, caseID string, raw []parsers.RawRecord, opts ImportOptions) (*ImportResult, error) {
	result := &ImportResult{}

	// Validate all records first
	valid, validationErrors := validateRecords(raw)
	result.Errors = validationErrors

	if len(valid) == 0 {
		return result, nil
	}

	if opts.SkipDuplicates {
		var skipped int
		var err error
		valid, skipped, err = s.filterExisting(ctx, caseID, valid)
		if err != nil {
			return nil, err
		}
		result.Skipped = skipped
	}

	// Handle dry run
	if opts.DryRun {
		if _, err := s.cases.openCase(ctx, caseID); err != nil {
			return nil, err
		}
		result.Imported = len(valid)
		return result, nil
	}

	if len(valid) == 0 {
		return result, nil
	}

	added, err := s.cases.AddEvidence(ctx, caseID, opts.Source, valid)
	if err != nil {
		return nil, fmt.Errorf("adding evidence: %w", err)
	}
	result.Imported = len(added)

	return result, nil
}

// validateRecords validates raw records and returns valid ones with any errors.
func validateRecords(raw []parsers.RawRecord) ([]entities.FactRecord, []ImportError) {
	valid := make([]entities.FactRecord, 0, len(raw))
	var errors []ImportError

	for i := range raw {
		lineNum := raw[i].LineNum
		if lineNum == 0 {
			lineNum = i + 1
		}

		if err := validateRecord(raw[i].Record, lineNum); err != nil {
			errors = append(errors, *err)
			continue
		}

		valid = append(valid, raw[i].Record)
	}

	return valid, errors
}

// validateRecord validates a single record and returns an error if invalid.
// Absent fields are fine; present numeric fields must parse and be in range.
func validateRecord(rec entities.FactRecord, lineNum int) *ImportError {
	if len(rec) == 0 {
		return &ImportError{Line: lineNum, Message: "record has no fields"}
	}

	for _, nf := range numericFields {
		field, bounds := nf.name, nf.bounds
		v, present := rec[field]
		if !present || v == nil {
			continue
		}
		n, ok := numberField(rec, field)
		if !ok {
			return &ImportError{
				Line:    lineNum,
				Field:   field,
				Value:   valueToString(v),
				Message: fmt.Sprintf("%s must be a number", field),
			}
		}
		if bounds != nil && (n < bounds[0] || n > bounds[1]) {
			return &ImportError{
				Line:    lineNum,
				Field:   field,
				Value:   valueToString(v),
				Message: fmt.Sprintf("%s must be between %g and %g", field, bounds[0], bounds[1]),
			}
		}
	}

	return nil
}

// filterExisting drops records identical to evidence already stored on the
// case, or repeated within the batch.
func (s *ImportService) filterExisting(ctx context.Context, caseID string, records []entities.FactRecord) ([]entities.FactRecord, int, error) {
	existing, err := s.cases.Records(ctx, caseID)
	if err != nil {
		return nil, 0, err
	}

	seen := make(map[string]struct{}, len(existing)+len(records))
	for _, rec := range existing {
		seen[recordKey(rec)] = struct{}{}
	}

	toSave := make([]entities.FactRecord, 0, len(records))
	var skipped int
	for _, rec := range records {
		key := recordKey(rec)
		if _, dup := seen[key]; dup {
			skipped++
			continue
		}
		seen[key] = struct{}{}
		toSave = append(toSave, rec)
	}

	return toSave, skipped, nil
}

// recordKey is a canonical form of a record. json.Marshal sorts map keys.
func recordKey(rec entities.FactRecord) string {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Sprintf("%v", rec)
	}
	return string(data)
}
