package entities

import "errors"

// Error kinds surfaced by the core and its boundaries.
var (
	// ErrInvalidInput is returned when a boundary receives a value of unsupported type.
	ErrInvalidInput = errors.New("invalid input")
	// ErrMissingColumn is returned when a required field is absent from tabular evidence.
	ErrMissingColumn = errors.New("missing column")
	// ErrParseFailure marks a value that could not be parsed. It is recorded, not returned,
	// by the rule engine.
	ErrParseFailure = errors.New("parse failure")
	// ErrUpstreamService is returned when the text-generation service fails after retries.
	ErrUpstreamService = errors.New("upstream service failure")

	ErrCaseNotFound    = errors.New("case not found")
	ErrVersionNotFound = errors.New("narrative version not found")
	ErrNotSignedOff    = errors.New("case is not signed off")
	ErrCaseSignedOff   = errors.New("case is already signed off")
	ErrNoNarrative     = errors.New("case has no narrative")
)
