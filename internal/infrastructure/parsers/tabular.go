package parsers

import (
	"fmt"
	"slices"

	"github.com/ersonp/sarcheck/internal/domain/entities"
)

// checkHeader validates a tabular header. Every required column must be
// present, and at least one column must be a known evidence field.
func checkHeader(header, required []string) error {
	for _, col := range required {
		if !slices.Contains(header, col) {
			return fmt.Errorf("%w: %s", entities.ErrMissingColumn, col)
		}
	}
	for _, col := range header {
		if slices.Contains(KnownColumns, col) {
			return nil
		}
	}
	return fmt.Errorf("%w: none of the evidence columns (%v) are present", entities.ErrMissingColumn, KnownColumns)
}

// isBlankRow reports whether every cell is empty.
func isBlankRow(row []string) bool {
	for _, cell := range row {
		if _, ok := cellValue("", cell); ok {
			return false
		}
	}
	return true
}
