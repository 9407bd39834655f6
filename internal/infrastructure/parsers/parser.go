// Package parsers reads case evidence records from JSON, CSV and XLSX files.
package parsers

import (
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/ersonp/sarcheck/internal/domain/entities"
)

// RawRecord is an evidence record parsed from an external source before validation.
type RawRecord struct {
	Record  entities.FactRecord
	LineNum int // Line (CSV), row (XLSX) or array position (JSON), 1-indexed
}

// Parser defines the interface for parsing evidence from various formats.
type Parser interface {
	Parse(r io.Reader) ([]RawRecord, error)
}

// KnownColumns are the evidence fields the fact extractor reads.
var KnownColumns = []string{
	entities.FieldName,
	entities.FieldCustomerID,
	entities.FieldReason,
	entities.FieldTransactionAmount,
	entities.FieldTimestamp,
	entities.FieldCountry,
	entities.FieldOriginLatitude,
	entities.FieldOriginLongitude,
	entities.FieldRiskScore,
}

var numericColumns = map[string]bool{
	entities.FieldTransactionAmount: true,
	entities.FieldOriginLatitude:    true,
	entities.FieldOriginLongitude:   true,
	entities.FieldRiskScore:         true,
}

// ForFormat returns the appropriate parser for the given format.
// Supported formats: "json", "csv", "xlsx".
func ForFormat(format string) Parser {
	switch strings.ToLower(format) {
	case "json":
		return &JSONParser{}
	case "csv":
		return &CSVParser{}
	case "xlsx":
		return &XLSXParser{}
	default:
		return nil
	}
}

// ForFile returns the appropriate parser based on file extension.
func ForFile(filename string) Parser {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(filename)), ".")
	if ext == "" {
		return nil
	}
	return ForFormat(ext)
}

// cellValue converts a tabular cell. Empty cells are absent fields; numeric
// columns become numbers when they parse and stay text otherwise.
func cellValue(column, cell string) (any, bool) {
	cell = strings.TrimSpace(cell)
	if cell == "" {
		return nil, false
	}
	if numericColumns[column] {
		if f, err := strconv.ParseFloat(strings.ReplaceAll(cell, ",", ""), 64); err == nil {
			return f, true
		}
	}
	return cell, true
}

// rowRecord builds a record from a header and a row of cells.
func rowRecord(header, row []string) entities.FactRecord {
	rec := make(entities.FactRecord, len(header))
	for i, col := range header {
		if col == "" || i >= len(row) {
			continue
		}
		if v, ok := cellValue(col, row[i]); ok {
			rec[col] = v
		}
	}
	return rec
}

// normalizeHeader lower-cases and trims column names.
func normalizeHeader(header []string) []string {
	out := make([]string, len(header))
	for i, col := range header {
		out[i] = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(col, "\ufeff")))
	}
	return out
}
