package parsers

import (
	"encoding/csv"
	"fmt"
	"io"
)

// CSVParser parses evidence records from CSV with a header row.
type CSVParser struct {
	// Required lists columns that must appear in the header.
	Required []string
}

// Parse reads CSV from the reader and returns parsed records.
// Blank rows are skipped.
func (p *CSVParser) Parse(r io.Reader) ([]RawRecord, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := p.readHeader(reader)
	if err != nil {
		return nil, err
	}

	return p.readRecords(reader, header)
}

// readHeader reads and validates the CSV header row.
func (p *CSVParser) readHeader(reader *csv.Reader) ([]string, error) {
	row, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("reading CSV header: %w", err)
	}

	header := normalizeHeader(row)
	if err := checkHeader(header, p.Required); err != nil {
		return nil, err
	}
	return header, nil
}

// readRecords reads all data rows and converts them to RawRecords.
func (p *CSVParser) readRecords(reader *csv.Reader, header []string) ([]RawRecord, error) {
	var records []RawRecord

	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading CSV: %w", err)
		}
		if isBlankRow(row) {
			continue
		}

		// Empty lines are skipped by the reader, so ask it for the real line.
		lineNum, _ := reader.FieldPos(0)
		records = append(records, RawRecord{Record: rowRecord(header, row), LineNum: lineNum})
	}

	return records, nil
}
