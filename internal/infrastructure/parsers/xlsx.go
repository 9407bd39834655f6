package parsers

import (
	"fmt"
	"io"

	"github.com/tealeg/xlsx/v2"
)

// XLSXParser parses evidence records from a workbook sheet with a header row.
type XLSXParser struct {
	SheetName string // if set, overrides the first sheet
	Required  []string
}

// Parse reads a workbook from the reader and returns parsed records.
func (p *XLSXParser) Parse(r io.Reader) ([]RawRecord, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading workbook: %w", err)
	}

	f, err := xlsx.OpenBinary(data)
	if err != nil {
		return nil, fmt.Errorf("xlsx: open workbook: %w", err)
	}

	sheet, err := p.sheet(f)
	if err != nil {
		return nil, err
	}
	if len(sheet.Rows) == 0 {
		return nil, fmt.Errorf("xlsx: sheet %q is empty", sheet.Name)
	}

	header := normalizeHeader(rowToStrings(sheet.Rows[0]))
	if err := checkHeader(header, p.Required); err != nil {
		return nil, err
	}

	var records []RawRecord
	for i, row := range sheet.Rows[1:] {
		cells := rowToStrings(row)
		if isBlankRow(cells) {
			continue
		}
		records = append(records, RawRecord{Record: rowRecord(header, cells), LineNum: i + 2})
	}
	return records, nil
}

func (p *XLSXParser) sheet(f *xlsx.File) (*xlsx.Sheet, error) {
	if p.SheetName != "" {
		sheet, ok := f.Sheet[p.SheetName]
		if !ok {
			return nil, fmt.Errorf("xlsx: sheet %q not found", p.SheetName)
		}
		return sheet, nil
	}
	if len(f.Sheets) == 0 {
		return nil, fmt.Errorf("xlsx: workbook has no sheets")
	}
	return f.Sheets[0], nil
}

func rowToStrings(row *xlsx.Row) []string {
	cells := make([]string, len(row.Cells))
	for j, cell := range row.Cells {
		cells[j] = cell.String()
	}
	return cells
}
