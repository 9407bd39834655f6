package parsers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/ersonp/sarcheck/internal/domain/entities"
)

// JSONParser parses evidence from a JSON object or an array of objects.
type JSONParser struct{}

// Parse reads JSON from the reader and returns parsed records.
func (p *JSONParser) Parse(r io.Reader) ([]RawRecord, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading JSON: %w", err)
	}

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		var rec entities.FactRecord
		if err := json.Unmarshal(trimmed, &rec); err != nil {
			return nil, fmt.Errorf("parsing JSON: %w", err)
		}
		return []RawRecord{{Record: rec, LineNum: 1}}, nil
	}

	var items []json.RawMessage
	if err := json.Unmarshal(trimmed, &items); err != nil {
		return nil, fmt.Errorf("parsing JSON: %w", err)
	}

	records := make([]RawRecord, 0, len(items))
	for i, item := range items {
		var rec entities.FactRecord
		if err := json.Unmarshal(item, &rec); err != nil {
			return nil, fmt.Errorf("%w: record %d is not an object", entities.ErrInvalidInput, i+1)
		}
		// Set line numbers (array index + 1, 1-indexed)
		records = append(records, RawRecord{Record: rec, LineNum: i + 1})
	}

	return records, nil
}
