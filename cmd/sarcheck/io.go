package main

import (
	"fmt"
	"io"
	"os"

	"github.com/ersonp/sarcheck/internal/domain/entities"
	"github.com/ersonp/sarcheck/internal/infrastructure/parsers"
)

// readNarrative reads a narrative file, or stdin for "-".
func readNarrative(path string) (string, error) {
	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return "", fmt.Errorf("reading narrative: %w", err)
	}
	return string(data), nil
}

// loadRecords parses an evidence file by its extension. An empty path
// yields no records.
func loadRecords(path string) ([]entities.FactRecord, error) {
	if path == "" {
		return nil, nil
	}

	parser := parsers.ForFile(path)
	if parser == nil {
		return nil, fmt.Errorf("%w: unsupported format for file: %s", entities.ErrInvalidInput, path)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening records: %w", err)
	}
	defer f.Close()

	raw, err := parser.Parse(f)
	if err != nil {
		return nil, fmt.Errorf("parsing records: %w", err)
	}

	records := make([]entities.FactRecord, 0, len(raw))
	for _, r := range raw {
		records = append(records, r.Record)
	}
	return records, nil
}

// writeOutput runs write against the named file, or stdout when path is empty.
func writeOutput(path string, write func(io.Writer) error) (err error) {
	if path == "" {
		return write(os.Stdout)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return fmt.Errorf("creating file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("closing file: %w", cerr)
		}
	}()

	return write(f)
}

// checkFormat rejects a format outside valid.
func checkFormat(format string, valid []string) error {
	for _, v := range valid {
		if v == format {
			return nil
		}
	}
	return fmt.Errorf("invalid format %q, valid formats: %v", format, valid)
}
