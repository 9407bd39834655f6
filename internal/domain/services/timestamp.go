package services

import (
	"fmt"
	"strings"
	"time"

	"github.com/ersonp/sarcheck/internal/domain/entities"
)

// timestampLayouts are tried in order; the first layout that parses wins.
var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	entities.TimestampLayout,
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04",
	"2006-01-02T15:04",
	"2006-01-02",
	"2006/01/02 15:04:05",
	"2006/01/02",
	"01/02/2006 15:04:05",
	"01/02/2006 15:04",
	"01/02/2006",
	"Jan 2, 2006",
	"January 2, 2006",
	"2 Jan 2006",
	"02 Jan 2006 15:04",
}

// ParseTimestamp parses a When value in any supported layout.
// Values without a zone are read as UTC.
func ParseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("%w: empty timestamp", entities.ErrParseFailure)
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: unrecognized timestamp %q", entities.ErrParseFailure, s)
}
