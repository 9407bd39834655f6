package entities

import "strings"

// SegmentKind classifies a span of a narrative diff.
type SegmentKind string

const (
	SegmentUnchanged SegmentKind = "unchanged"
	SegmentInserted  SegmentKind = "inserted"
	SegmentDeleted   SegmentKind = "deleted"
	SegmentEdited    SegmentKind = "edited"
)

// NoChangesMessage is shown when both narrative versions are identical.
const NoChangesMessage = "No changes detected. The analyst's edited narrative is identical to the AI draft."

// InlineSpan is a token run inside an edited paragraph.
// Kind is never SegmentEdited.
type InlineSpan struct {
	Kind SegmentKind `json:"kind"`
	Text string      `json:"text"`
}

// DiffSegment is one classified span of a narrative diff.
// Unchanged, inserted and deleted segments carry Text; edited segments
// carry both sides plus the token-level spans between them.
type DiffSegment struct {
	Kind       SegmentKind  `json:"kind"`
	Text       string       `json:"text,omitempty"`
	Original   string       `json:"original,omitempty"`
	Revised    string       `json:"revised,omitempty"`
	Spans      []InlineSpan `json:"spans,omitempty"`
	Paragraphs int          `json:"paragraphs"`
}

// Label returns the audit label for a block segment. Deleted or inserted
// whitespace between paragraphs has no label.
func (s DiffSegment) Label() string {
	if s.Paragraphs == 0 && s.Kind != SegmentEdited {
		return ""
	}
	unit := "paragraph"
	if s.Paragraphs > 1 {
		unit = "block"
	}
	switch s.Kind {
	case SegmentDeleted:
		return "Deleted " + unit
	case SegmentInserted:
		return "Inserted " + unit
	case SegmentEdited:
		return "Edited paragraph"
	default:
		return ""
	}
}

// DiffResult is the annotated comparison of two narrative versions.
type DiffResult struct {
	Identical bool          `json:"identical"`
	Segments  []DiffSegment `json:"segments"`
}

// OriginalText rebuilds the original narrative from the segments.
func (d DiffResult) OriginalText() string {
	var b strings.Builder
	for _, s := range d.Segments {
		switch s.Kind {
		case SegmentUnchanged, SegmentDeleted:
			b.WriteString(s.Text)
		case SegmentEdited:
			b.WriteString(s.Original)
		}
	}
	return b.String()
}

// RevisedText rebuilds the revised narrative from the segments.
func (d DiffResult) RevisedText() string {
	var b strings.Builder
	for _, s := range d.Segments {
		switch s.Kind {
		case SegmentUnchanged, SegmentInserted:
			b.WriteString(s.Text)
		case SegmentEdited:
			b.WriteString(s.Revised)
		}
	}
	return b.String()
}

// Stats counts segments by kind.
func (d DiffResult) Stats() map[SegmentKind]int {
	stats := make(map[SegmentKind]int, 4)
	for _, s := range d.Segments {
		stats[s.Kind]++
	}
	return stats
}
