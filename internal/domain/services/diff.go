package services

import (
	"regexp"
	"strings"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/ersonp/sarcheck/internal/domain/entities"
)

// EditSimilarityThreshold is the minimum character similarity for a replaced
// paragraph to be shown as an inline edit instead of delete + insert.
const EditSimilarityThreshold = 0.60

var (
	// paragraphSep matches a run of one or more blank lines.
	paragraphSep = regexp.MustCompile(`(?:\r\n|\r|\n)\s*(?:\r\n|\r|\n)`)
	// tokenPattern splits text into alternating whitespace and word runs.
	tokenPattern = regexp.MustCompile(`\s+|\S+`)
	lineEndings  = strings.NewReplacer("\r\n", "\n", "\r", "\n")
)

// paragraph is one alignment element. lead holds the blank-line run in
// front of it, so separators ride along with their paragraph and never
// take part in the alignment themselves. key is what paragraphs are
// compared by.
type paragraph struct {
	lead string
	body string
	key  string
}

func (p paragraph) raw() string {
	return p.lead + p.body
}

// Diff compares two narrative versions paragraph by paragraph, refining
// similar one-to-one replacements down to tokens. Concatenating the
// original side of the segments yields original exactly, and likewise
// for revised.
func Diff(original, revised string) entities.DiffResult {
	if original == revised {
		paras, _ := splitParagraphs(original)
		return entities.DiffResult{
			Identical: true,
			Segments: []entities.DiffSegment{{
				Kind:       entities.SegmentUnchanged,
				Text:       original,
				Paragraphs: len(paras),
			}},
		}
	}

	a, tailA := splitParagraphs(original)
	b, tailB := splitParagraphs(revised)

	matcher := difflib.NewMatcherWithJunk(paragraphKeys(a), paragraphKeys(b), false, nil)

	var out segmentBuilder
	for _, op := range matcher.GetOpCodes() {
		switch op.Tag {
		case 'e':
			for k := 0; k < op.I2-op.I1; k++ {
				pa, pb := a[op.I1+k], b[op.J1+k]
				out.addWhitespace(pa.lead, pb.lead)
				if pa.body == pb.body {
					out.add(entities.SegmentUnchanged, pa.body, 1)
				} else {
					// Same text, different line endings.
					out.addEdited(pa.body, pb.body)
				}
			}
		case 'd':
			out.add(entities.SegmentDeleted, joinRaw(a[op.I1:op.I2]), op.I2-op.I1)
		case 'i':
			out.add(entities.SegmentInserted, joinRaw(b[op.J1:op.J2]), op.J2-op.J1)
		case 'r':
			oneToOne := op.I2-op.I1 == 1 && op.J2-op.J1 == 1
			if oneToOne && Similarity(a[op.I1].key, b[op.J1].key) >= EditSimilarityThreshold {
				out.addWhitespace(a[op.I1].lead, b[op.J1].lead)
				out.addEdited(a[op.I1].body, b[op.J1].body)
				continue
			}
			out.add(entities.SegmentDeleted, joinRaw(a[op.I1:op.I2]), op.I2-op.I1)
			out.add(entities.SegmentInserted, joinRaw(b[op.J1:op.J2]), op.J2-op.J1)
		}
	}
	out.addWhitespace(tailA, tailB)

	return entities.DiffResult{Segments: out.segments}
}

// Similarity returns the character-level match ratio of two strings in [0, 1].
func Similarity(a, b string) float64 {
	m := difflib.NewMatcherWithJunk(splitRunes(a), splitRunes(b), false, nil)
	return m.Ratio()
}

// InlineDiff aligns two paragraphs token by token, keeping all whitespace.
func InlineDiff(original, revised string) []entities.InlineSpan {
	a := tokenPattern.FindAllString(original, -1)
	b := tokenPattern.FindAllString(revised, -1)

	matcher := difflib.NewMatcherWithJunk(a, b, false, nil)

	var spans []entities.InlineSpan
	push := func(kind entities.SegmentKind, tokens []string) {
		if len(tokens) == 0 {
			return
		}
		text := strings.Join(tokens, "")
		if n := len(spans); n > 0 && spans[n-1].Kind == kind {
			spans[n-1].Text += text
			return
		}
		spans = append(spans, entities.InlineSpan{Kind: kind, Text: text})
	}

	for _, op := range matcher.GetOpCodes() {
		switch op.Tag {
		case 'e':
			push(entities.SegmentUnchanged, a[op.I1:op.I2])
		case 'd':
			push(entities.SegmentDeleted, a[op.I1:op.I2])
		case 'i':
			push(entities.SegmentInserted, b[op.J1:op.J2])
		case 'r':
			push(entities.SegmentDeleted, a[op.I1:op.I2])
			push(entities.SegmentInserted, b[op.J1:op.J2])
		}
	}
	return spans
}

// splitParagraphs cuts text into paragraphs, each carrying the blank-line
// run before it. Whitespace after the last paragraph is returned as tail,
// so joining every raw paragraph and the tail gives back text unchanged.
func splitParagraphs(text string) ([]paragraph, string) {
	var paras []paragraph
	pending := ""
	start := 0
	for _, loc := range paragraphSep.FindAllStringIndex(text, -1) {
		sep := text[loc[0]:loc[1]]
		if strings.Count(normalizeKey(sep), "\n") < 2 {
			// A lone CRLF read as CR + LF.
			continue
		}
		content := text[start:loc[0]]
		start = loc[1]
		if strings.TrimSpace(content) == "" {
			pending += content + sep
			continue
		}
		paras = append(paras, paragraph{lead: pending, body: content, key: normalizeKey(content)})
		pending = sep
	}

	tail := text[start:]
	if strings.TrimSpace(tail) == "" {
		return paras, pending + tail
	}
	paras = append(paras, paragraph{lead: pending, body: tail, key: normalizeKey(tail)})
	return paras, ""
}

func normalizeKey(s string) string {
	return lineEndings.Replace(s)
}

func paragraphKeys(paras []paragraph) []string {
	keys := make([]string, len(paras))
	for i, p := range paras {
		keys[i] = p.key
	}
	return keys
}

func joinRaw(paras []paragraph) string {
	var b strings.Builder
	for _, p := range paras {
		b.WriteString(p.raw())
	}
	return b.String()
}

func splitRunes(s string) []string {
	out := make([]string, 0, len(s))
	for _, r := range s {
		out = append(out, string(r))
	}
	return out
}

// segmentBuilder appends segments, merging neighbouring runs of the same
// kind. Edited segments are never merged.
type segmentBuilder struct {
	segments []entities.DiffSegment
}

func (sb *segmentBuilder) add(kind entities.SegmentKind, text string, paragraphs int) {
	if text == "" {
		return
	}
	if n := len(sb.segments); n > 0 && kind != entities.SegmentEdited && sb.segments[n-1].Kind == kind {
		sb.segments[n-1].Text += text
		sb.segments[n-1].Paragraphs += paragraphs
		return
	}
	sb.segments = append(sb.segments, entities.DiffSegment{
		Kind:       kind,
		Text:       text,
		Paragraphs: paragraphs,
	})
}

// addWhitespace records a blank-line run. A changed run becomes a deleted
// and an inserted segment that count no paragraphs.
func (sb *segmentBuilder) addWhitespace(original, revised string) {
	if original == revised {
		sb.add(entities.SegmentUnchanged, original, 0)
		return
	}
	sb.add(entities.SegmentDeleted, original, 0)
	sb.add(entities.SegmentInserted, revised, 0)
}

func (sb *segmentBuilder) addEdited(original, revised string) {
	sb.segments = append(sb.segments, entities.DiffSegment{
		Kind:       entities.SegmentEdited,
		Original:   original,
		Revised:    revised,
		Spans:      InlineDiff(original, revised),
		Paragraphs: 1,
	})
}
