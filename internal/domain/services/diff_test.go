package services

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ersonp/sarcheck/internal/domain/entities"
)

func TestDiff_InlineWordEdit(t *testing.T) {
	result := Diff("The quick brown fox.", "The slow brown fox.")

	want := []entities.DiffSegment{{
		Kind:     entities.SegmentEdited,
		Original: "The quick brown fox.",
		Revised:  "The slow brown fox.",
		Spans: []entities.InlineSpan{
			{Kind: entities.SegmentUnchanged, Text: "The "},
			{Kind: entities.SegmentDeleted, Text: "quick"},
			{Kind: entities.SegmentInserted, Text: "slow"},
			{Kind: entities.SegmentUnchanged, Text: " brown fox."},
		},
		Paragraphs: 1,
	}}

	assert.False(t, result.Identical)
	if diff := cmp.Diff(want, result.Segments); diff != "" {
		t.Errorf("segments mismatch (-want +got):\n%s", diff)
	}
}

func TestDiff_Identical(t *testing.T) {
	tests := []struct {
		name       string
		text       string
		paragraphs int
	}{
		{name: "empty", text: "", paragraphs: 0},
		{name: "single paragraph", text: "Funds moved.", paragraphs: 1},
		{name: "several paragraphs", text: "One.\n\nTwo.\r\n\r\nThree.", paragraphs: 3},
		{name: "single crlf is not a break", text: "Line one\r\nline two.", paragraphs: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Diff(tt.text, tt.text)

			assert.True(t, result.Identical)
			require.Len(t, result.Segments, 1)
			assert.Equal(t, entities.SegmentUnchanged, result.Segments[0].Kind)
			assert.Equal(t, tt.text, result.Segments[0].Text)
			assert.Equal(t, tt.paragraphs, result.Segments[0].Paragraphs)
		})
	}
}

func TestDiff_WholeDocumentInsertAndDelete(t *testing.T) {
	text := "First paragraph.\n\nSecond paragraph."

	inserted := Diff("", text)
	require.Len(t, inserted.Segments, 1)
	assert.Equal(t, entities.SegmentInserted, inserted.Segments[0].Kind)
	assert.Equal(t, text, inserted.Segments[0].Text)
	assert.Equal(t, "Inserted block", inserted.Segments[0].Label())

	deleted := Diff(text, "")
	require.Len(t, deleted.Segments, 1)
	assert.Equal(t, entities.SegmentDeleted, deleted.Segments[0].Kind)
	assert.Equal(t, "Deleted block", deleted.Segments[0].Label())
}

func TestDiff_AppendedParagraph(t *testing.T) {
	result := Diff("Intro.\n\nBody.", "Intro.\n\nBody.\n\nConclusion.")

	want := []entities.DiffSegment{
		{Kind: entities.SegmentUnchanged, Text: "Intro.\n\nBody.", Paragraphs: 2},
		{Kind: entities.SegmentInserted, Text: "\n\nConclusion.", Paragraphs: 1},
	}
	if diff := cmp.Diff(want, result.Segments); diff != "" {
		t.Errorf("segments mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, "Inserted paragraph", result.Segments[1].Label())
}

func TestDiff_RemovedMiddleParagraph(t *testing.T) {
	result := Diff("A one.\n\nB two.\n\nC three.", "A one.\n\nC three.")

	stats := result.Stats()
	assert.Equal(t, 1, stats[entities.SegmentDeleted])
	assert.Equal(t, 0, stats[entities.SegmentInserted])
	assert.Equal(t, 0, stats[entities.SegmentEdited])
}

func TestDiff_DissimilarReplacementIsBlockPair(t *testing.T) {
	result := Diff("Wire sent to Cyprus.", "Customer closed the account in May.")

	require.Len(t, result.Segments, 2)
	assert.Equal(t, entities.SegmentDeleted, result.Segments[0].Kind)
	assert.Equal(t, "Wire sent to Cyprus.", result.Segments[0].Text)
	assert.Equal(t, entities.SegmentInserted, result.Segments[1].Kind)
	assert.Equal(t, "Customer closed the account in May.", result.Segments[1].Text)
}

func TestDiff_ManyToManyIsBlockPair(t *testing.T) {
	result := Diff(
		"Intro.\n\nOld alpha.\n\nOld beta.",
		"Intro.\n\nNew gamma section.",
	)

	stats := result.Stats()
	assert.Equal(t, 0, stats[entities.SegmentEdited])
	assert.Equal(t, 1, stats[entities.SegmentDeleted])
	assert.Equal(t, 1, stats[entities.SegmentInserted])
}

func TestDiff_SeveralSimilarParagraphsReplacedAsBlock(t *testing.T) {
	result := Diff(
		"The quick brown fox.\n\nFunds were moved on Monday.",
		"The slow brown fox.\n\nFunds were moved on Tuesday.",
	)

	want := []entities.DiffSegment{
		{Kind: entities.SegmentDeleted, Text: "The quick brown fox.\n\nFunds were moved on Monday.", Paragraphs: 2},
		{Kind: entities.SegmentInserted, Text: "The slow brown fox.\n\nFunds were moved on Tuesday.", Paragraphs: 2},
	}
	if diff := cmp.Diff(want, result.Segments); diff != "" {
		t.Errorf("segments mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, "Deleted block", result.Segments[0].Label())
	assert.Equal(t, "Inserted block", result.Segments[1].Label())
}

func TestDiff_BlankLineChangesAreNotParagraphEdits(t *testing.T) {
	tests := []struct {
		name     string
		original string
		revised  string
		want     []entities.DiffSegment
	}{
		{
			name:     "wider gap",
			original: "One.\n\nTwo.",
			revised:  "One.\n\n\n\nTwo.",
			want: []entities.DiffSegment{
				{Kind: entities.SegmentUnchanged, Text: "One.", Paragraphs: 1},
				{Kind: entities.SegmentDeleted, Text: "\n\n"},
				{Kind: entities.SegmentInserted, Text: "\n\n\n\n"},
				{Kind: entities.SegmentUnchanged, Text: "Two.", Paragraphs: 1},
			},
		},
		{
			name:     "trailing blank lines",
			original: "One.",
			revised:  "One.\n\n",
			want: []entities.DiffSegment{
				{Kind: entities.SegmentUnchanged, Text: "One.", Paragraphs: 1},
				{Kind: entities.SegmentInserted, Text: "\n\n"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Diff(tt.original, tt.revised)

			if diff := cmp.Diff(tt.want, result.Segments); diff != "" {
				t.Errorf("segments mismatch (-want +got):\n%s", diff)
			}
			assert.Zero(t, result.Stats()[entities.SegmentEdited])
			for _, seg := range result.Segments {
				assert.Empty(t, seg.Label())
			}
		})
	}
}

func TestDiff_RemovedFirstParagraphTakesItsGap(t *testing.T) {
	result := Diff("Old intro.\n\nBody.", "Body.")

	want := []entities.DiffSegment{
		{Kind: entities.SegmentDeleted, Text: "Old intro.\n\n", Paragraphs: 1},
		{Kind: entities.SegmentUnchanged, Text: "Body.", Paragraphs: 1},
	}
	if diff := cmp.Diff(want, result.Segments); diff != "" {
		t.Errorf("segments mismatch (-want +got):\n%s", diff)
	}
}

func TestDiff_RoundTrip(t *testing.T) {
	tests := []struct {
		name     string
		original string
		revised  string
	}{
		{name: "word edit", original: "The quick brown fox.", revised: "The slow brown fox."},
		{name: "empty original", original: "", revised: "New text.\n\nMore."},
		{name: "empty revised", original: "Old text.", revised: ""},
		{name: "line endings differ", original: "One.\r\n\r\nTwo.", revised: "One.\n\nTwo."},
		{name: "extra blank lines", original: "One.\n\nTwo.", revised: "One.\n\n\n\nTwo."},
		{name: "similar paragraphs replaced", original: "The quick brown fox.\n\nFunds were moved on Monday.", revised: "The slow brown fox.\n\nFunds were moved on Tuesday."},
		{name: "leading and trailing whitespace", original: "\n\n  One.\n\nTwo.\n\n  ", revised: "One.\n\nTwo!"},
		{name: "whitespace only", original: "   ", revised: "\n"},
		{name: "internal whitespace kept", original: "Funds  were\tmoved\non Monday.", revised: "Funds were\tmoved\n on Tuesday."},
		{
			name:     "mixed operations",
			original: "AI-assisted draft:\nJane Doe deposited cash.\n\nIt is believed funds were diverted.\n\nAlert R17 fired.",
			revised:  "Jane Doe deposited 9,500.50 USD in cash.\n\nAlert R17 fired on 2024-01-15.\n\nCase escalated.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Diff(tt.original, tt.revised)

			assert.Equal(t, tt.original, result.OriginalText())
			assert.Equal(t, tt.revised, result.RevisedText())

			for _, seg := range result.Segments {
				if seg.Kind != entities.SegmentEdited {
					continue
				}
				var orig, rev string
				for _, span := range seg.Spans {
					if span.Kind != entities.SegmentInserted {
						orig += span.Text
					}
					if span.Kind != entities.SegmentDeleted {
						rev += span.Text
					}
				}
				assert.Equal(t, seg.Original, orig)
				assert.Equal(t, seg.Revised, rev)
			}
		})
	}
}

func TestDiff_Deterministic(t *testing.T) {
	original := "One.\n\nTwo two.\n\nThree."
	revised := "One.\n\nTwo too.\n\nFour."

	assert.Equal(t, Diff(original, revised), Diff(original, revised))
}

func TestSimilarity(t *testing.T) {
	assert.InDelta(t, 1.0, Similarity("", ""), 1e-9)
	assert.InDelta(t, 1.0, Similarity("abc", "abc"), 1e-9)
	assert.InDelta(t, 0.0, Similarity("abc", "xyz"), 1e-9)
	assert.InDelta(t, 30.0/39.0, Similarity("The quick brown fox.", "The slow brown fox."), 1e-9)
}

func TestRenderDiffHTML(t *testing.T) {
	t.Run("identical", func(t *testing.T) {
		out := RenderDiffHTML(Diff("same", "same"))

		assert.Contains(t, out, "No changes detected.")
		assert.NotContains(t, out, "<del")
	})

	t.Run("inline edit", func(t *testing.T) {
		out := RenderDiffHTML(Diff("The quick brown fox.", "The slow brown fox."))

		assert.Contains(t, out, `<del class="diff-del">quick</del>`)
		assert.Contains(t, out, `<ins class="diff-ins">slow</ins>`)
		assert.Contains(t, out, "Edited paragraph")
	})

	t.Run("escapes narrative text", func(t *testing.T) {
		out := RenderDiffHTML(Diff("", "<script>alert(1)</script> & more"))

		assert.NotContains(t, out, "<script>")
		assert.Contains(t, out, "&lt;script&gt;")
		assert.Contains(t, out, "&amp; more")
		assert.Contains(t, out, "Inserted paragraph")
	})

	t.Run("blank line change is unlabelled", func(t *testing.T) {
		out := RenderDiffHTML(Diff("One.\n\nTwo.", "One.\n\n\n\nTwo."))

		assert.NotContains(t, out, "diff-label")
		assert.Contains(t, out, `<ins class="diff-ins">`)
	})

	t.Run("document", func(t *testing.T) {
		out := RenderDiffDocument("Case <1>", Diff("a", "b"))

		assert.Contains(t, out, "<title>Case &lt;1&gt;</title>")
		assert.Contains(t, out, DiffCSS)
	})
}
