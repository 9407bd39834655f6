package services

import (
	"html"
	"strings"

	"github.com/ersonp/sarcheck/internal/domain/entities"
)

// DiffCSS styles the markup produced by RenderDiffHTML.
const DiffCSS = `.narrative-diff{white-space:pre-wrap;line-height:1.6;font-family:inherit}
.narrative-diff del.diff-del{background:#fdecea;color:#b71c1c;text-decoration:line-through}
.narrative-diff ins.diff-ins{background:#e8f5e9;color:#1b5e20;text-decoration:none}
.narrative-diff .diff-block{border-left:3px solid #9e9e9e;margin:0.5em 0;padding-left:0.5em}
.narrative-diff .diff-block.diff-edited{border-color:#f9a825}
.narrative-diff .diff-label{display:block;font-size:0.8em;font-weight:bold;color:#616161}`

// RenderDiffHTML renders a diff as an HTML fragment. Deletions are wrapped in
// <del>, insertions in <ins>, and edited paragraphs in a labelled block.
// All narrative text is escaped.
func RenderDiffHTML(result entities.DiffResult) string {
	var b strings.Builder
	b.WriteString(`<div class="narrative-diff">`)

	if result.Identical {
		b.WriteString(`<p class="diff-none">`)
		b.WriteString(html.EscapeString(entities.NoChangesMessage))
		b.WriteString(`</p></div>`)
		return b.String()
	}

	for _, seg := range result.Segments {
		switch seg.Kind {
		case entities.SegmentUnchanged:
			b.WriteString(html.EscapeString(seg.Text))
		case entities.SegmentDeleted:
			writeBlock(&b, "diff-deleted", seg.Label(), func() {
				writeWrapped(&b, "del", "diff-del", seg.Text)
			})
		case entities.SegmentInserted:
			writeBlock(&b, "diff-inserted", seg.Label(), func() {
				writeWrapped(&b, "ins", "diff-ins", seg.Text)
			})
		case entities.SegmentEdited:
			writeBlock(&b, "diff-edited", seg.Label(), func() {
				for _, span := range seg.Spans {
					switch span.Kind {
					case entities.SegmentDeleted:
						writeWrapped(&b, "del", "diff-del", span.Text)
					case entities.SegmentInserted:
						writeWrapped(&b, "ins", "diff-ins", span.Text)
					default:
						b.WriteString(html.EscapeString(span.Text))
					}
				}
			})
		}
	}

	b.WriteString(`</div>`)
	return b.String()
}

// RenderDiffDocument wraps RenderDiffHTML in a standalone page.
func RenderDiffDocument(title string, result entities.DiffResult) string {
	var b strings.Builder
	b.WriteString("<!DOCTYPE html>\n<html><head><meta charset=\"utf-8\"><title>")
	b.WriteString(html.EscapeString(title))
	b.WriteString("</title><style>")
	b.WriteString(DiffCSS)
	b.WriteString("</style></head><body>\n")
	b.WriteString(RenderDiffHTML(result))
	b.WriteString("\n</body></html>\n")
	return b.String()
}

func writeBlock(b *strings.Builder, class, label string, body func()) {
	if label == "" {
		body()
		return
	}
	b.WriteString(`<div class="diff-block `)
	b.WriteString(class)
	b.WriteString(`"><span class="diff-label">`)
	b.WriteString(html.EscapeString(label))
	b.WriteString(`</span>`)
	body()
	b.WriteString(`</div>`)
}

func writeWrapped(b *strings.Builder, tag, class, text string) {
	b.WriteString("<" + tag + ` class="` + class + `">`)
	b.WriteString(html.EscapeString(text))
	b.WriteString("</" + tag + ">")
}
