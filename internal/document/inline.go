package document

import "strings"

// Inline is a span of text-bearing block content. The set of variants is
// closed: plain text and footnote references.
type Inline interface {
	inline()
}

// Text is literal inline content, code spans included.
type Text struct {
	Value string
}

// FootnoteReference is an inline `[^id]` marker.
type FootnoteReference struct {
	ID string
	Position
}

func (Text) inline()               {}
func (*FootnoteReference) inline() {}

// Marker renders the reference in its source form.
func (r *FootnoteReference) Marker() string {
	return "[^" + r.ID + "]"
}

// InlineText concatenates inline content back into source form.
func InlineText(inlines []Inline) string {
	var b strings.Builder
	for _, inline := range inlines {
		switch v := inline.(type) {
		case Text:
			b.WriteString(v.Value)
		case *FootnoteReference:
			b.WriteString(v.Marker())
		}
	}
	return b.String()
}
