package markdown

import (
	"strings"

	"github.com/goliatone/go-doccorpus/internal/document"
)

// scanInlines splits text into literal runs and footnote references.
// Backslash escapes and backtick code spans are copied verbatim, so markers
// written inside them stay literal.
func scanInlines(text string, firstLine int) []document.Inline {
	var (
		out  []document.Inline
		buf  strings.Builder
		line = firstLine
	)

	flush := func() {
		if buf.Len() == 0 {
			return
		}
		out = append(out, document.Text{Value: buf.String()})
		buf.Reset()
	}

	for i := 0; i < len(text); {
		ch := text[i]
		switch {
		case ch == '\n':
			line++
			buf.WriteByte(ch)
			i++
		case ch == '\\' && i+1 < len(text):
			buf.WriteString(text[i : i+2])
			if text[i+1] == '\n' {
				line++
			}
			i += 2
		case ch == '`':
			end := codeSpanEnd(text, i)
			span := text[i:end]
			line += strings.Count(span, "\n")
			buf.WriteString(span)
			i = end
		case ch == '[' && strings.HasPrefix(text[i:], "[^"):
			id, width := footnoteMarker(text[i:])
			if width == 0 {
				buf.WriteByte(ch)
				i++
				continue
			}
			flush()
			out = append(out, &document.FootnoteReference{
				ID:       id,
				Position: document.Position{Line: line, EndLine: line},
			})
			i += width
		default:
			buf.WriteByte(ch)
			i++
		}
	}
	flush()
	return out
}

// codeSpanEnd returns the index just past the code span opened at start, or
// just past the opening backtick run when the span never closes.
func codeSpanEnd(text string, start int) int {
	run := leadingRun(text[start:], '`')
	for i := start + run; i < len(text); {
		if text[i] != '`' {
			i++
			continue
		}
		n := leadingRun(text[i:], '`')
		if n == run {
			return i + n
		}
		i += n
	}
	return start + run
}

// footnoteMarker parses a `[^id]` marker at the start of s and returns the
// id and byte width, or a zero width when s does not start with a marker.
func footnoteMarker(s string) (string, int) {
	closeIdx := strings.IndexByte(s, ']')
	if closeIdx < 3 {
		return "", 0
	}
	id := s[2:closeIdx]
	if !footnoteIDPattern.MatchString(id) {
		return "", 0
	}
	return id, closeIdx + 1
}
