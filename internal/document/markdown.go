package document

import "strings"

// Markdown serialises blocks back into source text. Blocks are separated by
// a single blank line; Normalize(Markdown(blocks)) matches the normalised
// text the blocks were parsed from.
func Markdown(blocks []Block) string {
	var b strings.Builder
	for i, block := range blocks {
		if i > 0 {
			b.WriteString("\n\n")
		}
		writeBlock(&b, block)
	}
	if b.Len() > 0 {
		b.WriteByte('\n')
	}
	return b.String()
}

func writeBlock(b *strings.Builder, block Block) {
	switch v := block.(type) {
	case *Heading:
		b.WriteString(v.Indent)
		b.WriteString(strings.Repeat("#", v.Level))
		b.WriteString(v.Gap)
		b.WriteString(InlineText(v.Inlines))
		b.WriteString(v.Closing)
	case *Paragraph:
		b.WriteString(InlineText(v.Inlines))
	case *CodeListing:
		b.WriteString(v.Indent)
		b.WriteString(v.Fence)
		b.WriteString(v.Info)
		b.WriteByte('\n')
		if v.Source != "" {
			b.WriteString(v.Source)
			b.WriteByte('\n')
		}
		closer := v.Closer
		if closer == "" {
			closer = v.Fence
		}
		b.WriteString(v.Indent)
		b.WriteString(closer)
	case *FootnoteDefinition:
		b.WriteString(v.Indent)
		b.WriteString("[^")
		b.WriteString(v.ID)
		b.WriteString("]:")
		b.WriteString(v.Gap)
		lines := strings.Split(InlineText(v.Inlines), "\n")
		for i, line := range lines {
			if i > 0 {
				b.WriteByte('\n')
				if line != "" {
					b.WriteString("    ")
				}
			}
			b.WriteString(line)
		}
	}
}

// Normalize applies the whitespace normalisation the round-trip law is
// stated modulo: CRLF becomes LF, leading tabs expand to four spaces,
// trailing whitespace is stripped and blank lines are dropped.
func Normalize(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	lines := strings.Split(text, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimRight(ExpandIndent(line), " \t")
		if line == "" {
			continue
		}
		out = append(out, line)
	}
	return strings.Join(out, "\n")
}

// ExpandIndent expands tabs in the leading indentation to four-column tab
// stops.
func ExpandIndent(line string) string {
	i := 0
	for i < len(line) && (line[i] == ' ' || line[i] == '\t') {
		i++
	}
	if !strings.Contains(line[:i], "\t") {
		return line
	}
	var b strings.Builder
	col := 0
	for _, r := range line[:i] {
		if r == '\t' {
			pad := 4 - col%4
			b.WriteString(strings.Repeat(" ", pad))
			col += pad
			continue
		}
		b.WriteRune(r)
		col++
	}
	b.WriteString(line[i:])
	return b.String()
}
