package markdown

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/goliatone/go-doccorpus/internal/document"
)

const maxHeadingLevel = 6

// footnoteIDClass is the character set of a footnote id, shared by
// definitions and inline references.
const footnoteIDClass = `[^\]\s\[^]`

var (
	footnoteDefinitionPattern = regexp.MustCompile(`^( {0,3})\[\^(` + footnoteIDClass + `+)\]:([ \t]*)(.*)$`)
	footnoteIDPattern         = regexp.MustCompile(`^` + footnoteIDClass + `+$`)
)

// Parser converts document bodies into block sequences using an explicit
// line grammar: fenced listings, ATX headings, footnote definitions and
// paragraphs. Parser holds no state and is safe for concurrent use.
type Parser struct{}

// NewParser returns a block parser.
func NewParser() *Parser {
	return &Parser{}
}

// Parse converts body into blocks. path only labels defects. When the body
// has structural defects the blocks parsed so far are returned together with
// a document.Defects error listing every defect found.
func (p *Parser) Parse(path string, body []byte) ([]document.Block, error) {
	return p.ParseAt(path, body, 1)
}

// ParseAt parses body whose first line is line firstLine of the source file,
// so positions stay meaningful after frontmatter has been stripped.
func (p *Parser) ParseAt(path string, body []byte, firstLine int) ([]document.Block, error) {
	if firstLine < 1 {
		firstLine = 1
	}
	s := &scanner{
		path:    path,
		lines:   splitLines(string(body)),
		offset:  firstLine,
		anchors: map[string]int{},
	}
	s.run()
	s.checkEncoding()
	return s.blocks, s.defects.Err()
}

type scanner struct {
	path    string
	lines   []string
	offset  int
	blocks  []document.Block
	defects document.Defects
	anchors map[string]int

	para      []string
	paraStart int
}

func (s *scanner) lineNo(i int) int { return s.offset + i }

// checkEncoding reports the first line that is not valid UTF-8.
func (s *scanner) checkEncoding() {
	for i, line := range s.lines {
		if !utf8.ValidString(line) {
			s.defects = append(s.defects, &document.MalformedBlockError{
				Path:   s.path,
				Line:   s.lineNo(i),
				Reason: "invalid UTF-8 encoding",
			})
			return
		}
	}
}

func (s *scanner) run() {
	i := 0
	for i < len(s.lines) {
		line := s.lines[i]

		if isBlank(line) {
			s.flushParagraph()
			i++
			continue
		}

		if f, ok := openFence(line); ok {
			s.flushParagraph()
			next, closed := s.scanFence(i, f)
			if !closed {
				s.defects = append(s.defects, &document.MalformedBlockError{
					Path:   s.path,
					Line:   s.lineNo(i),
					Reason: fmt.Sprintf("unterminated code fence %q", f.marker),
				})
				return
			}
			i = next
			continue
		}

		if isHeadingCandidate(line) {
			s.flushParagraph()
			heading, reason := parseHeading(line)
			if reason != "" {
				s.defects = append(s.defects, &document.MalformedBlockError{
					Path:   s.path,
					Line:   s.lineNo(i),
					Reason: reason,
				})
				s.blocks = append(s.blocks, &document.Paragraph{
					Inlines:  scanInlines(line, s.lineNo(i)),
					Position: document.Position{Line: s.lineNo(i), EndLine: s.lineNo(i)},
				})
				i++
				continue
			}
			heading.Position = document.Position{Line: s.lineNo(i), EndLine: s.lineNo(i)}
			heading.Inlines = scanInlines(heading.Text, s.lineNo(i))
			heading.Anchor = s.uniqueAnchor(document.Anchor(heading.Text))
			s.blocks = append(s.blocks, heading)
			i++
			continue
		}

		if m := footnoteDefinitionPattern.FindStringSubmatch(line); m != nil {
			s.flushParagraph()
			i = s.scanFootnoteDefinition(i, m)
			continue
		}

		if len(s.para) == 0 {
			s.paraStart = i
		}
		s.para = append(s.para, line)
		i++
	}
	s.flushParagraph()
}

func (s *scanner) flushParagraph() {
	if len(s.para) == 0 {
		return
	}
	start := s.lineNo(s.paraStart)
	s.blocks = append(s.blocks, &document.Paragraph{
		Inlines:  scanInlines(strings.Join(s.para, "\n"), start),
		Position: document.Position{Line: start, EndLine: start + len(s.para) - 1},
	})
	s.para = nil
}

func (s *scanner) scanFence(open int, f fence) (int, bool) {
	for j := open + 1; j < len(s.lines); j++ {
		if !f.closedBy(s.lines[j]) {
			continue
		}
		s.blocks = append(s.blocks, &document.CodeListing{
			Language: f.language(),
			Info:     f.info,
			Fence:    f.marker,
			Closer:   strings.TrimSpace(s.lines[j]),
			Indent:   f.indent,
			Source:   strings.Join(s.lines[open+1:j], "\n"),
			Position: document.Position{Line: s.lineNo(open), EndLine: s.lineNo(j)},
		})
		return j + 1, true
	}
	return len(s.lines), false
}

func (s *scanner) scanFootnoteDefinition(start int, m []string) int {
	body := []string{strings.TrimRight(m[4], " \t")}
	end := start
	i := start + 1
	for i < len(s.lines) {
		line := s.lines[i]
		if continuation, ok := dedentContinuation(line); ok {
			body = append(body, continuation)
			end = i
			i++
			continue
		}
		if !isBlank(line) {
			break
		}
		next := i
		for next < len(s.lines) && isBlank(s.lines[next]) {
			next++
		}
		if next >= len(s.lines) {
			break
		}
		if _, ok := dedentContinuation(s.lines[next]); !ok {
			break
		}
		for k := i; k < next; k++ {
			body = append(body, "")
		}
		i = next
	}

	text := strings.Join(body, "\n")
	s.blocks = append(s.blocks, &document.FootnoteDefinition{
		ID:       m[2],
		Body:     text,
		Inlines:  scanInlines(text, s.lineNo(start)),
		Indent:   m[1],
		Gap:      m[3],
		Position: document.Position{Line: s.lineNo(start), EndLine: s.lineNo(end)},
	})
	return end + 1
}

func (s *scanner) uniqueAnchor(anchor string) string {
	if anchor == "" {
		return ""
	}
	seen := s.anchors[anchor]
	s.anchors[anchor] = seen + 1
	if seen == 0 {
		return anchor
	}
	return anchor + "-" + strconv.Itoa(seen)
}

type fence struct {
	indent string
	marker string
	info   string
}

func (f fence) language() string {
	fields := strings.Fields(f.info)
	if len(fields) == 0 {
		return ""
	}
	return strings.Trim(fields[0], "{}.")
}

func (f fence) closedBy(line string) bool {
	indent, rest := splitIndent(line)
	if len(indent) > 3 {
		return false
	}
	run := leadingRun(rest, f.marker[0])
	if run < len(f.marker) {
		return false
	}
	return isBlank(rest[run:])
}

func openFence(line string) (fence, bool) {
	indent, rest := splitIndent(line)
	if len(indent) > 3 || rest == "" {
		return fence{}, false
	}
	ch := rest[0]
	if ch != '`' && ch != '~' {
		return fence{}, false
	}
	run := leadingRun(rest, ch)
	if run < 3 {
		return fence{}, false
	}
	info := strings.TrimRight(rest[run:], " \t")
	if ch == '`' && strings.Contains(info, "`") {
		return fence{}, false
	}
	return fence{indent: indent, marker: rest[:run], info: info}, true
}

func isHeadingCandidate(line string) bool {
	indent, rest := splitIndent(line)
	return len(indent) <= 3 && strings.HasPrefix(rest, "#")
}

// parseHeading returns the heading or a reason the line is malformed.
func parseHeading(line string) (*document.Heading, string) {
	indent, rest := splitIndent(line)
	level := leadingRun(rest, '#')
	after := rest[level:]

	if after != "" && after[0] != ' ' && after[0] != '\t' {
		return nil, "heading marker must be followed by a space"
	}
	if level > maxHeadingLevel {
		return nil, fmt.Sprintf("heading level %d exceeds %d", level, maxHeadingLevel)
	}

	gapLen := len(after) - len(strings.TrimLeft(after, " \t"))
	gap := after[:gapLen]
	text := strings.TrimRight(after[gapLen:], " \t")

	closing := ""
	if trimmed := strings.TrimRight(text, "#"); trimmed != text {
		if trimmed == "" {
			closing = " " + text
			text = ""
		} else if last := trimmed[len(trimmed)-1]; last == ' ' || last == '\t' {
			body := strings.TrimRight(trimmed, " \t")
			closing = text[len(body):]
			text = body
		}
	}
	if text == "" {
		return nil, "heading has no text"
	}

	return &document.Heading{
		Level:   level,
		Text:    text,
		Indent:  indent,
		Gap:     gap,
		Closing: closing,
	}, ""
}

func dedentContinuation(line string) (string, bool) {
	if isBlank(line) {
		return "", false
	}
	expanded := document.ExpandIndent(line)
	if !strings.HasPrefix(expanded, "    ") {
		return "", false
	}
	return strings.TrimRight(expanded[4:], " \t"), true
}

func splitLines(body string) []string {
	body = strings.ReplaceAll(body, "\r\n", "\n")
	body = strings.TrimSuffix(body, "\n")
	if body == "" {
		return nil
	}
	return strings.Split(body, "\n")
}

func splitIndent(line string) (string, string) {
	i := 0
	for i < len(line) && line[i] == ' ' {
		i++
	}
	return line[:i], line[i:]
}

func leadingRun(s string, ch byte) int {
	n := 0
	for n < len(s) && s[n] == ch {
		n++
	}
	return n
}

func isBlank(line string) bool {
	return strings.TrimSpace(line) == ""
}
