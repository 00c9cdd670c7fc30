package document

import (
	"strings"
	"time"
)

// Position locates a block or inline marker in the source body. Lines are
// 1-based; EndLine equals Line for single-line constructs.
type Position struct {
	Line    int
	EndLine int
}

// Document is a parsed corpus file. Path is the corpus-relative,
// slash-separated identity of the document.
type Document struct {
	Path         string
	Title        string
	FrontMatter  FrontMatter
	Blocks       []Block
	Checksum     []byte
	LastModified time.Time
}

// FrontMatter carries the optional metadata header of a document.
type FrontMatter struct {
	Title   string         `yaml:"title" json:"title"`
	Summary string         `yaml:"summary" json:"summary"`
	Tags    []string       `yaml:"tags" json:"tags"`
	Order   int            `yaml:"order" json:"order"`
	Custom  map[string]any `yaml:",inline" json:"custom"`
}

// Block is a structural unit of a document. The set of variants is closed.
type Block interface {
	Pos() Position
	block()
}

// Heading is an ATX heading. Gap keeps the whitespace between the marker and
// the text and Closing keeps an optional trailing run of '#', so the heading
// re-serialises as written.
type Heading struct {
	Level   int
	Text    string
	Inlines []Inline
	Anchor  string
	Indent  string
	Gap     string
	Closing string
	Position
}

// Paragraph is a run of consecutive prose lines. Constructs the grammar does
// not model (lists, quotes, tables) are carried as paragraph text.
type Paragraph struct {
	Inlines []Inline
	Position
}

// CodeListing is a fenced code block. Source is opaque and never validated
// against Language.
type CodeListing struct {
	Language string
	Info     string
	Fence    string
	Closer   string
	Indent   string
	Source   string
	Position
}

// FootnoteDefinition binds a marker id to its body text. Gap keeps the
// whitespace written between the colon and the body.
type FootnoteDefinition struct {
	ID      string
	Body    string
	Inlines []Inline
	Indent  string
	Gap     string
	Position
}

func (b *Heading) Pos() Position            { return b.Position }
func (b *Paragraph) Pos() Position          { return b.Position }
func (b *CodeListing) Pos() Position        { return b.Position }
func (b *FootnoteDefinition) Pos() Position { return b.Position }

func (*Heading) block()            {}
func (*Paragraph) block()          {}
func (*CodeListing) block()        {}
func (*FootnoteDefinition) block() {}

// Text returns the paragraph's plain text with footnote markers rendered
// back into their source form.
func (b *Paragraph) Text() string {
	return InlineText(b.Inlines)
}

// Headings returns the document headings in order.
func (d *Document) Headings() []*Heading {
	var out []*Heading
	for _, block := range d.Blocks {
		if h, ok := block.(*Heading); ok {
			out = append(out, h)
		}
	}
	return out
}

// Listings returns the fenced code listings in document order.
func (d *Document) Listings() []*CodeListing {
	var out []*CodeListing
	for _, block := range d.Blocks {
		if l, ok := block.(*CodeListing); ok {
			out = append(out, l)
		}
	}
	return out
}

// Definitions returns every footnote definition in document order,
// duplicates included.
func (d *Document) Definitions() []*FootnoteDefinition {
	var out []*FootnoteDefinition
	for _, block := range d.Blocks {
		if def, ok := block.(*FootnoteDefinition); ok {
			out = append(out, def)
		}
	}
	return out
}

// References returns every footnote reference in document order, including
// references nested in headings and footnote bodies.
func (d *Document) References() []*FootnoteReference {
	var out []*FootnoteReference
	for _, block := range d.Blocks {
		out = append(out, BlockReferences(block)...)
	}
	return out
}

// BlockReferences returns the footnote references carried by a single block.
func BlockReferences(block Block) []*FootnoteReference {
	var inlines []Inline
	switch b := block.(type) {
	case *Heading:
		inlines = b.Inlines
	case *Paragraph:
		inlines = b.Inlines
	case *FootnoteDefinition:
		inlines = b.Inlines
	default:
		return nil
	}
	var out []*FootnoteReference
	for _, inline := range inlines {
		if ref, ok := inline.(*FootnoteReference); ok {
			out = append(out, ref)
		}
	}
	return out
}

// DeriveTitle picks the document title: frontmatter first, then the first
// level-1 heading, then the file name without extension.
func DeriveTitle(path string, fm FrontMatter, blocks []Block) string {
	if title := strings.TrimSpace(fm.Title); title != "" {
		return title
	}
	for _, block := range blocks {
		if h, ok := block.(*Heading); ok && h.Level == 1 {
			if text := strings.TrimSpace(h.Text); text != "" {
				return text
			}
		}
	}
	base := path
	if idx := strings.LastIndex(base, "/"); idx >= 0 {
		base = base[idx+1:]
	}
	if idx := strings.LastIndex(base, "."); idx > 0 {
		base = base[:idx]
	}
	return base
}
