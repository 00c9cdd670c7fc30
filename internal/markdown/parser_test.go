package markdown

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/goliatone/go-doccorpus/internal/document"
	"github.com/goliatone/go-doccorpus/pkg/testsupport"
)

func TestParseParagraphWithFootnote(t *testing.T) {
	blocks, err := NewParser().Parse("note.md", []byte("See note[^1].\n\n[^1]: Explanation."))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(blocks) != 2 {
		t.Fatalf("expected 2 blocks, got %d", len(blocks))
	}

	para, ok := blocks[0].(*document.Paragraph)
	if !ok {
		t.Fatalf("expected paragraph, got %T", blocks[0])
	}
	if len(para.Inlines) != 3 {
		t.Fatalf("expected 3 inlines, got %#v", para.Inlines)
	}
	if text, _ := para.Inlines[0].(document.Text); text.Value != "See note" {
		t.Fatalf("unexpected leading text %#v", para.Inlines[0])
	}
	ref, ok := para.Inlines[1].(*document.FootnoteReference)
	if !ok || ref.ID != "1" || ref.Line != 1 {
		t.Fatalf("expected reference [^1] on line 1, got %#v", para.Inlines[1])
	}
	if para.Text() != "See note[^1]." {
		t.Fatalf("paragraph text mismatch: %q", para.Text())
	}

	def, ok := blocks[1].(*document.FootnoteDefinition)
	if !ok {
		t.Fatalf("expected footnote definition, got %T", blocks[1])
	}
	if def.ID != "1" || def.Body != "Explanation." || def.Line != 3 {
		t.Fatalf("unexpected definition %#v", def)
	}
}

func TestParseUnterminatedFence(t *testing.T) {
	blocks, err := NewParser().Parse("broken.md", []byte("# Title\n\n```elm\nmain = text \"hi\"\n"))
	if !errors.Is(err, document.ErrMalformedBlock) {
		t.Fatalf("expected malformed block error, got %v", err)
	}

	var malformed *document.MalformedBlockError
	if !errors.As(err, &malformed) {
		t.Fatalf("expected MalformedBlockError, got %T", err)
	}
	if malformed.Line != 3 || malformed.Path != "broken.md" {
		t.Fatalf("unexpected defect location %#v", malformed)
	}
	if !strings.Contains(malformed.Error(), "broken.md:3") {
		t.Fatalf("expected location in message, got %q", malformed.Error())
	}
	if len(blocks) != 1 {
		t.Fatalf("expected the heading before the fence to survive, got %d blocks", len(blocks))
	}
}

func TestParseMalformedHeadingsAreAllReported(t *testing.T) {
	body := "#NoSpace\n\n####### Seven\n\n#   \n\n# Fine\n"
	blocks, err := NewParser().Parse("headings.md", []byte(body))

	defects := document.AsDefects(err)
	if len(defects) != 3 {
		t.Fatalf("expected 3 defects, got %d: %v", len(defects), err)
	}
	wantLines := []int{1, 3, 5}
	for i, defect := range defects {
		if got := document.DefectLine(defect); got != wantLines[i] {
			t.Fatalf("defect %d: expected line %d, got %d", i, wantLines[i], got)
		}
		if document.DefectKind(defect) != "malformed_block" {
			t.Fatalf("defect %d: unexpected kind %s", i, document.DefectKind(defect))
		}
	}
	if len(blocks) != 4 {
		t.Fatalf("expected parsing to continue past malformed headings, got %d blocks", len(blocks))
	}
	if h, ok := blocks[3].(*document.Heading); !ok || h.Text != "Fine" {
		t.Fatalf("expected trailing heading, got %#v", blocks[3])
	}
}

func TestParseHeadings(t *testing.T) {
	body := "# Intro\n\n## Intro ##\n\n  ### Deep[^d]\n\n[^d]: Note.\n"
	blocks, err := NewParser().Parse("h.md", []byte(body))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	first := blocks[0].(*document.Heading)
	second := blocks[1].(*document.Heading)
	third := blocks[2].(*document.Heading)

	if first.Level != 1 || first.Text != "Intro" || first.Anchor != document.Anchor("Intro") {
		t.Fatalf("unexpected first heading %#v", first)
	}
	if second.Level != 2 || second.Text != "Intro" || second.Closing != " ##" {
		t.Fatalf("unexpected second heading %#v", second)
	}
	if second.Anchor != first.Anchor+"-1" {
		t.Fatalf("expected de-duplicated anchor, got %q", second.Anchor)
	}
	if third.Level != 3 || third.Indent != "  " {
		t.Fatalf("unexpected third heading %#v", third)
	}
	refs := document.BlockReferences(third)
	if len(refs) != 1 || refs[0].ID != "d" {
		t.Fatalf("expected heading reference, got %#v", refs)
	}
}

func TestParseListings(t *testing.T) {
	body := strings.Join([]string{
		"```elm",
		"main = lift asText Mouse.position",
		"```",
		"",
		"~~~ {.haskell}",
		"```",
		"not a closer",
		"~~~",
		"",
		"````",
		"```",
		"````",
	}, "\n")

	blocks, err := NewParser().Parse("code.md", []byte(body))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(blocks) != 3 {
		t.Fatalf("expected 3 listings, got %d", len(blocks))
	}

	elm := blocks[0].(*document.CodeListing)
	if elm.Language != "elm" || elm.Source != "main = lift asText Mouse.position" {
		t.Fatalf("unexpected elm listing %#v", elm)
	}
	if elm.Line != 1 || elm.EndLine != 3 {
		t.Fatalf("unexpected elm position %#v", elm.Position)
	}

	haskell := blocks[1].(*document.CodeListing)
	if haskell.Language != "haskell" || haskell.Source != "```\nnot a closer" {
		t.Fatalf("unexpected tilde listing %#v", haskell)
	}

	nested := blocks[2].(*document.CodeListing)
	if nested.Language != "" || nested.Source != "```" {
		t.Fatalf("unexpected nested fence listing %#v", nested)
	}
}

func TestParseListingSourceIsOpaque(t *testing.T) {
	body := "```elm\n# not a heading\n[^x]: not a footnote\n```\n"
	blocks, err := NewParser().Parse("opaque.md", []byte(body))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(blocks) != 1 {
		t.Fatalf("expected a single listing, got %d blocks", len(blocks))
	}
	if refs := (&document.Document{Blocks: blocks}).References(); len(refs) != 0 {
		t.Fatalf("expected no references inside listings, got %#v", refs)
	}
}

func TestParseInlineMarkersStayLiteralInCode(t *testing.T) {
	blocks, err := NewParser().Parse("lit.md", []byte("Write `[^x]` or \\[^y] to show a marker."))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if refs := document.BlockReferences(blocks[0]); len(refs) != 0 {
		t.Fatalf("expected no references, got %#v", refs)
	}
}

func TestParseFootnoteIDsShareOneCharacterSet(t *testing.T) {
	blocks, err := NewParser().Parse("ids.md", []byte("See[^a^b].\n\n[^a^b]: x"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(blocks) != 2 {
		t.Fatalf("expected 2 blocks, got %d", len(blocks))
	}
	for i, block := range blocks {
		if _, ok := block.(*document.Paragraph); !ok {
			t.Fatalf("block %d: expected paragraph, got %T", i, block)
		}
		if refs := document.BlockReferences(block); len(refs) != 0 {
			t.Fatalf("block %d: expected no references, got %#v", i, refs)
		}
	}
}

func TestParseReportsInvalidUTF8(t *testing.T) {
	_, err := NewParser().Parse("bytes.md", []byte("# Title\n\nok\n\xff\xfe\n"))

	var malformed *document.MalformedBlockError
	if !errors.As(err, &malformed) {
		t.Fatalf("expected MalformedBlockError, got %v", err)
	}
	if malformed.Line != 4 || !strings.Contains(malformed.Reason, "UTF-8") {
		t.Fatalf("unexpected defect %#v", malformed)
	}
}

func TestParseFootnoteContinuation(t *testing.T) {
	body := "Text[^n].\n\n[^n]: One.\n    Still one.\n\n\tTwo.\n\nAfter.\n"
	blocks, err := NewParser().Parse("fn.md", []byte(body))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(blocks) != 3 {
		t.Fatalf("expected paragraph, definition, paragraph; got %d blocks", len(blocks))
	}
	def := blocks[1].(*document.FootnoteDefinition)
	if def.Body != "One.\nStill one.\n\nTwo." {
		t.Fatalf("unexpected body %q", def.Body)
	}
	if def.Line != 3 || def.EndLine != 6 {
		t.Fatalf("unexpected position %#v", def.Position)
	}
	if after := blocks[2].(*document.Paragraph); after.Text() != "After." || after.Line != 8 {
		t.Fatalf("unexpected trailing paragraph %#v", after)
	}
}

func TestParseAtOffsetsLines(t *testing.T) {
	blocks, err := NewParser().ParseAt("x.md", []byte("# Title\n\nBody[^a]."), 5)
	if err != nil {
		t.Fatalf("ParseAt: %v", err)
	}
	if blocks[0].Pos().Line != 5 {
		t.Fatalf("expected heading on line 5, got %d", blocks[0].Pos().Line)
	}
	if refs := document.BlockReferences(blocks[1]); refs[0].Line != 7 {
		t.Fatalf("expected reference on line 7, got %d", refs[0].Line)
	}
}

func TestRoundTripFixtures(t *testing.T) {
	paths, err := filepath.Glob(filepath.Join("testdata", "corpus", "*.md"))
	if err != nil {
		t.Fatalf("glob: %v", err)
	}
	paths = append(paths, filepath.Join("testdata", "corpus", "advanced", "foldp.md"))
	if len(paths) < 3 {
		t.Fatalf("expected fixture documents, got %v", paths)
	}

	for _, path := range paths {
		source := readFixture(t, path)
		_, body, _, err := ParseFrontMatter(source)
		if err != nil {
			t.Fatalf("%s: ParseFrontMatter: %v", path, err)
		}
		blocks, err := NewParser().Parse(path, body)
		if err != nil {
			t.Fatalf("%s: Parse: %v", path, err)
		}
		got := document.Normalize(document.Markdown(blocks))
		want := document.Normalize(string(body))
		if got != want {
			t.Fatalf("%s: round trip mismatch\nwant:\n%s\ngot:\n%s", path, want, got)
		}
	}
}

func TestRoundTripInline(t *testing.T) {
	cases := []string{
		"See note[^1].\n\n[^1]: Explanation.",
		"  ## Indented ##   \n\nBody",
		"```\r\ncode\r\n```\r\n",
		"[^a]:\tTabbed gap\n\tand tabbed continuation",
		"Para one\nline two\n\n\n\nPara two",
		"- list item\n- another\n\n> quoted[^q]\n\n[^q]: Quote source.",
	}
	for _, body := range cases {
		blocks, err := NewParser().Parse("inline.md", []byte(body))
		if err != nil {
			t.Fatalf("Parse(%q): %v", body, err)
		}
		got := document.Normalize(document.Markdown(blocks))
		want := document.Normalize(body)
		if got != want {
			t.Fatalf("round trip mismatch for %q\nwant: %q\ngot:  %q", body, want, got)
		}
	}
}

func TestParseFrontMatter(t *testing.T) {
	data := readFixture(t, "testdata/corpus/signals.md")

	fm, body, firstLine, err := ParseFrontMatter(data)
	if err != nil {
		t.Fatalf("ParseFrontMatter: %v", err)
	}

	if fm.Title != "Signals" {
		t.Fatalf("FrontMatter Title mismatch, got %q", fm.Title)
	}
	if len(fm.Tags) != 2 || fm.Tags[0] != "elm" {
		t.Fatalf("FrontMatter Tags mismatch: %#v", fm.Tags)
	}
	if fm.Order != 1 {
		t.Fatalf("FrontMatter Order mismatch: %d", fm.Order)
	}
	if firstLine <= 1 {
		t.Fatalf("expected body to start after the frontmatter, got line %d", firstLine)
	}
	if len(body) == 0 || !strings.Contains(string(body), "# Signals") || strings.Contains(string(body), "summary:") {
		t.Fatalf("Markdown body not returned correctly: %q", string(body))
	}
}

func TestBodyFirstLine(t *testing.T) {
	source := []byte("---\ntitle: x\n---\n# Body\n")
	if got := bodyFirstLine(source, []byte("# Body\n")); got != 4 {
		t.Fatalf("expected body on line 4, got %d", got)
	}
	if got := bodyFirstLine(source, []byte("unrelated")); got != 1 {
		t.Fatalf("expected fallback to line 1, got %d", got)
	}
}

func TestBuildDocument(t *testing.T) {
	data := readFixture(t, "testdata/corpus/merge.md")
	modified := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

	doc, err := BuildDocument(NewParser(), "merge.md", data, modified)
	if err != nil {
		t.Fatalf("BuildDocument: %v", err)
	}
	if doc.Title != "Merging Signals" {
		t.Fatalf("expected title from first heading, got %q", doc.Title)
	}
	if doc.LastModified != modified {
		t.Fatalf("expected LastModified to equal the provided timestamp")
	}
	listings := doc.Listings()
	if len(listings) != 1 || listings[0].Language != "elm" || listings[0].Line != 5 {
		t.Fatalf("unexpected listings %#v", listings)
	}
	if refs := doc.References(); len(refs) != 1 || refs[0].ID != "merge" || refs[0].Line != 3 {
		t.Fatalf("unexpected references %#v", refs)
	}
}

func TestBuildDocumentKeepsPartialBlocks(t *testing.T) {
	data := readFixture(t, "testdata/broken/unterminated.md")

	doc, err := BuildDocument(nil, "unterminated.md", data, time.Time{})
	if !errors.Is(err, document.ErrMalformedBlock) {
		t.Fatalf("expected malformed block, got %v", err)
	}
	if doc == nil || doc.Title != "Unterminated" {
		t.Fatalf("expected partial document with title, got %#v", doc)
	}
}

func TestBuildDocumentReportsInvalidFrontMatter(t *testing.T) {
	doc, err := BuildDocument(nil, "a.md", []byte("---\ntitle: [unclosed\n---\n\nBody text.\n"), time.Time{})
	if doc == nil {
		t.Fatal("expected a fallback document")
	}

	defects := document.AsDefects(err)
	if len(defects) != 1 {
		t.Fatalf("expected one defect, got %v", defects)
	}
	var malformed *document.MalformedBlockError
	if !errors.As(defects[0], &malformed) || malformed.Line != 1 || malformed.Path != "a.md" {
		t.Fatalf("expected malformed frontmatter on line 1, got %#v", defects[0])
	}
	if len(doc.Blocks) == 0 {
		t.Fatal("expected the raw source to be parsed as the body")
	}
}

func TestBuildDocumentTitleFallsBackToFilename(t *testing.T) {
	doc, err := BuildDocument(nil, "guide/no-heading.md", []byte("Just prose."), time.Time{})
	if err != nil {
		t.Fatalf("BuildDocument: %v", err)
	}
	if doc.Title != "no-heading" {
		t.Fatalf("expected filename title, got %q", doc.Title)
	}
}

func readFixture(tb testing.TB, path string) []byte {
	tb.Helper()
	return testsupport.LoadFixture(tb, path)
}
