package document

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefectsUnwrapForErrorsIsAndAs(t *testing.T) {
	defects := Defects{
		&UnresolvedFootnoteError{Path: "a.md", ID: "missing", Line: 4},
		&MalformedBlockError{Path: "a.md", Line: 2, Reason: "unterminated code fence \"```\""},
	}
	err := fmt.Errorf("check: %w", defects.Err())

	require.True(t, errors.Is(err, ErrUnresolvedFootnote))
	require.True(t, errors.Is(err, ErrMalformedBlock))
	require.False(t, errors.Is(err, ErrDuplicateFootnoteID))

	var unresolved *UnresolvedFootnoteError
	require.True(t, errors.As(err, &unresolved))
	require.Equal(t, "missing", unresolved.ID)

	require.Len(t, AsDefects(err), 2)
	require.Contains(t, err.Error(), "2 defects")
}

func TestDefectsSortedIsStable(t *testing.T) {
	defects := Defects{
		&UnresolvedFootnoteError{ID: "b", Line: 9},
		&DuplicateFootnoteIDError{ID: "x", Line: 3, FirstLine: 1},
		&UnresolvedFootnoteError{ID: "a", Line: 9},
	}
	sorted := defects.Sorted()

	require.Equal(t, 3, DefectLine(sorted[0]))
	require.Equal(t, "b", sorted[1].(*UnresolvedFootnoteError).ID)
	require.Equal(t, "a", sorted[2].(*UnresolvedFootnoteError).ID)
	require.Equal(t, "b", defects[0].(*UnresolvedFootnoteError).ID, "Sorted must not reorder the receiver")
}

func TestDefectsEmpty(t *testing.T) {
	var defects Defects
	require.NoError(t, defects.Err())
	require.Nil(t, AsDefects(nil))
	require.Len(t, AsDefects(errors.New("io")), 1)
	require.Equal(t, "unknown", DefectKind(errors.New("io")))
	require.Zero(t, DefectLine(errors.New("io")))
}

func TestDefectMessagesCarryLocation(t *testing.T) {
	require.Contains(t, (&UnresolvedFootnoteError{Path: "guide.md", ID: "n", Line: 7}).Error(), "guide.md:7")
	require.Contains(t, (&DuplicateFootnoteIDError{Path: "guide.md", ID: "n", Line: 9, FirstLine: 2}).Error(), "n")
	require.Contains(t, (&MalformedBlockError{Line: 1, Reason: "heading has no text"}).Error(), "heading has no text")
}

func TestDeriveTitle(t *testing.T) {
	blocks := []Block{
		&Heading{Level: 2, Text: "Second"},
		&Heading{Level: 1, Text: "First"},
	}
	require.Equal(t, "Front", DeriveTitle("a.md", FrontMatter{Title: " Front "}, blocks))
	require.Equal(t, "First", DeriveTitle("a.md", FrontMatter{}, blocks))
	require.Equal(t, "signals", DeriveTitle("guide/signals.md", FrontMatter{}, nil))
	require.Equal(t, ".hidden", DeriveTitle(".hidden", FrontMatter{}, nil))
}

func TestMarkdownSerialisesEveryBlock(t *testing.T) {
	blocks := []Block{
		&Heading{Level: 2, Gap: " ", Inlines: []Inline{Text{Value: "Title"}}, Closing: " ##"},
		&Paragraph{Inlines: []Inline{Text{Value: "See"}, &FootnoteReference{ID: "n"}, Text{Value: "."}}},
		&CodeListing{Fence: "```", Info: "elm", Source: "main = 1"},
		&CodeListing{Fence: "~~~"},
		&FootnoteDefinition{ID: "n", Gap: " ", Inlines: []Inline{Text{Value: "One.\n\nTwo."}}},
	}
	want := "## Title ##\n\nSee[^n].\n\n```elm\nmain = 1\n```\n\n~~~\n~~~\n\n[^n]: One.\n\n    Two.\n"
	require.Equal(t, want, Markdown(blocks))
	require.Empty(t, Markdown(nil))
}

func TestNormalize(t *testing.T) {
	require.Equal(t, "a\n    b\nc", Normalize("a  \r\n\n\tb\t\n\n\nc\n"))
	require.Equal(t, "      x", ExpandIndent("  \t  x"))
	require.Equal(t, "a\tb", ExpandIndent("a\tb"))
}

func TestDocumentAccessors(t *testing.T) {
	ref := &FootnoteReference{ID: "a", Position: Position{Line: 1, EndLine: 1}}
	nested := &FootnoteReference{ID: "b", Position: Position{Line: 5, EndLine: 5}}
	doc := &Document{Blocks: []Block{
		&Heading{Level: 1, Text: "T"},
		&Paragraph{Inlines: []Inline{ref}},
		&CodeListing{Language: "elm"},
		&FootnoteDefinition{ID: "a", Inlines: []Inline{nested}},
		&FootnoteDefinition{ID: "a"},
	}}

	require.Len(t, doc.Headings(), 1)
	require.Len(t, doc.Listings(), 1)
	require.Len(t, doc.Definitions(), 2)
	require.Equal(t, []*FootnoteReference{ref, nested}, doc.References())
	require.Nil(t, BlockReferences(&CodeListing{}))
}

func TestListingAnchor(t *testing.T) {
	require.Equal(t, "listing-3", ListingAnchor("", 3))
	require.Equal(t, Anchor("Merging Signals")+"-listing-1", ListingAnchor("Merging Signals", 1))
	require.NotEmpty(t, Anchor("Merging Signals"))
	require.Equal(t, "a-b", fallbackAnchor("A -- b!"))
}
