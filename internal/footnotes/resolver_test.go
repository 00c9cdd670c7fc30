package footnotes_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-doccorpus/internal/document"
	"github.com/goliatone/go-doccorpus/internal/footnotes"
	"github.com/goliatone/go-doccorpus/internal/markdown"
)

func parse(t *testing.T, body string) *document.Document {
	t.Helper()
	doc, err := markdown.BuildDocument(markdown.NewParser(), "note.md", []byte(body), time.Time{})
	require.NoError(t, err)
	return doc
}

func TestResolveBindsReference(t *testing.T) {
	doc := parse(t, "See note[^1].\n\n[^1]: Explanation.\n")

	resolved, err := footnotes.NewResolver().Resolve(doc)
	require.NoError(t, err)
	require.Len(t, resolved.Bindings, 1)

	binding := resolved.Bindings[0]
	require.Equal(t, "1", binding.Reference.ID)
	require.Equal(t, "Explanation.", binding.Definition.Body)
	require.Equal(t, 1, binding.Number)
	require.Empty(t, resolved.Unreferenced)

	def, ok := resolved.Lookup("1")
	require.True(t, ok)
	require.Same(t, binding.Definition, def)
}

func TestResolveReportsMissingDefinition(t *testing.T) {
	doc := parse(t, "See note[^missing].\n")

	resolved, err := footnotes.NewResolver().Resolve(doc)
	require.Nil(t, resolved)
	require.True(t, errors.Is(err, document.ErrUnresolvedFootnote))

	var unresolved *document.UnresolvedFootnoteError
	require.True(t, errors.As(err, &unresolved))
	require.Equal(t, "missing", unresolved.ID)
	require.Equal(t, 1, unresolved.Line)
}

func TestResolveReportsEveryDefect(t *testing.T) {
	body := "First[^a] and second[^b].\n\n" +
		"Third[^c].\n\n" +
		"[^a]: One.\n\n" +
		"[^a]: One again.\n"
	doc := parse(t, body)

	_, err := footnotes.NewResolver().Resolve(doc)
	defects := document.AsDefects(err)
	require.Len(t, defects, 3)

	kinds := make([]string, 0, len(defects))
	for _, defect := range defects {
		kinds = append(kinds, document.DefectKind(defect))
	}
	require.Equal(t, []string{"unresolved_footnote", "unresolved_footnote", "duplicate_footnote_id"}, kinds)

	var dup *document.DuplicateFootnoteIDError
	require.True(t, errors.As(err, &dup))
	require.Equal(t, "a", dup.ID)
	require.Equal(t, 5, dup.FirstLine)
	require.Equal(t, 7, dup.Line)
}

func TestResolveDuplicateWithoutReferences(t *testing.T) {
	doc := parse(t, "[^x]: One.\n\n[^x]: Two.\n")

	_, err := footnotes.NewResolver().Resolve(doc)
	require.True(t, errors.Is(err, document.ErrDuplicateFootnoteID))
}

func TestResolveNumbersByFirstReference(t *testing.T) {
	doc := parse(t, "Later[^b], earlier[^a], again[^b].\n\n[^a]: A.\n\n[^b]: B.\n\n[^c]: C.\n")

	resolved, err := footnotes.NewResolver().Resolve(doc)
	require.NoError(t, err)
	require.Equal(t, []string{"b", "a"}, resolved.Order)
	require.Equal(t, 1, resolved.Number("b"))
	require.Equal(t, 2, resolved.Number("a"))
	require.Zero(t, resolved.Number("c"))
	require.Equal(t, []string{"c"}, resolved.Unreferenced)
	require.Len(t, resolved.Bindings, 3)
	require.Equal(t, 1, resolved.Bindings[2].Number)
}

func TestResolveReferenceInsideDefinition(t *testing.T) {
	doc := parse(t, "Text[^a].\n\n[^a]: See also[^b].\n\n[^b]: Deeper.\n")

	resolved, err := footnotes.NewResolver().Resolve(doc)
	require.NoError(t, err)
	require.Equal(t, []string{"a", "b"}, resolved.Order)
}

func TestResolveNilDocument(t *testing.T) {
	resolved, err := footnotes.NewResolver().Resolve(nil)
	require.ErrorIs(t, err, footnotes.ErrNilDocument)
	require.Nil(t, resolved)
}
