package document

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrMalformedBlock marks structural defects such as unterminated fences.
	ErrMalformedBlock = errors.New("document: malformed block")
	// ErrUnresolvedFootnote marks a footnote reference with no definition.
	ErrUnresolvedFootnote = errors.New("document: unresolved footnote")
	// ErrDuplicateFootnoteID marks a footnote id defined more than once.
	ErrDuplicateFootnoteID = errors.New("document: duplicate footnote id")
)

// MalformedBlockError reports a block the grammar cannot accept.
type MalformedBlockError struct {
	Path   string
	Line   int
	Reason string
}

func (e *MalformedBlockError) Error() string {
	return fmt.Sprintf("%s: malformed block: %s", location(e.Path, e.Line), e.Reason)
}

func (e *MalformedBlockError) Unwrap() error { return ErrMalformedBlock }

// UnresolvedFootnoteError reports a reference whose id has no definition in
// the same document.
type UnresolvedFootnoteError struct {
	Path string
	ID   string
	Line int
}

func (e *UnresolvedFootnoteError) Error() string {
	return fmt.Sprintf("%s: unresolved footnote [^%s]", location(e.Path, e.Line), e.ID)
}

func (e *UnresolvedFootnoteError) Unwrap() error { return ErrUnresolvedFootnote }

// DuplicateFootnoteIDError reports a definition whose id was already
// defined at FirstLine.
type DuplicateFootnoteIDError struct {
	Path      string
	ID        string
	Line      int
	FirstLine int
}

func (e *DuplicateFootnoteIDError) Error() string {
	return fmt.Sprintf("%s: duplicate footnote id [^%s] (first defined on line %d)", location(e.Path, e.Line), e.ID, e.FirstLine)
}

func (e *DuplicateFootnoteIDError) Unwrap() error { return ErrDuplicateFootnoteID }

// Defects collects every authoring defect found in a document so authors can
// fix them in one pass.
type Defects []error

func (d Defects) Error() string {
	switch len(d) {
	case 0:
		return "document: no defects"
	case 1:
		return d[0].Error()
	}
	parts := make([]string, 0, len(d))
	for _, err := range d {
		parts = append(parts, err.Error())
	}
	return fmt.Sprintf("%d defects: %s", len(d), strings.Join(parts, "; "))
}

// Unwrap exposes the individual defects to errors.Is and errors.As.
func (d Defects) Unwrap() []error {
	return []error(d)
}

// Err returns nil when the list is empty so callers can return it directly.
func (d Defects) Err() error {
	if len(d) == 0 {
		return nil
	}
	return d
}

// Sorted returns a copy ordered by line; ties keep their discovery order.
func (d Defects) Sorted() Defects {
	out := append(Defects(nil), d...)
	sort.SliceStable(out, func(i, j int) bool {
		return DefectLine(out[i]) < DefectLine(out[j])
	})
	return out
}

// AsDefects unpacks err into a defect list. Errors that are not a Defects
// list become a single-entry list.
func AsDefects(err error) Defects {
	if err == nil {
		return nil
	}
	var defects Defects
	if errors.As(err, &defects) {
		return defects
	}
	return Defects{err}
}

// DefectLine returns the source line carried by a defect, or zero.
func DefectLine(err error) int {
	var malformed *MalformedBlockError
	if errors.As(err, &malformed) {
		return malformed.Line
	}
	var unresolved *UnresolvedFootnoteError
	if errors.As(err, &unresolved) {
		return unresolved.Line
	}
	var duplicate *DuplicateFootnoteIDError
	if errors.As(err, &duplicate) {
		return duplicate.Line
	}
	return 0
}

// DefectKind returns a stable label for the defect class.
func DefectKind(err error) string {
	switch {
	case errors.Is(err, ErrMalformedBlock):
		return "malformed_block"
	case errors.Is(err, ErrUnresolvedFootnote):
		return "unresolved_footnote"
	case errors.Is(err, ErrDuplicateFootnoteID):
		return "duplicate_footnote_id"
	default:
		return "unknown"
	}
}

func location(path string, line int) string {
	if path == "" {
		path = "<input>"
	}
	if line <= 0 {
		return path
	}
	return fmt.Sprintf("%s:%d", path, line)
}
