// Package footnotes binds footnote references to their definitions within a
// single document and reports every dangling or duplicated marker.
package footnotes

import (
	"errors"

	"github.com/goliatone/go-doccorpus/internal/document"
)

// ErrNilDocument is returned when Resolve is handed no document.
var ErrNilDocument = errors.New("footnotes: nil document")

// Binding ties one reference to the definition it resolves to. Number is the
// display number of the footnote, assigned in order of first reference.
type Binding struct {
	Reference  *document.FootnoteReference
	Definition *document.FootnoteDefinition
	Number     int
}

// Resolved is a document whose references all resolve.
type Resolved struct {
	Document    *document.Document
	Definitions map[string]*document.FootnoteDefinition
	Bindings    []Binding
	// Order lists referenced ids by display number.
	Order []string
	// Unreferenced lists definitions no reference points at, in document order.
	Unreferenced []string
}

// Lookup returns the definition bound to id.
func (r *Resolved) Lookup(id string) (*document.FootnoteDefinition, bool) {
	def, ok := r.Definitions[id]
	return def, ok
}

// Number returns the display number of id, or zero when id is never referenced.
func (r *Resolved) Number(id string) int {
	for i, ordered := range r.Order {
		if ordered == id {
			return i + 1
		}
	}
	return 0
}

// Resolver validates footnote integrity. It is stateless.
type Resolver struct{}

// NewResolver returns a footnote resolver.
func NewResolver() *Resolver {
	return &Resolver{}
}

// Resolve maps every reference of doc onto its definition. It fails with a
// document.Defects error holding one DuplicateFootnoteIDError per repeated
// definition and one UnresolvedFootnoteError per dangling reference.
func (r *Resolver) Resolve(doc *document.Document) (*Resolved, error) {
	if doc == nil {
		return nil, ErrNilDocument
	}

	var defects document.Defects
	definitions := map[string]*document.FootnoteDefinition{}
	var definitionOrder []string

	for _, def := range doc.Definitions() {
		if first, exists := definitions[def.ID]; exists {
			defects = append(defects, &document.DuplicateFootnoteIDError{
				Path:      doc.Path,
				ID:        def.ID,
				Line:      def.Line,
				FirstLine: first.Line,
			})
			continue
		}
		definitions[def.ID] = def
		definitionOrder = append(definitionOrder, def.ID)
	}

	numbers := map[string]int{}
	var order []string
	var bindings []Binding

	for _, ref := range doc.References() {
		def, ok := definitions[ref.ID]
		if !ok {
			defects = append(defects, &document.UnresolvedFootnoteError{
				Path: doc.Path,
				ID:   ref.ID,
				Line: ref.Line,
			})
			continue
		}
		number, seen := numbers[ref.ID]
		if !seen {
			order = append(order, ref.ID)
			number = len(order)
			numbers[ref.ID] = number
		}
		bindings = append(bindings, Binding{
			Reference:  ref,
			Definition: def,
			Number:     number,
		})
	}

	if err := defects.Sorted().Err(); err != nil {
		return nil, err
	}

	var unreferenced []string
	for _, id := range definitionOrder {
		if _, ok := numbers[id]; !ok {
			unreferenced = append(unreferenced, id)
		}
	}

	return &Resolved{
		Document:     doc,
		Definitions:  definitions,
		Bindings:     bindings,
		Order:        order,
		Unreferenced: unreferenced,
	}, nil
}
