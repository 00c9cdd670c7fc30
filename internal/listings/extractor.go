// Package listings extracts the code listings embedded in corpus documents
// and keeps a queryable index of them.
package listings

import (
	"iter"
	"slices"
	"strings"

	"github.com/google/uuid"

	"github.com/goliatone/go-doccorpus/internal/document"
)

// Listing is a code listing tagged with the document it came from. Ordinal is
// the 1-based position of the listing within its document.
type Listing struct {
	ID            uuid.UUID `json:"id"`
	DocumentPath  string    `json:"document_path"`
	DocumentTitle string    `json:"document_title"`
	Ordinal       int       `json:"ordinal"`
	Language      string    `json:"language"`
	Source        string    `json:"source"`
	Line          int       `json:"line"`
	Anchor        string    `json:"anchor"`
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithLanguage keeps only listings tagged with language, compared
// case-insensitively. An empty language keeps every listing.
func WithLanguage(language string) Option {
	return func(e *Extractor) {
		e.language = strings.ToLower(strings.TrimSpace(language))
	}
}

// Extractor walks documents and yields their listings.
type Extractor struct {
	language string
}

// NewExtractor returns an extractor configured by opts.
func NewExtractor(opts ...Option) *Extractor {
	e := &Extractor{}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	return e
}

// Extract returns a lazy sequence over the listings of docs, in document
// order then block order. The sequence can be ranged over any number of
// times and yields the same listings with the same ids each time.
func (e *Extractor) Extract(docs ...*document.Document) iter.Seq[Listing] {
	return func(yield func(Listing) bool) {
		for _, doc := range docs {
			if doc == nil {
				continue
			}
			for i, code := range doc.Listings() {
				if e.language != "" && strings.ToLower(code.Language) != e.language {
					continue
				}
				if !yield(newListing(doc, code, i+1)) {
					return
				}
			}
		}
	}
}

// Collect drains seq into a slice.
func Collect(seq iter.Seq[Listing]) []Listing {
	return slices.Collect(seq)
}

func newListing(doc *document.Document, code *document.CodeListing, ordinal int) Listing {
	return Listing{
		ID:            ListingID(doc.Path, ordinal),
		DocumentPath:  doc.Path,
		DocumentTitle: doc.Title,
		Ordinal:       ordinal,
		Language:      code.Language,
		Source:        code.Source,
		Line:          code.Line,
		Anchor:        document.ListingAnchor(doc.Title, ordinal),
	}
}
