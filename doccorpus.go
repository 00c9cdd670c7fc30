// Package doccorpus validates documentation corpora written in Markdown.
// It parses documents into blocks, binds footnote references to their
// definitions, extracts fenced code listings and reports every authoring
// defect a document carries.
package doccorpus

import (
	"iter"
	"time"

	"github.com/goliatone/go-doccorpus/internal/di"
	"github.com/goliatone/go-doccorpus/internal/document"
	"github.com/goliatone/go-doccorpus/internal/footnotes"
	"github.com/goliatone/go-doccorpus/internal/listings"
	"github.com/goliatone/go-doccorpus/internal/markdown"
)

// Document is a parsed corpus document.
type Document = document.Document

// Defects collects every authoring defect found in a document.
type Defects = document.Defects

// Listing is a code listing extracted from a document.
type Listing = listings.Listing

// CheckReport summarises a corpus check run.
type CheckReport = markdown.CheckReport

// ExtractResult carries the listings of an extraction run.
type ExtractResult = markdown.ExtractResult

// Resolved maps footnote references to their definitions.
type Resolved = footnotes.Resolved

// Service is the corpus service exposed by a Module.
type Service = markdown.Service

var (
	ErrMalformedBlock      = document.ErrMalformedBlock
	ErrUnresolvedFootnote  = document.ErrUnresolvedFootnote
	ErrDuplicateFootnoteID = document.ErrDuplicateFootnoteID
	ErrNilDocument         = footnotes.ErrNilDocument
)

// Module represents the top level runtime facade.
type Module struct {
	container *di.Container
}

// New constructs a module using the provided configuration and optional DI overrides.
func New(cfg Config, opts ...di.Option) (*Module, error) {
	container, err := di.NewContainer(cfg, opts...)
	if err != nil {
		return nil, err
	}
	return &Module{container: container}, nil
}

// Container exposes the underlying DI container for advanced integrations.
func (m *Module) Container() *di.Container {
	return m.container
}

// Corpus returns the configured corpus service.
func (m *Module) Corpus() *Service {
	return m.container.CorpusService()
}

// Close releases resources held by the module.
func (m *Module) Close() error {
	return m.container.Close()
}

// Parse parses source into a document without touching the filesystem. On
// structural defects the partial document is returned with a Defects error.
func Parse(path string, source []byte) (*Document, error) {
	return markdown.BuildDocument(nil, path, source, time.Time{})
}

// Resolve binds the footnote references of doc to their definitions.
func Resolve(doc *Document) (*Resolved, error) {
	return footnotes.NewResolver().Resolve(doc)
}

// Extract returns the lazy listing sequence of docs, optionally narrowed to
// one language.
func Extract(language string, docs ...*Document) iter.Seq[Listing] {
	return listings.NewExtractor(listings.WithLanguage(language)).Extract(docs...)
}

// Serialize writes doc's blocks back to Markdown.
func Serialize(doc *Document) string {
	if doc == nil {
		return ""
	}
	return document.Markdown(doc.Blocks)
}
