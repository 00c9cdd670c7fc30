package markdown

import (
	"time"

	"github.com/goliatone/go-doccorpus/internal/document"
	"github.com/goliatone/go-doccorpus/internal/footnotes"
	"github.com/goliatone/go-doccorpus/internal/listings"
)

// DocumentReport summarises the validation of one document.
type DocumentReport struct {
	Path      string              `json:"path"`
	Title     string              `json:"title"`
	Bytes     int                 `json:"bytes"`
	Listings  int                 `json:"listings"`
	Footnotes int                 `json:"footnotes"`
	Defects   document.Defects    `json:"-"`
	Warnings  []string            `json:"warnings,omitempty"`
	Resolved  *footnotes.Resolved `json:"-"`
}

// Clean reports whether the document has no defects, and no warnings when
// strict is set.
func (r DocumentReport) Clean(strict bool) bool {
	if len(r.Defects) > 0 {
		return false
	}
	return !strict || len(r.Warnings) == 0
}

// CheckReport is the outcome of checking a corpus directory. Documents are
// ordered by path.
type CheckReport struct {
	Directory string           `json:"directory"`
	Documents []DocumentReport `json:"documents"`
	Duration  time.Duration    `json:"duration"`
}

// DefectCount totals defects across documents.
func (r *CheckReport) DefectCount() int {
	total := 0
	for _, doc := range r.Documents {
		total += len(doc.Defects)
	}
	return total
}

// WarningCount totals warnings across documents.
func (r *CheckReport) WarningCount() int {
	total := 0
	for _, doc := range r.Documents {
		total += len(doc.Warnings)
	}
	return total
}

// ListingCount totals listings across documents.
func (r *CheckReport) ListingCount() int {
	total := 0
	for _, doc := range r.Documents {
		total += doc.Listings
	}
	return total
}

// Bytes totals the source size of every checked document.
func (r *CheckReport) Bytes() uint64 {
	var total uint64
	for _, doc := range r.Documents {
		total += uint64(doc.Bytes)
	}
	return total
}

// Clean reports whether every document is clean.
func (r *CheckReport) Clean(strict bool) bool {
	for _, doc := range r.Documents {
		if !doc.Clean(strict) {
			return false
		}
	}
	return true
}

// Err flattens every document's defects into one document.Defects, or nil.
func (r *CheckReport) Err() error {
	var all document.Defects
	for _, doc := range r.Documents {
		all = append(all, doc.Defects...)
	}
	return all.Err()
}

// ExtractResult carries the listings of a corpus extraction run.
type ExtractResult struct {
	Listings []listings.Listing `json:"listings"`
	// Skipped holds the documents left out because they have defects.
	Skipped []DocumentReport `json:"skipped,omitempty"`
	Indexed int              `json:"indexed"`
}
