// Package document defines the block model shared by the corpus parser, the
// footnote resolver and the listing extractor. Documents are immutable once
// parsed; every component reads them without synchronisation.
package document
