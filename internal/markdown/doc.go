// Package markdown turns corpus files into validated documents. It holds the
// block parser, the filesystem loader, the goldmark renderer, and the corpus
// service that runs parsing, footnote resolution and listing extraction over
// a directory, plus a watcher that re-checks the corpus on change.
package markdown
