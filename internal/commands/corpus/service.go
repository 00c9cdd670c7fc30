package corpuscmd

import (
	"context"

	"github.com/goliatone/go-doccorpus/internal/markdown"
)

// CorpusService is the subset of markdown.Service the command handlers drive.
type CorpusService interface {
	Check(ctx context.Context, dir string, opts markdown.LoadOptions) (*markdown.CheckReport, error)
	Extract(ctx context.Context, dir string, opts markdown.ExtractOptions) (*markdown.ExtractResult, error)
	Render(ctx context.Context, path string) ([]byte, error)
}

var _ CorpusService = (*markdown.Service)(nil)

// CheckSink receives the report of a check run, including failed ones.
type CheckSink func(*markdown.CheckReport)

// ExtractSink receives the result of an extraction run.
type ExtractSink func(*markdown.ExtractResult)

// RenderSink receives the HTML of a rendered document.
type RenderSink func(path string, html []byte)
