package markdown

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/goliatone/go-doccorpus/internal/document"
	"github.com/goliatone/go-doccorpus/internal/footnotes"
	"github.com/goliatone/go-doccorpus/internal/listings"
	"github.com/goliatone/go-doccorpus/internal/logging"
	"github.com/goliatone/go-doccorpus/pkg/interfaces"
)

// Config controls how the corpus service discovers, validates and renders documents.
type Config struct {
	BasePath  string
	Pattern   string
	Recursive bool
	// Workers bounds how many documents are checked concurrently. Zero uses runtime.NumCPU.
	Workers int
	Render  RenderOptions
	// Languages, when set, is the allowlist of listing language tags. Other
	// tags produce warnings, never defects.
	Languages []string
	// Index persists extracted listings to the configured store.
	Index bool
}

// LoadOptions override discovery for a single call.
type LoadOptions struct {
	Pattern   string
	Recursive *bool
}

// ExtractOptions configure a listing extraction run.
type ExtractOptions struct {
	LoadOptions
	Language string
	// Index forces persistence for this call even when Config.Index is false.
	Index bool
}

// ServiceOption customises a Service.
type ServiceOption func(*Service)

// WithLogger sets the logger used by the service.
func WithLogger(logger interfaces.Logger) ServiceOption {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithListingStore sets where extracted listings are indexed.
func WithListingStore(store listings.Store) ServiceOption {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithRenderer replaces the default goldmark renderer.
func WithRenderer(renderer *GoldmarkRenderer) ServiceOption {
	return func(s *Service) {
		if renderer != nil {
			s.renderer = renderer
		}
	}
}

// WithFilesystem reads the corpus from fsys instead of the base path on disk.
func WithFilesystem(fsys fs.FS) ServiceOption {
	return func(s *Service) {
		if fsys != nil {
			s.fs = fsys
		}
	}
}

// Service runs the Parser, Resolver and Extractor over a corpus directory.
type Service struct {
	cfg       Config
	fs        fs.FS
	loader    *Loader
	resolver  *footnotes.Resolver
	renderer  *GoldmarkRenderer
	store     listings.Store
	logger    interfaces.Logger
	languages map[string]struct{}
}

// NewService constructs a corpus service. Without WithFilesystem the corpus
// is read from cfg.BasePath, which must exist.
func NewService(cfg Config, opts ...ServiceOption) (*Service, error) {
	s := &Service{
		cfg:      cfg,
		resolver: footnotes.NewResolver(),
		store:    listings.NoOpStore{},
		logger:   logging.NoOp(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}

	if s.fs == nil {
		filesystem, err := prepareFilesystem(cfg.BasePath)
		if err != nil {
			return nil, err
		}
		s.fs = filesystem
	}
	if s.renderer == nil {
		s.renderer = NewGoldmarkRenderer(cfg.Render)
	}

	s.loader = NewLoader(s.fs, LoaderConfig{
		BasePath:  cfg.BasePath,
		Pattern:   cfg.Pattern,
		Recursive: cfg.Recursive,
	})

	if len(cfg.Languages) > 0 {
		s.languages = make(map[string]struct{}, len(cfg.Languages))
		for _, lang := range cfg.Languages {
			if trimmed := strings.ToLower(strings.TrimSpace(lang)); trimmed != "" {
				s.languages[trimmed] = struct{}{}
			}
		}
	}

	return s, nil
}

// Load reads and parses a single document relative to the base path.
func (s *Service) Load(ctx context.Context, path string) (*LoadResult, error) {
	return s.loader.LoadFile(ctx, s.normalisePath(path))
}

// LoadDirectory reads and parses every matching document under dir.
func (s *Service) LoadDirectory(ctx context.Context, dir string, opts LoadOptions) ([]*LoadResult, error) {
	return s.loader.LoadDirectory(ctx, s.normalisePath(dir), toLoaderParams(opts))
}

// Check parses and resolves every document under dir, spreading documents
// across a bounded set of workers. Authoring defects land in the report;
// read failures are returned as the error.
func (s *Service) Check(ctx context.Context, dir string, opts LoadOptions) (*CheckReport, error) {
	started := time.Now()
	root := s.normalisePath(dir)

	paths, err := s.loader.Discover(ctx, root, toLoaderParams(opts))
	if err != nil {
		return nil, err
	}

	reports := make([]DocumentReport, len(paths))
	var (
		mu      sync.Mutex
		readErr []error
	)

	jobs := make(chan int)
	var wg sync.WaitGroup
	for i := 0; i < s.effectiveWorkerCount(len(paths)); i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				if ctx.Err() != nil {
					return
				}
				result, err := s.loader.LoadFile(ctx, paths[idx])
				if err != nil {
					mu.Lock()
					readErr = append(readErr, err)
					mu.Unlock()
					continue
				}
				reports[idx] = s.CheckDocument(result)
			}
		}()
	}

dispatch:
	for idx := range paths {
		select {
		case <-ctx.Done():
			break dispatch
		case jobs <- idx:
		}
	}
	close(jobs)
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(readErr) > 0 {
		return nil, errors.Join(readErr...)
	}

	report := &CheckReport{
		Directory: root,
		Documents: reports,
		Duration:  time.Since(started),
	}
	s.logger.WithContext(ctx).Info("markdown.check.completed",
		"directory", root,
		"documents", len(reports),
		"defects", report.DefectCount(),
		"warnings", report.WarningCount(),
		"duration", report.Duration,
	)
	return report, nil
}

// CheckDocument resolves the footnotes of a loaded document and gathers its
// defects and warnings. Parse defects and resolution defects are merged so
// authors see every problem in one pass.
func (s *Service) CheckDocument(result *LoadResult) DocumentReport {
	doc := result.Document
	report := DocumentReport{
		Path:      doc.Path,
		Title:     doc.Title,
		Bytes:     len(result.Source),
		Listings:  len(doc.Listings()),
		Footnotes: len(doc.Definitions()),
	}

	defects := append(document.Defects(nil), result.Defects...)
	resolved, err := s.resolver.Resolve(doc)
	if err != nil {
		defects = append(defects, document.AsDefects(err)...)
	}
	report.Defects = defects.Sorted()
	report.Resolved = resolved

	if resolved != nil {
		for _, id := range resolved.Unreferenced {
			def, _ := resolved.Lookup(id)
			report.Warnings = append(report.Warnings, fmt.Sprintf("%s:%d: footnote [^%s] is never referenced", doc.Path, def.Line, id))
		}
	}
	report.Warnings = append(report.Warnings, s.languageWarnings(doc)...)

	logger := logging.WithDocumentContext(s.logger, doc.Path, "check")
	if len(report.Defects) > 0 {
		logger.Warn("markdown.document.defects", "count", len(report.Defects), "error", report.Defects)
	} else {
		logger.Debug("markdown.document.checked", "listings", report.Listings, "footnotes", report.Footnotes)
	}
	return report
}

func (s *Service) languageWarnings(doc *document.Document) []string {
	if len(s.languages) == 0 {
		return nil
	}
	var warnings []string
	for i, code := range doc.Listings() {
		lang := strings.ToLower(code.Language)
		if lang == "" {
			continue
		}
		if _, ok := s.languages[lang]; !ok {
			warnings = append(warnings, fmt.Sprintf("%s:%d: listing %d uses language %q outside the allowlist", doc.Path, code.Line, i+1, code.Language))
		}
	}
	return warnings
}

// Extract collects the listings of every defect-free document under dir.
// Documents with defects are skipped and reported. When indexing is enabled
// each clean document's stored listings are replaced.
func (s *Service) Extract(ctx context.Context, dir string, opts ExtractOptions) (*ExtractResult, error) {
	results, err := s.LoadDirectory(ctx, dir, opts.LoadOptions)
	if err != nil {
		return nil, err
	}

	extractor := listings.NewExtractor(listings.WithLanguage(opts.Language))
	index := s.cfg.Index || opts.Index
	out := &ExtractResult{}

	for _, result := range results {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		report := s.CheckDocument(result)
		if len(report.Defects) > 0 {
			s.logger.WithContext(ctx).Warn("markdown.extract.skipped", "document_path", report.Path, "defects", len(report.Defects))
			out.Skipped = append(out.Skipped, report)
			continue
		}

		found := listings.Collect(extractor.Extract(result.Document))
		out.Listings = append(out.Listings, found...)

		if !index {
			continue
		}
		// The index keeps every listing of a document, whatever the language filter.
		all := found
		if opts.Language != "" {
			all = listings.Collect(listings.NewExtractor().Extract(result.Document))
		}
		if err := s.store.Replace(ctx, result.Document.Path, all); err != nil {
			return nil, fmt.Errorf("markdown extract: index %s: %w", result.Document.Path, err)
		}
		out.Indexed += len(all)
	}

	s.logger.WithContext(ctx).Info("markdown.extract.completed",
		"listings", len(out.Listings),
		"skipped", len(out.Skipped),
		"indexed", out.Indexed,
	)
	return out, nil
}

// Render converts a defect-free document to HTML. Documents with defects
// fail with their document.Defects.
func (s *Service) Render(ctx context.Context, path string) ([]byte, error) {
	result, err := s.Load(ctx, path)
	if err != nil {
		return nil, err
	}
	report := s.CheckDocument(result)
	if len(report.Defects) > 0 {
		return nil, report.Defects
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.renderer.Render(result.Document)
}

// Store exposes the listing store the service indexes into.
func (s *Service) Store() listings.Store {
	return s.store
}

func (s *Service) effectiveWorkerCount(documents int) int {
	workers := s.cfg.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers < 1 {
		workers = 1
	}
	if documents > 0 && workers > documents {
		return documents
	}
	return workers
}

func (s *Service) normalisePath(path string) string {
	if strings.TrimSpace(path) == "" {
		return "."
	}
	clean := filepath.Clean(path)
	if filepath.IsAbs(clean) && strings.TrimSpace(s.cfg.BasePath) != "" {
		if rel, err := filepath.Rel(s.cfg.BasePath, clean); err == nil {
			return filepath.ToSlash(rel)
		}
	}
	return filepath.ToSlash(clean)
}

func toLoaderParams(opts LoadOptions) LoadParams {
	return LoadParams{
		Pattern:   opts.Pattern,
		Recursive: opts.Recursive,
	}
}

func prepareFilesystem(basePath string) (fs.FS, error) {
	if strings.TrimSpace(basePath) == "" {
		basePath = "."
	}
	if _, err := os.Stat(basePath); err != nil {
		return nil, fmt.Errorf("markdown service: stat base path %s: %w", basePath, err)
	}
	return os.DirFS(basePath), nil
}
