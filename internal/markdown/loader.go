package markdown

import (
	"context"
	"crypto/sha256"
	"fmt"
	"io/fs"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/goliatone/go-doccorpus/internal/document"
)

// LoaderConfig configures how corpus files are discovered within a base directory.
type LoaderConfig struct {
	// BasePath is the root directory where corpus documents live.
	BasePath string
	// Pattern limits discovered files to those matching the supplied glob (defaults to "*.md").
	// Patterns containing "/" match the corpus-relative path; "**" spans directories.
	Pattern string
	// Recursive controls whether sub-directories are traversed.
	Recursive bool
}

// Loader turns filesystem paths into parsed documents.
type Loader struct {
	fs        fs.FS
	basePath  string
	pattern   string
	recursive bool
	parser    *Parser
}

// NewLoader constructs a Loader using the provided filesystem and configuration.
func NewLoader(filesystem fs.FS, cfg LoaderConfig) *Loader {
	pattern := cfg.Pattern
	if strings.TrimSpace(pattern) == "" {
		pattern = "*.md"
	}

	return &Loader{
		fs:        filesystem,
		basePath:  filepath.Clean(cfg.BasePath),
		pattern:   pattern,
		recursive: cfg.Recursive,
		parser:    NewParser(),
	}
}

// LoadFile reads and parses a single document. Authoring defects do not
// fail the call; they are carried on the result.
func (l *Loader) LoadFile(ctx context.Context, name string) (*LoadResult, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	rel, err := l.makeRelative(name)
	if err != nil {
		return nil, err
	}
	rel = filepath.ToSlash(rel)

	data, err := fs.ReadFile(l.fs, rel)
	if err != nil {
		return nil, fmt.Errorf("corpus loader read %s: %w", rel, err)
	}

	info, err := fs.Stat(l.fs, rel)
	if err != nil {
		return nil, fmt.Errorf("corpus loader stat %s: %w", rel, err)
	}

	doc, parseErr := BuildDocument(l.parser, rel, data, info.ModTime())
	sum := sha256.Sum256(data)
	doc.Checksum = sum[:]

	return &LoadResult{
		Document: doc,
		Source:   data,
		Defects:  document.AsDefects(parseErr),
	}, nil
}

// LoadDirectory discovers corpus files under dir and returns parsed
// documents sorted by path.
func (l *Loader) LoadDirectory(ctx context.Context, dir string, opts LoadParams) ([]*LoadResult, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	root, err := l.makeRelative(dir)
	if err != nil {
		return nil, err
	}
	root = filepath.ToSlash(filepath.Clean(root))

	paths, err := l.Discover(ctx, root, opts)
	if err != nil {
		return nil, err
	}

	results := make([]*LoadResult, 0, len(paths))
	for _, p := range paths {
		result, err := l.LoadFile(ctx, p)
		if err != nil {
			return nil, err
		}
		results = append(results, result)
	}
	return results, nil
}

// Discover lists the corpus-relative paths under root that match the
// configured pattern, sorted.
func (l *Loader) Discover(ctx context.Context, root string, opts LoadParams) ([]string, error) {
	var paths []string
	walkErr := fs.WalkDir(l.fs, root, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}

		if d.IsDir() {
			if !l.shouldRecurse(root, p, opts.Recursive) {
				return fs.SkipDir
			}
			return nil
		}

		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		if l.Matches(p, opts.Pattern) {
			paths = append(paths, filepath.ToSlash(p))
		}
		return nil
	})
	if walkErr != nil {
		return nil, walkErr
	}

	sort.Strings(paths)
	return paths, nil
}

func (l *Loader) shouldRecurse(root, current string, override *bool) bool {
	recursive := l.recursive
	if override != nil {
		recursive = *override
	}
	if recursive {
		return true
	}
	return path.Clean(root) == path.Clean(current)
}

// Matches reports whether the corpus-relative path matches override, or the
// loader pattern when override is empty.
func (l *Loader) Matches(p string, override string) bool {
	pattern := override
	if strings.TrimSpace(pattern) == "" {
		pattern = l.pattern
	}
	pattern = filepath.ToSlash(pattern)
	p = filepath.ToSlash(p)

	target := p
	if !strings.Contains(pattern, "/") {
		target = path.Base(p)
	}
	match, err := doublestar.Match(pattern, target)
	if err != nil {
		return false
	}
	return match
}

func (l *Loader) makeRelative(p string) (string, error) {
	clean := filepath.Clean(p)
	if !filepath.IsAbs(clean) {
		return clean, nil
	}
	if l.basePath == "" {
		return "", fmt.Errorf("corpus loader: absolute path %s provided without base path", p)
	}
	rel, err := filepath.Rel(l.basePath, clean)
	if err != nil {
		return "", fmt.Errorf("corpus loader: make relative %s: %w", p, err)
	}
	return rel, nil
}

// LoadResult carries the parsed document along with the raw source and the
// authoring defects found while parsing.
type LoadResult struct {
	Document *document.Document
	Source   []byte
	Defects  document.Defects
}

// LoadParams provide call-specific overrides for pattern matching and recursion.
type LoadParams struct {
	Pattern   string
	Recursive *bool
}
