package markdown

import (
	"context"
	"crypto/sha256"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/goliatone/go-doccorpus/internal/logging"
	"github.com/goliatone/go-doccorpus/pkg/interfaces"
)

const defaultDebounce = 500 * time.Millisecond

// WatchConfig configures a Watcher.
type WatchConfig struct {
	// Root is the directory on disk to watch. It should match the service base path.
	Root     string
	Debounce time.Duration
	Logger   interfaces.Logger
}

// ReportFunc receives a fresh report after a batch of changes. Changed holds
// the corpus-relative paths that triggered the run, sorted.
type ReportFunc func(report *CheckReport, changed []string)

// Watcher re-checks the corpus whenever a matching document changes on disk.
// Bursts of filesystem events are coalesced per debounce window and writes
// that leave the content unchanged are ignored.
type Watcher struct {
	service  *Service
	root     string
	debounce time.Duration
	logger   interfaces.Logger

	pendingMu sync.Mutex
	pending   map[string]fsnotify.Op

	hashes map[string][sha256.Size]byte
}

// NewWatcher builds a watcher checking changes through service.
func NewWatcher(service *Service, cfg WatchConfig) (*Watcher, error) {
	if service == nil {
		return nil, errors.New("markdown watcher: service is required")
	}
	root := strings.TrimSpace(cfg.Root)
	if root == "" {
		root = service.cfg.BasePath
	}
	if root == "" {
		root = "."
	}
	debounce := cfg.Debounce
	if debounce <= 0 {
		debounce = defaultDebounce
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.NoOp()
	}
	return &Watcher{
		service:  service,
		root:     filepath.Clean(root),
		debounce: debounce,
		logger:   logger,
		pending:  make(map[string]fsnotify.Op),
		hashes:   make(map[string][sha256.Size]byte),
	}, nil
}

// Run watches until ctx is cancelled. onReport is called after each batch
// of effective changes.
func (w *Watcher) Run(ctx context.Context, onReport ReportFunc) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fsw.Close()

	if err := w.addWatchesRecursive(fsw, w.root); err != nil {
		return err
	}
	w.seedHashes(ctx)
	w.logger.Info("markdown.watch.started", "root", w.root, "debounce", w.debounce)

	ticker := time.NewTicker(w.debounce)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("markdown.watch.stopped", "root", w.root)
			return nil
		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			w.handleEvent(fsw, event)
		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("markdown.watch.error", "error", err)
		case <-ticker.C:
			changed := w.flushPending()
			if len(changed) == 0 {
				continue
			}
			report, err := w.service.Check(ctx, ".", LoadOptions{})
			if err != nil {
				if ctx.Err() != nil {
					return nil
				}
				w.logger.Error("markdown.watch.check_failed", "error", err)
				continue
			}
			if onReport != nil {
				onReport(report, changed)
			}
		}
	}
}

func (w *Watcher) addWatchesRecursive(fsw *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && skipDir(filepath.Base(path)) {
			return filepath.SkipDir
		}
		if !w.service.cfg.Recursive && path != root {
			return filepath.SkipDir
		}
		if err := fsw.Add(path); err != nil {
			w.logger.Warn("markdown.watch.add_failed", "path", path, "error", err)
		}
		return nil
	})
}

// seedHashes records the current content of the corpus so the first write
// that changes nothing is ignored and removals of existing files are seen.
func (w *Watcher) seedHashes(ctx context.Context) {
	paths, err := w.service.loader.Discover(ctx, ".", LoadParams{})
	if err != nil {
		w.logger.Warn("markdown.watch.seed_failed", "error", err)
		return
	}
	for _, rel := range paths {
		data, err := fs.ReadFile(w.service.fs, rel)
		if err != nil {
			continue
		}
		w.hashes[rel] = sha256.Sum256(data)
	}
}

func (w *Watcher) handleEvent(fsw *fsnotify.Watcher, event fsnotify.Event) {
	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if w.service.cfg.Recursive && !skipDir(filepath.Base(event.Name)) {
				if err := fsw.Add(event.Name); err != nil {
					w.logger.Warn("markdown.watch.add_failed", "path", event.Name, "error", err)
				}
			}
			return
		}
	}

	rel, err := filepath.Rel(w.root, event.Name)
	if err != nil {
		return
	}
	rel = filepath.ToSlash(rel)
	if !w.service.loader.Matches(rel, "") {
		return
	}

	w.pendingMu.Lock()
	w.pending[rel] |= event.Op
	w.pendingMu.Unlock()
	w.logger.Debug("markdown.watch.change", "document_path", rel, "op", event.Op.String())
}

// flushPending drains the pending set and returns the paths whose content
// actually changed.
func (w *Watcher) flushPending() []string {
	w.pendingMu.Lock()
	batch := w.pending
	w.pending = make(map[string]fsnotify.Op)
	w.pendingMu.Unlock()

	var changed []string
	for rel := range batch {
		data, err := os.ReadFile(filepath.Join(w.root, filepath.FromSlash(rel)))
		if err != nil {
			if _, known := w.hashes[rel]; known {
				delete(w.hashes, rel)
				changed = append(changed, rel)
			}
			continue
		}
		sum := sha256.Sum256(data)
		if prev, ok := w.hashes[rel]; ok && prev == sum {
			continue
		}
		w.hashes[rel] = sum
		changed = append(changed, rel)
	}
	sort.Strings(changed)
	return changed
}

func skipDir(name string) bool {
	switch name {
	case ".git", "node_modules", "vendor":
		return true
	}
	return strings.HasPrefix(name, ".") && name != "."
}
