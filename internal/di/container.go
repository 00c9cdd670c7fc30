package di

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/uptrace/bun"

	corpuscmd "github.com/goliatone/go-doccorpus/internal/commands/corpus"
	"github.com/goliatone/go-doccorpus/internal/listings"
	"github.com/goliatone/go-doccorpus/internal/logging"
	"github.com/goliatone/go-doccorpus/internal/logging/console"
	"github.com/goliatone/go-doccorpus/internal/logging/gologger"
	"github.com/goliatone/go-doccorpus/internal/markdown"
	"github.com/goliatone/go-doccorpus/internal/runtimeconfig"
	"github.com/goliatone/go-doccorpus/pkg/interfaces"
)

// CommandRegistry is the registration contract command handlers are handed to.
type CommandRegistry = corpuscmd.CommandRegistry

// Container wires module dependencies from a runtime configuration.
type Container struct {
	Config runtimeconfig.Config

	loggerProvider interfaces.LoggerProvider
	fs             fs.FS

	bunDB   *bun.DB
	ownsDB  bool
	store   listings.Store
	service *markdown.Service

	registry    CommandRegistry
	commandOpts []corpuscmd.Option
	commands    *corpuscmd.HandlerSet
}

// Option mutates the container before it is finalised.
type Option func(*Container)

// WithLoggerProvider overrides the provider selected from the logging configuration.
func WithLoggerProvider(provider interfaces.LoggerProvider) Option {
	return func(c *Container) {
		if provider != nil {
			c.loggerProvider = provider
		}
	}
}

// WithBunDB supplies the database backing the listing index. The caller keeps
// ownership and Close leaves it open.
func WithBunDB(db *bun.DB) Option {
	return func(c *Container) {
		c.bunDB = db
	}
}

// WithListingStore overrides the listing store entirely.
func WithListingStore(store listings.Store) Option {
	return func(c *Container) {
		c.store = store
	}
}

// WithFilesystem reads documents from fsys instead of the content directory.
func WithFilesystem(fsys fs.FS) Option {
	return func(c *Container) {
		c.fs = fsys
	}
}

// WithCommandRegistry registers the corpus command handlers with reg.
func WithCommandRegistry(reg CommandRegistry) Option {
	return func(c *Container) {
		c.registry = reg
	}
}

// WithCommandOptions forwards options to corpus command registration.
func WithCommandOptions(opts ...corpuscmd.Option) Option {
	return func(c *Container) {
		c.commandOpts = append(c.commandOpts, opts...)
	}
}

// NewContainer validates cfg and builds the logger provider, listing store,
// corpus service and command handlers.
func NewContainer(cfg runtimeconfig.Config, opts ...Option) (*Container, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c := &Container{Config: cfg}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}

	if err := c.configureLoggerProvider(); err != nil {
		return nil, err
	}
	if err := c.configureStore(context.Background()); err != nil {
		return nil, err
	}
	if err := c.configureService(); err != nil {
		c.Close()
		return nil, err
	}
	if err := c.configureCommands(); err != nil {
		c.Close()
		return nil, err
	}

	logging.ModuleLogger(c.loggerProvider, "doccorpus.di").Debug("container.configured",
		"content_dir", cfg.Corpus.ContentDir,
		"index", cfg.IndexActive(),
		"logging_provider", cfg.Logging.Provider,
	)
	return c, nil
}

func (c *Container) configureLoggerProvider() error {
	if c.loggerProvider != nil {
		return nil
	}
	if !c.Config.Features.Logger {
		return nil
	}
	switch strings.ToLower(strings.TrimSpace(c.Config.Logging.Provider)) {
	case "gologger":
		provider, err := gologger.NewProvider(gologger.Config{
			Level:     c.Config.Logging.Level,
			Format:    c.Config.Logging.Format,
			AddSource: c.Config.Logging.AddSource,
			Focus:     c.Config.Logging.Focus,
		})
		if err != nil {
			return err
		}
		c.loggerProvider = provider
	default:
		level, _ := console.ParseLevel(c.Config.Logging.Level)
		c.loggerProvider = console.NewProvider(console.Options{Level: level})
	}
	return nil
}

func (c *Container) configureStore(ctx context.Context) error {
	if c.store != nil {
		return nil
	}
	if !c.Config.IndexActive() {
		c.store = listings.NoOpStore{}
		return nil
	}
	if c.bunDB == nil {
		db, err := listings.OpenDB(listings.StoreConfig{
			Driver: c.Config.Listings.Index.Driver,
			DSN:    c.Config.Listings.Index.DSN,
		})
		if err != nil {
			return err
		}
		c.bunDB = db
		c.ownsDB = true
	}
	store := listings.NewBunStore(c.bunDB, listings.WithStoreLogger(logging.ListingsLogger(c.loggerProvider)))
	if err := store.EnsureSchema(ctx); err != nil {
		c.Close()
		return fmt.Errorf("di: prepare listing index: %w", err)
	}
	c.store = store
	return nil
}

func (c *Container) configureService() error {
	cfg := c.Config
	opts := []markdown.ServiceOption{
		markdown.WithLogger(logging.MarkdownLogger(c.loggerProvider)),
		markdown.WithListingStore(c.store),
	}
	if c.fs != nil {
		opts = append(opts, markdown.WithFilesystem(c.fs))
	}

	service, err := markdown.NewService(markdown.Config{
		BasePath:  cfg.Corpus.ContentDir,
		Pattern:   cfg.Corpus.Pattern,
		Recursive: cfg.Corpus.Recursive,
		Workers:   cfg.Corpus.Workers,
		Render: markdown.RenderOptions{
			Extensions: cfg.Parser.Extensions,
			HardWraps:  cfg.Parser.HardWraps,
			SafeMode:   cfg.Parser.SafeMode,
			Sanitize:   cfg.Parser.Sanitize,
		},
		Languages: cfg.Listings.Languages,
		Index:     cfg.IndexActive(),
	}, opts...)
	if err != nil {
		return err
	}
	c.service = service
	return nil
}

func (c *Container) configureCommands() error {
	gates := corpuscmd.FeatureGates{
		IndexEnabled: func() bool { return c.Config.IndexActive() },
	}
	set, err := corpuscmd.RegisterCorpusCommands(c.registry, c.service, c.loggerProvider, gates, c.commandOpts...)
	if err != nil {
		return err
	}
	c.commands = set
	return nil
}

// LoggerProvider returns the configured provider, or nil when logging is disabled.
func (c *Container) LoggerProvider() interfaces.LoggerProvider {
	return c.loggerProvider
}

// CorpusService returns the markdown corpus service.
func (c *Container) CorpusService() *markdown.Service {
	return c.service
}

// ListingStore returns the listing store the service indexes into.
func (c *Container) ListingStore() listings.Store {
	return c.store
}

// Commands returns the corpus command handlers.
func (c *Container) Commands() *corpuscmd.HandlerSet {
	return c.commands
}

// Watcher builds a watcher over the content directory using the configured debounce.
func (c *Container) Watcher() (*markdown.Watcher, error) {
	if !c.Config.Features.Watch {
		return nil, ErrWatchDisabled
	}
	return markdown.NewWatcher(c.service, markdown.WatchConfig{
		Root:     c.Config.Corpus.ContentDir,
		Debounce: c.Config.Watch.Debounce,
		Logger:   logging.ModuleLogger(c.loggerProvider, "doccorpus.markdown.watch"),
	})
}

// Close releases the database opened by the container.
func (c *Container) Close() error {
	if c.bunDB == nil || !c.ownsDB {
		return nil
	}
	err := c.bunDB.Close()
	c.bunDB = nil
	return err
}

// ErrWatchDisabled is returned by Watcher when the watch feature is off.
var ErrWatchDisabled = errors.New("di: watch feature disabled")
