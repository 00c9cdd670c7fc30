package bootstrap

import (
	"fmt"
	"strings"

	"github.com/goliatone/go-doccorpus"
	corpuscmd "github.com/goliatone/go-doccorpus/internal/commands/corpus"
	"github.com/goliatone/go-doccorpus/internal/di"
	"github.com/goliatone/go-doccorpus/internal/logging"
	"github.com/goliatone/go-doccorpus/pkg/interfaces"
)

// Options captures configuration for CLI bootstraps. Empty values keep the
// configuration file (or default) setting.
type Options struct {
	ConfigPath string
	ContentDir string
	Pattern    string
	LogLevel   string
	LogFormat  string
	// Index turns on the listing index, enabling its feature flag as well.
	Index          bool
	LoggerProvider interfaces.LoggerProvider
	CommandOptions []corpuscmd.Option
}

// Module wraps the doccorpus module and the configured command handlers.
type Module struct {
	Module   *doccorpus.Module
	Commands *corpuscmd.HandlerSet
	Logger   interfaces.Logger
}

// Close releases the underlying module.
func (m *Module) Close() error {
	if m == nil || m.Module == nil {
		return nil
	}
	return m.Module.Close()
}

// ResolveConfig loads the configuration file, when given, and applies the
// option overrides on top.
func ResolveConfig(opts Options) (doccorpus.Config, error) {
	cfg := doccorpus.DefaultConfig()
	if path := strings.TrimSpace(opts.ConfigPath); path != "" {
		loaded, err := doccorpus.LoadConfig(path)
		if err != nil {
			return doccorpus.Config{}, err
		}
		cfg = loaded
	}

	if dir := strings.TrimSpace(opts.ContentDir); dir != "" {
		cfg.Corpus.ContentDir = dir
	}
	if pattern := strings.TrimSpace(opts.Pattern); pattern != "" {
		cfg.Corpus.Pattern = pattern
	}
	if level := strings.TrimSpace(opts.LogLevel); level != "" {
		cfg.Features.Logger = true
		cfg.Logging.Level = level
	}
	if format := strings.TrimSpace(opts.LogFormat); format != "" {
		cfg.Features.Logger = true
		cfg.Logging.Provider = "gologger"
		cfg.Logging.Format = format
	}
	if opts.Index {
		cfg.Features.Index = true
		cfg.Listings.Index.Enabled = true
	}
	return cfg, nil
}

// BuildModule constructs a module configured for CLI operations.
func BuildModule(opts Options) (*Module, error) {
	cfg, err := ResolveConfig(opts)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	diOpts := []di.Option{di.WithCommandOptions(opts.CommandOptions...)}
	if opts.LoggerProvider != nil {
		diOpts = append(diOpts, di.WithLoggerProvider(opts.LoggerProvider))
	}

	module, err := doccorpus.New(cfg, diOpts...)
	if err != nil {
		return nil, fmt.Errorf("initialise doccorpus module: %w", err)
	}

	commands := module.Container().Commands()
	if commands == nil {
		_ = module.Close()
		return nil, fmt.Errorf("corpus commands not configured")
	}

	return &Module{
		Module:   module,
		Commands: commands,
		Logger:   logging.ModuleLogger(module.Container().LoggerProvider(), "doccorpus.cli"),
	}, nil
}
