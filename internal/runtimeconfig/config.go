package runtimeconfig

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/goliatone/go-doccorpus/internal/markdown"
)

var ErrContentDirRequired = errors.New("doccorpus config: corpus content directory is required")
var ErrPatternInvalid = errors.New("doccorpus config: corpus pattern is not a valid glob")
var ErrWorkersInvalid = errors.New("doccorpus config: corpus workers must be zero or positive")
var ErrParserExtensionUnknown = errors.New("doccorpus config: parser extension is unknown")
var ErrListingLanguageInvalid = errors.New("doccorpus config: listing language must be a single word")

// ErrIndexFeatureRequired keeps the listing index behind the index feature flag.
var ErrIndexFeatureRequired = errors.New("doccorpus config: index feature must be enabled to configure the listing index")
var ErrIndexDriverUnknown = errors.New("doccorpus config: listing index driver is invalid")
var ErrIndexDSNRequired = errors.New("doccorpus config: listing index dsn is required for postgres")

var ErrWatchDebounceInvalid = errors.New("doccorpus config: watch debounce must be zero or positive")
var ErrLoggingProviderRequired = errors.New("doccorpus config: logging provider is required when logging feature is enabled")
var ErrLoggingProviderUnknown = errors.New("doccorpus config: logging provider is invalid")
var ErrLoggingLevelInvalid = errors.New("doccorpus config: logging level is invalid")
var ErrLoggingFormatInvalid = errors.New("doccorpus config: logging format is invalid")

// Config aggregates feature flags and adapter bindings for the corpus toolchain.
type Config struct {
	Corpus   CorpusConfig   `yaml:"corpus"`
	Parser   ParserConfig   `yaml:"parser"`
	Listings ListingsConfig `yaml:"listings"`
	Watch    WatchConfig    `yaml:"watch"`
	Logging  LoggingConfig  `yaml:"logging"`
	Features Features       `yaml:"features"`
}

// CorpusConfig captures where documents live and how they are discovered.
type CorpusConfig struct {
	ContentDir string `yaml:"content_dir"`
	Pattern    string `yaml:"pattern"`
	Recursive  bool   `yaml:"recursive"`
	// Workers bounds concurrent document checks. Zero uses runtime.NumCPU.
	Workers int `yaml:"workers"`
}

// ParserConfig mirrors markdown.RenderOptions for runtime configuration.
type ParserConfig struct {
	Extensions []string `yaml:"extensions"`
	Sanitize   bool     `yaml:"sanitize"`
	HardWraps  bool     `yaml:"hard_wraps"`
	SafeMode   bool     `yaml:"safe_mode"`
}

// ListingsConfig controls listing checks and the persistent listing index.
type ListingsConfig struct {
	// Languages is the allowlist of listing language tags. Empty allows any tag.
	Languages []string    `yaml:"languages"`
	Index     IndexConfig `yaml:"index"`
}

// IndexConfig selects the database backing the listing index.
type IndexConfig struct {
	Enabled bool   `yaml:"enabled"`
	Driver  string `yaml:"driver"`
	DSN     string `yaml:"dsn"`
}

// WatchConfig captures watcher behaviour.
type WatchConfig struct {
	Debounce time.Duration `yaml:"debounce"`
}

// LoggingConfig captures provider-specific options for runtime logging.
type LoggingConfig struct {
	Provider  string   `yaml:"provider"`
	Level     string   `yaml:"level"`
	Format    string   `yaml:"format"`
	AddSource bool     `yaml:"add_source"`
	Focus     []string `yaml:"focus"`
}

// Features toggles module functionality.
type Features struct {
	Index  bool `yaml:"index"`
	Watch  bool `yaml:"watch"`
	Logger bool `yaml:"logger"`
}

// DefaultConfig returns defaults for checking a local content directory.
func DefaultConfig() Config {
	return Config{
		Corpus: CorpusConfig{
			ContentDir: "content",
			Pattern:    "*.md",
			Recursive:  true,
		},
		Parser: ParserConfig{},
		Listings: ListingsConfig{
			Index: IndexConfig{
				Driver: "sqlite",
			},
		},
		Watch: WatchConfig{
			Debounce: 500 * time.Millisecond,
		},
		Logging: LoggingConfig{
			Provider: "console",
			Level:    "info",
		},
		Features: Features{
			Watch: true,
		},
	}
}

// Validate performs high-level consistency checks.
func (cfg Config) Validate() error {
	if strings.TrimSpace(cfg.Corpus.ContentDir) == "" {
		return ErrContentDirRequired
	}
	if pattern := strings.TrimSpace(cfg.Corpus.Pattern); pattern != "" && !doublestar.ValidatePattern(pattern) {
		return fmt.Errorf("%w: %s", ErrPatternInvalid, pattern)
	}
	if cfg.Corpus.Workers < 0 {
		return fmt.Errorf("%w: %d", ErrWorkersInvalid, cfg.Corpus.Workers)
	}
	for _, name := range cfg.Parser.Extensions {
		if !markdown.KnownExtension(name) {
			return fmt.Errorf("%w: %s", ErrParserExtensionUnknown, name)
		}
	}
	for _, language := range cfg.Listings.Languages {
		trimmed := strings.TrimSpace(language)
		if trimmed == "" || strings.ContainsAny(trimmed, " \t`") {
			return fmt.Errorf("%w: %q", ErrListingLanguageInvalid, language)
		}
	}
	if cfg.Listings.Index.Enabled {
		if !cfg.Features.Index {
			return ErrIndexFeatureRequired
		}
		driver := NormalizeDriver(cfg.Listings.Index.Driver)
		switch driver {
		case "sqlite":
		case "postgres":
			if strings.TrimSpace(cfg.Listings.Index.DSN) == "" {
				return ErrIndexDSNRequired
			}
		default:
			return fmt.Errorf("%w: %s", ErrIndexDriverUnknown, cfg.Listings.Index.Driver)
		}
	}
	if cfg.Watch.Debounce < 0 {
		return fmt.Errorf("%w: %s", ErrWatchDebounceInvalid, cfg.Watch.Debounce)
	}
	if cfg.Features.Logger {
		provider := normalizeProvider(cfg.Logging.Provider)
		if provider == "" {
			return ErrLoggingProviderRequired
		}
		if !isSupportedProvider(provider) {
			return fmt.Errorf("%w: %s", ErrLoggingProviderUnknown, provider)
		}
		if level := strings.TrimSpace(cfg.Logging.Level); level != "" && !isSupportedLevel(level) {
			return fmt.Errorf("%w: %s", ErrLoggingLevelInvalid, level)
		}
		if provider == "gologger" {
			if format := strings.TrimSpace(cfg.Logging.Format); format != "" && !isSupportedFormat(format) {
				return fmt.Errorf("%w: %s", ErrLoggingFormatInvalid, format)
			}
		}
	}
	return nil
}

// IndexActive reports whether extracted listings should be persisted.
func (cfg Config) IndexActive() bool {
	return cfg.Features.Index && cfg.Listings.Index.Enabled
}

// NormalizeDriver folds driver aliases onto "sqlite" or "postgres". Unknown
// names are returned lower-cased.
func NormalizeDriver(driver string) string {
	switch name := strings.ToLower(strings.TrimSpace(driver)); name {
	case "", "sqlite", "sqlite3":
		return "sqlite"
	case "postgres", "postgresql", "pg":
		return "postgres"
	default:
		return name
	}
}

func normalizeProvider(provider string) string {
	return strings.ToLower(strings.TrimSpace(provider))
}

func isSupportedProvider(provider string) bool {
	switch provider {
	case "console", "gologger":
		return true
	default:
		return false
	}
}

func isSupportedLevel(level string) bool {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace", "debug", "info", "warn", "warning", "error", "fatal":
		return true
	default:
		return false
	}
}

func isSupportedFormat(format string) bool {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "json", "console", "text", "pretty":
		return true
	default:
		return false
	}
}
