package doccorpus

import "github.com/goliatone/go-doccorpus/internal/runtimeconfig"

var (
	ErrContentDirRequired      = runtimeconfig.ErrContentDirRequired
	ErrPatternInvalid          = runtimeconfig.ErrPatternInvalid
	ErrWorkersInvalid          = runtimeconfig.ErrWorkersInvalid
	ErrParserExtensionUnknown  = runtimeconfig.ErrParserExtensionUnknown
	ErrListingLanguageInvalid  = runtimeconfig.ErrListingLanguageInvalid
	ErrIndexFeatureRequired    = runtimeconfig.ErrIndexFeatureRequired
	ErrIndexDriverUnknown      = runtimeconfig.ErrIndexDriverUnknown
	ErrIndexDSNRequired        = runtimeconfig.ErrIndexDSNRequired
	ErrWatchDebounceInvalid    = runtimeconfig.ErrWatchDebounceInvalid
	ErrLoggingProviderRequired = runtimeconfig.ErrLoggingProviderRequired
	ErrLoggingProviderUnknown  = runtimeconfig.ErrLoggingProviderUnknown
	ErrLoggingLevelInvalid     = runtimeconfig.ErrLoggingLevelInvalid
	ErrLoggingFormatInvalid    = runtimeconfig.ErrLoggingFormatInvalid
	ErrConfigSchema            = runtimeconfig.ErrConfigSchema
)

type (
	Config         = runtimeconfig.Config
	CorpusConfig   = runtimeconfig.CorpusConfig
	ParserConfig   = runtimeconfig.ParserConfig
	ListingsConfig = runtimeconfig.ListingsConfig
	IndexConfig    = runtimeconfig.IndexConfig
	WatchConfig    = runtimeconfig.WatchConfig
	LoggingConfig  = runtimeconfig.LoggingConfig
	Features       = runtimeconfig.Features
)

// DefaultConfig returns the default runtime configuration.
func DefaultConfig() Config {
	return runtimeconfig.DefaultConfig()
}

// LoadConfig reads a YAML configuration file over DefaultConfig.
func LoadConfig(path string) (Config, error) {
	return runtimeconfig.LoadFile(path)
}

// ParseConfig decodes YAML configuration over DefaultConfig.
func ParseConfig(data []byte) (Config, error) {
	return runtimeconfig.Parse(data)
}
