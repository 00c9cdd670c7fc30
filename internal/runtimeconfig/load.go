package runtimeconfig

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-doccorpus/internal/validation"
)

//go:embed schema.json
var schemaDocument []byte

var configSchema = validation.MustCompile("config.schema.json", schemaDocument)

// ErrConfigSchema wraps configuration files that do not match the schema.
var ErrConfigSchema = errors.New("doccorpus config: file does not match schema")

// LoadFile reads a YAML configuration file over DefaultConfig and validates it.
func LoadFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("doccorpus config: read %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes YAML configuration over DefaultConfig. The document is checked
// against the embedded schema before decoding so unknown keys and wrong types
// are reported with their location.
func Parse(data []byte) (Config, error) {
	cfg := DefaultConfig()

	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return Config{}, fmt.Errorf("doccorpus config: decode: %w", err)
	}
	if raw != nil {
		if err := configSchema.Validate(raw); err != nil {
			return Config{}, fmt.Errorf("%w: %w", ErrConfigSchema, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("doccorpus config: decode: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
