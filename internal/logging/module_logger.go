package logging

import (
	"context"
	"strings"

	"github.com/goliatone/go-doccorpus/pkg/interfaces"
)

const (
	rootModule      = "doccorpus"
	markdownModule  = "doccorpus.markdown"
	listingsModule  = "doccorpus.listings"
	commandsModule  = "doccorpus.commands"
)

const (
	fieldDocumentPath   = "document_path"
	fieldDocumentAction = "action"
)

// ModuleLogger returns a module-scoped logger, defaulting to a no-op
// implementation when no provider is supplied. The returned logger attaches
// the module identifier as structured context so entries can be filtered.
func ModuleLogger(provider interfaces.LoggerProvider, module string) interfaces.Logger {
	if module == "" {
		module = rootModule
	}

	logger := NoOp()
	if provider != nil {
		if provided := provider.GetLogger(module); provided != nil {
			logger = provided
		}
	}
	return WithFields(logger, map[string]any{"module": module})
}

// MarkdownLogger returns the logger namespace reserved for parsing and corpus services.
func MarkdownLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, markdownModule)
}

// ListingsLogger returns the logger namespace reserved for listing extraction and indexing.
func ListingsLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, listingsModule)
}

// CommandLogger returns a logger under the commands namespace, e.g.
// "doccorpus.commands.check".
func CommandLogger(provider interfaces.LoggerProvider, name string) interfaces.Logger {
	module := commandsModule
	if trimmed := strings.Trim(strings.TrimSpace(name), "."); trimmed != "" {
		module = commandsModule + "." + trimmed
	}
	return ModuleLogger(provider, module)
}

// WithDocumentContext enriches logger with the document path and the action
// being performed. Empty values are ignored.
func WithDocumentContext(logger interfaces.Logger, path, action string) interfaces.Logger {
	fields := map[string]any{}
	if trimmed := strings.TrimSpace(path); trimmed != "" {
		fields[fieldDocumentPath] = trimmed
	}
	if trimmed := strings.TrimSpace(action); trimmed != "" {
		fields[fieldDocumentAction] = trimmed
	}
	return WithFields(logger, fields)
}

// NoOp returns a logger that drops every log entry.
func NoOp() interfaces.Logger {
	return noopLogger{}
}

type noopLogger struct{}

var _ interfaces.Logger = noopLogger{}

func (noopLogger) Trace(string, ...any) {}
func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}
func (noopLogger) Fatal(string, ...any) {}

func (n noopLogger) WithFields(map[string]any) interfaces.Logger {
	return n
}

func (n noopLogger) WithContext(context.Context) interfaces.Logger {
	return n
}
