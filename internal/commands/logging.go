package commands

import (
	"strings"

	"github.com/goliatone/go-doccorpus/internal/logging"
	"github.com/goliatone/go-doccorpus/pkg/interfaces"
)

// CommandLogger returns a module-scoped logger for command handlers tagged
// with the component and command module fields.
func CommandLogger(provider interfaces.LoggerProvider, module string) interfaces.Logger {
	name := strings.TrimSpace(module)
	if name == "" {
		name = "core"
	}
	return logging.WithFields(logging.CommandLogger(provider, name), map[string]any{
		"component":      "command",
		"command_module": name,
	})
}

// EnsureLogger returns logger, or a no-op logger when it is nil.
func EnsureLogger(logger interfaces.Logger) interfaces.Logger {
	if logger == nil {
		return logging.NoOp()
	}
	return logger
}
