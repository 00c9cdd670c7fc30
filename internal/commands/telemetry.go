package commands

import (
	"context"
	"time"

	command "github.com/goliatone/go-command"

	"github.com/goliatone/go-doccorpus/internal/logging"
	"github.com/goliatone/go-doccorpus/pkg/interfaces"
)

// TelemetryStatus classifies how a command run ended.
type TelemetryStatus string

const (
	TelemetryStatusSuccess      TelemetryStatus = "success"
	TelemetryStatusFailed       TelemetryStatus = "failed"
	TelemetryStatusContextError TelemetryStatus = "context_error"
)

// Event is the log message used for the status, e.g. "command.execute.failed".
func (s TelemetryStatus) Event() string {
	return "command.execute." + string(s)
}

// TelemetryInfo describes a finished command run.
type TelemetryInfo struct {
	Command   string
	Operation string
	Fields    map[string]any
	Duration  time.Duration
	Error     error
	Status    TelemetryStatus
	Logger    interfaces.Logger
}

// Telemetry is invoked once per Execute after the wrapped function returns.
type Telemetry[T command.Message] func(ctx context.Context, msg T, info TelemetryInfo)

// DefaultTelemetry logs each outcome through logger with the run's fields.
func DefaultTelemetry[T command.Message](logger interfaces.Logger) Telemetry[T] {
	logger = EnsureLogger(logger)
	return func(ctx context.Context, _ T, info TelemetryInfo) {
		logOutcome(logging.WithFields(logger, info.Fields).WithContext(ctx), info)
	}
}

func logOutcome(logger interfaces.Logger, info TelemetryInfo) {
	if info.Status == TelemetryStatusSuccess {
		logger.Info(info.Status.Event(), "duration_ms", info.Duration.Milliseconds())
		return
	}
	logger.Error(info.Status.Event(), "duration_ms", info.Duration.Milliseconds(), "error", info.Error)
}
