package commands

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-doccorpus/internal/logging"
	"github.com/goliatone/go-doccorpus/pkg/interfaces"
)

type testMessage struct{}

func (testMessage) Type() string { return "doccorpus.test.message" }

func (testMessage) Validate() error { return nil }

type invalidMessage struct{}

func (invalidMessage) Type() string { return "doccorpus.test.invalid" }

func (invalidMessage) Validate() error {
	return validationError()
}

func validationError() error {
	return errors.New("invalid")
}

func TestHandlerExecuteSuccess(t *testing.T) {
	called := false
	h := NewHandler[testMessage](func(ctx context.Context, msg testMessage) error {
		called = true
		return nil
	})

	if err := h.Execute(context.Background(), testMessage{}); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if !called {
		t.Fatal("expected handler to be invoked")
	}
}

func TestHandlerValidationShortCircuitsExecution(t *testing.T) {
	called := false
	h := NewHandler[invalidMessage](func(ctx context.Context, msg invalidMessage) error {
		called = true
		return nil
	})

	err := h.Execute(context.Background(), invalidMessage{})
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !goerrors.IsCategory(err, goerrors.CategoryValidation) {
		t.Fatalf("expected validation category, got %v", err)
	}
	if called {
		t.Fatal("expected handler not to run when validation fails")
	}
}

func TestHandlerContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	h := NewHandler[testMessage](func(ctx context.Context, msg testMessage) error {
		called = true
		return nil
	})

	err := h.Execute(ctx, testMessage{})
	if err == nil {
		t.Fatal("expected context cancellation error")
	}
	if !goerrors.IsCategory(err, goerrors.CategoryCommand) {
		t.Fatalf("expected command category, got %v", err)
	}
	if called {
		t.Fatal("expected handler not to run when context is cancelled")
	}
}

func TestHandlerWrapsExecutionError(t *testing.T) {
	execErr := errors.New("boom")
	h := NewHandler[testMessage](func(ctx context.Context, msg testMessage) error {
		return execErr
	})

	err := h.Execute(context.Background(), testMessage{})
	if err == nil {
		t.Fatal("expected wrapped execution error")
	}
	if !goerrors.IsCategory(err, goerrors.CategoryCommand) {
		t.Fatalf("expected command category, got %v", err)
	}
	if !goerrors.HasCategory(err, goerrors.CategoryCommand) {
		t.Fatalf("expected command category to propagate, got %v", err)
	}
}

func TestHandlerHonoursTimeoutOption(t *testing.T) {
	h := NewHandler[testMessage](func(ctx context.Context, msg testMessage) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(20 * time.Millisecond):
			return nil
		}
	}, WithTimeout[testMessage](10*time.Millisecond))

	err := h.Execute(context.Background(), testMessage{})
	if err == nil {
		t.Fatal("expected timeout error")
	}
	if !goerrors.IsCategory(err, goerrors.CategoryCommand) {
		t.Fatalf("expected command category for timeout, got %v", err)
	}
}

type recordingLogger struct {
	fields []map[string]any
	infos  []string
	errors []string
}

func (r *recordingLogger) Trace(string, ...any) {}
func (r *recordingLogger) Debug(string, ...any) {}
func (r *recordingLogger) Info(msg string, _ ...any) {
	r.infos = append(r.infos, msg)
}
func (r *recordingLogger) Warn(string, ...any) {}
func (r *recordingLogger) Error(msg string, _ ...any) {
	r.errors = append(r.errors, msg)
}
func (r *recordingLogger) Fatal(string, ...any) {}

func (r *recordingLogger) WithFields(fields map[string]any) interfaces.Logger {
	r.fields = append(r.fields, fields)
	return r
}

func (r *recordingLogger) WithContext(context.Context) interfaces.Logger { return r }

func TestHandlerMessageFieldsReachLogger(t *testing.T) {
	logger := &recordingLogger{}
	h := NewHandler[testMessage](func(context.Context, testMessage) error { return nil },
		WithLogger[testMessage](logger),
		WithOperation[testMessage]("corpus.check"),
		WithMessageFields(func(testMessage) map[string]any {
			return map[string]any{"directory": "docs", "command": "spoofed"}
		}),
	)

	if err := h.Execute(context.Background(), testMessage{}); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if len(logger.fields) == 0 {
		t.Fatal("expected fields to be attached")
	}
	fields := logger.fields[0]
	if fields["directory"] != "docs" || fields["operation"] != "corpus.check" {
		t.Fatalf("unexpected fields %#v", fields)
	}
	if fields["command"] != "doccorpus.test.message" {
		t.Fatalf("expected message type to win over extracted fields, got %#v", fields["command"])
	}
	if len(logger.infos) != 1 || logger.infos[0] != "command.execute.success" {
		t.Fatalf("expected success log, got %v", logger.infos)
	}
}

func TestHandlerTelemetryReceivesOutcome(t *testing.T) {
	var got []TelemetryInfo
	execErr := errors.New("boom")
	h := NewHandler[testMessage](func(context.Context, testMessage) error { return execErr },
		WithTelemetry(func(_ context.Context, _ testMessage, info TelemetryInfo) {
			got = append(got, info)
		}),
	)

	err := h.Execute(context.Background(), testMessage{})
	if !errors.Is(err, execErr) {
		t.Fatalf("expected wrapped exec error, got %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected one telemetry call, got %d", len(got))
	}
	if got[0].Status != TelemetryStatusFailed || got[0].Command != "doccorpus.test.message" {
		t.Fatalf("unexpected telemetry %#v", got[0])
	}
}

func TestDefaultTelemetryLogsByStatus(t *testing.T) {
	logger := &recordingLogger{}
	telemetry := DefaultTelemetry[testMessage](logger)

	telemetry(context.Background(), testMessage{}, TelemetryInfo{Status: TelemetryStatusSuccess})
	telemetry(context.Background(), testMessage{}, TelemetryInfo{Status: TelemetryStatusContextError, Error: context.Canceled})
	telemetry(context.Background(), testMessage{}, TelemetryInfo{Status: TelemetryStatusFailed, Error: errors.New("x")})

	if len(logger.infos) != 1 || len(logger.errors) != 2 {
		t.Fatalf("unexpected log calls infos=%v errors=%v", logger.infos, logger.errors)
	}
	if logger.errors[0] != "command.execute.context_error" || logger.errors[1] != "command.execute.failed" {
		t.Fatalf("unexpected error messages %v", logger.errors)
	}
}

func TestCommandLoggerDefaultsModule(t *testing.T) {
	if CommandLogger(nil, " ") == nil {
		t.Fatal("expected a logger without a provider")
	}
}

func TestWrapErrorsPassThroughNil(t *testing.T) {
	if wrapValidationError(nil) != nil || wrapContextError(nil) != nil || wrapExecuteError(nil) != nil {
		t.Fatal("expected nil errors to stay nil")
	}
	wrapped := wrapExecuteError(errors.New("x"))
	if wrapExecuteError(wrapped) != wrapped {
		t.Fatal("expected already wrapped errors to pass through")
	}
	if !goerrors.IsCategory(wrapContextError(context.DeadlineExceeded), goerrors.CategoryCommand) {
		t.Fatal("expected deadline to map to the command category")
	}
}

func TestHandlerAnnotatesContextWithCommand(t *testing.T) {
	var seen map[string]any
	h := NewHandler[testMessage](func(ctx context.Context, _ testMessage) error {
		seen = logging.ContextFields(ctx)
		return nil
	})
	if err := h.Execute(context.Background(), testMessage{}); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if seen["command"] != "doccorpus.test.message" {
		t.Fatalf("expected command field on context, got %v", seen)
	}
}

func TestWrapContextErrorMatchesWrappedCauses(t *testing.T) {
	err := wrapContextError(fmt.Errorf("load: %w", context.Canceled))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected cause to survive wrapping, got %v", err)
	}
	if !goerrors.IsCategory(err, goerrors.CategoryCommand) {
		t.Fatalf("expected command category, got %v", err)
	}
	if TelemetryStatusContextError.Event() != "command.execute.context_error" {
		t.Fatalf("unexpected event %s", TelemetryStatusContextError.Event())
	}
}
