package corpuscmd

import (
	"context"
	"errors"

	command "github.com/goliatone/go-command"
	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-doccorpus/internal/commands"
	"github.com/goliatone/go-doccorpus/internal/document"
	"github.com/goliatone/go-doccorpus/internal/logging"
	"github.com/goliatone/go-doccorpus/internal/markdown"
	"github.com/goliatone/go-doccorpus/pkg/interfaces"
)

const (
	checkOperation   = "corpus.check"
	extractOperation = "corpus.extract_listings"
	renderOperation  = "corpus.render_document"

	// DocumentDefectsCode tags failures caused by authoring defects.
	DocumentDefectsCode = "DOCUMENT_DEFECTS"
	// DocumentWarningsCode tags check runs failed by warnings under FailOnWarnings.
	DocumentWarningsCode = "DOCUMENT_WARNINGS"
)

var (
	// ErrIndexFeatureDisabled is returned when indexing is requested but the index feature is off.
	ErrIndexFeatureDisabled = errors.New("corpus command: index feature disabled")
	// ErrWarningsPresent is wrapped when FailOnWarnings rejects a check run.
	ErrWarningsPresent = errors.New("corpus command: warnings present")
)

var (
	_ command.Commander[CheckCorpusCommand]     = (*CheckCorpusHandler)(nil)
	_ command.Commander[ExtractListingsCommand] = (*ExtractListingsHandler)(nil)
	_ command.Commander[RenderDocumentCommand]  = (*RenderDocumentHandler)(nil)
)

// CheckCorpusHandler validates a corpus via the shared command handler foundation.
type CheckCorpusHandler struct {
	inner *commands.Handler[CheckCorpusCommand]
}

// NewCheckCorpusHandler creates a handler bound to the supplied corpus service.
// The sink, when set, sees every produced report before the outcome is decided.
func NewCheckCorpusHandler(service CorpusService, logger interfaces.Logger, sink CheckSink, opts ...commands.HandlerOption[CheckCorpusCommand]) *CheckCorpusHandler {
	baseLogger := commands.EnsureLogger(logger)

	exec := func(ctx context.Context, msg CheckCorpusCommand) error {
		report, err := service.Check(ctx, msg.Directory, markdown.LoadOptions{Pattern: msg.Pattern})
		if err != nil {
			return err
		}
		if sink != nil {
			sink(report)
		}

		logging.WithFields(baseLogger, map[string]any{
			"document_count": len(report.Documents),
			"defect_count":   report.DefectCount(),
			"warning_count":  report.WarningCount(),
			"listing_count":  report.ListingCount(),
		}).Info("corpus.command.check.completed")

		if err := report.Err(); err != nil {
			return defectsError(err)
		}
		if msg.FailOnWarnings && report.WarningCount() > 0 {
			return goerrors.Wrap(ErrWarningsPresent, goerrors.CategoryValidation, "corpus has warnings").
				WithTextCode(DocumentWarningsCode)
		}
		return nil
	}

	handlerOpts := []commands.HandlerOption[CheckCorpusCommand]{
		commands.WithLogger[CheckCorpusCommand](baseLogger),
		commands.WithOperation[CheckCorpusCommand](checkOperation),
		commands.WithMessageFields(func(msg CheckCorpusCommand) map[string]any {
			fields := map[string]any{"directory": msg.Directory}
			if msg.Pattern != "" {
				fields["pattern"] = msg.Pattern
			}
			if msg.FailOnWarnings {
				fields["fail_on_warnings"] = true
			}
			return fields
		}),
		commands.WithTelemetry(commands.DefaultTelemetry[CheckCorpusCommand](baseLogger)),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &CheckCorpusHandler{inner: commands.NewHandler(exec, handlerOpts...)}
}

// Execute satisfies command.Commander[CheckCorpusCommand].
func (h *CheckCorpusHandler) Execute(ctx context.Context, msg CheckCorpusCommand) error {
	return h.inner.Execute(ctx, msg)
}

// ExtractListingsHandler runs listing extraction via the shared command handler foundation.
type ExtractListingsHandler struct {
	inner *commands.Handler[ExtractListingsCommand]
}

// NewExtractListingsHandler creates a handler bound to the supplied corpus service.
func NewExtractListingsHandler(service CorpusService, logger interfaces.Logger, gates FeatureGates, sink ExtractSink, opts ...commands.HandlerOption[ExtractListingsCommand]) *ExtractListingsHandler {
	baseLogger := commands.EnsureLogger(logger)

	exec := func(ctx context.Context, msg ExtractListingsCommand) error {
		if msg.Index && !gates.indexEnabled() {
			return ErrIndexFeatureDisabled
		}

		result, err := service.Extract(ctx, msg.Directory, markdown.ExtractOptions{
			LoadOptions: markdown.LoadOptions{Pattern: msg.Pattern},
			Language:    msg.Language,
			Index:       msg.Index,
		})
		if err != nil {
			return err
		}
		if sink != nil {
			sink(result)
		}

		logging.WithFields(baseLogger, map[string]any{
			"listing_count": len(result.Listings),
			"skipped_count": len(result.Skipped),
			"indexed_count": result.Indexed,
		}).Info("corpus.command.extract_listings.completed")

		var defects document.Defects
		for _, skipped := range result.Skipped {
			defects = append(defects, skipped.Defects...)
		}
		if err := defects.Err(); err != nil {
			return defectsError(err)
		}
		return nil
	}

	handlerOpts := []commands.HandlerOption[ExtractListingsCommand]{
		commands.WithLogger[ExtractListingsCommand](baseLogger),
		commands.WithOperation[ExtractListingsCommand](extractOperation),
		commands.WithMessageFields(func(msg ExtractListingsCommand) map[string]any {
			fields := map[string]any{"directory": msg.Directory}
			if msg.Pattern != "" {
				fields["pattern"] = msg.Pattern
			}
			if msg.Language != "" {
				fields["language"] = msg.Language
			}
			if msg.Index {
				fields["index"] = true
			}
			return fields
		}),
		commands.WithTelemetry(commands.DefaultTelemetry[ExtractListingsCommand](baseLogger)),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &ExtractListingsHandler{inner: commands.NewHandler(exec, handlerOpts...)}
}

// Execute satisfies command.Commander[ExtractListingsCommand].
func (h *ExtractListingsHandler) Execute(ctx context.Context, msg ExtractListingsCommand) error {
	return h.inner.Execute(ctx, msg)
}

// RenderDocumentHandler renders a single document via the shared command handler foundation.
type RenderDocumentHandler struct {
	inner *commands.Handler[RenderDocumentCommand]
}

// NewRenderDocumentHandler creates a handler bound to the supplied corpus service.
func NewRenderDocumentHandler(service CorpusService, logger interfaces.Logger, sink RenderSink, opts ...commands.HandlerOption[RenderDocumentCommand]) *RenderDocumentHandler {
	baseLogger := commands.EnsureLogger(logger)

	exec := func(ctx context.Context, msg RenderDocumentCommand) error {
		html, err := service.Render(ctx, msg.Path)
		if err != nil {
			var defects document.Defects
			if errors.As(err, &defects) {
				return defectsError(defects)
			}
			return err
		}
		if sink != nil {
			sink(msg.Path, html)
		}
		logging.WithDocumentContext(baseLogger, msg.Path, "render").
			Info("corpus.command.render_document.completed", "bytes", len(html))
		return nil
	}

	handlerOpts := []commands.HandlerOption[RenderDocumentCommand]{
		commands.WithLogger[RenderDocumentCommand](baseLogger),
		commands.WithOperation[RenderDocumentCommand](renderOperation),
		commands.WithMessageFields(func(msg RenderDocumentCommand) map[string]any {
			return map[string]any{"path": msg.Path}
		}),
		commands.WithTelemetry(commands.DefaultTelemetry[RenderDocumentCommand](baseLogger)),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &RenderDocumentHandler{inner: commands.NewHandler(exec, handlerOpts...)}
}

// Execute satisfies command.Commander[RenderDocumentCommand].
func (h *RenderDocumentHandler) Execute(ctx context.Context, msg RenderDocumentCommand) error {
	return h.inner.Execute(ctx, msg)
}

func defectsError(err error) error {
	return goerrors.Wrap(err, goerrors.CategoryValidation, "documents have defects").
		WithTextCode(DocumentDefectsCode)
}
