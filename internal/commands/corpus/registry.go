package corpuscmd

import (
	"context"
	"errors"

	command "github.com/goliatone/go-command"

	"github.com/goliatone/go-doccorpus/internal/commands"
	"github.com/goliatone/go-doccorpus/pkg/interfaces"
)

// CommandRegistry is the minimal registration contract expected when wiring command handlers.
type CommandRegistry interface {
	RegisterCommand(handler any) error
}

// CronRegistrar matches the function signature used by go-command registries.
type CronRegistrar func(command.HandlerConfig, any) error

// HandlerSet groups the corpus command handlers produced by RegisterCorpusCommands.
type HandlerSet struct {
	Check   *CheckCorpusHandler
	Extract *ExtractListingsHandler
	Render  *RenderDocumentHandler
}

// Option customises handler wiring during registration.
type Option func(*options)

type options struct {
	checkSink   CheckSink
	extractSink ExtractSink
	renderSink  RenderSink

	checkHandlerOpts   []commands.HandlerOption[CheckCorpusCommand]
	extractHandlerOpts []commands.HandlerOption[ExtractListingsCommand]
	renderHandlerOpts  []commands.HandlerOption[RenderDocumentCommand]
}

// WithCheckSink receives every check report.
func WithCheckSink(sink CheckSink) Option {
	return func(cfg *options) { cfg.checkSink = sink }
}

// WithExtractSink receives every extraction result.
func WithExtractSink(sink ExtractSink) Option {
	return func(cfg *options) { cfg.extractSink = sink }
}

// WithRenderSink receives every rendered document.
func WithRenderSink(sink RenderSink) Option {
	return func(cfg *options) { cfg.renderSink = sink }
}

// WithCheckHandlerOptions forwards options to the CheckCorpusHandler constructor.
func WithCheckHandlerOptions(opts ...commands.HandlerOption[CheckCorpusCommand]) Option {
	return func(cfg *options) {
		cfg.checkHandlerOpts = append(cfg.checkHandlerOpts, opts...)
	}
}

// WithExtractHandlerOptions forwards options to the ExtractListingsHandler constructor.
func WithExtractHandlerOptions(opts ...commands.HandlerOption[ExtractListingsCommand]) Option {
	return func(cfg *options) {
		cfg.extractHandlerOpts = append(cfg.extractHandlerOpts, opts...)
	}
}

// WithRenderHandlerOptions forwards options to the RenderDocumentHandler constructor.
func WithRenderHandlerOptions(opts ...commands.HandlerOption[RenderDocumentCommand]) Option {
	return func(cfg *options) {
		cfg.renderHandlerOpts = append(cfg.renderHandlerOpts, opts...)
	}
}

// RegisterCorpusCommands builds the corpus command handlers and registers them with the
// provided registry. The constructed handlers are returned so callers can wire
// additional integrations (dispatcher, cron) as needed.
func RegisterCorpusCommands(reg CommandRegistry, service CorpusService, provider interfaces.LoggerProvider, gates FeatureGates, opts ...Option) (*HandlerSet, error) {
	if service == nil {
		return nil, errors.New("corpus command registration: service is nil")
	}

	cfg := options{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	logger := commands.CommandLogger(provider, "corpus")

	set := &HandlerSet{
		Check:   NewCheckCorpusHandler(service, logger, cfg.checkSink, cfg.checkHandlerOpts...),
		Extract: NewExtractListingsHandler(service, logger, gates, cfg.extractSink, cfg.extractHandlerOpts...),
		Render:  NewRenderDocumentHandler(service, logger, cfg.renderSink, cfg.renderHandlerOpts...),
	}

	if reg != nil {
		for _, handler := range []any{set.Check, set.Extract, set.Render} {
			if err := reg.RegisterCommand(handler); err != nil {
				return nil, err
			}
		}
	}
	return set, nil
}

// RegisterCheckCron wires the check handler into a cron registrar using the supplied
// command configuration and message payload. The handler runs with a background context.
func RegisterCheckCron(reg CronRegistrar, handler *CheckCorpusHandler, cfg command.HandlerConfig, msg CheckCorpusCommand) error {
	if reg == nil || handler == nil {
		return nil
	}
	return reg(cfg, func() error {
		return handler.Execute(context.Background(), msg)
	})
}
