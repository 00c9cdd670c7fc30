// Command doccorpus checks documentation corpora, extracts their code
// listings and renders documents to HTML.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-doccorpus/cmd/doccorpus/internal/bootstrap"
	corpuscmd "github.com/goliatone/go-doccorpus/internal/commands/corpus"
	"github.com/goliatone/go-doccorpus/internal/markdown"
)

const appName = "doccorpus"

var (
	Version   = "0.1.0"
	BuildTime = "dev"
)

var moduleBuilder = bootstrap.BuildModule

func main() {
	if err := execute(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func execute(args []string, stdout, stderr io.Writer) error {
	cmd := rootCmd(stdout, stderr)
	cmd.SetArgs(args)
	return cmd.ExecuteContext(context.Background())
}

type globalFlags struct {
	configPath string
	contentDir string
	pattern    string
	logLevel   string
	logFormat  string
}

func (g globalFlags) options() bootstrap.Options {
	return bootstrap.Options{
		ConfigPath: g.configPath,
		ContentDir: g.contentDir,
		Pattern:    g.pattern,
		LogLevel:   g.logLevel,
		LogFormat:  g.logFormat,
	}
}

func rootCmd(stdout, stderr io.Writer) *cobra.Command {
	flags := &globalFlags{}

	cmd := &cobra.Command{
		Use:   appName,
		Short: "Validate documentation corpora",
		Long: `doccorpus parses Markdown documents, checks that every footnote
reference resolves to exactly one definition and that every code fence is
closed, and extracts fenced code listings for testing or indexing.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	persistent := cmd.PersistentFlags()
	persistent.StringVarP(&flags.configPath, "config", "c", "", "Config file path (YAML)")
	persistent.StringVar(&flags.contentDir, "content-dir", "", "Path to the documentation content root")
	persistent.StringVar(&flags.pattern, "pattern", "", "Glob pattern applied when discovering documents")
	persistent.StringVar(&flags.logLevel, "log-level", "", "Log level (trace, debug, info, warn, error)")
	persistent.StringVar(&flags.logFormat, "log-format", "", "go-logger format (json, console, pretty)")

	cmd.AddCommand(
		checkCmd(flags),
		extractCmd(flags),
		renderCmd(flags),
		watchCmd(flags),
		&cobra.Command{
			Use:   "version",
			Short: "Print version information",
			Run: func(cmd *cobra.Command, _ []string) {
				fmt.Fprintf(cmd.OutOrStdout(), "%s version %s (build: %s)\n", appName, Version, BuildTime)
			},
		},
	)
	return cmd
}

func checkCmd(flags *globalFlags) *cobra.Command {
	var (
		format         string
		failOnWarnings bool
	)
	cmd := &cobra.Command{
		Use:   "check [directory]",
		Short: "Report authoring defects across the corpus",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			printer, err := newPrinter(cmd.OutOrStdout(), format)
			if err != nil {
				return err
			}
			opts := flags.options()
			opts.CommandOptions = []corpuscmd.Option{corpuscmd.WithCheckSink(printer.checkReport)}

			module, err := moduleBuilder(opts)
			if err != nil {
				return fmt.Errorf("bootstrap module: %w", err)
			}
			defer module.Close()

			return module.Commands.Check.Execute(cmd.Context(), corpuscmd.CheckCorpusCommand{
				Directory:      directoryArg(args),
				FailOnWarnings: failOnWarnings,
			})
		},
	}
	cmd.Flags().StringVar(&format, "format", formatText, "Output format (text, json)")
	cmd.Flags().BoolVar(&failOnWarnings, "fail-on-warnings", false, "Exit non-zero when warnings are reported")
	return cmd
}

func extractCmd(flags *globalFlags) *cobra.Command {
	var (
		format   string
		language string
		index    bool
	)
	cmd := &cobra.Command{
		Use:   "extract [directory]",
		Short: "Extract fenced code listings",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			printer, err := newPrinter(cmd.OutOrStdout(), format)
			if err != nil {
				return err
			}
			opts := flags.options()
			opts.Index = index
			opts.CommandOptions = []corpuscmd.Option{corpuscmd.WithExtractSink(printer.extractResult)}

			module, err := moduleBuilder(opts)
			if err != nil {
				return fmt.Errorf("bootstrap module: %w", err)
			}
			defer module.Close()

			return module.Commands.Extract.Execute(cmd.Context(), corpuscmd.ExtractListingsCommand{
				Directory: directoryArg(args),
				Language:  language,
				Index:     index,
			})
		},
	}
	cmd.Flags().StringVar(&format, "format", formatText, "Output format (text, json)")
	cmd.Flags().StringVar(&language, "language", "", "Only extract listings tagged with this language")
	cmd.Flags().BoolVar(&index, "index", false, "Persist listings to the configured index")
	return cmd
}

func renderCmd(flags *globalFlags) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "render <path>",
		Short: "Render one document to HTML",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var writeErr error
			sink := func(_ string, html []byte) {
				if out == "" {
					_, writeErr = cmd.OutOrStdout().Write(html)
					return
				}
				writeErr = os.WriteFile(out, html, 0o644)
			}
			opts := flags.options()
			opts.CommandOptions = []corpuscmd.Option{corpuscmd.WithRenderSink(sink)}

			module, err := moduleBuilder(opts)
			if err != nil {
				return fmt.Errorf("bootstrap module: %w", err)
			}
			defer module.Close()

			if err := module.Commands.Render.Execute(cmd.Context(), corpuscmd.RenderDocumentCommand{Path: args[0]}); err != nil {
				return err
			}
			return writeErr
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "Write HTML to this file instead of stdout")
	return cmd
}

func watchCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Re-check the corpus whenever a document changes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			printer, err := newPrinter(cmd.OutOrStdout(), formatText)
			if err != nil {
				return err
			}
			module, err := moduleBuilder(flags.options())
			if err != nil {
				return fmt.Errorf("bootstrap module: %w", err)
			}
			defer module.Close()

			watcher, err := module.Module.Container().Watcher()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			fmt.Fprintln(cmd.OutOrStdout(), "watching for changes, press Ctrl+C to stop")
			err = watcher.Run(ctx, func(report *markdown.CheckReport, changed []string) {
				printer.changed(changed)
				printer.checkReport(report)
			})
			if err != nil && ctx.Err() == nil {
				return err
			}
			return nil
		},
	}
}

func directoryArg(args []string) string {
	if len(args) == 0 {
		return "."
	}
	return args[0]
}
