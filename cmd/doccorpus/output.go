package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/goliatone/go-doccorpus/internal/markdown"
)

const (
	formatText = "text"
	formatJSON = "json"
)

type printer struct {
	w    io.Writer
	json bool
}

func newPrinter(w io.Writer, format string) (*printer, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", formatText:
		return &printer{w: w}, nil
	case formatJSON:
		return &printer{w: w, json: true}, nil
	default:
		return nil, fmt.Errorf("unsupported format %q (want text or json)", format)
	}
}

type documentOutput struct {
	markdown.DocumentReport
	Defects []string `json:"defects,omitempty"`
}

type checkOutput struct {
	Directory string           `json:"directory"`
	Documents []documentOutput `json:"documents"`
	Defects   int              `json:"defect_count"`
	Warnings  int              `json:"warning_count"`
	Listings  int              `json:"listing_count"`
	Bytes     uint64           `json:"bytes"`
	Duration  string           `json:"duration"`
}

func (p *printer) checkReport(report *markdown.CheckReport) {
	if report == nil {
		return
	}
	if p.json {
		out := checkOutput{
			Directory: report.Directory,
			Documents: make([]documentOutput, 0, len(report.Documents)),
			Defects:   report.DefectCount(),
			Warnings:  report.WarningCount(),
			Listings:  report.ListingCount(),
			Bytes:     report.Bytes(),
			Duration:  report.Duration.String(),
		}
		for _, doc := range report.Documents {
			entry := documentOutput{DocumentReport: doc}
			for _, defect := range doc.Defects {
				entry.Defects = append(entry.Defects, defect.Error())
			}
			out.Documents = append(out.Documents, entry)
		}
		p.encode(out)
		return
	}

	for _, doc := range report.Documents {
		for _, defect := range doc.Defects {
			fmt.Fprintf(p.w, "error: %v\n", defect)
		}
		for _, warning := range doc.Warnings {
			fmt.Fprintf(p.w, "warning: %s\n", warning)
		}
	}
	fmt.Fprintf(p.w, "checked %s (%s), %s, %s, %s in %s\n",
		plural(len(report.Documents), "document"),
		humanize.Bytes(report.Bytes()),
		plural(report.ListingCount(), "listing"),
		plural(report.DefectCount(), "defect"),
		plural(report.WarningCount(), "warning"),
		report.Duration.Round(time.Microsecond),
	)
}

func (p *printer) extractResult(result *markdown.ExtractResult) {
	if result == nil {
		return
	}
	if p.json {
		p.encode(result)
		return
	}
	for _, listing := range result.Listings {
		fmt.Fprintf(p.w, "%s:%d\t#%d\t%s\t%s\n",
			listing.DocumentPath, listing.Line, listing.Ordinal, languageLabel(listing.Language), listing.Anchor)
	}
	for _, skipped := range result.Skipped {
		fmt.Fprintf(p.w, "skipped %s: %s\n", skipped.Path, plural(len(skipped.Defects), "defect"))
	}
	summary := fmt.Sprintf("extracted %s", plural(len(result.Listings), "listing"))
	if result.Indexed > 0 {
		summary += fmt.Sprintf(", indexed %s", humanize.Comma(int64(result.Indexed)))
	}
	fmt.Fprintln(p.w, summary)
}

func (p *printer) changed(paths []string) {
	if p.json || len(paths) == 0 {
		return
	}
	fmt.Fprintf(p.w, "changed: %s\n", strings.Join(paths, ", "))
}

func (p *printer) encode(v any) {
	enc := json.NewEncoder(p.w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fmt.Fprintf(p.w, "encode output: %v\n", err)
	}
}

func plural(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	return humanize.Comma(int64(n)) + " " + noun + "s"
}

func languageLabel(language string) string {
	if language == "" {
		return "-"
	}
	return language
}
