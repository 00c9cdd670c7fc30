package markdown

import (
	"strings"
	"testing"
	"time"

	"github.com/goliatone/go-doccorpus/internal/document"
)

func TestGoldmarkRenderer_RenderMarkdown(t *testing.T) {
	renderer := NewGoldmarkRenderer(RenderOptions{})

	html, err := renderer.RenderMarkdown([]byte("# Heading\n\nHello **world**"))
	if err != nil {
		t.Fatalf("RenderMarkdown: %v", err)
	}

	got := string(html)
	if !strings.Contains(got, "<h1") || !strings.Contains(got, "Heading</h1>") {
		t.Fatalf("expected rendered HTML to include <h1>Heading</h1>, got %q", got)
	}
	if !strings.Contains(got, "<strong>world</strong>") {
		t.Fatalf("expected rendered HTML to include <strong>, got %q", got)
	}
}

func TestGoldmarkRenderer_RenderMarkdownWithOptions(t *testing.T) {
	renderer := NewGoldmarkRenderer(RenderOptions{})

	html, err := renderer.RenderMarkdownWithOptions([]byte("line one\nline two"), RenderOptions{
		HardWraps: true,
	})
	if err != nil {
		t.Fatalf("RenderMarkdownWithOptions: %v", err)
	}

	if !strings.Contains(string(html), "line one<br>") {
		t.Fatalf("expected hard wraps in HTML output, got %q", string(html))
	}
}

func TestGoldmarkRenderer_SafeModeEscapesRawHTML(t *testing.T) {
	renderer := NewGoldmarkRenderer(RenderOptions{SafeMode: true})

	html, err := renderer.RenderMarkdown([]byte("<script>alert(1)</script>\n"))
	if err != nil {
		t.Fatalf("RenderMarkdown: %v", err)
	}
	if strings.Contains(string(html), "<script>") {
		t.Fatalf("expected raw HTML to be suppressed, got %q", string(html))
	}
}

func TestGoldmarkRenderer_RenderAnnotatesListings(t *testing.T) {
	source := "# Signals\n\n```elm\nmain = text \"a\"\n```\n\n~~~\nplain\n~~~\n"
	doc, err := BuildDocument(nil, "signals.md", []byte(source), time.Time{})
	if err != nil {
		t.Fatalf("BuildDocument: %v", err)
	}

	html, err := NewGoldmarkRenderer(RenderOptions{}).Render(doc)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	got := string(html)

	for i := 1; i <= 2; i++ {
		if anchor := document.ListingAnchor("Signals", i); !strings.Contains(got, `id="`+anchor+`"`) {
			t.Fatalf("expected anchor %s, got %s", anchor, got)
		}
	}
	if strings.Count(got, "data-language=") != 1 {
		t.Fatalf("expected only the tagged listing to carry data-language, got %s", got)
	}
	if strings.Contains(got, "<html>") || strings.Contains(got, "<body>") {
		t.Fatalf("expected a fragment, got %s", got)
	}
}

func TestGoldmarkRenderer_RenderNilDocument(t *testing.T) {
	if _, err := NewGoldmarkRenderer(RenderOptions{}).Render(nil); err == nil {
		t.Fatalf("expected error for nil document")
	}
}

func TestCollectExtensions(t *testing.T) {
	if got := collectExtensions(nil); len(got) != 2 {
		t.Fatalf("expected GFM and footnote defaults, got %d extensions", len(got))
	}
	if got := collectExtensions([]string{"Table", "table", "bogus", " "}); len(got) != 1 {
		t.Fatalf("expected unknown and repeated names to be ignored, got %d", len(got))
	}
	if !KnownExtension(" Footnote ") || KnownExtension("bogus") {
		t.Fatalf("unexpected KnownExtension results")
	}
}
