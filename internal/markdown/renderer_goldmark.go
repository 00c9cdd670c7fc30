package markdown

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/renderer/html"

	"github.com/goliatone/go-doccorpus/internal/document"
)

// RenderOptions tune HTML output.
type RenderOptions struct {
	// Extensions names goldmark extensions to enable. Empty enables GFM with footnotes.
	Extensions []string
	HardWraps  bool
	// SafeMode and Sanitize both suppress raw HTML passthrough.
	SafeMode bool
	Sanitize bool
}

// GoldmarkRenderer renders parsed documents to HTML using the goldmark engine.
// It is stateless so a single instance can be shared across goroutines.
type GoldmarkRenderer struct {
	defaultOptions RenderOptions
}

// NewGoldmarkRenderer constructs a renderer with the supplied defaults.
func NewGoldmarkRenderer(defaults RenderOptions) *GoldmarkRenderer {
	return &GoldmarkRenderer{defaultOptions: defaults}
}

// RenderMarkdown converts raw Markdown into HTML using the default options.
func (r *GoldmarkRenderer) RenderMarkdown(markdown []byte) ([]byte, error) {
	return r.RenderMarkdownWithOptions(markdown, r.defaultOptions)
}

// RenderMarkdownWithOptions converts raw Markdown into HTML using opts.
func (r *GoldmarkRenderer) RenderMarkdownWithOptions(markdown []byte, opts RenderOptions) ([]byte, error) {
	engine := newGoldmarkEngine(opts)
	var buf bytes.Buffer
	if err := engine.Convert(markdown, &buf); err != nil {
		return nil, fmt.Errorf("markdown render: %w", err)
	}
	return buf.Bytes(), nil
}

// Render serialises doc back to Markdown, converts it to HTML and tags each
// listing's <pre> with its listing anchor and language.
func (r *GoldmarkRenderer) Render(doc *document.Document) ([]byte, error) {
	if doc == nil {
		return nil, errors.New("markdown render: document is nil")
	}
	out, err := r.RenderMarkdown([]byte(document.Markdown(doc.Blocks)))
	if err != nil {
		return nil, fmt.Errorf("markdown render %s: %w", doc.Path, err)
	}
	return annotateListings(out, doc)
}

// annotateListings pairs <pre> elements with the document listings in order.
// Indented code blocks also render as <pre>, so annotation only happens when
// the counts agree.
func annotateListings(out []byte, doc *document.Document) ([]byte, error) {
	listings := doc.Listings()
	if len(listings) == 0 {
		return out, nil
	}

	page, err := goquery.NewDocumentFromReader(bytes.NewReader(out))
	if err != nil {
		return nil, fmt.Errorf("markdown render %s: parse html: %w", doc.Path, err)
	}

	pres := page.Find("pre")
	if pres.Length() != len(listings) {
		return out, nil
	}

	pres.Each(func(i int, sel *goquery.Selection) {
		sel.SetAttr("id", document.ListingAnchor(doc.Title, i+1))
		if lang := strings.TrimSpace(listings[i].Language); lang != "" {
			sel.SetAttr("data-language", lang)
		}
	})

	body, err := page.Find("body").Html()
	if err != nil {
		return nil, fmt.Errorf("markdown render %s: serialise html: %w", doc.Path, err)
	}
	return []byte(body), nil
}

// newGoldmarkEngine builds a goldmark.Markdown configured from opts. Unknown
// extension names are ignored.
func newGoldmarkEngine(opts RenderOptions) goldmark.Markdown {
	exts := collectExtensions(opts.Extensions)

	parserOptions := []parser.Option{
		parser.WithAutoHeadingID(),
	}

	rendererOptions := []renderer.Option{}

	if opts.HardWraps {
		rendererOptions = append(rendererOptions, html.WithHardWraps())
	}

	if !opts.SafeMode && !opts.Sanitize {
		rendererOptions = append(rendererOptions, html.WithUnsafe())
	}

	engineOptions := []goldmark.Option{
		goldmark.WithParserOptions(parserOptions...),
	}

	if len(rendererOptions) > 0 {
		engineOptions = append(engineOptions, goldmark.WithRendererOptions(rendererOptions...))
	}

	if len(exts) > 0 {
		engineOptions = append(engineOptions, goldmark.WithExtensions(exts...))
	}

	return goldmark.New(engineOptions...)
}

var extensionRegistry = map[string]goldmark.Extender{
	"gfm":           extension.GFM,
	"table":         extension.Table,
	"tables":        extension.Table,
	"strikethrough": extension.Strikethrough,
	"linkify":       extension.Linkify,
	"autolink":      extension.Linkify,
	"tasklist":      extension.TaskList,
	"definition":    extension.DefinitionList,
	"footnote":      extension.Footnote,
	"footnotes":     extension.Footnote,
}

// KnownExtension reports whether name maps onto a goldmark extension.
func KnownExtension(name string) bool {
	_, ok := extensionRegistry[strings.ToLower(strings.TrimSpace(name))]
	return ok
}

func collectExtensions(names []string) []goldmark.Extender {
	if len(names) == 0 {
		return []goldmark.Extender{
			extension.GFM,
			extension.Footnote,
		}
	}

	var extenders []goldmark.Extender
	seen := map[string]struct{}{}

	for _, name := range names {
		key := strings.ToLower(strings.TrimSpace(name))
		if key == "" {
			continue
		}

		if _, ok := seen[key]; ok {
			continue
		}

		ext, ok := extensionRegistry[key]
		if !ok {
			continue
		}

		extenders = append(extenders, ext)
		seen[key] = struct{}{}
	}

	return extenders
}
