package markdown

import (
	"bytes"
	"fmt"
	"time"

	"github.com/adrg/frontmatter"

	"github.com/goliatone/go-doccorpus/internal/document"
)

// ParseFrontMatter extracts metadata and the document body from source. It
// returns the structured frontmatter, the body without delimiters and the
// source line the body starts on.
func ParseFrontMatter(source []byte) (document.FrontMatter, []byte, int, error) {
	var meta frontMatterEnvelope

	body, err := frontmatter.Parse(bytes.NewReader(source), &meta)
	if err != nil {
		return document.FrontMatter{}, nil, 0, fmt.Errorf("parse frontmatter: %w", err)
	}

	return envelopeToFrontMatter(meta), body, bodyFirstLine(source, body), nil
}

// BuildDocument assembles a document from the file path, raw content and
// modification time, parsing the body into blocks. When the body has
// structural defects the partially parsed document is returned together
// with the document.Defects error. Frontmatter that does not parse is
// reported as a malformed block on line 1 and the whole source is parsed
// as the body.
func BuildDocument(parser *Parser, path string, source []byte, modified time.Time) (*document.Document, error) {
	var defects document.Defects
	fm, body, firstLine, err := ParseFrontMatter(source)
	if err != nil {
		defects = append(defects, &document.MalformedBlockError{
			Path:   path,
			Line:   1,
			Reason: err.Error(),
		})
		fm, body, firstLine = document.FrontMatter{Custom: map[string]any{}}, source, 1
	}

	if parser == nil {
		parser = NewParser()
	}
	blocks, parseErr := parser.ParseAt(path, body, firstLine)
	defects = append(defects, document.AsDefects(parseErr)...)

	doc := &document.Document{
		Path:         path,
		FrontMatter:  fm,
		Blocks:       blocks,
		LastModified: modified,
	}
	doc.Title = document.DeriveTitle(path, fm, blocks)
	return doc, defects.Err()
}

type frontMatterEnvelope struct {
	Title   string         `yaml:"title"`
	Summary string         `yaml:"summary"`
	Tags    []string       `yaml:"tags"`
	Order   int            `yaml:"order"`
	Custom  map[string]any `yaml:",inline"`
}

func envelopeToFrontMatter(env frontMatterEnvelope) document.FrontMatter {
	return document.FrontMatter{
		Title:   env.Title,
		Summary: env.Summary,
		Tags:    append([]string(nil), env.Tags...),
		Order:   env.Order,
		Custom:  cloneMap(env.Custom),
	}
}

func bodyFirstLine(source, body []byte) int {
	if len(body) > len(source) || !bytes.HasSuffix(source, body) {
		return 1
	}
	return bytes.Count(source[:len(source)-len(body)], []byte("\n")) + 1
}

func cloneMap(input map[string]any) map[string]any {
	if input == nil {
		return map[string]any{}
	}

	out := make(map[string]any, len(input))
	for key, value := range input {
		out[key] = value
	}
	return out
}
