package corpuscmd

import (
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

const (
	checkCorpusMessageType     = "doccorpus.check_corpus"
	extractListingsMessageType = "doccorpus.extract_listings"
	renderDocumentMessageType  = "doccorpus.render_document"
)

// CheckCorpusCommand validates every document under Directory.
type CheckCorpusCommand struct {
	// Directory is resolved against the service base path.
	Directory string `json:"directory"`
	// Pattern overrides the configured discovery glob.
	Pattern string `json:"pattern,omitempty"`
	// FailOnWarnings treats warnings as failures.
	FailOnWarnings bool `json:"fail_on_warnings,omitempty"`
}

// Type implements command.Message.
func (CheckCorpusCommand) Type() string { return checkCorpusMessageType }

// Validate ensures directory input is present before handlers execute.
func (cmd CheckCorpusCommand) Validate() error {
	return validation.ValidateStruct(&cmd,
		validation.Field(&cmd.Directory, validation.By(requiredText(checkCorpusMessageType+".directory_required", "directory is required"))),
		validation.Field(&cmd.Pattern, validation.By(validPattern(checkCorpusMessageType+".pattern_invalid"))),
	)
}

// ExtractListingsCommand pulls code listings out of the documents under Directory.
type ExtractListingsCommand struct {
	Directory string `json:"directory"`
	Pattern   string `json:"pattern,omitempty"`
	// Language keeps only listings tagged with this language. Matching is case-insensitive.
	Language string `json:"language,omitempty"`
	// Index persists the extracted listings. Requires the index feature.
	Index bool `json:"index,omitempty"`
}

// Type implements command.Message.
func (ExtractListingsCommand) Type() string { return extractListingsMessageType }

// Validate ensures directory input is present and the language tag is a single word.
func (cmd ExtractListingsCommand) Validate() error {
	return validation.ValidateStruct(&cmd,
		validation.Field(&cmd.Directory, validation.By(requiredText(extractListingsMessageType+".directory_required", "directory is required"))),
		validation.Field(&cmd.Pattern, validation.By(validPattern(extractListingsMessageType+".pattern_invalid"))),
		validation.Field(&cmd.Language, validation.By(func(value any) error {
			if strings.ContainsAny(value.(string), " \t\n`") {
				return validation.NewError(extractListingsMessageType+".language_invalid", "language must be a single word")
			}
			return nil
		})),
	)
}

// RenderDocumentCommand renders one document to HTML.
type RenderDocumentCommand struct {
	Path string `json:"path"`
}

// Type implements command.Message.
func (RenderDocumentCommand) Type() string { return renderDocumentMessageType }

// Validate ensures a document path is supplied.
func (cmd RenderDocumentCommand) Validate() error {
	return validation.ValidateStruct(&cmd,
		validation.Field(&cmd.Path, validation.By(requiredText(renderDocumentMessageType+".path_required", "path is required"))),
	)
}

func requiredText(code, message string) validation.RuleFunc {
	return func(value any) error {
		if strings.TrimSpace(value.(string)) == "" {
			return validation.NewError(code, message)
		}
		return nil
	}
}

func validPattern(code string) validation.RuleFunc {
	return func(value any) error {
		pattern := value.(string)
		if pattern == "" {
			return nil
		}
		if !doublestar.ValidatePattern(pattern) {
			return validation.NewError(code, "pattern is not a valid glob")
		}
		return nil
	}
}
