package document

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/goliatone/go-slug"
)

// Anchor derives a URL fragment from heading or title text.
func Anchor(text string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}
	if normalized, err := slug.Normalize(text); err == nil && normalized != "" {
		return normalized
	}
	return fallbackAnchor(text)
}

// ListingAnchor names the ordinal-th listing of a document titled title.
func ListingAnchor(title string, ordinal int) string {
	base := Anchor(title)
	if base == "" {
		return fmt.Sprintf("listing-%d", ordinal)
	}
	return fmt.Sprintf("%s-listing-%d", base, ordinal)
}

func fallbackAnchor(text string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(text) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			dash = false
		case b.Len() > 0 && !dash:
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
