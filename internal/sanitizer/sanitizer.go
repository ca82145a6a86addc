// Package sanitizer strips markup from user-submitted text to prevent
// stored XSS in content that is later rendered by the frontend.
package sanitizer

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// Sanitizer cleans user-submitted content before it is stored
type Sanitizer interface {
	// SanitizeText strips all HTML, leaving plain text
	SanitizeText(input string) string
	// SanitizeRich keeps basic formatting elements, used for FAQ answers
	// and catalog descriptions
	SanitizeRich(input string) string
}

// DefaultSanitizer implements Sanitizer using bluemonday
type DefaultSanitizer struct {
	strict *bluemonday.Policy
	rich   *bluemonday.Policy
}

// New creates a sanitizer with a strict policy for free-text fields and a
// UGC-based policy for fields that allow light formatting
func New() *DefaultSanitizer {
	rich := bluemonday.UGCPolicy()
	rich.AllowElements(
		"p", "br", "strong", "b", "em", "i", "u",
		"ul", "ol", "li",
		"h3", "h4",
		"a",
	)
	rich.AllowAttrs("href").OnElements("a")
	rich.RequireNoFollowOnLinks(true)

	return &DefaultSanitizer{
		strict: bluemonday.StrictPolicy(),
		rich:   rich,
	}
}

// SanitizeText strips all HTML from the input
func (s *DefaultSanitizer) SanitizeText(input string) string {
	return strings.TrimSpace(s.strict.Sanitize(input))
}

// SanitizeRich keeps whitelisted formatting and strips everything else
func (s *DefaultSanitizer) SanitizeRich(input string) string {
	return strings.TrimSpace(s.rich.Sanitize(input))
}
