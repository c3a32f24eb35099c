package summary

import (
	"regexp"
	"strings"

	"mvdan.cc/xurls/v2"
)

var (
	truncationMarkerRe = regexp.MustCompile(`\[\+\d+ chars\]`)
	ellipsisRe         = regexp.MustCompile(`\.{3,}`)

	// Strict only matches URLs with an explicit scheme, so prose
	// mentions like "BBC.com" survive.
	//
	//nolint:gochecknoglobals // Compiling the matcher is expensive; share one instance.
	urlRe = xurls.Strict()
)

// Clean normalizes a raw text fragment: truncation markers of the form
// "[+123 chars]" are removed, runs of three or more periods collapse
// into one, and surrounding whitespace is trimmed. Idempotent.
func Clean(text string) string {
	if text == "" {
		return ""
	}

	text = truncationMarkerRe.ReplaceAllString(text, "")
	text = ellipsisRe.ReplaceAllString(text, ".")

	return strings.TrimSpace(text)
}

// stripURLs removes bare links so they never surface as sentence
// fragments. Scraped pages are full of them.
func stripURLs(text string) string {
	return urlRe.ReplaceAllString(text, " ")
}
