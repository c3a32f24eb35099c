package summary

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

const (
	minSentenceChars    = 50
	maxSummarySentences = 6

	// Devanagari danda, the Hindi sentence terminator. A Latin-only
	// splitter would leave Hindi text as one giant sentence.
	devanagariFullStop = '।'
)

// boilerplateMarkers disqualifies a sentence regardless of its length.
var boilerplateMarkers = []string{
	"cookie",
	"subscribe",
	"advertisement",
	"terms of service",
}

// ExtractiveSummary builds a multi-sentence summary by selecting
// representative sentences from the combined source text. It never
// fails: when nothing qualifies it degrades to "{title}. {description}"
// verbatim, however short that is, and callers compensate with their
// own length checks.
func ExtractiveSummary(title, description, content, excerpt string) string {
	blob := fmt.Sprintf("%s. %s. %s. %s", title, description, content, excerpt)
	blob = stripURLs(blob)

	sentences := strings.FieldsFunc(blob, func(r rune) bool {
		return r == '.' || r == '!' || r == devanagariFullStop
	})

	var selected []string
	seen := make(map[string]struct{})

	for _, sentence := range sentences {
		sentence = strings.TrimSpace(sentence)
		if utf8.RuneCountInString(sentence) <= minSentenceChars {
			continue
		}

		normalized := strings.ToLower(sentence)
		if containsBoilerplate(normalized) {
			continue
		}

		if _, ok := seen[normalized]; ok {
			continue
		}

		selected = append(selected, sentence)
		seen[normalized] = struct{}{}

		if len(selected) >= maxSummarySentences {
			break
		}
	}

	if len(selected) == 0 {
		return fmt.Sprintf("%s. %s", title, description)
	}

	result := strings.Join(selected, ". ")
	if !strings.HasSuffix(result, ".") {
		result += "."
	}

	return result
}

func containsBoilerplate(normalized string) bool {
	for _, marker := range boilerplateMarkers {
		if strings.Contains(normalized, marker) {
			return true
		}
	}

	return false
}
