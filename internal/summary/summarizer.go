// Package summary generates article summaries through a cascade of
// remote models with a non-failing extractive fallback, plus optional
// spoken-audio synthesis of the accepted text.
package summary

import "context"

// Provenance values record which cascade stage produced the accepted
// text. Observability only; callers must not branch on them.
const (
	ProvenanceGemini      = "gemini"
	ProvenanceHuggingFace = "huggingface"
	ProvenanceExtractive  = "extractive"
)

// Request describes one article to summarize. Description, Content and
// URL may be empty.
type Request struct {
	Title       string
	Description string
	Content     string
	URL         string
	Language    string

	// Excerpt is filled in by the pipeline from the page fetcher
	// before the remote adapters run; callers leave it empty.
	Excerpt string
}

// Result is the pipeline output. Text is always non-empty; AudioURL is
// empty when synthesis was skipped or failed.
type Result struct {
	Text       string
	AudioURL   string
	Provenance string
}

// RemoteSummarizer is one optional remote capability in the cascade.
// A returned error means the stage declined; it is logged and the
// pipeline moves on.
type RemoteSummarizer interface {
	Name() string
	Supports(language string) bool
	Summarize(ctx context.Context, req Request) (string, error)
}

// ExcerptFetcher supplies best-effort page enrichment text.
type ExcerptFetcher interface {
	Fetch(ctx context.Context, pageURL string) string
}

// AudioSynthesizer converts accepted summary text into a retrievable
// audio resource reference.
type AudioSynthesizer interface {
	Synthesize(ctx context.Context, text, language string) (string, error)
}
