package summary

import (
	"context"
	"log/slog"
	"strings"
	"unicode/utf8"
)

const (
	// Acceptance bars differ per remote source: generative output is
	// noisier, so the pipeline demands more of it than the adapter's
	// own internal check does.
	GeminiMinAcceptChars      = 150
	HuggingFaceMinAcceptChars = 100

	audioMinChars = 20
)

// Stage is one attempt in the ordered cascade: a remote capability, the
// provenance tag stamped on its accepted output, and the minimum length
// the output must exceed to be accepted.
type Stage struct {
	Remote     RemoteSummarizer
	Provenance string
	MinChars   int
}

// Pipeline sequences the remote stages and the extractive fallback.
// Generate cannot fail: the terminal stage accepts unconditionally.
type Pipeline struct {
	fetcher ExcerptFetcher
	stages  []Stage
	synth   AudioSynthesizer
	log     *slog.Logger
}

// NewPipeline wires the cascade. fetcher and synth may be nil, in which
// case page enrichment and audio synthesis are skipped.
func NewPipeline(
	fetcher ExcerptFetcher,
	stages []Stage,
	synth AudioSynthesizer,
	log *slog.Logger,
) *Pipeline {
	return &Pipeline{
		fetcher: fetcher,
		stages:  stages,
		synth:   synth,
		log:     log,
	}
}

func (p *Pipeline) Generate(ctx context.Context, req Request) Result {
	req.Title = Clean(req.Title)
	req.Description = Clean(req.Description)
	req.Content = Clean(req.Content)

	if req.URL != "" && p.fetcher != nil {
		req.Excerpt = p.fetcher.Fetch(ctx, req.URL)
	}

	text, provenance := p.selectText(ctx, req)

	result := Result{
		Text:       text,
		Provenance: provenance,
	}

	if p.synth != nil && utf8.RuneCountInString(text) >= audioMinChars {
		audioURL, err := p.synth.Synthesize(ctx, text, req.Language)
		if err != nil {
			p.log.WarnContext(ctx, "Audio synthesis failed",
				"error", err,
				"provenance", provenance,
				"language", req.Language)
		} else {
			result.AudioURL = audioURL
		}
	}

	return result
}

func (p *Pipeline) selectText(ctx context.Context, req Request) (string, string) {
	for _, stage := range p.stages {
		if stage.Remote == nil || !stage.Remote.Supports(req.Language) {
			continue
		}

		text, err := stage.Remote.Summarize(ctx, req)
		if err != nil {
			p.log.WarnContext(ctx, "Remote summarizer declined",
				"error", err,
				"summarizer", stage.Remote.Name(),
				"language", req.Language)

			continue
		}

		text = strings.TrimSpace(text)
		if utf8.RuneCountInString(text) <= stage.MinChars {
			p.log.WarnContext(ctx, "Remote summary below acceptance length",
				"summarizer", stage.Remote.Name(),
				"chars", utf8.RuneCountInString(text),
				"minChars", stage.MinChars)

			continue
		}

		return text, stage.Provenance
	}

	return ExtractiveSummary(
		req.Title, req.Description, req.Content, req.Excerpt,
	), ProvenanceExtractive
}
