package summary

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"khabar/internal/domain"
)

const (
	geminiRequestTimeout  = 20 * time.Second
	geminiExcerptMaxChars = 3000
	geminiMinOutputChars  = 100

	geminiTemperature     = 0.7
	geminiMaxOutputTokens = 1500
)

// geminiModelVariants is tried in order; the first variant that answers
// with usable text wins.
var geminiModelVariants = []string{
	"gemini-pro",
	"gemini-1.5-pro",
	"gemini-1.5-flash",
}

// GeminiSummarizer asks Gemini for a 5-6 sentence summary, with the
// instruction written in the article's language.
type GeminiSummarizer struct {
	client *genai.Client
	log    *slog.Logger
}

func NewGeminiSummarizer(
	ctx context.Context,
	apiKey string,
	log *slog.Logger,
) (*GeminiSummarizer, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("create Gemini client: %w", err)
	}

	return &GeminiSummarizer{client: client, log: log}, nil
}

func (g *GeminiSummarizer) Close() {
	if g.client != nil {
		if err := g.client.Close(); err != nil {
			g.log.Warn("Failed to close Gemini client",
				"error", err)
		}
	}
}

func (g *GeminiSummarizer) Name() string { return "gemini" }

func (g *GeminiSummarizer) Supports(string) bool { return true }

func (g *GeminiSummarizer) Summarize(ctx context.Context, req Request) (string, error) {
	content := req.Content
	if req.Excerpt != "" {
		content = req.Excerpt
	}

	combined := fmt.Sprintf("Title: %s\n\nDescription: %s\n\nContent: %s",
		req.Title, req.Description, truncateRunes(content, geminiExcerptMaxChars))

	var prompt string
	if req.Language == domain.LanguageHindi {
		prompt = "इस समाचार का 5-6 वाक्यों में पूर्ण सारांश दें:\n\n" + combined
	} else {
		prompt = "Write a complete 5-6 sentence summary:\n\n" + combined
	}

	var errs []error
	for _, variant := range geminiModelVariants {
		text, err := g.generate(ctx, variant, prompt)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", variant, err))

			continue
		}

		if utf8.RuneCountInString(text) > geminiMinOutputChars {
			return text, nil
		}

		errs = append(errs, fmt.Errorf("%s: output too short (%d chars)",
			variant, utf8.RuneCountInString(text)))
	}

	return "", fmt.Errorf("all model variants declined: %w", errors.Join(errs...))
}

func (g *GeminiSummarizer) generate(
	ctx context.Context,
	variant string,
	prompt string,
) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, geminiRequestTimeout)
	defer cancel()

	model := g.client.GenerativeModel(variant)
	model.SetTemperature(geminiTemperature)
	model.SetMaxOutputTokens(geminiMaxOutputTokens)

	resp, err := model.GenerateContent(callCtx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}

	text := strings.TrimSpace(responseText(resp))
	if text == "" {
		return "", errors.New("response contains no text")
	}

	return text, nil
}

func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}

	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			b.WriteString(string(text))
		}
	}

	return b.String()
}
