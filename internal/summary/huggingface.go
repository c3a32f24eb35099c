package summary

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"khabar/internal/domain"
)

const (
	huggingFaceEndpoint       = "https://api-inference.huggingface.co/models/facebook/bart-large-cnn"
	huggingFaceRequestTimeout = 30 * time.Second
	huggingFaceInputMaxChars  = 1000

	huggingFaceSummaryMaxLength = 200
	huggingFaceSummaryMinLength = 100
)

// HuggingFaceSummarizer calls a hosted BART summarization model. The
// model is English-only, so Supports gates every other language off.
type HuggingFaceSummarizer struct {
	endpoint string
	apiKey   string
	client   *http.Client
	log      *slog.Logger
}

func NewHuggingFaceSummarizer(apiKey string, log *slog.Logger) *HuggingFaceSummarizer {
	return &HuggingFaceSummarizer{
		endpoint: huggingFaceEndpoint,
		apiKey:   apiKey,
		client:   &http.Client{Timeout: huggingFaceRequestTimeout},
		log:      log,
	}
}

func (h *HuggingFaceSummarizer) Name() string { return "huggingface" }

func (h *HuggingFaceSummarizer) Supports(language string) bool {
	return language == domain.LanguageEnglish
}

type huggingFaceRequest struct {
	Inputs     string                `json:"inputs"`
	Parameters huggingFaceParameters `json:"parameters"`
}

type huggingFaceParameters struct {
	MaxLength int `json:"max_length"`
	MinLength int `json:"min_length"`
}

type huggingFaceResult struct {
	SummaryText string `json:"summary_text"`
}

func (h *HuggingFaceSummarizer) Summarize(ctx context.Context, req Request) (string, error) {
	input := fmt.Sprintf("%s. %s. %s", req.Title, req.Description, req.Content)
	input = truncateRunes(input, huggingFaceInputMaxChars)

	body, err := json.Marshal(huggingFaceRequest{
		Inputs: input,
		Parameters: huggingFaceParameters{
			MaxLength: huggingFaceSummaryMaxLength,
			MinLength: huggingFaceSummaryMinLength,
		},
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(
		ctx, http.MethodPost, h.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+h.apiKey)

	resp, err := h.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("do request: %w", err)
	}
	defer func() {
		if err = resp.Body.Close(); err != nil {
			h.log.WarnContext(ctx, "Failed to close response body",
				"error", err,
				"endpoint", h.endpoint)
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	var results []huggingFaceResult
	if err = json.Unmarshal(respBody, &results); err != nil {
		return "", fmt.Errorf("unmarshal response: %w", err)
	}

	if len(results) == 0 {
		return "", errors.New("response contains no results")
	}

	text := strings.TrimSpace(results[0].SummaryText)
	if text == "" {
		return "", errors.New("summary field is missing")
	}

	return text, nil
}
