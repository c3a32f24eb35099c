// Package audio turns summary text into MP3 files via the public
// Google Translate TTS endpoint.
package audio

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"khabar/internal/domain"
)

const (
	ttsEndpoint       = "https://translate.google.com/translate_tts"
	ttsRequestTimeout = 15 * time.Second

	// The endpoint rejects long inputs, so text is synthesized in
	// chunks and the resulting MP3 frames are concatenated.
	ttsChunkMaxChars = 180
)

type Synthesizer struct {
	endpoint string
	dir      string
	urlBase  string
	client   *http.Client
	log      *slog.Logger
}

// NewSynthesizer creates dir if needed. Files are served under urlBase,
// e.g. "/static/audio".
func NewSynthesizer(dir, urlBase string, log *slog.Logger) (*Synthesizer, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create audio directory: %w", err)
	}

	return &Synthesizer{
		endpoint: ttsEndpoint,
		dir:      dir,
		urlBase:  strings.TrimSuffix(urlBase, "/"),
		client:   &http.Client{Timeout: ttsRequestTimeout},
		log:      log,
	}, nil
}

// Synthesize renders text to an MP3 file and returns its public URL path.
func (s *Synthesizer) Synthesize(ctx context.Context, text, language string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", errors.New("text is empty")
	}

	lang := "en"
	if language == domain.LanguageHindi {
		lang = "hi"
	}

	var audio []byte
	for _, chunk := range splitChunks(text, ttsChunkMaxChars) {
		data, err := s.fetchChunk(ctx, chunk, lang)
		if err != nil {
			return "", fmt.Errorf("synthesize chunk: %w", err)
		}

		audio = append(audio, data...)
	}

	name := uuid.NewString() + ".mp3"
	path := filepath.Join(s.dir, name)

	if err := os.WriteFile(path, audio, 0o644); err != nil {
		return "", fmt.Errorf("write audio file: %w", err)
	}

	s.log.InfoContext(ctx, "Synthesized audio",
		"file", name,
		"language", lang,
		"bytes", len(audio))

	return s.urlBase + "/" + name, nil
}

func (s *Synthesizer) fetchChunk(ctx context.Context, chunk, lang string) ([]byte, error) {
	params := url.Values{}
	params.Set("client", "tw-ob")
	params.Set("ie", "UTF-8")
	params.Set("tl", lang)
	params.Set("q", chunk)

	req, err := http.NewRequestWithContext(
		ctx, http.MethodGet, s.endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer func() {
		if err = resp.Body.Close(); err != nil {
			s.log.WarnContext(ctx, "Failed to close response body", "error", err)
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	return data, nil
}

// splitChunks groups whole words into chunks of at most maxRunes runes.
// A single word longer than the budget becomes its own chunk.
func splitChunks(text string, maxRunes int) []string {
	var chunks []string
	var current strings.Builder
	currentRunes := 0

	for _, word := range strings.Fields(text) {
		wordRunes := utf8.RuneCountInString(word)

		if currentRunes > 0 && currentRunes+1+wordRunes > maxRunes {
			chunks = append(chunks, current.String())
			current.Reset()
			currentRunes = 0
		}

		if currentRunes > 0 {
			current.WriteByte(' ')
			currentRunes++
		}
		current.WriteString(word)
		currentRunes += wordRunes
	}

	if current.Len() > 0 {
		chunks = append(chunks, current.String())
	}

	return chunks
}
