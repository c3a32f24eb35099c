package audio

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"unicode/utf8"

	"khabar/internal/domain"
)

func TestSplitChunksRespectsBudget(t *testing.T) {
	text := strings.Repeat("seven77 ", 100)

	chunks := splitChunks(text, 50)
	if len(chunks) == 0 {
		t.Fatalf("expected at least one chunk")
	}

	for i, chunk := range chunks {
		if got := utf8.RuneCountInString(chunk); got > 50 {
			t.Errorf("chunk %d exceeds budget: %d runes", i, got)
		}
	}

	joined := strings.Join(chunks, " ")
	if joined != strings.TrimSpace(text) {
		t.Fatalf("chunks do not reassemble the input")
	}
}

func TestSplitChunksKeepsWordsWhole(t *testing.T) {
	chunks := splitChunks("alpha beta gamma", 11)

	want := []string{"alpha beta", "gamma"}
	if len(chunks) != len(want) {
		t.Fatalf("unexpected chunk count: got %d, want %d", len(chunks), len(want))
	}

	for i := range want {
		if chunks[i] != want[i] {
			t.Errorf("chunk %d: got %q, want %q", i, chunks[i], want[i])
		}
	}
}

func TestSplitChunksOversizedWord(t *testing.T) {
	long := strings.Repeat("x", 30)

	chunks := splitChunks("short "+long, 10)
	if len(chunks) != 2 {
		t.Fatalf("unexpected chunk count: %d", len(chunks))
	}

	if chunks[1] != long {
		t.Fatalf("oversized word was split: %q", chunks[1])
	}
}

func TestSynthesizeWritesFile(t *testing.T) {
	var gotLangs []string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotLangs = append(gotLangs, r.URL.Query().Get("tl"))
		_, _ = w.Write([]byte("mp3:" + r.URL.Query().Get("q") + ";"))
	}))
	defer srv.Close()

	dir := t.TempDir()

	s, err := NewSynthesizer(dir, "/static/audio/", slog.Default())
	if err != nil {
		t.Fatalf("failed to create synthesizer: %v", err)
	}
	s.endpoint = srv.URL
	s.client = srv.Client()

	urlPath, err := s.Synthesize(
		context.Background(), "यह एक छोटा सारांश है।", domain.LanguageHindi)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.HasPrefix(urlPath, "/static/audio/") || !strings.HasSuffix(urlPath, ".mp3") {
		t.Fatalf("unexpected URL path: %q", urlPath)
	}

	for _, lang := range gotLangs {
		if lang != "hi" {
			t.Errorf("unexpected language parameter: %q", lang)
		}
	}

	data, err := os.ReadFile(filepath.Join(dir, filepath.Base(urlPath)))
	if err != nil {
		t.Fatalf("failed to read audio file: %v", err)
	}

	if !strings.HasPrefix(string(data), "mp3:") {
		t.Fatalf("unexpected file contents: %q", data)
	}
}

func TestSynthesizeEmptyText(t *testing.T) {
	s, err := NewSynthesizer(t.TempDir(), "/static/audio", slog.Default())
	if err != nil {
		t.Fatalf("failed to create synthesizer: %v", err)
	}

	if _, err = s.Synthesize(context.Background(), "   ", domain.LanguageEnglish); err == nil {
		t.Fatalf("expected error for empty text")
	}
}

func TestSynthesizeEndpointFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	s, err := NewSynthesizer(t.TempDir(), "/static/audio", slog.Default())
	if err != nil {
		t.Fatalf("failed to create synthesizer: %v", err)
	}
	s.endpoint = srv.URL
	s.client = srv.Client()

	if _, err = s.Synthesize(context.Background(), "some text", domain.LanguageEnglish); err == nil {
		t.Fatalf("expected error on endpoint failure")
	}
}
