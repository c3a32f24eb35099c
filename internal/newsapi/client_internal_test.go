package newsapi

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"khabar/internal/domain"
)

func newTestClient(baseURL string) *Client {
	c := New("test-key", slog.Default())
	c.baseURL = baseURL

	return c
}

func TestFetchArticlesEnglish(t *testing.T) {
	var gotPath string
	var gotQuery map[string][]string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.Query()

		_, _ = w.Write([]byte(`{
			"status": "ok",
			"articles": [
				{
					"source": {"id": "bbc-news", "name": "BBC News"},
					"title": "Markets rally",
					"description": "Stocks surged on Friday.",
					"content": "Stocks surged on Friday after the announcement.",
					"url": "https://example.com/markets",
					"urlToImage": "https://example.com/markets.jpg",
					"publishedAt": "2026-08-29T10:00:00Z"
				},
				{
					"source": {"id": "", "name": "Wire"},
					"title": "No description here"
				}
			]
		}`))
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)

	articles, err := c.FetchArticles(context.Background(), "business", domain.LanguageEnglish)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if gotPath != "/top-headlines" {
		t.Fatalf("unexpected path: %q", gotPath)
	}

	if got := gotQuery["category"]; len(got) != 1 || got[0] != "business" {
		t.Fatalf("unexpected category parameter: %v", got)
	}

	if got := gotQuery["language"]; len(got) != 1 || got[0] != "en" {
		t.Fatalf("unexpected language parameter: %v", got)
	}

	if got := gotQuery["apiKey"]; len(got) != 1 || got[0] != "test-key" {
		t.Fatalf("unexpected apiKey parameter: %v", got)
	}

	if len(articles) != 1 {
		t.Fatalf("unexpected article count: %d", len(articles))
	}

	a := articles[0]
	if a.Title != "Markets rally" {
		t.Errorf("unexpected title: %q", a.Title)
	}
	if a.Source.Name != "BBC News" {
		t.Errorf("unexpected source name: %q", a.Source.Name)
	}
	if a.Language != domain.LanguageEnglish || a.Category != "business" {
		t.Errorf("unexpected language/category: %q/%q", a.Language, a.Category)
	}

	want := time.Date(2026, 8, 29, 10, 0, 0, 0, time.UTC)
	if !a.PublishedAt.Equal(want) {
		t.Errorf("unexpected publishedAt: %v", a.PublishedAt)
	}
}

func TestFetchArticlesHindiUsesEverything(t *testing.T) {
	var gotPath string
	var gotQuery map[string][]string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.Query()

		_, _ = w.Write([]byte(`{"status": "ok", "articles": []}`))
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)

	if _, err := c.FetchArticles(context.Background(), "sports", domain.LanguageHindi); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if gotPath != "/everything" {
		t.Fatalf("unexpected path: %q", gotPath)
	}

	if got := gotQuery["q"]; len(got) != 1 || got[0] != "sports OR खेल" {
		t.Fatalf("unexpected query parameter: %v", got)
	}

	if got := gotQuery["sortBy"]; len(got) != 1 || got[0] != "publishedAt" {
		t.Fatalf("unexpected sortBy parameter: %v", got)
	}

	yesterday := time.Now().UTC().AddDate(0, 0, -1).Format("2006-01-02")
	if got := gotQuery["from"]; len(got) != 1 || got[0] != yesterday {
		t.Fatalf("unexpected from parameter: %v", got)
	}
}

func TestFetchArticlesErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)

	if _, err := c.FetchArticles(context.Background(), "general", domain.LanguageEnglish); err == nil {
		t.Fatalf("expected error on non-OK status")
	}
}

func TestEnabled(t *testing.T) {
	if New("", slog.Default()).Enabled() {
		t.Fatalf("expected client without key to be disabled")
	}

	if !New("key", slog.Default()).Enabled() {
		t.Fatalf("expected client with key to be enabled")
	}
}
