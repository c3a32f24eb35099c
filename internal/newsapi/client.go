// Package newsapi fetches headlines from the NewsAPI.org v2 API.
package newsapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"khabar/internal/domain"
)

const (
	defaultBaseURL = "https://newsapi.org/v2"
	requestTimeout = 30 * time.Second
)

// hindiQueries maps categories to bilingual search keywords. The
// top-headlines endpoint returns almost nothing for hi, so Hindi news
// comes from the everything endpoint instead.
var hindiQueries = map[string]string{
	"general":       "भारत OR india",
	"technology":    "technology OR प्रौद्योगिकी",
	"business":      "business OR व्यापार",
	"sports":        "sports OR खेल",
	"entertainment": "entertainment OR मनोरंजन",
	"health":        "health OR स्वास्थ्य",
	"science":       "science OR विज्ञान",
}

type Client struct {
	apiKey  string
	baseURL string
	client  *http.Client
	log     *slog.Logger
}

func New(apiKey string, log *slog.Logger) *Client {
	return &Client{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		client:  &http.Client{Timeout: requestTimeout},
		log:     log,
	}
}

// Enabled reports whether an API key is configured.
func (c *Client) Enabled() bool { return c.apiKey != "" }

type response struct {
	Status   string    `json:"status"`
	Articles []article `json:"articles"`
}

type article struct {
	Source      source `json:"source"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Content     string `json:"content"`
	URL         string `json:"url"`
	URLToImage  string `json:"urlToImage"`
	PublishedAt string `json:"publishedAt"`
}

type source struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// FetchArticles fetches headlines for one category and language.
// Articles without a title or description are dropped.
func (c *Client) FetchArticles(
	ctx context.Context,
	category string,
	language string,
) ([]domain.Article, error) {
	req, err := http.NewRequestWithContext(
		ctx, http.MethodGet, c.requestURL(category, language), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer func() {
		if err = resp.Body.Close(); err != nil {
			c.log.WarnContext(ctx, "Failed to close response body", "error", err)
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	var parsed response
	if err = json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}

	articles := make([]domain.Article, 0, len(parsed.Articles))
	for _, a := range parsed.Articles {
		if a.Title == "" || a.Description == "" {
			continue
		}

		publishedAt, err := time.Parse(time.RFC3339, a.PublishedAt)
		if err != nil {
			publishedAt = time.Now().UTC()
		}

		articles = append(articles, domain.Article{
			Title:       a.Title,
			Description: a.Description,
			Content:     a.Content,
			URL:         a.URL,
			ImageURL:    a.URLToImage,
			PublishedAt: publishedAt,
			Source: domain.Source{
				ID:   a.Source.ID,
				Name: a.Source.Name,
			},
			Language: language,
			Category: category,
		})
	}

	c.log.InfoContext(ctx, "Fetched articles",
		"count", len(articles),
		"category", category,
		"language", language)

	return articles, nil
}

func (c *Client) requestURL(category, language string) string {
	params := url.Values{}
	params.Set("apiKey", c.apiKey)

	if language == domain.LanguageHindi {
		query, ok := hindiQueries[category]
		if !ok {
			query = category
		}

		yesterday := time.Now().UTC().AddDate(0, 0, -1).Format("2006-01-02")

		params.Set("q", query)
		params.Set("language", domain.LanguageHindi)
		params.Set("from", yesterday)
		params.Set("sortBy", "publishedAt")

		return c.baseURL + "/everything?" + params.Encode()
	}

	params.Set("category", category)
	params.Set("language", language)

	return c.baseURL + "/top-headlines?" + params.Encode()
}
