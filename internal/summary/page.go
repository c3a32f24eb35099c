package summary

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

const (
	pageFetchTimeout    = 15 * time.Second
	pageExcerptMaxChars = 5000

	browserUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"
)

// PageFetcher pulls a bounded plain-text excerpt from a live article
// page. It is an enrichment source only: every failure degrades to an
// empty excerpt and is never surfaced to the caller.
type PageFetcher struct {
	client *http.Client
	log    *slog.Logger
}

func NewPageFetcher(log *slog.Logger) *PageFetcher {
	return &PageFetcher{
		client: &http.Client{Timeout: pageFetchTimeout},
		log:    log,
	}
}

func (f *PageFetcher) Fetch(ctx context.Context, pageURL string) string {
	pageURL = strings.TrimSpace(pageURL)
	if pageURL == "" {
		return ""
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		f.log.WarnContext(ctx, "Failed to build page request",
			"error", err,
			"pageURL", pageURL)

		return ""
	}
	req.Header.Set("User-Agent", browserUserAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		f.log.WarnContext(ctx, "Failed to fetch page",
			"error", err,
			"pageURL", pageURL)

		return ""
	}
	defer func() {
		if err = resp.Body.Close(); err != nil {
			f.log.WarnContext(ctx, "Failed to close page response body",
				"error", err,
				"pageURL", pageURL)
		}
	}()

	if resp.StatusCode != http.StatusOK {
		f.log.WarnContext(ctx, "Page responded with non-OK status",
			"status", resp.StatusCode,
			"pageURL", pageURL)

		return ""
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		f.log.WarnContext(ctx, "Failed to parse page HTML",
			"error", err,
			"pageURL", pageURL)

		return ""
	}

	doc.Find("script, style, nav").Remove()

	text := strings.Join(strings.Fields(doc.Text()), " ")

	return truncateRunes(text, pageExcerptMaxChars)
}

func truncateRunes(text string, maxRunes int) string {
	runes := []rune(text)
	if len(runes) <= maxRunes {
		return text
	}

	return string(runes[:maxRunes])
}
