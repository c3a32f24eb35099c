// Package ingest pulls fresh articles from NewsAPI and configured RSS
// feeds into the database.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"khabar/internal/domain"
)

const (
	// NewsAPI free tier throttles aggressively, so consecutive
	// category fetches are spaced out.
	fetchPause = 2 * time.Second

	retention = 7 * 24 * time.Hour
)

type Store interface {
	InsertArticle(ctx context.Context, article *domain.Article) (bool, error)
	DeleteArticlesBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

type HeadlineSource interface {
	Enabled() bool
	FetchArticles(ctx context.Context, category, language string) ([]domain.Article, error)
}

type Notifier interface {
	Enabled() bool
	SendNewArticles(ctx context.Context, count int) error
}

type Fetcher struct {
	store        Store
	news         HeadlineSource
	feeds        []domain.RSSFeed
	parser       *gofeed.Parser
	notifier     Notifier
	pauseBetween time.Duration
	log          *slog.Logger
}

func NewFetcher(
	store Store,
	news HeadlineSource,
	feeds []domain.RSSFeed,
	notifier Notifier,
	log *slog.Logger,
) *Fetcher {
	return &Fetcher{
		store:        store,
		news:         news,
		feeds:        feeds,
		parser:       gofeed.NewParser(),
		notifier:     notifier,
		pauseBetween: fetchPause,
		log:          log,
	}
}

// FetchAndStoreAll fetches every category in both languages, merges in
// the configured RSS feeds and notifies subscribers when anything new
// was stored. It returns the number of newly stored articles.
func (f *Fetcher) FetchAndStoreAll(ctx context.Context) (int, error) {
	var saved int
	var errs []error

	if f.news.Enabled() {
		first := true

		for _, language := range []string{domain.LanguageEnglish, domain.LanguageHindi} {
			for _, category := range domain.Categories {
				// Pause between calls only, never after the last one.
				if !first {
					if err := pause(ctx, f.pauseBetween); err != nil {
						return saved, errors.Join(append(errs, err)...)
					}
				}
				first = false

				articles, err := f.news.FetchArticles(ctx, category, language)
				if err != nil {
					errs = append(errs, fmt.Errorf(
						"fetch %s/%s: %w", category, language, err))
				}

				saved += f.storeArticles(ctx, articles)
			}
		}
	} else {
		f.log.WarnContext(ctx, "NewsAPI is disabled, skipping headline fetch")
	}

	for _, feed := range f.feeds {
		count, err := f.fetchRSSFeed(ctx, feed)
		if err != nil {
			errs = append(errs, fmt.Errorf("fetch RSS feed (URL = %s): %w", feed.URL, err))
			continue
		}

		saved += count
	}

	f.log.InfoContext(ctx, "Fetch finished",
		"saved", saved,
		"errors", len(errs))

	if saved > 0 && f.notifier.Enabled() {
		if err := f.notifier.SendNewArticles(ctx, saved); err != nil {
			errs = append(errs, fmt.Errorf("notify subscribers: %w", err))
		}
	}

	return saved, errors.Join(errs...)
}

// Cleanup removes articles older than the retention window.
func (f *Fetcher) Cleanup(ctx context.Context) (int64, error) {
	cutoff := time.Now().UTC().Add(-retention)

	deleted, err := f.store.DeleteArticlesBefore(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("delete old articles: %w", err)
	}

	f.log.InfoContext(ctx, "Cleaned up old articles",
		"deleted", deleted,
		"cutoff", cutoff)

	return deleted, nil
}

func (f *Fetcher) storeArticles(ctx context.Context, articles []domain.Article) int {
	var saved int

	for i := range articles {
		inserted, err := f.store.InsertArticle(ctx, &articles[i])
		if err != nil {
			f.log.WarnContext(ctx, "Failed to store article",
				"error", err,
				"url", articles[i].URL)
			continue
		}

		if inserted {
			saved++
		}
	}

	return saved
}

func (f *Fetcher) fetchRSSFeed(ctx context.Context, feed domain.RSSFeed) (int, error) {
	parsed, err := f.parser.ParseURLWithContext(feed.URL, ctx)
	if err != nil {
		return 0, fmt.Errorf("parse feed: %w", err)
	}

	sourceName := strings.TrimSpace(parsed.Title)
	if sourceName == "" {
		sourceName = feed.URL
	}

	articles := make([]domain.Article, 0, len(parsed.Items))
	for _, item := range parsed.Items {
		if item == nil || item.Title == "" || item.Description == "" || item.Link == "" {
			continue
		}

		publishedAt := time.Now().UTC()
		if item.PublishedParsed != nil {
			publishedAt = item.PublishedParsed.UTC()
		}

		var imageURL string
		if item.Image != nil {
			imageURL = item.Image.URL
		}

		articles = append(articles, domain.Article{
			Title:       item.Title,
			Description: item.Description,
			Content:     item.Content,
			URL:         item.Link,
			ImageURL:    imageURL,
			PublishedAt: publishedAt,
			Source:      domain.Source{Name: sourceName},
			Language:    feed.Language,
			Category:    feed.Category,
		})
	}

	return f.storeArticles(ctx, articles), nil
}

func pause(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}
