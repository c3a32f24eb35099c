// Package domain holds the types shared across the aggregation pipeline.
package domain

import (
	"time"
	"unicode/utf8"
)

const (
	LanguageEnglish = "en"
	LanguageHindi   = "hi"
)

// Categories mirrors the NewsAPI category set the fetcher polls.
var Categories = []string{
	"general",
	"technology",
	"business",
	"sports",
	"entertainment",
	"health",
	"science",
}

type Source struct {
	ID   string
	Name string
}

type Article struct {
	ID          int64
	Title       string
	Description string
	Content     string
	URL         string
	ImageURL    string
	PublishedAt time.Time
	Source      Source
	Language    string
	Category    string
	Summary     string
	AudioURL    string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// HasSummary reports whether a stored summary is long enough to reuse
// instead of regenerating it.
func (a *Article) HasSummary() bool {
	return utf8.RuneCountInString(a.Summary) > 100
}

// RSSFeed is a supplementary article source merged into the same store
// as NewsAPI results.
type RSSFeed struct {
	URL      string
	Language string
	Category string
}
