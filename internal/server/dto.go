package server

import (
	"time"

	"khabar/internal/domain"
)

type SourceResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type ArticleResponse struct {
	ID          int64          `json:"id"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Content     string         `json:"content"`
	URL         string         `json:"url"`
	URLToImage  string         `json:"urlToImage"`
	PublishedAt string         `json:"publishedAt"`
	Source      SourceResponse `json:"source"`
	Language    string         `json:"language"`
	Category    string         `json:"category"`
	AISummary   string         `json:"aiSummary"`
	AudioURL    string         `json:"audioSummaryUrl"`
	CreatedAt   string         `json:"createdAt"`
}

type NewsListResponse struct {
	Articles []ArticleResponse `json:"articles"`
	Total    int               `json:"total"`
	Page     int               `json:"page"`
	Limit    int               `json:"limit"`
	Pages    int               `json:"pages"`
}

type SummaryResponse struct {
	Summary  string `json:"summary"`
	AudioURL string `json:"audioUrl"`
	Cached   bool   `json:"cached"`
}

type SubscribeRequest struct {
	Token string `json:"token"`
}

type NotificationRequest struct {
	ArticleID int64  `json:"article_id"`
	Type      string `json:"type"`
	Topic     string `json:"topic"`
}

type TopicResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Icon string `json:"icon"`
}

// Topics clients can subscribe to on the FCM side.
//
//nolint:gochecknoglobals // Static catalog, never mutated.
var notificationTopics = []TopicResponse{
	{ID: "breaking_news", Name: "Breaking News", Icon: "🚨"},
	{ID: "technology", Name: "Technology", Icon: "💻"},
	{ID: "business", Name: "Business", Icon: "💼"},
	{ID: "sports", Name: "Sports", Icon: "⚽"},
	{ID: "entertainment", Name: "Entertainment", Icon: "🎬"},
	{ID: "health", Name: "Health", Icon: "🏥"},
	{ID: "science", Name: "Science", Icon: "🔬"},
}

func toArticleResponse(a *domain.Article) ArticleResponse {
	return ArticleResponse{
		ID:          a.ID,
		Title:       a.Title,
		Description: a.Description,
		Content:     a.Content,
		URL:         a.URL,
		URLToImage:  a.ImageURL,
		PublishedAt: a.PublishedAt.UTC().Format(time.RFC3339),
		Source: SourceResponse{
			ID:   a.Source.ID,
			Name: a.Source.Name,
		},
		Language:  a.Language,
		Category:  a.Category,
		AISummary: a.Summary,
		AudioURL:  a.AudioURL,
		CreatedAt: a.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func toArticleResponses(articles []domain.Article) []ArticleResponse {
	res := make([]ArticleResponse, 0, len(articles))
	for i := range articles {
		res = append(res, toArticleResponse(&articles[i]))
	}

	return res
}
