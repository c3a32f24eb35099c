package server

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"khabar/internal/database"
	"khabar/internal/summary"
)

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
	defaultTrending  = 10
	maxTrendingLimit = 50
)

func (s *Server) listNews(c *gin.Context) {
	ctx := c.Request.Context()

	filter := database.ArticleFilter{
		Language: c.Query("language"),
		Category: c.Query("category"),
		Search:   c.Query("search"),
		Page:     queryInt(c, "page", 1, 1, 0),
		Limit:    queryInt(c, "limit", defaultPageLimit, 1, maxPageLimit),
	}

	articles, total, err := s.store.ListArticles(ctx, filter)
	if err != nil {
		s.log.ErrorContext(ctx, "Failed to list articles", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	pages := 0
	if total > 0 {
		pages = (total + filter.Limit - 1) / filter.Limit
	}

	c.JSON(http.StatusOK, NewsListResponse{
		Articles: toArticleResponses(articles),
		Total:    total,
		Page:     filter.Page,
		Limit:    filter.Limit,
		Pages:    pages,
	})
}

func (s *Server) trendingNews(c *gin.Context) {
	ctx := c.Request.Context()

	limit := queryInt(c, "limit", defaultTrending, 1, maxTrendingLimit)

	articles, err := s.store.TrendingArticles(ctx, limit)
	if err != nil {
		s.log.ErrorContext(ctx, "Failed to fetch trending articles", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	c.JSON(http.StatusOK, toArticleResponses(articles))
}

func (s *Server) getArticle(c *gin.Context) {
	ctx := c.Request.Context()

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid article id"})
		return
	}

	article, err := s.store.GetArticle(ctx, id)
	if err != nil {
		s.log.ErrorContext(ctx, "Failed to fetch article", "error", err, "id", id)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}
	if article == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Article not found"})
		return
	}

	c.JSON(http.StatusOK, toArticleResponse(article))
}

func (s *Server) summarizeArticle(c *gin.Context) {
	ctx := c.Request.Context()

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid article id"})
		return
	}

	article, err := s.store.GetArticle(ctx, id)
	if err != nil {
		s.log.ErrorContext(ctx, "Failed to fetch article", "error", err, "id", id)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}
	if article == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Article not found"})
		return
	}

	if article.HasSummary() {
		c.JSON(http.StatusOK, SummaryResponse{
			Summary:  article.Summary,
			AudioURL: article.AudioURL,
			Cached:   true,
		})
		return
	}

	result := s.generator.Generate(ctx, summary.Request{
		Title:       article.Title,
		Description: article.Description,
		Content:     article.Content,
		URL:         article.URL,
		Language:    article.Language,
	})

	if err = s.store.UpdateSummary(ctx, id, result.Text, result.AudioURL); err != nil {
		s.log.ErrorContext(ctx, "Failed to persist summary", "error", err, "id", id)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	s.log.InfoContext(ctx, "Generated summary",
		"id", id,
		"provenance", result.Provenance,
		"hasAudio", result.AudioURL != "")

	c.JSON(http.StatusOK, SummaryResponse{
		Summary:  result.Text,
		AudioURL: result.AudioURL,
		Cached:   false,
	})
}

// queryInt parses an integer query parameter, clamping to [minValue,
// maxValue]. A maxValue of 0 means no upper bound.
func queryInt(c *gin.Context, name string, defaultValue, minValue, maxValue int) int {
	raw := c.Query(name)
	if raw == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(raw)
	if err != nil || value < minValue {
		return defaultValue
	}

	if maxValue > 0 && value > maxValue {
		return maxValue
	}

	return value
}
