// Package server exposes the REST API.
package server

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"khabar/internal/database"
	"khabar/internal/domain"
	"khabar/internal/notify"
	"khabar/internal/summary"
)

// Store is the subset of the database used by the handlers.
type Store interface {
	ListArticles(ctx context.Context, filter database.ArticleFilter) ([]domain.Article, int, error)
	TrendingArticles(ctx context.Context, limit int) ([]domain.Article, error)
	GetArticle(ctx context.Context, id int64) (*domain.Article, error)
	UpdateSummary(ctx context.Context, articleID int64, summary, audioURL string) error
	UpsertPushToken(ctx context.Context, token string) error
	DeletePushToken(ctx context.Context, token string) (bool, error)
	CountPushTokens(ctx context.Context) (int, error)
}

type SummaryGenerator interface {
	Generate(ctx context.Context, req summary.Request) summary.Result
}

type Broadcaster interface {
	Enabled() bool
	Broadcast(ctx context.Context, title, body string) (notify.Report, error)
	SendBreakingNews(ctx context.Context, article *domain.Article) error
	SendTopicNotification(ctx context.Context, article *domain.Article, topic string) error
}

type Server struct {
	store       Store
	generator   SummaryGenerator
	broadcaster Broadcaster
	adminAPIKey string
	audioDir    string
	log         *slog.Logger
}

func New(
	store Store,
	generator SummaryGenerator,
	broadcaster Broadcaster,
	adminAPIKey string,
	audioDir string,
	log *slog.Logger,
) *Server {
	return &Server{
		store:       store,
		generator:   generator,
		broadcaster: broadcaster,
		adminAPIKey: adminAPIKey,
		audioDir:    audioDir,
		log:         log,
	}
}

func (s *Server) Router() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "X-API-Key"}
	router.Use(cors.New(corsConfig))

	router.GET("/", s.root)
	router.GET("/health", s.health)

	router.Static("/static/audio", s.audioDir)

	news := router.Group("/api/news")
	news.GET("", s.listNews)
	news.GET("/trending", s.trendingNews)
	news.GET("/:id", s.getArticle)
	news.POST("/:id/summarize", s.summarizeArticle)

	notifications := router.Group("/api/notifications")
	notifications.POST("/subscribe", s.subscribe)
	notifications.POST("/unsubscribe", s.unsubscribe)
	notifications.GET("/subscribers", s.subscriberCount)
	notifications.POST("/send", s.sendNotification)
	notifications.POST("/test", s.testNotification)
	notifications.GET("/topics", s.topics)

	return router
}

func (s *Server) root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message":  "Khabar news aggregation API",
		"features": []string{"Hindi Support", "AI Summaries", "Voice Reading", "Push Notifications"},
	})
}

func (s *Server) health(c *gin.Context) {
	if _, err := s.store.CountPushTokens(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":   "unhealthy",
			"database": "disconnected",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":   "healthy",
		"database": "connected",
	})
}
