package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

func (s *Server) subscribe(c *gin.Context) {
	ctx := c.Request.Context()

	var req SubscribeRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Token) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Token is required"})
		return
	}

	if err := s.store.UpsertPushToken(ctx, req.Token); err != nil {
		s.log.ErrorContext(ctx, "Failed to store push token", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":    "Subscribed successfully",
		"subscribed": true,
	})
}

func (s *Server) unsubscribe(c *gin.Context) {
	ctx := c.Request.Context()

	var req SubscribeRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Token) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Token is required"})
		return
	}

	deleted, err := s.store.DeletePushToken(ctx, req.Token)
	if err != nil {
		s.log.ErrorContext(ctx, "Failed to delete push token", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	if !deleted {
		c.JSON(http.StatusOK, gin.H{"message": "Token not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Unsubscribed successfully"})
}

func (s *Server) subscriberCount(c *gin.Context) {
	ctx := c.Request.Context()

	count, err := s.store.CountPushTokens(ctx)
	if err != nil {
		s.log.ErrorContext(ctx, "Failed to count push tokens", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"subscribers": count})
}

func (s *Server) sendNotification(c *gin.Context) {
	ctx := c.Request.Context()

	if s.adminAPIKey == "" || c.GetHeader("X-API-Key") != s.adminAPIKey {
		c.JSON(http.StatusForbidden, gin.H{"error": "Valid API key required"})
		return
	}

	if !s.broadcaster.Enabled() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Push notifications are disabled"})
		return
	}

	var req NotificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	article, err := s.store.GetArticle(ctx, req.ArticleID)
	if err != nil {
		s.log.ErrorContext(ctx, "Failed to load article", "id", req.ArticleID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}
	if article == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Article not found"})
		return
	}

	switch req.Type {
	case "breaking":
		err = s.broadcaster.SendBreakingNews(ctx, article)
	case "topic":
		if strings.TrimSpace(req.Topic) == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Topic is required"})
			return
		}
		err = s.broadcaster.SendTopicNotification(ctx, article, req.Topic)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid notification type"})
		return
	}
	if err != nil {
		s.log.ErrorContext(ctx, "Failed to send notification", "type", req.Type, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Send failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Notification sent",
		"type":    req.Type,
	})
}

func (s *Server) testNotification(c *gin.Context) {
	ctx := c.Request.Context()

	if s.adminAPIKey == "" || c.GetHeader("X-API-Key") != s.adminAPIKey {
		c.JSON(http.StatusForbidden, gin.H{"error": "Valid API key required"})
		return
	}

	if !s.broadcaster.Enabled() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Push notifications are disabled"})
		return
	}

	report, err := s.broadcaster.Broadcast(ctx,
		"Test Notification 🔔",
		"This is a test from Khabar! Your notifications are working.")
	if err != nil {
		s.log.ErrorContext(ctx, "Failed to broadcast notification", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Broadcast failed"})
		return
	}

	c.JSON(http.StatusOK, report)
}

func (s *Server) topics(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"topics": notificationTopics})
}
