// Package notify broadcasts push notifications to subscribed devices
// through the FCM legacy HTTP API.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"khabar/internal/domain"
)

const (
	fcmEndpoint       = "https://fcm.googleapis.com/fcm/send"
	fcmRequestTimeout = 10 * time.Second

	// Topic every client is auto-subscribed to.
	breakingTopic = "breaking_news"

	titleMaxChars = 100
	bodyMaxChars  = 200
)

// TokenStore is the subset of the database used by the relay.
type TokenStore interface {
	ListPushTokens(ctx context.Context) ([]string, error)
	DeletePushTokens(ctx context.Context, tokens []string) error
}

type Relay struct {
	serverKey string
	endpoint  string
	store     TokenStore
	client    *http.Client
	log       *slog.Logger
}

func NewRelay(serverKey string, store TokenStore, log *slog.Logger) *Relay {
	return &Relay{
		serverKey: serverKey,
		endpoint:  fcmEndpoint,
		store:     store,
		client:    &http.Client{Timeout: fcmRequestTimeout},
		log:       log,
	}
}

// Enabled reports whether a server key is configured.
func (r *Relay) Enabled() bool { return r.serverKey != "" }

// Report summarizes one broadcast.
type Report struct {
	Success     int `json:"success"`
	Failure     int `json:"failure"`
	Subscribers int `json:"subscribers"`
}

type fcmMessage struct {
	To           string          `json:"to"`
	Notification fcmNotification `json:"notification"`
}

type fcmNotification struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

type fcmResponse struct {
	Success int         `json:"success"`
	Failure int         `json:"failure"`
	Results []fcmResult `json:"results"`
}

type fcmResult struct {
	Error string `json:"error"`
}

// Broadcast sends the notification to every subscribed token. Tokens
// FCM reports as no longer registered are removed from the store.
func (r *Relay) Broadcast(ctx context.Context, title, body string) (Report, error) {
	tokens, err := r.store.ListPushTokens(ctx)
	if err != nil {
		return Report{}, fmt.Errorf("failed to list push tokens: %w", err)
	}

	report := Report{Subscribers: len(tokens)}
	if len(tokens) == 0 {
		return report, nil
	}

	var invalid []string
	for _, token := range tokens {
		tokenErr, sendErr := r.send(ctx, token, title, body)
		if sendErr != nil {
			report.Failure++
			r.log.WarnContext(ctx, "Failed to send push notification", "error", sendErr)
			continue
		}

		switch tokenErr {
		case "":
			report.Success++
		case "NotRegistered", "InvalidRegistration":
			report.Failure++
			invalid = append(invalid, token)
		default:
			report.Failure++
			r.log.WarnContext(ctx, "Push notification rejected", "reason", tokenErr)
		}
	}

	if len(invalid) > 0 {
		if err = r.store.DeletePushTokens(ctx, invalid); err != nil {
			r.log.ErrorContext(ctx, "Failed to prune invalid push tokens", "error", err)
		} else {
			r.log.InfoContext(ctx, "Pruned invalid push tokens", "count", len(invalid))
		}
	}

	r.log.InfoContext(ctx, "Broadcast finished",
		"success", report.Success,
		"failure", report.Failure,
		"subscribers", report.Subscribers)

	return report, nil
}

// SendNewArticles notifies subscribers that a fetch stored new articles.
func (r *Relay) SendNewArticles(ctx context.Context, count int) error {
	title := fmt.Sprintf("📰 %d New Articles!", count)
	body := "Fresh news just arrived. Tap to read the latest stories."

	_, err := r.Broadcast(ctx, title, body)

	return err
}

// SendBreakingNews fans one article out to the breaking-news topic.
func (r *Relay) SendBreakingNews(ctx context.Context, article *domain.Article) error {
	title := "🚨 Breaking: " + truncate(article.Title, titleMaxChars)

	return r.SendToTopic(ctx, breakingTopic, title, truncate(article.Description, bodyMaxChars))
}

// SendTopicNotification fans one article out to a category topic.
func (r *Relay) SendTopicNotification(
	ctx context.Context,
	article *domain.Article,
	topic string,
) error {
	title := topic + ": " + truncate(article.Title, titleMaxChars)

	return r.SendToTopic(ctx, topic, title, truncate(article.Description, bodyMaxChars))
}

// SendToTopic delivers one notification to every device subscribed to
// the topic. FCM does the fan-out, so there is nothing to prune here.
func (r *Relay) SendToTopic(ctx context.Context, topic, title, body string) error {
	rejection, err := r.send(ctx, "/topics/"+safeTopic(topic), title, body)
	if err != nil {
		return fmt.Errorf("send to topic: %w", err)
	}
	if rejection != "" {
		return fmt.Errorf("topic send rejected: %s", rejection)
	}

	r.log.InfoContext(ctx, "Topic notification sent",
		"topic", safeTopic(topic))

	return nil
}

// send posts one message to a registration token or a "/topics/<name>"
// target. It returns the FCM rejection code, if any, and a transport error.
func (r *Relay) send(ctx context.Context, to, title, body string) (string, error) {
	payload, err := json.Marshal(fcmMessage{
		To: to,
		Notification: fcmNotification{
			Title: title,
			Body:  body,
		},
	})
	if err != nil {
		return "", fmt.Errorf("marshal message: %w", err)
	}

	req, err := http.NewRequestWithContext(
		ctx, http.MethodPost, r.endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "key="+r.serverKey)

	resp, err := r.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("do request: %w", err)
	}
	defer func() {
		if err = resp.Body.Close(); err != nil {
			r.log.WarnContext(ctx, "Failed to close response body", "error", err)
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	var parsed fcmResponse
	if err = json.Unmarshal(respBody, &parsed); err != nil {
		return "", fmt.Errorf("unmarshal response: %w", err)
	}

	if parsed.Failure > 0 && len(parsed.Results) > 0 {
		return parsed.Results[0].Error, nil
	}

	return "", nil
}

// safeTopic normalizes a topic to the characters FCM topic names allow.
func safeTopic(topic string) string {
	topic = strings.ToLower(strings.TrimSpace(topic))
	topic = strings.ReplaceAll(topic, " ", "_")

	return strings.ReplaceAll(topic, "-", "_")
}

func truncate(text string, maxRunes int) string {
	runes := []rune(text)
	if len(runes) <= maxRunes {
		return text
	}

	return string(runes[:maxRunes])
}
