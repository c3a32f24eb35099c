package notify

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"khabar/internal/domain"
)

type stubTokenStore struct {
	mu      sync.Mutex
	tokens  []string
	deleted []string
	listErr error
}

func (s *stubTokenStore) ListPushTokens(_ context.Context) ([]string, error) {
	return s.tokens, s.listErr
}

func (s *stubTokenStore) DeletePushTokens(_ context.Context, tokens []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.deleted = append(s.deleted, tokens...)

	return nil
}

func newTestRelay(endpoint string, store TokenStore) *Relay {
	r := NewRelay("server-key", store, slog.Default())
	r.endpoint = endpoint

	return r
}

func TestBroadcastCountsResults(t *testing.T) {
	var gotAuth string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")

		var msg fcmMessage
		if err := json.NewDecoder(r.Body).Decode(&msg); err != nil {
			t.Errorf("failed to decode message: %v", err)
		}

		if msg.To == "bad-token" {
			_, _ = w.Write([]byte(`{"success":0,"failure":1,"results":[{"error":"NotRegistered"}]}`))
			return
		}

		_, _ = w.Write([]byte(`{"success":1,"failure":0,"results":[{}]}`))
	}))
	defer srv.Close()

	store := &stubTokenStore{tokens: []string{"token-a", "bad-token", "token-b"}}
	relay := newTestRelay(srv.URL, store)

	report, err := relay.Broadcast(context.Background(), "Title", "Body")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if gotAuth != "key=server-key" {
		t.Fatalf("unexpected Authorization header: %q", gotAuth)
	}

	if report.Success != 2 || report.Failure != 1 || report.Subscribers != 3 {
		t.Fatalf("unexpected report: %+v", report)
	}

	if len(store.deleted) != 1 || store.deleted[0] != "bad-token" {
		t.Fatalf("unexpected pruned tokens: %v", store.deleted)
	}
}

func TestBroadcastNoSubscribers(t *testing.T) {
	relay := newTestRelay("http://unused.invalid", &stubTokenStore{})

	report, err := relay.Broadcast(context.Background(), "Title", "Body")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if report.Subscribers != 0 || report.Success != 0 || report.Failure != 0 {
		t.Fatalf("unexpected report: %+v", report)
	}
}

func TestBroadcastTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	store := &stubTokenStore{tokens: []string{"token-a"}}
	relay := newTestRelay(srv.URL, store)

	report, err := relay.Broadcast(context.Background(), "Title", "Body")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if report.Failure != 1 || report.Success != 0 {
		t.Fatalf("unexpected report: %+v", report)
	}

	if len(store.deleted) != 0 {
		t.Fatalf("tokens should not be pruned on transport failure: %v", store.deleted)
	}
}

func TestSendBreakingNews(t *testing.T) {
	var got fcmMessage

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("failed to decode message: %v", err)
		}

		_, _ = w.Write([]byte(`{"success":1,"failure":0,"results":[{}]}`))
	}))
	defer srv.Close()

	relay := newTestRelay(srv.URL, &stubTokenStore{})

	article := &domain.Article{
		Title:       "Major outage hits cloud provider",
		Description: "Services across three regions went dark for an hour.",
	}

	if err := relay.SendBreakingNews(context.Background(), article); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got.To != "/topics/breaking_news" {
		t.Fatalf("unexpected target: %q", got.To)
	}

	if got.Notification.Title != "🚨 Breaking: "+article.Title {
		t.Fatalf("unexpected title: %q", got.Notification.Title)
	}

	if got.Notification.Body != article.Description {
		t.Fatalf("unexpected body: %q", got.Notification.Body)
	}
}

func TestSendTopicNotificationNormalizesTopic(t *testing.T) {
	var got fcmMessage

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("failed to decode message: %v", err)
		}

		_, _ = w.Write([]byte(`{"success":1,"failure":0,"results":[{}]}`))
	}))
	defer srv.Close()

	relay := newTestRelay(srv.URL, &stubTokenStore{})

	article := &domain.Article{Title: "Chip startup raises funding", Description: "Details inside."}

	err := relay.SendTopicNotification(context.Background(), article, "Tech News-Daily")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got.To != "/topics/tech_news_daily" {
		t.Fatalf("unexpected target: %q", got.To)
	}
}

func TestSendToTopicRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"success":0,"failure":1,"results":[{"error":"InvalidRegistration"}]}`))
	}))
	defer srv.Close()

	relay := newTestRelay(srv.URL, &stubTokenStore{})

	err := relay.SendToTopic(context.Background(), "science", "Title", "Body")
	if err == nil {
		t.Fatalf("expected an error for a rejected topic send")
	}
}

func TestTruncate(t *testing.T) {
	long := strings.Repeat("й", titleMaxChars+5)

	if got := truncate(long, titleMaxChars); len([]rune(got)) != titleMaxChars {
		t.Fatalf("unexpected truncated length: %d", len([]rune(got)))
	}

	if got := truncate("short", titleMaxChars); got != "short" {
		t.Fatalf("short text should be unchanged, got %q", got)
	}
}

func TestEnabled(t *testing.T) {
	if NewRelay("", &stubTokenStore{}, slog.Default()).Enabled() {
		t.Fatalf("expected relay without key to be disabled")
	}

	if !NewRelay("key", &stubTokenStore{}, slog.Default()).Enabled() {
		t.Fatalf("expected relay with key to be enabled")
	}
}
