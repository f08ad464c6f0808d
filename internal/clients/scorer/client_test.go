package scorer

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/yungbote/cardiobridge-backend/internal/pkg/logger"
)

func newTestLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("production")
	if err != nil {
		t.Fatalf("failed to build logger: %v", err)
	}
	return log
}

func newTestClient(t *testing.T, baseURL string, maxRetries int) Client {
	t.Helper()
	c, err := New(newTestLogger(t), Config{
		BaseURL:    baseURL,
		APIKey:     "test-key",
		Timeout:    2 * time.Second,
		MaxRetries: maxRetries,
	})
	if err != nil {
		t.Fatalf("failed to build client: %v", err)
	}
	return c
}

func TestScoreSuccess(t *testing.T) {
	var gotPath, gotAuth string
	var gotFeatures map[string]float64

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		var req struct {
			Features map[string]float64 `json:"features"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("bad request body: %v", err)
		}
		gotFeatures = req.Features
		_ = json.NewEncoder(w).Encode(map[string]float64{"probability": 0.42})
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, 0)
	prob, err := c.Score(context.Background(), "acute", map[string]float64{"age": 50})
	if err != nil {
		t.Fatalf("score failed: %v", err)
	}
	if prob != 0.42 {
		t.Fatalf("got probability %v, want 0.42", prob)
	}
	if gotPath != "/score/acute" {
		t.Fatalf("got path %q, want /score/acute", gotPath)
	}
	if gotAuth != "Bearer test-key" {
		t.Fatalf("got auth %q", gotAuth)
	}
	if gotFeatures["age"] != 50 {
		t.Fatalf("got features %v", gotFeatures)
	}
}

func TestScoreRetriesOnServerError(t *testing.T) {
	attempts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts == 1 {
			http.Error(w, "busy", http.StatusServiceUnavailable)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]float64{"probability": 0.1})
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, 2)
	prob, err := c.Score(context.Background(), "lifestyle", map[string]float64{"age": 30})
	if err != nil {
		t.Fatalf("score failed after retry: %v", err)
	}
	if prob != 0.1 {
		t.Fatalf("got probability %v, want 0.1", prob)
	}
	if attempts != 2 {
		t.Fatalf("expected 2 attempts, got %d", attempts)
	}
}

func TestScoreDoesNotRetryClientError(t *testing.T) {
	attempts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		http.Error(w, "unknown model", http.StatusBadRequest)
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, 3)
	_, err := c.Score(context.Background(), "nope", map[string]float64{"age": 30})
	if err == nil {
		t.Fatal("expected error for 400 response")
	}
	if attempts != 1 {
		t.Fatalf("expected a single attempt for a client error, got %d", attempts)
	}
}

func TestScoreCancelledContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]float64{"probability": 0.5})
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := newTestClient(t, srv.URL, 0)
	_, err := c.Score(ctx, "acute", map[string]float64{"age": 50})
	if err == nil {
		t.Fatal("expected error for cancelled context")
	}
}
