package scorer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/yungbote/cardiobridge-backend/internal/pkg/ctxutil"
	"github.com/yungbote/cardiobridge-backend/internal/pkg/envutil"
	"github.com/yungbote/cardiobridge-backend/internal/pkg/httpx"
	"github.com/yungbote/cardiobridge-backend/internal/pkg/logger"
)

// Client talks to the model-serving process. The statistical model itself is
// a black box behind POST {base}/score/{model}; this client only enforces
// timeouts and retry policy around it.
type Client interface {
	Score(ctx context.Context, model string, features map[string]float64) (float64, error)
}

type Config struct {
	BaseURL    string
	APIKey     string
	Timeout    time.Duration
	MaxRetries int
}

func ConfigFromEnv() Config {
	return Config{
		BaseURL:    strings.TrimSpace(os.Getenv("SCORER_BASE_URL")),
		APIKey:     strings.TrimSpace(os.Getenv("SCORER_API_KEY")),
		Timeout:    envutil.Seconds("SCORER_TIMEOUT_SECONDS", 10*time.Second),
		MaxRetries: envutil.Int("SCORER_MAX_RETRIES", 2),
	}
}

func NewFromEnv(log *logger.Logger) (Client, error) {
	return New(log, ConfigFromEnv())
}

func New(log *logger.Logger, cfg Config) (Client, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("missing SCORER_BASE_URL")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	return &client{
		log:        log.With("client", "ScorerClient"),
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}, nil
}

type client struct {
	log        *logger.Logger
	cfg        Config
	httpClient *http.Client
}

type scoreRequest struct {
	Features map[string]float64 `json:"features"`
}

type scoreResponse struct {
	Probability float64 `json:"probability"`
}

type HTTPError struct {
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	if e == nil {
		return "scorer: <nil error>"
	}
	msg := strings.TrimSpace(e.Body)
	if msg == "" {
		msg = "<empty body>"
	}
	if len(msg) > 2000 {
		msg = msg[:2000] + "..."
	}
	return fmt.Sprintf("scorer http %d: %s", e.StatusCode, msg)
}

func (e *HTTPError) HTTPStatusCode() int {
	if e == nil {
		return 0
	}
	return e.StatusCode
}

func (c *client) Score(ctx context.Context, model string, features map[string]float64) (float64, error) {
	if c == nil || c.httpClient == nil {
		return 0, fmt.Errorf("scorer client unavailable")
	}
	model = strings.TrimSpace(model)
	if model == "" {
		return 0, fmt.Errorf("scorer: model required")
	}
	if len(features) == 0 {
		return 0, fmt.Errorf("scorer: features required")
	}

	endpoint := fmt.Sprintf("%s/score/%s", c.cfg.BaseURL, model)
	backoff := 500 * time.Millisecond

	for attempt := 0; ; attempt++ {
		if ctx.Err() != nil {
			return 0, ctx.Err()
		}

		prob, resp, err := c.scoreOnce(ctx, endpoint, features)
		if err == nil {
			return prob, nil
		}

		if !httpx.IsRetryableError(err) || attempt == c.cfg.MaxRetries {
			return 0, err
		}

		sleepFor := httpx.RetryAfterDuration(resp, backoff, 5*time.Second)
		sleepFor = httpx.JitterSleep(sleepFor)

		c.log.Warn("Scorer request retrying",
			"model", model,
			"attempt", attempt+1,
			"max_retries", c.cfg.MaxRetries,
			"sleep", sleepFor.String(),
			"error", err.Error(),
		)

		select {
		case <-ctx.Done():
			return 0, ctx.Err()
		case <-time.After(sleepFor):
		}
		backoff *= 2
	}
}

func (c *client) scoreOnce(ctx context.Context, endpoint string, features map[string]float64) (float64, *http.Response, error) {
	payload, err := json.Marshal(scoreRequest{Features: features})
	if err != nil {
		return 0, nil, err
	}

	req, err := http.NewRequestWithContext(ctxutil.Default(ctx), http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, resp, err
	}

	raw, readErr := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if readErr != nil {
		return 0, resp, readErr
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return 0, resp, &HTTPError{StatusCode: resp.StatusCode, Body: string(raw)}
	}

	var out scoreResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return 0, resp, fmt.Errorf("scorer decode error: %w; raw=%s", err, string(raw))
	}
	return out.Probability, resp, nil
}
