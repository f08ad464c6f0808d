package twilio

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/yungbote/cardiobridge-backend/internal/pkg/ctxutil"
	"github.com/yungbote/cardiobridge-backend/internal/pkg/envutil"
	"github.com/yungbote/cardiobridge-backend/internal/pkg/httpx"
	"github.com/yungbote/cardiobridge-backend/internal/pkg/logger"
)

type Client interface {
	SendSMS(ctx context.Context, to string, body string) (*Message, error)
}

type Config struct {
	AccountSID  string
	AuthToken   string
	BaseURL     string
	DefaultFrom string
	Timeout     time.Duration
	MaxRetries  int
}

func ConfigFromEnv() Config {
	return Config{
		AccountSID:  strings.TrimSpace(os.Getenv("TWILIO_ACCOUNT_SID")),
		AuthToken:   strings.TrimSpace(os.Getenv("TWILIO_AUTH_TOKEN")),
		BaseURL:     strings.TrimSpace(os.Getenv("TWILIO_BASE_URL")),
		DefaultFrom: strings.TrimSpace(os.Getenv("TWILIO_FROM_NUMBER")),
		Timeout:     envutil.Seconds("TWILIO_TIMEOUT_SECONDS", 15*time.Second),
		MaxRetries:  envutil.Int("TWILIO_MAX_RETRIES", 2),
	}
}

func NewFromEnv(log *logger.Logger) (Client, error) {
	return New(log, ConfigFromEnv())
}

func New(log *logger.Logger, cfg Config) (Client, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	cfg.AccountSID = strings.TrimSpace(cfg.AccountSID)
	if cfg.AccountSID == "" {
		return nil, fmt.Errorf("missing TWILIO_ACCOUNT_SID")
	}
	cfg.AuthToken = strings.TrimSpace(cfg.AuthToken)
	if cfg.AuthToken == "" {
		return nil, fmt.Errorf("missing TWILIO_AUTH_TOKEN")
	}
	if strings.TrimSpace(cfg.DefaultFrom) == "" {
		return nil, fmt.Errorf("missing TWILIO_FROM_NUMBER")
	}
	if strings.TrimSpace(cfg.BaseURL) == "" {
		cfg.BaseURL = "https://api.twilio.com/2010-04-01"
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}

	return &client{
		log:        log.With("client", "TwilioClient"),
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}, nil
}

type client struct {
	log        *logger.Logger
	cfg        Config
	httpClient *http.Client
}

type Message struct {
	SID          string  `json:"sid,omitempty"`
	To           string  `json:"to,omitempty"`
	From         string  `json:"from,omitempty"`
	Body         string  `json:"body,omitempty"`
	Status       string  `json:"status,omitempty"`
	ErrorCode    *int    `json:"error_code,omitempty"`
	ErrorMessage *string `json:"error_message,omitempty"`
}

func (c *client) SendSMS(ctx context.Context, to string, body string) (*Message, error) {
	if c == nil || c.httpClient == nil {
		return nil, fmt.Errorf("twilio client unavailable")
	}
	to = strings.TrimSpace(to)
	body = strings.TrimSpace(body)
	if to == "" {
		return nil, fmt.Errorf("twilio: To required")
	}
	if body == "" {
		return nil, fmt.Errorf("twilio: Body required")
	}

	form := url.Values{}
	form.Set("To", to)
	form.Set("From", c.cfg.DefaultFrom)
	form.Set("Body", body)

	endpoint := fmt.Sprintf("%s/Accounts/%s/Messages.json", c.cfg.BaseURL, c.cfg.AccountSID)
	return c.doForm(ctx, http.MethodPost, endpoint, form)
}

// ---------- HTTP / retry helpers ----------

type apiError struct {
	Code     int    `json:"code"`
	Message  string `json:"message"`
	MoreInfo string `json:"more_info"`
	Status   int    `json:"status"`
}

type HTTPError struct {
	StatusCode int
	Body       string
	APIError   *apiError
}

func (e *HTTPError) Error() string {
	if e == nil {
		return "twilio: <nil error>"
	}
	if e.APIError != nil && strings.TrimSpace(e.APIError.Message) != "" {
		if e.APIError.Code != 0 {
			return fmt.Sprintf("twilio http %d: %s (code=%d)", e.StatusCode, e.APIError.Message, e.APIError.Code)
		}
		return fmt.Sprintf("twilio http %d: %s", e.StatusCode, e.APIError.Message)
	}
	msg := strings.TrimSpace(e.Body)
	if msg == "" {
		msg = "<empty body>"
	}
	if len(msg) > 2000 {
		msg = msg[:2000] + "..."
	}
	return fmt.Sprintf("twilio http %d: %s", e.StatusCode, msg)
}

func (e *HTTPError) HTTPStatusCode() int {
	if e == nil {
		return 0
	}
	return e.StatusCode
}

func (c *client) doForm(ctx context.Context, method, urlStr string, form url.Values) (*Message, error) {
	backoff := 1 * time.Second

	for attempt := 0; ; attempt++ {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		out, resp, err := c.doFormOnce(ctx, method, urlStr, form)
		if err == nil {
			return out, nil
		}

		if !httpx.IsRetryableError(err) || attempt == c.cfg.MaxRetries {
			return nil, err
		}

		sleepFor := httpx.RetryAfterDuration(resp, backoff, 10*time.Second)
		sleepFor = httpx.JitterSleep(sleepFor)

		c.log.Warn("Twilio request retrying",
			"url", urlStr,
			"attempt", attempt+1,
			"max_retries", c.cfg.MaxRetries,
			"sleep", sleepFor.String(),
			"error", err.Error(),
		)

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(sleepFor):
		}
		backoff *= 2
	}
}

func (c *client) doFormOnce(ctx context.Context, method, urlStr string, form url.Values) (*Message, *http.Response, error) {
	req, err := http.NewRequestWithContext(ctxutil.Default(ctx), method, urlStr, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, nil, err
	}

	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")
	req.SetBasicAuth(c.cfg.AccountSID, c.cfg.AuthToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, resp, err
	}

	raw, readErr := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if readErr != nil {
		return nil, resp, readErr
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var ae apiError
		if json.Unmarshal(raw, &ae) == nil && strings.TrimSpace(ae.Message) != "" {
			return nil, resp, &HTTPError{StatusCode: resp.StatusCode, Body: string(raw), APIError: &ae}
		}
		return nil, resp, &HTTPError{StatusCode: resp.StatusCode, Body: string(raw)}
	}

	var out Message
	if len(raw) == 0 {
		return &out, resp, nil
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, resp, fmt.Errorf("twilio decode error: %w; raw=%s", err, string(raw))
	}
	return &out, resp, nil
}
