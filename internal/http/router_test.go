package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	apihttp "github.com/yungbote/cardiobridge-backend/internal/http"
	httpH "github.com/yungbote/cardiobridge-backend/internal/http/handlers"
	httpMW "github.com/yungbote/cardiobridge-backend/internal/http/middleware"

	"github.com/yungbote/cardiobridge-backend/internal/domain"
	"github.com/yungbote/cardiobridge-backend/internal/pkg/logger"
	"github.com/yungbote/cardiobridge-backend/internal/repos"
	"github.com/yungbote/cardiobridge-backend/internal/services"
)

type stubScorer struct {
	prob float64
	err  error
}

func (s *stubScorer) Score(ctx context.Context, model string, features map[string]float64) (float64, error) {
	return s.prob, s.err
}

type stubNotifier struct {
	err   error
	calls int
}

func (n *stubNotifier) SendSMS(ctx context.Context, to, body string) error {
	n.calls++
	return n.err
}

func newTestRouter(t *testing.T, scorerStub *stubScorer, notifier services.Notifier) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	log, err := logger.New("production")
	if err != nil {
		t.Fatalf("failed to build logger: %v", err)
	}

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&domain.User{}, &domain.Prediction{}, &domain.AlertEvent{}, &domain.HealthProfile{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	userRepo := repos.NewUserRepo(db, log)
	predictionRepo := repos.NewPredictionRepo(db, log)
	alertEventRepo := repos.NewAlertEventRepo(db, log)
	profileRepo := repos.NewHealthProfileRepo(db, log)

	authService := services.NewAuthService(db, log, userRepo, nil, "test-secret", time.Hour)
	alertService := services.NewAlertService(db, log, alertEventRepo, notifier, time.Second)
	predictionService := services.NewPredictionService(db, log, scorerStub, userRepo, predictionRepo, alertService)
	profileService := services.NewProfileService(db, log, profileRepo)

	return apihttp.NewRouter(apihttp.RouterConfig{
		Log:            log,
		AuthHandler:    httpH.NewAuthHandler(authService),
		AuthMiddleware: httpMW.NewAuthMiddleware(log, authService),
		PredictHandler: httpH.NewPredictHandler(predictionService),
		ProfileHandler: httpH.NewProfileHandler(profileService),
		HealthHandler:  httpH.NewHealthHandler(),
	})
}

func doJSON(t *testing.T, r *gin.Engine, method, path, token string, payload any) *httptest.ResponseRecorder {
	t.Helper()
	var body *bytes.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("failed to encode payload: %v", err)
		}
		body = bytes.NewReader(raw)
	} else {
		body = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	out := map[string]any{}
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("failed to decode response %q: %v", w.Body.String(), err)
	}
	return out
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	body := decodeBody(t, w)
	envelope, ok := body["error"].(map[string]any)
	if !ok {
		t.Fatalf("no error envelope in %q", w.Body.String())
	}
	code, _ := envelope["code"].(string)
	return code
}

func signupAndLogin(t *testing.T, r *gin.Engine, email, phone string) string {
	t.Helper()
	w := doJSON(t, r, http.MethodPost, "/auth/signup", "", map[string]string{
		"email":        email,
		"password":     "longenough",
		"full_name":    "Router Test",
		"phone_number": phone,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("signup returned %d: %s", w.Code, w.Body.String())
	}

	form := url.Values{"username": {email}, "password": {"longenough"}}
	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	lw := httptest.NewRecorder()
	r.ServeHTTP(lw, req)
	if lw.Code != http.StatusOK {
		t.Fatalf("login returned %d: %s", lw.Code, lw.Body.String())
	}
	body := decodeBody(t, lw)
	if body["token_type"] != "bearer" {
		t.Fatalf("expected bearer token type, got %v", body["token_type"])
	}
	token, _ := body["access_token"].(string)
	if token == "" {
		t.Fatal("expected access token in login response")
	}
	return token
}

func acutePayload() map[string]any {
	return map[string]any{
		"age": 58, "sex": 1, "cp": 2, "trestbps": 140, "chol": 280,
		"fbs": 0, "restecg": 1, "thalach": 120, "exang": 1,
		"oldpeak": 2.5, "slope": 1, "ca": 1, "thal": 3,
	}
}

func TestHealthcheck(t *testing.T) {
	r := newTestRouter(t, &stubScorer{}, nil)
	w := doJSON(t, r, http.MethodGet, "/healthcheck", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("healthcheck returned %d", w.Code)
	}
}

func TestSignupDuplicateReturnsConflict(t *testing.T) {
	r := newTestRouter(t, &stubScorer{}, nil)
	payload := map[string]string{"email": "dup@example.com", "password": "longenough", "full_name": "D"}

	if w := doJSON(t, r, http.MethodPost, "/auth/signup", "", payload); w.Code != http.StatusCreated {
		t.Fatalf("first signup returned %d: %s", w.Code, w.Body.String())
	}
	w := doJSON(t, r, http.MethodPost, "/auth/signup", "", payload)
	if w.Code != http.StatusConflict {
		t.Fatalf("duplicate signup returned %d: %s", w.Code, w.Body.String())
	}
	if code := errorCode(t, w); code != "duplicate_email" {
		t.Fatalf("expected duplicate_email, got %q", code)
	}
}

func TestLoginAndMe(t *testing.T) {
	r := newTestRouter(t, &stubScorer{}, nil)
	token := signupAndLogin(t, r, "me@example.com", "")

	w := doJSON(t, r, http.MethodGet, "/auth/me", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("/auth/me returned %d: %s", w.Code, w.Body.String())
	}
	body := decodeBody(t, w)
	if body["email"] != "me@example.com" {
		t.Fatalf("unexpected identity: %v", body)
	}

	// Truncating the signature invalidates the token.
	w = doJSON(t, r, http.MethodGet, "/auth/me", token[:len(token)-2], nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("tampered token returned %d", w.Code)
	}
	if code := errorCode(t, w); code != "token_invalid" {
		t.Fatalf("expected token_invalid, got %q", code)
	}

	// A non-Bearer scheme must not be parsed as a token.
	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
	bw := httptest.NewRecorder()
	r.ServeHTTP(bw, req)
	if bw.Code != http.StatusUnauthorized {
		t.Fatalf("basic auth header returned %d", bw.Code)
	}
	if code := errorCode(t, bw); code != "token_invalid" {
		t.Fatalf("expected token_invalid, got %q", code)
	}
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	r := newTestRouter(t, &stubScorer{prob: 0.1}, nil)

	w := doJSON(t, r, http.MethodPost, "/predict", "", acutePayload())
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("unauthenticated predict returned %d", w.Code)
	}
	w = doJSON(t, r, http.MethodGet, "/predictions", "", nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("unauthenticated history returned %d", w.Code)
	}
}

func TestPredictHighRiskEndToEnd(t *testing.T) {
	notifier := &stubNotifier{}
	r := newTestRouter(t, &stubScorer{prob: 0.88}, notifier)
	token := signupAndLogin(t, r, "risk@example.com", "+15551230000")

	w := doJSON(t, r, http.MethodPost, "/predict", token, acutePayload())
	if w.Code != http.StatusOK {
		t.Fatalf("predict returned %d: %s", w.Code, w.Body.String())
	}
	body := decodeBody(t, w)
	if body["risk_label"] != "high" {
		t.Fatalf("expected high risk label, got %v", body)
	}
	alert, ok := body["alert"].(map[string]any)
	if !ok || alert["status"] != "sent" {
		t.Fatalf("expected sent alert, got %v", body["alert"])
	}
	if notifier.calls != 1 {
		t.Fatalf("expected one SMS, got %d", notifier.calls)
	}

	hw := doJSON(t, r, http.MethodGet, "/predictions", token, nil)
	if hw.Code != http.StatusOK {
		t.Fatalf("history returned %d: %s", hw.Code, hw.Body.String())
	}
	var records []map[string]any
	if err := json.Unmarshal(hw.Body.Bytes(), &records); err != nil {
		t.Fatalf("failed to decode history: %v", err)
	}
	if len(records) != 1 || records[0]["model_kind"] != "acute" {
		t.Fatalf("unexpected history: %v", records)
	}
}

func TestPredictSucceedsWhenDeliveryFails(t *testing.T) {
	notifier := &stubNotifier{err: errors.New("gateway down")}
	r := newTestRouter(t, &stubScorer{prob: 0.95}, notifier)
	token := signupAndLogin(t, r, "isolated@example.com", "+15551231111")

	w := doJSON(t, r, http.MethodPost, "/predict", token, acutePayload())
	if w.Code != http.StatusOK {
		t.Fatalf("predict must not fail on delivery error, got %d: %s", w.Code, w.Body.String())
	}
	body := decodeBody(t, w)
	alert, ok := body["alert"].(map[string]any)
	if !ok || alert["status"] != "delivery_failed" || alert["reason"] != "delivery_error" {
		t.Fatalf("expected delivery_failed/delivery_error, got %v", body["alert"])
	}
}

func TestPredictScorerOutageMapsTo503(t *testing.T) {
	r := newTestRouter(t, &stubScorer{err: errors.New("connection refused")}, nil)
	token := signupAndLogin(t, r, "outage@example.com", "")

	w := doJSON(t, r, http.MethodPost, "/predict", token, acutePayload())
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d: %s", w.Code, w.Body.String())
	}
	if code := errorCode(t, w); code != "scorer_unavailable" {
		t.Fatalf("expected scorer_unavailable, got %q", code)
	}
}

func TestWellnessIsPublic(t *testing.T) {
	r := newTestRouter(t, &stubScorer{prob: 0.2}, nil)

	w := doJSON(t, r, http.MethodPost, "/predict/wellness", "", map[string]any{
		"stress_level": 3, "sleep_hours": 7.0, "daily_steps": 9000,
		"water_intake": 2.0, "hrv": 65, "age": 35, "bmi": 23.5,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("wellness predict returned %d: %s", w.Code, w.Body.String())
	}
	body := decodeBody(t, w)
	if body["risk_label"] != "low" {
		t.Fatalf("expected low label, got %v", body)
	}
	if _, hasAlert := body["alert"]; hasAlert {
		t.Fatal("wellness response must not carry an alert")
	}
}

func TestProfileRoundTrip(t *testing.T) {
	r := newTestRouter(t, &stubScorer{}, nil)
	token := signupAndLogin(t, r, "profile@example.com", "")

	w := doJSON(t, r, http.MethodPost, "/profile", token, map[string]any{
		"age": 40, "gender": "female", "height": 165.0, "weight": 60.0,
		"stress_level": 2, "glucose": 1, "smoke": 0, "alco": 0, "active": 1,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("profile upsert returned %d: %s", w.Code, w.Body.String())
	}

	gw := doJSON(t, r, http.MethodGet, "/profile", token, nil)
	if gw.Code != http.StatusOK {
		t.Fatalf("profile get returned %d: %s", gw.Code, gw.Body.String())
	}
	body := decodeBody(t, gw)
	if body["gender"] != "female" {
		t.Fatalf("unexpected profile: %v", body)
	}
}
