package services

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/yungbote/cardiobridge-backend/internal/domain"
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

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	if err := db.AutoMigrate(
		&domain.User{},
		&domain.Prediction{},
		&domain.AlertEvent{},
		&domain.HealthProfile{},
	); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return db
}

type smsCall struct {
	to   string
	body string
}

type fakeNotifier struct {
	err   error
	calls []smsCall
}

func (f *fakeNotifier) SendSMS(ctx context.Context, to, body string) error {
	f.calls = append(f.calls, smsCall{to: to, body: body})
	return f.err
}

type fakeRevocations struct {
	revoked map[string]bool
	err     error
}

func newFakeRevocations() *fakeRevocations {
	return &fakeRevocations{revoked: map[string]bool{}}
}

func (f *fakeRevocations) Revoke(ctx context.Context, tokenID string, ttl time.Duration) error {
	if f.err != nil {
		return f.err
	}
	f.revoked[tokenID] = true
	return nil
}

func (f *fakeRevocations) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	return f.revoked[tokenID], nil
}

func (f *fakeRevocations) Close() error { return nil }

type fakeScorer struct {
	prob  float64
	err   error
	calls int
	fn    func(ctx context.Context, model string, features map[string]float64) (float64, error)
}

func (f *fakeScorer) Score(ctx context.Context, model string, features map[string]float64) (float64, error) {
	f.calls++
	if f.fn != nil {
		return f.fn(ctx, model, features)
	}
	return f.prob, f.err
}

type recordingAlerts struct {
	calls   int
	lastP   float64
	outcome AlertOutcome
}

func (r *recordingAlerts) MaybeAlert(ctx context.Context, user *domain.User, riskProbability float64) AlertOutcome {
	r.calls++
	r.lastP = riskProbability
	return r.outcome
}

func seedUser(t *testing.T, db *gorm.DB, email, phone string) *domain.User {
	t.Helper()
	user := &domain.User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: "x",
		FullName:     "Test User",
		PhoneNumber:  phone,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to seed user: %v", err)
	}
	return user
}
