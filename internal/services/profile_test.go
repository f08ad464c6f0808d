package services

import (
	"context"
	"net/http"
	"testing"

	"gorm.io/gorm"

	"github.com/yungbote/cardiobridge-backend/internal/pkg/apierr"
	"github.com/yungbote/cardiobridge-backend/internal/repos"
)

func newProfileForTest(t *testing.T) (ProfileService, *gorm.DB) {
	t.Helper()
	db := newTestDB(t)
	log := newTestLogger(t)
	return NewProfileService(db, log, repos.NewHealthProfileRepo(db, log)), db
}

func validProfileInput() ProfileInput {
	return ProfileInput{
		Age: 45, Gender: "male", Height: 180, Weight: 81,
		StressLevel: 3, Glucose: 1, Smoke: 0, Alco: 0, Active: 1,
	}
}

func TestProfileUpsertComputesBMI(t *testing.T) {
	svc, db := newProfileForTest(t)
	user := seedUser(t, db, "bmi@example.com", "")
	ctx := authedCtx(user)

	profile, err := svc.Upsert(ctx, validProfileInput())
	if err != nil {
		t.Fatalf("upsert failed: %v", err)
	}
	// 81 / 1.80^2 = 25.0
	if profile.BMI != 25.0 {
		t.Fatalf("expected BMI 25.0, got %v", profile.BMI)
	}

	got, err := svc.Get(ctx)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got == nil || got.BMI != 25.0 || got.UserID != user.ID {
		t.Fatalf("unexpected stored profile: %+v", got)
	}
}

func TestProfileUpsertReplacesExisting(t *testing.T) {
	svc, db := newProfileForTest(t)
	user := seedUser(t, db, "replace@example.com", "")
	ctx := authedCtx(user)

	first, err := svc.Upsert(ctx, validProfileInput())
	if err != nil {
		t.Fatalf("first upsert failed: %v", err)
	}

	in := validProfileInput()
	in.Weight = 90
	second, err := svc.Upsert(ctx, in)
	if err != nil {
		t.Fatalf("second upsert failed: %v", err)
	}
	if second.ID != first.ID {
		t.Fatalf("upsert created a second row: %s vs %s", second.ID, first.ID)
	}
	if second.WeightKG != 90 {
		t.Fatalf("expected updated weight, got %v", second.WeightKG)
	}
}

func TestProfileUpsertValidation(t *testing.T) {
	svc, db := newProfileForTest(t)
	user := seedUser(t, db, "invalidprof@example.com", "")

	in := validProfileInput()
	in.Height = 10
	in.Gender = " "
	_, err := svc.Upsert(authedCtx(user), in)
	apiErr, ok := apierr.As(err)
	if !ok || apiErr.Status != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %v", err)
	}
}

func TestProfileGetAbsentReturnsNil(t *testing.T) {
	svc, db := newProfileForTest(t)
	user := seedUser(t, db, "noprofile@example.com", "")

	got, err := svc.Get(authedCtx(user))
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got != nil {
		t.Fatalf("expected nil for absent profile, got %+v", got)
	}
}

func TestProfileRequiresRequestData(t *testing.T) {
	svc, _ := newProfileForTest(t)
	if _, err := svc.Get(context.Background()); err == nil {
		t.Fatal("expected error without request data")
	}
	if _, err := svc.Upsert(context.Background(), validProfileInput()); err == nil {
		t.Fatal("expected error without request data")
	}
}
