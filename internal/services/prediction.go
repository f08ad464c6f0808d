package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/yungbote/cardiobridge-backend/internal/clients/scorer"
	"github.com/yungbote/cardiobridge-backend/internal/domain"
	"github.com/yungbote/cardiobridge-backend/internal/pkg/apierr"
	"github.com/yungbote/cardiobridge-backend/internal/pkg/ctxutil"
	"github.com/yungbote/cardiobridge-backend/internal/pkg/logger"
	"github.com/yungbote/cardiobridge-backend/internal/repos"
)

// Risk label cut-points.
const (
	riskLabelLowBelow    = 0.33
	riskLabelMediumBelow = 0.70
)

type PredictionOutcome struct {
	RiskProbability float64       `json:"risk_probability"`
	RiskLabel       string        `json:"risk_label"`
	RiskMessage     string        `json:"risk_message"`
	Alert           *AlertOutcome `json:"alert,omitempty"`
}

type PredictionService interface {
	PredictAcute(ctx context.Context, vitals AcuteVitals) (*PredictionOutcome, error)
	PredictLifestyle(ctx context.Context, vitals LifestyleVitals) (*PredictionOutcome, error)
	PredictWellness(ctx context.Context, vitals WellnessVitals) (*PredictionOutcome, error)
	ListHistory(ctx context.Context) ([]*domain.Prediction, error)
}

type predictionService struct {
	db             *gorm.DB
	log            *logger.Logger
	scorerClient   scorer.Client
	userRepo       repos.UserRepo
	predictionRepo repos.PredictionRepo
	alertService   AlertService
}

func NewPredictionService(
	db *gorm.DB,
	log *logger.Logger,
	scorerClient scorer.Client,
	userRepo repos.UserRepo,
	predictionRepo repos.PredictionRepo,
	alertService AlertService,
) PredictionService {
	serviceLog := log.With("service", "PredictionService")
	return &predictionService{
		db:             db,
		log:            serviceLog,
		scorerClient:   scorerClient,
		userRepo:       userRepo,
		predictionRepo: predictionRepo,
		alertService:   alertService,
	}
}

func (ps *predictionService) PredictAcute(ctx context.Context, vitals AcuteVitals) (*PredictionOutcome, error) {
	if fields := vitals.invalidFields(); len(fields) > 0 {
		return nil, validationError(fields)
	}
	return ps.predictForUser(ctx, domain.ModelKindAcute, vitals.features(), vitals)
}

func (ps *predictionService) PredictLifestyle(ctx context.Context, vitals LifestyleVitals) (*PredictionOutcome, error) {
	if fields := vitals.invalidFields(); len(fields) > 0 {
		return nil, validationError(fields)
	}
	return ps.predictForUser(ctx, domain.ModelKindLifestyle, vitals.features(), vitals)
}

// PredictWellness is the one unauthenticated scoring path: no history record
// and no alert, matching the model's advisory-only purpose.
func (ps *predictionService) PredictWellness(ctx context.Context, vitals WellnessVitals) (*PredictionOutcome, error) {
	if fields := vitals.invalidFields(); len(fields) > 0 {
		return nil, validationError(fields)
	}
	prob, err := ps.score(ctx, domain.ModelKindWellness, vitals.features())
	if err != nil {
		return nil, err
	}
	prob = clamp01(prob)
	return &PredictionOutcome{
		RiskProbability: prob,
		RiskLabel:       riskLabel(prob),
		RiskMessage:     riskMessage(prob),
	}, nil
}

// predictForUser runs the full authenticated pipeline: validation has already
// passed, so the order is score, record, then alert. Steps never reorder.
func (ps *predictionService) predictForUser(ctx context.Context, modelKind string, features map[string]float64, rawInput any) (*PredictionOutcome, error) {
	rd := ctxutil.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return nil, apierr.New(http.StatusUnauthorized, apierr.CodeTokenInvalid, errors.New("unauthorized"))
	}

	user, err := ps.userRepo.GetByID(ctx, nil, rd.UserID)
	if err != nil {
		return nil, apierr.New(http.StatusUnauthorized, apierr.CodeTokenInvalid, errors.New("unauthorized"))
	}

	prob, err := ps.score(ctx, modelKind, features)
	if err != nil {
		return nil, err
	}

	label := riskLabel(prob)
	outcome := &PredictionOutcome{
		RiskProbability: prob,
		RiskLabel:       label,
		RiskMessage:     riskMessage(prob),
	}

	ps.saveHistory(ctx, user.ID, modelKind, rawInput, prob, label)

	// A caller that disconnected mid-flight gets no alert dispatched on its
	// behalf.
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	alert := ps.alertService.MaybeAlert(ctx, user, prob)
	outcome.Alert = &alert
	return outcome, nil
}

func (ps *predictionService) score(ctx context.Context, modelKind string, features map[string]float64) (float64, error) {
	prob, err := ps.scorerClient.Score(ctx, modelKind, features)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return 0, err
		}
		ps.log.Error("Scorer call failed", "model", modelKind, "error", err)
		return 0, apierr.New(http.StatusServiceUnavailable, apierr.CodeScorerUnavailable,
			fmt.Errorf("scorer unavailable: %w", err))
	}
	return prob, nil
}

// saveHistory is best-effort, mirroring alert isolation: a history write
// failure never fails the prediction.
func (ps *predictionService) saveHistory(ctx context.Context, userID uuid.UUID, modelKind string, rawInput any, prob float64, label string) {
	raw, err := json.Marshal(rawInput)
	if err != nil {
		ps.log.Warn("Failed to encode prediction input", "error", err)
		raw = nil
	}
	record := &domain.Prediction{
		UserID:          userID,
		ModelKind:       modelKind,
		Input:           datatypes.JSON(raw),
		RiskProbability: prob,
		RiskLabel:       label,
	}
	if err := ps.predictionRepo.Create(ctxutil.Default(ctx), nil, record); err != nil {
		ps.log.Warn("Failed to save prediction history", "user_id", userID.String(), "error", err)
	}
}

func (ps *predictionService) ListHistory(ctx context.Context) ([]*domain.Prediction, error) {
	rd := ctxutil.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return nil, apierr.New(http.StatusUnauthorized, apierr.CodeTokenInvalid, errors.New("unauthorized"))
	}
	return ps.predictionRepo.ListByUserID(ctx, nil, rd.UserID)
}

func validationError(fields []string) error {
	return apierr.New(http.StatusUnprocessableEntity, apierr.CodeValidationError,
		fmt.Errorf("vitals out of range: %s", strings.Join(fields, ", ")))
}

func riskLabel(prob float64) string {
	switch {
	case prob < riskLabelLowBelow:
		return "low"
	case prob < riskLabelMediumBelow:
		return "medium"
	default:
		return "high"
	}
}

func riskMessage(prob float64) string {
	p := prob * 100
	switch {
	case p == 0:
		return "No immediate cardiac risk detected based on current input."
	case p <= 20:
		return "Low cardiac risk. Maintain a healthy lifestyle."
	case p <= 50:
		return "Moderate cardiac risk. Lifestyle changes and monitoring recommended."
	case p <= 80:
		return "High cardiac risk. Medical consultation advised."
	case p < 100:
		return "Very high cardiac risk. Seek medical attention soon."
	default:
		return "Extremely high cardiac risk detected. Please visit the nearest hospital immediately."
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
