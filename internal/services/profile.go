package services

import (
	"context"
	"errors"
	"math"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/cardiobridge-backend/internal/domain"
	"github.com/yungbote/cardiobridge-backend/internal/pkg/apierr"
	"github.com/yungbote/cardiobridge-backend/internal/pkg/ctxutil"
	"github.com/yungbote/cardiobridge-backend/internal/pkg/logger"
	"github.com/yungbote/cardiobridge-backend/internal/repos"
)

type ProfileInput struct {
	Age               int     `json:"age"`
	Gender            string  `json:"gender"`
	Height            float64 `json:"height"`
	Weight            float64 `json:"weight"`
	StressLevel       int     `json:"stress_level"`
	Glucose           int     `json:"glucose"`
	Smoke             int     `json:"smoke"`
	Alco              int     `json:"alco"`
	Active            int     `json:"active"`
	MedicalConditions string  `json:"medical_conditions,omitempty"`
}

type ProfileService interface {
	Get(ctx context.Context) (*domain.HealthProfile, error)
	Upsert(ctx context.Context, in ProfileInput) (*domain.HealthProfile, error)
}

type profileService struct {
	db          *gorm.DB
	log         *logger.Logger
	profileRepo repos.HealthProfileRepo
}

func NewProfileService(db *gorm.DB, log *logger.Logger, profileRepo repos.HealthProfileRepo) ProfileService {
	serviceLog := log.With("service", "ProfileService")
	return &profileService{db: db, log: serviceLog, profileRepo: profileRepo}
}

func (s *profileService) Get(ctx context.Context) (*domain.HealthProfile, error) {
	rd := ctxutil.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return nil, apierr.New(http.StatusUnauthorized, apierr.CodeTokenInvalid, errors.New("unauthorized"))
	}
	profile, err := s.profileRepo.GetByUserID(ctx, nil, rd.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return profile, nil
}

func (s *profileService) Upsert(ctx context.Context, in ProfileInput) (*domain.HealthProfile, error) {
	rd := ctxutil.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return nil, apierr.New(http.StatusUnauthorized, apierr.CodeTokenInvalid, errors.New("unauthorized"))
	}

	fields := outOfRange([]fieldCheck{
		{"age", float64(in.Age), 1, 120},
		{"height", in.Height, 100, 250},
		{"weight", in.Weight, 20, 300},
		{"stress_level", float64(in.StressLevel), 0, 10},
		{"glucose", float64(in.Glucose), 1, 3},
		{"smoke", float64(in.Smoke), 0, 1},
		{"alco", float64(in.Alco), 0, 1},
		{"active", float64(in.Active), 0, 1},
	})
	if strings.TrimSpace(in.Gender) == "" {
		fields = append(fields, "gender")
	}
	if len(fields) > 0 {
		return nil, validationError(fields)
	}

	heightM := in.Height / 100
	bmi := math.Round(in.Weight/(heightM*heightM)*100) / 100

	profile := &domain.HealthProfile{
		UserID:            rd.UserID,
		Age:               in.Age,
		Gender:            strings.TrimSpace(in.Gender),
		HeightCM:          in.Height,
		WeightKG:          in.Weight,
		BMI:               bmi,
		StressLevel:       in.StressLevel,
		Glucose:           in.Glucose,
		Smoke:             in.Smoke,
		Alco:              in.Alco,
		Active:            in.Active,
		MedicalConditions: strings.TrimSpace(in.MedicalConditions),
	}
	if err := s.profileRepo.Upsert(ctx, nil, profile); err != nil {
		s.log.Error("Failed to upsert health profile", "user_id", rd.UserID.String(), "error", err)
		return nil, err
	}
	return profile, nil
}
