package repos

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/cardiobridge-backend/internal/domain"
	"github.com/yungbote/cardiobridge-backend/internal/pkg/logger"
)

type HealthProfileRepo interface {
	GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*domain.HealthProfile, error)
	Upsert(ctx context.Context, tx *gorm.DB, profile *domain.HealthProfile) error
}

type healthProfileRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewHealthProfileRepo(db *gorm.DB, baseLog *logger.Logger) HealthProfileRepo {
	repoLog := baseLog.With("repo", "HealthProfileRepo")
	return &healthProfileRepo{db: db, log: repoLog}
}

func (hr *healthProfileRepo) GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*domain.HealthProfile, error) {
	transaction := tx
	if transaction == nil {
		transaction = hr.db
	}
	var result domain.HealthProfile
	if err := transaction.WithContext(ctx).
		Where("user_id = ?", userID).
		First(&result).Error; err != nil {
		return nil, err
	}
	return &result, nil
}

func (hr *healthProfileRepo) Upsert(ctx context.Context, tx *gorm.DB, profile *domain.HealthProfile) error {
	transaction := tx
	if transaction == nil {
		transaction = hr.db
	}
	existing := domain.HealthProfile{}
	err := transaction.WithContext(ctx).
		Where("user_id = ?", profile.UserID).
		First(&existing).Error
	switch {
	case err == nil:
		profile.ID = existing.ID
		profile.CreatedAt = existing.CreatedAt
		return transaction.WithContext(ctx).Save(profile).Error
	case errors.Is(err, gorm.ErrRecordNotFound):
		return transaction.WithContext(ctx).Create(profile).Error
	default:
		return err
	}
}
