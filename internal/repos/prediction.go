package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/cardiobridge-backend/internal/domain"
	"github.com/yungbote/cardiobridge-backend/internal/pkg/logger"
)

type PredictionRepo interface {
	Create(ctx context.Context, tx *gorm.DB, prediction *domain.Prediction) error
	ListByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*domain.Prediction, error)
}

type predictionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPredictionRepo(db *gorm.DB, baseLog *logger.Logger) PredictionRepo {
	repoLog := baseLog.With("repo", "PredictionRepo")
	return &predictionRepo{db: db, log: repoLog}
}

func (pr *predictionRepo) Create(ctx context.Context, tx *gorm.DB, prediction *domain.Prediction) error {
	transaction := tx
	if transaction == nil {
		transaction = pr.db
	}
	return transaction.WithContext(ctx).Create(prediction).Error
}

func (pr *predictionRepo) ListByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*domain.Prediction, error) {
	transaction := tx
	if transaction == nil {
		transaction = pr.db
	}
	var results []*domain.Prediction
	if err := transaction.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
