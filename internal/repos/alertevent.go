package repos

import (
	"context"

	"gorm.io/gorm"

	"github.com/yungbote/cardiobridge-backend/internal/domain"
	"github.com/yungbote/cardiobridge-backend/internal/pkg/logger"
)

type AlertEventRepo interface {
	Create(ctx context.Context, tx *gorm.DB, event *domain.AlertEvent) error
}

type alertEventRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAlertEventRepo(db *gorm.DB, baseLog *logger.Logger) AlertEventRepo {
	repoLog := baseLog.With("repo", "AlertEventRepo")
	return &alertEventRepo{db: db, log: repoLog}
}

func (ar *alertEventRepo) Create(ctx context.Context, tx *gorm.DB, event *domain.AlertEvent) error {
	transaction := tx
	if transaction == nil {
		transaction = ar.db
	}
	return transaction.WithContext(ctx).Create(event).Error
}
