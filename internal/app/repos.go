package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/cardiobridge-backend/internal/pkg/logger"
	"github.com/yungbote/cardiobridge-backend/internal/repos"
)

type Repos struct {
	User          repos.UserRepo
	Prediction    repos.PredictionRepo
	AlertEvent    repos.AlertEventRepo
	HealthProfile repos.HealthProfileRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		User:          repos.NewUserRepo(db, log),
		Prediction:    repos.NewPredictionRepo(db, log),
		AlertEvent:    repos.NewAlertEventRepo(db, log),
		HealthProfile: repos.NewHealthProfileRepo(db, log),
	}
}
