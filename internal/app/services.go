package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/cardiobridge-backend/internal/pkg/logger"
	"github.com/yungbote/cardiobridge-backend/internal/services"
)

type Services struct {
	Auth       services.AuthService
	Alert      services.AlertService
	Prediction services.PredictionService
	Profile    services.ProfileService
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, reposet Repos, clients Clients) Services {
	log.Info("Wiring services...")

	authService := services.NewAuthService(db, log, reposet.User, clients.Revocations, cfg.JWTSecretKey, cfg.AccessTokenTTL)
	alertService := services.NewAlertService(db, log, reposet.AlertEvent, clients.Notifier, cfg.DeliveryTimeout)
	predictionService := services.NewPredictionService(db, log, clients.Scorer, reposet.User, reposet.Prediction, alertService)
	profileService := services.NewProfileService(db, log, reposet.HealthProfile)

	return Services{
		Auth:       authService,
		Alert:      alertService,
		Prediction: predictionService,
		Profile:    profileService,
	}
}
