package app

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/cardiobridge-backend/internal/http"
	httpH "github.com/yungbote/cardiobridge-backend/internal/http/handlers"
	httpMW "github.com/yungbote/cardiobridge-backend/internal/http/middleware"
	"github.com/yungbote/cardiobridge-backend/internal/pkg/logger"
)

type Middleware struct {
	Auth *httpMW.AuthMiddleware
}

type Handlers struct {
	Health  *httpH.HealthHandler
	Auth    *httpH.AuthHandler
	Predict *httpH.PredictHandler
	Profile *httpH.ProfileHandler
}

func wireHandlers(log *logger.Logger, services Services) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Health:  httpH.NewHealthHandler(),
		Auth:    httpH.NewAuthHandler(services.Auth),
		Predict: httpH.NewPredictHandler(services.Prediction),
		Profile: httpH.NewProfileHandler(services.Profile),
	}
}

func wireMiddleware(log *logger.Logger, services Services) Middleware {
	log.Info("Wiring middleware...")
	return Middleware{
		Auth: httpMW.NewAuthMiddleware(log, services.Auth),
	}
}

func wireRouter(log *logger.Logger, handlers Handlers, middleware Middleware) *gin.Engine {
	return http.NewRouter(http.RouterConfig{
		Log:            log,
		AuthHandler:    handlers.Auth,
		AuthMiddleware: middleware.Auth,
		PredictHandler: handlers.Predict,
		ProfileHandler: handlers.Profile,
		HealthHandler:  handlers.Health,
	})
}
