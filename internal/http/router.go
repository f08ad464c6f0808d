package http

import (
	"github.com/gin-gonic/gin"

	httpH "github.com/yungbote/cardiobridge-backend/internal/http/handlers"
	httpMW "github.com/yungbote/cardiobridge-backend/internal/http/middleware"
	"github.com/yungbote/cardiobridge-backend/internal/pkg/logger"
)

type RouterConfig struct {
	Log *logger.Logger

	AuthHandler    *httpH.AuthHandler
	AuthMiddleware *httpMW.AuthMiddleware
	PredictHandler *httpH.PredictHandler
	ProfileHandler *httpH.ProfileHandler
	HealthHandler  *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.CORS())

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}

	// Auth (public)
	if cfg.AuthHandler != nil {
		r.POST("/auth/signup", cfg.AuthHandler.Signup)
		r.POST("/auth/login", cfg.AuthHandler.Login)
		r.GET("/auth/me", cfg.AuthHandler.Me)
	}

	// Wellness scoring is public: advisory only, no account required.
	if cfg.PredictHandler != nil {
		r.POST("/predict/wellness", cfg.PredictHandler.PredictWellness)
	}

	protected := r.Group("/")
	{
		if cfg.AuthMiddleware != nil {
			protected.Use(cfg.AuthMiddleware.RequireAuth())
		}

		if cfg.AuthHandler != nil {
			protected.POST("/auth/logout", cfg.AuthHandler.Logout)
		}

		if cfg.PredictHandler != nil {
			protected.POST("/predict", cfg.PredictHandler.PredictAcute)
			protected.POST("/predict/acute", cfg.PredictHandler.PredictAcute)
			protected.POST("/predict/lifestyle", cfg.PredictHandler.PredictLifestyle)
			protected.GET("/predictions", cfg.PredictHandler.ListHistory)
		}

		if cfg.ProfileHandler != nil {
			protected.GET("/profile", cfg.ProfileHandler.Get)
			protected.POST("/profile", cfg.ProfileHandler.Upsert)
		}
	}

	return r
}
