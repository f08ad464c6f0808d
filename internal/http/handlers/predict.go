package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/cardiobridge-backend/internal/http/response"
	"github.com/yungbote/cardiobridge-backend/internal/pkg/apierr"
	"github.com/yungbote/cardiobridge-backend/internal/services"
)

type PredictHandler struct {
	predictionService services.PredictionService
}

func NewPredictHandler(predictionService services.PredictionService) *PredictHandler {
	return &PredictHandler{predictionService: predictionService}
}

func (ph *PredictHandler) PredictAcute(c *gin.Context) {
	var vitals services.AcuteVitals
	if err := c.ShouldBindJSON(&vitals); err != nil {
		response.RespondError(c, http.StatusUnprocessableEntity, apierr.CodeValidationError, err)
		return
	}
	outcome, err := ph.predictionService.PredictAcute(c.Request.Context(), vitals)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, outcome)
}

func (ph *PredictHandler) PredictLifestyle(c *gin.Context) {
	var vitals services.LifestyleVitals
	if err := c.ShouldBindJSON(&vitals); err != nil {
		response.RespondError(c, http.StatusUnprocessableEntity, apierr.CodeValidationError, err)
		return
	}
	outcome, err := ph.predictionService.PredictLifestyle(c.Request.Context(), vitals)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, outcome)
}

func (ph *PredictHandler) PredictWellness(c *gin.Context) {
	var vitals services.WellnessVitals
	if err := c.ShouldBindJSON(&vitals); err != nil {
		response.RespondError(c, http.StatusUnprocessableEntity, apierr.CodeValidationError, err)
		return
	}
	outcome, err := ph.predictionService.PredictWellness(c.Request.Context(), vitals)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, outcome)
}

func (ph *PredictHandler) ListHistory(c *gin.Context) {
	records, err := ph.predictionService.ListHistory(c.Request.Context())
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, records)
}
