package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/cardiobridge-backend/internal/http/response"
	"github.com/yungbote/cardiobridge-backend/internal/pkg/apierr"
	"github.com/yungbote/cardiobridge-backend/internal/services"
)

type ProfileHandler struct {
	profileService services.ProfileService
}

func NewProfileHandler(profileService services.ProfileService) *ProfileHandler {
	return &ProfileHandler{profileService: profileService}
}

func (ph *ProfileHandler) Get(c *gin.Context) {
	profile, err := ph.profileService.Get(c.Request.Context())
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, profile)
}

func (ph *ProfileHandler) Upsert(c *gin.Context) {
	var in services.ProfileInput
	if err := c.ShouldBindJSON(&in); err != nil {
		response.RespondError(c, http.StatusUnprocessableEntity, apierr.CodeValidationError, err)
		return
	}
	profile, err := ph.profileService.Upsert(c.Request.Context(), in)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, profile)
}
