package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/cardiobridge-backend/internal/pkg/apierr"
)

type APIError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

func RespondError(c *gin.Context, status int, code string, err error) {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	c.JSON(status, ErrorEnvelope{
		Error: APIError{
			Message: msg,
			Code:    code,
		},
	})
}

// RespondServiceError maps a service-layer error onto its stable HTTP status
// and code; anything that is not an apierr becomes a 500.
func RespondServiceError(c *gin.Context, err error) {
	if apiErr, ok := apierr.As(err); ok {
		RespondError(c, apiErr.Status, apiErr.Code, apiErr)
		return
	}
	RespondError(c, http.StatusInternalServerError, "internal_error", err)
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}

func RespondCreated(c *gin.Context, payload any) {
	c.JSON(http.StatusCreated, payload)
}
