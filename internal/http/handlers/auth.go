package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/cardiobridge-backend/internal/http/response"
	"github.com/yungbote/cardiobridge-backend/internal/pkg/apierr"
	"github.com/yungbote/cardiobridge-backend/internal/services"
)

type AuthHandler struct {
	authService services.AuthService
}

func NewAuthHandler(authService services.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

func (ah *AuthHandler) Signup(c *gin.Context) {
	var req struct {
		Email       string `json:"email"`
		Password    string `json:"password"`
		FullName    string `json:"full_name"`
		PhoneNumber string `json:"phone_number"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusUnprocessableEntity, apierr.CodeValidationError, err)
		return
	}
	view, err := ah.authService.Signup(c.Request.Context(), services.SignupInput{
		Email:       req.Email,
		Password:    req.Password,
		FullName:    req.FullName,
		PhoneNumber: req.PhoneNumber,
	})
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondCreated(c, view)
}

// Login accepts the form-encoded OAuth2 password shape: username carries the
// email.
func (ah *AuthHandler) Login(c *gin.Context) {
	var req struct {
		Username string `form:"username"`
		Password string `form:"password"`
	}
	if err := c.ShouldBind(&req); err != nil {
		response.RespondError(c, http.StatusUnauthorized, apierr.CodeInvalidCredentials,
			errors.New("incorrect email or password"))
		return
	}
	accessToken, err := ah.authService.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	expiresIn := int(ah.authService.GetAccessTTL().Seconds())
	response.RespondOK(c, gin.H{
		"access_token": accessToken,
		"token_type":   "bearer",
		"expires_in":   expiresIn,
	})
}

func (ah *AuthHandler) Me(c *gin.Context) {
	rdToken := extractBearer(c)
	view, err := ah.authService.CurrentUser(c.Request.Context(), rdToken)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, view)
}

func (ah *AuthHandler) Logout(c *gin.Context) {
	if err := ah.authService.Logout(c.Request.Context()); err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"ok": true})
}

func extractBearer(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if len(authHeader) > 7 && strings.EqualFold(authHeader[:7], "Bearer ") {
		return authHeader[7:]
	}
	return ""
}
