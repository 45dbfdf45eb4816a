package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-account-service/internal/application"
	"github.com/oksasatya/go-account-service/internal/interface/middleware"
	"github.com/oksasatya/go-account-service/pkg/helpers"
	"github.com/oksasatya/go-account-service/pkg/response"
	"github.com/oksasatya/go-account-service/pkg/validation"
)

// AuthHandler serves the session endpoints: login, refresh, logout and password change.
type AuthHandler struct {
	Sessions *application.SessionCoordinator
	Logger   logrus.FieldLogger
	Cookies  *helpers.CookieManager
}

func NewAuthHandler(sessions *application.SessionCoordinator, logger logrus.FieldLogger, cookies *helpers.CookieManager) *AuthHandler {
	return &AuthHandler{Sessions: sessions, Logger: logger, Cookies: cookies}
}

type loginRequest struct {
	Username string `json:"username"`
	Email    string `json:"email" binding:"omitempty,email"`
	Password string `json:"password" binding:"required"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type changePasswordRequest struct {
	OldPassword string `json:"oldPassword" binding:"required"`
	NewPassword string `json:"newPassword" binding:"required,notblank"`
}

type tokensResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

type loginResponse struct {
	User *application.UserView `json:"user"`
	tokensResponse
}

// Login POST /api/v1/users/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Abort(c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	res, err := h.Sessions.Login(c.Request.Context(), application.LoginInput{
		Username:  req.Username,
		Email:     req.Email,
		Password:  req.Password,
		IP:        middleware.ClientIP(c),
		UserAgent: c.GetHeader("User-Agent"),
	})
	if err != nil {
		response.Fail(c, h.Logger, err)
		return
	}
	h.Cookies.SetPair(c, res.Tokens)
	response.OK(c, http.StatusOK, loginResponse{
		User:           res.User,
		tokensResponse: tokensResponse{AccessToken: res.Tokens.AccessToken, RefreshToken: res.Tokens.RefreshToken},
	}, "User logged in successfully")
}

// RefreshToken POST /api/v1/users/refresh-token
// The token is read from the refresh_token cookie, then from the JSON body.
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	incoming, _ := c.Cookie(helpers.RefreshCookie)
	if strings.TrimSpace(incoming) == "" {
		var req refreshRequest
		_ = c.ShouldBindJSON(&req)
		incoming = req.RefreshToken
	}
	pair, err := h.Sessions.Rotate(c.Request.Context(), incoming)
	if err != nil {
		response.Fail(c, h.Logger, err)
		return
	}
	h.Cookies.SetPair(c, pair)
	response.OK(c, http.StatusOK, tokensResponse{AccessToken: pair.AccessToken, RefreshToken: pair.RefreshToken}, "Access token refreshed")
}

// Logout POST /api/v1/users/logout (auth)
func (h *AuthHandler) Logout(c *gin.Context) {
	if err := h.Sessions.Logout(c.Request.Context(), middleware.UserID(c)); err != nil {
		response.Fail(c, h.Logger, err)
		return
	}
	h.Cookies.Clear(c)
	response.OK(c, http.StatusOK, gin.H{}, "User logged out")
}

// ChangePassword POST /api/v1/users/change-password (auth)
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	var req changePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Abort(c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	err := h.Sessions.ChangePassword(c.Request.Context(), middleware.UserID(c), application.ChangePasswordInput{
		OldPassword: req.OldPassword,
		NewPassword: req.NewPassword,
	})
	if err != nil {
		response.Fail(c, h.Logger, err)
		return
	}
	response.OK(c, http.StatusOK, gin.H{}, "Password changed successfully")
}
