package modules

import (
	"github.com/gin-gonic/gin"

	handlers "github.com/oksasatya/go-account-service/internal/interface/http"
	"github.com/oksasatya/go-account-service/internal/interface/middleware"
)

// AuthModule registers the session endpoints under /users.
// Public: POST login, POST refresh-token (per-IP limits)
// Protected: POST logout, POST change-password
type AuthModule struct {
	Handler   *handlers.AuthHandler
	JWT       middleware.AccessVerifier
	AuthLimit middleware.Limiter
	APILimit  middleware.Limiter
}

func NewAuthModule(h *handlers.AuthHandler, jwt middleware.AccessVerifier, authLimit, apiLimit middleware.Limiter) *AuthModule {
	return &AuthModule{Handler: h, JWT: jwt, AuthLimit: authLimit, APILimit: apiLimit}
}

func (m *AuthModule) Register(rg *gin.RouterGroup) {
	users := rg.Group("/users")
	perIP := middleware.RateLimit(m.AuthLimit, middleware.KeyByIPAndPath(), nil)

	users.POST("/login", perIP, m.Handler.Login)
	users.POST("/refresh-token", perIP, m.Handler.RefreshToken)

	auth := users.Group("")
	auth.Use(middleware.Auth(m.JWT), middleware.RateLimit(m.APILimit, middleware.KeyByUserID(), nil))
	{
		auth.POST("/logout", m.Handler.Logout)
		auth.POST("/change-password", m.Handler.ChangePassword)
	}
}
