package modules

import (
	"github.com/gin-gonic/gin"

	handlers "github.com/oksasatya/go-account-service/internal/interface/http"
	"github.com/oksasatya/go-account-service/internal/interface/middleware"
)

// UserModule registers the account endpoints under /users.
// Public: POST register
// Protected: GET current-user, PATCH update-account, PATCH avatar, PATCH cover-image, GET search
type UserModule struct {
	Handler   *handlers.UserHandler
	JWT       middleware.AccessVerifier
	AuthLimit middleware.Limiter
	APILimit  middleware.Limiter
}

func NewUserModule(h *handlers.UserHandler, jwt middleware.AccessVerifier, authLimit, apiLimit middleware.Limiter) *UserModule {
	return &UserModule{Handler: h, JWT: jwt, AuthLimit: authLimit, APILimit: apiLimit}
}

func (m *UserModule) Register(rg *gin.RouterGroup) {
	users := rg.Group("/users")
	users.POST("/register", middleware.RateLimit(m.AuthLimit, middleware.KeyByIPAndPath(), nil), m.Handler.Register)

	auth := users.Group("")
	auth.Use(middleware.Auth(m.JWT), middleware.RateLimit(m.APILimit, middleware.KeyByUserID(), nil))
	{
		auth.GET("/current-user", m.Handler.CurrentUser)
		auth.PATCH("/update-account", m.Handler.UpdateAccount)
		auth.PATCH("/avatar", m.Handler.UpdateAvatar)
		auth.PATCH("/cover-image", m.Handler.UpdateCoverImage)
		auth.GET("/search", m.Handler.Search)
	}
}
