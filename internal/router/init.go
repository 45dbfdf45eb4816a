package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/go-account-service/internal/container"
	handlers "github.com/oksasatya/go-account-service/internal/interface/http"
	"github.com/oksasatya/go-account-service/internal/interface/middleware"
	"github.com/oksasatya/go-account-service/internal/router/modules"
)

// InitModules builds the handlers from c and registers every module with r.
func InitModules(r *Registry, c *container.Container) {
	cfg := c.Config
	authLimit := c.Limiter(cfg.RateLimitAuthRPM)
	apiLimit := c.Limiter(cfg.RateLimitRPM)

	auth := handlers.NewAuthHandler(c.Sessions(), c.Logger, c.Cookies())
	users := handlers.NewUserHandler(c.Accounts(), c.Logger, cfg.MediaMaxUploadBytes)

	r.Add(modules.NewAuthModule(auth, c.JWT, authLimit, apiLimit))
	r.Add(modules.NewUserModule(users, c.JWT, authLimit, apiLimit))
	if cfg.DebugMetricsEnabled {
		r.Add(modules.NewDebugModule(apiLimit))
	}
}

// New assembles the gin engine: global middleware, health check and the /api/v1 modules.
// extra runs after request ID and real IP resolution, before any route.
func New(c *container.Container, extra ...gin.HandlerFunc) *gin.Engine {
	engine := gin.New()
	if err := engine.SetTrustedProxies(c.Config.TrustedProxyList()); err != nil {
		c.Logger.WithError(err).Warn("invalid trusted proxies; forwarding headers ignored")
		_ = engine.SetTrustedProxies(nil)
	}
	if c.Config.TrustCloudflare {
		engine.TrustedPlatform = gin.PlatformCloudflare
	}
	engine.Use(gin.Recovery(), middleware.RequestIDMiddleware(), middleware.RealIP())
	engine.Use(extra...)
	if c.Config.HTTPLogEnabled {
		engine.Use(middleware.RequestLogger(c.Logger))
	}
	engine.GET("/healthz", func(ctx *gin.Context) { ctx.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	reg := NewRegistry(engine)
	InitModules(reg, c)
	reg.RegisterAll()
	return engine
}
