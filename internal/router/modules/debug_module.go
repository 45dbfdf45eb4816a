package modules

import (
	"expvar"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/go-account-service/internal/interface/middleware"
)

// DebugModule exposes expvar metrics. Private-network callers are not rate limited.
type DebugModule struct {
	Limit middleware.Limiter
}

func NewDebugModule(limit middleware.Limiter) *DebugModule { return &DebugModule{Limit: limit} }

func (m *DebugModule) Register(rg *gin.RouterGroup) {
	rl := middleware.RateLimit(m.Limit, middleware.KeyByIP(), middleware.AllowPrivateIP())
	rg.GET("/debug/vars", rl, gin.WrapH(expvar.Handler()))
}
