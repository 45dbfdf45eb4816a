package middleware

import (
	"github.com/gin-gonic/gin"
)

// RealIP sets the client IP into the Gin context (key: "real_ip").
// Forwarding headers are honored only as far as the engine trusts them: X-Forwarded-For
// and X-Real-IP from the proxies given to SetTrustedProxies, and CF-Connecting-IP when
// TrustedPlatform is gin.PlatformCloudflare. Anything else resolves to the peer address.
func RealIP() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(CtxRealIP, c.ClientIP())
		c.Next()
	}
}
