package middleware

import "github.com/gin-gonic/gin"

// Gin context keys set by the middleware in this package.
const (
	CtxRequestID = "request_id"
	CtxRealIP    = "real_ip"
	CtxUserID    = "userID"
	CtxUsername  = "username"
	CtxEmail     = "email"
	CtxFullName  = "fullname"
)

// UserID returns the authenticated user id, or "" outside Auth.
func UserID(c *gin.Context) string { return c.GetString(CtxUserID) }

// ClientIP returns the address resolved by RealIP, falling back to gin's.
func ClientIP(c *gin.Context) string {
	if ip := c.GetString(CtxRealIP); ip != "" {
		return ip
	}
	return c.ClientIP()
}
