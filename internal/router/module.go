package router

import "github.com/gin-gonic/gin"

// Module registers one feature's routes under the /api/v1 group.
type Module interface {
	Register(api *gin.RouterGroup)
}
