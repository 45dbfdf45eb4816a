package response

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-account-service/pkg/apperror"
)

type APIResponse[T any] struct {
	Status    int       `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	RequestID string    `json:"request_id"`
	Success   bool      `json:"success"`
	Message   string    `json:"message"`
	Data      T         `json:"data,omitempty"`
	Meta      any       `json:"meta,omitempty"`
	Error     any       `json:"error,omitempty"`
}

func Success[T any](ctx *gin.Context, status int, data T, message string, meta any) APIResponse[T] {
	if status == 0 {
		status = http.StatusOK
	}
	return APIResponse[T]{
		Status:    status,
		Timestamp: time.Now(),
		RequestID: ctx.GetString("request_id"),
		Success:   true,
		Message:   message,
		Data:      data,
		Meta:      meta,
	}
}

func Error[T any](ctx *gin.Context, status int, message string, err any) APIResponse[T] {
	if status == 0 {
		status = http.StatusBadRequest
	}
	return APIResponse[T]{
		Status:    status,
		Timestamp: time.Now(),
		RequestID: ctx.GetString("request_id"),
		Success:   false,
		Message:   message,
		Error:     err,
	}
}

// OK writes a success envelope.
func OK[T any](c *gin.Context, status int, data T, message string) {
	resp := Success(c, status, data, message, nil)
	c.JSON(resp.Status, resp)
}

// Abort writes an error envelope and stops the handler chain.
func Abort(c *gin.Context, status int, message string, details any) {
	resp := Error[any](c, status, message, details)
	c.AbortWithStatusJSON(resp.Status, resp)
}

// Fail maps err to its HTTP status and writes an error envelope. Internal errors are
// logged with their cause and answered with a generic message.
func Fail(c *gin.Context, logger logrus.FieldLogger, err error) {
	kind := apperror.KindOf(err)
	if kind == apperror.Internal && logger != nil {
		logger.WithError(err).WithFields(logrus.Fields{
			"request_id": c.GetString("request_id"),
			"path":       c.FullPath(),
		}).Error("request failed")
	}
	resp := Error[any](c, kind.HTTPStatus(), apperror.MessageOf(err), gin.H{"code": kind.String()})
	c.AbortWithStatusJSON(resp.Status, resp)
}
