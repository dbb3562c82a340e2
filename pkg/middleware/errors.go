package middleware

import (
	"bitwise74/dashboard-api/pkg/apperr"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// NewErrorRenderer is the terminal error handler. Handlers push errors with
// c.Error and return; the last one is rendered as {status, message}. Soft
// errors keep HTTP 200 and only carry their status in the body.
func NewErrorRenderer() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		last := c.Errors.Last()
		if last == nil || c.Writer.Written() {
			return
		}

		e := apperr.Resolve(last.Err)

		status := e.Status
		if e.Soft {
			status = http.StatusOK
		}

		if status >= http.StatusInternalServerError {
			zap.L().Error("Request failed", zap.Error(last.Err), zap.String("requestID", c.GetString("requestID")))
		}

		c.JSON(status, gin.H{
			"status":  e.Status,
			"message": e.Message,
		})
	}
}
