// logging.go - Request logging and panic recovery

package middleware

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"go-blog-backend/apperr"
)

// Logger writes one structured line per request.
func Logger(log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		entry := log.WithFields(logrus.Fields{
			"request_id": GetRequestID(c),
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"route":      c.FullPath(),
			"status":     status,
			"latency_ms": time.Since(start).Milliseconds(),
			"client_ip":  c.ClientIP(),
		})
		if user, ok := CurrentUser(c); ok {
			entry = entry.WithField("user_id", user.ID)
		}

		switch {
		case status >= http.StatusInternalServerError:
			entry.WithField("errors", c.Errors.String()).Error("request failed")
		case status >= http.StatusBadRequest:
			entry.Warn("request rejected")
		default:
			entry.Info("request completed")
		}
	}
}

// Recovery turns a panic into a 500 with the uniform error body.
func Recovery(log *logrus.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		log.WithFields(logrus.Fields{
			"request_id": GetRequestID(c),
			"panic":      recovered,
		}).Error("panic while serving request")
		WriteError(c, apperr.Internal(fmt.Errorf("panic: %v", recovered)))
	})
}
