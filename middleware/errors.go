// errors.go - Writes the uniform error body

package middleware

import (
	"github.com/gin-gonic/gin"

	"go-blog-backend/apperr"
	"go-blog-backend/schemas"
)

// WriteError aborts the request with the status and body for err. Server
// side failures are attached to the context so the request logger records
// the cause; clients only see the public message.
func WriteError(c *gin.Context, err error) {
	e := apperr.As(err)
	if e.Kind == apperr.KindInternal || e.Kind == apperr.KindResourceExhausted {
		_ = c.Error(err)
	}
	c.AbortWithStatusJSON(e.Status(), schemas.ErrorResponse{
		Error:  e.Message,
		Code:   string(e.Kind),
		Fields: e.Fields,
	})
}
