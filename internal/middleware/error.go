// File: internal/middleware/error.go
package middleware

import (
	"net/http"

	"property_connect_backend/internal/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ErrorHandler converts errors attached with c.Error into the JSON error shape.
// Responses already written by handlers are left alone.
func ErrorHandler(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		err := c.Errors.Last().Err
		if apiErr, ok := common.IsAPIError(err); ok {
			c.AbortWithStatusJSON(apiErr.StatusCode, apiErr)
			return
		}

		logger.Error("Unhandled application error",
			zap.Error(err),
			zap.String("path", c.Request.URL.Path),
			zap.String("request_id", c.GetString(RequestIDContextKey)),
		)
		c.AbortWithStatusJSON(common.ErrInternalServer.StatusCode, common.ErrInternalServer)
	}
}

// NoRoute answers unknown paths with the JSON not found error.
func NoRoute(c *gin.Context) {
	common.RespondWithError(c, common.ErrNotFound.WithDetails("The requested endpoint does not exist."))
}

// NoMethod answers known paths hit with an unsupported method.
func NoMethod(c *gin.Context) {
	apiErr := common.NewAPIError(http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "The method is not allowed for the requested URL.")
	c.AbortWithStatusJSON(apiErr.StatusCode, apiErr)
}
