// File: internal/common/response.go
package common

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// LoggerContextKey is where the request-scoped logger is stored on the gin context.
const LoggerContextKey = "logger"

// SuccessResponse is the body returned by mutations that have no resource to return.
type SuccessResponse struct {
	Success bool `json:"success"`
}

// RespondWithError sends a JSON error response.
func RespondWithError(c *gin.Context, err error) {
	apiErr, ok := IsAPIError(err)
	if !ok {
		if l, exists := c.Get(LoggerContextKey); exists {
			if logger, ok := l.(*zap.Logger); ok {
				logger.Error("Unhandled internal error being wrapped", zap.Error(err))
			}
		}
		// Internal details are never sent to the client.
		apiErr = ErrInternalServer
	}

	c.AbortWithStatusJSON(apiErr.StatusCode, apiErr)
}

// RespondOK sends a 200 OK response with the given body.
func RespondOK(c *gin.Context, body interface{}) {
	c.JSON(http.StatusOK, body)
}

// RespondCreated sends a 201 Created response with the given body.
func RespondCreated(c *gin.Context, body interface{}) {
	c.JSON(http.StatusCreated, body)
}

// RespondSuccess sends {"success": true}.
func RespondSuccess(c *gin.Context) {
	c.JSON(http.StatusOK, SuccessResponse{Success: true})
}

// PaginatedResponse is the list envelope used by the property search endpoint.
type PaginatedResponse struct {
	Items      interface{} `json:"properties"`
	Total      int64       `json:"total"`
	Page       int         `json:"page"`
	TotalPages int         `json:"totalPages"`
}

// RespondPaginated sends a JSON response for paginated data.
func RespondPaginated(c *gin.Context, items interface{}, pagination *Pagination) {
	c.JSON(http.StatusOK, PaginatedResponse{
		Items:      items,
		Total:      pagination.TotalItems,
		Page:       pagination.CurrentPage,
		TotalPages: pagination.TotalPages,
	})
}
