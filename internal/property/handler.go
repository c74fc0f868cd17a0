// File: internal/property/handler.go
package property

import (
	"property_connect_backend/internal/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handler struct holds dependencies for property handlers.
type Handler struct {
	service Service
	logger  *zap.Logger
}

// NewHandler creates a new property handler.
func NewHandler(service Service, logger *zap.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// RegisterRoutes sets up the routes for property operations.
// optionalAuthMW identifies the caller when a session is present but never rejects the request.
func (h *Handler) RegisterRoutes(router *gin.RouterGroup, authMW, optionalAuthMW gin.HandlerFunc) {
	propertyGroup := router.Group("/properties")
	{
		propertyGroup.GET("", h.searchProperties)
		propertyGroup.GET("/nearby", h.nearbyProperties)
		propertyGroup.GET("/:id", optionalAuthMW, h.getPropertyByID)

		authed := propertyGroup.Group("")
		authed.Use(authMW)
		{
			authed.POST("", h.createProperty)
			authed.PATCH("/:id", h.updateProperty)
			authed.DELETE("/:id", h.deleteProperty)
		}
	}

	router.GET("/my-properties", authMW, h.getMyProperties)
	router.GET("/users/:userId/properties", h.getUserProperties)
}

func (h *Handler) searchProperties(c *gin.Context) {
	var q SearchQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.logger.Warn("Search properties: invalid query", zap.Error(err))
		common.RespondWithError(c, common.BindingError(err))
		return
	}
	q.Page, q.Limit = common.GetPaginationParams(c)

	props, pagination, err := h.service.Search(c.Request.Context(), q)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondPaginated(c, props, pagination)
}

func (h *Handler) nearbyProperties(c *gin.Context) {
	var q NearbyQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		common.RespondWithError(c, common.BindingError(err))
		return
	}
	props, err := h.service.Nearby(c.Request.Context(), q)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, props)
}

func (h *Handler) getPropertyByID(c *gin.Context) {
	viewer := Viewer{
		UserID: common.GetUserIDFromContext(c),
		IP:     c.ClientIP(),
	}
	p, err := h.service.GetByID(c.Request.Context(), c.Param("id"), viewer)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, p)
}

func (h *Handler) createProperty(c *gin.Context) {
	userID := common.GetUserIDFromContext(c)

	var req CreatePropertyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("Create property: invalid request body", zap.Error(err), zap.String("userID", userID))
		common.RespondWithError(c, common.BindingError(err))
		return
	}

	p, err := h.service.Create(c.Request.Context(), userID, req)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondCreated(c, p)
}

func (h *Handler) updateProperty(c *gin.Context) {
	userID := common.GetUserIDFromContext(c)

	var req UpdatePropertyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("Update property: invalid request body", zap.Error(err), zap.String("userID", userID))
		common.RespondWithError(c, common.BindingError(err))
		return
	}

	p, err := h.service.Update(c.Request.Context(), c.Param("id"), userID, req)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, p)
}

func (h *Handler) deleteProperty(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id"), common.GetUserIDFromContext(c)); err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondSuccess(c)
}

func (h *Handler) getMyProperties(c *gin.Context) {
	props, err := h.service.ListByUser(c.Request.Context(), common.GetUserIDFromContext(c), true)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, props)
}

func (h *Handler) getUserProperties(c *gin.Context) {
	props, err := h.service.ListByUser(c.Request.Context(), c.Param("userId"), false)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, props)
}
