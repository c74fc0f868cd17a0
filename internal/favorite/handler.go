package favorite

import (
	"strings"

	"property_connect_backend/internal/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handler serves the favorites endpoints.
type Handler struct {
	service Service
	logger  *zap.Logger
}

// NewHandler creates a new favorite handler.
func NewHandler(service Service, logger *zap.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// RegisterRoutes mounts /favorites. Every route requires a session.
func (h *Handler) RegisterRoutes(router *gin.RouterGroup, authMW gin.HandlerFunc) {
	favorites := router.Group("/favorites")
	favorites.Use(authMW)
	{
		favorites.GET("", h.listFavorites)
		favorites.GET("/ids", h.listFavoriteIDs)
		favorites.POST("", h.addFavorite)
		favorites.DELETE("/:propertyId", h.removeFavorite)
	}
}

func (h *Handler) listFavorites(c *gin.Context) {
	props, err := h.service.ListProperties(c.Request.Context(), common.GetUserIDFromContext(c))
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, props)
}

func (h *Handler) listFavoriteIDs(c *gin.Context) {
	ids, err := h.service.ListPropertyIDs(c.Request.Context(), common.GetUserIDFromContext(c))
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, ids)
}

func (h *Handler) addFavorite(c *gin.Context) {
	userID := common.GetUserIDFromContext(c)

	var req AddFavoriteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("Add favorite: invalid request body", zap.Error(err), zap.String("userID", userID))
		common.RespondWithError(c, common.ErrBadRequest.WithMessage("Property ID is required"))
		return
	}
	propertyID := strings.TrimSpace(req.PropertyID)
	if propertyID == "" {
		common.RespondWithError(c, common.ErrBadRequest.WithMessage("Property ID is required"))
		return
	}

	fav, created, err := h.service.Add(c.Request.Context(), userID, propertyID)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	if !created {
		common.RespondCreated(c, ExistingFavoriteResponse{UserID: userID, PropertyID: propertyID, Success: true})
		return
	}
	common.RespondCreated(c, fav)
}

func (h *Handler) removeFavorite(c *gin.Context) {
	if err := h.service.Remove(c.Request.Context(), common.GetUserIDFromContext(c), c.Param("propertyId")); err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondSuccess(c)
}
