package settings

import (
	"net/http"
	"strings"

	"property_connect_backend/internal/common"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

var validate = validator.New()

// Handler serves /app-settings.
type Handler struct {
	service Service
	logger  *zap.Logger
}

// NewHandler creates a new settings handler.
func NewHandler(service Service, logger *zap.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// RegisterRoutes mounts the public read and the admin-only update.
func (h *Handler) RegisterRoutes(router *gin.RouterGroup, authMW, adminMW gin.HandlerFunc) {
	router.GET("/app-settings", h.getSettings)
	router.PATCH("/app-settings", authMW, adminMW, h.updateSettings)
}

func (h *Handler) getSettings(c *gin.Context) {
	s, err := h.service.Get(c.Request.Context())
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, s)
}

func (h *Handler) updateSettings(c *gin.Context) {
	var req UpdateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondWithError(c, common.BindingError(err))
		return
	}
	if err := validateSupportEmail(&req); err != nil {
		common.RespondWithError(c, err)
		return
	}

	s, err := h.service.Update(c.Request.Context(), req)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, s)
}

// validateSupportEmail accepts an address or an empty string, which clears the field.
func validateSupportEmail(req *UpdateSettingsRequest) error {
	if req.SupportEmail == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*req.SupportEmail)
	req.SupportEmail = &trimmed
	if trimmed == "" {
		return nil
	}
	if err := validate.Var(trimmed, "email"); err != nil {
		return common.NewValidationAPIError(map[string]string{
			"supportEmail": "The supportemail field must be a valid email address.",
		})
	}
	return nil
}
