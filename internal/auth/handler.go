// File: internal/auth/handler.go
package auth

import (
	"net/http"

	"property_connect_backend/internal/common"
	"property_connect_backend/internal/config"
	"property_connect_backend/internal/user"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handler struct holds dependencies for auth handlers.
type Handler struct {
	oauth     OAuthService
	tokens    TokenService
	blocklist TokenBlocklistService
	users     user.Service
	cfg       *config.Config
	logger    *zap.Logger
}

// NewHandler creates a new auth handler.
func NewHandler(
	oauth OAuthService,
	tokens TokenService,
	blocklist TokenBlocklistService,
	users user.Service,
	cfg *config.Config,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		oauth:     oauth,
		tokens:    tokens,
		blocklist: blocklist,
		users:     users,
		cfg:       cfg,
		logger:    logger,
	}
}

// RegisterRoutes sets up the login, logout and OAuth callback routes.
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/login", h.login)
	router.GET("/logout", h.logout)

	authGroup := router.Group("/auth")
	{
		authGroup.GET("/google", h.providerLogin(ProviderGoogle))
		authGroup.GET("/google/callback", h.providerCallback(ProviderGoogle))
		authGroup.GET("/facebook", h.providerLogin(ProviderFacebook))
		authGroup.GET("/facebook/callback", h.providerCallback(ProviderFacebook))
	}
}

// login sends the browser to the only configured provider, to the provider chooser when there
// are several, or signs in the development user when there are none.
func (h *Handler) login(c *gin.Context) {
	providers := h.oauth.EnabledProviders()
	switch len(providers) {
	case 0:
		if !h.cfg.DevAuthBypass() {
			common.RespondWithError(c, common.ErrBadRequest.WithMessage("No authentication provider configured"))
			return
		}
		devUser, err := h.users.EnsureDevUser(c.Request.Context())
		if err != nil {
			common.RespondWithError(c, err)
			return
		}
		if err := h.startSession(c, devUser); err != nil {
			common.RespondWithError(c, err)
			return
		}
		h.logger.Info("Development login", zap.String("userID", devUser.ID))
		c.Redirect(http.StatusFound, redirectHome)
	case 1:
		c.Redirect(http.StatusFound, "/api/auth/"+string(providers[0]))
	default:
		c.Redirect(http.StatusFound, redirectChooser)
	}
}

func (h *Handler) logout(c *gin.Context) {
	if token := SessionToken(c, h.cfg); token != "" {
		if claims, err := h.tokens.ValidateToken(token); err == nil && claims.ExpiresAt != nil {
			if err := h.blocklist.AddToBlocklist(c.Request.Context(), claims.ID, claims.ExpiresAt.Time); err != nil {
				h.logger.Warn("Failed to revoke session", zap.Error(err), zap.String("userID", claims.UserID))
			}
		}
	}
	clearSessionCookie(c, h.cfg)
	c.Redirect(http.StatusFound, redirectHome)
}

func (h *Handler) providerLogin(provider Provider) gin.HandlerFunc {
	return func(c *gin.Context) {
		authURL, err := h.oauth.LoginURL(c, provider)
		if err != nil {
			common.RespondWithError(c, err)
			return
		}
		c.Redirect(http.StatusTemporaryRedirect, authURL)
	}
}

func (h *Handler) providerCallback(provider Provider) gin.HandlerFunc {
	return func(c *gin.Context) {
		if errParam := c.Query("error"); errParam != "" {
			h.logger.Warn("OAuth provider returned an error",
				zap.String("provider", string(provider)),
				zap.String("error", errParam),
				zap.String("description", c.Query("error_description")),
			)
			c.Redirect(http.StatusFound, redirectAuthFailed)
			return
		}

		u, isNew, err := h.oauth.HandleCallback(c, provider, c.Query("code"), c.Query("state"))
		if err != nil {
			h.logger.Warn("OAuth callback failed", zap.Error(err), zap.String("provider", string(provider)))
			c.Redirect(http.StatusFound, redirectAuthFailed)
			return
		}
		if err := h.startSession(c, u); err != nil {
			c.Redirect(http.StatusFound, redirectAuthFailed)
			return
		}

		if isNew {
			c.Redirect(http.StatusFound, redirectRegistered)
			return
		}
		c.Redirect(http.StatusFound, redirectLoggedIn)
	}
}

func (h *Handler) startSession(c *gin.Context, u *user.User) error {
	token, expiresAt, err := h.tokens.GenerateSessionToken(u)
	if err != nil {
		return common.ErrInternalServer.WithDetails("Could not create session.")
	}
	setSessionCookie(c, h.cfg, token, expiresAt)
	return nil
}
