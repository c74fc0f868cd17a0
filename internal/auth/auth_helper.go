package auth

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"property_connect_backend/internal/common"
	"property_connect_backend/internal/config"
	"property_connect_backend/internal/platform/crypto"

	"github.com/gin-gonic/gin"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/facebook"
	"golang.org/x/oauth2/google"
)

// setCookie writes an HttpOnly cookie using the configured domain and security attributes.
// A negative maxAge deletes the cookie.
func setCookie(c *gin.Context, cfg *config.Config, name, value string, maxAge int) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Domain:   cfg.CookieDomain,
		MaxAge:   maxAge,
		Secure:   cfg.CookieSecure,
		HttpOnly: true,
		SameSite: parseSameSite(cfg.CookieSameSite),
	})
}

// consumeCookie retrieves a cookie and deletes it from the client.
func consumeCookie(c *gin.Context, cfg *config.Config, name string) (string, error) {
	cookie, err := c.Request.Cookie(name)
	if err != nil {
		return "", fmt.Errorf("%s cookie not found: %w", name, err)
	}
	setCookie(c, cfg, name, "", -1)
	return cookie.Value, nil
}

func parseSameSite(s string) http.SameSite {
	switch strings.ToLower(s) {
	case "strict":
		return http.SameSiteStrictMode
	case "none":
		return http.SameSiteNoneMode
	default:
		return http.SameSiteLaxMode
	}
}

func generateAndSetOAuthState(c *gin.Context, cfg *config.Config) (string, error) {
	state, err := crypto.GenerateSecureRandomString(32)
	if err != nil {
		return "", fmt.Errorf("failed to generate state: %w", err)
	}
	setCookie(c, cfg, cfg.OAuthStateCookieName, state, cfg.OAuthCookieMaxAge*60)
	return state, nil
}

// verifyOAuthState compares the callback state with the one stored at login start.
// The state cookie is single use.
func verifyOAuthState(c *gin.Context, cfg *config.Config, state string) error {
	stored, err := consumeCookie(c, cfg, cfg.OAuthStateCookieName)
	if err != nil {
		return err
	}
	if state == "" || !crypto.ConstantTimeEqual(state, stored) {
		return fmt.Errorf("oauth state mismatch")
	}
	return nil
}

// setSessionCookie stores the session token until it expires.
func setSessionCookie(c *gin.Context, cfg *config.Config, token string, expiresAt time.Time) {
	maxAge := int(time.Until(expiresAt).Seconds())
	if maxAge <= 0 {
		maxAge = -1
	}
	setCookie(c, cfg, cfg.SessionCookieName, token, maxAge)
}

func clearSessionCookie(c *gin.Context, cfg *config.Config) {
	setCookie(c, cfg, cfg.SessionCookieName, "", -1)
}

// SessionToken returns the session token from the cookie, falling back to a bearer header.
func SessionToken(c *gin.Context, cfg *config.Config) string {
	if cookie, err := c.Request.Cookie(cfg.SessionCookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	return common.GetTokenFromContext(c)
}

func callbackURL(cfg *config.Config, provider Provider) string {
	return strings.TrimRight(cfg.BaseURL, "/") + "/api/auth/" + string(provider) + "/callback"
}

func googleOAuthConfig(cfg *config.Config) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     cfg.GoogleClientID,
		ClientSecret: cfg.GoogleClientSecret,
		RedirectURL:  callbackURL(cfg, ProviderGoogle),
		Scopes:       []string{"openid", "profile", "email"},
		Endpoint:     google.Endpoint,
	}
}

func facebookOAuthConfig(cfg *config.Config) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     cfg.FacebookAppID,
		ClientSecret: cfg.FacebookAppSecret,
		RedirectURL:  callbackURL(cfg, ProviderFacebook),
		Scopes:       []string{"email", "public_profile"},
		Endpoint:     facebook.Endpoint,
	}
}
