// File: internal/auth/model.go
package auth

import (
	"github.com/golang-jwt/jwt/v5"
)

// Provider names an OAuth identity provider.
type Provider string

const (
	ProviderGoogle   Provider = "google"
	ProviderFacebook Provider = "facebook"
)

// Claims is the payload of a session token. The registered ID claim (jti) is what logout blocklists.
type Claims struct {
	UserID string `json:"uid"`
	Email  string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// Redirect targets after the OAuth round trip.
const (
	redirectRegistered = "/?registered=true"
	redirectLoggedIn   = "/?logged_in=true"
	redirectAuthFailed = "/?error=auth_failed"
	redirectHome       = "/"
	redirectChooser    = "/login"
)
