// File: internal/auth/oauth_service.go
package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"property_connect_backend/internal/common"
	"property_connect_backend/internal/config"
	"property_connect_backend/internal/user"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	googleoauth2 "google.golang.org/api/oauth2/v2"
	"google.golang.org/api/option"
)

// FacebookGraphMeURL is the Graph API profile endpoint. It is a variable for testing.
var FacebookGraphMeURL = "https://graph.facebook.com/v19.0/me?fields=id,name,email,picture.type(large)"

// profileFetcher reads the signed-in identity using an HTTP client that carries the provider token.
type profileFetcher func(ctx context.Context, client *http.Client) (user.OAuthProfile, error)

type providerClient struct {
	config       *oauth2.Config
	fetchProfile profileFetcher
}

// OAuthService defines the interface for OAuth operations.
type OAuthService interface {
	EnabledProviders() []Provider
	Enabled(provider Provider) bool
	// LoginURL stores a fresh state cookie and returns the provider consent URL.
	LoginURL(c *gin.Context, provider Provider) (string, error)
	// HandleCallback verifies state, exchanges the code and logs the identity in.
	// isNew reports a first-time registration.
	HandleCallback(c *gin.Context, provider Provider, code, state string) (u *user.User, isNew bool, err error)
}

type oauthService struct {
	cfg        *config.Config
	users      user.Service
	providers  map[Provider]*providerClient
	httpClient *http.Client
	logger     *zap.Logger
}

// NewOAuthService creates a new OAuth service with every provider that has credentials configured.
func NewOAuthService(cfg *config.Config, users user.Service, logger *zap.Logger) OAuthService {
	providers := map[Provider]*providerClient{}
	if cfg.GoogleEnabled() {
		providers[ProviderGoogle] = &providerClient{config: googleOAuthConfig(cfg), fetchProfile: fetchGoogleProfile}
	}
	if cfg.FacebookEnabled() {
		providers[ProviderFacebook] = &providerClient{config: facebookOAuthConfig(cfg), fetchProfile: fetchFacebookProfile}
	}
	return newOAuthService(cfg, users, providers, logger)
}

func newOAuthService(cfg *config.Config, users user.Service, providers map[Provider]*providerClient, logger *zap.Logger) *oauthService {
	return &oauthService{
		cfg:        cfg,
		users:      users,
		providers:  providers,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		logger:     logger.Named("oauth_service"),
	}
}

func (s *oauthService) EnabledProviders() []Provider {
	var out []Provider
	for _, p := range []Provider{ProviderGoogle, ProviderFacebook} {
		if s.Enabled(p) {
			out = append(out, p)
		}
	}
	return out
}

func (s *oauthService) Enabled(provider Provider) bool {
	_, ok := s.providers[provider]
	return ok
}

func (s *oauthService) LoginURL(c *gin.Context, provider Provider) (string, error) {
	pc, ok := s.providers[provider]
	if !ok {
		return "", common.ErrNotFound.WithDetails(fmt.Sprintf("%s login is not configured.", provider))
	}
	state, err := generateAndSetOAuthState(c, s.cfg)
	if err != nil {
		s.logger.Error("Failed to generate OAuth state", zap.Error(err), zap.String("provider", string(provider)))
		return "", common.ErrInternalServer.WithDetails("Could not initiate login.")
	}
	return pc.config.AuthCodeURL(state), nil
}

func (s *oauthService) HandleCallback(c *gin.Context, provider Provider, code, state string) (*user.User, bool, error) {
	pc, ok := s.providers[provider]
	if !ok {
		return nil, false, common.ErrNotFound.WithDetails(fmt.Sprintf("%s login is not configured.", provider))
	}
	if err := verifyOAuthState(c, s.cfg, state); err != nil {
		s.logger.Warn("OAuth state check failed", zap.Error(err), zap.String("provider", string(provider)))
		return nil, false, common.ErrBadRequest.WithDetails("Invalid session or state mismatch.")
	}
	if code == "" {
		return nil, false, common.ErrBadRequest.WithDetails("Missing authorization code.")
	}

	ctx := context.WithValue(c.Request.Context(), oauth2.HTTPClient, s.httpClient)
	token, err := pc.config.Exchange(ctx, code)
	if err != nil {
		s.logger.Error("Failed to exchange auth code for token", zap.Error(err), zap.String("provider", string(provider)))
		return nil, false, common.ErrServiceUnavailable.WithDetails("Could not exchange authorization code.")
	}

	profile, err := pc.fetchProfile(ctx, pc.config.Client(ctx, token))
	if err != nil {
		s.logger.Error("Failed to fetch OAuth profile", zap.Error(err), zap.String("provider", string(provider)))
		return nil, false, common.ErrServiceUnavailable.WithDetails("Could not fetch the user profile.")
	}

	u, isNew, err := s.users.LoginWithOAuth(c.Request.Context(), profile)
	if err != nil {
		return nil, false, err
	}
	return u, isNew, nil
}

func fetchGoogleProfile(ctx context.Context, client *http.Client) (user.OAuthProfile, error) {
	svc, err := googleoauth2.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return user.OAuthProfile{}, fmt.Errorf("failed to create google oauth2 client: %w", err)
	}
	info, err := svc.Userinfo.Get().Context(ctx).Do()
	if err != nil {
		return user.OAuthProfile{}, fmt.Errorf("failed to fetch google userinfo: %w", err)
	}
	return user.OAuthProfile{
		Provider:        user.ProviderGoogle,
		ProviderID:      info.Id,
		Email:           strings.ToLower(info.Email),
		DisplayName:     info.Name,
		ProfileImageURL: info.Picture,
	}, nil
}

type facebookMe struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Picture struct {
		Data struct {
			URL string `json:"url"`
		} `json:"data"`
	} `json:"picture"`
}

func fetchFacebookProfile(ctx context.Context, client *http.Client) (user.OAuthProfile, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, FacebookGraphMeURL, nil)
	if err != nil {
		return user.OAuthProfile{}, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return user.OAuthProfile{}, fmt.Errorf("failed to call facebook graph: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return user.OAuthProfile{}, fmt.Errorf("facebook graph returned status %d: %s", resp.StatusCode, string(body))
	}

	var me facebookMe
	if err := json.NewDecoder(resp.Body).Decode(&me); err != nil {
		return user.OAuthProfile{}, fmt.Errorf("failed to decode facebook profile: %w", err)
	}
	if me.ID == "" {
		return user.OAuthProfile{}, fmt.Errorf("facebook profile has no id")
	}
	return user.OAuthProfile{
		Provider:        user.ProviderFacebook,
		ProviderID:      me.ID,
		Email:           strings.ToLower(me.Email),
		DisplayName:     me.Name,
		ProfileImageURL: me.Picture.Data.URL,
	}, nil
}
