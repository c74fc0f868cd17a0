package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"property_connect_backend/internal/config"
	"property_connect_backend/internal/platform/database/dbtest"
	"property_connect_backend/internal/user"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

type authFixture struct {
	router    *gin.Engine
	tokens    *JWTService
	blocklist *InMemoryBlocklistService
	users     user.Service
	cfg       *config.Config
}

func newAuthFixture(t *testing.T, cfg *config.Config, providers map[Provider]*providerClient) *authFixture {
	gin.SetMode(gin.TestMode)
	users := user.NewService(user.NewGORMRepository(dbtest.Open(t, &user.User{})), zap.NewNop())
	f := &authFixture{
		tokens:    NewJWTService(cfg, zap.NewNop()),
		blocklist: NewInMemoryBlocklistService(InMemoryBlocklistConfig{DefaultExpiration: time.Hour, CleanupInterval: time.Minute}),
		users:     users,
		cfg:       cfg,
	}
	oauth := newOAuthService(cfg, users, providers, zap.NewNop())
	h := NewHandler(oauth, f.tokens, f.blocklist, users, cfg, zap.NewNop())

	f.router = gin.New()
	h.RegisterRoutes(f.router.Group("/api"))
	return f
}

func (f *authFixture) get(path string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func findCookie(w *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, ck := range w.Result().Cookies() {
		if ck.Name == name {
			return ck
		}
	}
	return nil
}

func stubProvider(authURL string) *providerClient {
	return &providerClient{config: &oauth2.Config{ClientID: "id", Endpoint: oauth2.Endpoint{AuthURL: authURL}}}
}

func TestLogin_DevUserWhenNoProviders(t *testing.T) {
	f := newAuthFixture(t, testConfig(), nil)

	w := f.get("/api/login")
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/", w.Header().Get("Location"))

	session := findCookie(w, "pc_session")
	require.NotNil(t, session)
	assert.True(t, session.HttpOnly)
	claims, err := f.tokens.ValidateToken(session.Value)
	require.NoError(t, err)
	assert.Equal(t, user.DevUserID, claims.UserID)
}

func TestLogin_ReleaseWithoutProvidersIsBadRequest(t *testing.T) {
	cfg := testConfig()
	cfg.GinMode = "release"
	f := newAuthFixture(t, cfg, nil)

	w := f.get("/api/login")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "No authentication provider configured")
}

func TestLogin_ProviderSelection(t *testing.T) {
	single := newAuthFixture(t, testConfig(), map[Provider]*providerClient{
		ProviderFacebook: stubProvider("https://fb.example/dialog"),
	})
	w := single.get("/api/login")
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/api/auth/facebook", w.Header().Get("Location"))

	both := newAuthFixture(t, testConfig(), map[Provider]*providerClient{
		ProviderGoogle:   stubProvider("https://google.example/auth"),
		ProviderFacebook: stubProvider("https://fb.example/dialog"),
	})
	w = both.get("/api/login")
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/login", w.Header().Get("Location"))
}

func TestProviderLogin_SetsStateCookie(t *testing.T) {
	f := newAuthFixture(t, testConfig(), map[Provider]*providerClient{
		ProviderGoogle: stubProvider("https://google.example/auth"),
	})

	w := f.get("/api/auth/google")
	require.Equal(t, http.StatusTemporaryRedirect, w.Code)
	stateCookie := findCookie(w, "pc_oauth_state")
	require.NotNil(t, stateCookie)

	loc, err := url.Parse(w.Header().Get("Location"))
	require.NoError(t, err)
	assert.Equal(t, "google.example", loc.Host)
	assert.Equal(t, stateCookie.Value, loc.Query().Get("state"))

	w = f.get("/api/auth/facebook")
	assert.Equal(t, http.StatusNotFound, w.Code, "unconfigured provider")
}

func TestCallback_StateMismatchRedirectsToFailure(t *testing.T) {
	f := newAuthFixture(t, testConfig(), map[Provider]*providerClient{
		ProviderGoogle: stubProvider("https://google.example/auth"),
	})

	w := f.get("/api/auth/google/callback?code=abc&state=forged", &http.Cookie{Name: "pc_oauth_state", Value: "real"})
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/?error=auth_failed", w.Header().Get("Location"))
	assert.Nil(t, findCookie(w, "pc_session"))

	w = f.get("/api/auth/google/callback?error=access_denied")
	assert.Equal(t, "/?error=auth_failed", w.Header().Get("Location"))
}

func TestCallback_FacebookRegistrationThenLogin(t *testing.T) {
	provider := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/token":
			_ = json.NewEncoder(w).Encode(map[string]interface{}{
				"access_token": "fb-token",
				"token_type":   "Bearer",
				"expires_in":   3600,
			})
		case "/me":
			if r.Header.Get("Authorization") != "Bearer fb-token" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			_, _ = w.Write([]byte(`{"id":"42","name":"Amina Mint Ahmed","email":"Amina@Example.com","picture":{"data":{"url":"https://img/42.jpg"}}}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer provider.Close()

	oldGraph := FacebookGraphMeURL
	FacebookGraphMeURL = provider.URL + "/me"
	defer func() { FacebookGraphMeURL = oldGraph }()

	cfg := testConfig()
	f := newAuthFixture(t, cfg, map[Provider]*providerClient{
		ProviderFacebook: {
			config: &oauth2.Config{
				ClientID:     "app",
				ClientSecret: "secret",
				RedirectURL:  callbackURL(cfg, ProviderFacebook),
				Endpoint: oauth2.Endpoint{
					AuthURL:   provider.URL + "/dialog",
					TokenURL:  provider.URL + "/token",
					AuthStyle: oauth2.AuthStyleInParams,
				},
			},
			fetchProfile: fetchFacebookProfile,
		},
	})

	signIn := func() *httptest.ResponseRecorder {
		start := f.get("/api/auth/facebook")
		require.Equal(t, http.StatusTemporaryRedirect, start.Code)
		loc, err := url.Parse(start.Header().Get("Location"))
		require.NoError(t, err)
		return f.get("/api/auth/facebook/callback?code=abc&state="+url.QueryEscape(loc.Query().Get("state")), findCookie(start, "pc_oauth_state"))
	}

	w := signIn()
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/?registered=true", w.Header().Get("Location"))
	session := findCookie(w, "pc_session")
	require.NotNil(t, session)
	claims, err := f.tokens.ValidateToken(session.Value)
	require.NoError(t, err)
	assert.Equal(t, "facebook_42", claims.UserID)

	u, err := f.users.GetUserByID(context.Background(), "facebook_42")
	require.NoError(t, err)
	assert.Equal(t, "amina@example.com", u.Email)
	require.NotNil(t, u.FirstName)
	assert.Equal(t, "Amina", *u.FirstName)

	w = signIn()
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/?logged_in=true", w.Header().Get("Location"))
}

func TestLogout_BlocklistsSession(t *testing.T) {
	f := newAuthFixture(t, testConfig(), nil)
	token, _, err := f.tokens.GenerateSessionToken(&user.User{ID: "google_7"})
	require.NoError(t, err)
	claims, err := f.tokens.ValidateToken(token)
	require.NoError(t, err)

	w := f.get("/api/logout", &http.Cookie{Name: "pc_session", Value: token})
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/", w.Header().Get("Location"))
	cleared := findCookie(w, "pc_session")
	require.NotNil(t, cleared)
	assert.True(t, cleared.MaxAge < 0)

	listed, err := f.blocklist.IsBlocklisted(context.Background(), claims.ID)
	require.NoError(t, err)
	assert.True(t, listed)
}
