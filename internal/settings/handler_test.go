package settings

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"property_connect_backend/internal/common"
	"property_connect_backend/internal/platform/cache"
	"property_connect_backend/internal/platform/database/dbtest"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func setupSettingsRouter(t *testing.T, isAdmin bool) *gin.Engine {
	gin.SetMode(gin.TestMode)
	svc := NewService(NewGORMRepository(dbtest.Open(t, &AppSettings{})), cache.NewMemory(time.Minute), zap.NewNop())
	h := NewHandler(svc, zap.NewNop())

	authMW := func(c *gin.Context) { c.Set(common.UserIDKey, "u1"); c.Next() }
	adminMW := func(c *gin.Context) {
		if !isAdmin {
			common.RespondWithError(c, common.ErrForbidden.WithMessage("Admin access required"))
			return
		}
		c.Next()
	}

	r := gin.New()
	h.RegisterRoutes(r.Group("/api"), authMW, adminMW)
	return r
}

func patchSettings(r *gin.Engine, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPatch, "/api/app-settings", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHandler_GetSettingsIsPublic(t *testing.T) {
	r := setupSettingsRouter(t, false)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/app-settings", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var got AppSettings
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, "support@propfind.com", *got.SupportEmail)
}

func TestHandler_PatchRequiresAdmin(t *testing.T) {
	w := patchSettings(setupSettingsRouter(t, false), `{"supportPhone":"1"}`)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "Admin access required")
}

func TestHandler_PatchValidatesEmail(t *testing.T) {
	r := setupSettingsRouter(t, true)

	w := patchSettings(r, `{"supportEmail":"not-an-email"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "VALIDATION_ERROR")

	w = patchSettings(r, `{"supportEmail":""}`)
	require.Equal(t, http.StatusOK, w.Code)

	w = patchSettings(r, `{"supportEmail":"help@example.com","supportPhone":"+222 555"}`)
	require.Equal(t, http.StatusOK, w.Code)
	var got AppSettings
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, "help@example.com", *got.SupportEmail)
	assert.Equal(t, "+222 555", *got.SupportPhone)
	assert.Equal(t, "+15551234567", *got.SupportWhatsapp)
}

func TestHandler_PatchInvalidatesCache(t *testing.T) {
	r := setupSettingsRouter(t, true)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/app-settings", nil))
	require.Equal(t, http.StatusOK, w.Code)

	require.Equal(t, http.StatusOK, patchSettings(r, `{"logoUrl":"https://x/logo.png"}`).Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/app-settings", nil))
	var got AppSettings
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.NotNil(t, got.LogoURL)
	assert.Equal(t, "https://x/logo.png", *got.LogoURL)
}
