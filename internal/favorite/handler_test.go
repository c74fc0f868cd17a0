package favorite

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"property_connect_backend/internal/common"
	"property_connect_backend/internal/platform/database/dbtest"
	"property_connect_backend/internal/property"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func setupFavoriteRouter(t *testing.T) (*gin.Engine, *property.Property) {
	gin.SetMode(gin.TestMode)
	db := dbtest.Open(t, &property.Property{}, &Favorite{})
	p := seedProperty(t, db, "House")

	svc := NewService(NewGORMRepository(db), property.NewGORMRepository(db), zap.NewNop())
	h := NewHandler(svc, zap.NewNop())

	authMW := func(c *gin.Context) {
		c.Set(common.UserIDKey, "u1")
		c.Next()
	}
	r := gin.New()
	h.RegisterRoutes(r.Group("/api"), authMW)
	return r, p
}

func send(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHandler_AddFavorite(t *testing.T) {
	r, p := setupFavoriteRouter(t)

	w := send(r, http.MethodPost, "/api/favorites", `{"propertyId":"`+p.ID+`"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	var fav Favorite
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &fav))
	assert.Equal(t, p.ID, fav.PropertyID)
	assert.NotEmpty(t, fav.ID)

	w = send(r, http.MethodPost, "/api/favorites", `{"propertyId":"`+p.ID+`"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.JSONEq(t, `{"userId":"u1","propertyId":"`+p.ID+`","success":true}`, w.Body.String())

	w = send(r, http.MethodGet, "/api/favorites/ids", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `["`+p.ID+`"]`, w.Body.String())
}

func TestHandler_AddFavoriteValidation(t *testing.T) {
	r, _ := setupFavoriteRouter(t)

	w := send(r, http.MethodPost, "/api/favorites", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Property ID is required")

	w = send(r, http.MethodPost, "/api/favorites", `{"propertyId":"missing"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHandler_RemoveFavorite(t *testing.T) {
	r, p := setupFavoriteRouter(t)
	require.Equal(t, http.StatusCreated, send(r, http.MethodPost, "/api/favorites", `{"propertyId":"`+p.ID+`"}`).Code)

	for i := 0; i < 2; i++ {
		w := send(r, http.MethodDelete, "/api/favorites/"+p.ID, "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"success":true}`, w.Body.String())
	}

	w := send(r, http.MethodGet, "/api/favorites", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())
}
