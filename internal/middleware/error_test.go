package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"property_connect_backend/internal/common"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestErrorHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.HandleMethodNotAllowed = true
	r.Use(ErrorHandler(zap.NewNop()))
	r.NoRoute(NoRoute)
	r.NoMethod(NoMethod)
	r.GET("/api-error", func(c *gin.Context) { _ = c.Error(common.ErrForbidden) })
	r.GET("/plain-error", func(c *gin.Context) { _ = c.Error(errors.New("boom")) })

	cases := []struct {
		method, path string
		status       int
		code         string
	}{
		{http.MethodGet, "/api-error", http.StatusForbidden, "FORBIDDEN"},
		{http.MethodGet, "/plain-error", http.StatusInternalServerError, "INTERNAL_SERVER_ERROR"},
		{http.MethodGet, "/missing", http.StatusNotFound, "NOT_FOUND"},
		{http.MethodPost, "/api-error", http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED"},
	}
	for _, tc := range cases {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(tc.method, tc.path, nil))
		assert.Equal(t, tc.status, w.Code, tc.path)
		assert.Contains(t, w.Body.String(), tc.code, tc.path)
	}
}
