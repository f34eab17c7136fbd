package main

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/username/centavo/backend/src/config"
	"github.com/username/centavo/backend/src/handlers"
	"github.com/username/centavo/backend/src/security"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	config.Cfg = &config.AppConfig{FrontendBaseURL: "http://localhost:3000"}

	userHandler := handlers.NewUserHandler(security.NewAuthService("test-secret"))
	uploadHandler := handlers.NewUploadHandler(nil)
	txHandler := handlers.NewTransactionHandler(nil)
	return newRouter(userHandler, uploadHandler, txHandler)
}

func TestUnknownAPIRouteReturnsJSON404(t *testing.T) {
	router := newTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/no-such-route", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), `"error"`)
}

func TestUnknownNonAPIRouteReturnsPlain404(t *testing.T) {
	router := newTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/no-such-page", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHealthEndpoint(t *testing.T) {
	router := newTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "ok"))
}

func TestProtectedRouteRequiresAuth(t *testing.T) {
	router := newTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/transactions", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
