package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foodgram-app/backend/config"
	"github.com/foodgram-app/backend/internal/testhelpers"
)

func TestNew(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := testhelpers.SetupTestDB(t)

	cfg := &config.Config{
		ServerHost: "localhost",
		ServerPort: "8000",
		JWTSecret:  "test-secret",
		MediaRoot:  t.TempDir(),
	}

	srv := New(cfg, db, nil, nil)
	require.NotNil(t, srv)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	srv.Router().ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	// The API routes are mounted.
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/api/tags", nil)
	srv.Router().ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	// Protected routes reject anonymous callers.
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/api/users/me", nil)
	srv.Router().ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
