package httpserver

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testServer(t *testing.T) *Server {
	t.Helper()
	h, _ := testHandler(t)
	srv, err := New(&HTTPServerConfig{
		ListenAddr:    "127.0.0.1:0",
		Log:           slog.New(slog.NewTextHandler(io.Discard, nil)),
		DrainDuration: time.Millisecond,
	}, h)
	require.NoError(t, err)
	return srv
}

func get(t *testing.T, router http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestHealthEndpoints(t *testing.T) {
	srv := testServer(t)
	router := srv.getRouter()

	assert.Equal(t, http.StatusOK, get(t, router, "/livez").Code)
	assert.Equal(t, http.StatusOK, get(t, router, "/readyz").Code)
}

func TestDrainUndrain(t *testing.T) {
	srv := testServer(t)
	router := srv.getRouter()

	assert.Equal(t, http.StatusOK, get(t, router, "/drain").Code)
	assert.Equal(t, http.StatusServiceUnavailable, get(t, router, "/readyz").Code)

	rec := get(t, router, "/drain")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "already draining")

	assert.Equal(t, http.StatusOK, get(t, router, "/undrain").Code)
	assert.Equal(t, http.StatusOK, get(t, router, "/readyz").Code)
}

func TestInstallRouteWired(t *testing.T) {
	srv := testServer(t)
	router := srv.getRouter()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/install", nil))
	// No form body at all: refused before any work happens.
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
