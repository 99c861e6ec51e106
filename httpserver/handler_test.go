package httpserver

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quillpress/quillpress/install"
	"github.com/quillpress/quillpress/session"
	"github.com/quillpress/quillpress/storage"
)

func testHandler(t *testing.T) (*Handler, string) {
	t.Helper()
	root := t.TempDir()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	installer := install.New(root, storage.NewFactory(logger), session.NewManager(logger), logger)
	return NewHandler(root, installer, logger), root
}

func installForm(root string) url.Values {
	form := url.Values{}
	form.Set("cmd", "install")
	form.Set("name", "Jane Doe")
	form.Set("email", "jane@example.com")
	form.Set("username", "Jane Doe")
	form.Set("password", "correct-horse-battery")
	form.Set("driver", "sqlite")
	form.Set("db-database", filepath.Join(root, "quillpress.db"))
	form.Set("db-user", "quillpress")
	return form
}

func postInstall(t *testing.T, h *Handler, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/install",
		strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	h.HandleInstall(rec, req)
	return rec
}

func decodeInstallResponse(t *testing.T, rec *httptest.ResponseRecorder) InstallResponse {
	t.Helper()
	var resp InstallResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp
}

func TestHandleInstallSuccess(t *testing.T) {
	h, root := testHandler(t)

	rec := postInstall(t, h, installForm(root))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	resp := decodeInstallResponse(t, rec)
	assert.True(t, resp.Success)
	assert.Equal(t, install.AdminPath, resp.Redirect)
	assert.Empty(t, resp.Invalid)
	assert.Empty(t, resp.Message)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, SessionCookieName, cookies[0].Name)
	assert.NotEmpty(t, cookies[0].Value)
	assert.True(t, cookies[0].HttpOnly)

	assert.True(t, install.IsInstalled(root))
}

func TestHandleInstallRefusesWhenInstalled(t *testing.T) {
	h, root := testHandler(t)

	rec := postInstall(t, h, installForm(root))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = postInstall(t, h, installForm(root))
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), "already installed")
}

func TestHandleInstallRefusesWrongCommand(t *testing.T) {
	h, root := testHandler(t)

	form := installForm(root)
	form.Set("cmd", "upgrade")
	rec := postInstall(t, h, form)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	form.Del("cmd")
	rec = postInstall(t, h, form)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	assert.False(t, install.IsInstalled(root))
}

func TestHandleInstallValidationFailure(t *testing.T) {
	h, root := testHandler(t)

	form := installForm(root)
	form.Set("password", "short")
	rec := postInstall(t, h, form)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	resp := decodeInstallResponse(t, rec)
	assert.False(t, resp.Success)
	assert.Equal(t, []string{"password"}, resp.Invalid)
	assert.NotEmpty(t, resp.Message)
	assert.Empty(t, resp.Redirect)
	assert.Empty(t, rec.Result().Cookies())
}

func TestHandleInstallConnectivityFailure(t *testing.T) {
	h, root := testHandler(t)

	form := installForm(root)
	form.Set("db-database", filepath.Join(root, "missing", "nested", "quillpress.db"))
	rec := postInstall(t, h, form)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	resp := decodeInstallResponse(t, rec)
	assert.False(t, resp.Success)
	assert.Equal(t, []string{"db-database"}, resp.Invalid)
	assert.False(t, install.IsInstalled(root))
}
