package server

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"stylematch/internal/styling"
)

func testServer(t *testing.T, outputDir string) http.Handler {
	t.Helper()
	srv := New("8787", outputDir, styling.Handler{Log: zap.NewNop()})
	return srv.Handler
}

func TestRoutes_Health(t *testing.T) {
	router := testServer(t, t.TempDir())

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
}

func TestRoutes_CORSPreflight(t *testing.T) {
	router := testServer(t, t.TempDir())

	req := httptest.NewRequest(http.MethodOptions, "/api/analyze", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestRoutes_ServesGeneratedArtifacts(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "styled_1_gothic.png"), []byte("png"), 0o644))
	router := testServer(t, dir)

	req := httptest.NewRequest(http.MethodGet, "/generated/styled_1_gothic.png", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "png", rec.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/generated/missing.png", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
