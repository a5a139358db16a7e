package handler

import (
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	personaModel "github.com/zhouzirui/pdf-agent/backend/internal/model/persona"
	documentService "github.com/zhouzirui/pdf-agent/backend/internal/service/document"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	store, err := documentService.NewStore(filepath.Join(t.TempDir(), "uploads"), nil)
	require.NoError(t, err)

	return NewRouter(Dependencies{
		Documents:      store,
		MaxUploadBytes: 1 << 20,
		SessionKey:     "2",
		Personas:       personaModel.NewMemoryStore(personaModel.Seed()),
		ActivePersona:  "arrogant",
		AllowedOrigins: []string{"http://127.0.0.1:5500"},
	})
}

func TestRouterServesHealthWithCORS(t *testing.T) {
	r := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "http://127.0.0.1:5500")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "http://127.0.0.1:5500", resp.Header().Get("Access-Control-Allow-Origin"))
}

func TestRouterChatWithoutModel(t *testing.T) {
	r := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/chat", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	assert.Equal(t, http.StatusServiceUnavailable, resp.Code)
}

func TestRouterRoutes(t *testing.T) {
	r := newTestRouter(t)

	for _, path := range []string{"/documents", "/personas"} {
		resp := httptest.NewRecorder()
		r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, resp.Code, path)
	}

	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/unknown", nil))
	assert.Equal(t, http.StatusNotFound, resp.Code)
}
