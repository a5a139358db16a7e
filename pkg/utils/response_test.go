package utils

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRespondError(t *testing.T) {
	rec := httptest.NewRecorder()
	RespondError(rec, http.StatusForbidden, "nope")

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "nope", body["error"])
}

func TestDecodeJSON(t *testing.T) {
	var dst struct {
		FilePath string `json:"file_path"`
	}

	req := httptest.NewRequest(http.MethodDelete, "/", strings.NewReader(`{"file_path":"a.pdf"}`))
	require.NoError(t, DecodeJSON(req, &dst))
	assert.Equal(t, "a.pdf", dst.FilePath)

	req = httptest.NewRequest(http.MethodDelete, "/", strings.NewReader(``))
	assert.Error(t, DecodeJSON(req, &dst))

	req = httptest.NewRequest(http.MethodDelete, "/", strings.NewReader(`{"file_path":"a"}{"file_path":"b"}`))
	assert.Error(t, DecodeJSON(req, &dst))
}
