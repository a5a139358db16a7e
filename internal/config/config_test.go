package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"PORT", "ARK_API_KEY", "ARK_ACCESS_KEY", "ARK_SECRET_KEY", "ARK_MODEL",
		"ARK_TEMPERATURE", "ARK_TOP_P", "ARK_MAX_TOKENS", "AGENT_MAX_STEPS", "AGENT_PERSONA",
		"UPLOAD_DIRECTORY", "UPLOAD_MAX_BYTES", "DOCUMENT_CACHE_TTL",
		"CHAT_SESSION_KEY", "CHAT_ANNOTATE_DOCUMENTS",
		"TAVILY_API_KEY", "TAVILY_MAX_RESULTS", "TAVILY_TIMEOUT",
		"CORS_ALLOWED_ORIGINS", "LOG_LEVEL", "LOG_FILE", "APP_ENV",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8000", cfg.Server.Addr)
	assert.Equal(t, "uploaded_documents", cfg.Documents.UploadDir)
	assert.Equal(t, int64(32<<20), cfg.Documents.MaxBytes)
	assert.Equal(t, 10*time.Minute, cfg.Documents.CacheTTL)
	assert.Equal(t, "2", cfg.Chat.SessionKey)
	assert.False(t, cfg.Chat.AnnotateDocument)
	assert.Equal(t, 5, cfg.Search.MaxResults)
	assert.False(t, cfg.Search.Enabled())
	assert.False(t, cfg.AI.Enabled())
	assert.Equal(t, "arrogant", cfg.AI.PersonaID)
	assert.Equal(t, 12, cfg.AI.MaxSteps)
	assert.Equal(t, []string{"http://127.0.0.1:8000", "http://127.0.0.1:5500"}, cfg.CORS.AllowedOrigins)
}

func TestLoadServerAddrVariants(t *testing.T) {
	clearEnv(t)

	t.Setenv("PORT", "127.0.0.1:9000")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:9000", cfg.Server.Addr)

	t.Setenv("PORT", "90 00")
	_, err = Load()
	assert.Error(t, err)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := map[string]string{
		"ARK_TEMPERATURE":         "hot",
		"UPLOAD_MAX_BYTES":        "-1",
		"DOCUMENT_CACHE_TTL":      "soon",
		"CHAT_ANNOTATE_DOCUMENTS": "maybe",
		"AGENT_MAX_STEPS":         "many",
	}

	for key, value := range cases {
		t.Run(key, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(key, value)

			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestAIConfigEnabled(t *testing.T) {
	assert.True(t, AIConfig{Model: "m", APIKey: "k"}.Enabled())
	assert.True(t, AIConfig{Model: "m", AccessKey: "a", SecretKey: "s"}.Enabled())
	assert.False(t, AIConfig{Model: "m", AccessKey: "a"}.Enabled())
	assert.False(t, AIConfig{APIKey: "k"}.Enabled())
}

func TestAgentMaxStepsFloor(t *testing.T) {
	clearEnv(t)
	for _, raw := range []string{"1", "2"} {
		t.Setenv("AGENT_MAX_STEPS", raw)

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, 3, cfg.AI.MaxSteps, raw)
	}

	t.Setenv("AGENT_MAX_STEPS", "3")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.AI.MaxSteps)
}
