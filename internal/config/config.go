package config

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/cloudwego/eino-ext/components/model/ark"
	"github.com/cloudwego/eino/components/model"
)

// Config aggregates every configuration section of the service.
type Config struct {
	Server    ServerConfig
	AI        AIConfig
	Documents DocumentsConfig
	Chat      ChatConfig
	Search    SearchConfig
	CORS      CORSConfig
	Log       LogConfig
}

// Load reads the configuration from environment variables.
func Load() (*Config, error) {
	server, err := loadServerConfig()
	if err != nil {
		return nil, err
	}

	ai, err := loadAIConfig()
	if err != nil {
		return nil, err
	}

	documents, err := loadDocumentsConfig()
	if err != nil {
		return nil, err
	}

	chat, err := loadChatConfig()
	if err != nil {
		return nil, err
	}

	search, err := loadSearchConfig()
	if err != nil {
		return nil, err
	}

	return &Config{
		Server:    server,
		AI:        ai,
		Documents: documents,
		Chat:      chat,
		Search:    search,
		CORS:      loadCORSConfig(),
		Log:       loadLogConfig(),
	}, nil
}

// ServerConfig describes the HTTP listener.
type ServerConfig struct {
	Addr string
}

func loadServerConfig() (ServerConfig, error) {
	port := strings.TrimSpace(os.Getenv("PORT"))
	if port == "" {
		port = "8000"
	}

	if strings.Contains(port, ":") {
		// Accept ":8000" or "127.0.0.1:8000" verbatim.
		return ServerConfig{Addr: port}, nil
	}

	if strings.Contains(port, " ") {
		return ServerConfig{}, fmt.Errorf("invalid PORT value: %q", port)
	}

	return ServerConfig{Addr: ":" + port}, nil
}

// AIConfig describes the chat model and the agent built on top of it.
type AIConfig struct {
	APIKey      string
	AccessKey   string
	SecretKey   string
	Model       string
	BaseURL     string
	Region      string
	Temperature *float64
	TopP        *float64
	MaxTokens   *int
	MaxSteps    int
	PersonaID   string
}

// Enabled reports whether the credentials required by the model are present.
func (c AIConfig) Enabled() bool {
	return c.Model != "" && (c.APIKey != "" || (c.AccessKey != "" && c.SecretKey != ""))
}

// NewChatModel builds a tool-calling chat model from the configuration.
func (c AIConfig) NewChatModel(ctx context.Context) (model.ChatModel, error) {
	if !c.Enabled() {
		return nil, fmt.Errorf("ark credentials or model missing: set ARK_MODEL with ARK_API_KEY or ARK_ACCESS_KEY + ARK_SECRET_KEY")
	}

	var temperature *float32
	if c.Temperature != nil {
		val := float32(*c.Temperature)
		temperature = &val
	}

	var topP *float32
	if c.TopP != nil {
		val := float32(*c.TopP)
		topP = &val
	}

	cfg := &ark.ChatModelConfig{
		BaseURL:     c.BaseURL,
		Region:      c.Region,
		APIKey:      c.APIKey,
		AccessKey:   c.AccessKey,
		SecretKey:   c.SecretKey,
		Model:       c.Model,
		MaxTokens:   c.MaxTokens,
		Temperature: temperature,
		TopP:        topP,
	}

	return ark.NewChatModel(ctx, cfg)
}

func loadAIConfig() (AIConfig, error) {
	temperature, err := parseOptionalFloatEnv("ARK_TEMPERATURE")
	if err != nil {
		return AIConfig{}, err
	}

	topP, err := parseOptionalFloatEnv("ARK_TOP_P")
	if err != nil {
		return AIConfig{}, err
	}

	maxTokens, err := parseOptionalIntEnv("ARK_MAX_TOKENS")
	if err != nil {
		return AIConfig{}, err
	}

	maxSteps := 12
	if override, err := parseOptionalIntEnv("AGENT_MAX_STEPS"); err != nil {
		return AIConfig{}, err
	} else if override != nil {
		if *override < 3 {
			// a tool round costs three graph steps: model, tools, model
			maxSteps = 3
		} else {
			maxSteps = *override
		}
	}

	return AIConfig{
		APIKey:      strings.TrimSpace(os.Getenv("ARK_API_KEY")),
		AccessKey:   strings.TrimSpace(os.Getenv("ARK_ACCESS_KEY")),
		SecretKey:   strings.TrimSpace(os.Getenv("ARK_SECRET_KEY")),
		Model:       strings.TrimSpace(os.Getenv("ARK_MODEL")),
		BaseURL:     getEnvOrDefault("ARK_BASE_URL", "https://ark.cn-beijing.volces.com/api/v3"),
		Region:      getEnvOrDefault("ARK_REGION", "cn-beijing"),
		Temperature: temperature,
		TopP:        topP,
		MaxTokens:   maxTokens,
		MaxSteps:    maxSteps,
		PersonaID:   getEnvOrDefault("AGENT_PERSONA", "arrogant"),
	}, nil
}

// DocumentsConfig describes the upload sandbox.
type DocumentsConfig struct {
	UploadDir string
	MaxBytes  int64
	CacheTTL  time.Duration
}

func loadDocumentsConfig() (DocumentsConfig, error) {
	maxBytes := int64(32 << 20)
	if override, err := parseOptionalIntEnv("UPLOAD_MAX_BYTES"); err != nil {
		return DocumentsConfig{}, err
	} else if override != nil {
		if *override <= 0 {
			return DocumentsConfig{}, fmt.Errorf("invalid UPLOAD_MAX_BYTES value %d: must be positive", *override)
		}
		maxBytes = int64(*override)
	}

	cacheTTL, err := parseDurationEnv("DOCUMENT_CACHE_TTL", 10*time.Minute)
	if err != nil {
		return DocumentsConfig{}, err
	}

	return DocumentsConfig{
		UploadDir: getEnvOrDefault("UPLOAD_DIRECTORY", "uploaded_documents"),
		MaxBytes:  maxBytes,
		CacheTTL:  cacheTTL,
	}, nil
}

// ChatConfig describes the conversational session.
type ChatConfig struct {
	SessionKey       string
	AnnotateDocument bool
}

func loadChatConfig() (ChatConfig, error) {
	annotate, err := parseBoolEnv("CHAT_ANNOTATE_DOCUMENTS", false)
	if err != nil {
		return ChatConfig{}, err
	}

	return ChatConfig{
		SessionKey:       getEnvOrDefault("CHAT_SESSION_KEY", "2"),
		AnnotateDocument: annotate,
	}, nil
}

// SearchConfig describes the web search tool.
type SearchConfig struct {
	APIKey     string
	BaseURL    string
	MaxResults int
	Timeout    time.Duration
}

// Enabled reports whether a search key was provided.
func (c SearchConfig) Enabled() bool {
	return c.APIKey != ""
}

func loadSearchConfig() (SearchConfig, error) {
	maxResults := 5
	if override, err := parseOptionalIntEnv("TAVILY_MAX_RESULTS"); err != nil {
		return SearchConfig{}, err
	} else if override != nil && *override > 0 {
		maxResults = *override
	}

	timeout, err := parseDurationEnv("TAVILY_TIMEOUT", 20*time.Second)
	if err != nil {
		return SearchConfig{}, err
	}

	return SearchConfig{
		APIKey:     strings.TrimSpace(os.Getenv("TAVILY_API_KEY")),
		BaseURL:    getEnvOrDefault("TAVILY_BASE_URL", "https://api.tavily.com"),
		MaxResults: maxResults,
		Timeout:    timeout,
	}, nil
}

// CORSConfig lists the browser origins allowed to call the API.
type CORSConfig struct {
	AllowedOrigins []string
}

func loadCORSConfig() CORSConfig {
	raw := getEnvOrDefault("CORS_ALLOWED_ORIGINS", "http://127.0.0.1:8000,http://127.0.0.1:5500")
	return CORSConfig{AllowedOrigins: splitList(raw)}
}

// LogConfig controls the zap logger.
type LogConfig struct {
	Level      string
	File       string
	Production bool
}

func loadLogConfig() LogConfig {
	return LogConfig{
		Level:      getEnvOrDefault("LOG_LEVEL", "info"),
		File:       strings.TrimSpace(os.Getenv("LOG_FILE")),
		Production: strings.EqualFold(strings.TrimSpace(os.Getenv("APP_ENV")), "production"),
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func parseBoolEnv(key string, defaultValue bool) (bool, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return defaultValue, nil
	}

	val, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("invalid %s value %q: %w", key, raw, err)
	}
	return val, nil
}

func parseDurationEnv(key string, defaultValue time.Duration) (time.Duration, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return defaultValue, nil
	}

	val, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", key, raw, err)
	}
	if val < 0 {
		return 0, fmt.Errorf("invalid %s value %q: must not be negative", key, raw)
	}
	return val, nil
}

func parseOptionalFloatEnv(key string) (*float64, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}

func parseOptionalIntEnv(key string) (*int, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.Atoi(value)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}
