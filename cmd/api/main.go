package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/zhouzirui/pdf-agent/backend/internal/config"
	"github.com/zhouzirui/pdf-agent/backend/internal/handler"
	"github.com/zhouzirui/pdf-agent/backend/internal/logger"
	"github.com/zhouzirui/pdf-agent/backend/internal/model/persona"
	"github.com/zhouzirui/pdf-agent/backend/internal/service/ai"
	"github.com/zhouzirui/pdf-agent/backend/internal/service/chat"
	"github.com/zhouzirui/pdf-agent/backend/internal/service/document"
	"github.com/zhouzirui/pdf-agent/backend/internal/service/search"
	"github.com/zhouzirui/pdf-agent/backend/internal/service/tools"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load .env file
	envErr := godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	zlog, err := logger.New(logger.Options{
		Level: cfg.Log.Level,
		File:  cfg.Log.File,
		JSON:  cfg.Log.Production,
	})
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer func() { _ = zlog.Sync() }()
	zap.ReplaceGlobals(zlog)

	if envErr != nil {
		zlog.Warn("failed to load .env file, continuing with system environment variables only", zap.Error(envErr))
	}

	// Document store and text extraction
	var loader document.Loader = document.PDFLoader{}
	var storeOpts []document.Option
	if cfg.Documents.CacheTTL > 0 {
		cached := document.NewCachedLoader(loader, cfg.Documents.CacheTTL, logger.Module(zlog, "loader"))
		loader = cached
		storeOpts = append(storeOpts, document.WithEvicter(cached))
	}

	store, err := document.NewStore(cfg.Documents.UploadDir, logger.Module(zlog, "documents"), storeOpts...)
	if err != nil {
		zlog.Fatal("failed to prepare upload directory", zap.String("dir", cfg.Documents.UploadDir), zap.Error(err))
	}

	// Tools available to the agent
	registry := tools.NewRegistry()
	if err := tools.NewDocumentTools(store, loader, logger.Module(zlog, "tools")).Register(registry); err != nil {
		zlog.Fatal("failed to register document tools", zap.Error(err))
	}
	if cfg.Search.Enabled() {
		searcher, err := search.NewTavilyClient(search.Config{
			APIKey:     cfg.Search.APIKey,
			BaseURL:    cfg.Search.BaseURL,
			MaxResults: cfg.Search.MaxResults,
			Timeout:    cfg.Search.Timeout,
		}, logger.Module(zlog, "search"))
		if err != nil {
			zlog.Fatal("failed to initialize web search", zap.Error(err))
		}
		if err := registry.Register(tools.NewWebSearchTool(searcher)); err != nil {
			zlog.Fatal("failed to register web search tool", zap.Error(err))
		}
	} else {
		zlog.Info("TAVILY_API_KEY not set, web search tool disabled")
	}

	// Persona and system prompt
	personaStore := persona.NewMemoryStore(persona.Seed())
	active, err := persona.Lookup(personaStore, cfg.AI.PersonaID)
	if err != nil {
		zlog.Fatal("invalid AGENT_PERSONA", zap.Error(err))
	}
	systemPrompt := ai.NewPromptManager(registry.Names()).BuildSystemPrompt(active)

	// Initialize AI service
	var chatService *chat.Service
	if cfg.AI.Enabled() {
		chatService, err = newChatService(ctx, cfg, registry, systemPrompt, zlog)
		if err != nil {
			zlog.Warn("failed to initialize AI service, continuing without chat", zap.Error(err))
		} else {
			zlog.Info("AI service initialized", zap.String("model", cfg.AI.Model), zap.Strings("tools", registry.Names()))
		}
	} else {
		zlog.Warn("Ark credentials not configured, /chat will answer 503")
	}

	router := handler.NewRouter(handler.Dependencies{
		Documents:      store,
		MaxUploadBytes: cfg.Documents.MaxBytes,
		ChatService:    chatService,
		SessionKey:     cfg.Chat.SessionKey,
		Personas:       personaStore,
		ActivePersona:  active.ID,
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		Logger:         zlog,
	})

	startServer(ctx, cfg.Server, router, zlog)
}

func newChatService(ctx context.Context, cfg *config.Config, registry *tools.Registry, systemPrompt string, zlog *zap.Logger) (*chat.Service, error) {
	chatModel, err := cfg.AI.NewChatModel(ctx)
	if err != nil {
		return nil, err
	}

	reasoner, err := ai.NewService(ctx, chatModel, registry, cfg.AI.MaxSteps, logger.Module(zlog, "agent"))
	if err != nil {
		return nil, err
	}

	return chat.NewService(chat.NewMemoryStore(), reasoner, chat.Config{
		SystemPrompt:      systemPrompt,
		AnnotateDocuments: cfg.Chat.AnnotateDocument,
	}, logger.Module(zlog, "chat")), nil
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler, zlog *zap.Logger) {
	addr := serverCfg.Addr
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	zlog.Info("PDF agent backend listening", zap.String("addr", addr))
	if err := runServer(ctx, srv); err != nil {
		zlog.Fatal("server error", zap.Error(err))
	}
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
