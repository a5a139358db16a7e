package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/zhouzirui/pdf-agent/backend/internal/handler/chat"
	"github.com/zhouzirui/pdf-agent/backend/internal/handler/document"
	"github.com/zhouzirui/pdf-agent/backend/internal/handler/health"
	"github.com/zhouzirui/pdf-agent/backend/internal/handler/persona"
	middlewarePkg "github.com/zhouzirui/pdf-agent/backend/internal/middleware"
	personaModel "github.com/zhouzirui/pdf-agent/backend/internal/model/persona"
	chatService "github.com/zhouzirui/pdf-agent/backend/internal/service/chat"
)

// Dependencies collects what the HTTP layer needs. ChatService may be nil
// when no model is configured.
type Dependencies struct {
	Documents      document.Store
	MaxUploadBytes int64
	ChatService    *chatService.Service
	SessionKey     string
	Personas       personaModel.Store
	ActivePersona  string
	AllowedOrigins []string
	Logger         *zap.Logger
}

// NewRouter wires HTTP routes to core services.
func NewRouter(deps Dependencies) http.Handler {
	log := deps.Logger
	if log == nil {
		log = zap.NewNop()
	}

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middlewarePkg.RequestLogger(log.Named("http")))
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.NewCORS(deps.AllowedOrigins))

	health.New().RegisterRoutes(r)
	document.New(deps.Documents, deps.MaxUploadBytes, log.Named("documents")).RegisterRoutes(r)
	chat.New(deps.ChatService, deps.SessionKey, log.Named("chat")).RegisterRoutes(r)

	if deps.Personas != nil {
		persona.New(deps.Personas, deps.ActivePersona).RegisterRoutes(r)
	}

	return r
}
