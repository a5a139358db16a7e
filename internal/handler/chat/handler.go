package chat

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	chatService "github.com/zhouzirui/pdf-agent/backend/internal/service/chat"
	"github.com/zhouzirui/pdf-agent/backend/pkg/utils"
)

// Handler 聊天服务的HTTP处理器
type Handler struct {
	chatSvc    *chatService.Service
	sessionKey string
	log        *zap.Logger
}

// New 创建聊天处理器; chatSvc 为 nil 时聊天接口返回 503
func New(chatSvc *chatService.Service, sessionKey string, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{
		chatSvc:    chatSvc,
		sessionKey: sessionKey,
		log:        log,
	}
}

// RegisterRoutes 注册聊天相关的路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/chat", h.handleChat)
	r.Get("/chat/history", h.handleHistory)
	r.Delete("/chat/history", h.handleReset)
}

// handleChat 将消息交给 agent 并返回最终回复
func (h *Handler) handleChat(w http.ResponseWriter, r *http.Request) {
	if h.chatSvc == nil {
		utils.RespondError(w, http.StatusServiceUnavailable, "ai chat unavailable")
		return
	}

	var payload struct {
		Message   string   `json:"message"`
		Documents []string `json:"documents"`
	}

	if err := utils.DecodeJSON(r, &payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if strings.TrimSpace(payload.Message) == "" {
		utils.RespondError(w, http.StatusBadRequest, "message is required")
		return
	}

	answer, err := h.chatSvc.Chat(r.Context(), h.sessionKey, payload.Message, payload.Documents)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, chatService.ErrMessageRequired) {
			status = http.StatusBadRequest
		}
		h.log.Error("chat failed", zap.String("session", h.sessionKey), zap.Error(err))
		utils.RespondError(w, status, err.Error())
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]string{"response": answer})
}

// handleHistory 返回当前会话的全部轮次
func (h *Handler) handleHistory(w http.ResponseWriter, r *http.Request) {
	if h.chatSvc == nil {
		utils.RespondError(w, http.StatusServiceUnavailable, "ai chat unavailable")
		return
	}

	turns, err := h.chatSvc.History(r.Context(), h.sessionKey)
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	body := map[string]interface{}{
		"sessionKey": h.sessionKey,
		"turns":      turns,
	}
	if session, ok := h.chatSvc.Session(h.sessionKey); ok {
		body["createdAt"] = session.CreatedAt
	}
	utils.RespondJSON(w, http.StatusOK, body)
}

// handleReset 清空当前会话
func (h *Handler) handleReset(w http.ResponseWriter, r *http.Request) {
	if h.chatSvc == nil {
		utils.RespondError(w, http.StatusServiceUnavailable, "ai chat unavailable")
		return
	}

	if err := h.chatSvc.Reset(r.Context(), h.sessionKey); err != nil {
		utils.RespondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Conversation history cleared",
		"success": true,
	})
}
