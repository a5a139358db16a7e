package health

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/zhouzirui/pdf-agent/backend/pkg/utils"
)

// Handler 健康检查
type Handler struct{}

// New 创建健康检查处理器
func New() *Handler {
	return &Handler{}
}

// RegisterRoutes 注册健康检查路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/health", h.handleHealth)
}

func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	utils.RespondJSON(w, http.StatusOK, map[string]string{
		"status":  "OK",
		"message": "Server is running correctly",
	})
}
