package document

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/zhouzirui/pdf-agent/backend/internal/model/document"
	documentService "github.com/zhouzirui/pdf-agent/backend/internal/service/document"
	"github.com/zhouzirui/pdf-agent/backend/pkg/utils"
)

// multipart parts beyond this size spill to temporary files
const maxFormMemory = 8 << 20

// Store is the document storage the handler delegates to.
type Store interface {
	Save(ctx context.Context, filename string, r io.Reader) (string, error)
	Delete(ctx context.Context, path string) error
	Documents() ([]document.Document, error)
}

// Handler 文档上传与删除的HTTP处理器
type Handler struct {
	store    Store
	maxBytes int64
	log      *zap.Logger
}

// New 创建文档处理器
func New(store Store, maxBytes int64, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{store: store, maxBytes: maxBytes, log: log}
}

// RegisterRoutes 注册文档相关的路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/upload", h.handleUpload)
	r.Delete("/delete-file", h.handleDelete)
	r.Get("/documents", h.handleList)
}

func (h *Handler) handleUpload(w http.ResponseWriter, r *http.Request) {
	if h.maxBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes)
	}

	if err := r.ParseMultipartForm(maxFormMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			utils.RespondError(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("file exceeds %d bytes", tooLarge.Limit))
			return
		}
		utils.RespondError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	defer func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}()

	file, header, err := r.FormFile("file")
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, "file is required")
		return
	}
	defer file.Close()

	path, err := h.store.Save(r.Context(), header.Filename, file)
	if err != nil {
		h.log.Error("upload failed", zap.String("filename", header.Filename), zap.Error(err))
		utils.RespondError(w, http.StatusInternalServerError, fmt.Sprintf("error uploading file: %v", err))
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]string{
		"message":   fmt.Sprintf("File %s uploaded successfully", header.Filename),
		"filename":  header.Filename,
		"file_path": path,
	})
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		FilePath string `json:"file_path"`
	}

	if err := utils.DecodeJSON(r, &payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if strings.TrimSpace(payload.FilePath) == "" {
		utils.RespondError(w, http.StatusBadRequest, "file_path is required")
		return
	}

	if err := h.store.Delete(r.Context(), payload.FilePath); err != nil {
		status, message := deleteStatus(err)
		if status >= http.StatusInternalServerError {
			h.log.Error("delete failed", zap.String("path", payload.FilePath), zap.Error(err))
		} else {
			h.log.Warn("delete rejected", zap.String("path", payload.FilePath), zap.Error(err))
		}
		utils.RespondError(w, status, message)
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"message": fmt.Sprintf("File %s deleted successfully", filepath.Base(payload.FilePath)),
		"success": true,
	})
}

func (h *Handler) handleList(w http.ResponseWriter, _ *http.Request) {
	docs, err := h.store.Documents()
	if err != nil {
		h.log.Error("list documents failed", zap.Error(err))
		utils.RespondError(w, http.StatusInternalServerError, "failed to list documents")
		return
	}
	utils.RespondJSON(w, http.StatusOK, map[string]interface{}{"documents": docs})
}

func deleteStatus(err error) (int, string) {
	switch {
	case errors.Is(err, documentService.ErrForbiddenPath):
		return http.StatusForbidden, "access to this path is not allowed"
	case errors.Is(err, documentService.ErrNotFound):
		return http.StatusNotFound, "the file does not exist"
	case errors.Is(err, documentService.ErrNotAFile):
		return http.StatusBadRequest, "the path is not a file"
	case errors.Is(err, documentService.ErrDeleteFailed):
		return http.StatusInternalServerError, "the file could not be deleted"
	default:
		return http.StatusInternalServerError, fmt.Sprintf("error deleting file: %v", err)
	}
}
