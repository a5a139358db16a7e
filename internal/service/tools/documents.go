package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/schema"
	"go.uber.org/zap"

	"github.com/zhouzirui/pdf-agent/backend/internal/service/document"
)

const (
	LoadDocumentName     = "load_document"
	AnalyzeDocumentsName = "analyze_documents"
	ListDocumentsName    = "list_documents"

	// NothingToAnalyze is returned by analyze_documents for an empty list.
	NothingToAnalyze = "There are no documents to analyze."
)

// DocumentStore is the part of the document store the tools read from.
type DocumentStore interface {
	Resolve(path string) (string, error)
	Exists(path string) bool
	List() ([]string, error)
}

// DocumentTools exposes uploaded documents to the agent.
type DocumentTools struct {
	store  DocumentStore
	loader document.Loader
	log    *zap.Logger
}

// NewDocumentTools binds the tools to a store and a text loader.
func NewDocumentTools(store DocumentStore, loader document.Loader, log *zap.Logger) *DocumentTools {
	if log == nil {
		log = zap.NewNop()
	}
	return &DocumentTools{store: store, loader: loader, log: log}
}

// LoadDocument extracts the full text of a stored PDF.
func (d *DocumentTools) LoadDocument(ctx context.Context, path string) (string, error) {
	abs, err := d.store.Resolve(path)
	if err != nil {
		return "", err
	}
	if !d.store.Exists(abs) {
		return "", document.ErrNotFound
	}
	if !document.SupportedExtension(abs) {
		return "", document.ErrInvalidType
	}
	return d.loader.ExtractText(ctx, abs)
}

// LoadDocumentText is LoadDocument with failures rendered as text.
func (d *DocumentTools) LoadDocumentText(ctx context.Context, path string) string {
	text, err := d.LoadDocument(ctx, path)
	switch {
	case err == nil:
		return text
	case errors.Is(err, document.ErrForbiddenPath):
		return fmt.Sprintf("Error: access to %s is not allowed.", path)
	case errors.Is(err, document.ErrNotFound):
		return fmt.Sprintf("Error: the file %s does not exist on the server.", path)
	case errors.Is(err, document.ErrInvalidType):
		return fmt.Sprintf("Error: %s is not a valid PDF file.", path)
	default:
		d.log.Warn("document extraction failed", zap.String("path", path), zap.Error(err))
		return fmt.Sprintf("Error processing PDF %s: %v", path, err)
	}
}

// AnalyzeDocuments concatenates one block per path, in input order.
func (d *DocumentTools) AnalyzeDocuments(ctx context.Context, paths []string) string {
	if len(paths) == 0 {
		return NothingToAnalyze
	}

	blocks := make([]string, 0, len(paths))
	for _, path := range paths {
		name := filepath.Base(path)

		abs, err := d.store.Resolve(path)
		if err != nil {
			blocks = append(blocks, fmt.Sprintf("The document %s cannot be accessed.", path))
			continue
		}
		if !d.store.Exists(abs) {
			blocks = append(blocks, fmt.Sprintf("The document %s does not exist.", path))
			continue
		}
		if !document.SupportedExtension(path) {
			blocks = append(blocks, fmt.Sprintf("DOCUMENT '%s': unsupported file type. Only PDFs can be analyzed.\n", name))
			continue
		}

		content := d.LoadDocumentText(ctx, path)
		blocks = append(blocks, fmt.Sprintf("CONTENT OF DOCUMENT '%s':\n%s\n", name, content))
	}

	return strings.Join(blocks, "\n")
}

// ListDocuments returns the stored document paths.
func (d *DocumentTools) ListDocuments() ([]string, error) {
	return d.store.List()
}

type loadDocumentInput struct {
	FilePath string `json:"file_path"`
}

type analyzeDocumentsInput struct {
	DocumentPaths []string `json:"document_paths"`
}

type listDocumentsInput struct{}

// Register adds load_document, analyze_documents and list_documents to r.
func (d *DocumentTools) Register(r *Registry) error {
	load := New(LoadDocumentName,
		"Loads a PDF document and extracts its text. Use it to read the content of PDF files uploaded by the user.",
		map[string]*schema.ParameterInfo{
			"file_path": {Type: schema.String, Desc: "Path of the uploaded PDF, as returned by the upload endpoint or list_documents.", Required: true},
		},
		func(ctx context.Context, in loadDocumentInput) (string, error) {
			return d.LoadDocumentText(ctx, in.FilePath), nil
		})

	analyze := New(AnalyzeDocumentsName,
		"Analyzes several PDF documents uploaded by the user. Extracts and combines their content for analysis.",
		map[string]*schema.ParameterInfo{
			"document_paths": {
				Type:     schema.Array,
				Desc:     "Paths of the uploaded documents to analyze.",
				ElemInfo: &schema.ParameterInfo{Type: schema.String},
				Required: true,
			},
		},
		func(ctx context.Context, in analyzeDocumentsInput) (string, error) {
			return d.AnalyzeDocuments(ctx, in.DocumentPaths), nil
		})

	list := New(ListDocumentsName,
		"Lists every document available in the upload directory.",
		nil,
		func(_ context.Context, _ listDocumentsInput) (string, error) {
			paths, err := d.ListDocuments()
			if err != nil {
				return fmt.Sprintf("Error: could not list documents: %v", err), nil
			}
			encoded, err := json.Marshal(paths)
			if err != nil {
				return "", err
			}
			return string(encoded), nil
		})

	for _, t := range []tool.InvokableTool{load, analyze, list} {
		if err := r.Register(t); err != nil {
			return err
		}
	}
	return nil
}
