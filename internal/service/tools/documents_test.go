package tools

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhouzirui/pdf-agent/backend/internal/service/document"
)

type stubLoader struct {
	texts map[string]string
	err   error
}

func (s stubLoader) ExtractText(_ context.Context, path string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	return s.texts[filepath.Base(path)], nil
}

func setup(t *testing.T, loader document.Loader) (*DocumentTools, *document.Store) {
	t.Helper()
	store, err := document.NewStore(filepath.Join(t.TempDir(), "uploads"), nil)
	require.NoError(t, err)
	return NewDocumentTools(store, loader, nil), store
}

func writeFile(t *testing.T, store *document.Store, name, content string) string {
	t.Helper()
	path := filepath.Join(store.Dir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadDocument(t *testing.T) {
	d, store := setup(t, stubLoader{texts: map[string]string{"a.pdf": "page one\n\npage two"}})
	ctx := context.Background()
	pdfPath := writeFile(t, store, "a.pdf", "%PDF")
	txtPath := writeFile(t, store, "notes.txt", "plain")

	text, err := d.LoadDocument(ctx, pdfPath)
	require.NoError(t, err)
	assert.Equal(t, "page one\n\npage two", text)

	_, err = d.LoadDocument(ctx, txtPath)
	assert.ErrorIs(t, err, document.ErrInvalidType)

	_, err = d.LoadDocument(ctx, filepath.Join(store.Dir(), "missing.pdf"))
	assert.ErrorIs(t, err, document.ErrNotFound)

	_, err = d.LoadDocument(ctx, "/etc/passwd")
	assert.ErrorIs(t, err, document.ErrForbiddenPath)
}

func TestLoadDocumentTextSoftFails(t *testing.T) {
	d, store := setup(t, stubLoader{})
	ctx := context.Background()
	txtPath := writeFile(t, store, "notes.txt", "plain")

	assert.Equal(t, "Error: "+txtPath+" is not a valid PDF file.", d.LoadDocumentText(ctx, txtPath))
	assert.Contains(t, d.LoadDocumentText(ctx, filepath.Join(store.Dir(), "gone.pdf")), "does not exist")
	assert.Contains(t, d.LoadDocumentText(ctx, "/etc/passwd"), "not allowed")

	path := writeFile(t, store, "bad.pdf", "x")
	broken := NewDocumentTools(store, stubLoader{err: errors.New("corrupt xref")}, nil)
	assert.Equal(t, "Error processing PDF "+path+": corrupt xref", broken.LoadDocumentText(ctx, path))
}

func TestAnalyzeDocuments(t *testing.T) {
	d, store := setup(t, stubLoader{texts: map[string]string{"a.pdf": "alpha"}})
	ctx := context.Background()

	assert.Equal(t, NothingToAnalyze, d.AnalyzeDocuments(ctx, nil))
	assert.Equal(t, NothingToAnalyze, d.AnalyzeDocuments(ctx, []string{}))

	missing := filepath.Join(store.Dir(), "missing.pdf")
	assert.Equal(t, "The document "+missing+" does not exist.", d.AnalyzeDocuments(ctx, []string{missing}))

	pdfPath := writeFile(t, store, "a.pdf", "%PDF")
	txtPath := writeFile(t, store, "notes.txt", "plain")

	out := d.AnalyzeDocuments(ctx, []string{txtPath, pdfPath, missing})
	blocks := []string{
		"DOCUMENT 'notes.txt': unsupported file type. Only PDFs can be analyzed.\n",
		"CONTENT OF DOCUMENT 'a.pdf':\nalpha\n",
		"The document " + missing + " does not exist.",
	}
	assert.Equal(t, strings.Join(blocks, "\n"), out)

	assert.Contains(t, d.AnalyzeDocuments(ctx, []string{"/etc/passwd"}), "cannot be accessed")
}

func TestRegisteredTools(t *testing.T) {
	d, store := setup(t, stubLoader{texts: map[string]string{"a.pdf": "alpha"}})
	ctx := context.Background()
	pdfPath := writeFile(t, store, "a.pdf", "%PDF")

	registry := NewRegistry()
	require.NoError(t, d.Register(registry))
	assert.Equal(t, []string{LoadDocumentName, AnalyzeDocumentsName, ListDocumentsName}, registry.Names())
	assert.Len(t, registry.BaseTools(), 3)

	args, _ := json.Marshal(map[string]string{"file_path": pdfPath})
	out, err := registry.invoke(ctx, LoadDocumentName, string(args))
	require.NoError(t, err)
	assert.Equal(t, "alpha", out)

	args, _ = json.Marshal(map[string][]string{"document_paths": {pdfPath}})
	out, err = registry.invoke(ctx, AnalyzeDocumentsName, string(args))
	require.NoError(t, err)
	assert.Equal(t, "CONTENT OF DOCUMENT 'a.pdf':\nalpha\n", out)

	out, err = registry.invoke(ctx, ListDocumentsName, "{}")
	require.NoError(t, err)
	var listed []string
	require.NoError(t, json.Unmarshal([]byte(out), &listed))
	assert.Equal(t, []string{pdfPath}, listed)

	out, err = registry.invoke(ctx, LoadDocumentName, "{not json")
	require.NoError(t, err)
	assert.Contains(t, out, "invalid arguments")
}
