package document

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ledongthuc/pdf"
	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"
)

// Loader extracts the text of a document.
type Loader interface {
	ExtractText(ctx context.Context, path string) (string, error)
}

// SupportedExtension reports whether path names a document type the loader can read.
func SupportedExtension(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".pdf")
}

// PDFLoader reads PDFs page by page.
type PDFLoader struct{}

// ExtractText returns the plain text of every readable page, pages separated
// by a blank line.
func (PDFLoader) ExtractText(ctx context.Context, path string) (string, error) {
	f, rdr, err := pdf.Open(path)
	if f != nil {
		defer f.Close()
	}
	if err != nil {
		return "", fmt.Errorf("failed to open pdf %s: %w", path, err)
	}

	n := rdr.NumPage()
	pages := make([]string, 0, n)
	for i := 1; i <= n; i++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		page := rdr.Page(i)
		if page.V.IsNull() {
			continue
		}
		txt, err := page.GetPlainText(nil)
		if err != nil {
			// image-only or damaged page
			continue
		}
		pages = append(pages, txt)
	}

	return strings.Join(pages, "\n\n"), nil
}

type cachedText struct {
	size    int64
	modTime time.Time
	text    string
}

// CachedLoader memoizes extracted text per file, invalidated when the file's
// size or modification time changes or when Forget is called.
type CachedLoader struct {
	next  Loader
	cache *cache.Cache
	log   *zap.Logger
}

// NewCachedLoader wraps next with a TTL cache.
func NewCachedLoader(next Loader, ttl time.Duration, log *zap.Logger) *CachedLoader {
	if log == nil {
		log = zap.NewNop()
	}
	return &CachedLoader{
		next:  next,
		cache: cache.New(ttl, 2*ttl),
		log:   log,
	}
}

// ExtractText implements Loader.
func (l *CachedLoader) ExtractText(ctx context.Context, path string) (string, error) {
	key := cacheKey(path)
	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("failed to stat %s: %w", path, err)
	}

	if x, found := l.cache.Get(key); found {
		entry := x.(cachedText)
		if entry.size == info.Size() && entry.modTime.Equal(info.ModTime()) {
			return entry.text, nil
		}
	}

	text, err := l.next.ExtractText(ctx, path)
	if err != nil {
		return "", err
	}

	l.cache.Set(key, cachedText{size: info.Size(), modTime: info.ModTime(), text: text}, cache.DefaultExpiration)
	l.log.Debug("cached extracted text", zap.String("path", path), zap.Int("chars", len(text)))
	return text, nil
}

// Forget drops the cached text of path.
func (l *CachedLoader) Forget(path string) {
	l.cache.Delete(cacheKey(path))
}

func cacheKey(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return filepath.Clean(path)
}
