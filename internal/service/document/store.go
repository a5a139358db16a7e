package document

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/zhouzirui/pdf-agent/backend/internal/model/document"
)

var (
	ErrNotFound      = errors.New("file does not exist")
	ErrForbiddenPath = errors.New("access to this path is not allowed")
	ErrNotAFile      = errors.New("path is not a file")
	ErrDeleteFailed  = errors.New("file could not be deleted")
	ErrInvalidType   = errors.New("unsupported document type")
	ErrUploadIO      = errors.New("failed to store upload")
)

const timestampLayout = "20060102_150405"

// Evicter is notified when a stored file disappears.
type Evicter interface {
	Forget(path string)
}

// Store keeps uploaded files in a single flat directory and refuses to touch
// anything outside of it.
type Store struct {
	dir     string
	absDir  string
	realDir string
	now     func() time.Time
	evicter Evicter
	log     *zap.Logger
}

// Option customises a Store.
type Option func(*Store)

// WithClock overrides the time source used to prefix stored names.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithEvicter registers a cache to invalidate on delete.
func WithEvicter(e Evicter) Option {
	return func(s *Store) { s.evicter = e }
}

// NewStore creates dir if needed and returns a store rooted at it.
func NewStore(dir string, log *zap.Logger, opts ...Option) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory %s: %w", dir, err)
	}

	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve upload directory %s: %w", dir, err)
	}
	realDir := absDir
	if resolved, err := filepath.EvalSymlinks(absDir); err == nil {
		realDir = resolved
	}

	if log == nil {
		log = zap.NewNop()
	}

	s := &Store{
		dir:     dir,
		absDir:  absDir,
		realDir: realDir,
		now:     time.Now,
		log:     log,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Dir returns the upload directory as configured.
func (s *Store) Dir() string {
	return s.dir
}

// Save writes r under a timestamped, sanitized version of filename and
// returns the stored path. A name clash gets a random suffix instead of
// overwriting the existing file.
func (s *Store) Save(_ context.Context, filename string, r io.Reader) (string, error) {
	base := s.now().Format(timestampLayout) + "_" + SanitizeFilename(filename)

	path := filepath.Join(s.dir, base)
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if errors.Is(err, os.ErrExist) {
		path = filepath.Join(s.dir, withSuffix(base, uuid.NewString()[:8]))
		s.log.Warn("upload name collision, adding suffix", zap.String("path", path))
		f, err = os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	}
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUploadIO, err)
	}

	if _, err := io.Copy(f, r); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return "", fmt.Errorf("%w: %v", ErrUploadIO, err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(path)
		return "", fmt.Errorf("%w: %v", ErrUploadIO, err)
	}

	s.log.Info("stored upload", zap.String("filename", filename), zap.String("path", path))
	return path, nil
}

// List returns every regular file directly inside the upload directory.
func (s *Store) List() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("failed to list upload directory: %w", err)
	}

	paths := make([]string, 0, len(entries))
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		paths = append(paths, filepath.Join(s.dir, entry.Name()))
	}
	sort.Strings(paths)
	return paths, nil
}

// Documents is List with file metadata attached.
func (s *Store) Documents() ([]document.Document, error) {
	paths, err := s.List()
	if err != nil {
		return nil, err
	}

	docs := make([]document.Document, 0, len(paths))
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			// removed between ReadDir and Stat
			continue
		}
		docs = append(docs, document.Document{
			Path:       path,
			Name:       info.Name(),
			Size:       info.Size(),
			UploadedAt: info.ModTime().UTC(),
		})
	}
	return docs, nil
}

// Exists reports whether path exists.
func (s *Store) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// Resolve returns the absolute form of path, or ErrForbiddenPath when it
// lies outside the upload directory. Outside paths are rejected before any
// filesystem access.
func (s *Store) Resolve(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrForbiddenPath, err)
	}
	if !within(s.absDir, abs) && !within(s.realDir, abs) {
		return "", ErrForbiddenPath
	}

	// symlinks inside the directory may still point elsewhere
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		if !within(s.realDir, resolved) {
			return "", ErrForbiddenPath
		}
		abs = resolved
	}
	return abs, nil
}

// Delete removes a stored file.
func (s *Store) Delete(_ context.Context, path string) error {
	abs, err := s.Resolve(path)
	if err != nil {
		return err
	}

	info, err := os.Stat(abs)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return ErrNotFound
		}
		return fmt.Errorf("%w: %v", ErrDeleteFailed, err)
	}
	if info.IsDir() {
		return ErrNotAFile
	}

	if err := os.Remove(abs); err != nil {
		return fmt.Errorf("%w: %v", ErrDeleteFailed, err)
	}
	if s.Exists(abs) {
		return ErrDeleteFailed
	}

	if s.evicter != nil {
		s.evicter.Forget(path)
		s.evicter.Forget(abs)
	}
	s.log.Info("deleted upload", zap.String("path", abs))
	return nil
}

// SanitizeFilename replaces spaces and drops path separators and control characters.
func SanitizeFilename(filename string) string {
	filename = filepath.Base(strings.ReplaceAll(filename, "\\", "/"))
	filename = strings.ReplaceAll(filename, " ", "_")

	var builder strings.Builder
	for _, r := range filename {
		if r >= 32 && r != 127 {
			builder.WriteRune(r)
		}
	}

	name := builder.String()
	if name == "" || name == "." || name == ".." || name == "/" {
		return "upload"
	}
	return name
}

func withSuffix(name, suffix string) string {
	ext := filepath.Ext(name)
	return strings.TrimSuffix(name, ext) + "_" + suffix + ext
}

func within(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}
