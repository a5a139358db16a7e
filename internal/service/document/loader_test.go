package document

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingLoader struct {
	calls int
	text  string
	err   error
}

func (c *countingLoader) ExtractText(_ context.Context, _ string) (string, error) {
	c.calls++
	return c.text, c.err
}

func TestSupportedExtension(t *testing.T) {
	assert.True(t, SupportedExtension("a/b/report.pdf"))
	assert.True(t, SupportedExtension("REPORT.PDF"))
	assert.False(t, SupportedExtension("notes.txt"))
	assert.False(t, SupportedExtension("pdf"))
}

func TestPDFLoaderRejectsNonPDF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fake.pdf")
	require.NoError(t, os.WriteFile(path, []byte("just some text"), 0o644))

	_, err := PDFLoader{}.ExtractText(context.Background(), path)
	assert.Error(t, err)
}

func TestPDFLoaderJoinsPages(t *testing.T) {
	text, err := PDFLoader{}.ExtractText(context.Background(), filepath.Join("testdata", "two_pages.pdf"))
	require.NoError(t, err)
	assert.Equal(t, "First page\n\nSecond page", text)
}

func TestPDFLoaderHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := PDFLoader{}.ExtractText(ctx, filepath.Join("testdata", "two_pages.pdf"))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCachedLoaderReusesText(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.pdf")
	require.NoError(t, os.WriteFile(path, []byte("v1"), 0o644))

	inner := &countingLoader{text: "hello"}
	loader := NewCachedLoader(inner, time.Minute, nil)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		got, err := loader.ExtractText(ctx, path)
		require.NoError(t, err)
		assert.Equal(t, "hello", got)
	}
	assert.Equal(t, 1, inner.calls)

	loader.Forget(path)
	_, err := loader.ExtractText(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, 2, inner.calls)
}

func TestCachedLoaderInvalidatesOnChange(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.pdf")
	require.NoError(t, os.WriteFile(path, []byte("v1"), 0o644))

	inner := &countingLoader{text: "hello"}
	loader := NewCachedLoader(inner, time.Minute, nil)
	ctx := context.Background()

	_, err := loader.ExtractText(ctx, path)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(path, []byte("version two"), 0o644))
	_, err = loader.ExtractText(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, 2, inner.calls)
}

func TestCachedLoaderDoesNotCacheErrors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.pdf")
	require.NoError(t, os.WriteFile(path, []byte("v1"), 0o644))

	inner := &countingLoader{err: errors.New("broken")}
	loader := NewCachedLoader(inner, time.Minute, nil)

	_, err := loader.ExtractText(context.Background(), path)
	assert.Error(t, err)
	_, err = loader.ExtractText(context.Background(), path)
	assert.Error(t, err)
	assert.Equal(t, 2, inner.calls)
}
