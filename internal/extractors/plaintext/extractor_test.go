package plaintext

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/plagscan/internal/core/domain"
)

func TestExtract(t *testing.T) {
	path := filepath.Join(t.TempDir(), "essay.txt")
	require.NoError(t, os.WriteFile(path, []byte("\ufeffLine one\r\nLine two\r\n"), 0600))

	text, err := New().Extract(context.Background(), path)

	require.NoError(t, err)
	assert.Equal(t, "Line one\nLine two", text)
}

func TestExtract_MissingFile(t *testing.T) {
	_, err := New().Extract(context.Background(), filepath.Join(t.TempDir(), "nope.txt"))

	assert.ErrorIs(t, err, domain.ErrExtraction)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestClean_InvalidUTF8(t *testing.T) {
	assert.Equal(t, "a\ufffdb", Clean("a\xffb"))
}

func TestSupportedExtensions(t *testing.T) {
	assert.Contains(t, New().SupportedExtensions(), ".txt")
}
