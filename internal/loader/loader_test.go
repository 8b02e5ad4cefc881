package loader

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ragsearch/internal/domain"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestDirectoryLoader_LoadAll(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "b.txt"), "Bravo.")
	writeFile(t, filepath.Join(dir, "a.md"), "# Alpha")
	writeFile(t, filepath.Join(dir, "nested", "c.txt"), "Charlie.")
	writeFile(t, filepath.Join(dir, "empty.txt"), "   ")
	writeFile(t, filepath.Join(dir, "image.png"), "binary")

	docs, err := NewDirectoryLoader().LoadAll(context.Background(), dir)
	require.NoError(t, err)
	require.Len(t, docs, 3)

	assert.Equal(t, filepath.Join(dir, "a.md"), docs[0].Path)
	assert.Equal(t, filepath.Join(dir, "b.txt"), docs[1].Path)
	assert.Equal(t, filepath.Join(dir, "nested", "c.txt"), docs[2].Path)
	assert.Equal(t, "Charlie.", docs[2].Content)
	assert.Len(t, docs[0].ID, 16)
	assert.NotEqual(t, docs[0].ID, docs[1].ID)
}

func TestDirectoryLoader_CustomPatternsDeduplicate(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "notes.txt"), "Only one.")

	docs, err := NewDirectoryLoader("*.txt", "**/*.txt").LoadAll(context.Background(), dir)
	require.NoError(t, err)
	assert.Len(t, docs, 1)
}

func TestDirectoryLoader_MissingDirectory(t *testing.T) {
	_, err := NewDirectoryLoader().LoadAll(context.Background(), filepath.Join(t.TempDir(), "data"))
	assert.ErrorIs(t, err, domain.ErrIndexUnavailable)
}

func TestDirectoryLoader_NoDocuments(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "skip.csv"), "a,b")

	_, err := NewDirectoryLoader().LoadAll(context.Background(), dir)
	assert.ErrorIs(t, err, domain.ErrIndexUnavailable)
}

func TestDirectoryLoader_BadPattern(t *testing.T) {
	_, err := NewDirectoryLoader("[").LoadAll(context.Background(), t.TempDir())
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
