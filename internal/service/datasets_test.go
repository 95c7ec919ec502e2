package service

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(path, content string) error {
	return os.WriteFile(path, []byte(content), 0644)
}

func TestDatasetService_list(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, writeFile(filepath.Join(dir, "a.geojson"), "{}"))
	require.NoError(t, writeFile(filepath.Join(dir, "b.json"), "{}"))
	require.NoError(t, writeFile(filepath.Join(dir, "notes.txt"), "ignored"))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.geojson"), 0755))

	s := NewDatasetService(dir, "a.geojson")
	files, err := s.List()
	require.NoError(t, err)
	require.Len(t, files, 2)

	byName := map[string]DatasetFile{}
	for _, f := range files {
		byName[f.Name] = f
	}
	assert.True(t, byName["a.geojson"].Active)
	assert.False(t, byName["b.json"].Active)
	assert.NotEmpty(t, byName["a.geojson"].Size)
	assert.NotEmpty(t, byName["a.geojson"].Modified)
}

func TestDatasetService_listMissingDir(t *testing.T) {
	s := NewDatasetService(filepath.Join(t.TempDir(), "nope"), "")
	files, err := s.List()
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestDatasetService_pathRejectsTraversal(t *testing.T) {
	s := NewDatasetService(t.TempDir(), "a.geojson")

	for _, name := range []string{"", "../etc/passwd", "a/b.geojson", `a\b.geojson`, "..", "a..geojson/../x"} {
		if _, err := s.Path(name); err == nil {
			t.Fatalf("expected %q to be rejected", name)
		}
	}

	p, err := s.Path("a.geojson")
	require.NoError(t, err)
	assert.Equal(t, "a.geojson", filepath.Base(p))
}
