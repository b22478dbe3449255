package fsutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindFilesByExtension(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "nested"), 0o755))
	for _, name := range []string{"a.hcl", "b.txt", filepath.Join("nested", "c.hcl")} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0o644))
	}

	t.Run("recursive match", func(t *testing.T) {
		files, err := FindFilesByExtension(dir, ".hcl")
		require.NoError(t, err)
		require.Len(t, files, 2)
		assert.Contains(t, files, filepath.Join(dir, "a.hcl"))
		assert.Contains(t, files, filepath.Join(dir, "nested", "c.hcl"))
	})

	t.Run("no matches", func(t *testing.T) {
		files, err := FindFilesByExtension(dir, ".json")
		require.NoError(t, err)
		assert.Empty(t, files)
	})

	t.Run("empty extension", func(t *testing.T) {
		_, err := FindFilesByExtension(dir, "")
		assert.Error(t, err)
	})

	t.Run("missing root", func(t *testing.T) {
		_, err := FindFilesByExtension(filepath.Join(dir, "nope"), ".hcl")
		assert.Error(t, err)
	})
}
