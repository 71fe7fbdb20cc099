package file_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/socialkit/pkg/file"
)

func writeFile(t *testing.T, base, rel string) string {
	t.Helper()
	abs := filepath.Join(base, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(abs), 0o755))
	require.NoError(t, os.WriteFile(abs, []byte("data"), 0o644))
	return abs
}

func TestNewLocalStorage(t *testing.T) {
	t.Parallel()
	_, err := file.NewLocalStorage("")
	assert.ErrorIs(t, err, file.ErrInvalidConfig)

	dir := filepath.Join(t.TempDir(), "nested", "uploads")
	_, err = file.NewLocalStorage(dir)
	require.NoError(t, err)
	assert.DirExists(t, dir)
}

func TestLocalStorage_Delete(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("removes file", func(t *testing.T) {
		t.Parallel()
		base := t.TempDir()
		abs := writeFile(t, base, "img/a.png")
		storage, err := file.NewLocalStorage(base)
		require.NoError(t, err)

		assert.True(t, storage.Exists(ctx, "img/a.png"))
		require.NoError(t, storage.Delete(ctx, "/img/a.png"))
		assert.NoFileExists(t, abs)
		assert.False(t, storage.Exists(ctx, "img/a.png"))
	})

	t.Run("missing file", func(t *testing.T) {
		t.Parallel()
		storage, err := file.NewLocalStorage(t.TempDir())
		require.NoError(t, err)
		assert.ErrorIs(t, storage.Delete(ctx, "nope.png"), file.ErrFileNotFound)
	})

	t.Run("refuses directories", func(t *testing.T) {
		t.Parallel()
		base := t.TempDir()
		writeFile(t, base, "dir/a.txt")
		storage, err := file.NewLocalStorage(base)
		require.NoError(t, err)
		assert.ErrorIs(t, storage.Delete(ctx, "dir"), file.ErrIsDirectory)
	})

	t.Run("refuses paths outside base", func(t *testing.T) {
		t.Parallel()
		root := t.TempDir()
		outside := writeFile(t, root, "outside.txt")
		storage, err := file.NewLocalStorage(filepath.Join(root, "base"))
		require.NoError(t, err)

		assert.ErrorIs(t, storage.Delete(ctx, "../outside.txt"), file.ErrInvalidPath)
		assert.FileExists(t, outside)
		assert.False(t, storage.Exists(ctx, "../outside.txt"))
	})

	t.Run("filesystem root as base", func(t *testing.T) {
		t.Parallel()
		target := writeFile(t, t.TempDir(), "uploads/a.png")
		storage, err := file.NewLocalStorage(string(filepath.Separator))
		require.NoError(t, err)

		assert.True(t, storage.Exists(ctx, target))
		require.NoError(t, storage.Delete(ctx, target))
		assert.NoFileExists(t, target)
		assert.ErrorIs(t, storage.Delete(ctx, "/"), file.ErrInvalidPath)
	})

	t.Run("cancelled context", func(t *testing.T) {
		t.Parallel()
		base := t.TempDir()
		writeFile(t, base, "a.txt")
		storage, err := file.NewLocalStorage(base)
		require.NoError(t, err)

		cctx, cancel := context.WithCancel(ctx)
		cancel()
		assert.ErrorIs(t, storage.Delete(cctx, "a.txt"), context.Canceled)
	})
}

func TestNewStorage(t *testing.T) {
	t.Parallel()
	s, err := file.NewStorage(context.Background(), file.Config{Driver: file.DriverLocal, LocalDir: t.TempDir()})
	require.NoError(t, err)
	assert.IsType(t, &file.LocalStorage{}, s)

	_, err = file.NewStorage(context.Background(), file.Config{Driver: "ftp"})
	assert.ErrorIs(t, err, file.ErrInvalidConfig)
}
