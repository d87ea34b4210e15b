package fsutil_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/htmlmd/pkg/fsutil"
)

func TestReadFile(t *testing.T) {
	t.Parallel()

	t.Run("reads content and metadata", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "index.html")
		content := []byte("<p>hello</p>")
		require.NoError(t, os.WriteFile(path, content, 0o600))

		got, info, err := fsutil.ReadFile(context.Background(), path)
		require.NoError(t, err)
		assert.Equal(t, content, got)
		assert.Equal(t, path, info.Path)
		assert.Equal(t, int64(len(content)), info.Size)
		assert.Equal(t, os.FileMode(0o600), info.Mode.Perm())
		assert.False(t, info.ModTime.IsZero())
	})

	t.Run("reports missing file", func(t *testing.T) {
		t.Parallel()

		_, _, err := fsutil.ReadFile(context.Background(), filepath.Join(t.TempDir(), "missing.html"))
		require.ErrorIs(t, err, fsutil.ErrNotFound)
		require.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("rejects directory", func(t *testing.T) {
		t.Parallel()

		_, _, err := fsutil.ReadFile(context.Background(), t.TempDir())
		require.ErrorIs(t, err, fsutil.ErrIsDirectory)
	})

	t.Run("respects context cancellation", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, _, err := fsutil.ReadFile(ctx, filepath.Join(t.TempDir(), "index.html"))
		require.ErrorIs(t, err, context.Canceled)
	})
}

func TestCheckModified(t *testing.T) {
	t.Parallel()

	read := func(t *testing.T, content string) (string, *fsutil.FileInfo) {
		t.Helper()

		path := filepath.Join(t.TempDir(), "index.html")
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
		_, info, err := fsutil.ReadFile(context.Background(), path)
		require.NoError(t, err)
		return path, info
	}

	t.Run("unmodified file", func(t *testing.T) {
		t.Parallel()

		_, info := read(t, "<p>a</p>")
		modified, err := fsutil.CheckModified(context.Background(), info)
		require.NoError(t, err)
		assert.False(t, modified)
	})

	t.Run("content changed with same size and time", func(t *testing.T) {
		t.Parallel()

		path, info := read(t, "<p>a</p>")
		require.NoError(t, os.WriteFile(path, []byte("<p>b</p>"), 0o600))
		require.NoError(t, os.Chtimes(path, info.ModTime, info.ModTime))

		modified, err := fsutil.CheckModified(context.Background(), info)
		require.NoError(t, err)
		assert.True(t, modified)
	})

	t.Run("mod time changed", func(t *testing.T) {
		t.Parallel()

		path, info := read(t, "<p>a</p>")
		later := info.ModTime.Add(time.Hour)
		require.NoError(t, os.Chtimes(path, later, later))

		modified, err := fsutil.CheckModified(context.Background(), info)
		require.NoError(t, err)
		assert.True(t, modified)
	})

	t.Run("deleted file", func(t *testing.T) {
		t.Parallel()

		path, info := read(t, "<p>a</p>")
		require.NoError(t, os.Remove(path))

		modified, err := fsutil.CheckModified(context.Background(), info)
		require.NoError(t, err)
		assert.True(t, modified)
	})

	t.Run("nil info", func(t *testing.T) {
		t.Parallel()

		_, err := fsutil.CheckModified(context.Background(), nil)
		require.ErrorIs(t, err, fsutil.ErrNilFileInfo)
	})

	t.Run("respects context cancellation", func(t *testing.T) {
		t.Parallel()

		_, info := read(t, "<p>a</p>")
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := fsutil.CheckModified(ctx, info)
		require.ErrorIs(t, err, context.Canceled)
	})
}
