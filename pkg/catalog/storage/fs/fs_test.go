package fs

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tendant/simple-catalog/pkg/catalog"
)

func TestFSBackend_BasicOps(t *testing.T) {
	tmp := t.TempDir()
	backend, err := New(Config{BaseDir: tmp})
	require.NoError(t, err)

	ctx := context.Background()
	key := "nested/dir/photo.png"
	data := []byte("hello fs")

	require.NoError(t, backend.Upload(ctx, key, bytes.NewReader(data)))

	meta, err := backend.GetObjectMeta(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, int64(len(data)), meta.Size)
	assert.Equal(t, key, meta.Key)

	rc, err := backend.Download(ctx, key)
	require.NoError(t, err)
	got, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.NoError(t, rc.Close())
	assert.Equal(t, data, got)

	require.NoError(t, backend.Delete(ctx, key))

	_, err = os.Stat(filepath.Join(tmp, "nested"))
	assert.True(t, os.IsNotExist(err), "empty directories should be removed")

	_, err = backend.Download(ctx, key)
	assert.ErrorIs(t, err, catalog.ErrNotFound)
	assert.ErrorIs(t, backend.Delete(ctx, key), catalog.ErrNotFound)
	_, err = backend.GetObjectMeta(ctx, key)
	assert.ErrorIs(t, err, catalog.ErrNotFound)
}

func TestFSBackend_UploadReplaces(t *testing.T) {
	backend, err := New(Config{BaseDir: t.TempDir()})
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, backend.Upload(ctx, "a.png", bytes.NewReader([]byte("first"))))
	require.NoError(t, backend.Upload(ctx, "a.png", bytes.NewReader([]byte("second"))))

	rc, err := backend.Download(ctx, "a.png")
	require.NoError(t, err)
	defer rc.Close()
	got, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "second", string(got))
}

func TestFSBackend_RejectsEscapingKeys(t *testing.T) {
	root := t.TempDir()
	base := filepath.Join(root, "uploads")
	backend, err := New(Config{BaseDir: base})
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(root, "secret.txt"), []byte("secret"), 0o644))

	ctx := context.Background()
	for _, key := range []string{"../secret.txt", "..", "", "."} {
		t.Run(key, func(t *testing.T) {
			_, err := backend.Download(ctx, key)
			assert.ErrorIs(t, err, catalog.ErrNotFound)
			assert.ErrorIs(t, backend.Upload(ctx, key, bytes.NewReader(nil)), catalog.ErrNotFound)
		})
	}
}

func TestNew_RequiresBaseDir(t *testing.T) {
	_, err := New(Config{})
	assert.Error(t, err)
}
