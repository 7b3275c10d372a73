package memory

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tendant/simple-catalog/pkg/catalog"
)

func TestBackend_RoundTrip(t *testing.T) {
	ctx := context.Background()
	b := New()

	require.NoError(t, b.Upload(ctx, "k.png", bytes.NewReader([]byte("abc"))))

	meta, err := b.GetObjectMeta(ctx, "k.png")
	require.NoError(t, err)
	assert.Equal(t, int64(3), meta.Size)
	assert.False(t, meta.UpdatedAt.IsZero())

	rc, err := b.Download(ctx, "k.png")
	require.NoError(t, err)
	got, _ := io.ReadAll(rc)
	assert.Equal(t, "abc", string(got))

	require.NoError(t, b.Delete(ctx, "k.png"))
	assert.ErrorIs(t, b.Delete(ctx, "k.png"), catalog.ErrNotFound)
}

func TestBackend_MissingObject(t *testing.T) {
	ctx := context.Background()
	b := New()

	_, err := b.Download(ctx, "nope")
	assert.ErrorIs(t, err, catalog.ErrNotFound)
	_, err = b.GetObjectMeta(ctx, "nope")
	assert.ErrorIs(t, err, catalog.ErrNotFound)
}

func TestBackend_ImplementsBlobStore(t *testing.T) {
	var _ catalog.BlobStore = New()
}
