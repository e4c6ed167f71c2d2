package local

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/maeumssi/maeumssi/internal/modules/filestorage/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_RoundTrip(t *testing.T) {
	root := t.TempDir()
	st, err := New(root, "http://localhost:8080/uploads/")
	require.NoError(t, err)
	ctx := context.Background()

	got, err := st.Put(ctx, "cards/bloom.png", bytes.NewBufferString("png"), "image/png")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080/uploads/cards/bloom.png", got)

	data, err := os.ReadFile(filepath.Join(root, "cards", "bloom.png"))
	require.NoError(t, err)
	assert.Equal(t, "png", string(data))

	entries, err := os.ReadDir(filepath.Join(root, "cards"))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary file left behind")

	signed, err := st.SignedURL(ctx, "cards/bloom.png", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, got, signed)
	download, err := st.DownloadURL(ctx, "cards/bloom.png", "bloom.png", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, got, download)

	key, err := st.KeyFromURL(got)
	require.NoError(t, err)
	assert.Equal(t, "cards/bloom.png", key)

	require.NoError(t, st.Remove(ctx, "cards/bloom.png"))
	_, err = os.Stat(filepath.Join(root, "cards", "bloom.png"))
	assert.True(t, os.IsNotExist(err))
	require.NoError(t, st.Remove(ctx, "cards/bloom.png"))
}

func TestStore_PutOverwrites(t *testing.T) {
	st, err := New(t.TempDir(), "http://localhost/uploads")
	require.NoError(t, err)

	_, err = st.Put(context.Background(), "a.png", bytes.NewBufferString("one"), "image/png")
	require.NoError(t, err)
	_, err = st.Put(context.Background(), "a.png", bytes.NewBufferString("two"), "image/png")
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(st.root, "a.png"))
	require.NoError(t, err)
	assert.Equal(t, "two", string(data))
}

func TestStore_KeyFromURL_Mismatch(t *testing.T) {
	st, err := New(t.TempDir(), "http://localhost/uploads")
	require.NoError(t, err)

	for _, u := range []string{"http://elsewhere/uploads/a.png", "http://localhost/static/a.png", "::"} {
		_, err := st.KeyFromURL(u)
		assert.ErrorIs(t, err, domain.ErrURLMismatch, u)
	}
	_, err = st.KeyFromURL("http://localhost/uploads/x/../../etc/passwd")
	assert.ErrorIs(t, err, domain.ErrInvalidKey)
}

func TestStore_RejectsEscapingKeys(t *testing.T) {
	st, err := New(t.TempDir(), "http://localhost/uploads")
	require.NoError(t, err)

	_, err = st.Put(context.Background(), "../outside.png", bytes.NewBufferString("x"), "image/png")
	require.ErrorIs(t, err, domain.ErrInvalidKey)
	require.ErrorIs(t, st.Remove(context.Background(), "../outside.png"), domain.ErrInvalidKey)
}
