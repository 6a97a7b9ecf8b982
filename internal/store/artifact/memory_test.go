package artifact

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreRoundTrip(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, "p1", "src/App.tsx", []byte("app")))
	require.NoError(t, s.Put(ctx, "p1", "/package.json", []byte("{}")))
	require.NoError(t, s.Put(ctx, "p2", "src/App.tsx", []byte("other")))

	got, err := s.Get(ctx, "p1", "src/App.tsx")
	require.NoError(t, err)
	assert.Equal(t, "app", string(got))

	// Leading slash normalizes to the same key.
	got, err = s.Get(ctx, "p1", "package.json")
	require.NoError(t, err)
	assert.Equal(t, "{}", string(got))

	paths, err := s.List(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, []string{"package.json", "src/App.tsx"}, paths)

	_, err = s.Get(ctx, "p1", "missing.ts")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = s.Get(ctx, "p9", "src/App.tsx")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.Delete(ctx, "p1", "package.json"))
	_, err = s.Get(ctx, "p1", "package.json")
	assert.ErrorIs(t, err, ErrNotFound)
	paths, err = s.List(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, []string{"src/App.tsx"}, paths)
}

func TestMemoryStoreCopiesContent(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	buf := []byte("original")
	require.NoError(t, s.Put(ctx, "p1", "a.txt", buf))
	buf[0] = 'X'

	got, err := s.Get(ctx, "p1", "a.txt")
	require.NoError(t, err)
	assert.Equal(t, "original", string(got))
}

func TestMemoryStoreValidatesArgs(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	assert.Error(t, s.Put(ctx, "", "a.txt", nil))
	assert.Error(t, s.Put(ctx, "p1", "", nil))
	_, err := s.List(ctx, " ")
	assert.Error(t, err)
}

func TestContentTypeFor(t *testing.T) {
	assert.Equal(t, "application/typescript", contentTypeFor("src/App.tsx"))
	assert.Equal(t, "text/html; charset=utf-8", contentTypeFor("index.HTML"))
	assert.Equal(t, "application/json", contentTypeFor("package.json"))
	assert.Equal(t, "application/octet-stream", contentTypeFor("binary.wasm"))
}
