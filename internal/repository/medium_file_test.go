package repository

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileMedium_GetMissingKey(t *testing.T) {
	m := NewFileMedium(filepath.Join(t.TempDir(), "store"))

	v, err := m.Get(context.Background(), testKey)

	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestFileMedium_PutThenGet(t *testing.T) {
	dir := t.TempDir()
	m := NewFileMedium(dir)
	ctx := context.Background()

	require.NoError(t, m.Put(ctx, testKey, []byte(`[1]`)))
	require.NoError(t, m.Put(ctx, testKey, []byte(`[1,2]`)))

	v, err := m.Get(ctx, testKey)
	require.NoError(t, err)
	assert.Equal(t, `[1,2]`, string(v))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1, "temp files are cleaned up")
	assert.Equal(t, testKey+".json", entries[0].Name())
}

func TestFileMedium_KeyCannotEscapeDir(t *testing.T) {
	dir := t.TempDir()
	m := NewFileMedium(dir)

	p := m.path("../../etc/passwd")

	assert.Equal(t, dir, filepath.Dir(p))
}

func TestFileMedium_BacksKeyedStore(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	require.NoError(t, NewKeyedStore(NewFileMedium(dir), testKey).Append(ctx, sampleOrder("a", 1)))

	// a second process reading the same directory sees the order
	orders, err := NewKeyedStore(NewFileMedium(dir), testKey).LoadAll(ctx)

	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, "a", orders[0].ID)
}
