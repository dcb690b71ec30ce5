package cache

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileCache(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(filepath.Join(t.TempDir(), "cache"))
	require.NoError(t, err)
	defer c.Close()

	_, hit, err := c.Get(ctx, "graph:1")
	require.NoError(t, err)
	assert.False(t, hit, "empty cache should miss")

	require.NoError(t, c.Set(ctx, "graph:1", []byte(`{"nodes":[]}`), time.Hour))
	data, hit, err := c.Get(ctx, "graph:1")
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, `{"nodes":[]}`, string(data))

	require.NoError(t, c.Delete(ctx, "graph:1"))
	_, hit, _ = c.Get(ctx, "graph:1")
	assert.False(t, hit, "deleted entry should miss")

	assert.NoError(t, c.Delete(ctx, "graph:1"), "deleting a missing key is not an error")
}

func TestFileCacheExpiry(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, c.Set(ctx, "k", []byte("v"), time.Nanosecond))
	time.Sleep(5 * time.Millisecond)
	_, hit, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, hit, "expired entry should miss")
	_, statErr := os.Stat(c.path("k"))
	assert.True(t, os.IsNotExist(statErr), "expired entry should be removed")

	require.NoError(t, c.Set(ctx, "forever", []byte("v"), 0))
	_, hit, _ = c.Get(ctx, "forever")
	assert.True(t, hit, "zero ttl never expires")
}

func TestFileCacheCorruptEntry(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	require.NoError(t, err)

	path := c.path("k")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("not json"), 0o644))

	_, hit, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestFileCacheClear(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	require.NoError(t, err)

	for _, k := range []string{"a", "b", "c"} {
		require.NoError(t, c.Set(ctx, k, []byte(k), 0))
	}
	sessions := filepath.Join(c.Dir(), "sessions")
	require.NoError(t, os.MkdirAll(sessions, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(sessions, "s1.json"), []byte("{}"), 0o644))

	n, err := c.Clear()
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	_, hit, _ := c.Get(ctx, "a")
	assert.False(t, hit)
	assert.FileExists(t, filepath.Join(sessions, "s1.json"))
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	c, err := Open(ctx, Options{})
	require.NoError(t, err)
	assert.IsType(t, &NullCache{}, c)

	c, err = Open(ctx, Options{Backend: BackendFile, Dir: t.TempDir()})
	require.NoError(t, err)
	assert.IsType(t, &FileCache{}, c)

	_, err = Open(ctx, Options{Backend: BackendFile})
	assert.Error(t, err, "file backend needs a directory")

	_, err = Open(ctx, Options{Backend: "memcached"})
	assert.Error(t, err)
}
