package documents

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPromptCacheMissOnEmptyDir(t *testing.T) {
	cache := NewPromptCache(filepath.Join(t.TempDir(), "cache"))

	_, ok := cache.Get("deadbeefdeadbeef")
	assert.False(t, ok)
}

func TestPromptCachePutGet(t *testing.T) {
	cache := NewPromptCache(filepath.Join(t.TempDir(), "cache"))

	require.NoError(t, cache.Put("deadbeefdeadbeef", "rendered prompt"))

	got, ok := cache.Get("deadbeefdeadbeef")
	require.True(t, ok)
	assert.Equal(t, "rendered prompt", got)

	_, ok = cache.Get("0000000000000000")
	assert.False(t, ok)
}

func TestPromptCacheOverwrite(t *testing.T) {
	cache := NewPromptCache(t.TempDir())

	require.NoError(t, cache.Put("abc", "old"))
	require.NoError(t, cache.Put("abc", "new"))

	got, ok := cache.Get("abc")
	require.True(t, ok)
	assert.Equal(t, "new", got)
}

func TestPromptCacheLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	cache := NewPromptCache(dir)

	require.NoError(t, cache.Put("abc", "blob"))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "abc.txt", entries[0].Name())
}
