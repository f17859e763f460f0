package documents

import (
	"fmt"
	"os"
	"path/filepath"
)

// PromptCache stores rendered corpus blobs on disk keyed by corpus digest,
// so restarting against an unchanged folder skips the re-render.
type PromptCache struct {
	dir string
}

// NewPromptCache creates a cache over the given directory. The directory is
// created lazily on the first Put.
func NewPromptCache(dir string) *PromptCache {
	return &PromptCache{dir: dir}
}

// Get returns the cached blob for digest, or false when the cache has none.
// A corrupt or unreadable entry counts as a miss.
func (c *PromptCache) Get(digest string) (string, bool) {
	data, err := os.ReadFile(c.entryPath(digest))
	if err != nil {
		return "", false
	}
	return string(data), true
}

// Put stores the blob under digest. The write is atomic: a temp file in the
// same directory renamed into place, so a concurrent Get never observes a
// half-written entry.
func (c *PromptCache) Put(digest, blob string) error {
	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}

	tmp, err := os.CreateTemp(c.dir, "prompt-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.WriteString(blob); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write cache entry: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Rename(tmpName, c.entryPath(digest)); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to store cache entry: %w", err)
	}
	return nil
}

func (c *PromptCache) entryPath(digest string) string {
	return filepath.Join(c.dir, digest+".txt")
}
