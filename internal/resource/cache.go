// Package resource caches loaded images and themes by absolute path so a
// slide referencing the same file twice (or across reloads) doesn't pay to
// re-read and re-decode it. Cleared wholesale on HardReload.
package resource

import (
	"os"
	"path/filepath"
	"sync"
)

// Cache is a path-keyed store of arbitrary decoded resources. It is safe
// for concurrent use; the presenter's main thread is the only caller today,
// but the mutex costs nothing and keeps the type safe to share later.
type Cache struct {
	mu    sync.Mutex
	items map[string]any
}

// NewCache builds an empty cache.
func NewCache() *Cache {
	return &Cache{items: map[string]any{}}
}

// GetOrLoad returns the cached value for the absolute form of path,
// invoking load to populate the cache on a miss.
func (c *Cache) GetOrLoad(path string, load func(absPath string) (any, error)) (any, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	if v, ok := c.items[abs]; ok {
		c.mu.Unlock()
		return v, nil
	}
	c.mu.Unlock()

	v, err := load(abs)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.items[abs] = v
	c.mu.Unlock()
	return v, nil
}

// Clear drops every cached entry. Called on HardReload, matching the
// resource-cache invalidation spec.md §5 assigns to hard reloads.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = map[string]any{}
}

// ReadFile is a convenience loader for GetOrLoad that just slurps bytes —
// used for images where decoding is the ImagePrinter's job, not the
// cache's.
func ReadFile(absPath string) (any, error) {
	return os.ReadFile(absPath)
}
