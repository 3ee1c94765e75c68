package imageload

import (
	"context"
	"image"
	"sync"
)

// Cache memoizes decoded images by reference in front of another Loader.
// Failed loads are not remembered.
type Cache struct {
	next  Loader
	mu    sync.RWMutex
	items map[string]image.Image
}

// NewCache wraps next.
func NewCache(next Loader) *Cache {
	return &Cache{next: next, items: make(map[string]image.Image)}
}

// Load implements Loader.
func (c *Cache) Load(ctx context.Context, ref string) (image.Image, error) {
	// Fast path: read lock
	c.mu.RLock()
	if img, ok := c.items[ref]; ok {
		c.mu.RUnlock()
		return img, nil
	}
	c.mu.RUnlock()

	img, err := c.next.Load(ctx, ref)
	if err != nil {
		return nil, err
	}

	// Write lock with double-check
	c.mu.Lock()
	defer c.mu.Unlock()
	if existing, ok := c.items[ref]; ok {
		return existing, nil
	}
	c.items[ref] = img
	return img, nil
}

// Len returns the number of cached images.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}
