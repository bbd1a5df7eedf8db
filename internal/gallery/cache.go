// Package gallery holds the in-memory snapshot of enrolled embeddings the
// matcher scans per frame. The snapshot is eventually consistent with the
// encoding store: it is reloaded on explicit invalidation (enrollment
// writes), never per frame, trading a few seconds of staleness for
// throughput.
package gallery

import (
	"context"
	"fmt"
	"sync"
)

// Loader is the bulk-load side of the encoding store.
type Loader interface {
	LoadGallery(ctx context.Context) (map[string][][]float64, error)
}

// Cache caches the gallery snapshot between invalidations.
type Cache struct {
	loader Loader

	mu       sync.RWMutex
	snapshot map[string][][]float64
	loaded   bool
}

func NewCache(loader Loader) *Cache {
	return &Cache{loader: loader}
}

// Snapshot returns the cached gallery, loading it from the store on first
// use or after an invalidation. Concurrent readers share one snapshot.
func (c *Cache) Snapshot(ctx context.Context) (map[string][][]float64, error) {
	c.mu.RLock()
	if c.loaded {
		snapshot := c.snapshot
		c.mu.RUnlock()
		return snapshot, nil
	}
	c.mu.RUnlock()

	return c.Reload(ctx)
}

// Reload fetches a fresh snapshot from the store.
func (c *Cache) Reload(ctx context.Context) (map[string][][]float64, error) {
	snapshot, err := c.loader.LoadGallery(ctx)
	if err != nil {
		return nil, fmt.Errorf("load gallery: %w", err)
	}

	c.mu.Lock()
	c.snapshot = snapshot
	c.loaded = true
	c.mu.Unlock()

	return snapshot, nil
}

// Invalidate discards the cached snapshot. The next Snapshot call reloads.
// Called by the enrollment service after any encoding write.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	c.snapshot = nil
	c.loaded = false
	c.mu.Unlock()
}

// Dimension returns the established dimensionality of the cached gallery,
// or 0 when no embeddings are enrolled yet.
func (c *Cache) Dimension(ctx context.Context) (int, error) {
	snapshot, err := c.Snapshot(ctx)
	if err != nil {
		return 0, err
	}

	for _, embeddings := range snapshot {
		for _, emb := range embeddings {
			if len(emb) > 0 {
				return len(emb), nil
			}
		}
	}
	return 0, nil
}
