package engine

import (
	"path/filepath"
	"sync"

	"golang.org/x/sync/singleflight"
)

// Cache memoizes loaded stores by source path for the lifetime of the
// process. Entries are never invalidated. Failed loads are not cached.
type Cache struct {
	schema Schema
	load   func(string, Schema) (*ColumnStore, error)

	mu     sync.RWMutex
	stores map[string]*ColumnStore
	group  singleflight.Group
}

// NewCache returns a cache loading files with LoadColumnar.
func NewCache(schema Schema) *Cache {
	return &Cache{
		schema: schema,
		load:   LoadColumnar,
		stores: make(map[string]*ColumnStore),
	}
}

// Load returns the store for path, reading the file only on first use.
// Concurrent first calls for the same path share one read.
func (c *Cache) Load(path string) (*ColumnStore, error) {
	key := cacheKey(path)

	c.mu.RLock()
	cs, ok := c.stores[key]
	c.mu.RUnlock()
	if ok {
		return cs, nil
	}

	v, err, _ := c.group.Do(key, func() (interface{}, error) {
		c.mu.RLock()
		cs, ok := c.stores[key]
		c.mu.RUnlock()
		if ok {
			return cs, nil
		}

		cs, err := c.load(path, c.schema)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.stores[key] = cs
		c.mu.Unlock()
		return cs, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*ColumnStore), nil
}

// Len is the number of cached stores.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.stores)
}

func cacheKey(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return filepath.Clean(path)
}
