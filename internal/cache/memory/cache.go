package memory

import (
	"strconv"
	"sync"

	"github.com/hollowpoint-games/accountsync/internal/cache"
)

// Cache is an in-memory implementation of the local cache interface.
// Used in tests and for ephemeral installs; Save is a no-op.
type Cache struct {
	mu     sync.RWMutex
	values map[string]string

	// SaveCount tracks Save calls for tests
	SaveCount int
}

// New creates a new in-memory cache instance
func New() *Cache {
	return &Cache{
		values: make(map[string]string),
	}
}

// Ensure Cache implements the interface
var _ cache.Cache = (*Cache)(nil)

func (c *Cache) GetString(key, def string) string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.values[key]
	if !ok {
		return def
	}
	return v
}

func (c *Cache) GetInt(key string, def int) int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.values[key]
	if !ok {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func (c *Cache) GetBool(key string, def bool) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.values[key]
	if !ok {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func (c *Cache) SetString(key, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.values[key] = value
}

func (c *Cache) SetInt(key string, value int) {
	c.SetString(key, strconv.Itoa(value))
}

func (c *Cache) SetBool(key string, value bool) {
	c.SetString(key, strconv.FormatBool(value))
}

func (c *Cache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.values, key)
}

func (c *Cache) Save() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.SaveCount++
	return nil
}

// Len returns the number of stored keys (for tests)
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.values)
}
