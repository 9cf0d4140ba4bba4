package file

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/hollowpoint-games/accountsync/internal/cache"
)

// Cache is a JSON-file-backed implementation of the local cache interface,
// the on-device store for player profile fields and session flags. Reads and
// writes operate on an in-memory map; Save writes the file atomically via a
// rename.
type Cache struct {
	mu     sync.RWMutex
	path   string
	values map[string]string
}

// Ensure Cache implements the interface
var _ cache.Cache = (*Cache)(nil)

// Open loads the cache file at path, creating an empty cache if the file
// does not exist yet.
func Open(path string) (*Cache, error) {
	c := &Cache{
		path:   path,
		values: make(map[string]string),
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return c, nil
		}
		return nil, fmt.Errorf("failed to read cache file: %w", err)
	}

	if err := json.Unmarshal(data, &c.values); err != nil {
		return nil, fmt.Errorf("failed to parse cache file: %w", err)
	}
	return c, nil
}

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
	v := c.GetString(key, "")
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func (c *Cache) GetBool(key string, def bool) bool {
	v := c.GetString(key, "")
	if v == "" {
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

// Save writes the full key set to disk. Write-then-rename keeps a crash from
// truncating the previous snapshot.
func (c *Cache) Save() error {
	c.mu.RLock()
	data, err := json.MarshalIndent(c.values, "", "  ")
	c.mu.RUnlock()
	if err != nil {
		return fmt.Errorf("failed to marshal cache: %w", err)
	}

	if dir := filepath.Dir(c.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create cache directory: %w", err)
		}
	}

	tmp := c.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("failed to write cache file: %w", err)
	}
	if err := os.Rename(tmp, c.path); err != nil {
		return fmt.Errorf("failed to replace cache file: %w", err)
	}
	return nil
}
