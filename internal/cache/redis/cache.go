package redis

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/hollowpoint-games/accountsync/internal/cache"
)

// Key prefix for all cached profile data
const keyPrefix = "accountsync"

// Cache is a Redis-backed implementation of the local cache interface, for
// installs where player state lives in a shared store rather than a device
// file. Writes buffer in memory and Save flushes them in one pipeline, so
// the remote-before-cache ordering the profile store relies on holds here
// the same way it does for the file cache.
type Cache struct {
	client *redis.Client
	cfg    Config

	mu      sync.Mutex
	pending map[string]*string // nil value marks a deletion
	loaded  map[string]string
}

// Ensure Cache implements the interface
var _ cache.Cache = (*Cache)(nil)

// New creates a new Redis cache instance
func New(cfg Config) (*Cache, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return NewWithClient(client, cfg), nil
}

// NewWithClient creates a Redis cache with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config) *Cache {
	return &Cache{
		client:  client,
		cfg:     cfg,
		pending: make(map[string]*string),
		loaded:  make(map[string]string),
	}
}

// Close closes the Redis connection
func (c *Cache) Close() error {
	return c.client.Close()
}

func (c *Cache) redisKey(key string) string {
	return fmt.Sprintf("%s:%s:%s", keyPrefix, c.cfg.Namespace, key)
}

func (c *Cache) getRaw(key string) (string, bool) {
	c.mu.Lock()
	if v, ok := c.pending[key]; ok {
		c.mu.Unlock()
		if v == nil {
			return "", false
		}
		return *v, true
	}
	if v, ok := c.loaded[key]; ok {
		c.mu.Unlock()
		return v, true
	}
	c.mu.Unlock()

	v, err := c.client.Get(context.Background(), c.redisKey(key)).Result()
	if err != nil {
		// Missing key and unreachable store both read as absent; the
		// caller's default applies
		return "", false
	}

	c.mu.Lock()
	c.loaded[key] = v
	c.mu.Unlock()
	return v, true
}

func (c *Cache) GetString(key, def string) string {
	v, ok := c.getRaw(key)
	if !ok {
		return def
	}
	return v
}

func (c *Cache) GetInt(key string, def int) int {
	v, ok := c.getRaw(key)
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
	v, ok := c.getRaw(key)
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
	v := value
	c.pending[key] = &v
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
	c.pending[key] = nil
}

// Save flushes buffered writes and deletions in a single pipeline.
func (c *Cache) Save() error {
	c.mu.Lock()
	if len(c.pending) == 0 {
		c.mu.Unlock()
		return nil
	}
	batch := c.pending
	c.pending = make(map[string]*string)
	c.mu.Unlock()

	ctx := context.Background()
	pipe := c.client.Pipeline()
	for key, value := range batch {
		if value == nil {
			pipe.Del(ctx, c.redisKey(key))
		} else {
			pipe.Set(ctx, c.redisKey(key), *value, 0)
		}
	}
	if _, err := pipe.Exec(ctx); err != nil {
		// Put the batch back so a retried Save does not lose writes
		c.mu.Lock()
		for key, value := range batch {
			if _, exists := c.pending[key]; !exists {
				c.pending[key] = value
			}
		}
		c.mu.Unlock()
		return err
	}

	c.mu.Lock()
	for key, value := range batch {
		if value == nil {
			delete(c.loaded, key)
		} else {
			c.loaded[key] = *value
		}
	}
	c.mu.Unlock()
	return nil
}
