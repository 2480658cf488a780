package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// CatalogCache guarda respuestas serializadas del catálogo (p. ej. la lista de marcas).
type CatalogCache interface {
	Get(key string) ([]byte, bool, error)
	Set(key string, value []byte, ttl time.Duration) error
	Invalidate(key string) error
}

type cacheEntry struct {
	value     []byte
	expiresAt time.Time
}

type memoryCatalogCache struct {
	mu    sync.Mutex
	items map[string]cacheEntry
}

func NewMemoryCatalogCache() CatalogCache {
	return &memoryCatalogCache{
		items: make(map[string]cacheEntry),
	}
}

func (c *memoryCatalogCache) Get(key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.items[key]
	if !ok {
		return nil, false, nil
	}
	if time.Now().UTC().After(entry.expiresAt) {
		delete(c.items, key)
		return nil, false, nil
	}
	return entry.value, true, nil
}

func (c *memoryCatalogCache) Set(key string, value []byte, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if strings.TrimSpace(key) == "" {
		return nil
	}
	c.items[key] = cacheEntry{value: value, expiresAt: time.Now().UTC().Add(ttl)}
	return nil
}

func (c *memoryCatalogCache) Invalidate(key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, key)
	return nil
}

// redisKV es el subconjunto de *redis.Client que usa la caché.
type redisKV interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

type redisCatalogCache struct {
	client  redisKV
	prefix  string
	timeout time.Duration
}

func NewRedisCatalogCache(client *redis.Client) CatalogCache {
	if client == nil {
		return nil
	}
	return &redisCatalogCache{
		client:  client,
		prefix:  "catalog:",
		timeout: 500 * time.Millisecond,
	}
}

func (c *redisCatalogCache) Get(key string) ([]byte, bool, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, false, nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()
	val, err := c.client.Get(ctx, c.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return val, true, nil
}

func (c *redisCatalogCache) Set(key string, value []byte, ttl time.Duration) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()
	return c.client.Set(ctx, c.prefix+key, value, ttl).Err()
}

func (c *redisCatalogCache) Invalidate(key string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()
	return c.client.Del(ctx, c.prefix+key).Err()
}
