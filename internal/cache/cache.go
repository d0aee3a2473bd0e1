package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	MenuCatalogKey = "menu:catalog"
	DashboardKey   = "admin:dashboard"
)

// Cache is a thin JSON layer over redis. A nil *Cache is a valid no-op cache,
// so callers do not have to branch on whether redis is configured.
type Cache struct {
	Client *redis.Client
	TTL    time.Duration
}

func New(client *redis.Client, ttl time.Duration) *Cache {
	return &Cache{Client: client, TTL: ttl}
}

func NewClient(addr string) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr: addr,
	})
}

// GetJSON loads key into dest. Returns false on miss or any redis error.
func (c *Cache) GetJSON(ctx context.Context, key string, dest interface{}) bool {
	if c == nil || c.Client == nil {
		return false
	}
	raw, err := c.Client.Get(ctx, key).Bytes()
	if err != nil {
		return false
	}
	return json.Unmarshal(raw, dest) == nil
}

// SetJSON stores value under key with the cache TTL. Errors are swallowed;
// the cache is an optimization, never a source of truth.
func (c *Cache) SetJSON(ctx context.Context, key string, value interface{}) {
	if c == nil || c.Client == nil {
		return
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return
	}
	_ = c.Client.Set(ctx, key, raw, c.TTL).Err()
}

func (c *Cache) Invalidate(ctx context.Context, keys ...string) {
	if c == nil || c.Client == nil {
		return
	}
	_ = c.Client.Del(ctx, keys...).Err()
}
