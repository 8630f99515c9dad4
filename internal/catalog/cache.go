package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const itemsCacheKey = "catalog:items"

// Cache keeps a snapshot of the full item list in Redis. A nil cache, nil
// client or non-positive TTL turns every call into a no-op miss.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCache constructs a snapshot cache.
func NewCache(client *redis.Client, ttl time.Duration) *Cache {
	return &Cache{client: client, ttl: ttl}
}

type snapshot struct {
	TakenAt time.Time `json:"takenAt"`
	Items   []Item    `json:"items"`
}

func (c *Cache) enabled() bool {
	return c != nil && c.client != nil && c.ttl > 0
}

// Load returns the cached items and whether a snapshot was present.
func (c *Cache) Load(ctx context.Context) ([]Item, bool, error) {
	if !c.enabled() {
		return nil, false, nil
	}
	raw, err := c.client.Get(ctx, itemsCacheKey).Bytes()
	switch {
	case errors.Is(err, redis.Nil):
		return nil, false, nil
	case err != nil:
		return nil, false, err
	}
	var snap snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return nil, false, err
	}
	return snap.Items, true, nil
}

// Store replaces the snapshot.
func (c *Cache) Store(ctx context.Context, items []Item) error {
	if !c.enabled() {
		return nil
	}
	raw, err := json.Marshal(snapshot{TakenAt: time.Now().UTC(), Items: items})
	if err != nil {
		return err
	}
	return c.client.Set(ctx, itemsCacheKey, raw, c.ttl).Err()
}

// Invalidate drops the snapshot.
func (c *Cache) Invalidate(ctx context.Context) error {
	if !c.enabled() {
		return nil
	}
	return c.client.Del(ctx, itemsCacheKey).Err()
}
