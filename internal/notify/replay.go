package notify

import (
	"context"
	"sync"
	"time"

	redis "github.com/redis/go-redis/v9"
)

// RedisGuard implements SentGuard with SETNX.
type RedisGuard struct {
	Client *redis.Client
}

// Acquire claims key for ttl. It reports false when the key is already held.
func (r RedisGuard) Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	if r.Client == nil {
		return true, nil
	}
	return r.Client.SetNX(ctx, key, "1", ttl).Result()
}

// Release removes the key.
func (r RedisGuard) Release(ctx context.Context, key string) error {
	if r.Client == nil {
		return nil
	}
	return r.Client.Del(ctx, key).Err()
}

// MemoryGuard is an in-process SentGuard. Entries never expire.
type MemoryGuard struct {
	mu   sync.Mutex
	held map[string]struct{}
}

// Acquire implements SentGuard.
func (g *MemoryGuard) Acquire(_ context.Context, key string, _ time.Duration) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.held == nil {
		g.held = make(map[string]struct{})
	}
	if _, ok := g.held[key]; ok {
		return false, nil
	}
	g.held[key] = struct{}{}
	return true, nil
}

// Release implements SentGuard.
func (g *MemoryGuard) Release(_ context.Context, key string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.held, key)
	return nil
}
