package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Sessions stores in-progress carts between till requests.
type Sessions interface {
	Load(ctx context.Context, id string) (*Cart, error)
	Save(ctx context.Context, c *Cart) error
	Delete(ctx context.Context, id string) error
}

// RedisSessions keeps cart snapshots as JSON with a sliding TTL.
type RedisSessions struct {
	R      *redis.Client
	TTL    time.Duration
	Prefix string
}

func (s RedisSessions) key(id string) string {
	prefix := s.Prefix
	if prefix == "" {
		prefix = "cart:"
	}
	return prefix + id
}

func (s RedisSessions) ttl() time.Duration {
	if s.TTL <= 0 {
		return 12 * time.Hour
	}
	return s.TTL
}

// Load implements Sessions.
func (s RedisSessions) Load(ctx context.Context, id string) (*Cart, error) {
	data, err := s.R.Get(ctx, s.key(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("load cart %s: %w", id, err)
	}
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("decode cart %s: %w", id, err)
	}
	return Restore(snap), nil
}

// Save implements Sessions.
func (s RedisSessions) Save(ctx context.Context, c *Cart) error {
	data, err := json.Marshal(c.Snapshot())
	if err != nil {
		return fmt.Errorf("encode cart %s: %w", c.ID, err)
	}
	return s.R.Set(ctx, s.key(c.ID), data, s.ttl()).Err()
}

// Delete implements Sessions.
func (s RedisSessions) Delete(ctx context.Context, id string) error {
	return s.R.Del(ctx, s.key(id)).Err()
}

// MemorySessions is a process-local Sessions implementation.
type MemorySessions struct {
	mu    sync.Mutex
	carts map[string]Snapshot
}

// NewMemorySessions constructs an empty in-memory store.
func NewMemorySessions() *MemorySessions {
	return &MemorySessions{carts: make(map[string]Snapshot)}
}

// Load implements Sessions.
func (s *MemorySessions) Load(_ context.Context, id string) (*Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap, ok := s.carts[id]
	if !ok {
		return nil, ErrNotFound
	}
	return Restore(snap), nil
}

// Save implements Sessions.
func (s *MemorySessions) Save(_ context.Context, c *Cart) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.carts[c.ID] = c.Snapshot()
	return nil
}

// Delete implements Sessions.
func (s *MemorySessions) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.carts, id)
	return nil
}
