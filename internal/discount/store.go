package discount

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// Store persists the discount catalog. internal/repo provides a Postgres
// implementation; MemoryStore backs development and tests.
type Store interface {
	ListDiscounts(ctx context.Context) ([]Discount, error)
	GetDiscount(ctx context.Context, id string) (Discount, error)
	CreateDiscount(ctx context.Context, d Discount) (Discount, error)
	DeleteDiscount(ctx context.Context, id string) error
}

// MemoryStore keeps discounts in insertion order.
type MemoryStore struct {
	mu    sync.RWMutex
	items []Discount
}

// NewMemoryStore returns a store seeded with the provided discounts.
func NewMemoryStore(seed ...Discount) *MemoryStore {
	s := &MemoryStore{}
	s.items = append(s.items, seed...)
	return s
}

// ListDiscounts implements Store.
func (s *MemoryStore) ListDiscounts(context.Context) ([]Discount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Discount, len(s.items))
	copy(out, s.items)
	return out, nil
}

// GetDiscount implements Store.
func (s *MemoryStore) GetDiscount(_ context.Context, id string) (Discount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, d := range s.items {
		if d.ID == id {
			return d, nil
		}
	}
	return Discount{}, ErrNotFound
}

// CreateDiscount implements Store. A missing id is generated and an existing
// id is replaced in place, matching the Postgres upsert.
func (s *MemoryStore) CreateDiscount(_ context.Context, d Discount) (Discount, error) {
	d, err := New(d)
	if err != nil {
		return Discount{}, err
	}
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.items {
		if s.items[i].ID == d.ID {
			s.items[i] = d
			return d, nil
		}
	}
	s.items = append(s.items, d)
	return d, nil
}

// DeleteDiscount implements Store.
func (s *MemoryStore) DeleteDiscount(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, d := range s.items {
		if d.ID == id {
			s.items = append(s.items[:i], s.items[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}
