package supplier

import (
	"context"
	"fmt"
	"sync"
)

// Store persists suppliers and purchase orders. Postgres lives in
// internal/repo.
type Store interface {
	ListSuppliers(ctx context.Context) ([]Supplier, error)
	GetSupplier(ctx context.Context, id string) (Supplier, error)
	UpsertSupplier(ctx context.Context, s Supplier) (Supplier, error)
	ListOrders(ctx context.Context, status OrderStatus) ([]PurchaseOrder, error)
	GetOrder(ctx context.Context, id string) (PurchaseOrder, error)
	SaveOrder(ctx context.Context, o PurchaseOrder) error
}

// MemoryStore keeps suppliers and orders in insertion order.
type MemoryStore struct {
	mu        sync.RWMutex
	suppliers []Supplier
	orders    []PurchaseOrder
}

// NewMemoryStore returns a store seeded with suppliers.
func NewMemoryStore(seed ...Supplier) *MemoryStore {
	s := &MemoryStore{}
	for _, sup := range seed {
		_, _ = s.UpsertSupplier(context.Background(), sup)
	}
	return s
}

// ListSuppliers implements Store.
func (s *MemoryStore) ListSuppliers(context.Context) ([]Supplier, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Supplier(nil), s.suppliers...), nil
}

// GetSupplier implements Store.
func (s *MemoryStore) GetSupplier(_ context.Context, id string) (Supplier, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, sup := range s.suppliers {
		if sup.ID == id {
			return sup, nil
		}
	}
	return Supplier{}, fmt.Errorf("supplier %s: %w", id, ErrNotFound)
}

// UpsertSupplier implements Store. An existing id is replaced in place.
func (s *MemoryStore) UpsertSupplier(_ context.Context, sup Supplier) (Supplier, error) {
	if err := sup.Validate(); err != nil {
		return Supplier{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.suppliers {
		if s.suppliers[i].ID == sup.ID {
			s.suppliers[i] = sup
			return sup, nil
		}
	}
	s.suppliers = append(s.suppliers, sup)
	return sup, nil
}

// ListOrders implements Store. An empty status lists every order.
func (s *MemoryStore) ListOrders(_ context.Context, status OrderStatus) ([]PurchaseOrder, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]PurchaseOrder, 0, len(s.orders))
	for _, o := range s.orders {
		if status == "" || o.Status == status {
			out = append(out, cloneOrder(o))
		}
	}
	return out, nil
}

// GetOrder implements Store.
func (s *MemoryStore) GetOrder(_ context.Context, id string) (PurchaseOrder, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, o := range s.orders {
		if o.ID == id {
			return cloneOrder(o), nil
		}
	}
	return PurchaseOrder{}, fmt.Errorf("purchase order %s: %w", id, ErrNotFound)
}

// SaveOrder implements Store.
func (s *MemoryStore) SaveOrder(_ context.Context, o PurchaseOrder) error {
	if err := o.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.orders {
		if s.orders[i].ID == o.ID {
			s.orders[i] = cloneOrder(o)
			return nil
		}
	}
	s.orders = append(s.orders, cloneOrder(o))
	return nil
}

func cloneOrder(o PurchaseOrder) PurchaseOrder {
	o.Lines = append([]Line(nil), o.Lines...)
	return o
}
