package repo

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/noah-isme/vetpos/internal/catalog"
	"github.com/noah-isme/vetpos/internal/checkout"
)

// Memory is a process-local catalog and sales ledger used when no database is
// configured.
type Memory struct {
	mu    sync.RWMutex
	items map[string]catalog.Item
	order []string
	sales []checkout.Sale
}

// NewMemory seeds the catalog with items.
func NewMemory(items ...catalog.Item) *Memory {
	m := &Memory{items: make(map[string]catalog.Item, len(items))}
	for _, it := range items {
		_ = m.UpsertItem(context.Background(), it)
	}
	return m
}

// UpsertItem inserts or replaces a catalog item.
func (m *Memory) UpsertItem(_ context.Context, it catalog.Item) error {
	if err := it.Validate(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.items[it.ID]; !ok {
		m.order = append(m.order, it.ID)
	}
	m.items[it.ID] = it
	return nil
}

// ListItems implements catalog.Provider, sorted by name like the database.
func (m *Memory) ListItems(context.Context) ([]catalog.Item, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]catalog.Item, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.items[id])
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// GetItem implements catalog.Provider.
func (m *Memory) GetItem(_ context.Context, id string) (catalog.Item, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	it, ok := m.items[id]
	if !ok {
		return catalog.Item{}, fmt.Errorf("item %s: %w", id, catalog.ErrNotFound)
	}
	return it, nil
}

// ReceiveStock implements supplier.StockReceiver. Every item must exist.
func (m *Memory) ReceiveStock(_ context.Context, quantities map[string]int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, qty := range quantities {
		it, ok := m.items[id]
		if !ok {
			return fmt.Errorf("item %s: %w", id, catalog.ErrNotFound)
		}
		if it.QuantityOnHand+qty < 0 {
			return fmt.Errorf("item %s: %w", id, catalog.ErrInvalidItem)
		}
	}
	for id, qty := range quantities {
		it := m.items[id]
		it.QuantityOnHand += qty
		m.items[id] = it
	}
	return nil
}

// RecordSale implements checkout.SaleSink.
func (m *Memory) RecordSale(_ context.Context, s checkout.Sale) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.sales {
		if existing.CartID == s.CartID {
			return fmt.Errorf("cart %s already sold", s.CartID)
		}
	}
	m.sales = append(m.sales, s)
	return nil
}

// ListSales returns sales completed in [from, to), oldest first.
func (m *Memory) ListSales(_ context.Context, from, to time.Time) ([]checkout.Sale, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]checkout.Sale, 0)
	for _, s := range m.sales {
		if s.CompletedAt.Before(from) || !s.CompletedAt.Before(to) {
			continue
		}
		out = append(out, s)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CompletedAt.Before(out[j].CompletedAt) })
	return out, nil
}
