package supplier

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/vetpos/internal/lock"
	"github.com/noah-isme/vetpos/internal/pricing"
)

type stockLedger struct {
	mu       sync.Mutex
	err      error
	received map[string]int
}

func (s *stockLedger) ReceiveStock(_ context.Context, q map[string]int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	if s.received == nil {
		s.received = map[string]int{}
	}
	for id, n := range q {
		s.received[id] += n
	}
	return nil
}

type invalidations struct{ n int }

func (i *invalidations) Invalidate(context.Context) error {
	i.n++
	return nil
}

type fixture struct {
	svc   *Service
	store *MemoryStore
	stock *stockLedger
	cache *invalidations
}

func newFixture() fixture {
	f := fixture{
		store: NewMemoryStore(
			Supplier{ID: "vetsupply", Name: "VetMed Supplies Inc.", Email: "orders@vetmed.example", Status: Active},
			Supplier{ID: "petcare", Name: "Animal Health Distributors", Status: Active},
		),
		stock: &stockLedger{},
		cache: &invalidations{},
	}
	f.svc = &Service{
		Store:   f.store,
		Catalog: restockCatalog(),
		Stock:   f.stock,
		Cache:   f.cache,
		Locker:  lock.NewLocal(),
		Now:     func() time.Time { return now },
		Logger:  zerolog.Nop(),
	}
	return f
}

func TestDraftSkipsUnknownSuppliers(t *testing.T) {
	f := newFixture()
	orders, unassigned, err := f.svc.Draft(context.Background(), DraftRequest{
		UnitCosts: map[string]pricing.Money{"1": money("15.00")},
	})
	require.NoError(t, err)
	require.Equal(t, []string{"5", "6"}, unassigned)
	require.Len(t, orders, 2)
	require.Equal(t, "petcare", orders[0].SupplierID)
	require.Equal(t, "vetsupply", orders[1].SupplierID)
	require.NotEmpty(t, orders[1].ID)

	stored, err := f.store.ListOrders(context.Background(), Draft)
	require.NoError(t, err)
	require.Len(t, stored, 2)
}

func TestDraftFilters(t *testing.T) {
	f := newFixture()
	orders, _, err := f.svc.Draft(context.Background(), DraftRequest{SupplierID: "vetsupply", ItemIDs: []string{"2"}})
	require.NoError(t, err)
	require.Len(t, orders, 1)
	require.Len(t, orders[0].Lines, 1)
	require.Equal(t, "625.00", orders[0].TotalAmount.StringFixed(2))
}

func TestDraftInactiveSupplier(t *testing.T) {
	f := newFixture()
	_, err := f.store.UpsertSupplier(context.Background(), Supplier{ID: "petcare", Name: "Animal Health Distributors", Status: Inactive})
	require.NoError(t, err)

	_, unassigned, err := f.svc.Draft(context.Background(), DraftRequest{SupplierID: "petcare"})
	require.ErrorIs(t, err, ErrNothingToOrder)
	require.Equal(t, []string{"3"}, unassigned)
}

func TestDraftRejectsNegativeCost(t *testing.T) {
	f := newFixture()
	_, _, err := f.svc.Draft(context.Background(), DraftRequest{UnitCosts: map[string]pricing.Money{"1": money("-1")}})
	require.ErrorIs(t, err, ErrInvalidOrder)
}

func draftVetSupply(t *testing.T, f fixture) PurchaseOrder {
	t.Helper()
	orders, _, err := f.svc.Draft(context.Background(), DraftRequest{SupplierID: "vetsupply"})
	require.NoError(t, err)
	require.Len(t, orders, 1)
	return orders[0]
}

func TestReceiveBooksStock(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	po := draftVetSupply(t, f)

	_, err := f.svc.Receive(ctx, po.ID, map[string]int{"1": 10})
	require.ErrorIs(t, err, ErrInvalidTransition)
	require.Empty(t, f.stock.received)

	_, err = f.svc.UpdateStatus(ctx, po.ID, Pending)
	require.NoError(t, err)

	got, err := f.svc.Receive(ctx, po.ID, map[string]int{"1": 40})
	require.NoError(t, err)
	require.Equal(t, PartiallyDelivered, got.Status)
	require.Equal(t, map[string]int{"1": 40}, f.stock.received)
	require.Equal(t, 1, f.cache.n)

	got, err = f.svc.UpdateStatus(ctx, po.ID, Delivered)
	require.NoError(t, err)
	require.Equal(t, Delivered, got.Status)
	require.Equal(t, map[string]int{"1": 95, "2": 50}, f.stock.received)
	require.Equal(t, 2, f.cache.n)

	stored, err := f.store.GetOrder(ctx, po.ID)
	require.NoError(t, err)
	require.Equal(t, Delivered, stored.Status)

	sup, err := f.store.GetSupplier(ctx, "vetsupply")
	require.NoError(t, err)
	require.NotNil(t, sup.LastDeliveryDate)
	require.Equal(t, time.Date(2025, time.July, 15, 0, 0, 0, 0, time.UTC), *sup.LastDeliveryDate)
}

func TestReceiveStockFailureLeavesOrder(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	po := draftVetSupply(t, f)
	_, err := f.svc.UpdateStatus(ctx, po.ID, Pending)
	require.NoError(t, err)

	f.stock.err = errors.New("db down")
	_, err = f.svc.Receive(ctx, po.ID, map[string]int{"1": 40})
	require.Error(t, err)

	stored, err := f.store.GetOrder(ctx, po.ID)
	require.NoError(t, err)
	require.Equal(t, Pending, stored.Status)
	require.Zero(t, stored.Lines[0].Received)
	require.Zero(t, f.cache.n)
}

func TestUpdateStatusUnknown(t *testing.T) {
	f := newFixture()
	_, err := f.svc.UpdateStatus(context.Background(), "missing", Pending)
	require.ErrorIs(t, err, ErrNotFound)
	_, err = f.svc.UpdateStatus(context.Background(), "missing", "lost")
	require.ErrorIs(t, err, ErrInvalidTransition)
}

func TestMemoryStoreUpsertReplacesSupplier(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(Supplier{ID: "s1", Name: "Old", Status: Active})
	_, err := store.UpsertSupplier(ctx, Supplier{ID: "s1", Name: "New", Status: Active})
	require.NoError(t, err)
	all, err := store.ListSuppliers(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	require.Equal(t, "New", all[0].Name)

	_, err = store.UpsertSupplier(ctx, Supplier{ID: "s2", Status: Active})
	require.ErrorIs(t, err, ErrInvalidSupplier)
}
