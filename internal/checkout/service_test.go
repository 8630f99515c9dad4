package checkout_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/vetpos/internal/cart"
	"github.com/noah-isme/vetpos/internal/catalog"
	"github.com/noah-isme/vetpos/internal/checkout"
	"github.com/noah-isme/vetpos/internal/discount"
	"github.com/noah-isme/vetpos/internal/lock"
)

var testNow = time.Date(2025, time.July, 15, 9, 0, 0, 0, time.UTC)

type items map[string]catalog.Item

func (s items) ListItems(context.Context) ([]catalog.Item, error) {
	var out []catalog.Item
	for _, it := range s {
		out = append(out, it)
	}
	return out, nil
}

func (s items) GetItem(_ context.Context, id string) (catalog.Item, error) {
	if it, ok := s[id]; ok {
		return it, nil
	}
	return catalog.Item{}, catalog.ErrNotFound
}

type sales struct {
	mu   sync.Mutex
	err  error
	rows []checkout.Sale
}

func (s *sales) RecordSale(_ context.Context, sale checkout.Sale) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.rows = append(s.rows, sale)
	return nil
}

type queued struct {
	to      string
	receipt checkout.Receipt
}

type receiptQueue struct {
	sent []queued
}

func (q *receiptQueue) EnqueueReceipt(_ context.Context, to string, r checkout.Receipt) error {
	q.sent = append(q.sent, queued{to: to, receipt: r})
	return nil
}

type fixture struct {
	svc      *checkout.Service
	carts    *cart.Service
	sales    *sales
	receipts *receiptQueue
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	carts := &cart.Service{
		Sessions: cart.NewMemorySessions(),
		Catalog: items{
			"1": {ID: "1", Name: "Antibiotic X", UnitPrice: decimal.RequireFromString("24.99"), QuantityOnHand: 50, Restricted: true},
			"4": {ID: "4", Name: "Vitamin Supplement", UnitPrice: decimal.RequireFromString("18.20"), QuantityOnHand: 40},
		},
		Discounts: discount.NewMemoryStore(),
		Locker:    lock.NewLocal(),
		TaxRate:   decimal.RequireFromString("0.10"),
		Now:       func() time.Time { return testNow },
		Logger:    zerolog.Nop(),
	}
	f := fixture{carts: carts, sales: &sales{}, receipts: &receiptQueue{}}
	f.svc = &checkout.Service{
		Carts:     carts,
		Sales:     f.sales,
		Receipts:  f.receipts,
		StoreName: "Happy Paws",
		Currency:  "USD",
		Now:       func() time.Time { return testNow },
		Logger:    zerolog.Nop(),
	}
	return f
}

func (f fixture) cartWith(t *testing.T, itemID string, qty int) string {
	t.Helper()
	ctx := context.Background()
	c, err := f.carts.Create(ctx)
	require.NoError(t, err)
	_, err = f.carts.AddItem(ctx, c.ID, itemID, qty)
	require.NoError(t, err)
	return c.ID
}

func TestCompleteRecordsSaleAndDropsSession(t *testing.T) {
	f := newFixture(t)
	id := f.cartWith(t, "4", 2)

	receipt, err := f.svc.Complete(context.Background(), id, "till-1", checkout.Input{
		Method:         "cash",
		AmountTendered: amount("50"),
		CustomerEmail:  "owner@example.com",
	})
	require.NoError(t, err)
	// 36.40 + 3.64 tax
	require.Equal(t, "40.04", receipt.Sale.Total.StringFixed(2))
	require.Equal(t, "9.96", receipt.Sale.Payment.ChangeDue.StringFixed(2))
	require.Equal(t, "till-1", receipt.Sale.CashierID)
	require.Len(t, f.sales.rows, 1)
	require.Equal(t, receipt.Sale.ID, f.sales.rows[0].ID)

	require.Len(t, f.receipts.sent, 1)
	require.Equal(t, "owner@example.com", f.receipts.sent[0].to)

	_, _, err = f.carts.Get(context.Background(), id)
	require.ErrorIs(t, err, cart.ErrNotFound)
}

func TestCompleteRejectionsKeepCartBuilding(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.cartWith(t, "1", 1)

	_, err := f.svc.Complete(ctx, id, "", checkout.Input{Method: "card"})
	require.ErrorIs(t, err, checkout.ErrRestrictedItemBlocked)

	_, err = f.svc.Complete(ctx, id, "", checkout.Input{Method: "cash", AmountTendered: amount("1"), HasRestrictedItemCredential: true})
	require.ErrorIs(t, err, checkout.ErrInsufficientPayment)

	_, err = f.svc.Complete(ctx, id, "", checkout.Input{Method: "barter"})
	require.ErrorIs(t, err, checkout.ErrUnsupportedMethod)

	c, _, err := f.carts.Get(ctx, id)
	require.NoError(t, err)
	require.Equal(t, cart.StateBuilding, c.State())
	require.Empty(t, f.sales.rows)
	require.Empty(t, f.receipts.sent)
}

func TestCompleteSinkFailureLeavesCartOpen(t *testing.T) {
	f := newFixture(t)
	f.sales.err = errors.New("db down")
	id := f.cartWith(t, "4", 1)

	_, err := f.svc.Complete(context.Background(), id, "", checkout.Input{Method: "card"})
	require.Error(t, err)

	c, _, err := f.carts.Get(context.Background(), id)
	require.NoError(t, err)
	require.Equal(t, cart.StateBuilding, c.State())
}

// finalizeFails refuses to store finalized carts.
type finalizeFails struct {
	cart.Sessions
}

func (f finalizeFails) Save(ctx context.Context, c *cart.Cart) error {
	if c.State() == cart.StateFinalized {
		return errors.New("redis down")
	}
	return f.Sessions.Save(ctx, c)
}

func TestCompleteSaveFailureAfterSaleRecorded(t *testing.T) {
	f := newFixture(t)
	f.carts.Sessions = finalizeFails{Sessions: f.carts.Sessions}
	id := f.cartWith(t, "4", 1)

	receipt, err := f.svc.Complete(context.Background(), id, "till-1", checkout.Input{Method: "card"})
	require.NoError(t, err)
	require.Equal(t, "20.02", receipt.Sale.Total.StringFixed(2))
	require.Len(t, f.sales.rows, 1)
	require.Equal(t, receipt.Sale.ID, f.sales.rows[0].ID)

	_, _, err = f.carts.Get(context.Background(), id)
	require.ErrorIs(t, err, cart.ErrNotFound)

	_, err = f.svc.Complete(context.Background(), id, "till-1", checkout.Input{Method: "card"})
	require.ErrorIs(t, err, cart.ErrNotFound)
	require.Len(t, f.sales.rows, 1)
}

func TestCompleteEmptyCart(t *testing.T) {
	f := newFixture(t)
	c, err := f.carts.Create(context.Background())
	require.NoError(t, err)
	_, err = f.svc.Complete(context.Background(), c.ID, "", checkout.Input{Method: "card"})
	require.ErrorIs(t, err, checkout.ErrEmptyCart)
}

func amount(v string) *decimal.Decimal {
	d := decimal.RequireFromString(v)
	return &d
}
