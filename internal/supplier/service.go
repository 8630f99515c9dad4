package supplier

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/noah-isme/vetpos/internal/catalog"
	"github.com/noah-isme/vetpos/internal/common"
	"github.com/noah-isme/vetpos/internal/pricing"
	"github.com/noah-isme/vetpos/internal/stock"
)

// DefaultLeadTime is the expected delivery delay for new orders.
const DefaultLeadTime = 14 * 24 * time.Hour

// StockReceiver adds delivered quantities to catalog stock. All quantities
// apply or none do.
type StockReceiver interface {
	ReceiveStock(ctx context.Context, quantities map[string]int) error
}

// Invalidator drops cached catalog listings after stock changes.
type Invalidator interface {
	Invalidate(ctx context.Context) error
}

// Locker serialises updates to one order.
type Locker interface {
	WithLock(ctx context.Context, key string, ttl time.Duration, fn func(context.Context) error) error
}

// DraftRequest narrows the restock plan turned into orders. Empty filters
// take the whole plan.
type DraftRequest struct {
	SupplierID string
	ItemIDs    []string
	UnitCosts  map[string]pricing.Money
}

// Service drafts purchase orders from the restock plan and books deliveries
// into catalog stock.
type Service struct {
	Store    Store
	Catalog  catalog.Provider
	Stock    StockReceiver
	Cache    Invalidator
	Locker   Locker
	LeadTime time.Duration
	Now      func() time.Time
	Logger   zerolog.Logger
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Draft turns the current restock plan into one draft order per active
// supplier. Items whose supplier is unknown or inactive come back unassigned.
func (s *Service) Draft(ctx context.Context, req DraftRequest) ([]PurchaseOrder, []string, error) {
	items, err := s.Catalog.ListItems(ctx)
	if err != nil {
		return nil, nil, err
	}
	wanted := make(map[string]bool, len(req.ItemIDs))
	for _, id := range req.ItemIDs {
		wanted[id] = true
	}
	plan := make([]stock.Suggestion, 0)
	for _, sg := range stock.Plan(items) {
		if len(wanted) > 0 && !wanted[sg.Item.ID] {
			continue
		}
		if req.SupplierID != "" && sg.Item.SupplierID != req.SupplierID {
			continue
		}
		plan = append(plan, sg)
	}
	for id, cost := range req.UnitCosts {
		if cost.IsNegative() {
			return nil, nil, fmt.Errorf("%w: item %s unit cost is negative", ErrInvalidOrder, id)
		}
	}

	leadTime := s.LeadTime
	if leadTime <= 0 {
		leadTime = DefaultLeadTime
	}
	now := s.now()
	drafts, unassigned := FromPlan(plan, req.UnitCosts, now, leadTime)
	orders := make([]PurchaseOrder, 0, len(drafts))
	for _, po := range drafts {
		sup, err := s.Store.GetSupplier(ctx, po.SupplierID)
		switch {
		case errors.Is(err, ErrNotFound) || (err == nil && sup.Status != Active):
			for _, l := range po.Lines {
				unassigned = append(unassigned, l.ItemID)
			}
			continue
		case err != nil:
			return nil, nil, err
		}
		po.ID = uuid.NewString()
		if err := s.Store.SaveOrder(ctx, po); err != nil {
			return nil, nil, fmt.Errorf("save purchase order: %w", err)
		}
		s.Logger.Info().
			Str("po_id", po.ID).
			Str("supplier_id", po.SupplierID).
			Int("lines", len(po.Lines)).
			Str("total", po.TotalAmount.StringFixed(2)).
			Msg("purchase_order_drafted")
		orders = append(orders, po)
	}
	sort.Strings(unassigned)
	if len(orders) == 0 {
		return nil, unassigned, ErrNothingToOrder
	}
	return orders, unassigned, nil
}

// UpdateStatus moves the order to status to. Delivered books every
// outstanding quantity into stock.
func (s *Service) UpdateStatus(ctx context.Context, id string, to OrderStatus) (PurchaseOrder, error) {
	if !to.Valid() {
		return PurchaseOrder{}, fmt.Errorf("%w: unknown status %q", ErrInvalidTransition, to)
	}
	return s.mutate(ctx, id, func(o *PurchaseOrder, now time.Time) (map[string]int, error) {
		return o.Transition(to, now)
	})
}

// Receive books a (possibly partial) delivery into stock.
func (s *Service) Receive(ctx context.Context, id string, delivered map[string]int) (PurchaseOrder, error) {
	return s.mutate(ctx, id, func(o *PurchaseOrder, now time.Time) (map[string]int, error) {
		return o.Receive(delivered, now)
	})
}

func (s *Service) mutate(ctx context.Context, id string, fn func(*PurchaseOrder, time.Time) (map[string]int, error)) (PurchaseOrder, error) {
	var out PurchaseOrder
	run := func(ctx context.Context) error {
		o, err := s.Store.GetOrder(ctx, id)
		if err != nil {
			return err
		}
		from := o.Status
		now := s.now()
		applied, err := fn(&o, now)
		if err != nil {
			return err
		}
		if len(applied) > 0 {
			if err := s.receiveStock(ctx, o, applied, now); err != nil {
				return err
			}
		}
		if err := s.Store.SaveOrder(ctx, o); err != nil {
			if len(applied) > 0 {
				s.Logger.Error().Err(err).Str("po_id", o.ID).Msg("purchase_order_save_failed_after_stock_received")
			}
			return fmt.Errorf("save purchase order: %w", err)
		}
		s.Logger.Info().
			Str("po_id", o.ID).
			Str("from", string(from)).
			Str("to", string(o.Status)).
			Msg("purchase_order_updated")
		out = o
		return nil
	}
	var err error
	if s.Locker != nil {
		err = s.Locker.WithLock(ctx, "lock:po:"+id, 5*time.Second, run)
	} else {
		err = run(ctx)
	}
	return out, err
}

func (s *Service) receiveStock(ctx context.Context, o PurchaseOrder, applied map[string]int, now time.Time) error {
	if s.Stock == nil {
		return errors.New("stock receiver not configured")
	}
	if err := s.Stock.ReceiveStock(ctx, applied); err != nil {
		return fmt.Errorf("receive stock: %w", err)
	}
	if s.Cache != nil {
		if err := s.Cache.Invalidate(ctx); err != nil {
			s.Logger.Warn().Err(err).Msg("catalog cache invalidate")
		}
	}
	sup, err := s.Store.GetSupplier(ctx, o.SupplierID)
	if err != nil {
		s.Logger.Warn().Err(err).Str("supplier_id", o.SupplierID).Msg("supplier lookup after delivery")
		return nil
	}
	day := common.DateOf(now)
	sup.LastDeliveryDate = &day
	if _, err := s.Store.UpsertSupplier(ctx, sup); err != nil {
		s.Logger.Warn().Err(err).Str("supplier_id", o.SupplierID).Msg("record supplier delivery date")
	}
	return nil
}
