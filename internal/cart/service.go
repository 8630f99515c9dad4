package cart

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/noah-isme/vetpos/internal/catalog"
	"github.com/noah-isme/vetpos/internal/discount"
	"github.com/noah-isme/vetpos/internal/obs"
)

// DiscountLister supplies the discount catalog used for pricing.
type DiscountLister interface {
	ListDiscounts(ctx context.Context) ([]discount.Discount, error)
	GetDiscount(ctx context.Context, id string) (discount.Discount, error)
}

// Locker serialises work on a key across API replicas.
type Locker interface {
	WithLock(ctx context.Context, key string, ttl time.Duration, fn func(context.Context) error) error
}

// Service drives cart sessions for the till. Each request loads the cart
// snapshot, applies one ledger operation and saves it back under a per-cart lock.
type Service struct {
	Sessions  Sessions
	Catalog   catalog.Provider
	Discounts DiscountLister
	Locker    Locker
	LockTTL   time.Duration
	TaxRate   decimal.Decimal
	Now       func() time.Time
	Logger    zerolog.Logger
}

func (s *Service) now() time.Time {
	if s != nil && s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *Service) configured() error {
	if s == nil || s.Sessions == nil || s.Catalog == nil || s.Discounts == nil {
		return errors.New("cart service not configured")
	}
	return nil
}

// Create opens a new empty cart session.
func (s *Service) Create(ctx context.Context) (*Cart, error) {
	if err := s.configured(); err != nil {
		return nil, err
	}
	c := New(uuid.NewString(), s.TaxRate)
	if err := s.Sessions.Save(ctx, c); err != nil {
		return nil, fmt.Errorf("save cart: %w", err)
	}
	return c, nil
}

// Get loads a cart and prices it.
func (s *Service) Get(ctx context.Context, id string) (*Cart, Totals, error) {
	if err := s.configured(); err != nil {
		return nil, Totals{}, err
	}
	c, err := s.Sessions.Load(ctx, id)
	if err != nil {
		return nil, Totals{}, err
	}
	totals, err := s.Price(ctx, c)
	if err != nil {
		return nil, Totals{}, err
	}
	return c, totals, nil
}

// Price computes totals against the current discount catalog.
func (s *Service) Price(ctx context.Context, c *Cart) (Totals, error) {
	discounts, err := s.Discounts.ListDiscounts(ctx)
	if err != nil {
		return Totals{}, fmt.Errorf("list discounts: %w", err)
	}
	return c.ComputeTotals(discounts, s.now()), nil
}

// Mutate runs fn on the stored cart under the cart lock and persists the
// result when fn succeeds. A failing fn leaves the stored cart untouched.
func (s *Service) Mutate(ctx context.Context, id, op string, fn func(context.Context, *Cart) error) (*Cart, error) {
	if err := s.configured(); err != nil {
		return nil, err
	}
	var out *Cart
	run := func(ctx context.Context) error {
		c, err := s.Sessions.Load(ctx, id)
		if err != nil {
			return err
		}
		if err := fn(ctx, c); err != nil {
			return err
		}
		if err := s.Sessions.Save(ctx, c); err != nil {
			return fmt.Errorf("save cart: %w", err)
		}
		out = c
		return nil
	}
	var err error
	if s.Locker != nil {
		ttl := s.LockTTL
		if ttl <= 0 {
			ttl = 5 * time.Second
		}
		err = s.Locker.WithLock(ctx, "lock:cart:"+id, ttl, run)
	} else {
		err = run(ctx)
	}
	result := "ok"
	if err != nil {
		result = resultLabel(err)
		s.Logger.Debug().Err(err).Str("cart_id", id).Str("op", op).Msg("cart_mutation_rejected")
	}
	if obs.CartMutationsTotal != nil {
		obs.CartMutationsTotal.WithLabelValues(op, result).Inc()
	}
	return out, err
}

// AddItem adds qty of the catalog item to the cart.
func (s *Service) AddItem(ctx context.Context, id, itemID string, qty int) (*Cart, error) {
	return s.Mutate(ctx, id, "add_item", func(ctx context.Context, c *Cart) error {
		item, err := s.Catalog.GetItem(ctx, itemID)
		if err != nil {
			return err
		}
		return c.AddItem(item, qty)
	})
}

// SetQuantity replaces the quantity of a line, refreshing its stock snapshot.
func (s *Service) SetQuantity(ctx context.Context, id, itemID string, qty int) (*Cart, error) {
	return s.Mutate(ctx, id, "set_quantity", func(ctx context.Context, c *Cart) error {
		if qty > 0 {
			item, err := s.Catalog.GetItem(ctx, itemID)
			if err != nil {
				return err
			}
			c.refreshItem(item)
		}
		return c.SetLineQuantity(itemID, qty)
	})
}

// RemoveLine drops a line from the cart.
func (s *Service) RemoveLine(ctx context.Context, id, itemID string) (*Cart, error) {
	return s.Mutate(ctx, id, "remove_line", func(_ context.Context, c *Cart) error {
		return c.RemoveLine(itemID)
	})
}

// ApplyDiscount selects the whole-cart discount by id; an empty id clears it.
func (s *Service) ApplyDiscount(ctx context.Context, id, discountID string) (*Cart, error) {
	return s.Mutate(ctx, id, "apply_discount", func(ctx context.Context, c *Cart) error {
		if discountID == "" {
			return c.ApplyCartDiscount(nil)
		}
		d, err := s.Discounts.GetDiscount(ctx, discountID)
		if err != nil {
			return err
		}
		return c.ApplyCartDiscount(&d)
	})
}

// Discard clears and deletes the cart session.
func (s *Service) Discard(ctx context.Context, id string) error {
	if err := s.configured(); err != nil {
		return err
	}
	if _, err := s.Sessions.Load(ctx, id); err != nil {
		return err
	}
	return s.Sessions.Delete(ctx, id)
}

func (c *Cart) refreshItem(item catalog.Item) {
	if i := c.index(item.ID); i >= 0 {
		c.lines[i].Item = item
	}
}

func resultLabel(err error) string {
	switch {
	case errors.Is(err, ErrInvalidQuantity):
		return "invalid_quantity"
	case errors.Is(err, ErrInsufficientStock):
		return "insufficient_stock"
	case errors.Is(err, ErrAlreadyFinalized):
		return "finalized"
	case errors.Is(err, ErrNotFound), errors.Is(err, catalog.ErrNotFound), errors.Is(err, discount.ErrNotFound):
		return "not_found"
	default:
		return "error"
	}
}
