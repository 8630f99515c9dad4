package cart

import (
	"github.com/shopspring/decimal"

	"github.com/noah-isme/vetpos/internal/discount"
	"github.com/noah-isme/vetpos/internal/pricing"
)

// Snapshot is the serialisable form of a cart used by session stores.
type Snapshot struct {
	ID           string             `json:"id"`
	Lines        []Line             `json:"lines"`
	CartDiscount *discount.Discount `json:"cartDiscount,omitempty"`
	TaxRate      decimal.Decimal    `json:"taxRate"`
	Finalized    bool               `json:"finalized"`
	Total        pricing.Money      `json:"total"`
}

// Snapshot captures the cart state.
func (c *Cart) Snapshot() Snapshot {
	return Snapshot{
		ID:           c.ID,
		Lines:        c.Lines(),
		CartDiscount: c.CartDiscount(),
		TaxRate:      c.taxRate,
		Finalized:    c.finalized,
		Total:        c.total,
	}
}

// Restore rebuilds a cart from a snapshot.
func Restore(s Snapshot) *Cart {
	c := &Cart{
		ID:        s.ID,
		taxRate:   s.TaxRate,
		finalized: s.Finalized,
		total:     s.Total,
	}
	if len(s.Lines) > 0 {
		c.lines = make([]Line, len(s.Lines))
		copy(c.lines, s.Lines)
	}
	if s.CartDiscount != nil {
		d := *s.CartDiscount
		c.cartDiscount = &d
	}
	return c
}
