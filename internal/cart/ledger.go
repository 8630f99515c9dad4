// Package cart holds the point-of-sale cart ledger and its session storage.
package cart

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/noah-isme/vetpos/internal/catalog"
	"github.com/noah-isme/vetpos/internal/discount"
	"github.com/noah-isme/vetpos/internal/pricing"
)

var (
	// ErrInvalidQuantity is returned when a requested quantity is below one.
	ErrInvalidQuantity = errors.New("invalid quantity")
	// ErrInsufficientStock is returned when a line would exceed the quantity on hand.
	ErrInsufficientStock = errors.New("insufficient stock")
	// ErrAlreadyFinalized is returned for any mutation of a completed sale.
	ErrAlreadyFinalized = errors.New("cart already finalized")
	// ErrNotFound indicates the cart session does not exist or expired.
	ErrNotFound = errors.New("cart not found")
)

// State is the lifecycle position of a cart.
type State string

const (
	StateEmpty     State = "empty"
	StateBuilding  State = "building"
	StateFinalized State = "finalized"
)

// Line is one catalog item and its quantity. Lines belong to a single cart.
type Line struct {
	Item     catalog.Item `json:"item"`
	Quantity int          `json:"quantity"`
}

// Cart is the ledger of a single transaction. It is owned by one till session
// and is not safe for concurrent mutation.
type Cart struct {
	ID           string
	lines        []Line
	cartDiscount *discount.Discount
	taxRate      decimal.Decimal
	finalized    bool
	total        pricing.Money
}

// New returns an empty cart taxed at taxRate (e.g. 0.10).
func New(id string, taxRate decimal.Decimal) *Cart {
	return &Cart{ID: id, taxRate: taxRate}
}

// State reports the lifecycle state.
func (c *Cart) State() State {
	switch {
	case c.finalized:
		return StateFinalized
	case len(c.lines) == 0:
		return StateEmpty
	default:
		return StateBuilding
	}
}

// TaxRate returns the configured tax rate.
func (c *Cart) TaxRate() decimal.Decimal { return c.taxRate }

// FinalTotal is the total the cart was finalized with.
func (c *Cart) FinalTotal() (pricing.Money, bool) {
	return c.total, c.finalized
}

// Lines returns a copy of the lines in insertion order.
func (c *Cart) Lines() []Line {
	out := make([]Line, len(c.lines))
	copy(out, c.lines)
	return out
}

// CartDiscount returns the selected whole-cart discount, if any.
func (c *Cart) CartDiscount() *discount.Discount {
	if c.cartDiscount == nil {
		return nil
	}
	d := *c.cartDiscount
	return &d
}

// HasRestrictedItems reports whether any line requires a credential to sell.
func (c *Cart) HasRestrictedItems() bool {
	for _, l := range c.lines {
		if l.Item.Restricted {
			return true
		}
	}
	return false
}

func (c *Cart) index(itemID string) int {
	for i, l := range c.lines {
		if l.Item.ID == itemID {
			return i
		}
	}
	return -1
}

func (c *Cart) guard() error {
	if c.finalized {
		return ErrAlreadyFinalized
	}
	return nil
}

func checkStock(item catalog.Item, qty int) error {
	if qty > item.QuantityOnHand {
		return fmt.Errorf("item %s: requested %d, on hand %d: %w", item.ID, qty, item.QuantityOnHand, ErrInsufficientStock)
	}
	return nil
}

// AddItem appends a line for item or increments its existing line. The item
// snapshot on the line is refreshed so later stock checks use the newest
// quantity on hand.
func (c *Cart) AddItem(item catalog.Item, qty int) error {
	if err := c.guard(); err != nil {
		return err
	}
	if qty < 1 {
		return fmt.Errorf("quantity %d: %w", qty, ErrInvalidQuantity)
	}
	if i := c.index(item.ID); i >= 0 {
		next := c.lines[i].Quantity + qty
		if err := checkStock(item, next); err != nil {
			return err
		}
		c.lines[i] = Line{Item: item, Quantity: next}
		return nil
	}
	if err := checkStock(item, qty); err != nil {
		return err
	}
	c.lines = append(c.lines, Line{Item: item, Quantity: qty})
	return nil
}

// SetLineQuantity replaces a line quantity; qty <= 0 removes the line. Setting
// the quantity of an item not in the cart is a no-op.
func (c *Cart) SetLineQuantity(itemID string, qty int) error {
	if err := c.guard(); err != nil {
		return err
	}
	if qty <= 0 {
		return c.RemoveLine(itemID)
	}
	i := c.index(itemID)
	if i < 0 {
		return nil
	}
	if err := checkStock(c.lines[i].Item, qty); err != nil {
		return err
	}
	c.lines[i].Quantity = qty
	return nil
}

// RemoveLine drops the line for itemID if present.
func (c *Cart) RemoveLine(itemID string) error {
	if err := c.guard(); err != nil {
		return err
	}
	if i := c.index(itemID); i >= 0 {
		c.lines = append(c.lines[:i], c.lines[i+1:]...)
	}
	return nil
}

// ApplyCartDiscount selects d as the whole-cart discount; nil clears it.
func (c *Cart) ApplyCartDiscount(d *discount.Discount) error {
	if err := c.guard(); err != nil {
		return err
	}
	if d == nil {
		c.cartDiscount = nil
		return nil
	}
	selected := *d
	c.cartDiscount = &selected
	return nil
}

// Clear empties the cart so the till can start over.
func (c *Cart) Clear() error {
	if err := c.guard(); err != nil {
		return err
	}
	c.lines = nil
	c.cartDiscount = nil
	return nil
}

// Finalize marks the sale complete with total. Further mutation fails.
func (c *Cart) Finalize(total pricing.Money) error {
	if err := c.guard(); err != nil {
		return err
	}
	c.finalized = true
	c.total = total
	return nil
}

// LineTotal is the priced view of one line.
type LineTotal struct {
	ItemID              string        `json:"itemId"`
	Name                string        `json:"name"`
	Quantity            int           `json:"quantity"`
	UnitPrice           pricing.Money `json:"unitPrice"`
	DiscountedUnitPrice pricing.Money `json:"discountedUnitPrice"`
	DiscountID          string        `json:"discountId,omitempty"`
	LineTotal           pricing.Money `json:"lineTotal"`
	Restricted          bool          `json:"restricted"`
}

// Totals is the read-only pricing projection of a cart.
type Totals struct {
	Lines                []LineTotal   `json:"lines"`
	Subtotal             pricing.Money `json:"subtotal"`
	PerLineDiscountTotal pricing.Money `json:"perLineDiscountTotal"`
	CartDiscountID       string        `json:"cartDiscountId,omitempty"`
	CartDiscountAmount   pricing.Money `json:"cartDiscountAmount"`
	TaxRate              pricing.Money `json:"taxRate"`
	TaxAmount            pricing.Money `json:"taxAmount"`
	Total                pricing.Money `json:"total"`
}

// ComputeTotals prices the cart against the discount catalog at now. It never
// mutates the cart. Per-item and whole-cart discounts do not stack: while an
// active whole-cart discount is selected, lines are priced at unit price.
func (c *Cart) ComputeTotals(catalogDiscounts []discount.Discount, now time.Time) Totals {
	var cartOff pricing.Adjuster
	cartDiscountID := ""
	if c.cartDiscount != nil && c.cartDiscount.Status(now) == discount.Active {
		d := *c.cartDiscount
		cartOff = d.Apply
		cartDiscountID = d.ID
	}

	lines := make([]pricing.Line, 0, len(c.lines))
	views := make([]LineTotal, 0, len(c.lines))
	for _, l := range c.lines {
		price := l.Item.UnitPrice
		view := LineTotal{
			ItemID:     l.Item.ID,
			Name:       l.Item.Name,
			Quantity:   l.Quantity,
			UnitPrice:  price,
			Restricted: l.Item.Restricted,
		}
		discounted := price
		if cartOff == nil {
			pick := discount.BestFor(l.Item.ID, price, l.Quantity, catalogDiscounts, now)
			discounted = pick.DiscountedUnitPrice
			if pick.Discount != nil {
				view.DiscountID = pick.Discount.ID
			}
		}
		pl := pricing.Line{Qty: l.Quantity, UnitPrice: price, DiscountedUnitPrice: discounted}
		view.DiscountedUnitPrice = discounted
		view.LineTotal = pl.Net()
		lines = append(lines, pl)
		views = append(views, view)
	}

	summary := pricing.Compute(lines, cartOff, c.taxRate)
	return Totals{
		Lines:                views,
		Subtotal:             summary.Subtotal,
		PerLineDiscountTotal: summary.LineDiscount,
		CartDiscountID:       cartDiscountID,
		CartDiscountAmount:   summary.CartDiscount,
		TaxRate:              c.taxRate,
		TaxAmount:            summary.Tax,
		Total:                summary.Total,
	}
}
