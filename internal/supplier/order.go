package supplier

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/noah-isme/vetpos/internal/common"
	"github.com/noah-isme/vetpos/internal/pricing"
	"github.com/noah-isme/vetpos/internal/stock"
)

// OrderStatus is the lifecycle state of a purchase order.
type OrderStatus string

const (
	Draft              OrderStatus = "draft"
	Pending            OrderStatus = "pending"
	Shipped            OrderStatus = "shipped"
	PartiallyDelivered OrderStatus = "partiallyDelivered"
	Delivered          OrderStatus = "delivered"
	Cancelled          OrderStatus = "cancelled"
)

// OrderStatuses lists every status in lifecycle order.
var OrderStatuses = []OrderStatus{Draft, Pending, Shipped, PartiallyDelivered, Delivered, Cancelled}

// Valid reports whether s is a known status.
func (s OrderStatus) Valid() bool {
	for _, v := range OrderStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// manual holds the moves a buyer may request directly. Delivery states are
// reached by receiving goods.
var manual = map[OrderStatus][]OrderStatus{
	Draft:   {Pending, Cancelled},
	Pending: {Shipped, Cancelled},
}

func receivable(s OrderStatus) bool {
	return s == Pending || s == Shipped || s == PartiallyDelivered
}

// Line is one item on a purchase order.
type Line struct {
	ItemID   string        `json:"itemId"`
	Name     string        `json:"name"`
	Quantity int           `json:"quantity"`
	UnitCost pricing.Money `json:"unitCost"`
	Received int           `json:"received"`
}

// Total is Quantity × UnitCost rounded to cents.
func (l Line) Total() pricing.Money {
	return pricing.Round(l.UnitCost.Mul(decimal.NewFromInt(int64(l.Quantity))))
}

// Outstanding is the quantity still to be delivered.
func (l Line) Outstanding() int {
	return l.Quantity - l.Received
}

// PurchaseOrder is a restock order placed with one supplier.
type PurchaseOrder struct {
	ID               string        `json:"id"`
	SupplierID       string        `json:"supplierId"`
	Status           OrderStatus   `json:"status"`
	Lines            []Line        `json:"lines"`
	TotalAmount      pricing.Money `json:"totalAmount"`
	OrderDate        time.Time     `json:"orderDate"`
	ExpectedDelivery time.Time     `json:"expectedDelivery"`
	UpdatedAt        time.Time     `json:"updatedAt"`
}

// Validate checks the order invariants.
func (o PurchaseOrder) Validate() error {
	if o.SupplierID == "" {
		return fmt.Errorf("%w: supplier is required", ErrInvalidOrder)
	}
	if !o.Status.Valid() {
		return fmt.Errorf("%w: unknown status %q", ErrInvalidOrder, o.Status)
	}
	if len(o.Lines) == 0 {
		return fmt.Errorf("%w: no lines", ErrInvalidOrder)
	}
	seen := make(map[string]bool, len(o.Lines))
	for _, l := range o.Lines {
		switch {
		case seen[l.ItemID]:
			return fmt.Errorf("%w: item %s listed twice", ErrInvalidOrder, l.ItemID)
		case l.Quantity <= 0:
			return fmt.Errorf("%w: item %s quantity must be positive", ErrInvalidOrder, l.ItemID)
		case l.UnitCost.IsNegative():
			return fmt.Errorf("%w: item %s unit cost is negative", ErrInvalidOrder, l.ItemID)
		case l.Received < 0 || l.Received > l.Quantity:
			return fmt.Errorf("%w: item %s received %d of %d", ErrInvalidOrder, l.ItemID, l.Received, l.Quantity)
		}
		seen[l.ItemID] = true
	}
	return nil
}

func (o *PurchaseOrder) recompute() {
	total := decimal.Zero
	for _, l := range o.Lines {
		total = total.Add(l.Total())
	}
	o.TotalAmount = total
}

// FromPlan groups restock suggestions by supplier into draft orders, ordered
// by supplier id. costs overrides the unit cost per item id; other items are
// costed at their unit price. Items with no supplier are returned unassigned.
func FromPlan(plan []stock.Suggestion, costs map[string]pricing.Money, now time.Time, leadTime time.Duration) (orders []PurchaseOrder, unassigned []string) {
	bySupplier := make(map[string]*PurchaseOrder)
	for _, s := range plan {
		if s.Quantity <= 0 {
			continue
		}
		if s.Item.SupplierID == "" {
			unassigned = append(unassigned, s.Item.ID)
			continue
		}
		cost, ok := costs[s.Item.ID]
		if !ok {
			cost = s.Item.UnitPrice
		}
		po := bySupplier[s.Item.SupplierID]
		if po == nil {
			po = &PurchaseOrder{
				SupplierID:       s.Item.SupplierID,
				Status:           Draft,
				OrderDate:        common.DateOf(now),
				ExpectedDelivery: common.DateOf(now.Add(leadTime)),
				UpdatedAt:        now,
			}
			bySupplier[s.Item.SupplierID] = po
		}
		po.Lines = append(po.Lines, Line{ItemID: s.Item.ID, Name: s.Item.Name, Quantity: s.Quantity, UnitCost: cost})
	}
	orders = make([]PurchaseOrder, 0, len(bySupplier))
	for _, po := range bySupplier {
		po.recompute()
		orders = append(orders, *po)
	}
	sort.Slice(orders, func(i, j int) bool { return orders[i].SupplierID < orders[j].SupplierID })
	return orders, unassigned
}

// Transition moves the order to status to. Moving to Delivered receives every
// outstanding quantity; the applied quantities are returned.
func (o *PurchaseOrder) Transition(to OrderStatus, now time.Time) (map[string]int, error) {
	if to == Delivered && receivable(o.Status) {
		outstanding := make(map[string]int, len(o.Lines))
		for _, l := range o.Lines {
			if n := l.Outstanding(); n > 0 {
				outstanding[l.ItemID] = n
			}
		}
		return o.Receive(outstanding, now)
	}
	for _, allowed := range manual[o.Status] {
		if allowed == to {
			o.Status = to
			o.UpdatedAt = now
			return nil, nil
		}
	}
	return nil, fmt.Errorf("%w: %s to %s", ErrInvalidTransition, o.Status, to)
}

// Receive books delivered quantities against the lines. Either every quantity
// applies or none does. The order ends partiallyDelivered or delivered.
func (o *PurchaseOrder) Receive(delivered map[string]int, now time.Time) (map[string]int, error) {
	if !receivable(o.Status) {
		return nil, fmt.Errorf("%w: cannot receive a %s order", ErrInvalidTransition, o.Status)
	}
	if len(delivered) == 0 {
		return nil, fmt.Errorf("%w: nothing delivered", ErrInvalidOrder)
	}
	index := make(map[string]int, len(o.Lines))
	for i, l := range o.Lines {
		index[l.ItemID] = i
	}
	for id, qty := range delivered {
		i, ok := index[id]
		switch {
		case !ok:
			return nil, fmt.Errorf("%w: item %s is not on the order", ErrInvalidOrder, id)
		case qty <= 0:
			return nil, fmt.Errorf("%w: item %s quantity must be positive", ErrInvalidOrder, id)
		case qty > o.Lines[i].Outstanding():
			return nil, fmt.Errorf("%w: item %s has %d outstanding", ErrInvalidOrder, id, o.Lines[i].Outstanding())
		}
	}
	applied := make(map[string]int, len(delivered))
	complete := true
	for i := range o.Lines {
		if qty := delivered[o.Lines[i].ItemID]; qty > 0 {
			o.Lines[i].Received += qty
			applied[o.Lines[i].ItemID] = qty
		}
		if o.Lines[i].Outstanding() > 0 {
			complete = false
		}
	}
	o.Status = PartiallyDelivered
	if complete {
		o.Status = Delivered
	}
	o.UpdatedAt = now
	return applied, nil
}
