package discount

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/noah-isme/vetpos/internal/pricing"
)

// Applicable returns every active discount covering itemID, in catalog order.
func Applicable(itemID string, catalog []Discount, now time.Time) []Discount {
	out := make([]Discount, 0)
	for _, d := range catalog {
		if d.Status(now) == Active && d.Covers(itemID) {
			out = append(out, d)
		}
	}
	return out
}

// Pick is the outcome of resolving the best discount for a line.
type Pick struct {
	Discount            *Discount
	DiscountedUnitPrice pricing.Money
}

// BestFor chooses the applicable discount giving the customer the lowest line
// amount; ties keep the earliest discount in catalog order. Without a match the
// unit price is returned unchanged.
func BestFor(itemID string, unitPrice pricing.Money, quantity int, catalog []Discount, now time.Time) Pick {
	best := Pick{DiscountedUnitPrice: unitPrice}
	if quantity < 1 {
		quantity = 1
	}
	qty := decimal.NewFromInt(int64(quantity))
	bestLine := unitPrice.Mul(qty)
	for _, d := range Applicable(itemID, catalog, now) {
		price := d.Apply(unitPrice)
		line := price.Mul(qty)
		if best.Discount == nil || line.LessThan(bestLine) {
			chosen := d
			best = Pick{Discount: &chosen, DiscountedUnitPrice: price}
			bestLine = line
		}
	}
	return best
}
