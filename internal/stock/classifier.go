// Package stock derives availability and safety status for catalog items.
package stock

import (
	"time"

	"github.com/noah-isme/vetpos/internal/catalog"
	"github.com/noah-isme/vetpos/internal/common"
)

// Status is the derived stock tag of a catalog item.
type Status string

const (
	Expired      Status = "expired"
	OutOfStock   Status = "outOfStock"
	ExpiringSoon Status = "expiringSoon"
	LowStock     Status = "lowStock"
	InStock      Status = "inStock"
)

// Statuses lists every status in precedence order.
var Statuses = []Status{Expired, OutOfStock, ExpiringSoon, LowStock, InStock}

// ExpiryWindowDays is the look-ahead used for the expiringSoon tag.
const ExpiryWindowDays = 30

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	for _, candidate := range Statuses {
		if s == candidate {
			return true
		}
	}
	return false
}

// Classifier classifies items with a configurable expiry window.
type Classifier struct {
	WindowDays int
}

// Classify uses the default 30-day expiry window.
func Classify(item catalog.Item, now time.Time) Status {
	return Classifier{WindowDays: ExpiryWindowDays}.Classify(item, now)
}

// Classify returns the first matching status: expired, outOfStock,
// expiringSoon, lowStock, inStock. Dates compare as calendar days.
func (c Classifier) Classify(item catalog.Item, now time.Time) Status {
	window := c.WindowDays
	if window < 0 {
		window = 0
	}
	today := common.DateOf(now)
	expiry, expires := item.Expiry()

	if expires && expiry.Before(today) {
		return Expired
	}
	if item.QuantityOnHand == 0 {
		return OutOfStock
	}
	if expires && !expiry.After(today.AddDate(0, 0, window)) {
		return ExpiringSoon
	}
	if item.QuantityOnHand > 0 && item.QuantityOnHand <= item.ReorderThreshold {
		return LowStock
	}
	return InStock
}
