package catalog

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/noah-isme/vetpos/internal/common"
	"github.com/noah-isme/vetpos/internal/pricing"
)

// ErrInvalidItem is returned when a catalog item violates its invariants.
var ErrInvalidItem = errors.New("invalid catalog item")

// ErrNotFound indicates the requested catalog item does not exist.
var ErrNotFound = errors.New("catalog item not found")

// Item is a sellable product as supplied by the catalog provider. The engine
// only ever reads a snapshot of QuantityOnHand; it never decrements it.
type Item struct {
	ID               string        `json:"id"`
	Name             string        `json:"name"`
	Category         string        `json:"category"`
	UnitPrice        pricing.Money `json:"unitPrice"`
	QuantityOnHand   int           `json:"quantityOnHand"`
	ReorderThreshold int           `json:"reorderThreshold"`
	MaxStock         int           `json:"maxStock,omitempty"`
	BatchNumber      string        `json:"batchNumber"`
	ExpiryDate       *time.Time    `json:"expiryDate,omitempty"`
	Restricted       bool          `json:"restricted"`
	SupplierID       string        `json:"supplierId,omitempty"`
}

// Validate checks the item invariants.
func (it Item) Validate() error {
	switch {
	case strings.TrimSpace(it.ID) == "":
		return fmt.Errorf("id required: %w", ErrInvalidItem)
	case it.UnitPrice.IsNegative():
		return fmt.Errorf("item %s: negative unit price: %w", it.ID, ErrInvalidItem)
	case it.QuantityOnHand < 0:
		return fmt.Errorf("item %s: negative quantity on hand: %w", it.ID, ErrInvalidItem)
	case it.ReorderThreshold < 0:
		return fmt.Errorf("item %s: negative reorder threshold: %w", it.ID, ErrInvalidItem)
	case it.MaxStock < 0:
		return fmt.Errorf("item %s: negative max stock: %w", it.ID, ErrInvalidItem)
	}
	return nil
}

// Expiry returns the calendar expiry date and whether the item expires at all.
func (it Item) Expiry() (time.Time, bool) {
	if it.ExpiryDate == nil || it.ExpiryDate.IsZero() {
		return time.Time{}, false
	}
	return common.DateOf(*it.ExpiryDate), true
}
