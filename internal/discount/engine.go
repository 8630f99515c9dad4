// Package discount resolves which promotional discounts apply to a sale.
package discount

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/noah-isme/vetpos/internal/common"
	"github.com/noah-isme/vetpos/internal/pricing"
)

// ErrInvalidConfig is returned when a discount definition violates its invariants.
var ErrInvalidConfig = errors.New("invalid discount config")

// ErrNotFound indicates the requested discount does not exist.
var ErrNotFound = errors.New("discount not found")

// Kind selects how Value reduces a price.
type Kind string

const (
	Percentage  Kind = "percentage"
	FixedAmount Kind = "fixedAmount"
)

// Scope selects which catalog items a discount covers.
type Scope string

const (
	AllItems      Scope = "allItems"
	SpecificItems Scope = "specificItems"
)

// Status is derived from the validity window on every query.
type Status string

const (
	Inactive Status = "inactive"
	Active   Status = "active"
	Expired  Status = "expired"
)

var maxPercent = decimal.NewFromInt(100)

// Discount is a promotional price reduction valid between two inclusive
// calendar dates.
type Discount struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Kind      Kind            `json:"kind"`
	Value     decimal.Decimal `json:"value"`
	Scope     Scope           `json:"scope"`
	ItemIDs   []string        `json:"itemIds,omitempty"`
	StartDate time.Time       `json:"startDate"`
	EndDate   time.Time       `json:"endDate"`
}

// New validates d and returns it with dates truncated to calendar days and
// item ids de-duplicated.
func New(d Discount) (Discount, error) {
	d.StartDate = common.DateOf(d.StartDate)
	d.EndDate = common.DateOf(d.EndDate)
	if d.Scope == AllItems {
		d.ItemIDs = nil
	} else {
		d.ItemIDs = uniqueIDs(d.ItemIDs)
	}
	if err := d.Validate(); err != nil {
		return Discount{}, err
	}
	return d, nil
}

// Validate checks the discount invariants.
func (d Discount) Validate() error {
	switch d.Kind {
	case Percentage:
		if d.Value.GreaterThan(maxPercent) {
			return fmt.Errorf("percentage above 100: %w", ErrInvalidConfig)
		}
	case FixedAmount:
	default:
		return fmt.Errorf("unknown kind %q: %w", d.Kind, ErrInvalidConfig)
	}
	if d.Value.IsNegative() {
		return fmt.Errorf("negative value: %w", ErrInvalidConfig)
	}
	switch d.Scope {
	case AllItems:
	case SpecificItems:
		if len(d.ItemIDs) == 0 {
			return fmt.Errorf("specific scope without items: %w", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("unknown scope %q: %w", d.Scope, ErrInvalidConfig)
	}
	if common.DateOf(d.StartDate).After(common.DateOf(d.EndDate)) {
		return fmt.Errorf("start date after end date: %w", ErrInvalidConfig)
	}
	return nil
}

// Status derives the runtime status at now.
func (d Discount) Status(now time.Time) Status {
	today := common.DateOf(now)
	if today.After(common.DateOf(d.EndDate)) {
		return Expired
	}
	if !today.Before(common.DateOf(d.StartDate)) {
		return Active
	}
	return Inactive
}

// Covers reports whether the discount scope includes itemID.
func (d Discount) Covers(itemID string) bool {
	if d.Scope == AllItems {
		return true
	}
	for _, id := range d.ItemIDs {
		if id == itemID {
			return true
		}
	}
	return false
}

// Apply returns amount after the discount, never below zero.
func (d Discount) Apply(amount pricing.Money) pricing.Money {
	switch d.Kind {
	case Percentage:
		return pricing.PercentOff(amount, d.Value)
	case FixedAmount:
		return pricing.FixedOff(amount, d.Value)
	default:
		return amount
	}
}

func uniqueIDs(ids []string) []string {
	if len(ids) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
