// Package supplier keeps supplier records and the purchase orders raised
// against them from the restock plan.
package supplier

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrInvalidSupplier   = errors.New("invalid supplier")
	ErrInvalidOrder      = errors.New("invalid purchase order")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrNothingToOrder    = errors.New("nothing to order")
)

// Status marks whether a supplier still takes orders.
type Status string

const (
	Active   Status = "active"
	Inactive Status = "inactive"
)

// Supplier is a vendor that catalog items reference by SupplierID.
type Supplier struct {
	ID               string     `json:"id"`
	Name             string     `json:"name"`
	ContactPerson    string     `json:"contactPerson"`
	Email            string     `json:"email"`
	Phone            string     `json:"phone"`
	Address          string     `json:"address"`
	Status           Status     `json:"status"`
	LastDeliveryDate *time.Time `json:"lastDeliveryDate,omitempty"`
}

// Validate checks the supplier invariants.
func (s Supplier) Validate() error {
	switch {
	case strings.TrimSpace(s.ID) == "":
		return fmt.Errorf("%w: id is required", ErrInvalidSupplier)
	case strings.TrimSpace(s.Name) == "":
		return fmt.Errorf("%w: name is required", ErrInvalidSupplier)
	case s.Status != Active && s.Status != Inactive:
		return fmt.Errorf("%w: unknown status %q", ErrInvalidSupplier, s.Status)
	}
	return nil
}
