// Package checkout completes sales: it validates payment against cart totals,
// finalizes the cart and produces the sale and receipt.
package checkout

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/noah-isme/vetpos/internal/cart"
	"github.com/noah-isme/vetpos/internal/pricing"
)

var (
	// ErrEmptyCart is returned when checking out a cart without lines.
	ErrEmptyCart = errors.New("cart is empty")
	// ErrRestrictedItemBlocked is returned when a restricted item is sold without a credential.
	ErrRestrictedItemBlocked = errors.New("restricted item requires credential")
	// ErrInsufficientPayment is returned when cash tendered does not cover the total.
	ErrInsufficientPayment = errors.New("insufficient payment")
	// ErrUnsupportedMethod is returned for an unknown payment method.
	ErrUnsupportedMethod = errors.New("unsupported payment method")
)

// Method is how the customer pays.
type Method string

const (
	Cash        Method = "cash"
	Card        Method = "card"
	MobileMoney Method = "mobileMoney"
)

// ParseMethod accepts the canonical names plus the hyphenated and snake case
// spellings of mobile money used by older tills.
func ParseMethod(s string) (Method, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "cash":
		return Cash, nil
	case "card":
		return Card, nil
	case "mobilemoney", "mobile-money", "mobile_money":
		return MobileMoney, nil
	}
	return "", fmt.Errorf("%q: %w", s, ErrUnsupportedMethod)
}

// Request carries the payment details for one checkout.
type Request struct {
	Method         Method
	AmountTendered *pricing.Money
	// HasRestrictedItemCredential is decided by the caller; it is never verified here.
	HasRestrictedItemCredential bool
}

// PaymentRecord is the outcome of a successful checkout.
type PaymentRecord struct {
	Method         Method         `json:"method"`
	AmountTendered *pricing.Money `json:"amountTendered,omitempty"`
	ChangeDue      pricing.Money  `json:"changeDue"`
	Total          pricing.Money  `json:"total"`
}

// Checkout validates req against totals and finalizes c. Any failure leaves
// the cart untouched so the till can correct the payment and retry.
func Checkout(c *cart.Cart, totals cart.Totals, req Request) (PaymentRecord, error) {
	switch c.State() {
	case cart.StateFinalized:
		return PaymentRecord{}, cart.ErrAlreadyFinalized
	case cart.StateEmpty:
		return PaymentRecord{}, ErrEmptyCart
	}
	if c.HasRestrictedItems() && !req.HasRestrictedItemCredential {
		return PaymentRecord{}, ErrRestrictedItemBlocked
	}

	total := totals.Total
	record := PaymentRecord{Method: req.Method, Total: total}
	switch req.Method {
	case Cash:
		if req.AmountTendered == nil {
			return PaymentRecord{}, fmt.Errorf("cash tender required: %w", ErrInsufficientPayment)
		}
		tendered := *req.AmountTendered
		if tendered.LessThan(total) {
			return PaymentRecord{}, fmt.Errorf("tendered %s, due %s: %w", tendered.StringFixed(2), total.StringFixed(2), ErrInsufficientPayment)
		}
		record.AmountTendered = &tendered
		record.ChangeDue = pricing.Round(tendered.Sub(total))
	case Card, MobileMoney:
		// Non-cash tender is charged the exact total.
		record.ChangeDue = decimal.Zero
	default:
		return PaymentRecord{}, fmt.Errorf("%q: %w", req.Method, ErrUnsupportedMethod)
	}

	if err := c.Finalize(total); err != nil {
		return PaymentRecord{}, err
	}
	return record, nil
}
