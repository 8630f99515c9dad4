package checkout

import (
	"fmt"
	"strings"
	"time"

	"github.com/noah-isme/vetpos/internal/pricing"
)

const receiptWidth = 40

// Receipt is the customer-facing rendering of a sale.
type Receipt struct {
	Sale      Sale   `json:"sale"`
	StoreName string `json:"storeName"`
	Currency  string `json:"currency"`
}

// Subject is used as the email subject line.
func (r Receipt) Subject() string {
	return fmt.Sprintf("%s receipt %s", r.store(), shortID(r.Sale.ID))
}

func (r Receipt) store() string {
	if r.StoreName == "" {
		return "VetPOS"
	}
	return r.StoreName
}

func (r Receipt) money(m pricing.Money) string {
	if r.Currency == "" {
		return m.StringFixed(2)
	}
	return r.Currency + " " + m.StringFixed(2)
}

// Text renders a fixed-width plain text receipt for printing or email.
func (r Receipt) Text() string {
	var b strings.Builder
	rule := strings.Repeat("-", receiptWidth)
	s := r.Sale

	b.WriteString(center(r.store()) + "\n")
	fmt.Fprintf(&b, "Receipt: %s\n", shortID(s.ID))
	fmt.Fprintf(&b, "Date:    %s\n", s.CompletedAt.Format(time.DateTime))
	if s.CashierID != "" {
		fmt.Fprintf(&b, "Cashier: %s\n", s.CashierID)
	}
	b.WriteString(rule + "\n")
	for _, l := range s.Lines {
		b.WriteString(l.Name + "\n")
		fmt.Fprintf(&b, "%s\n", columns(fmt.Sprintf("  %d x %s", l.Quantity, l.DiscountedUnitPrice.StringFixed(2)), r.money(l.LineTotal)))
		if !l.DiscountedUnitPrice.Equal(l.UnitPrice) {
			fmt.Fprintf(&b, "  (was %s)\n", l.UnitPrice.StringFixed(2))
		}
	}
	b.WriteString(rule + "\n")
	b.WriteString(columns("Subtotal", r.money(s.Subtotal)) + "\n")
	if s.DiscountTotal().IsPositive() {
		b.WriteString(columns("Discounts", "-"+r.money(s.DiscountTotal())) + "\n")
	}
	b.WriteString(columns(fmt.Sprintf("Tax (%s%%)", s.TaxRate.Shift(2).String()), r.money(s.TaxAmount)) + "\n")
	b.WriteString(columns("TOTAL", r.money(s.Total)) + "\n")
	b.WriteString(rule + "\n")
	b.WriteString(columns("Paid by", string(s.Payment.Method)) + "\n")
	if s.Payment.AmountTendered != nil {
		b.WriteString(columns("Tendered", r.money(*s.Payment.AmountTendered)) + "\n")
		b.WriteString(columns("Change", r.money(s.Payment.ChangeDue)) + "\n")
	}
	b.WriteString("\n" + center("Thank you for your visit!") + "\n")
	return b.String()
}

func columns(left, right string) string {
	gap := receiptWidth - len(left) - len(right)
	if gap < 1 {
		gap = 1
	}
	return left + strings.Repeat(" ", gap) + right
}

func center(s string) string {
	pad := (receiptWidth - len(s)) / 2
	if pad <= 0 {
		return s
	}
	return strings.Repeat(" ", pad) + s
}

func shortID(id string) string {
	if len(id) > 8 {
		return strings.ToUpper(id[:8])
	}
	return strings.ToUpper(id)
}
