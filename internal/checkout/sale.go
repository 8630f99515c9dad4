package checkout

import (
	"time"

	"github.com/noah-isme/vetpos/internal/cart"
	"github.com/noah-isme/vetpos/internal/pricing"
)

// Sale is a completed transaction as handed to the persistence sink.
type Sale struct {
	ID                   string           `json:"id"`
	CartID               string           `json:"cartId"`
	CashierID            string           `json:"cashierId,omitempty"`
	CompletedAt          time.Time        `json:"completedAt"`
	Lines                []cart.LineTotal `json:"lines"`
	Subtotal             pricing.Money    `json:"subtotal"`
	PerLineDiscountTotal pricing.Money    `json:"perLineDiscountTotal"`
	CartDiscountID       string           `json:"cartDiscountId,omitempty"`
	CartDiscountAmount   pricing.Money    `json:"cartDiscountAmount"`
	TaxRate              pricing.Money    `json:"taxRate"`
	TaxAmount            pricing.Money    `json:"taxAmount"`
	Total                pricing.Money    `json:"total"`
	Payment              PaymentRecord    `json:"payment"`
	CustomerEmail        string           `json:"customerEmail,omitempty"`
}

// NewSale assembles the sale record for a finalized cart.
func NewSale(id string, c *cart.Cart, totals cart.Totals, payment PaymentRecord, completedAt time.Time) Sale {
	return Sale{
		ID:                   id,
		CartID:               c.ID,
		CompletedAt:          completedAt.UTC(),
		Lines:                totals.Lines,
		Subtotal:             totals.Subtotal,
		PerLineDiscountTotal: totals.PerLineDiscountTotal,
		CartDiscountID:       totals.CartDiscountID,
		CartDiscountAmount:   totals.CartDiscountAmount,
		TaxRate:              totals.TaxRate,
		TaxAmount:            totals.TaxAmount,
		Total:                totals.Total,
		Payment:              payment,
	}
}

// DiscountTotal is everything taken off the subtotal.
func (s Sale) DiscountTotal() pricing.Money {
	return s.PerLineDiscountTotal.Add(s.CartDiscountAmount)
}

// ItemCount is the number of units sold.
func (s Sale) ItemCount() int {
	n := 0
	for _, l := range s.Lines {
		n += l.Quantity
	}
	return n
}
