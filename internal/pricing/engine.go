package pricing

import "github.com/shopspring/decimal"

// Money is a decimal currency amount. Amounts produced by this package are
// rounded to cents.
type Money = decimal.Decimal

var hundred = decimal.NewFromInt(100)

// Round rounds m to two decimal places, halves rounded up.
func Round(m Money) Money {
	return m.Round(2)
}

// NonNegative floors m at zero.
func NonNegative(m Money) Money {
	if m.IsNegative() {
		return decimal.Zero
	}
	return m
}

// PercentOff returns amount reduced by pct percent, floored at zero.
func PercentOff(amount Money, pct decimal.Decimal) Money {
	factor := decimal.NewFromInt(1).Sub(pct.Div(hundred))
	return NonNegative(amount.Mul(factor))
}

// FixedOff returns amount reduced by value, floored at zero.
func FixedOff(amount, value Money) Money {
	return NonNegative(amount.Sub(value))
}

// Line describes a cart line used for pricing calculation.
type Line struct {
	Qty                 int
	UnitPrice           Money
	DiscountedUnitPrice Money
}

// Gross is the undiscounted line amount.
func (l Line) Gross() Money {
	if l.Qty <= 0 {
		return decimal.Zero
	}
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Qty)))
}

// Net is the discounted line amount rounded to cents.
func (l Line) Net() Money {
	if l.Qty <= 0 {
		return decimal.Zero
	}
	return Round(NonNegative(l.DiscountedUnitPrice).Mul(decimal.NewFromInt(int64(l.Qty))))
}

// Adjuster maps an amount to its discounted value.
type Adjuster func(Money) Money

// Summary aggregates computed pricing components.
type Summary struct {
	Subtotal     Money
	LineDiscount Money
	CartDiscount Money
	Tax          Money
	Total        Money
}

// Compute calculates cart totals. cartDiscount may be nil when no whole-cart
// discount applies; a negative tax rate is treated as zero.
func Compute(lines []Line, cartDiscount Adjuster, taxRate decimal.Decimal) Summary {
	subtotal := decimal.Zero
	net := decimal.Zero
	for _, l := range lines {
		subtotal = subtotal.Add(l.Gross())
		net = net.Add(l.Net())
	}
	subtotal = Round(subtotal)
	lineDiscount := NonNegative(subtotal.Sub(net))

	cartOff := decimal.Zero
	if cartDiscount != nil {
		discounted := NonNegative(cartDiscount(net))
		if discounted.GreaterThan(net) {
			discounted = net
		}
		cartOff = Round(net.Sub(discounted))
	}
	taxable := NonNegative(net.Sub(cartOff))
	if taxRate.IsNegative() {
		taxRate = decimal.Zero
	}
	tax := Round(taxable.Mul(taxRate))
	return Summary{
		Subtotal:     subtotal,
		LineDiscount: lineDiscount,
		CartDiscount: cartOff,
		Tax:          tax,
		Total:        Round(taxable.Add(tax)),
	}
}
