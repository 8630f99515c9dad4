// Package report aggregates completed sales for the back office.
package report

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/noah-isme/vetpos/internal/checkout"
	"github.com/noah-isme/vetpos/internal/common"
	"github.com/noah-isme/vetpos/internal/pricing"
)

// MethodTotal is the takings for one payment method.
type MethodTotal struct {
	Method checkout.Method `json:"method"`
	Count  int             `json:"count"`
	Total  pricing.Money   `json:"total"`
}

// DayTotal is the takings for one calendar day.
type DayTotal struct {
	Date  string        `json:"date"`
	Count int           `json:"count"`
	Total pricing.Money `json:"total"`
}

// Summary aggregates sales within an inclusive date range.
type Summary struct {
	From          string        `json:"from"`
	To            string        `json:"to"`
	SaleCount     int           `json:"saleCount"`
	ItemsSold     int           `json:"itemsSold"`
	Subtotal      pricing.Money `json:"subtotal"`
	DiscountTotal pricing.Money `json:"discountTotal"`
	TaxTotal      pricing.Money `json:"taxTotal"`
	GrossTotal    pricing.Money `json:"grossTotal"`
	AverageSale   pricing.Money `json:"averageSale"`
	ByMethod      []MethodTotal `json:"byMethod"`
	ByDay         []DayTotal    `json:"byDay"`
}

// Summarize totals the sales completed on calendar days from..to inclusive.
// Sales outside the range are ignored.
func Summarize(sales []checkout.Sale, from, to time.Time) Summary {
	start, end := common.DateOf(from), common.DateOf(to)
	if end.Before(start) {
		start, end = end, start
	}
	sum := Summary{
		From:          start.Format(common.DateLayout),
		To:            end.Format(common.DateLayout),
		Subtotal:      decimal.Zero,
		DiscountTotal: decimal.Zero,
		TaxTotal:      decimal.Zero,
		GrossTotal:    decimal.Zero,
		AverageSale:   decimal.Zero,
	}
	methods := map[checkout.Method]*MethodTotal{}
	days := map[string]*DayTotal{}
	for _, s := range sales {
		day := common.DateOf(s.CompletedAt)
		if day.Before(start) || day.After(end) {
			continue
		}
		sum.SaleCount++
		sum.ItemsSold += s.ItemCount()
		sum.Subtotal = sum.Subtotal.Add(s.Subtotal)
		sum.DiscountTotal = sum.DiscountTotal.Add(s.DiscountTotal())
		sum.TaxTotal = sum.TaxTotal.Add(s.TaxAmount)
		sum.GrossTotal = sum.GrossTotal.Add(s.Total)

		m, ok := methods[s.Payment.Method]
		if !ok {
			m = &MethodTotal{Method: s.Payment.Method, Total: decimal.Zero}
			methods[s.Payment.Method] = m
		}
		m.Count++
		m.Total = m.Total.Add(s.Total)

		key := day.Format(common.DateLayout)
		d, ok := days[key]
		if !ok {
			d = &DayTotal{Date: key, Total: decimal.Zero}
			days[key] = d
		}
		d.Count++
		d.Total = d.Total.Add(s.Total)
	}
	if sum.SaleCount > 0 {
		sum.AverageSale = pricing.Round(sum.GrossTotal.Div(decimal.NewFromInt(int64(sum.SaleCount))))
	}

	sum.ByMethod = make([]MethodTotal, 0, len(methods))
	for _, m := range methods {
		sum.ByMethod = append(sum.ByMethod, *m)
	}
	sort.Slice(sum.ByMethod, func(i, j int) bool { return sum.ByMethod[i].Method < sum.ByMethod[j].Method })
	sum.ByDay = make([]DayTotal, 0, len(days))
	for _, d := range days {
		sum.ByDay = append(sum.ByDay, *d)
	}
	sort.Slice(sum.ByDay, func(i, j int) bool { return sum.ByDay[i].Date < sum.ByDay[j].Date })
	return sum
}
