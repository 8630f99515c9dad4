package discount

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

var now = time.Date(2025, time.July, 15, 9, 0, 0, 0, time.UTC)

func day(offset int) time.Time {
	return now.AddDate(0, 0, offset)
}

func percent(id string, value int64, start, end int, items ...string) Discount {
	d := Discount{ID: id, Kind: Percentage, Value: decimal.NewFromInt(value), Scope: AllItems, StartDate: day(start), EndDate: day(end)}
	if len(items) > 0 {
		d.Scope = SpecificItems
		d.ItemIDs = items
	}
	return d
}

func fixed(id, value string, start, end int, items ...string) Discount {
	d := Discount{ID: id, Kind: FixedAmount, Value: decimal.RequireFromString(value), Scope: AllItems, StartDate: day(start), EndDate: day(end)}
	if len(items) > 0 {
		d.Scope = SpecificItems
		d.ItemIDs = items
	}
	return d
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	cases := map[string]Discount{
		"negative value":      fixed("a", "-1", 0, 1),
		"percent above 100":   percent("b", 101, 0, 1),
		"start after end":     percent("c", 10, 2, 1),
		"unknown kind":        {Kind: "bogo", Scope: AllItems, StartDate: day(0), EndDate: day(1)},
		"unknown scope":       {Kind: Percentage, Scope: "category", StartDate: day(0), EndDate: day(1)},
		"specific with empty": {Kind: Percentage, Scope: SpecificItems, ItemIDs: []string{" "}, StartDate: day(0), EndDate: day(1)},
	}
	for name, d := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := New(d)
			require.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}

func TestNewNormalises(t *testing.T) {
	d, err := New(percent("a", 100, 0, 0, "3", "3", "1"))
	require.NoError(t, err)
	require.Equal(t, []string{"3", "1"}, d.ItemIDs)
	require.Equal(t, 0, d.StartDate.Hour())
}

func TestStatus(t *testing.T) {
	require.Equal(t, Inactive, percent("a", 10, 1, 5).Status(now))
	require.Equal(t, Active, percent("a", 10, 0, 0).Status(now))
	require.Equal(t, Active, percent("a", 10, -5, 0).Status(now.Add(14*time.Hour)))
	require.Equal(t, Expired, percent("a", 10, -5, -1).Status(now))
}

func TestApplicableKeepsCatalogOrder(t *testing.T) {
	catalog := []Discount{
		percent("expired", 50, -10, -1),
		fixed("flea", "5", -1, 1, "3"),
		percent("summer", 15, -1, 1),
		percent("future", 30, 1, 9),
	}
	got := Applicable("3", catalog, now)
	require.Len(t, got, 2)
	require.Equal(t, "flea", got[0].ID)
	require.Equal(t, "summer", got[1].ID)

	got = Applicable("1", catalog, now)
	require.Len(t, got, 1)
	require.Equal(t, "summer", got[0].ID)
}

func TestBestForPicksLowestPrice(t *testing.T) {
	catalog := []Discount{
		percent("summer", 15, -1, 1),
		fixed("flea", "5", -1, 1, "3"),
	}
	pick := BestFor("3", decimal.RequireFromString("32.75"), 1, catalog, now)
	require.NotNil(t, pick.Discount)
	require.Equal(t, "flea", pick.Discount.ID)
	require.Equal(t, "27.75", pick.DiscountedUnitPrice.StringFixed(2))

	pick = BestFor("1", decimal.RequireFromString("24.99"), 2, catalog, now)
	require.Equal(t, "summer", pick.Discount.ID)
	require.Equal(t, "21.2415", pick.DiscountedUnitPrice.String())
}

func TestBestForTieKeepsFirst(t *testing.T) {
	catalog := []Discount{
		fixed("first", "5", -1, 1),
		percent("second", 50, -1, 1),
	}
	pick := BestFor("x", decimal.NewFromInt(10), 3, catalog, now)
	require.Equal(t, "first", pick.Discount.ID)
}

func TestBestForNoMatch(t *testing.T) {
	pick := BestFor("x", decimal.NewFromInt(10), 1, []Discount{percent("future", 10, 1, 2)}, now)
	require.Nil(t, pick.Discount)
	require.True(t, pick.DiscountedUnitPrice.Equal(decimal.NewFromInt(10)))
}

func TestFixedAmountFloorsAtZero(t *testing.T) {
	pick := BestFor("x", decimal.NewFromInt(3), 1, []Discount{fixed("big", "10", -1, 1)}, now)
	require.True(t, pick.DiscountedUnitPrice.IsZero())
}

func TestBestForBoundsProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		cents := rapid.Int64Range(0, 1_000_000).Draw(t, "cents")
		price := decimal.New(cents, -2)
		n := rapid.IntRange(0, 5).Draw(t, "discounts")
		catalog := make([]Discount, 0, n)
		for i := 0; i < n; i++ {
			if rapid.Bool().Draw(t, "isPercent") {
				catalog = append(catalog, percent("p", rapid.Int64Range(0, 100).Draw(t, "pct"), -1, 1))
			} else {
				catalog = append(catalog, Discount{ID: "f", Kind: FixedAmount, Scope: AllItems,
					Value: decimal.New(rapid.Int64Range(0, 2_000_000).Draw(t, "off"), -2), StartDate: day(-1), EndDate: day(1)})
			}
		}
		pick := BestFor("item", price, rapid.IntRange(1, 20).Draw(t, "qty"), catalog, now)
		if pick.DiscountedUnitPrice.IsNegative() || pick.DiscountedUnitPrice.GreaterThan(price) {
			t.Fatalf("discounted price %s outside [0, %s]", pick.DiscountedUnitPrice, price)
		}
	})
}
