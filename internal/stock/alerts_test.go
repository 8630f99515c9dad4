package stock

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/vetpos/internal/catalog"
)

func sampleItems() []catalog.Item {
	return []catalog.Item{
		{ID: "1", Name: "Amoxicillin", Category: "Antibiotic", BatchNumber: "A123", ExpiryDate: daysFromNow(-30), QuantityOnHand: 0, ReorderThreshold: 5},
		{ID: "2", Name: "Ivermectin", Category: "Antiparasitic", BatchNumber: "B456", ExpiryDate: daysFromNow(120), QuantityOnHand: 3, ReorderThreshold: 5, MaxStock: 40},
		{ID: "3", Name: "Ketoprofen", Category: "Analgesic", BatchNumber: "C789", ExpiryDate: daysFromNow(12), QuantityOnHand: 10, ReorderThreshold: 5},
		{ID: "4", Name: "Enrofloxacin", Category: "Antibiotic", BatchNumber: "D012", QuantityOnHand: 0, ReorderThreshold: 5, MaxStock: 20},
		{ID: "5", Name: "Vitamin Supplement", Category: "Supplements", BatchNumber: "E345", QuantityOnHand: 40, ReorderThreshold: 10},
	}
}

func TestSummarize(t *testing.T) {
	counts := Summarize(sampleItems(), now)
	require.Equal(t, Counts{Expired: 1, ExpiringSoon: 1, LowStock: 1, OutOfStock: 1, InStock: 1}, counts)
	require.Equal(t, 4, counts.Alerts())
}

func TestSelectWithFilter(t *testing.T) {
	items := sampleItems()
	got := Select(items, OutOfStock, Filter{Category: "antibiotic"}, now)
	require.Len(t, got, 1)
	require.Equal(t, "4", got[0].ID)

	got = Select(items, LowStock, Filter{Search: "b45"}, now)
	require.Len(t, got, 1)
	require.Equal(t, "Ivermectin", got[0].Name)

	require.Empty(t, Select(items, LowStock, Filter{Search: "zzz", Category: "all"}, now))
}

func TestCategories(t *testing.T) {
	require.Equal(t, []string{"Analgesic", "Antibiotic", "Antiparasitic", "Supplements"}, Categories(sampleItems()))
}

func TestRestockPlan(t *testing.T) {
	plan := Plan(sampleItems())
	require.Len(t, plan, 3)
	require.Equal(t, "1", plan[0].Item.ID)
	require.Equal(t, "4", plan[1].Item.ID)
	require.Equal(t, 20, plan[1].Quantity)
	require.Equal(t, "2", plan[2].Item.ID)
	require.Equal(t, 37, plan[2].Quantity)
	require.Equal(t, 2, plan[2].Shortfall)
}

func TestSuggestedQuantityFloorsAtThreshold(t *testing.T) {
	require.Equal(t, 5, SuggestedQuantity(catalog.Item{QuantityOnHand: 4, ReorderThreshold: 5, MaxStock: 6}))
	require.Equal(t, 0, SuggestedQuantity(catalog.Item{QuantityOnHand: 9, MaxStock: 6}))
}
