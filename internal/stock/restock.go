package stock

import (
	"sort"

	"github.com/noah-isme/vetpos/internal/catalog"
)

// Suggestion is a proposed replenishment order line.
type Suggestion struct {
	Item      catalog.Item `json:"item"`
	Quantity  int          `json:"suggestedQuantity"`
	Shortfall int          `json:"shortfall"`
}

// NeedsRestock reports whether the item is at or below its reorder threshold.
func NeedsRestock(item catalog.Item) bool {
	return item.QuantityOnHand <= item.ReorderThreshold
}

// SuggestedQuantity tops the item up to MaxStock, ordering at least the reorder
// threshold.
func SuggestedQuantity(item catalog.Item) int {
	qty := item.MaxStock - item.QuantityOnHand
	if qty < item.ReorderThreshold {
		qty = item.ReorderThreshold
	}
	if qty < 0 {
		return 0
	}
	return qty
}

// Plan builds suggestions for every item that needs restock, most urgent first
// (lowest cover ratio of on-hand to threshold, then id).
func Plan(items []catalog.Item) []Suggestion {
	out := make([]Suggestion, 0)
	for _, it := range items {
		if !NeedsRestock(it) {
			continue
		}
		out = append(out, Suggestion{
			Item:      it,
			Quantity:  SuggestedQuantity(it),
			Shortfall: it.ReorderThreshold - it.QuantityOnHand,
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		ci, cj := cover(out[i].Item), cover(out[j].Item)
		if ci != cj {
			return ci < cj
		}
		return out[i].Item.ID < out[j].Item.ID
	})
	return out
}

func cover(item catalog.Item) float64 {
	if item.ReorderThreshold <= 0 {
		return float64(item.QuantityOnHand)
	}
	return float64(item.QuantityOnHand) / float64(item.ReorderThreshold)
}
