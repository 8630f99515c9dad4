package stock

import (
	"sort"
	"strings"
	"time"

	"github.com/noah-isme/vetpos/internal/catalog"
)

// Counts tallies items per alerting status.
type Counts struct {
	Expired      int `json:"expired"`
	ExpiringSoon int `json:"expiringSoon"`
	LowStock     int `json:"lowStock"`
	OutOfStock   int `json:"outOfStock"`
	InStock      int `json:"inStock"`
}

// Alerts is the number of items that need attention.
func (c Counts) Alerts() int {
	return c.Expired + c.ExpiringSoon + c.LowStock + c.OutOfStock
}

// Filter narrows item lists by free-text search and category.
type Filter struct {
	Search   string
	Category string
}

// Match reports whether item passes the filter. Search matches name or batch
// number case-insensitively; an empty or "all" category matches everything.
func (f Filter) Match(item catalog.Item) bool {
	if q := strings.ToLower(strings.TrimSpace(f.Search)); q != "" {
		if !strings.Contains(strings.ToLower(item.Name), q) && !strings.Contains(strings.ToLower(item.BatchNumber), q) {
			return false
		}
	}
	cat := strings.TrimSpace(f.Category)
	if cat == "" || strings.EqualFold(cat, "all") {
		return true
	}
	return strings.EqualFold(item.Category, cat)
}

// Summarize counts items by classified status.
func (c Classifier) Summarize(items []catalog.Item, now time.Time) Counts {
	var counts Counts
	for _, it := range items {
		switch c.Classify(it, now) {
		case Expired:
			counts.Expired++
		case OutOfStock:
			counts.OutOfStock++
		case ExpiringSoon:
			counts.ExpiringSoon++
		case LowStock:
			counts.LowStock++
		default:
			counts.InStock++
		}
	}
	return counts
}

// Select returns the items classified as status that also match filter,
// preserving input order.
func (c Classifier) Select(items []catalog.Item, status Status, filter Filter, now time.Time) []catalog.Item {
	out := make([]catalog.Item, 0)
	for _, it := range items {
		if c.Classify(it, now) == status && filter.Match(it) {
			out = append(out, it)
		}
	}
	return out
}

// Categories returns the sorted distinct categories present in items.
func Categories(items []catalog.Item) []string {
	seen := make(map[string]struct{}, len(items))
	out := make([]string, 0)
	for _, it := range items {
		if it.Category == "" {
			continue
		}
		if _, ok := seen[it.Category]; ok {
			continue
		}
		seen[it.Category] = struct{}{}
		out = append(out, it.Category)
	}
	sort.Strings(out)
	return out
}

// Summarize counts items using the default expiry window.
func Summarize(items []catalog.Item, now time.Time) Counts {
	return Classifier{WindowDays: ExpiryWindowDays}.Summarize(items, now)
}

// Select filters items using the default expiry window.
func Select(items []catalog.Item, status Status, filter Filter, now time.Time) []catalog.Item {
	return Classifier{WindowDays: ExpiryWindowDays}.Select(items, status, filter, now)
}
