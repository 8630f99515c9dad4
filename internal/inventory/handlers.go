// Package inventory serves the catalog browsing, stock alert and restock views.
package inventory

import (
	"net/http"
	"time"

	"github.com/noah-isme/vetpos/internal/catalog"
	"github.com/noah-isme/vetpos/internal/common"
	"github.com/noah-isme/vetpos/internal/stock"
)

// Handler exposes catalog reads with derived stock status.
type Handler struct {
	Catalog    catalog.Provider
	Classifier stock.Classifier
	Now        func() time.Time
}

// ItemView is a catalog item tagged with its stock status.
type ItemView struct {
	catalog.Item
	Status stock.Status `json:"status"`
}

type listResponse struct {
	Items      []ItemView        `json:"items"`
	Categories []string          `json:"categories"`
	Pagination common.Pagination `json:"pagination"`
}

type alertsResponse struct {
	Counts       stock.Counts `json:"counts"`
	Alerts       int          `json:"alerts"`
	Expired      []ItemView   `json:"expired"`
	ExpiringSoon []ItemView   `json:"expiringSoon"`
	LowStock     []ItemView   `json:"lowStock"`
	OutOfStock   []ItemView   `json:"outOfStock"`
}

func (h *Handler) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now()
}

func (h *Handler) view(items []catalog.Item, now time.Time) []ItemView {
	out := make([]ItemView, 0, len(items))
	for _, it := range items {
		out = append(out, ItemView{Item: it, Status: h.Classifier.Classify(it, now)})
	}
	return out
}

// List handles GET /catalog?q=&category=&status=&page=&limit=.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.Catalog.ListItems(r.Context())
	if err != nil {
		common.WriteError(w, err)
		return
	}
	q := r.URL.Query()
	filter := stock.Filter{Search: q.Get("q"), Category: q.Get("category")}
	var status stock.Status
	if raw := q.Get("status"); raw != "" && raw != "all" {
		status = stock.Status(raw)
		if !status.Valid() {
			common.JSONError(w, http.StatusBadRequest, "INVALID_STATUS", "unknown stock status", map[string]any{"allowed": stock.Statuses})
			return
		}
	}

	now := h.now()
	matched := make([]ItemView, 0, len(items))
	for _, v := range h.view(items, now) {
		if !filter.Match(v.Item) || (status != "" && v.Status != status) {
			continue
		}
		matched = append(matched, v)
	}
	page, perPage := common.ParsePagination(r, 50, 200)
	p := common.Pagination{Page: page, PerPage: perPage, TotalItems: len(matched)}
	start, end := p.Window()
	common.Data(w, http.StatusOK, listResponse{
		Items:      matched[start:end],
		Categories: stock.Categories(items),
		Pagination: p,
	})
}

// Alerts handles GET /catalog/alerts.
func (h *Handler) Alerts(w http.ResponseWriter, r *http.Request) {
	items, err := h.Catalog.ListItems(r.Context())
	if err != nil {
		common.WriteError(w, err)
		return
	}
	now := h.now()
	filter := stock.Filter{Search: r.URL.Query().Get("q"), Category: r.URL.Query().Get("category")}
	counts := h.Classifier.Summarize(items, now)
	common.Data(w, http.StatusOK, alertsResponse{
		Counts:       counts,
		Alerts:       counts.Alerts(),
		Expired:      h.view(h.Classifier.Select(items, stock.Expired, filter, now), now),
		ExpiringSoon: h.view(h.Classifier.Select(items, stock.ExpiringSoon, filter, now), now),
		LowStock:     h.view(h.Classifier.Select(items, stock.LowStock, filter, now), now),
		OutOfStock:   h.view(h.Classifier.Select(items, stock.OutOfStock, filter, now), now),
	})
}

// Restock handles GET /catalog/restock.
func (h *Handler) Restock(w http.ResponseWriter, r *http.Request) {
	items, err := h.Catalog.ListItems(r.Context())
	if err != nil {
		common.WriteError(w, err)
		return
	}
	plan := stock.Plan(items)
	units := 0
	for _, s := range plan {
		units += s.Quantity
	}
	common.Data(w, http.StatusOK, map[string]any{
		"suggestions": plan,
		"totalUnits":  units,
	})
}
