package common

import (
	"net/http"
	"strconv"
)

// Pagination holds pagination metadata for list responses.
type Pagination struct {
	Page       int `json:"page"`
	PerPage    int `json:"per_page"`
	TotalItems int `json:"total_items"`
}

// ParsePagination extracts page and limit query parameters, capping limit at max.
func ParsePagination(r *http.Request, defaultPerPage, max int) (page, perPage int) {
	page = 1
	perPage = defaultPerPage
	if p, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil && p > 0 {
		page = p
	}
	if l, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && l > 0 {
		perPage = l
	}
	if max > 0 && perPage > max {
		perPage = max
	}
	return
}

// Window returns the [start, end) slice bounds for page within total items.
// Pages past the end, including ones whose offset would overflow int, yield
// an empty window at TotalItems.
func (p Pagination) Window() (start, end int) {
	if p.TotalItems <= 0 || p.PerPage <= 0 {
		return 0, 0
	}
	page := p.Page
	if page < 1 {
		page = 1
	}
	if page-1 > p.TotalItems/p.PerPage {
		return p.TotalItems, p.TotalItems
	}
	start = (page - 1) * p.PerPage
	if start > p.TotalItems {
		start = p.TotalItems
	}
	if p.PerPage >= p.TotalItems-start {
		return start, p.TotalItems
	}
	return start, start + p.PerPage
}
