package report

import (
	"context"
	"net/http"
	"time"

	"github.com/noah-isme/vetpos/internal/checkout"
	"github.com/noah-isme/vetpos/internal/common"
)

// SaleLister reads completed sales for a time window [from, to).
type SaleLister interface {
	ListSales(ctx context.Context, from, to time.Time) ([]checkout.Sale, error)
}

// Handler serves sales reports.
type Handler struct {
	Sales SaleLister
	Now   func() time.Time
}

// SalesSummary handles GET /reports/sales?from=YYYY-MM-DD&to=YYYY-MM-DD. Both bounds
// default to today.
func (h *Handler) SalesSummary(w http.ResponseWriter, r *http.Request) {
	now := time.Now()
	if h.Now != nil {
		now = h.Now()
	}
	from, err := dateParam(r, "from", now)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	to, err := dateParam(r, "to", now)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	if to.Before(from) {
		common.JSONError(w, http.StatusUnprocessableEntity, "INVALID_RANGE", "to must not be before from", nil)
		return
	}
	sales, err := h.Sales.ListSales(r.Context(), from, to.AddDate(0, 0, 1))
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.Data(w, http.StatusOK, Summarize(sales, from, to))
}

func dateParam(r *http.Request, name string, fallback time.Time) (time.Time, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return common.DateOf(fallback), nil
	}
	t, err := common.ParseDate(raw)
	if err != nil {
		return time.Time{}, common.NewAppError("INVALID_DATE", name+" must be YYYY-MM-DD", http.StatusBadRequest, err)
	}
	return t, nil
}
