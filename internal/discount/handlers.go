package discount

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/noah-isme/vetpos/internal/common"
)

var errorMappings = []common.ErrorMapping{
	{Target: ErrInvalidConfig, Code: "INVALID_DISCOUNT", Status: http.StatusUnprocessableEntity},
	{Target: ErrNotFound, Code: "NOT_FOUND", Status: http.StatusNotFound},
}

// Handler exposes the discount catalog.
type Handler struct {
	Store Store
	Now   func() time.Time
}

// View is a discount with its status derived at request time.
type View struct {
	Discount
	Status Status `json:"status"`
}

type createRequest struct {
	ID        string          `json:"id"`
	Name      string          `json:"name" validate:"required,max=120"`
	Kind      Kind            `json:"kind" validate:"required,oneof=percentage fixedAmount"`
	Value     decimal.Decimal `json:"value"`
	Scope     Scope           `json:"scope" validate:"required,oneof=allItems specificItems"`
	ItemIDs   []string        `json:"itemIds"`
	StartDate string          `json:"startDate" validate:"required,datetime=2006-01-02"`
	EndDate   string          `json:"endDate" validate:"required,datetime=2006-01-02"`
}

func (h *Handler) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now()
}

// List handles GET /discounts?status=active|inactive|expired.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.Store.ListDiscounts(r.Context())
	if err != nil {
		common.WriteError(w, err, errorMappings...)
		return
	}
	want := Status(strings.TrimSpace(r.URL.Query().Get("status")))
	now := h.now()
	out := make([]View, 0, len(items))
	for _, d := range items {
		v := View{Discount: d, Status: d.Status(now)}
		if want != "" && v.Status != want {
			continue
		}
		out = append(out, v)
	}
	common.Data(w, http.StatusOK, out)
}

// Create handles POST /discounts.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var payload createRequest
	if err := common.DecodeJSON(r, &payload); err != nil {
		common.WriteError(w, err)
		return
	}
	// Layout already checked by the datetime validator.
	start, _ := common.ParseDate(payload.StartDate)
	end, _ := common.ParseDate(payload.EndDate)
	d, err := h.Store.CreateDiscount(r.Context(), Discount{
		ID:        strings.TrimSpace(payload.ID),
		Name:      strings.TrimSpace(payload.Name),
		Kind:      payload.Kind,
		Value:     payload.Value,
		Scope:     payload.Scope,
		ItemIDs:   payload.ItemIDs,
		StartDate: start,
		EndDate:   end,
	})
	if err != nil {
		common.WriteError(w, err, errorMappings...)
		return
	}
	common.Data(w, http.StatusCreated, View{Discount: d, Status: d.Status(h.now())})
}

// Delete handles DELETE /discounts/{id}.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.DeleteDiscount(r.Context(), chi.URLParam(r, "id")); err != nil {
		common.WriteError(w, err, errorMappings...)
		return
	}
	common.NoContent(w)
}
