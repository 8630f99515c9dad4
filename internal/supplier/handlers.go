package supplier

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/noah-isme/vetpos/internal/common"
)

var errorMappings = []common.ErrorMapping{
	{Target: ErrNotFound, Code: "NOT_FOUND", Status: http.StatusNotFound},
	{Target: ErrInvalidSupplier, Code: "INVALID_SUPPLIER", Status: http.StatusUnprocessableEntity},
	{Target: ErrInvalidOrder, Code: "INVALID_PURCHASE_ORDER", Status: http.StatusUnprocessableEntity},
	{Target: ErrInvalidTransition, Code: "INVALID_TRANSITION", Status: http.StatusConflict},
}

// Handler exposes suppliers and purchase orders.
type Handler struct {
	Svc *Service
}

type supplierRequest struct {
	ID            string `json:"id"`
	Name          string `json:"name" validate:"required,max=120"`
	ContactPerson string `json:"contactPerson" validate:"max=120"`
	Email         string `json:"email" validate:"omitempty,email"`
	Phone         string `json:"phone" validate:"max=40"`
	Address       string `json:"address" validate:"max=240"`
	Status        Status `json:"status" validate:"omitempty,oneof=active inactive"`
}

type draftRequest struct {
	SupplierID string                     `json:"supplierId"`
	ItemIDs    []string                   `json:"itemIds"`
	UnitCosts  map[string]decimal.Decimal `json:"unitCosts"`
}

type draftResponse struct {
	Orders     []PurchaseOrder `json:"orders"`
	Unassigned []string        `json:"unassigned"`
}

type statusRequest struct {
	Status OrderStatus `json:"status" validate:"required"`
}

type receiveRequest struct {
	Items map[string]int `json:"items" validate:"required,min=1"`
}

// ListSuppliers handles GET /suppliers?q=.
func (h *Handler) ListSuppliers(w http.ResponseWriter, r *http.Request) {
	all, err := h.Svc.Store.ListSuppliers(r.Context())
	if err != nil {
		common.WriteError(w, err, errorMappings...)
		return
	}
	q := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("q")))
	out := make([]Supplier, 0, len(all))
	for _, s := range all {
		if q != "" && !strings.Contains(strings.ToLower(s.Name), q) &&
			!strings.Contains(strings.ToLower(s.ContactPerson), q) &&
			!strings.Contains(strings.ToLower(s.Email), q) {
			continue
		}
		out = append(out, s)
	}
	common.Data(w, http.StatusOK, out)
}

// GetSupplier handles GET /suppliers/{id}.
func (h *Handler) GetSupplier(w http.ResponseWriter, r *http.Request) {
	s, err := h.Svc.Store.GetSupplier(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		common.WriteError(w, err, errorMappings...)
		return
	}
	common.Data(w, http.StatusOK, s)
}

// CreateSupplier handles POST /suppliers. A missing id is generated and a
// missing status defaults to active.
func (h *Handler) CreateSupplier(w http.ResponseWriter, r *http.Request) {
	var payload supplierRequest
	if err := common.DecodeJSON(r, &payload); err != nil {
		common.WriteError(w, err)
		return
	}
	sup := Supplier{
		ID:            strings.TrimSpace(payload.ID),
		Name:          strings.TrimSpace(payload.Name),
		ContactPerson: strings.TrimSpace(payload.ContactPerson),
		Email:         strings.TrimSpace(payload.Email),
		Phone:         strings.TrimSpace(payload.Phone),
		Address:       strings.TrimSpace(payload.Address),
		Status:        payload.Status,
	}
	if sup.ID == "" {
		sup.ID = uuid.NewString()
	}
	if sup.Status == "" {
		sup.Status = Active
	}
	saved, err := h.Svc.Store.UpsertSupplier(r.Context(), sup)
	if err != nil {
		common.WriteError(w, err, errorMappings...)
		return
	}
	common.Data(w, http.StatusCreated, saved)
}

// ListOrders handles GET /purchase-orders?status=.
func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) {
	status := OrderStatus(strings.TrimSpace(r.URL.Query().Get("status")))
	if status != "" && !status.Valid() {
		common.JSONError(w, http.StatusBadRequest, "INVALID_STATUS", "unknown purchase order status", map[string]any{"allowed": OrderStatuses})
		return
	}
	orders, err := h.Svc.Store.ListOrders(r.Context(), status)
	if err != nil {
		common.WriteError(w, err, errorMappings...)
		return
	}
	common.Data(w, http.StatusOK, orders)
}

// GetOrder handles GET /purchase-orders/{id}.
func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	o, err := h.Svc.Store.GetOrder(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		common.WriteError(w, err, errorMappings...)
		return
	}
	common.Data(w, http.StatusOK, o)
}

// Draft handles POST /purchase-orders, drafting orders from the restock plan.
func (h *Handler) Draft(w http.ResponseWriter, r *http.Request) {
	var payload draftRequest
	if err := common.DecodeJSON(r, &payload); err != nil {
		common.WriteError(w, err)
		return
	}
	orders, unassigned, err := h.Svc.Draft(r.Context(), DraftRequest{
		SupplierID: strings.TrimSpace(payload.SupplierID),
		ItemIDs:    payload.ItemIDs,
		UnitCosts:  payload.UnitCosts,
	})
	if errors.Is(err, ErrNothingToOrder) {
		common.JSONError(w, http.StatusUnprocessableEntity, "NOTHING_TO_ORDER", "no restock suggestions match an active supplier",
			map[string]any{"unassigned": nonNil(unassigned)})
		return
	}
	if err != nil {
		common.WriteError(w, err, errorMappings...)
		return
	}
	common.Data(w, http.StatusCreated, draftResponse{Orders: orders, Unassigned: nonNil(unassigned)})
}

// UpdateStatus handles PATCH /purchase-orders/{id}.
func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var payload statusRequest
	if err := common.DecodeJSON(r, &payload); err != nil {
		common.WriteError(w, err)
		return
	}
	o, err := h.Svc.UpdateStatus(r.Context(), chi.URLParam(r, "id"), payload.Status)
	if err != nil {
		common.WriteError(w, err, errorMappings...)
		return
	}
	common.Data(w, http.StatusOK, o)
}

// Receive handles POST /purchase-orders/{id}/deliveries.
func (h *Handler) Receive(w http.ResponseWriter, r *http.Request) {
	var payload receiveRequest
	if err := common.DecodeJSON(r, &payload); err != nil {
		common.WriteError(w, err)
		return
	}
	o, err := h.Svc.Receive(r.Context(), chi.URLParam(r, "id"), payload.Items)
	if err != nil {
		common.WriteError(w, err, errorMappings...)
		return
	}
	common.Data(w, http.StatusOK, o)
}

func nonNil(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	return ids
}
