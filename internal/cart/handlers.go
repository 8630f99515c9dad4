package cart

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/noah-isme/vetpos/internal/catalog"
	"github.com/noah-isme/vetpos/internal/common"
	"github.com/noah-isme/vetpos/internal/discount"
)

// ErrorMappings renders cart errors; checkout reuses them.
var ErrorMappings = []common.ErrorMapping{
	{Target: ErrInvalidQuantity, Code: "INVALID_QUANTITY", Status: http.StatusUnprocessableEntity},
	{Target: ErrInsufficientStock, Code: "INSUFFICIENT_STOCK", Status: http.StatusConflict},
	{Target: ErrAlreadyFinalized, Code: "CART_FINALIZED", Status: http.StatusConflict},
	{Target: ErrNotFound, Code: "NOT_FOUND", Status: http.StatusNotFound},
	{Target: catalog.ErrNotFound, Code: "NOT_FOUND", Status: http.StatusNotFound},
	{Target: discount.ErrNotFound, Code: "NOT_FOUND", Status: http.StatusNotFound},
}

// Handler wires the cart service to HTTP.
type Handler struct {
	Svc *Service
}

// View is the cart payload returned to the till.
type View struct {
	ID           string             `json:"id"`
	State        State              `json:"state"`
	Lines        []Line             `json:"lines"`
	CartDiscount *discount.Discount `json:"cartDiscount,omitempty"`
	Totals       Totals             `json:"totals"`
}

// NewView assembles the response payload for c.
func NewView(c *Cart, totals Totals) View {
	return View{
		ID:           c.ID,
		State:        c.State(),
		Lines:        c.Lines(),
		CartDiscount: c.CartDiscount(),
		Totals:       totals,
	}
}

type addItemRequest struct {
	ItemID   string `json:"itemId" validate:"required"`
	Quantity *int   `json:"quantity"`
}

type setQuantityRequest struct {
	Quantity *int `json:"quantity" validate:"required"`
}

type applyDiscountRequest struct {
	DiscountID string `json:"discountId" validate:"required"`
}

// Create opens a new cart.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	c, err := h.Svc.Create(r.Context())
	if err != nil {
		common.WriteError(w, err, ErrorMappings...)
		return
	}
	h.respond(w, r, http.StatusCreated, c)
}

// Get returns the cart with its pricing preview.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	c, totals, err := h.Svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		common.WriteError(w, err, ErrorMappings...)
		return
	}
	common.Data(w, http.StatusOK, NewView(c, totals))
}

// AddItem adds a catalog item to the cart.
func (h *Handler) AddItem(w http.ResponseWriter, r *http.Request) {
	var payload addItemRequest
	if err := common.DecodeJSON(r, &payload); err != nil {
		common.WriteError(w, err)
		return
	}
	qty := 1
	if payload.Quantity != nil {
		qty = *payload.Quantity
	}
	c, err := h.Svc.AddItem(r.Context(), chi.URLParam(r, "id"), payload.ItemID, qty)
	h.afterMutation(w, r, c, err)
}

// UpdateItem replaces a line quantity.
func (h *Handler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	var payload setQuantityRequest
	if err := common.DecodeJSON(r, &payload); err != nil {
		common.WriteError(w, err)
		return
	}
	c, err := h.Svc.SetQuantity(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "itemId"), *payload.Quantity)
	h.afterMutation(w, r, c, err)
}

// RemoveItem drops a line.
func (h *Handler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	c, err := h.Svc.RemoveLine(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "itemId"))
	h.afterMutation(w, r, c, err)
}

// ApplyDiscount selects a whole-cart discount.
func (h *Handler) ApplyDiscount(w http.ResponseWriter, r *http.Request) {
	var payload applyDiscountRequest
	if err := common.DecodeJSON(r, &payload); err != nil {
		common.WriteError(w, err)
		return
	}
	c, err := h.Svc.ApplyDiscount(r.Context(), chi.URLParam(r, "id"), payload.DiscountID)
	h.afterMutation(w, r, c, err)
}

// RemoveDiscount clears the whole-cart discount.
func (h *Handler) RemoveDiscount(w http.ResponseWriter, r *http.Request) {
	c, err := h.Svc.ApplyDiscount(r.Context(), chi.URLParam(r, "id"), "")
	h.afterMutation(w, r, c, err)
}

// Discard deletes the cart session.
func (h *Handler) Discard(w http.ResponseWriter, r *http.Request) {
	if err := h.Svc.Discard(r.Context(), chi.URLParam(r, "id")); err != nil {
		common.WriteError(w, err, ErrorMappings...)
		return
	}
	common.NoContent(w)
}

func (h *Handler) afterMutation(w http.ResponseWriter, r *http.Request, c *Cart, err error) {
	if err != nil {
		common.WriteError(w, err, ErrorMappings...)
		return
	}
	h.respond(w, r, http.StatusOK, c)
}

func (h *Handler) respond(w http.ResponseWriter, r *http.Request, status int, c *Cart) {
	totals, err := h.Svc.Price(r.Context(), c)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.Data(w, status, NewView(c, totals))
}
