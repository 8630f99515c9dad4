package checkout

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/noah-isme/vetpos/internal/cart"
	"github.com/noah-isme/vetpos/internal/common"
)

var errorMappings = append([]common.ErrorMapping{
	{Target: ErrEmptyCart, Code: "EMPTY_CART", Status: http.StatusUnprocessableEntity},
	{Target: ErrRestrictedItemBlocked, Code: "RESTRICTED_ITEM_BLOCKED", Status: http.StatusForbidden},
	{Target: ErrInsufficientPayment, Code: "INSUFFICIENT_PAYMENT", Status: http.StatusUnprocessableEntity},
	{Target: ErrUnsupportedMethod, Code: "UNSUPPORTED_PAYMENT_METHOD", Status: http.StatusUnprocessableEntity},
}, cart.ErrorMappings...)

// Handler exposes checkout over HTTP.
type Handler struct {
	Svc *Service
}

type response struct {
	Sale    Sale          `json:"sale"`
	Payment PaymentRecord `json:"payment"`
	Receipt string        `json:"receipt"`
}

// Checkout handles POST /carts/{id}/checkout.
func (h *Handler) Checkout(w http.ResponseWriter, r *http.Request) {
	var in Input
	if err := common.DecodeJSON(r, &in); err != nil {
		common.WriteError(w, err)
		return
	}
	cashierID, _ := common.CashierID(r.Context())
	receipt, err := h.Svc.Complete(r.Context(), chi.URLParam(r, "id"), cashierID, in)
	if err != nil {
		common.WriteError(w, err, errorMappings...)
		return
	}
	common.Data(w, http.StatusCreated, response{
		Sale:    receipt.Sale,
		Payment: receipt.Sale.Payment,
		Receipt: receipt.Text(),
	})
}
