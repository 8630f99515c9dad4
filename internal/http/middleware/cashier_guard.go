package middleware

import (
	"net/http"

	"github.com/noah-isme/vetpos/internal/common"
)

// RequireCashier rejects requests that reach it without a cashier on the
// context. It must run after common.CashierMiddleware.
func RequireCashier(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := common.CashierID(r.Context()); !ok {
			common.JSONError(w, http.StatusBadRequest, "CASHIER_REQUIRED", "the "+common.CashierHeader+" header is required", nil)
			return
		}
		next.ServeHTTP(w, r)
	})
}
