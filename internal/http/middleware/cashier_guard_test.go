package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/noah-isme/vetpos/internal/common"
	"github.com/noah-isme/vetpos/internal/http/middleware"
)

func TestRequireCashierMissing(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/carts/c1/checkout", nil)
	rec := httptest.NewRecorder()
	handler := middleware.RequireCashier(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestRequireCashierPresent(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/carts/c1/checkout", nil)
	req.Header.Set(common.CashierHeader, "cashier-7")
	rec := httptest.NewRecorder()
	handler := common.CashierMiddleware(middleware.RequireCashier(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, _ := common.CashierID(r.Context())
		if id != "cashier-7" {
			t.Fatalf("unexpected cashier %q", id)
		}
		w.WriteHeader(http.StatusOK)
	})))
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}
