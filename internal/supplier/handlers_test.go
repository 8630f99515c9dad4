package supplier

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
)

func newSupplierRouter() (http.Handler, fixture) {
	f := newFixture()
	h := &Handler{Svc: f.svc}
	r := chi.NewRouter()
	r.Get("/suppliers", h.ListSuppliers)
	r.Post("/suppliers", h.CreateSupplier)
	r.Get("/suppliers/{id}", h.GetSupplier)
	r.Get("/purchase-orders", h.ListOrders)
	r.Post("/purchase-orders", h.Draft)
	r.Get("/purchase-orders/{id}", h.GetOrder)
	r.Patch("/purchase-orders/{id}", h.UpdateStatus)
	r.Post("/purchase-orders/{id}/deliveries", h.Receive)
	return r, f
}

func serve(h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(method, target, strings.NewReader(body)))
	return rr
}

func decodeData(t *testing.T, rr *httptest.ResponseRecorder, dst any) {
	t.Helper()
	envelope := struct {
		Data any `json:"data"`
	}{Data: dst}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &envelope))
}

func TestSupplierRoutes(t *testing.T) {
	r, _ := newSupplierRouter()

	rr := serve(r, http.MethodPost, "/suppliers", `{"name":"Farm Vet Wholesale","email":"sales@farmvet.example"}`)
	require.Equal(t, http.StatusCreated, rr.Code)
	var created Supplier
	decodeData(t, rr, &created)
	require.NotEmpty(t, created.ID)
	require.Equal(t, Active, created.Status)

	rr = serve(r, http.MethodPost, "/suppliers", `{"name":"Bad","email":"not-an-email"}`)
	require.Equal(t, http.StatusUnprocessableEntity, rr.Code)

	rr = serve(r, http.MethodGet, "/suppliers?q=farm", "")
	require.Equal(t, http.StatusOK, rr.Code)
	var list []Supplier
	decodeData(t, rr, &list)
	require.Len(t, list, 1)
	require.Equal(t, created.ID, list[0].ID)

	rr = serve(r, http.MethodGet, "/suppliers/missing", "")
	require.Equal(t, http.StatusNotFound, rr.Code)
}

func TestPurchaseOrderRoutes(t *testing.T) {
	r, f := newSupplierRouter()

	rr := serve(r, http.MethodPost, "/purchase-orders", `{"supplierId":"vetsupply","unitCosts":{"1":"15.00"}}`)
	require.Equal(t, http.StatusCreated, rr.Code)
	var drafted draftResponse
	decodeData(t, rr, &drafted)
	require.Len(t, drafted.Orders, 1)
	require.Empty(t, drafted.Unassigned)
	po := drafted.Orders[0]
	require.Equal(t, "2050.00", po.TotalAmount.StringFixed(2))

	rr = serve(r, http.MethodPatch, "/purchase-orders/"+po.ID, `{"status":"shipped"}`)
	require.Equal(t, http.StatusConflict, rr.Code)

	rr = serve(r, http.MethodPatch, "/purchase-orders/"+po.ID, `{"status":"pending"}`)
	require.Equal(t, http.StatusOK, rr.Code)

	rr = serve(r, http.MethodPost, "/purchase-orders/"+po.ID+"/deliveries", `{"items":{"2":60}}`)
	require.Equal(t, http.StatusUnprocessableEntity, rr.Code)

	rr = serve(r, http.MethodPost, "/purchase-orders/"+po.ID+"/deliveries", `{"items":{"2":50}}`)
	require.Equal(t, http.StatusOK, rr.Code)
	var got PurchaseOrder
	decodeData(t, rr, &got)
	require.Equal(t, PartiallyDelivered, got.Status)
	require.Equal(t, map[string]int{"2": 50}, f.stock.received)

	rr = serve(r, http.MethodGet, "/purchase-orders?status=partiallyDelivered", "")
	require.Equal(t, http.StatusOK, rr.Code)
	var list []PurchaseOrder
	decodeData(t, rr, &list)
	require.Len(t, list, 1)

	rr = serve(r, http.MethodGet, "/purchase-orders?status=lost", "")
	require.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestDraftNothingToOrder(t *testing.T) {
	r, _ := newSupplierRouter()
	rr := serve(r, http.MethodPost, "/purchase-orders", `{"itemIds":["5"]}`)
	require.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	require.Contains(t, rr.Body.String(), "NOTHING_TO_ORDER")
	require.Contains(t, rr.Body.String(), `"unassigned":["5"]`)
}
