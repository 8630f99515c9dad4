package supplier

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/vetpos/internal/catalog"
	"github.com/noah-isme/vetpos/internal/pricing"
	"github.com/noah-isme/vetpos/internal/stock"
)

var now = time.Date(2025, time.July, 15, 9, 0, 0, 0, time.UTC)

func money(v string) pricing.Money { return decimal.RequireFromString(v) }

type fixedCatalog []catalog.Item

func (f fixedCatalog) ListItems(context.Context) ([]catalog.Item, error) { return f, nil }

func (f fixedCatalog) GetItem(_ context.Context, id string) (catalog.Item, error) {
	for _, it := range f {
		if it.ID == id {
			return it, nil
		}
	}
	return catalog.Item{}, catalog.ErrNotFound
}

func restockCatalog() fixedCatalog {
	return fixedCatalog{
		{ID: "1", Name: "Antibiotic X", UnitPrice: money("24.99"), QuantityOnHand: 5, ReorderThreshold: 10, MaxStock: 100, SupplierID: "vetsupply"},
		{ID: "2", Name: "Pain Reliever Y", UnitPrice: money("12.50"), QuantityOnHand: 30, ReorderThreshold: 30, MaxStock: 80, SupplierID: "vetsupply"},
		{ID: "3", Name: "Flea Treatment", UnitPrice: money("32.75"), QuantityOnHand: 2, ReorderThreshold: 10, MaxStock: 60, SupplierID: "petcare"},
		{ID: "4", Name: "Vitamin Supplement", UnitPrice: money("18.20"), QuantityOnHand: 40, ReorderThreshold: 15, SupplierID: "petcare"},
		{ID: "5", Name: "Dental Chews", UnitPrice: money("9.99"), QuantityOnHand: 0, ReorderThreshold: 5},
		{ID: "6", Name: "Oatmeal Shampoo", UnitPrice: money("7.00"), QuantityOnHand: 1, ReorderThreshold: 4, MaxStock: 10, SupplierID: "ghost"},
	}
}

func TestFromPlanGroupsBySupplier(t *testing.T) {
	plan := stock.Plan(restockCatalog())
	orders, unassigned := FromPlan(plan, map[string]pricing.Money{"1": money("15.00")}, now, DefaultLeadTime)

	require.Equal(t, []string{"5"}, unassigned)
	require.Len(t, orders, 3)
	require.Equal(t, []string{"ghost", "petcare", "vetsupply"},
		[]string{orders[0].SupplierID, orders[1].SupplierID, orders[2].SupplierID})

	vet := orders[2]
	require.Equal(t, Draft, vet.Status)
	require.Len(t, vet.Lines, 2)
	require.Equal(t, "1", vet.Lines[0].ItemID)
	require.Equal(t, 95, vet.Lines[0].Quantity)
	require.Equal(t, "15.00", vet.Lines[0].UnitCost.StringFixed(2))
	require.Equal(t, "2", vet.Lines[1].ItemID)
	require.Equal(t, 50, vet.Lines[1].Quantity)
	require.Equal(t, "2050.00", vet.TotalAmount.StringFixed(2))

	require.Equal(t, "1899.50", orders[1].TotalAmount.StringFixed(2))
	require.Equal(t, time.Date(2025, time.July, 29, 0, 0, 0, 0, time.UTC), vet.ExpectedDelivery)
	require.Equal(t, time.Date(2025, time.July, 15, 0, 0, 0, 0, time.UTC), vet.OrderDate)
}

func TestFromPlanEmpty(t *testing.T) {
	orders, unassigned := FromPlan(nil, nil, now, DefaultLeadTime)
	require.Empty(t, orders)
	require.Empty(t, unassigned)
}

func pendingOrder() PurchaseOrder {
	return PurchaseOrder{
		ID: "po-1", SupplierID: "vetsupply", Status: Pending,
		Lines: []Line{
			{ItemID: "1", Name: "Antibiotic X", Quantity: 95, UnitCost: money("15.00")},
			{ItemID: "2", Name: "Pain Reliever Y", Quantity: 50, UnitCost: money("12.50")},
		},
	}
}

func TestReceivePartialThenDelivered(t *testing.T) {
	o := pendingOrder()

	applied, err := o.Receive(map[string]int{"1": 40}, now)
	require.NoError(t, err)
	require.Equal(t, map[string]int{"1": 40}, applied)
	require.Equal(t, PartiallyDelivered, o.Status)
	require.Equal(t, 55, o.Lines[0].Outstanding())

	_, err = o.Receive(map[string]int{"1": 60}, now)
	require.ErrorIs(t, err, ErrInvalidOrder)
	require.Equal(t, 40, o.Lines[0].Received)

	_, err = o.Receive(map[string]int{"1": 1, "9": 1}, now)
	require.ErrorIs(t, err, ErrInvalidOrder)
	require.Equal(t, 40, o.Lines[0].Received)

	applied, err = o.Transition(Delivered, now)
	require.NoError(t, err)
	require.Equal(t, map[string]int{"1": 55, "2": 50}, applied)
	require.Equal(t, Delivered, o.Status)

	_, err = o.Transition(Cancelled, now)
	require.ErrorIs(t, err, ErrInvalidTransition)
	_, err = o.Receive(map[string]int{"1": 1}, now)
	require.ErrorIs(t, err, ErrInvalidTransition)
}

func TestTransitions(t *testing.T) {
	cases := []struct {
		from, to OrderStatus
		ok       bool
	}{
		{Draft, Pending, true},
		{Draft, Cancelled, true},
		{Draft, Shipped, false},
		{Draft, Delivered, false},
		{Pending, Shipped, true},
		{Pending, Cancelled, true},
		{Pending, Draft, false},
		{Pending, PartiallyDelivered, false},
		{Shipped, Delivered, true},
		{Shipped, Cancelled, false},
		{PartiallyDelivered, Delivered, true},
		{Cancelled, Pending, false},
		{Delivered, Pending, false},
	}
	for _, tc := range cases {
		o := pendingOrder()
		o.Status = tc.from
		_, err := o.Transition(tc.to, now)
		if tc.ok {
			require.NoError(t, err, "%s -> %s", tc.from, tc.to)
			require.Equal(t, tc.to, o.Status)
		} else {
			require.ErrorIs(t, err, ErrInvalidTransition, "%s -> %s", tc.from, tc.to)
			require.Equal(t, tc.from, o.Status)
		}
	}
}

func TestOrderValidate(t *testing.T) {
	o := pendingOrder()
	require.NoError(t, o.Validate())

	o.Lines = append(o.Lines, o.Lines[0])
	require.ErrorIs(t, o.Validate(), ErrInvalidOrder)

	o = pendingOrder()
	o.Lines[1].Quantity = 0
	require.ErrorIs(t, o.Validate(), ErrInvalidOrder)

	o = pendingOrder()
	o.Status = "lost"
	require.ErrorIs(t, o.Validate(), ErrInvalidOrder)
}
