package repo

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/noah-isme/vetpos/internal/catalog"
	"github.com/noah-isme/vetpos/internal/common"
	"github.com/noah-isme/vetpos/internal/discount"
	"github.com/noah-isme/vetpos/internal/supplier"
)

// SeedItems is the demo clinic catalog. Expiry dates are relative to now so
// the stock alert views always have something to show.
func SeedItems(now time.Time) []catalog.Item {
	day := func(offset int) *time.Time {
		t := common.DateOf(now).AddDate(0, 0, offset)
		return &t
	}
	price := decimal.RequireFromString
	return []catalog.Item{
		{ID: "1", Name: "Antibiotic X", Category: "Medication", UnitPrice: price("24.99"), QuantityOnHand: 50,
			ReorderThreshold: 10, MaxStock: 100, BatchNumber: "AX-2301", ExpiryDate: day(240), Restricted: true, SupplierID: "vetsupply"},
		{ID: "2", Name: "Pain Reliever Y", Category: "Medication", UnitPrice: price("15.50"), QuantityOnHand: 25,
			ReorderThreshold: 30, MaxStock: 80, BatchNumber: "PR-1187", ExpiryDate: day(20), Restricted: true, SupplierID: "vetsupply"},
		{ID: "3", Name: "Flea Treatment", Category: "Parasite Control", UnitPrice: price("32.75"), QuantityOnHand: 30,
			ReorderThreshold: 10, MaxStock: 60, BatchNumber: "FT-0442", ExpiryDate: day(400), SupplierID: "petcare"},
		{ID: "4", Name: "Vitamin Supplement", Category: "Supplements", UnitPrice: price("18.20"), QuantityOnHand: 40,
			ReorderThreshold: 15, MaxStock: 80, BatchNumber: "VS-7781", ExpiryDate: day(-5), SupplierID: "petcare"},
		{ID: "5", Name: "Dental Chews", Category: "Supplements", UnitPrice: price("9.99"), QuantityOnHand: 0,
			ReorderThreshold: 20, MaxStock: 120, BatchNumber: "DC-3310", SupplierID: "petcare"},
	}
}

// SeedDiscounts are the demo promotions.
func SeedDiscounts(now time.Time) []discount.Discount {
	today := common.DateOf(now)
	return []discount.Discount{
		{ID: "summer-sale", Name: "Summer Sale", Kind: discount.Percentage, Value: decimal.NewFromInt(15),
			Scope: discount.AllItems, StartDate: today.AddDate(0, 0, -7), EndDate: today.AddDate(0, 0, 30)},
		{ID: "flea-special", Name: "Flea Treatment Special", Kind: discount.FixedAmount, Value: decimal.NewFromInt(5),
			Scope: discount.SpecificItems, ItemIDs: []string{"3"}, StartDate: today.AddDate(0, 0, -7), EndDate: today.AddDate(0, 0, 14)},
	}
}

// SeedSuppliers are the vendors the demo catalog items reference.
func SeedSuppliers() []supplier.Supplier {
	return []supplier.Supplier{
		{ID: "vetsupply", Name: "VetMed Supplies Inc.", ContactPerson: "John Smith", Email: "john@vetmed.example",
			Phone: "+1 555 123 4567", Address: "123 Animal Ave, Pet City", Status: supplier.Active},
		{ID: "petcare", Name: "Animal Health Distributors", ContactPerson: "Sarah Johnson", Email: "sarah@ahd.example",
			Phone: "+1 555 987 6543", Address: "456 Veterinary Way, Animal Town", Status: supplier.Active},
	}
}
