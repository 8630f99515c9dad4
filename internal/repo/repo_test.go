package repo

import (
	"context"
	"io/fs"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/vetpos/internal/catalog"
	"github.com/noah-isme/vetpos/internal/checkout"
	"github.com/noah-isme/vetpos/internal/discount"
)

var now = time.Date(2025, time.July, 15, 9, 0, 0, 0, time.UTC)

func TestSeedDataIsValid(t *testing.T) {
	for _, it := range SeedItems(now) {
		require.NoError(t, it.Validate(), it.ID)
	}
	for _, d := range SeedDiscounts(now) {
		_, err := discount.New(d)
		require.NoError(t, err, d.ID)
		require.Equal(t, discount.Active, d.Status(now))
	}
	suppliers := map[string]bool{}
	for _, s := range SeedSuppliers() {
		require.NoError(t, s.Validate(), s.ID)
		suppliers[s.ID] = true
	}
	for _, it := range SeedItems(now) {
		require.True(t, suppliers[it.SupplierID], "item %s supplier %q", it.ID, it.SupplierID)
	}
}

func TestMemoryReceiveStock(t *testing.T) {
	m := NewMemory(SeedItems(now)...)
	ctx := context.Background()

	require.ErrorIs(t, m.ReceiveStock(ctx, map[string]int{"5": 20, "404": 1}), catalog.ErrNotFound)
	chews, err := m.GetItem(ctx, "5")
	require.NoError(t, err)
	require.Equal(t, 0, chews.QuantityOnHand)

	require.NoError(t, m.ReceiveStock(ctx, map[string]int{"5": 20, "2": 55}))
	chews, err = m.GetItem(ctx, "5")
	require.NoError(t, err)
	require.Equal(t, 20, chews.QuantityOnHand)
	relief, err := m.GetItem(ctx, "2")
	require.NoError(t, err)
	require.Equal(t, 80, relief.QuantityOnHand)
}

func TestMigrationsPairedAndExactLinePrice(t *testing.T) {
	names, err := fs.Glob(migrations, "migrations/*.sql")
	require.NoError(t, err)
	ups, downs := map[string]bool{}, map[string]bool{}
	for _, n := range names {
		base := strings.TrimPrefix(n, "migrations/")
		switch {
		case strings.HasSuffix(base, ".up.sql"):
			ups[strings.TrimSuffix(base, ".up.sql")] = true
		case strings.HasSuffix(base, ".down.sql"):
			downs[strings.TrimSuffix(base, ".down.sql")] = true
		}
	}
	require.Equal(t, ups, downs)
	require.Len(t, ups, 3)

	raw, err := fs.ReadFile(migrations, "migrations/000002_exact_line_price.up.sql")
	require.NoError(t, err)
	require.Contains(t, string(raw), "discounted_unit_price TYPE NUMERIC;")
}

func TestMemoryCatalog(t *testing.T) {
	m := NewMemory(SeedItems(now)...)
	ctx := context.Background()

	items, err := m.ListItems(ctx)
	require.NoError(t, err)
	require.Len(t, items, 5)
	require.Equal(t, "Antibiotic X", items[0].Name)

	_, err = m.GetItem(ctx, "404")
	require.ErrorIs(t, err, catalog.ErrNotFound)

	require.Error(t, m.UpsertItem(ctx, catalog.Item{ID: "bad", QuantityOnHand: -1}))
	updated := items[0]
	updated.QuantityOnHand = 1
	require.NoError(t, m.UpsertItem(ctx, updated))
	got, err := m.GetItem(ctx, updated.ID)
	require.NoError(t, err)
	require.Equal(t, 1, got.QuantityOnHand)
}

func TestMemorySales(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	at := func(h int) time.Time { return now.Add(time.Duration(h) * time.Hour) }
	require.NoError(t, m.RecordSale(ctx, checkout.Sale{ID: "b", CartID: "c2", CompletedAt: at(2)}))
	require.NoError(t, m.RecordSale(ctx, checkout.Sale{ID: "a", CartID: "c1", CompletedAt: at(1)}))
	require.NoError(t, m.RecordSale(ctx, checkout.Sale{ID: "z", CartID: "c3", CompletedAt: at(30)}))
	require.Error(t, m.RecordSale(ctx, checkout.Sale{ID: "dup", CartID: "c1", CompletedAt: at(3)}))

	sales, err := m.ListSales(ctx, at(1), at(24))
	require.NoError(t, err)
	require.Len(t, sales, 2)
	require.Equal(t, "a", sales[0].ID)
	require.Equal(t, "b", sales[1].ID)
}

func TestMigrateURL(t *testing.T) {
	require.Equal(t, "pgx5://u:p@db:5432/vetpos?sslmode=disable", migrateURL("postgres://u:p@db:5432/vetpos?sslmode=disable"))
	require.Equal(t, "pgx5://db/vetpos", migrateURL("postgresql://db/vetpos"))
	require.Equal(t, "pgx5://db/vetpos", migrateURL("pgx5://db/vetpos"))
}

func TestDateConversion(t *testing.T) {
	require.False(t, toDate(nil).Valid)
	local := time.Date(2025, time.March, 3, 23, 30, 0, 0, time.FixedZone("UTC+7", 7*3600))
	d := toDate(&local)
	require.True(t, d.Valid)
	require.Equal(t, "2025-03-03", d.Time.Format("2006-01-02"))

	require.Nil(t, fromDate(pgtype.Date{}))
	back := fromDate(d)
	require.Equal(t, d.Time, *back)
}

func TestParseDecimals(t *testing.T) {
	var a, b decimal.Decimal
	require.NoError(t, parseDecimals(decimalField{"1.50", &a}, decimalField{"1.50", &b}))
	require.Equal(t, "1.5", a.String())
	require.Equal(t, "1.5", b.String())
	require.Error(t, parseDecimals(decimalField{"abc", &a}))
}
