// Package repo holds the persistence adapters for the catalog, discounts,
// completed sales and purchasing.
package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"

	"github.com/noah-isme/vetpos/internal/cart"
	"github.com/noah-isme/vetpos/internal/catalog"
	"github.com/noah-isme/vetpos/internal/checkout"
	"github.com/noah-isme/vetpos/internal/discount"
)

// DB is the subset of *pgxpool.Pool used by Postgres.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Postgres implements the catalog provider, discount store, sale sink and
// supplier store.
// Numeric columns travel as text so decimals never pass through float64.
type Postgres struct {
	DB DB
}

const itemColumns = `id, name, category, unit_price::text, quantity_on_hand, reorder_threshold,
	max_stock, batch_number, expiry_date, restricted, supplier_id`

func scanItem(row pgx.Row) (catalog.Item, error) {
	var (
		it     catalog.Item
		price  string
		expiry pgtype.Date
	)
	if err := row.Scan(&it.ID, &it.Name, &it.Category, &price, &it.QuantityOnHand, &it.ReorderThreshold,
		&it.MaxStock, &it.BatchNumber, &expiry, &it.Restricted, &it.SupplierID); err != nil {
		return catalog.Item{}, err
	}
	var err error
	if it.UnitPrice, err = decimal.NewFromString(price); err != nil {
		return catalog.Item{}, fmt.Errorf("item %s unit price: %w", it.ID, err)
	}
	it.ExpiryDate = fromDate(expiry)
	return it, nil
}

// ListItems implements catalog.Provider.
func (p Postgres) ListItems(ctx context.Context) ([]catalog.Item, error) {
	rows, err := p.DB.Query(ctx, `SELECT `+itemColumns+` FROM catalog_items ORDER BY name, id`)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (catalog.Item, error) {
		return scanItem(row)
	})
}

// GetItem implements catalog.Provider.
func (p Postgres) GetItem(ctx context.Context, id string) (catalog.Item, error) {
	it, err := scanItem(p.DB.QueryRow(ctx, `SELECT `+itemColumns+` FROM catalog_items WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return catalog.Item{}, fmt.Errorf("item %s: %w", id, catalog.ErrNotFound)
	}
	return it, err
}

// UpsertItem inserts or replaces a catalog item.
func (p Postgres) UpsertItem(ctx context.Context, it catalog.Item) error {
	if err := it.Validate(); err != nil {
		return err
	}
	_, err := p.DB.Exec(ctx, `
INSERT INTO catalog_items (id, name, category, unit_price, quantity_on_hand, reorder_threshold,
	max_stock, batch_number, expiry_date, restricted, supplier_id)
VALUES ($1, $2, $3, $4::numeric, $5, $6, $7, $8, $9, $10, $11)
ON CONFLICT (id) DO UPDATE SET
	name = EXCLUDED.name,
	category = EXCLUDED.category,
	unit_price = EXCLUDED.unit_price,
	quantity_on_hand = EXCLUDED.quantity_on_hand,
	reorder_threshold = EXCLUDED.reorder_threshold,
	max_stock = EXCLUDED.max_stock,
	batch_number = EXCLUDED.batch_number,
	expiry_date = EXCLUDED.expiry_date,
	restricted = EXCLUDED.restricted,
	supplier_id = EXCLUDED.supplier_id,
	updated_at = now()`,
		it.ID, it.Name, it.Category, it.UnitPrice.String(), it.QuantityOnHand, it.ReorderThreshold,
		it.MaxStock, it.BatchNumber, toDate(it.ExpiryDate), it.Restricted, it.SupplierID)
	if err != nil {
		return fmt.Errorf("upsert item %s: %w", it.ID, err)
	}
	return nil
}

const discountColumns = `id, name, kind, value::text, scope, item_ids, start_date, end_date`

func scanDiscount(row pgx.Row) (discount.Discount, error) {
	var (
		d          discount.Discount
		value      string
		start, end pgtype.Date
	)
	if err := row.Scan(&d.ID, &d.Name, &d.Kind, &value, &d.Scope, &d.ItemIDs, &start, &end); err != nil {
		return discount.Discount{}, err
	}
	var err error
	if d.Value, err = decimal.NewFromString(value); err != nil {
		return discount.Discount{}, fmt.Errorf("discount %s value: %w", d.ID, err)
	}
	d.StartDate, d.EndDate = start.Time, end.Time
	if len(d.ItemIDs) == 0 {
		d.ItemIDs = nil
	}
	return d, nil
}

// ListDiscounts implements discount.Store in creation order.
func (p Postgres) ListDiscounts(ctx context.Context) ([]discount.Discount, error) {
	rows, err := p.DB.Query(ctx, `SELECT `+discountColumns+` FROM discounts ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("list discounts: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (discount.Discount, error) {
		return scanDiscount(row)
	})
}

// GetDiscount implements discount.Store.
func (p Postgres) GetDiscount(ctx context.Context, id string) (discount.Discount, error) {
	d, err := scanDiscount(p.DB.QueryRow(ctx, `SELECT `+discountColumns+` FROM discounts WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return discount.Discount{}, fmt.Errorf("discount %s: %w", id, discount.ErrNotFound)
	}
	return d, err
}

// CreateDiscount implements discount.Store. Re-creating an existing id
// replaces it.
func (p Postgres) CreateDiscount(ctx context.Context, d discount.Discount) (discount.Discount, error) {
	d, err := discount.New(d)
	if err != nil {
		return discount.Discount{}, err
	}
	if d.ID == "" {
		d.ID = newID()
	}
	itemIDs := d.ItemIDs
	if itemIDs == nil {
		itemIDs = []string{}
	}
	_, err = p.DB.Exec(ctx, `
INSERT INTO discounts (id, name, kind, value, scope, item_ids, start_date, end_date)
VALUES ($1, $2, $3, $4::numeric, $5, $6, $7, $8)
ON CONFLICT (id) DO UPDATE SET
	name = EXCLUDED.name,
	kind = EXCLUDED.kind,
	value = EXCLUDED.value,
	scope = EXCLUDED.scope,
	item_ids = EXCLUDED.item_ids,
	start_date = EXCLUDED.start_date,
	end_date = EXCLUDED.end_date`,
		d.ID, d.Name, string(d.Kind), d.Value.String(), string(d.Scope), itemIDs,
		pgtype.Date{Time: d.StartDate, Valid: true}, pgtype.Date{Time: d.EndDate, Valid: true})
	if err != nil {
		return discount.Discount{}, fmt.Errorf("create discount: %w", err)
	}
	return d, nil
}

// DeleteDiscount implements discount.Store.
func (p Postgres) DeleteDiscount(ctx context.Context, id string) error {
	tag, err := p.DB.Exec(ctx, `DELETE FROM discounts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete discount: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("discount %s: %w", id, discount.ErrNotFound)
	}
	return nil
}

// RecordSale implements checkout.SaleSink. The sale and its lines are written
// in one transaction.
func (p Postgres) RecordSale(ctx context.Context, s checkout.Sale) (err error) {
	tx, err := p.DB.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	var tendered *string
	if s.Payment.AmountTendered != nil {
		v := s.Payment.AmountTendered.String()
		tendered = &v
	}
	if _, err = tx.Exec(ctx, `
INSERT INTO sales (id, cart_id, cashier_id, completed_at, subtotal, line_discount, cart_discount_id,
	cart_discount, tax_rate, tax, total, payment_method, amount_tendered, change_due, customer_email)
VALUES ($1, $2, $3, $4, $5::numeric, $6::numeric, $7, $8::numeric, $9::numeric, $10::numeric, $11::numeric,
	$12, $13::numeric, $14::numeric, $15)`,
		s.ID, s.CartID, s.CashierID, s.CompletedAt, s.Subtotal.String(), s.PerLineDiscountTotal.String(),
		s.CartDiscountID, s.CartDiscountAmount.String(), s.TaxRate.String(), s.TaxAmount.String(), s.Total.String(),
		string(s.Payment.Method), tendered, s.Payment.ChangeDue.String(), s.CustomerEmail); err != nil {
		return fmt.Errorf("insert sale: %w", err)
	}

	batch := &pgx.Batch{}
	for i, l := range s.Lines {
		batch.Queue(`
INSERT INTO sale_lines (sale_id, position, item_id, name, quantity, unit_price, discounted_unit_price,
	discount_id, line_total, restricted)
VALUES ($1, $2, $3, $4, $5, $6::numeric, $7::numeric, $8, $9::numeric, $10)`,
			s.ID, i, l.ItemID, l.Name, l.Quantity, l.UnitPrice.String(), l.DiscountedUnitPrice.String(),
			l.DiscountID, l.LineTotal.String(), l.Restricted)
	}
	if err = tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("insert sale lines: %w", err)
	}
	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit sale: %w", err)
	}
	return nil
}

// ListSales returns sales completed in [from, to), oldest first.
func (p Postgres) ListSales(ctx context.Context, from, to time.Time) ([]checkout.Sale, error) {
	rows, err := p.DB.Query(ctx, `
SELECT id, cart_id, cashier_id, completed_at, subtotal::text, line_discount::text, cart_discount_id,
	cart_discount::text, tax_rate::text, tax::text, total::text, payment_method, amount_tendered::text,
	change_due::text, customer_email
FROM sales WHERE completed_at >= $1 AND completed_at < $2 ORDER BY completed_at, id`, from, to)
	if err != nil {
		return nil, fmt.Errorf("list sales: %w", err)
	}
	sales, err := pgx.CollectRows(rows, scanSale)
	if err != nil || len(sales) == 0 {
		return sales, err
	}

	index := make(map[string]int, len(sales))
	ids := make([]string, len(sales))
	for i, s := range sales {
		index[s.ID] = i
		ids[i] = s.ID
	}
	lineRows, err := p.DB.Query(ctx, `
SELECT sale_id, item_id, name, quantity, unit_price::text, discounted_unit_price::text, discount_id,
	line_total::text, restricted
FROM sale_lines WHERE sale_id = ANY($1) ORDER BY sale_id, position`, ids)
	if err != nil {
		return nil, fmt.Errorf("list sale lines: %w", err)
	}
	defer lineRows.Close()
	for lineRows.Next() {
		var (
			saleID                      string
			l                           cart.LineTotal
			unit, discounted, lineTotal string
		)
		if err := lineRows.Scan(&saleID, &l.ItemID, &l.Name, &l.Quantity, &unit, &discounted, &l.DiscountID,
			&lineTotal, &l.Restricted); err != nil {
			return nil, err
		}
		if err := parseDecimals(
			decimalField{unit, &l.UnitPrice},
			decimalField{discounted, &l.DiscountedUnitPrice},
			decimalField{lineTotal, &l.LineTotal},
		); err != nil {
			return nil, fmt.Errorf("sale %s line: %w", saleID, err)
		}
		if i, ok := index[saleID]; ok {
			sales[i].Lines = append(sales[i].Lines, l)
		}
	}
	return sales, lineRows.Err()
}

func scanSale(row pgx.CollectableRow) (checkout.Sale, error) {
	var (
		s                                              checkout.Sale
		subtotal, lineDisc, cartDisc, rate, tax, total string
		method, change                                 string
		tendered                                       *string
	)
	if err := row.Scan(&s.ID, &s.CartID, &s.CashierID, &s.CompletedAt, &subtotal, &lineDisc, &s.CartDiscountID,
		&cartDisc, &rate, &tax, &total, &method, &tendered, &change, &s.CustomerEmail); err != nil {
		return checkout.Sale{}, err
	}
	if err := parseDecimals(
		decimalField{subtotal, &s.Subtotal},
		decimalField{lineDisc, &s.PerLineDiscountTotal},
		decimalField{cartDisc, &s.CartDiscountAmount},
		decimalField{rate, &s.TaxRate},
		decimalField{tax, &s.TaxAmount},
		decimalField{total, &s.Total},
		decimalField{change, &s.Payment.ChangeDue},
	); err != nil {
		return checkout.Sale{}, fmt.Errorf("sale %s: %w", s.ID, err)
	}
	s.CompletedAt = s.CompletedAt.UTC()
	s.Payment.Method = checkout.Method(method)
	s.Payment.Total = s.Total
	if tendered != nil {
		v, err := decimal.NewFromString(*tendered)
		if err != nil {
			return checkout.Sale{}, fmt.Errorf("sale %s tendered: %w", s.ID, err)
		}
		s.Payment.AmountTendered = &v
	}
	return s, nil
}
