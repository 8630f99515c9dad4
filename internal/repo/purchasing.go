package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/noah-isme/vetpos/internal/catalog"
	"github.com/noah-isme/vetpos/internal/supplier"
)

const supplierColumns = `id, name, contact_person, email, phone, address, status, last_delivery_date`

func scanSupplier(row pgx.Row) (supplier.Supplier, error) {
	var (
		s    supplier.Supplier
		last pgtype.Date
	)
	if err := row.Scan(&s.ID, &s.Name, &s.ContactPerson, &s.Email, &s.Phone, &s.Address, &s.Status, &last); err != nil {
		return supplier.Supplier{}, err
	}
	s.LastDeliveryDate = fromDate(last)
	return s, nil
}

// ListSuppliers implements supplier.Store.
func (p Postgres) ListSuppliers(ctx context.Context) ([]supplier.Supplier, error) {
	rows, err := p.DB.Query(ctx, `SELECT `+supplierColumns+` FROM suppliers ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("list suppliers: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (supplier.Supplier, error) {
		return scanSupplier(row)
	})
}

// GetSupplier implements supplier.Store.
func (p Postgres) GetSupplier(ctx context.Context, id string) (supplier.Supplier, error) {
	s, err := scanSupplier(p.DB.QueryRow(ctx, `SELECT `+supplierColumns+` FROM suppliers WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return supplier.Supplier{}, fmt.Errorf("supplier %s: %w", id, supplier.ErrNotFound)
	}
	return s, err
}

// UpsertSupplier implements supplier.Store.
func (p Postgres) UpsertSupplier(ctx context.Context, s supplier.Supplier) (supplier.Supplier, error) {
	if err := s.Validate(); err != nil {
		return supplier.Supplier{}, err
	}
	_, err := p.DB.Exec(ctx, `
INSERT INTO suppliers (id, name, contact_person, email, phone, address, status, last_delivery_date)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
ON CONFLICT (id) DO UPDATE SET
	name = EXCLUDED.name,
	contact_person = EXCLUDED.contact_person,
	email = EXCLUDED.email,
	phone = EXCLUDED.phone,
	address = EXCLUDED.address,
	status = EXCLUDED.status,
	last_delivery_date = EXCLUDED.last_delivery_date,
	updated_at = now()`,
		s.ID, s.Name, s.ContactPerson, s.Email, s.Phone, s.Address, string(s.Status), toDate(s.LastDeliveryDate))
	if err != nil {
		return supplier.Supplier{}, fmt.Errorf("upsert supplier %s: %w", s.ID, err)
	}
	return s, nil
}

const orderColumns = `id, supplier_id, status, total_amount::text, order_date, expected_delivery, updated_at`

func scanOrder(row pgx.Row) (supplier.PurchaseOrder, error) {
	var (
		o            supplier.PurchaseOrder
		total        string
		ordered, due pgtype.Date
	)
	if err := row.Scan(&o.ID, &o.SupplierID, &o.Status, &total, &ordered, &due, &o.UpdatedAt); err != nil {
		return supplier.PurchaseOrder{}, err
	}
	if err := parseDecimals(decimalField{total, &o.TotalAmount}); err != nil {
		return supplier.PurchaseOrder{}, fmt.Errorf("purchase order %s: %w", o.ID, err)
	}
	o.OrderDate, o.ExpectedDelivery = ordered.Time, due.Time
	o.UpdatedAt = o.UpdatedAt.UTC()
	return o, nil
}

// ListOrders implements supplier.Store. An empty status lists every order.
func (p Postgres) ListOrders(ctx context.Context, status supplier.OrderStatus) ([]supplier.PurchaseOrder, error) {
	rows, err := p.DB.Query(ctx, `SELECT `+orderColumns+` FROM purchase_orders
WHERE $1::text = '' OR status = $1 ORDER BY created_at, id`, string(status))
	if err != nil {
		return nil, fmt.Errorf("list purchase orders: %w", err)
	}
	orders, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (supplier.PurchaseOrder, error) {
		return scanOrder(row)
	})
	if err != nil || len(orders) == 0 {
		return orders, err
	}
	if err := p.loadOrderLines(ctx, orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// GetOrder implements supplier.Store.
func (p Postgres) GetOrder(ctx context.Context, id string) (supplier.PurchaseOrder, error) {
	o, err := scanOrder(p.DB.QueryRow(ctx, `SELECT `+orderColumns+` FROM purchase_orders WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return supplier.PurchaseOrder{}, fmt.Errorf("purchase order %s: %w", id, supplier.ErrNotFound)
	}
	if err != nil {
		return supplier.PurchaseOrder{}, err
	}
	orders := []supplier.PurchaseOrder{o}
	if err := p.loadOrderLines(ctx, orders); err != nil {
		return supplier.PurchaseOrder{}, err
	}
	return orders[0], nil
}

func (p Postgres) loadOrderLines(ctx context.Context, orders []supplier.PurchaseOrder) error {
	index := make(map[string]int, len(orders))
	ids := make([]string, len(orders))
	for i, o := range orders {
		index[o.ID] = i
		ids[i] = o.ID
	}
	rows, err := p.DB.Query(ctx, `
SELECT order_id, item_id, name, quantity, unit_cost::text, received
FROM purchase_order_lines WHERE order_id = ANY($1) ORDER BY order_id, position`, ids)
	if err != nil {
		return fmt.Errorf("list purchase order lines: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			orderID, cost string
			l             supplier.Line
		)
		if err := rows.Scan(&orderID, &l.ItemID, &l.Name, &l.Quantity, &cost, &l.Received); err != nil {
			return err
		}
		if err := parseDecimals(decimalField{cost, &l.UnitCost}); err != nil {
			return fmt.Errorf("purchase order %s line: %w", orderID, err)
		}
		if i, ok := index[orderID]; ok {
			orders[i].Lines = append(orders[i].Lines, l)
		}
	}
	return rows.Err()
}

// SaveOrder implements supplier.Store, replacing the order and its lines in
// one transaction.
func (p Postgres) SaveOrder(ctx context.Context, o supplier.PurchaseOrder) (err error) {
	if err := o.Validate(); err != nil {
		return err
	}
	tx, err := p.DB.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin purchase order: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	updated := o.UpdatedAt
	if updated.IsZero() {
		updated = time.Now()
	}
	if _, err = tx.Exec(ctx, `
INSERT INTO purchase_orders (id, supplier_id, status, total_amount, order_date, expected_delivery, updated_at)
VALUES ($1, $2, $3, $4::numeric, $5, $6, $7)
ON CONFLICT (id) DO UPDATE SET
	status = EXCLUDED.status,
	total_amount = EXCLUDED.total_amount,
	expected_delivery = EXCLUDED.expected_delivery,
	updated_at = EXCLUDED.updated_at`,
		o.ID, o.SupplierID, string(o.Status), o.TotalAmount.String(),
		toDate(&o.OrderDate), toDate(&o.ExpectedDelivery), updated); err != nil {
		return fmt.Errorf("upsert purchase order %s: %w", o.ID, err)
	}
	if _, err = tx.Exec(ctx, `DELETE FROM purchase_order_lines WHERE order_id = $1`, o.ID); err != nil {
		return fmt.Errorf("clear purchase order lines: %w", err)
	}
	batch := &pgx.Batch{}
	for i, l := range o.Lines {
		batch.Queue(`
INSERT INTO purchase_order_lines (order_id, position, item_id, name, quantity, unit_cost, received)
VALUES ($1, $2, $3, $4, $5, $6::numeric, $7)`,
			o.ID, i, l.ItemID, l.Name, l.Quantity, l.UnitCost.String(), l.Received)
	}
	if err = tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("insert purchase order lines: %w", err)
	}
	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit purchase order: %w", err)
	}
	return nil
}

// ReceiveStock implements supplier.StockReceiver. Every item must exist.
func (p Postgres) ReceiveStock(ctx context.Context, quantities map[string]int) (err error) {
	tx, err := p.DB.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin receive stock: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()
	for id, qty := range quantities {
		tag, execErr := tx.Exec(ctx, `
UPDATE catalog_items SET quantity_on_hand = quantity_on_hand + $2, updated_at = now() WHERE id = $1`, id, qty)
		switch {
		case execErr != nil:
			err = fmt.Errorf("receive stock %s: %w", id, execErr)
			return err
		case tag.RowsAffected() == 0:
			err = fmt.Errorf("item %s: %w", id, catalog.ErrNotFound)
			return err
		}
	}
	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit receive stock: %w", err)
	}
	return nil
}
