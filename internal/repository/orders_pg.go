package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"cafe-orders/internal/common/logger"
	"cafe-orders/internal/domain"
)

// RecordStore keeps one row per order. Appends are single inserts and status
// changes lock the row, so concurrent writers never overwrite each other.
type RecordStore struct {
	db        *sql.DB
	changedBy string
	lg        *logger.Logger
}

// NewRecordStore returns a store that stamps changedBy on status log entries.
func NewRecordStore(db *sql.DB, changedBy string) *RecordStore {
	return &RecordStore{db: db, changedBy: changedBy, lg: logger.New("order-store")}
}

func (r *RecordStore) LoadAll(ctx context.Context) ([]domain.Order, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id, customer_name, order_type, COALESCE(address, ''), status, created_at, total::float8, items
FROM orders
ORDER BY seq ASC
`)
	if err != nil {
		return nil, fmt.Errorf("query orders: %w", err)
	}
	defer rows.Close()

	out := make([]domain.Order, 0)
	for rows.Next() {
		var (
			o        domain.Order
			typ, st  string
			itemsRaw []byte
		)
		if err := rows.Scan(&o.ID, &o.CustomerName, &typ, &o.Address, &st, &o.Timestamp, &o.Total, &itemsRaw); err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		if err := json.Unmarshal(itemsRaw, &o.Items); err != nil {
			r.lg.Warn("order_items_unparseable", err, map[string]any{"order_id": o.ID})
			continue
		}
		o.Type = domain.OrderType(typ)
		o.Status = domain.OrderStatus(st)
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate orders: %w", err)
	}
	return out, nil
}

func (r *RecordStore) Append(ctx context.Context, order domain.Order) error {
	items, err := json.Marshal(order.Items)
	if err != nil {
		return &WriteError{Op: "append", Err: err}
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return &WriteError{Op: "append", Err: fmt.Errorf("begin transaction: %w", err)}
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `
INSERT INTO orders (id, customer_name, order_type, address, status, created_at, total, items)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
`, order.ID, order.CustomerName, string(order.Type), nullIfEmpty(order.Address),
		string(order.Status), order.Timestamp, order.Total, string(items)); err != nil {
		return &WriteError{Op: "append", Err: fmt.Errorf("insert order: %w", err)}
	}
	if _, err := tx.ExecContext(ctx, `
INSERT INTO order_status_log (order_id, status, changed_by, changed_at)
VALUES ($1, $2, $3, now())
`, order.ID, string(order.Status), r.changedBy); err != nil {
		return &WriteError{Op: "append", Err: fmt.Errorf("insert status log: %w", err)}
	}
	if err := tx.Commit(); err != nil {
		return &WriteError{Op: "append", Err: fmt.Errorf("commit: %w", err)}
	}
	return nil
}

// UpdateStatus moves one order under a row lock. An unknown id is a no-op,
// matching the keyed store.
func (r *RecordStore) UpdateStatus(ctx context.Context, id string, status domain.OrderStatus) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return &WriteError{Op: "update_status", Err: fmt.Errorf("begin transaction: %w", err)}
	}
	defer func() { _ = tx.Rollback() }()

	var current string
	err = tx.QueryRowContext(ctx, `SELECT status FROM orders WHERE id=$1 FOR UPDATE`, id).Scan(&current)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return nil
	case err != nil:
		return &WriteError{Op: "update_status", Err: fmt.Errorf("lock order: %w", err)}
	}

	from := domain.OrderStatus(current)
	if !domain.CanTransition(from, status) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, status)
	}
	if from == status {
		return nil
	}

	if _, err := tx.ExecContext(ctx, `UPDATE orders SET status=$2 WHERE id=$1`, id, string(status)); err != nil {
		return &WriteError{Op: "update_status", Err: fmt.Errorf("update order: %w", err)}
	}
	if _, err := tx.ExecContext(ctx, `
INSERT INTO order_status_log (order_id, status, changed_by, changed_at)
VALUES ($1, $2, $3, now())
`, id, string(status), r.changedBy); err != nil {
		return &WriteError{Op: "update_status", Err: fmt.Errorf("insert status log: %w", err)}
	}
	if err := tx.Commit(); err != nil {
		return &WriteError{Op: "update_status", Err: fmt.Errorf("commit: %w", err)}
	}
	return nil
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
