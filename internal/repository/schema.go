package repository

import (
	"context"
	"database/sql"
	"fmt"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS keyed_records (
  key        TEXT PRIMARY KEY,
  value      TEXT NOT NULL,
  updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`,
	`CREATE TABLE IF NOT EXISTS orders (
  seq           BIGSERIAL,
  id            TEXT PRIMARY KEY,
  customer_name TEXT NOT NULL,
  order_type    TEXT NOT NULL CHECK (order_type IN ('pickup','delivery')),
  address       TEXT,
  status        TEXT NOT NULL CHECK (status IN ('pending','completed')),
  created_at    BIGINT NOT NULL,
  total         NUMERIC(10,2) NOT NULL CHECK (total >= 0),
  items         JSONB NOT NULL
)`,
	`CREATE TABLE IF NOT EXISTS order_status_log (
  id         BIGSERIAL PRIMARY KEY,
  order_id   TEXT NOT NULL REFERENCES orders(id),
  status     TEXT NOT NULL,
  changed_by TEXT NOT NULL,
  changed_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`,
}

// EnsureSchema creates the tables used by PostgresMedium and RecordStore.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	for i, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema statement %d: %w", i+1, err)
		}
	}
	return nil
}
