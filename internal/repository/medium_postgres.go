package repository

import (
	"context"
	"database/sql"
	"errors"
)

// PostgresMedium keeps keyed records in the keyed_records table.
type PostgresMedium struct {
	db *sql.DB
}

func NewPostgresMedium(db *sql.DB) *PostgresMedium { return &PostgresMedium{db: db} }

func (p *PostgresMedium) Get(ctx context.Context, key string) ([]byte, error) {
	var value string
	err := p.db.QueryRowContext(ctx, `SELECT value FROM keyed_records WHERE key=$1`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return []byte(value), nil
}

func (p *PostgresMedium) Put(ctx context.Context, key string, value []byte) error {
	_, err := p.db.ExecContext(ctx, `
INSERT INTO keyed_records (key, value, updated_at)
VALUES ($1, $2, now())
ON CONFLICT (key) DO UPDATE SET
  value = EXCLUDED.value,
  updated_at = EXCLUDED.updated_at
`, key, string(value))
	return err
}
