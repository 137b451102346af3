package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"cafe-orders/internal/common/logger"
	"cafe-orders/internal/config"

	_ "github.com/jackc/pgx/v5/stdlib"
)

const (
	maxRetries = 10
	retryDelay = 2 * time.Second
	pingTTL    = 5 * time.Second
)

func DSN(cfg config.DatabaseConfig) string {
	sslmode := cfg.SSLMode
	if sslmode == "" {
		sslmode = "disable"
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Database, sslmode)
}

// ConnectDB opens a pgx-backed *sql.DB and waits until Postgres answers a ping,
// retrying while the database container is still starting.
func ConnectDB(ctx context.Context, cfg config.DatabaseConfig) (*sql.DB, error) {
	lg := logger.New("database")
	dsn := DSN(cfg)

	var lastErr error
	for attempt := 1; attempt <= maxRetries; attempt++ {
		db, err := tryConnect(ctx, dsn)
		if err == nil {
			lg.Info("db_connected", map[string]any{"host": cfg.Host, "port": cfg.Port, "database": cfg.Database, "attempt": attempt})
			return db, nil
		}
		lastErr = err
		lg.Warn("db_connect_retry", err, map[string]any{"attempt": attempt})

		select {
		case <-time.After(retryDelay):
		case <-ctx.Done():
			return nil, fmt.Errorf("db connect canceled: %w", ctx.Err())
		}
	}
	return nil, fmt.Errorf("database unreachable after %d attempts: %w", maxRetries, lastErr)
}

func tryConnect(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	pctx, cancel := context.WithTimeout(ctx, pingTTL)
	defer cancel()
	if err := db.PingContext(pctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}
