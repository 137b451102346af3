package app

import (
	"context"
	"database/sql"
	"fmt"

	goredis "github.com/go-redis/redis/v8"

	"cafe-orders/internal/common/logger"
	"cafe-orders/internal/config"
	"cafe-orders/internal/connections/database"
	"cafe-orders/internal/connections/rabbitmq"
	"cafe-orders/internal/connections/redis"
	"cafe-orders/internal/notify"
	"cafe-orders/internal/repository"
)

// Deps is the single order store and notifier shared by every component of
// one process.
type Deps struct {
	Store    repository.Orders
	Notifier notify.Notifier

	db      *sql.DB
	records bool
	rdb     *goredis.Client
	rmq     *rabbitmq.Client
	closers []func()
}

// Build connects only the backends the configured drivers need. source names
// the publishing process on outgoing signals.
func Build(ctx context.Context, cfg *config.Config, source string) (*Deps, error) {
	d := &Deps{}
	if err := d.buildStore(ctx, cfg); err != nil {
		d.Close()
		return nil, err
	}
	if err := d.buildNotifier(ctx, cfg, source); err != nil {
		d.Close()
		return nil, err
	}
	logger.New("bootstrap").Info("dependencies_ready", map[string]any{
		"store": cfg.Store.Driver, "notifier": cfg.Notifier.Driver, "key": cfg.Store.Key,
	})
	return d, nil
}

func (d *Deps) buildStore(ctx context.Context, cfg *config.Config) error {
	switch cfg.Store.Driver {
	case config.StoreMemory:
		d.Store = repository.NewKeyedStore(repository.NewMemoryMedium(cfg.Store.QuotaBytes), cfg.Store.Key)
	case config.StoreFile:
		d.Store = repository.NewKeyedStore(repository.NewFileMedium(cfg.Store.Dir), cfg.Store.Key)
	case config.StoreRedis:
		rdb, err := d.redis(ctx, cfg)
		if err != nil {
			return err
		}
		d.Store = repository.NewKeyedStore(repository.NewRedisMedium(rdb), cfg.Store.Key)
	case config.StorePostgres, config.StorePostgresRecords:
		db, err := d.postgres(ctx, cfg)
		if err != nil {
			return err
		}
		if cfg.Store.Driver == config.StorePostgres {
			d.Store = repository.NewKeyedStore(repository.NewPostgresMedium(db), cfg.Store.Key)
		} else {
			d.Store = repository.NewRecordStore(db, "cafe")
			d.records = true
		}
	default:
		return fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
	return nil
}

func (d *Deps) buildNotifier(ctx context.Context, cfg *config.Config, source string) error {
	switch cfg.Notifier.Driver {
	case config.NotifierMemory:
		d.Notifier = notify.NewBroadcaster()
	case config.NotifierRedis:
		rdb, err := d.redis(ctx, cfg)
		if err != nil {
			return err
		}
		d.Notifier = notify.NewRedisNotifier(rdb, cfg.Notifier.Channel, source)
	case config.NotifierRabbitMQ:
		rmq, err := rabbitmq.Dial(cfg.RabbitMQ, source)
		if err != nil {
			return err
		}
		d.rmq = rmq
		d.closers = append(d.closers, rmq.Close)
		n, err := notify.NewRabbitNotifier(rmq, cfg.Notifier.Exchange, source)
		if err != nil {
			return err
		}
		d.Notifier = n
	default:
		return fmt.Errorf("unknown notifier driver %q", cfg.Notifier.Driver)
	}
	notifier := d.Notifier
	d.closers = append(d.closers, func() { _ = notifier.Close() })
	return nil
}

func (d *Deps) postgres(ctx context.Context, cfg *config.Config) (*sql.DB, error) {
	if d.db != nil {
		return d.db, nil
	}
	db, err := database.ConnectDB(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}
	d.closers = append(d.closers, func() { _ = db.Close() })
	if err := repository.EnsureSchema(ctx, db); err != nil {
		return nil, err
	}
	d.db = db
	return db, nil
}

func (d *Deps) redis(ctx context.Context, cfg *config.Config) (*goredis.Client, error) {
	if d.rdb != nil {
		return d.rdb, nil
	}
	rdb, err := redis.Connect(ctx, cfg.Redis)
	if err != nil {
		return nil, err
	}
	d.rdb = rdb
	d.closers = append(d.closers, func() { _ = rdb.Close() })
	return rdb, nil
}

// RecordsDB returns the database holding the per-order status log, or nil
// when the configured store keeps no log.
func (d *Deps) RecordsDB() *sql.DB {
	if !d.records {
		return nil
	}
	return d.db
}

// Close releases everything in reverse order of acquisition.
func (d *Deps) Close() {
	for i := len(d.closers) - 1; i >= 0; i-- {
		d.closers[i]()
	}
	d.closers = nil
}
