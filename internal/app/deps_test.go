package app

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cafe-orders/internal/config"
	"cafe-orders/internal/domain"
	"cafe-orders/internal/notify"
	"cafe-orders/internal/repository"
)

func TestBuild_InProcessDrivers(t *testing.T) {
	cfg := &config.Config{
		Store:    config.StoreConfig{Driver: config.StoreFile, Key: "orders", Dir: t.TempDir()},
		Notifier: config.NotifierConfig{Driver: config.NotifierMemory},
		Kitchen:  config.KitchenConfig{RefreshInterval: time.Minute},
	}

	d, err := Build(context.Background(), cfg, domain.SourceCheckout)
	require.NoError(t, err)
	defer d.Close()

	assert.IsType(t, &repository.KeyedStore{}, d.Store)
	assert.IsType(t, &notify.Broadcaster{}, d.Notifier)
	assert.Nil(t, d.RecordsDB())

	require.NoError(t, d.Store.Append(context.Background(), domain.Order{ID: "a", Status: domain.StatusPending}))
	orders, err := d.Store.LoadAll(context.Background())
	require.NoError(t, err)
	assert.Len(t, orders, 1)
}

func TestBuild_CloseStopsNotifier(t *testing.T) {
	cfg := &config.Config{
		Store:    config.StoreConfig{Driver: config.StoreMemory, Key: "orders"},
		Notifier: config.NotifierConfig{Driver: config.NotifierMemory},
	}
	d, err := Build(context.Background(), cfg, domain.SourceKitchen)
	require.NoError(t, err)

	d.Close()

	assert.ErrorIs(t, d.Notifier.Publish(context.Background()), notify.ErrClosed)
}

func TestBuild_UnknownDriver(t *testing.T) {
	cfg := &config.Config{
		Store:    config.StoreConfig{Driver: "sqlite", Key: "orders"},
		Notifier: config.NotifierConfig{Driver: config.NotifierMemory},
	}

	_, err := Build(context.Background(), cfg, domain.SourceCheckout)

	assert.Error(t, err)
}
