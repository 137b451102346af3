package kitchen

import (
	"context"
	"fmt"

	"cafe-orders/internal/common/httpx"
	"cafe-orders/internal/common/logger"
	"cafe-orders/internal/config"
	"cafe-orders/internal/microservices/kitchen/handlers"
	"cafe-orders/internal/microservices/kitchen/service"
	"cafe-orders/internal/notify"
	"cafe-orders/internal/repository"
)

// Run activates the ticket queue and serves the kitchen display API until ctx
// is cancelled.
func Run(ctx context.Context, cfg *config.Config, store repository.Orders, notifier notify.Notifier) error {
	lg := logger.New("kitchen-display")

	q := service.NewQueue(store, notifier, cfg.Kitchen.RefreshInterval)
	if err := q.Activate(ctx); err != nil {
		return err
	}
	defer q.Close()

	addr := fmt.Sprintf(":%d", cfg.HTTP.KitchenPort)
	lg.Info("service_started", map[string]any{
		"addr": addr, "store": cfg.Store.Driver, "notifier": cfg.Notifier.Driver,
		"refresh_interval": cfg.Kitchen.RefreshInterval.String(),
	})
	return httpx.New(addr, handlers.Router(handlers.NewKitchenHandler(q), lg)).Run(ctx)
}
