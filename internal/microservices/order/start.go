package order

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"cafe-orders/internal/common/httpx"
	"cafe-orders/internal/common/logger"
	"cafe-orders/internal/config"
	"cafe-orders/internal/domain"
	"cafe-orders/internal/microservices/barista"
	"cafe-orders/internal/microservices/order/handlers"
	"cafe-orders/internal/microservices/order/service"
	"cafe-orders/internal/microservices/tracker"
	"cafe-orders/internal/notify"
	"cafe-orders/internal/repository"
)

const sessionSweepEvery = time.Minute

// Run serves the customer-facing API until ctx is cancelled. A non-nil
// statusLog also serves per-order status timelines.
func Run(ctx context.Context, cfg *config.Config, store repository.Orders, notifier notify.Notifier, statusLog *sql.DB) error {
	lg := logger.New("order-service")

	pricing := domain.NewPricing(cfg.Checkout.DeliveryFee)
	sessions := service.NewSessions(func() *service.Workflow {
		return service.NewWorkflow(store, notifier, pricing, cfg.Checkout.ConfirmDelay)
	}, cfg.Checkout.SessionTTL)
	go sessions.Run(ctx, sessionSweepEvery)
	h := handlers.New(sessions, service.NewStatusService(store), barista.NewClient(cfg.Barista))

	addr := fmt.Sprintf(":%d", cfg.HTTP.OrderPort)
	lg.Info("service_started", map[string]any{
		"addr": addr, "store": cfg.Store.Driver, "notifier": cfg.Notifier.Driver,
		"confirm_delay_ms": cfg.Checkout.ConfirmDelay.Milliseconds(), "session_ttl": cfg.Checkout.SessionTTL.String(),
	})
	r := handlers.Router(h, lg)
	if statusLog != nil {
		tracker.Mount(r, statusLog)
	}
	return httpx.New(addr, r).Run(ctx)
}
