package service

import (
	"context"
	"sync/atomic"

	"cafe-orders/internal/app/metrics"
	"cafe-orders/internal/common/logger"
	"cafe-orders/internal/notify"
	"cafe-orders/internal/repository"
)

// NotificatorService logs every store-changed signal together with the number
// of orders still pending, as read from the store at that moment.
type NotificatorService struct {
	store    repository.Orders
	notifier notify.Notifier
	lg       *logger.Logger
	received atomic.Int64
}

func NewNotificatorService(store repository.Orders, notifier notify.Notifier) *NotificatorService {
	return &NotificatorService{store: store, notifier: notifier, lg: logger.New("notification-subscriber")}
}

// Notify blocks until ctx is cancelled.
func (ns *NotificatorService) Notify(ctx context.Context) error {
	unsubscribe, err := ns.notifier.Subscribe(func() { ns.handle(ctx) })
	if err != nil {
		return err
	}
	defer unsubscribe()

	ns.lg.Info("subscribed", nil)
	<-ctx.Done()
	ns.lg.Info("unsubscribed", map[string]any{"signals": ns.received.Load()})
	return nil
}

func (ns *NotificatorService) handle(ctx context.Context) {
	n := ns.received.Add(1)
	metrics.RecordSignalReceived()

	orders, err := ns.store.LoadAll(ctx)
	if err != nil {
		ns.lg.Warn("store_reload_failed", err, map[string]any{"signal": n})
		return
	}
	pending := 0
	for _, o := range orders {
		if o.IsPending() {
			pending++
		}
	}
	ns.lg.Info("store_changed", map[string]any{"signal": n, "orders": len(orders), "pending": pending})
}

func (ns *NotificatorService) Received() int64 { return ns.received.Load() }
