package notificator

import (
	"context"

	"cafe-orders/internal/microservices/notificator/service"
	"cafe-orders/internal/notify"
	"cafe-orders/internal/repository"
)

func Start(ctx context.Context, store repository.Orders, notifier notify.Notifier) error {
	return service.NewNotificatorService(store, notifier).Notify(ctx)
}
