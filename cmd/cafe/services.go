package main

import (
	"context"

	"github.com/spf13/cobra"

	"cafe-orders/internal/app"
	"cafe-orders/internal/config"
	"cafe-orders/internal/domain"
	"cafe-orders/internal/microservices/kitchen"
	"cafe-orders/internal/microservices/notificator"
	"cafe-orders/internal/microservices/order"
)

var orderServiceCmd = &cobra.Command{
	Use:   "order-service",
	Short: "Serve the menu, carts and checkout",
	RunE: func(*cobra.Command, []string) error {
		return runService("order-service", domain.SourceCheckout, true, func(ctx context.Context, cfg *config.Config, d *app.Deps) error {
			return order.Run(ctx, cfg, d.Store, d.Notifier, d.RecordsDB())
		})
	},
}

var kitchenDisplayCmd = &cobra.Command{
	Use:   "kitchen-display",
	Short: "Serve the kitchen ticket queue",
	RunE: func(*cobra.Command, []string) error {
		return runService("kitchen-display", domain.SourceKitchen, true, func(ctx context.Context, cfg *config.Config, d *app.Deps) error {
			return kitchen.Run(ctx, cfg, d.Store, d.Notifier)
		})
	},
}

var subscriberCmd = &cobra.Command{
	Use:   "notification-subscriber",
	Short: "Log every store change with the current pending count",
	RunE: func(*cobra.Command, []string) error {
		return runService("notification-subscriber", domain.SourceSubscriber, true, func(ctx context.Context, _ *config.Config, d *app.Deps) error {
			return notificator.Start(ctx, d.Store, d.Notifier)
		})
	},
}
