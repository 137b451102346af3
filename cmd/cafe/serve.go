package main

import (
	"context"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"cafe-orders/internal/app"
	"cafe-orders/internal/config"
	"cafe-orders/internal/domain"
	"cafe-orders/internal/microservices/kitchen"
	"cafe-orders/internal/microservices/notificator"
	"cafe-orders/internal/microservices/order"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run checkout, kitchen display and subscriber in one process",
	RunE: func(*cobra.Command, []string) error {
		return runService("serve", domain.SourceServe, false, serveAll)
	},
}

// serveAll runs every view over one store and notifier. The first view to
// fail stops the others.
func serveAll(ctx context.Context, cfg *config.Config, d *app.Deps) error {
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return order.Run(ctx, cfg, d.Store, d.Notifier, d.RecordsDB()) })
	g.Go(func() error { return kitchen.Run(ctx, cfg, d.Store, d.Notifier) })
	g.Go(func() error { return notificator.Start(ctx, d.Store, d.Notifier) })
	return g.Wait()
}
