package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"cafe-orders/internal/app"
	"cafe-orders/internal/config"
	"cafe-orders/internal/domain"
	"cafe-orders/internal/microservices/order/service"
	"cafe-orders/internal/microservices/simulator"
)

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Place fake orders through the checkout workflow",
	RunE: func(cmd *cobra.Command, _ []string) error {
		flags := cmd.Flags()
		orders, _ := flags.GetInt("orders")
		maxItems, _ := flags.GetInt("max-items")
		share, _ := flags.GetFloat64("delivery-share")
		seed, _ := flags.GetInt64("seed")
		delay, _ := flags.GetDuration("confirm-delay")

		return runService("simulate", domain.SourceSimulate, true, func(ctx context.Context, cfg *config.Config, d *app.Deps) error {
			if !flags.Changed("confirm-delay") {
				delay = cfg.Checkout.ConfirmDelay
			}
			pricing := domain.NewPricing(cfg.Checkout.DeliveryFee)
			sim := simulator.New(func() *service.Workflow {
				return service.NewWorkflow(d.Store, d.Notifier, pricing, delay)
			}, os.Stderr)

			res, err := sim.Run(ctx, simulator.Config{Orders: orders, MaxItems: maxItems, DeliveryShare: share, Seed: seed})
			if err != nil {
				return err
			}
			fmt.Fprintf(os.Stderr, "\nplaced %d orders, %d failed\n", res.Placed, res.Failed)
			return nil
		})
	},
}

func init() {
	simulateCmd.Flags().Int("orders", 10, "number of orders to place")
	simulateCmd.Flags().Int("max-items", 3, "maximum items per order")
	simulateCmd.Flags().Float64("delivery-share", 0.3, "fraction of delivery orders (0..1)")
	simulateCmd.Flags().Int64("seed", time.Now().UnixNano(), "random seed")
	simulateCmd.Flags().Duration("confirm-delay", 0, "override checkout.confirm_delay")
}
