package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"cafe-orders/internal/app"
	"cafe-orders/internal/common/logger"
	"cafe-orders/internal/config"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "cafe",
	Short: "Order lifecycle services for the Mr. Beans cafe",
	Long: `cafe runs the pieces of the order lifecycle: the customer checkout API, the kitchen
display, a subscriber that logs store changes, and a load generator. All of them share one
order store and one change notifier, selected in the config file.

serve runs checkout, kitchen display and subscriber together in one process and works with
the in-memory drivers. The separate commands need a shared store (file, redis, postgres) and
a broker notifier (redis, rabbitmq).`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "log level: debug, info, warn, error")

	rootCmd.AddCommand(serveCmd, orderServiceCmd, kitchenDisplayCmd, subscriberCmd, simulateCmd)
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	v := viper.New()
	if err := v.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level")); err != nil {
		return nil, err
	}
	cfg, err := config.LoadConfig(v, cfgFile)
	if err != nil {
		return nil, err
	}
	logger.SetLevel(cfg.Log.Level)
	return cfg, nil
}

// runService loads config, builds the shared dependencies and runs fn until
// SIGINT or SIGTERM. A split service runs beside others in separate processes
// and so needs a store and notifier they can all reach.
func runService(service, source string, split bool, fn func(ctx context.Context, cfg *config.Config, deps *app.Deps) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	lg := logger.New("bootstrap")
	if split {
		if err := cfg.ValidateShared(); err != nil {
			lg.Error("config_rejected", err, map[string]any{"service": service})
			return err
		}
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	deps, err := app.Build(ctx, cfg, source)
	if err != nil {
		lg.Error("dependencies_failed", err, map[string]any{"service": service})
		return err
	}
	defer deps.Close()

	if err := fn(ctx, cfg, deps); err != nil {
		lg.Error("fatal", err, map[string]any{"service": service})
		return err
	}
	lg.Info("service_stopped", map[string]any{"service": service})
	return nil
}
