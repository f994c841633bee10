// cmd/historian/main.go drains the Redis action log into the result store.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/jason-s-yu/monopoly/internal/cache"
	"github.com/jason-s-yu/monopoly/internal/config"
	"github.com/jason-s-yu/monopoly/internal/database"
	"github.com/jason-s-yu/monopoly/internal/historian"
	_ "github.com/joho/godotenv/autoload"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:          "historian",
	Short:        "Persist logged game actions in batches",
	Args:         cobra.NoArgs,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}
		logger := logrus.New()
		if lvl, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
			logger.SetLevel(lvl)
		}
		if cfg.Redis.Addr == "" || cfg.Store.Driver == "" {
			return fmt.Errorf("historian needs REDIS_ADDR and STORE_DRIVER")
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		actionLog, err := cache.Connect(ctx, cfg.Redis.Addr, cfg.Redis.DB, cfg.Redis.QueueName)
		if err != nil {
			return err
		}
		defer actionLog.Close()

		store, err := database.Open(ctx, cfg.Store)
		if err != nil {
			return err
		}
		defer store.Close()

		svc := historian.New(actionLog, store, historian.Options{
			BatchSize:     cfg.Historian.BatchSize,
			FlushInterval: cfg.Historian.FlushInterval,
			Inactivity:    cfg.Historian.Inactivity,
			Logger:        logrus.NewEntry(logger).WithField("queue", actionLog.Queue()),
		})
		svc.Run(ctx)
		return nil
	},
}

func init() {
	rootCmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to a YAML config file")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
