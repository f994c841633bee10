package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jason-s-yu/monopoly/internal/config"
	"github.com/jason-s-yu/monopoly/internal/handlers"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Long = "Run the HTTP and websocket server.\n\n" + config.HelpText()
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP and websocket server",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()
		return a.listen(ctx)
	},
}

// listen serves the API until ctx ends, then shuts down gracefully.
func (a *app) listen(ctx context.Context) error {
	srv := &http.Server{
		Addr:              ":" + a.cfg.HTTPPort,
		Handler:           handlers.NewRouter(a.server, a.cfg.Origins()),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		a.logger.Infof("Running on %s", srv.Addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	a.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
