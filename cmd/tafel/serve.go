package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/aretw0/tafel/internal/cli"
	httpAdapter "github.com/aretw0/tafel/pkg/adapters/http"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP chat endpoint",
	Long:  `Serves POST /api/chat for the website widget, plus /health, /openapi.yaml and /metrics.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		sc := cli.NewShutdownContext(cmd.Context())
		defer sc.Stop()

		app, err := newApp(sc, cfg)
		if err != nil {
			return err
		}
		defer app.Close()

		handler, err := httpAdapter.NewHandler(app.assistant,
			httpAdapter.WithLogger(app.logger),
			httpAdapter.WithMetricsHandler(app.metrics.Handler()),
			httpAdapter.WithRateLimit(cfg.Server.RateLimit, cfg.Server.RateBurst),
			httpAdapter.WithTrustProxy(cfg.Server.TrustProxy),
		)
		if err != nil {
			return err
		}

		srv := &http.Server{
			Addr:              cfg.Server.Addr,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		}

		// Channel to listen for errors coming from the listener.
		serverErrors := make(chan error, 1)
		go func() {
			app.logger.Info("starting tafel server", "addr", srv.Addr, "session_backend", cfg.Session.Backend)
			serverErrors <- srv.ListenAndServe()
		}()

		select {
		case err := <-serverErrors:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return fmt.Errorf("server error: %w", err)

		case <-sc.Done():
			app.logger.Info("shutting down", "signal", fmt.Sprint(sc.Signal()))

			// Give outstanding requests a deadline for completion.
			ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()

			if err := srv.Shutdown(ctx); err != nil {
				app.logger.Error("graceful shutdown did not complete", "timeout", shutdownTimeout, "error", err)
				return srv.Close()
			}
			app.logger.Info("server stopped gracefully")
			return nil
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("addr", "", "Listen address (overrides server.addr)")
}
