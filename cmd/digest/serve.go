package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/aretw0/digest/internal/cli"
	httpAdapter "github.com/aretw0/digest/pkg/adapters/http"
	"github.com/aretw0/digest/pkg/domain"
	"github.com/aretw0/digest/pkg/observability"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Long: `Starts the pipeline behind a JSON API over HTTP, with a Server-Sent Events
stream of step events and Prometheus metrics on /metrics.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("port") {
			cfg.Server.Port, _ = cmd.Flags().GetInt("port")
		}
		if err := cfg.Validate(); err != nil {
			return err
		}

		sc := cli.NewSignalContext(cmd.Context())
		defer sc.Cancel()

		streams := httpAdapter.NewStreamManager(logger)
		hooks := []domain.LifecycleHooks{streams.Hooks(), observability.AuditHooks(logger)}
		if cfg.Server.Metrics {
			metrics, err := observability.NewMetrics(nil)
			if err != nil {
				return err
			}
			hooks = append(hooks, metrics.Hooks())
		}

		app, err := cli.Build(sc, cfg, logger, cli.WithHooks(hooks...))
		if err != nil {
			return err
		}
		defer app.Close()

		router := httpAdapter.NewServer(app.Engine, app.Sessions,
			httpAdapter.WithLogger(logger),
			httpAdapter.WithStreams(streams),
			httpAdapter.WithCollaborators(app.Info),
		).Routes()
		if cfg.Server.Metrics {
			router.Handle("/metrics", promhttp.Handler())
		}

		srv := &http.Server{
			Addr:              ":" + strconv.Itoa(cfg.Server.Port),
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		}

		// Channel to listen for errors coming from the listener.
		serverErrors := make(chan error, 1)
		go func() {
			logger.Info("starting digest server", "addr", srv.Addr, "metrics", cfg.Server.Metrics)
			serverErrors <- srv.ListenAndServe()
		}()

		select {
		case err := <-serverErrors:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return fmt.Errorf("server error: %w", err)

		case <-sc.Done():
			logger.Info("shutting down", "signal", sc.Signal())

			// Give outstanding requests a deadline for completion.
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			if err := srv.Shutdown(ctx); err != nil {
				logger.Warn("graceful shutdown did not complete", "timeout", 5*time.Second, "err", err)
				if err := srv.Close(); err != nil {
					return fmt.Errorf("error killing server: %w", err)
				}
			}
			logger.Info("digest server stopped gracefully")
			return nil
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().IntP("port", "p", 8080, "Port to listen on")
}
