package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/sagarc03/stowback"
	"github.com/sagarc03/stowback/config"
	stowbackhttp "github.com/sagarc03/stowback/http"
	"github.com/sagarc03/stowback/metrics"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long: `Start the stowback HTTP server.

  GET  /<path>   archive <path>
  PUT  /<path>   restore <path>, replacing directory contents
  POST /<path>   restore <path>, merging into directory contents

Service endpoints live under /-/: healthz, jobs and metrics.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().Int("port", 5708, "HTTP server port (env: STOWBACK_SERVER_PORT)")
	serveCmd.Flags().Bool("compress", false, "gzip archives before upload (env: STOWBACK_ARCHIVE_COMPRESS)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.FromContext(cmd.Context())
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	handlerConfig := stowbackhttp.HandlerConfig{CORS: cfg.CORS}

	var observer stowback.JobObserver
	if cfg.Metrics.Enabled {
		registry := prometheus.NewRegistry()
		registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)

		collector, metricsErr := metrics.New(registry)
		if metricsErr != nil {
			return fmt.Errorf("register metrics: %w", metricsErr)
		}
		observer = collector
		handlerConfig.Metrics = metrics.Handler(registry)
	}

	service, cleanup, err := newService(ctx, cfg, observer)
	if err != nil {
		return err
	}
	defer cleanup()

	handler := stowbackhttp.NewHandler(&handlerConfig, service)

	addr := fmt.Sprintf(":%d", cfg.Server.Port)

	server := &http.Server{
		Addr:              addr,
		Handler:           handler.Router(),
		ReadHeaderTimeout: cfg.Server.ReadTimeout,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

		select {
		case <-sigCh:
		case <-ctx.Done():
			return
		}

		slog.Info("shutting down server...")
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("server shutdown error", "err", err)
		}
		cancel()
	}()

	slog.Info("starting server",
		"addr", addr,
		"backend", cfg.Storage.Backend,
		"container", cfg.Storage.Container,
		"compress", cfg.Archive.Compress,
		"jobs", cfg.Database.Enabled,
		"metrics", cfg.Metrics.Enabled,
	)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}
