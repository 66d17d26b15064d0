package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"softy/internal/backend"
	"softy/internal/cache"
	"softy/internal/cli"
	"softy/internal/fx"
	apphttp "softy/internal/http"
	"softy/internal/log"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger()
	cfg := cli.LoadAndValidateConfig(logger)

	ctx, stop := cli.SignalContext(logger)
	defer stop()

	backendConfig, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", "error", err)
		os.Exit(1)
	}
	be, err := backend.NewFactory(logger).CreateBackend(ctx, backendConfig)
	if err != nil {
		logger.Error("Failed to initialize backend", "error", err, "backend", cfg.DataBackend)
		os.Exit(1)
	}
	defer func() {
		if be.Cleanup != nil {
			if err := be.Cleanup(); err != nil {
				logger.Error("Backend cleanup failed", "error", err)
			}
		}
	}()

	tracker := fx.NewRateTracker(cfg.FXNoticeThreshold)
	converter := fx.NewConverter(
		fx.NewClient(cfg.FXAPIBaseURL, cfg.FXTimeout),
		tracker,
		log.Wrap(logger, log.ComponentFX),
	)
	go cache.NewJanitor(tracker.Cache()).Run(ctx, 10*time.Minute)

	var pinger apphttp.Pinger
	if be.Pinger != nil {
		pinger = be.Pinger
	}
	srv := apphttp.NewServer(":"+cfg.Port, apphttp.Deps{
		Entries:        be.Entries,
		Reports:        be.Reports,
		Converter:      converter,
		Pinger:         pinger,
		DashboardLimit: cfg.DashboardLimit,
		Logger:         log.Wrap(logger, log.ComponentHTTP),
	})

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting softy server", "port", cfg.Port, "backend", cfg.DataBackend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			logger.Error("Server error", "error", err, "port", cfg.Port)
			os.Exit(1)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown error", "error", err)
	}
	logger.Info("Server stopped gracefully")
}
