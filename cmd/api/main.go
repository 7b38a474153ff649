package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/ecofinds-backend/api/routes"
	"github.com/angelmondragon/ecofinds-backend/internal/marketplace"
	"github.com/angelmondragon/ecofinds-backend/internal/notices"
	"github.com/angelmondragon/ecofinds-backend/pkg/config"
	"github.com/angelmondragon/ecofinds-backend/pkg/logger"
	"github.com/angelmondragon/ecofinds-backend/pkg/metrics"
	"github.com/angelmondragon/ecofinds-backend/pkg/security"
)

const shutdownTimeout = 10 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
		Format:      cfg.App.LogFormat,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	backend, err := openStorage(ctx, cfg, logg)
	if err != nil {
		logg.Error(ctx, "failed to open storage", err)
		os.Exit(1)
	}
	defer backend.Close(context.Background(), logg)

	var seed *marketplace.Snapshot
	if cfg.Seed.File != "" {
		seed, err = marketplace.LoadSeedFile(cfg.Seed.File)
		if err != nil {
			logg.Error(logg.WithField(ctx, "seed_file", cfg.Seed.File), "failed to load seed file", err)
			os.Exit(1)
		}
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	recorder := notices.NewRecorder(cfg.Notices.Capacity, logg)

	store, err := marketplace.NewStore(ctx, marketplace.StoreParams{
		Storage:     backend.store,
		Verifier:    security.NewArgonVerifier(cfg.Password),
		Logger:      logg,
		IDs:         marketplace.UUIDGenerator{},
		Notifier:    recorder,
		Metrics:     metrics.NewStoreMetrics(registry),
		AdminBypass: cfg.Auth.AdminBypass,
		Seed:        seed,
	})
	if err != nil {
		logg.Error(ctx, "failed to create marketplace store", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx = logg.WithFields(ctx, map[string]any{
		"env":     cfg.App.Env,
		"addr":    addr,
		"storage": cfg.Storage.NormalizedDriver(),
	})

	server := &http.Server{
		Addr:              addr,
		Handler:           routes.NewRouter(cfg, logg, store, recorder, backend.pingers, promhttp.HandlerFor(registry, promhttp.HandlerOpts{})),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logg.Info(ctx, "starting api server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-ctx.Done():
		logg.Info(ctx, "shutting down api server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "graceful shutdown failed", err)
		}
	}
}
