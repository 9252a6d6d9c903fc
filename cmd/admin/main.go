// Copyright (c) 2026 Shopdesk. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Command admin is the entry point for the Shopdesk back-office server.
//
// # Startup Sequence
//
//  1. Initialize structured logger.
//  2. Load configuration from environment variables.
//  3. Connect to Redis (parent cache).
//  4. Load the operator token verifier.
//  5. Build the catalog API client.
//  6. Wire the category tree workflow.
//  7. Start HTTP server with graceful shutdown.
//
// No business logic lives here. All wiring is explicit constructor injection.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/shopdesk/internal/admin/category"
	"github.com/taibuivan/shopdesk/internal/api"
	"github.com/taibuivan/shopdesk/internal/platform/apiclient"
	"github.com/taibuivan/shopdesk/internal/platform/config"
	"github.com/taibuivan/shopdesk/internal/platform/constants"
	"github.com/taibuivan/shopdesk/internal/platform/metrics"
	"github.com/taibuivan/shopdesk/internal/platform/notify"
	redisstore "github.com/taibuivan/shopdesk/internal/platform/redis"
	"github.com/taibuivan/shopdesk/internal/platform/sec"
)

func main() {
	// ── 1. Logger ──────────────────────────────────────────────────────────
	// Initialize first so that subsequent startup errors are structured JSON.
	rawLog := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	log := rawLog.With(slog.String("app", constants.AdminAppName))
	slog.SetDefault(log)

	log.Info("service_initializing", slog.String("version", constants.AppVersion))

	// ── 2. Configuration ──────────────────────────────────────────────────
	cfg, err := config.LoadAdmin()
	must(log, err, "load configuration")

	if cfg.Debug {
		debugLog := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
		log = debugLog.With(slog.String("app", constants.AdminAppName))
		slog.SetDefault(log)
		log.Debug("debug_logging_enabled")
	}

	log.Info("configuration_loaded",
		slog.String("environment", cfg.Environment),
		slog.String("port", cfg.ServerPort),
		slog.String("catalog_api", cfg.CatalogAPIURL),
	)

	// Cancelled on shutdown; stops the tree sweeper and the rate limiter janitor.
	rootCtx, rootCancel := context.WithCancel(context.Background())
	defer rootCancel()

	startupCtx, startupCancel := context.WithTimeout(rootCtx, 30*time.Second)
	defer startupCancel()

	// ── 3. Redis ──────────────────────────────────────────────────────────
	rdb, err := redisstore.NewClient(startupCtx, cfg.RedisURL, cfg.RedisPoolSize, log)
	must(log, err, "connect to redis")
	defer func() {
		log.Info("closing_redis_client")
		if cerr := rdb.Close(); cerr != nil {
			log.Error("redis_close_failed", slog.Any("error", cerr))
		}
	}()

	// ── 4. Token Verifier ─────────────────────────────────────────────────
	verifier, err := sec.NewTokenVerifier(cfg.JWTPubKeyPath, constants.AuthIssuer)
	must(log, err, "load jwt public key")

	// ── 5. Catalog API Client ─────────────────────────────────────────────
	collector := metrics.NewCollector("shopdesk_admin")

	client := apiclient.New(apiclient.Config{
		BaseURL:   cfg.CatalogAPIURL,
		Timeout:   cfg.APITimeout,
		RateRPS:   cfg.APIRateRPS,
		RateBurst: cfg.APIRateBurst,
	}, collector)

	// ── 6. Domain Wiring ──────────────────────────────────────────────────
	categoryRepository := category.NewAPIRepository(client)
	hub := notify.NewHub(constants.NotificationFeedSize)

	registry := category.NewTreeRegistry(categoryRepository, hub, collector, cfg.TreeIdleTTL, log)
	go registry.Run(rootCtx)

	parentCache := category.NewRedisParentCache(rdb, cfg.ParentCacheTTL, collector)
	categoryService := category.NewService(categoryRepository, registry, parentCache, log)
	categoryHandler := category.NewHandler(categoryService, hub)

	liveness, readiness := api.NewHealthHandlers(api.HealthDependencies{
		CheckCache: func(ctx context.Context) error {
			return redisstore.Ping(ctx, rdb)
		},
		CheckCatalog: func(ctx context.Context) error {
			_, err := categoryRepository.FetchRootPage(ctx, 1, 1)
			return err
		},
	}, log)

	// ── 7. HTTP Server ────────────────────────────────────────────────────
	handlers := api.Handlers{
		Liveness:  liveness,
		Readiness: readiness,
		Mount: func(router chi.Router) {
			router.Mount("/admin", categoryHandler.Routes())
		},
	}

	server := api.NewServer(rootCtx, &cfg.Server, log, verifier, collector, handlers)

	// ── 8. Graceful Shutdown ──────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)

	serverErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Block until OS signal or server error.
	select {
	case sig := <-quit:
		log.Info("shutdown_signal_received", slog.String("signal", sig.String()))
	case err := <-serverErr:
		log.Error("server_startup_failed", slog.Any("error", err))
	}

	// Reorders persisting in the background finish within the shutdown window
	// or are abandoned; the catalog stays authoritative either way.
	shutdownTimeout := constants.ShutdownTimeout
	log.Info("server_shutting_down", slog.Duration("timeout", shutdownTimeout))

	if err := server.Shutdown(shutdownTimeout); err != nil {
		log.Error("shutdown_failed", slog.Any("error", err))
		os.Exit(1)
	}

	log.Info("server_stopped")
}

// must logs a structured fatal error and terminates the process if err is non-nil.
//
// It is limited to startup wiring. After startup, all errors are returned
// and handled explicitly.
func must(log *slog.Logger, err error, context string) {
	if err != nil {
		log.Error("startup_failure",
			slog.String("context", context),
			slog.Any("error", err),
		)
		os.Exit(1)
	}
}
