package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/printloom/printloom/internal/app"
	"github.com/printloom/printloom/internal/inventory"
	"github.com/printloom/printloom/internal/ledger"
	"github.com/printloom/printloom/internal/metrics"
	"github.com/printloom/printloom/internal/platform/cache"
	"github.com/printloom/printloom/internal/platform/db"
	"github.com/printloom/printloom/internal/sales"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	dbpool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbpool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Warn("redis unavailable, metrics cache disabled", slog.Any("error", err))
	} else {
		defer func() {
			if err := redisClient.Close(); err != nil {
				logger.Warn("redis close", slog.Any("error", err))
			}
		}()
	}

	inventoryRepo := inventory.NewRepository(dbpool)
	inventoryService := inventory.NewService(inventoryRepo)
	inventoryHandler := inventory.NewHandler(logger, inventoryService)

	ledgerRepo := ledger.NewRepository(dbpool)

	metricsCache := metrics.NewCache(redisClient, cfg.MetricsCacheTTL)
	metricsService := metrics.NewService(ledgerRepo, metricsCache)
	metricsHandler := metrics.NewHandler(logger, metricsService)

	salesRepo := sales.NewRepository(dbpool)
	salesService := sales.NewService(salesRepo, ledgerRepo, metricsCache, logger, sales.ServiceConfig{
		AllowNegativeStock: cfg.AllowNegativeStock,
	})
	salesHandler := sales.NewHandler(logger, salesService)

	router := app.NewRouter(app.RouterParams{
		Logger:           logger,
		Config:           cfg,
		InventoryHandler: inventoryHandler,
		SalesHandler:     salesHandler,
		MetricsHandler:   metricsHandler,
		Pool:             dbpool,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
