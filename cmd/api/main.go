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
	"time"

	"github.com/dejobratic/shoporders/internal/config"
	"github.com/dejobratic/shoporders/internal/database"
	"github.com/dejobratic/shoporders/internal/eventbus"
	ordersadapters "github.com/dejobratic/shoporders/internal/orders/adapters"
	httpadapter "github.com/dejobratic/shoporders/internal/orders/adapters/http"
	ordersapp "github.com/dejobratic/shoporders/internal/orders/app"
	ordersmetrics "github.com/dejobratic/shoporders/internal/orders/metrics"
	"github.com/dejobratic/shoporders/internal/telemetry"
)

func main() {
	if err := run(); err != nil {
		slog.Error("service stopped", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	level, err := telemetry.ParseLevel(cfg.Telemetry.LogLevel)
	if err != nil {
		return err
	}
	logger := telemetry.NewLogger(level).With("service", cfg.Service.Name)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tel, err := telemetry.Initialize(ctx, telemetry.Config{
		ServiceName:    cfg.Service.Name,
		ServiceVersion: cfg.Service.Version,
		Environment:    cfg.Service.Environment,
		OTLPEndpoint:   cfg.Telemetry.OTelEndpoint,
		EnableTracing:  cfg.Telemetry.EnableTracing,
		EnableMetrics:  cfg.Telemetry.EnableMetrics,
		SampleRate:     cfg.Telemetry.SampleRate,
	})
	if err != nil {
		return fmt.Errorf("initialize telemetry: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tel.Shutdown(shutdownCtx); err != nil {
			logger.Error("failed to shutdown telemetry", "error", err)
		}
	}()

	meter := tel.Meter(cfg.Service.Name)
	dbMetrics, err := database.NewMetrics(meter, string(cfg.Storage.Driver))
	if err != nil {
		return err
	}
	busMetrics, err := eventbus.NewMetrics(meter)
	if err != nil {
		return err
	}
	orderMetrics, err := ordersmetrics.NewMetrics(meter)
	if err != nil {
		return err
	}
	httpMetrics, err := httpadapter.NewMetrics(meter)
	if err != nil {
		return err
	}

	store, err := openStorage(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("open %s storage: %w", cfg.Storage.Driver, err)
	}
	defer store.close(context.Background())

	repo := ordersadapters.NewObservableRepository(store.orders, dbMetrics)
	events := ordersadapters.NewObservableEventBus(eventbus.NewLogEventBus(logger), busMetrics)

	service := ordersapp.NewService(repo, events, store.idempotency, logger, orderMetrics, ordersapp.Options{
		Currency:             cfg.Orders.Currency,
		MaxPageSize:          cfg.Orders.MaxPageSize,
		StatusUpdateAttempts: cfg.Orders.StatusUpdateAttempts,
	})

	router := httpadapter.NewRouter(httpadapter.NewHandler(service, logger), httpadapter.RouterConfig{
		Logger:      logger,
		Metrics:     httpMetrics,
		Ready:       repo.Ping,
		MetricsPath: cfg.HTTP.MetricsPath,
		ServiceName: cfg.Service.Name,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("http server starting", "port", cfg.HTTP.Port, "storage", cfg.Storage.Driver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case <-ctx.Done():
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownGrace)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}
	logger.Info("http server stopped")
	return nil
}
