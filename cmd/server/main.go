package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"rates-service/internal/adapter/cache"
	httpRouter "rates-service/internal/adapter/http"
	"rates-service/internal/adapter/provider"
	"rates-service/internal/adapter/storage"
	"rates-service/internal/config"
	"rates-service/internal/domain/model"
	"rates-service/internal/domain/ports"
	"rates-service/internal/metrics"
	"rates-service/internal/scheduler"
	"rates-service/internal/service"
	"rates-service/pkg/logger"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.NewLoggerWithFormat(cfg.Log.Level, cfg.Log.Format)
	defer log.Sync()
	log.Info("Starting rates service")

	if err := cfg.Validate(); err != nil {
		log.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}

	appMetrics := metrics.NewMetrics(prometheus.DefaultRegisterer)

	store, closeStore, err := storage.New(cfg.Storage)
	if err != nil {
		log.Error("Failed to open storage", "backend", cfg.Storage.Backend, "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := closeStore(); err != nil {
			log.Error("Failed to close storage", "error", err)
		}
	}()
	log.Info("Storage ready", "backend", cfg.Storage.Backend)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	currencyFeed, currencyScheduler := newFeed[model.CurrencyRate](
		ctx, model.FeedCurrency, cfg.Currency,
		provider.NewCurrencyAPI(
			cfg.Currency.BaseURL,
			cfg.Currency.Timeout,
			cfg.Currency.SyntheticChange,
			log,
			provider.WithMinInterval(cfg.Currency.MinFetchInterval),
		),
		store, model.DefaultCurrencyRates, log, appMetrics,
	)
	cryptoFeed, cryptoScheduler := newFeed[model.CryptoRate](
		ctx, model.FeedCrypto, cfg.Crypto,
		provider.NewCoinGecko(
			cfg.Crypto.BaseURL,
			cfg.Crypto.Timeout,
			cfg.Crypto.PageSize,
			provider.WithMinInterval(cfg.Crypto.MinFetchInterval),
		),
		store, model.DefaultCryptoRates, log, appMetrics,
	)

	converter := service.NewConverter(currencyFeed, cryptoFeed, log)
	handler := httpRouter.NewHandler(map[model.Feed]ports.FeedService{
		model.FeedCurrency: currencyFeed,
		model.FeedCrypto:   cryptoFeed,
	}, converter, log, appMetrics)

	router := httpRouter.NewRouter(handler, log, appMetrics, prometheus.DefaultGatherer)
	routes := router.SetupRoutes()

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      routes,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	currencyScheduler.Start(ctx, cfg.Currency.PollInterval)
	cryptoScheduler.Start(ctx, cfg.Crypto.PollInterval)

	go func() {
		log.Info("Starting HTTP server", "port", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("HTTP server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	currencyScheduler.Stop()
	cryptoScheduler.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", "error", err)
		return
	}

	log.Info("Server exited")
}

// newFeed wires one feed: snapshot store, cache manager, scheduler, and the
// consumer boundary over them.
func newFeed[T model.Entry](
	ctx context.Context,
	feed model.Feed,
	cfg config.FeedConfig,
	source ports.RateProvider[T],
	store ports.Storage,
	defaults []T,
	log *logger.Logger,
	m *metrics.Metrics,
) (*service.Feed[T], *scheduler.Scheduler[T]) {
	snapshots := cache.NewSnapshotStore[T](store, cache.KeyFor(feed), log)
	manager := service.NewCacheManager[T](ctx, feed, source, snapshots, cfg.CacheTTL, log, m)

	sched := scheduler.New[T](feed, manager, log, m)
	sched.ToggleAutoRefresh(cfg.AutoRefresh)

	return service.NewFeed(manager, sched, defaults, log), sched
}
