package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/antonminaichev/laundry-orders/internal/events"
	"github.com/antonminaichev/laundry-orders/internal/logger"
	"github.com/antonminaichev/laundry-orders/internal/metrics"
	"github.com/antonminaichev/laundry-orders/internal/notify"
	"github.com/antonminaichev/laundry-orders/internal/order"
	"github.com/antonminaichev/laundry-orders/internal/ordercode"
	"github.com/antonminaichev/laundry-orders/internal/pricing"
	"github.com/antonminaichev/laundry-orders/internal/report"
	"github.com/antonminaichev/laundry-orders/internal/router"
	"github.com/antonminaichev/laundry-orders/internal/storage"
	"github.com/antonminaichev/laundry-orders/internal/storage/mongo"
	"github.com/antonminaichev/laundry-orders/internal/storage/postgres"
	"github.com/antonminaichev/laundry-orders/internal/storage/sqlite"
	"github.com/antonminaichev/laundry-orders/internal/user"
	"go.uber.org/zap"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func openStore(ctx context.Context, cfg *Config) (storage.Storage, error) {
	switch cfg.StoreDriver {
	case "postgres":
		return postgres.NewPostgresStorage(ctx, cfg.DatabaseConnection)
	case "sqlite":
		return sqlite.Open(cfg.SQLitePath)
	case "mongo":
		return mongo.NewMongoStorage(ctx, cfg.DatabaseConnection, cfg.MongoDatabase)
	}
	return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
}

func rateTable(cfg *Config) (pricing.RateTable, error) {
	perKg, err := pricing.ParseRates(cfg.WeightRates)
	if err != nil {
		return pricing.RateTable{}, fmt.Errorf("WEIGHT_RATES: %w", err)
	}
	perUnit, err := pricing.ParseRates(cfg.UnitRates)
	if err != nil {
		return pricing.RateTable{}, fmt.Errorf("UNIT_RATES: %w", err)
	}
	return pricing.DefaultRates().WithOverrides(perKg, perUnit), nil
}

// codeGenerator picks the order code strategy. The returned closer is never nil.
func codeGenerator(cfg *Config, loc *time.Location, store storage.Storage) (ordercode.Generator, func() error, error) {
	noop := func() error { return nil }
	switch cfg.CodeStrategy {
	case ordercode.StrategyRandom:
		return ordercode.NewRandomGenerator(loc), noop, nil
	case ordercode.StrategySequential:
		if cfg.RedisAddr != "" {
			c := ordercode.NewRedisCounter(cfg.RedisAddr, "laundry", loc)
			return ordercode.NewSequentialGenerator(loc, c), c.Close, nil
		}
		logger.Log.Warn("REDIS_ADDR not set, sequential codes are counted from the store")
		return ordercode.NewSequentialGenerator(loc, &ordercode.StoreCounter{Loc: loc, Store: store}), noop, nil
	}
	return nil, nil, fmt.Errorf("unknown code strategy %q", cfg.CodeStrategy)
}

func run() error {
	cfg, err := NewConfig()
	if err != nil {
		return err
	}
	if err := logger.Initialize(cfg.LogLevel); err != nil {
		return err
	}
	defer logger.Log.Sync()

	loc, err := time.LoadLocation(cfg.TimeZone)
	if err != nil {
		return fmt.Errorf("TIME_ZONE: %w", err)
	}
	rates, err := rateTable(cfg)
	if err != nil {
		return err
	}
	statuses, err := notify.ParseStatuses(cfg.NotifyStatuses)
	if err != nil {
		return fmt.Errorf("NOTIFY_STATUSES: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	initCtx, cancelInit := context.WithTimeout(ctx, 10*time.Second)
	defer cancelInit()

	store, err := openStore(initCtx, cfg)
	if err != nil {
		return fmt.Errorf("open %s store: %w", cfg.StoreDriver, err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Log.Warn("failed to close storage", zap.Error(err))
		}
	}()
	if err := store.Ping(initCtx); err != nil {
		return fmt.Errorf("ping store: %w", err)
	}

	codes, closeCodes, err := codeGenerator(cfg, loc, store)
	if err != nil {
		return err
	}
	defer closeCodes()

	reg := metrics.NewRegistry()

	dispatcher := notify.NewDispatcher(notify.Config{
		Workers:   cfg.NotifyWorkers,
		QueueSize: cfg.NotifyQueueSize,
		Timeout:   cfg.NotifyTimeout,
		Attempts:  cfg.NotifyAttempts,
	}, reg)
	dispatcher.Start(ctx)

	var sender notify.Sender = notify.NopSender{}
	if cfg.NotifyURL != "" {
		sender = &notify.HTTPSender{
			Client: &http.Client{Timeout: cfg.NotifyTimeout},
			URL:    cfg.NotifyURL,
			Token:  cfg.NotifyToken,
		}
	} else {
		logger.Log.Warn("NOTIFY_URL not set, messages are discarded")
	}

	// Events get a single worker of their own so each order's events keep their sequence.
	eventDispatcher := notify.NewDispatcher(notify.Config{
		Workers:   1,
		QueueSize: cfg.NotifyQueueSize,
		Timeout:   cfg.NotifyTimeout,
		Attempts:  cfg.NotifyAttempts,
	}, reg)

	var publisher notify.EventPublisher
	if brokers := events.ParseBrokers(cfg.KafkaBrokers); len(brokers) > 0 {
		p := events.NewPublisher(brokers, cfg.KafkaTopic)
		defer func() {
			if err := p.Close(); err != nil {
				logger.Log.Warn("failed to close event publisher", zap.Error(err))
			}
		}()
		publisher = p
		eventDispatcher.Start(ctx)
	}

	notifier := notify.NewNotifier(dispatcher, sender, publisher, notify.NotifierConfig{
		AdminPhone: cfg.AdminPhone,
		QueueURL:   cfg.QueueURL,
		Statuses:   statuses,
		EventQueue: eventDispatcher,
	})

	userSvc := user.NewService(store, []byte(cfg.JWTSecret), cfg.JWTTTL)
	if err := userSvc.EnsureAdmin(initCtx, cfg.AdminLogin, cfg.AdminPassword); err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}

	orderSvc := order.NewService(store, pricing.NewEngine(rates), codes, notifier,
		order.WithPolicy(order.PolicyFor(cfg.StrictTransitions)),
		order.WithMetrics(reg),
		order.WithCodeAttempts(cfg.CodeAttempts),
	)
	reportSvc := report.NewService(store, loc)

	r := router.NewRouter(router.Deps{
		Users:     user.NewHandler(userSvc),
		Orders:    order.NewHandler(orderSvc),
		Reports:   report.NewHandler(reportSvc),
		UserRepo:  store,
		JWTSecret: []byte(cfg.JWTSecret),
		AdminAuth: cfg.AdminAuth,
		Metrics:   reg,
		Store:     store,
	})

	srv := &http.Server{
		Addr:         cfg.Address,
		Handler:      r,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Log.Info("starting server",
			zap.String("address", srv.Addr), zap.String("store", cfg.StoreDriver),
			zap.String("code_strategy", cfg.CodeStrategy), zap.String("time_zone", loc.String()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case <-ctx.Done():
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
	}
	logger.Log.Info("shutting down server")

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()

	if err := srv.Shutdown(ctxShutdown); err != nil {
		logger.Log.Error("server forced to shutdown", zap.Error(err))
	}
	if err := dispatcher.Stop(ctxShutdown); err != nil {
		logger.Log.Warn("notification queue not drained", zap.Error(err))
	}
	if err := eventDispatcher.Stop(ctxShutdown); err != nil {
		logger.Log.Warn("event queue not drained", zap.Error(err))
	}

	logger.Log.Info("server stopped gracefully")
	return nil
}
