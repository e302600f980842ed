package main

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/multierr"

	"github.com/hedgerow/hedgerow-backend/api/controllers"
	"github.com/hedgerow/hedgerow-backend/api/routes"
	"github.com/hedgerow/hedgerow-backend/internal/cart"
	"github.com/hedgerow/hedgerow-backend/internal/checkout"
	"github.com/hedgerow/hedgerow-backend/internal/pricing"
	"github.com/hedgerow/hedgerow-backend/pkg/config"
	"github.com/hedgerow/hedgerow-backend/pkg/db"
	"github.com/hedgerow/hedgerow-backend/pkg/enums"
	"github.com/hedgerow/hedgerow-backend/pkg/logger"
	"github.com/hedgerow/hedgerow-backend/pkg/metrics"
	"github.com/hedgerow/hedgerow-backend/pkg/migrate"
	"github.com/hedgerow/hedgerow-backend/pkg/pubsub"
	"github.com/hedgerow/hedgerow-backend/pkg/redis"
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

	var closers []io.Closer
	defer func() {
		var errs error
		for i := len(closers) - 1; i >= 0; i-- {
			errs = multierr.Append(errs, closers[i].Close())
		}
		if errs != nil {
			logg.Error(context.Background(), "error closing resources", errs)
		}
	}()

	var ready []controllers.Dependency

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	cartMetrics := metrics.NewCartMetrics(registry)
	httpMetrics := metrics.NewHTTPMetrics(registry)

	var store cart.BlobStore
	switch cfg.Cart.Driver() {
	case enums.CartStorageRedis:
		redisClient, err := redis.New(ctx, cfg.Redis, logg)
		if err != nil {
			logg.Error(ctx, "failed to bootstrap redis", err)
			os.Exit(1)
		}
		closers = append(closers, redisClient)
		ready = append(ready, controllers.Dependency{Name: "redis", Pinger: redisClient})
		store = cart.NewRedisStore(redisClient, cfg.Cart.BlobTTL)

	case enums.CartStorageDB:
		dbClient, err := db.New(ctx, cfg.DB, logg)
		if err != nil {
			logg.Error(ctx, "failed to bootstrap database", err)
			os.Exit(1)
		}
		closers = append(closers, dbClient)
		if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
			logg.Error(ctx, "failed to run dev migrations", err)
			os.Exit(1)
		}
		ready = append(ready, controllers.Dependency{Name: "database", Pinger: dbClient})
		store = cart.NewDBStore(dbClient.DB())

	default:
		store = cart.NewMemoryStore()
	}

	cartService, err := cart.NewService(store, logg, cartMetrics)
	if err != nil {
		logg.Error(ctx, "failed to create cart service", err)
		os.Exit(1)
	}

	var submitter checkout.OrderSubmitter = checkout.NewLogSubmitter(logg)
	if cfg.PubSub.Enabled() {
		psClient, err := pubsub.NewClient(ctx, cfg.PubSub, logg)
		if err != nil {
			logg.Error(ctx, "failed to bootstrap pubsub", err)
			os.Exit(1)
		}
		closers = append(closers, psClient)
		ready = append(ready, controllers.Dependency{Name: "pubsub", Pinger: psClient})
		submitter, err = checkout.NewPubSubSubmitter(psClient.OrdersPublisher())
		if err != nil {
			logg.Error(ctx, "failed to create order submitter", err)
			os.Exit(1)
		}
	}

	checkoutService, err := checkout.NewService(checkout.ServiceParams{
		Carts:     cartService,
		Submitter: submitter,
		FeeRules: pricing.FeeRules{
			FlatFee:                cfg.Delivery.FlatFeeAmount,
			FreeThreshold:          cfg.Delivery.FreeThresholdAmount,
			WaivedPostcodePrefixes: cfg.Delivery.WaivedPostcodePrefixes,
		},
		Slots:    cfg.Delivery.SlotLabels(),
		Logger:   logg,
		Recorder: cartMetrics,
	})
	if err != nil {
		logg.Error(ctx, "failed to create checkout service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	serverCtx := logg.WithFields(ctx, map[string]any{
		"env":          cfg.App.Env,
		"addr":         addr,
		"cart_storage": cfg.Cart.Driver().String(),
	})

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(cfg, logg, routes.Dependencies{
			Carts:       cartService,
			Checkout:    checkoutService,
			Gatherer:    registry,
			HTTPMetrics: httpMetrics,
			Ready:       ready,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logg.Info(serverCtx, "starting api server")
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(serverCtx, "api server stopped unexpectedly", err)
		}
	case <-ctx.Done():
		logg.Info(serverCtx, "shutting down api server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(serverCtx, "api server shutdown failed", err)
		}
	}
}
