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

	"github.com/redis/go-redis/v9"

	"github.com/ArtemisE1Tara/pdf-guide-shop/internal/admin"
	"github.com/ArtemisE1Tara/pdf-guide-shop/internal/auth"
	"github.com/ArtemisE1Tara/pdf-guide-shop/internal/cart"
	"github.com/ArtemisE1Tara/pdf-guide-shop/internal/catalog"
	"github.com/ArtemisE1Tara/pdf-guide-shop/internal/checkout"
	"github.com/ArtemisE1Tara/pdf-guide-shop/internal/config"
	"github.com/ArtemisE1Tara/pdf-guide-shop/internal/db"
	"github.com/ArtemisE1Tara/pdf-guide-shop/internal/events"
	httpapi "github.com/ArtemisE1Tara/pdf-guide-shop/internal/http"
	"github.com/ArtemisE1Tara/pdf-guide-shop/internal/logging"
	"github.com/ArtemisE1Tara/pdf-guide-shop/internal/metrics"
	"github.com/ArtemisE1Tara/pdf-guide-shop/internal/order"
	"github.com/ArtemisE1Tara/pdf-guide-shop/internal/webhook"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "storefront: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, closeLog, err := logging.New(cfg.Log, "storefront")
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer closeLog.Close()
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- DB ---
	if cfg.RunMigrations {
		if err := db.RunMigrations(cfg.DatabaseDSN, logger); err != nil {
			return fmt.Errorf("db migrate: %w", err)
		}
	}

	pool, err := db.NewPool(ctx, cfg.DatabaseDSN)
	if err != nil {
		return fmt.Errorf("db connect: %w", err)
	}
	defer pool.Close()

	sqlDB, err := db.Open(ctx, cfg.DatabaseDSN)
	if err != nil {
		return fmt.Errorf("db open: %w", err)
	}
	defer sqlDB.Close()

	m := metrics.New()

	// --- cart storage ---
	var persister cart.Persister
	switch cfg.CartBackend {
	case config.BackendRedis:
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("parse redis url: %w", err)
		}
		rdb := redis.NewClient(opts)
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("redis ping: %w", err)
		}
		persister = cart.NewRedisPersister(rdb, cfg.CartTTL)
	case config.BackendMemory:
		logger.Warn("cart snapshots are held in memory and will not survive a restart")
		persister = cart.NewMemoryPersister()
	default:
		persister = cart.NewPostgresPersister(pool)
	}
	carts := cart.NewService(persister, cfg.CartNamespace, logger, cart.WithRecorder(m))

	// --- AMQP ---
	var publisher events.Publisher = events.NoopPublisher{}
	if cfg.PublishEvents {
		conn, err := events.Dial(cfg.RabbitURL)
		if err != nil {
			return fmt.Errorf("rabbitmq dial: %w", err)
		}
		defer conn.Close()

		rp, err := events.NewRabbitPublisher(conn, events.NewSequenceRepository(pool))
		if err != nil {
			return fmt.Errorf("rabbitmq publisher: %w", err)
		}
		defer rp.Close()
		publisher = rp
	}

	// --- domain services ---
	products := catalog.NewService(catalog.NewPostgresRepository(pool))
	orders := order.NewRepository(sqlDB)
	admins := admin.NewAuthorizer(admin.NewRepository(sqlDB), cfg.AdminEmail)
	checkouts := checkout.NewService(products, orders, publisher, cfg.TaxRate, logger,
		checkout.WithRecorder(m),
		checkout.WithMaxConcurrent(cfg.CheckoutConcurrency),
	)

	deps := httpapi.Deps{
		Logger:           logger,
		Catalog:          products,
		Carts:            carts,
		Checkout:         checkouts,
		Orders:           order.NewService(orders),
		Admins:           admins,
		Metrics:          m,
		TaxRate:          cfg.TaxRate,
		CORSAllowOrigins: cfg.CORSAllowOrigins,
		SecureCookies:    cfg.SecureCookies,
		RequestTimeout:   cfg.RequestTimeout,
	}

	if cfg.ClerkJWTPublicKey != "" {
		v, err := auth.NewRSAVerifier(cfg.ClerkJWTPublicKey)
		if err != nil {
			return fmt.Errorf("session verifier: %w", err)
		}
		deps.Tokens = v
	} else {
		logger.Warn("CLERK_JWT_PUBLIC_KEY not set; every request is treated as anonymous")
	}

	if cfg.ClerkWebhookSecret != "" {
		v, err := webhook.NewSvixVerifier(cfg.ClerkWebhookSecret)
		if err != nil {
			return fmt.Errorf("webhook verifier: %w", err)
		}
		deps.Webhook = webhook.NewClerkHandler(v, admins, logger)
	}

	// --- HTTP ---
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           httpapi.NewRouter(deps),
		ReadHeaderTimeout: 5 * time.Second,
	}

	return serve(ctx, srv, logger)
}

// serve runs srv until ctx is cancelled or the listener fails, then shuts
// it down. A listener failure is returned.
func serve(ctx context.Context, srv *http.Server, logger *slog.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		logger.Info("http listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	var serveErr error
	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case serveErr = <-errCh:
		logger.Error("http server failed", "err", serveErr)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown", "err", err)
	}

	logger.Info("shutdown complete")
	if serveErr != nil {
		return fmt.Errorf("http server: %w", serveErr)
	}
	return nil
}
