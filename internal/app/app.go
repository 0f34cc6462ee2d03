// Package app wires the storefront service together and runs it.
package app

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"

	apihttp "github.com/Sina-Lotfi/storefront/internal/api/http"
	healthcheck "github.com/Sina-Lotfi/storefront/internal/health"
	"github.com/Sina-Lotfi/storefront/internal/metrics"
	cartsvc "github.com/Sina-Lotfi/storefront/internal/service/cart"
	checkoutsvc "github.com/Sina-Lotfi/storefront/internal/service/checkout"
	customersvc "github.com/Sina-Lotfi/storefront/internal/service/customer"
	outboxsvc "github.com/Sina-Lotfi/storefront/internal/service/outbox"
	"github.com/Sina-Lotfi/storefront/internal/version"
)

// Run starts the storefront service and blocks until ctx is canceled or the
// HTTP server fails.
func Run(ctx context.Context, cfg Config) error {
	logger := log.WithField("component", "app")

	deps, err := NewDependencies(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer deps.Close()

	cartService := cartsvc.NewService(deps.Carts, deps.Catalog, logger.WithField("component", "cart-service"))
	customerResolver := customersvc.NewResolver(deps.Customers, logger.WithField("component", "customer-resolver"))
	checkoutService := checkoutsvc.NewService(
		deps.Customers,
		deps.Checkout,
		deps.Orders,
		metrics.NewCheckoutMetrics(),
		logger.WithField("component", "checkout-service"),
	)

	outboxWorker := outboxsvc.NewWorker(
		deps.Outbox,
		deps.Publisher,
		outboxsvc.WithLogger(logger.WithField("component", "outbox-worker")),
		outboxsvc.WithDLQPublisher(deps.DLQPublisher),
		outboxsvc.WithPollInterval(cfg.OutboxPollInterval),
	)
	cleanupWorker := cartsvc.NewCleanupWorker(
		deps.Carts,
		cartsvc.WithCleanupLogger(logger.WithField("component", "cart-cleanup-worker")),
		cartsvc.WithCleanupInterval(cfg.CartCleanupInterval),
		cartsvc.WithCartMaxAge(cfg.CartMaxAge),
	)

	go outboxWorker.Run(ctx)
	go cleanupWorker.Run(ctx)

	healthHandler := healthcheck.NewHandler(version.GetVersion())
	if deps.Store != nil {
		healthHandler.RegisterChecker("postgres", healthcheck.NewSimpleChecker("postgres", func() error {
			pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return deps.Store.Ping(pingCtx)
		}))
	}

	metricsSrv := startMetricsServer(ctx, cfg.MetricsAddr, logger, healthHandler)

	apiServer := apihttp.NewServer(
		deps.Catalog,
		cartService,
		customerResolver,
		checkoutService,
		logger.WithField("component", "http-api"),
	)
	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: apiServer.Handler()}

	errCh := make(chan error, 1)
	go func() {
		logger.Infof("http api listening on %s", cfg.HTTPAddr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received, stopping http servers")
		shutdownHTTP(srv, logger)
		shutdownHTTP(metricsSrv, logger)
		return ctx.Err()
	case err := <-errCh:
		shutdownHTTP(metricsSrv, logger)
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// startMetricsServer serves /metrics and the health endpoints.
func startMetricsServer(ctx context.Context, addr string, logger *log.Entry, healthHandler *healthcheck.Handler) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/healthz", healthHandler)
	mux.HandleFunc("/livez", healthcheck.LivenessHandler)
	mux.HandleFunc("/readyz", healthHandler.ReadinessHandler)

	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		logger.Infof("metrics available at %s/metrics", addr)
		logger.Infof("health checks: %s/healthz, %s/livez, %s/readyz", addr, addr, addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Warn("metrics server failed")
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownHTTP(srv, logger)
	}()

	return srv
}

// shutdownHTTP stops an HTTP server with a bounded grace period.
func shutdownHTTP(srv *http.Server, logger *log.Entry) {
	if srv == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.WithError(err).Warn("http shutdown with error")
	}
}
