package cart

import (
	"context"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	log "github.com/sirupsen/logrus"

	"github.com/Sina-Lotfi/storefront/internal/domain"
)

const (
	defaultCleanupInterval  = 1 * time.Hour
	defaultCleanupBatchSize = 500
	defaultCartMaxAge       = 72 * time.Hour
)

var (
	cartCleanupRunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_cart_cleanup_runs_total",
		Help: "Total number of abandoned-cart cleanup runs grouped by result.",
	}, []string{"result"})
	cartCleanupDeletedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "storefront_cart_cleanup_deleted_total",
		Help: "Total number of deleted abandoned carts.",
	})
	cartCleanupLastDeleted = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "storefront_cart_cleanup_last_deleted",
		Help: "Number of carts deleted during the last cleanup run.",
	})
)

// CleanupOptions carries the tunables of the abandoned-cart cleanup worker.
type CleanupOptions struct {
	Logger    *log.Entry
	Interval  time.Duration
	BatchSize int
	MaxAge    time.Duration
}

// CleanupOption configures the CleanupWorker.
type CleanupOption func(*CleanupOptions)

// WithCleanupLogger sets the worker's logger.
func WithCleanupLogger(logger *log.Entry) CleanupOption {
	return func(opts *CleanupOptions) {
		opts.Logger = logger
	}
}

// WithCleanupInterval sets the pause between cleanup cycles.
func WithCleanupInterval(interval time.Duration) CleanupOption {
	return func(opts *CleanupOptions) {
		opts.Interval = interval
	}
}

// WithCleanupBatchSize sets how many carts one delete pass removes.
func WithCleanupBatchSize(batchSize int) CleanupOption {
	return func(opts *CleanupOptions) {
		opts.BatchSize = batchSize
	}
}

// WithCartMaxAge sets the retention window; carts created earlier than
// now minus the window count as abandoned.
func WithCartMaxAge(maxAge time.Duration) CleanupOption {
	return func(opts *CleanupOptions) {
		opts.MaxAge = maxAge
	}
}

// CleanupWorker periodically deletes carts that were never checked out.
type CleanupWorker struct {
	carts     domain.CartRepository
	logger    *log.Entry
	interval  time.Duration
	batchSize int
	maxAge    time.Duration
}

// NewCleanupWorker creates the abandoned-cart cleanup worker.
func NewCleanupWorker(carts domain.CartRepository, options ...CleanupOption) *CleanupWorker {
	opts := CleanupOptions{
		Interval:  defaultCleanupInterval,
		BatchSize: defaultCleanupBatchSize,
		MaxAge:    defaultCartMaxAge,
	}
	for _, option := range options {
		option(&opts)
	}

	logger := opts.Logger
	if logger == nil {
		logger = log.WithField("component", "cart-cleanup-worker")
	}

	if opts.Interval <= 0 {
		opts.Interval = defaultCleanupInterval
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = defaultCleanupBatchSize
	}
	if opts.MaxAge <= 0 {
		opts.MaxAge = defaultCartMaxAge
	}

	return &CleanupWorker{
		carts:     carts,
		logger:    logger,
		interval:  opts.Interval,
		batchSize: opts.BatchSize,
		maxAge:    opts.MaxAge,
	}
}

// Run deletes abandoned carts until ctx is canceled.
func (w *CleanupWorker) Run(ctx context.Context) {
	if w.carts == nil {
		w.logger.Warn("cart cleanup worker is disabled: repo is nil")
		return
	}

	w.cleanup(ctx, time.Now().UTC().Add(-w.maxAge))

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.cleanup(ctx, time.Now().UTC().Add(-w.maxAge))
		}
	}
}

func (w *CleanupWorker) cleanup(ctx context.Context, before time.Time) {
	deleted, err := w.DeleteAbandoned(ctx, before)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		cartCleanupRunsTotal.WithLabelValues("error").Inc()
		w.logger.WithError(err).Warn("cart cleanup run failed")
		return
	}

	cartCleanupRunsTotal.WithLabelValues("ok").Inc()
	cartCleanupLastDeleted.Set(float64(deleted))
	if deleted > 0 {
		w.logger.WithField("deleted", deleted).Info("abandoned carts deleted")
	}
}

// DeleteAbandoned removes every cart created before the cutoff, one batch at
// a time, and returns the number deleted.
func (w *CleanupWorker) DeleteAbandoned(ctx context.Context, before time.Time) (int, error) {
	if before.IsZero() {
		before = time.Now().UTC().Add(-w.maxAge)
	}

	totalDeleted := 0
	for {
		if err := ctx.Err(); err != nil {
			return totalDeleted, err
		}

		deleted, err := w.carts.DeleteOlderThan(before, w.batchSize)
		if err != nil {
			return totalDeleted, err
		}

		totalDeleted += deleted
		if deleted > 0 {
			cartCleanupDeletedTotal.Add(float64(deleted))
		}

		if deleted < w.batchSize {
			break
		}
	}

	return totalDeleted, nil
}
