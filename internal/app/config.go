package app

import (
	"os"
	"strconv"
	"time"
)

// Config describes the runtime settings of the storefront service.
type Config struct {
	// HTTPAddr is the listen address of the REST API.
	HTTPAddr string
	// MetricsAddr is the listen address of the metrics and health endpoints.
	MetricsAddr string

	// PostgresDSN selects durable storage. When empty the service runs on the
	// in-memory store.
	PostgresDSN string
	// KafkaBrokers is a comma-separated broker list. When empty, events are
	// written to the log instead of a topic.
	KafkaBrokers string

	// OutboxPollInterval is how often pending outbox messages are drained.
	OutboxPollInterval time.Duration
	// CartCleanupInterval is how often abandoned carts are purged.
	CartCleanupInterval time.Duration
	// CartMaxAge is the retention window of an untouched cart.
	CartMaxAge time.Duration
}

// DefaultConfig returns the development defaults.
func DefaultConfig() Config {
	return Config{
		HTTPAddr:            ":8080",
		MetricsAddr:         ":9090",
		OutboxPollInterval:  1 * time.Second,
		CartCleanupInterval: 1 * time.Hour,
		CartMaxAge:          72 * time.Hour,
	}
}

// LoadConfigFromEnv overlays STOREFRONT_* environment variables on the
// defaults.
func LoadConfigFromEnv() Config {
	cfg := DefaultConfig()

	if v := os.Getenv("STOREFRONT_HTTP_ADDR"); v != "" {
		cfg.HTTPAddr = v
	}
	if v := os.Getenv("STOREFRONT_METRICS_ADDR"); v != "" {
		cfg.MetricsAddr = v
	}
	if v := os.Getenv("STOREFRONT_POSTGRES_DSN"); v != "" {
		cfg.PostgresDSN = v
	}
	if v := os.Getenv("STOREFRONT_KAFKA_BROKERS"); v != "" {
		cfg.KafkaBrokers = v
	}
	if d, ok := durationFromEnv("STOREFRONT_OUTBOX_POLL_INTERVAL"); ok {
		cfg.OutboxPollInterval = d
	}
	if d, ok := durationFromEnv("STOREFRONT_CART_CLEANUP_INTERVAL"); ok {
		cfg.CartCleanupInterval = d
	}
	if d, ok := durationFromEnv("STOREFRONT_CART_MAX_AGE"); ok {
		cfg.CartMaxAge = d
	}

	return cfg
}

// durationFromEnv reads a duration value; a bare integer is taken as seconds.
func durationFromEnv(key string) (time.Duration, bool) {
	raw := os.Getenv(key)
	if raw == "" {
		return 0, false
	}
	if d, err := time.ParseDuration(raw); err == nil && d > 0 {
		return d, true
	}
	if seconds, err := strconv.Atoi(raw); err == nil && seconds > 0 {
		return time.Duration(seconds) * time.Second, true
	}
	return 0, false
}
