package app

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/Sina-Lotfi/storefront/internal/domain"
	"github.com/Sina-Lotfi/storefront/internal/messaging/kafka"
	outboxsvc "github.com/Sina-Lotfi/storefront/internal/service/outbox"
	"github.com/Sina-Lotfi/storefront/internal/storage/memory"
	"github.com/Sina-Lotfi/storefront/internal/storage/postgres"
)

// Dependencies bundles the storage and messaging backends the services run on.
type Dependencies struct {
	Catalog   domain.CatalogRepository
	Carts     domain.CartRepository
	Customers domain.CustomerRepository
	Orders    domain.OrderRepository
	Checkout  domain.CheckoutRepository
	Outbox    domain.OutboxRepository

	Publisher    domain.OutboxPublisher
	DLQPublisher domain.OutboxPublisher

	Store    *postgres.Store
	Producer *kafka.Producer

	Logger *log.Entry
}

// NewDependencies wires storage and messaging from the config: postgres when a
// DSN is set, the in-memory store otherwise, and kafka when brokers are set,
// the logging publisher otherwise.
func NewDependencies(ctx context.Context, cfg Config, logger *log.Entry) (*Dependencies, error) {
	if logger == nil {
		logger = log.WithField("component", "app")
	}

	deps := &Dependencies{Logger: logger}

	if cfg.PostgresDSN != "" {
		store, err := postgres.Open(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		if err := store.EnsureSchema(ctx); err != nil {
			_ = store.Close()
			return nil, fmt.Errorf("apply migrations: %w", err)
		}

		deps.Store = store
		deps.Catalog = postgres.NewCatalogRepository(store)
		deps.Carts = postgres.NewCartRepository(store)
		deps.Customers = postgres.NewCustomerRepository(store)
		deps.Orders = postgres.NewOrderRepository(store)
		deps.Checkout = postgres.NewCheckoutRepository(store)
		deps.Outbox = postgres.NewOutboxRepository(store)
		logger.Info("using postgres storage")
	} else {
		orders := memory.NewOrderRepository()
		catalog := memory.NewCatalogRepository(orders)
		carts := memory.NewCartRepository(catalog)
		outbox := memory.NewOutboxRepository()

		deps.Catalog = catalog
		deps.Carts = carts
		deps.Customers = memory.NewCustomerRepository()
		deps.Orders = orders
		deps.Checkout = memory.NewCheckoutRepository(carts, orders, outbox)
		deps.Outbox = outbox
		logger.Info("using in-memory storage")
	}

	producer, err := initKafkaProducer(cfg.KafkaBrokers, logger)
	if err != nil {
		deps.Close()
		return nil, err
	}
	if producer != nil {
		deps.Producer = producer
		deps.Publisher = kafka.NewOutboxPublisher(producer, kafka.TopicOrderEvents)
		deps.DLQPublisher = kafka.NewOutboxPublisher(producer, kafka.TopicDeadLetterQueue)
	} else {
		deps.Publisher = outboxsvc.NewLogPublisher(nil)
		logger.Info("no kafka brokers configured, events go to the log")
	}

	return deps, nil
}

// Close releases the postgres pool and the kafka producer.
func (d *Dependencies) Close() {
	closeKafka(d.Producer, d.Logger)
	if d.Store != nil {
		if err := d.Store.Close(); err != nil {
			d.Logger.WithError(err).Warn("failed to close postgres store")
		}
	}
}
