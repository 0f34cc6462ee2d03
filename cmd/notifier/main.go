package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/IBM/sarama"
	log "github.com/sirupsen/logrus"

	"github.com/Sina-Lotfi/storefront/internal/domain"
	"github.com/Sina-Lotfi/storefront/internal/messaging/kafka"
	"github.com/Sina-Lotfi/storefront/internal/version"
)

const (
	defaultGroupID    = "storefront-notifier"
	defaultMaxRetries = 3
)

func setupLogger() {
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	log.SetLevel(log.InfoLevel)
}

// handleOrderEvent turns order events into customer notifications. Only
// order_created envelopes produce a notification; everything else is
// acknowledged and skipped so new event types never wedge the group.
func handleOrderEvent(logger *log.Entry) kafka.MessageHandler {
	return func(_ context.Context, message *sarama.ConsumerMessage) error {
		envelope, err := kafka.ParseEnvelope(message)
		if err != nil {
			return err
		}

		if envelope.EventType != domain.EventOrderCreated {
			logger.WithField("event_type", envelope.EventType).Debug("skipping event")
			return nil
		}

		payload, err := envelope.OrderCreated()
		if err != nil {
			return err
		}

		logger.WithFields(log.Fields{
			"order_id":    payload.OrderID,
			"customer_id": payload.CustomerID,
			"total":       payload.Total.StringFixed(2),
			"item_count":  payload.ItemCount,
		}).Info("order confirmation sent")
		return nil
	}
}

func main() {
	setupLogger()
	logger := log.WithField("component", "notifier")

	var (
		brokersFlag string
		groupID     string
	)
	flag.StringVar(&brokersFlag, "brokers", "", "comma-separated Kafka brokers (fallback: STOREFRONT_KAFKA_BROKERS)")
	flag.StringVar(&groupID, "group", defaultGroupID, "Kafka consumer group id")
	flag.Parse()

	if strings.TrimSpace(brokersFlag) == "" {
		brokersFlag = strings.TrimSpace(os.Getenv("STOREFRONT_KAFKA_BROKERS"))
	}
	if brokersFlag == "" {
		logger.Fatal("STOREFRONT_KAFKA_BROKERS (or -brokers) is required")
	}
	brokers := splitBrokers(brokersFlag)

	logger.WithFields(log.Fields{
		"brokers": brokers,
		"group":   groupID,
		"version": version.String(),
	}).Info("starting notifier")

	dlqProducer, err := kafka.NewProducer(brokers)
	if err != nil {
		logger.WithError(err).Fatal("failed to create DLQ producer")
	}
	defer func() {
		if err := dlqProducer.Close(); err != nil {
			logger.WithError(err).Error("failed to close DLQ producer")
		}
	}()

	consumer, err := kafka.NewConsumerWithDLQ(
		brokers,
		groupID,
		[]string{kafka.TopicOrderEvents},
		handleOrderEvent(logger),
		dlqProducer,
		defaultMaxRetries,
	)
	if err != nil {
		logger.WithError(err).Fatal("failed to create consumer")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := consumer.Start(ctx); err != nil {
		logger.WithError(err).Fatal("failed to start consumer")
	}

	<-ctx.Done()
	logger.Info("shutting down notifier")

	if err := consumer.Stop(); err != nil {
		logger.WithError(err).Error("failed to stop consumer")
	}
	logger.Info("notifier stopped")
}

func splitBrokers(raw string) []string {
	parts := strings.Split(raw, ",")
	brokers := make([]string, 0, len(parts))
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			brokers = append(brokers, part)
		}
	}
	return brokers
}
