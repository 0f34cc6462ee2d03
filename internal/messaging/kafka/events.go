package kafka

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/IBM/sarama"

	"github.com/Sina-Lotfi/storefront/internal/domain"
)

// Kafka topics.
const (
	TopicOrderEvents     = "storefront.order.events"
	TopicDeadLetterQueue = "storefront.dlq"
)

// Kafka headers used by the retry and DLQ plumbing.
const (
	HeaderRetryCount    = "x-retry-count"
	HeaderOriginalTopic = "x-original-topic"
	HeaderErrorMessage  = "x-error-message"
	HeaderFailedAt      = "x-failed-at"
)

// Envelope is the wire form of a published outbox message.
type Envelope struct {
	ID            string          `json:"id"`
	AggregateType string          `json:"aggregate_type"`
	AggregateID   string          `json:"aggregate_id"`
	EventType     string          `json:"event_type"`
	Payload       json.RawMessage `json:"payload"`
	PublishedAt   time.Time       `json:"published_at"`
}

// ParseEnvelope decodes a consumed message into an Envelope.
func ParseEnvelope(message *sarama.ConsumerMessage) (*Envelope, error) {
	var envelope Envelope
	if err := json.Unmarshal(message.Value, &envelope); err != nil {
		return nil, fmt.Errorf("unmarshal event envelope: %w", err)
	}
	return &envelope, nil
}

// OrderCreated extracts the order_created payload from the envelope. It fails
// for envelopes of any other event type.
func (e *Envelope) OrderCreated() (domain.OrderCreatedPayload, error) {
	if e.EventType != domain.EventOrderCreated {
		return domain.OrderCreatedPayload{}, fmt.Errorf("envelope carries %q, not %q", e.EventType, domain.EventOrderCreated)
	}
	var payload domain.OrderCreatedPayload
	if err := json.Unmarshal(e.Payload, &payload); err != nil {
		return domain.OrderCreatedPayload{}, fmt.Errorf("unmarshal order_created payload: %w", err)
	}
	return payload, nil
}
