package domain

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// CatalogLookup is the read-only catalog view the cart service depends on.
type CatalogLookup interface {
	// GetProductPrice returns the current unit price and whether the product exists.
	GetProductPrice(productID int64) (decimal.Decimal, bool, error)
}

// EventOrderCreated is the event type emitted after a cart is converted.
const EventOrderCreated = "order_created"

// OrderCreatedPayload is the body of the order_created outbox message.
type OrderCreatedPayload struct {
	OrderID    int64           `json:"order_id"`
	CustomerID int64           `json:"customer_id"`
	PlacedAt   time.Time       `json:"placed_at"`
	Total      decimal.Decimal `json:"total"`
	ItemCount  int             `json:"item_count"`
}

// NewOrderCreatedMessage builds the outbox message announcing a freshly placed
// order. The message id is assigned by the outbox store on enqueue.
func NewOrderCreatedMessage(order Order) (OutboxMessage, error) {
	payload, err := json.Marshal(OrderCreatedPayload{
		OrderID:    order.ID,
		CustomerID: order.CustomerID,
		PlacedAt:   order.PlacedAt,
		Total:      order.Total(),
		ItemCount:  len(order.Items),
	})
	if err != nil {
		return OutboxMessage{}, fmt.Errorf("marshal order_created payload: %w", err)
	}

	return OutboxMessage{
		AggregateType: "order",
		AggregateID:   strconv.FormatInt(order.ID, 10),
		EventType:     EventOrderCreated,
		Payload:       payload,
	}, nil
}

// OutboxMessage is an event staged for publication. Messages are written in
// the same transaction as the state change they describe and published after
// commit by the outbox worker.
type OutboxMessage struct {
	ID            string
	AggregateType string
	AggregateID   string
	EventType     string
	Payload       []byte
}

// OutboxStats describes the current backlog of the transactional outbox.
type OutboxStats struct {
	PendingCount    int
	OldestPendingAt time.Time
}

// OutboxRepository stages events for later publication.
type OutboxRepository interface {
	Enqueue(msg OutboxMessage) (OutboxMessage, error)
	PullPending(limit int) ([]OutboxMessage, error)
	Stats() (OutboxStats, error)
	MarkSent(id string) error
	MarkFailed(id string) error
}

// OutboxPublisher delivers staged events to the notification sink. Delivery is
// best-effort: failures are logged and retried by the worker, never surfaced
// to the operation that produced the event.
type OutboxPublisher interface {
	Publish(event OutboxMessage) error
}
