package outbox

import (
	log "github.com/sirupsen/logrus"

	"github.com/Sina-Lotfi/storefront/internal/domain"
)

// LogPublisher writes events to the log instead of a broker. It keeps
// broker-less setups functional: the log line is the notification.
type LogPublisher struct {
	logger *log.Entry
}

// NewLogPublisher creates a publisher that logs every event.
func NewLogPublisher(logger *log.Entry) *LogPublisher {
	if logger == nil {
		logger = log.WithField("component", "log-publisher")
	}
	return &LogPublisher{logger: logger}
}

func (p *LogPublisher) Publish(event domain.OutboxMessage) error {
	p.logger.WithFields(log.Fields{
		"outbox_id":    event.ID,
		"event_type":   event.EventType,
		"aggregate_id": event.AggregateID,
		"payload":      string(event.Payload),
	}).Info("event published to log")
	return nil
}

var _ domain.OutboxPublisher = (*LogPublisher)(nil)
