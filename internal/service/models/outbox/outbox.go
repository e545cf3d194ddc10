package outbox

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/corray333/backend-labs/orders/internal/service/models/orderevent"
)

const ContentTypeJSON = "application/json"

// OutboxMessage is an event waiting to be relayed to the broker.
// Key is the Kafka partition key and the AMQP message id.
type OutboxMessage struct {
	ID          int64
	Topic       string
	Key         string
	EventType   string
	Payload     []byte
	ContentType string
	RetryCount  int
	MaxRetries  int
	LastError   string
	CreatedAt   time.Time
	UpdatedAt   time.Time
	NextRetryAt time.Time
}

// NewOrderCreatedMessage wraps the event for the given topic, due immediately.
func NewOrderCreatedMessage(
	event orderevent.OrderCreated,
	topic string,
	maxRetries int,
	now time.Time,
) (OutboxMessage, error) {
	payload, err := json.Marshal(event)
	if err != nil {
		return OutboxMessage{}, fmt.Errorf("failed to marshal order event: %w", err)
	}

	return OutboxMessage{
		Topic:       topic,
		Key:         event.OrderID,
		EventType:   event.Type,
		Payload:     payload,
		ContentType: ContentTypeJSON,
		MaxRetries:  maxRetries,
		CreatedAt:   now,
		UpdatedAt:   now,
		NextRetryAt: now,
	}, nil
}
