package outbox

import (
	"time"
)

// OutboxMessage is a durable event row awaiting publication to RabbitMQ.
// Order placement writes one per successful saga run; the outbox worker
// drains them independently of the request path.
type OutboxMessage struct {
	ID           int64
	QueueName    string
	ExchangeName string
	RoutingKey   string
	Payload      []byte
	ContentType  string
	RetryCount   int
	MaxRetries   int
	LastError    string
	CreatedAt    time.Time
	UpdatedAt    time.Time
	NextRetryAt  time.Time
}

// NewJSONMessage builds an outbox row for a JSON payload with the
// default retry budget.
func NewJSONMessage(exchange, routingKey string, payload []byte) OutboxMessage {
	now := time.Now()

	return OutboxMessage{
		ExchangeName: exchange,
		RoutingKey:   routingKey,
		Payload:      payload,
		ContentType:  "application/json",
		MaxRetries:   10,
		CreatedAt:    now,
		UpdatedAt:    now,
		NextRetryAt:  now,
	}
}
