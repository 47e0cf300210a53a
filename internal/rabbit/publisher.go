package rabbit

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/rabbitmq/amqp091-go"

	"orders-service/internal/service"
)

// Exchange carrying order lifecycle events; topics are routing keys on it.
const exchange = "orders"

// Publisher emits order events as JSON onto a durable topic exchange. It is
// fire and forget: the caller decides what a failed Emit means.
type Publisher struct {
	mu      sync.Mutex
	ch      *amqp091.Channel
	timeout time.Duration
}

func NewPublisher(ch *amqp091.Channel, timeout time.Duration) (*Publisher, error) {
	if err := ch.ExchangeDeclare(
		exchange,
		"topic",
		true,
		false,
		false,
		false,
		nil,
	); err != nil {
		return nil, err
	}
	return &Publisher{ch: ch, timeout: timeout}, nil
}

func (p *Publisher) Emit(ctx context.Context, topic string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	// amqp091.Channel is not safe for concurrent publishes
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.ch.PublishWithContext(ctx, exchange, topic, false, false, amqp091.Publishing{
		ContentType: "application/json",
		Body:        body,
		Timestamp:   time.Now().UTC(),
	})
}

var _ service.EventPublisher = (*Publisher)(nil)
