// Package amqp publishes order summaries to a RabbitMQ queue.
package amqp

import (
	"context"
	"fmt"

	"github.com/corray333/backend-labs/storefront/internal/dal/notifier"
	"github.com/corray333/backend-labs/storefront/internal/service/models/order"
)

type publisher interface {
	Publish(ctx context.Context, queue, messageID, contentType string, body []byte) error
}

type Dispatcher struct {
	publisher publisher
	queue     string
	subject   string
}

func NewDispatcher(p publisher, queue, subject string) *Dispatcher {
	return &Dispatcher{publisher: p, queue: queue, subject: subject}
}

func (d *Dispatcher) Dispatch(ctx context.Context, frozen order.FrozenDraft) error {
	body, err := notifier.NewSummary(frozen, d.subject).JSON()
	if err != nil {
		return fmt.Errorf("failed to encode order summary: %w", err)
	}

	if err := d.publisher.Publish(ctx, d.queue, frozen.OrderID, "application/json", body); err != nil {
		return fmt.Errorf("could not queue the order notification: %w", err)
	}

	return nil
}
