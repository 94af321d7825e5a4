// Package kafka writes order summaries to a Kafka topic keyed by product.
package kafka

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/corray333/backend-labs/storefront/internal/dal/notifier"
	"github.com/corray333/backend-labs/storefront/internal/service/models/order"
)

type writer interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

type Dispatcher struct {
	writer  writer
	subject string
}

// NewWriter returns a writer that hashes keys across partitions and waits
// for the leader acknowledgement.
func NewWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
	}
}

func NewDispatcher(w writer, subject string) *Dispatcher {
	return &Dispatcher{writer: w, subject: subject}
}

func (d *Dispatcher) Dispatch(ctx context.Context, frozen order.FrozenDraft) error {
	body, err := notifier.NewSummary(frozen, d.subject).JSON()
	if err != nil {
		return fmt.Errorf("failed to encode order summary: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(strconv.FormatInt(frozen.Product.ID, 10)),
		Value: body,
		Time:  time.Now().UTC(),
		Headers: []kafka.Header{
			{Key: "order_id", Value: []byte(frozen.OrderID)},
		},
	}
	if err := d.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("could not publish the order notification: %w", err)
	}

	return nil
}
