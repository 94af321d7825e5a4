package outbox

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/corray333/backend-labs/storefront/internal/dal/interfaces/ioutboxrepo"
	"github.com/corray333/backend-labs/storefront/internal/service/models/outbox"
)

type publisher interface {
	Publish(ctx context.Context, queue, messageID, contentType string, body []byte) error
}

// Worker publishes pending outbox messages to RabbitMQ.
type Worker struct {
	outboxRepo   ioutboxrepo.IOutboxRepository
	publisher    publisher
	pollInterval time.Duration
	batchSize    int
	now          func() time.Time
	stopCh       chan struct{}
	stopOnce     sync.Once
}

// NewWorker creates a new outbox worker.
func NewWorker(outboxRepo ioutboxrepo.IOutboxRepository, publisher publisher, pollInterval time.Duration, batchSize int) *Worker {
	if pollInterval <= 0 {
		pollInterval = 10 * time.Second
	}
	if batchSize <= 0 {
		batchSize = 100
	}

	return &Worker{
		outboxRepo:   outboxRepo,
		publisher:    publisher,
		pollInterval: pollInterval,
		batchSize:    batchSize,
		now:          time.Now,
		stopCh:       make(chan struct{}),
	}
}

// Start processes the outbox until ctx is done or Stop is called.
func (w *Worker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	slog.Info("Outbox worker started", "poll_interval", w.pollInterval, "batch_size", w.batchSize)

	for {
		select {
		case <-ctx.Done():
			slog.Info("Outbox worker shutting down")

			return
		case <-w.stopCh:
			slog.Info("Outbox worker stopped")

			return
		case <-ticker.C:
			w.processMessages(ctx)
		}
	}
}

// Stop stops the worker. It is safe to call more than once.
func (w *Worker) Stop() {
	w.stopOnce.Do(func() {
		close(w.stopCh)
	})
}

func (w *Worker) processMessages(ctx context.Context) {
	messages, err := w.outboxRepo.GetPending(ctx, w.batchSize)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to get pending messages from outbox", "error", err)

		return
	}

	if len(messages) == 0 {
		return
	}

	slog.DebugContext(ctx, "Processing outbox messages", "count", len(messages))

	for _, msg := range messages {
		w.process(ctx, msg)
	}
}

func (w *Worker) process(ctx context.Context, msg outbox.Message) {
	err := w.publisher.Publish(ctx, msg.Queue, msg.Key, msg.ContentType, msg.Payload)
	if err == nil {
		if err := w.outboxRepo.Delete(ctx, msg.ID); err != nil {
			slog.ErrorContext(ctx, "Failed to delete message from outbox after successful publish",
				"outbox_id", msg.ID,
				"error", err,
			)
		}

		return
	}

	attempts := msg.Attempts + 1
	nextAttemptAt := w.now().Add(outbox.Backoff(attempts))

	log := slog.With("outbox_id", msg.ID, "attempts", attempts, "error", err)
	if attempts >= msg.MaxAttempts {
		log.ErrorContext(ctx, "Outbox message exhausted its attempts and will not be retried")
	} else {
		log.WarnContext(ctx, "Failed to publish message from outbox, will retry", "next_attempt", nextAttemptAt)
	}

	if err := w.outboxRepo.Reschedule(ctx, msg.ID, attempts, err.Error(), nextAttemptAt); err != nil {
		slog.ErrorContext(ctx, "Failed to update retry information", "outbox_id", msg.ID, "error", err)
	}
}
