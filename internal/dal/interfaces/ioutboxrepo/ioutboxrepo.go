package ioutboxrepo

import (
	"context"
	"time"

	"github.com/corray333/backend-labs/storefront/internal/service/models/outbox"
)

// IOutboxRepository defines the interface for outbox operations.
type IOutboxRepository interface {
	// Insert adds a new message to the outbox
	Insert(ctx context.Context, msg outbox.Message) error

	// GetPending retrieves messages whose next attempt is due
	GetPending(ctx context.Context, limit int) ([]outbox.Message, error)

	// Delete removes a message after it has been published
	Delete(ctx context.Context, id int64) error

	// Reschedule records a failed attempt
	Reschedule(ctx context.Context, id int64, attempts int, lastError string, nextAttemptAt time.Time) error
}
