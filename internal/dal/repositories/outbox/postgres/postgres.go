package postgresrepo

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/corray333/backend-labs/storefront/internal/dal/postgres"
	"github.com/corray333/backend-labs/storefront/internal/service/models/outbox"
)

// OutboxRepository implements the outbox repository for PostgreSQL.
type OutboxRepository struct {
	conn postgres.Conn
	sb   sq.StatementBuilderType
	now  func() time.Time
}

// NewOutboxRepository creates a new outbox repository.
func NewOutboxRepository(conn postgres.Conn) *OutboxRepository {
	return &OutboxRepository{
		conn: conn,
		sb:   sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
		now:  time.Now,
	}
}

// Insert adds a new message to the outbox.
func (r *OutboxRepository) Insert(ctx context.Context, msg outbox.Message) error {
	query, args, err := r.sb.Insert("outbox").
		Columns(
			"queue_name",
			"message_key",
			"payload",
			"content_type",
			"attempts",
			"max_attempts",
			"last_error",
			"created_at",
			"updated_at",
			"next_attempt_at",
		).
		Values(
			msg.Queue,
			msg.Key,
			msg.Payload,
			msg.ContentType,
			msg.Attempts,
			msg.MaxAttempts,
			msg.LastError,
			msg.CreatedAt,
			msg.UpdatedAt,
			msg.NextAttemptAt,
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build insert query: %w", err)
	}

	if _, err := r.conn.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to insert outbox message: %w", err)
	}

	return nil
}

// GetPending retrieves messages whose next attempt is due.
func (r *OutboxRepository) GetPending(ctx context.Context, limit int) ([]outbox.Message, error) {
	query, args, err := r.sb.Select(
		"id",
		"queue_name",
		"message_key",
		"payload",
		"content_type",
		"attempts",
		"max_attempts",
		"last_error",
		"created_at",
		"updated_at",
		"next_attempt_at",
	).
		From("outbox").
		Where(sq.LtOrEq{"next_attempt_at": r.now()}).
		Where(sq.Expr("attempts < max_attempts")).
		OrderBy("next_attempt_at ASC").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select query: %w", err)
	}

	rows, err := r.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query outbox messages: %w", err)
	}
	defer rows.Close()

	var messages []outbox.Message
	for rows.Next() {
		var msg outbox.Message
		err := rows.Scan(
			&msg.ID,
			&msg.Queue,
			&msg.Key,
			&msg.Payload,
			&msg.ContentType,
			&msg.Attempts,
			&msg.MaxAttempts,
			&msg.LastError,
			&msg.CreatedAt,
			&msg.UpdatedAt,
			&msg.NextAttemptAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan outbox message: %w", err)
		}
		messages = append(messages, msg)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating outbox messages: %w", err)
	}

	return messages, nil
}

// Delete removes a message from the outbox after successful delivery.
func (r *OutboxRepository) Delete(ctx context.Context, id int64) error {
	query, args, err := r.sb.Delete("outbox").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete query: %w", err)
	}

	if _, err := r.conn.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to delete outbox message: %w", err)
	}

	return nil
}

// Reschedule records a failed attempt and when to try again.
func (r *OutboxRepository) Reschedule(ctx context.Context, id int64, attempts int, lastError string, nextAttemptAt time.Time) error {
	query, args, err := r.sb.Update("outbox").
		Set("attempts", attempts).
		Set("last_error", lastError).
		Set("next_attempt_at", nextAttemptAt).
		Set("updated_at", r.now()).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update query: %w", err)
	}

	if _, err := r.conn.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to update outbox message: %w", err)
	}

	return nil
}
