package journalsvc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/corray333/backend-labs/storefront/internal/dal/interfaces/iorderrepo"
	"github.com/corray333/backend-labs/storefront/internal/dal/interfaces/ioutboxrepo"
	"github.com/corray333/backend-labs/storefront/internal/dal/postgres"
	"github.com/corray333/backend-labs/storefront/internal/dal/uow"
	"github.com/corray333/backend-labs/storefront/internal/service/models/order"
	"github.com/corray333/backend-labs/storefront/internal/service/models/outbox"
)

const EventOrderCreated = "order.created"

var tracer = otel.Tracer("storefront/journalsvc")

// OrderEvent is the outbox payload announcing a journaled order.
type OrderEvent struct {
	Event string      `json:"event"`
	Order order.Order `json:"order"`
}

// JournalService records confirmed orders. With a Postgres client the order
// and its outbox event are written in one transaction.
type JournalService struct {
	db        uow.DB
	orderRepo iorderrepo.IOrderRepository

	outboxQueue       string
	outboxMaxAttempts int

	now func() time.Time
}

type unitOfWork interface {
	Begin(ctx context.Context) error
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error

	OrderRepository() iorderrepo.IOrderRepository
	OutboxRepository() ioutboxrepo.IOutboxRepository
}

func (s *JournalService) newUOW() unitOfWork {
	return uow.NewUnitOfWork(s.db)
}

// option is a function that configures the JournalService.
type option func(*JournalService)

// MustNewJournalService creates a new JournalService.
func MustNewJournalService(opts ...option) *JournalService {
	s := &JournalService{now: time.Now}
	for _, opt := range opts {
		opt(s)
	}

	if s.orderRepo == nil {
		panic("journalsvc: an order repository or postgres client is required")
	}

	return s
}

// WithPostgresClient journals into Postgres. A nil client leaves the service
// as configured.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithPostgresClient(pgClient *postgres.Client) option {
	if pgClient == nil {
		return func(*JournalService) {}
	}

	return withDB(pgClient.Pool())
}

func withDB(db uow.DB) option {
	return func(s *JournalService) {
		s.db = db
		s.orderRepo = uow.NewUnitOfWork(db).OrderRepository()
	}
}

// WithOrderRepository journals into repo without transactions or outbox.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithOrderRepository(repo iorderrepo.IOrderRepository) option {
	return func(s *JournalService) {
		s.orderRepo = repo
	}
}

// WithOutbox stores an order.created event for queue next to every order.
// It only takes effect with a Postgres client and a non-empty queue.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithOutbox(queue string, maxAttempts int) option {
	return func(s *JournalService) {
		s.outboxQueue = queue
		s.outboxMaxAttempts = maxAttempts
	}
}

// Append records a dispatched order. An order whose id is already journaled
// counts as recorded, so a retried append after a lost commit succeeds.
func (s *JournalService) Append(ctx context.Context, o order.Order) error {
	ctx, span := tracer.Start(ctx, "JournalService.Append")
	defer span.End()
	span.SetAttributes(attribute.String("order.id", o.ID))

	if s.db == nil || s.outboxQueue == "" {
		if err := s.orderRepo.Insert(ctx, o); err != nil && !errors.Is(err, order.ErrOrderExists) {
			span.RecordError(err)

			return err
		}

		return nil
	}

	if err := s.appendWithEvent(ctx, o); err != nil {
		span.RecordError(err)

		return err
	}

	return nil
}

func (s *JournalService) appendWithEvent(ctx context.Context, o order.Order) error {
	payload, err := json.Marshal(OrderEvent{Event: EventOrderCreated, Order: o})
	if err != nil {
		return fmt.Errorf("failed to encode order event: %w", err)
	}

	work := s.newUOW()
	if err := work.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	committed := false
	defer func() {
		if committed {
			return
		}
		if err := work.Rollback(ctx); err != nil {
			slog.ErrorContext(ctx, "Failed to roll back journal transaction", "error", err)
		}
	}()

	if err := work.OrderRepository().Insert(ctx, o); err != nil {
		if errors.Is(err, order.ErrOrderExists) {
			// The event was committed together with the row.
			return nil
		}

		return err
	}

	now := s.now()
	msg := outbox.Message{
		Queue:         s.outboxQueue,
		Key:           o.ID,
		Payload:       payload,
		ContentType:   "application/json",
		MaxAttempts:   s.outboxMaxAttempts,
		CreatedAt:     now,
		UpdatedAt:     now,
		NextAttemptAt: now,
	}
	if err := work.OutboxRepository().Insert(ctx, msg); err != nil {
		return err
	}

	if err := work.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit journal transaction: %w", err)
	}
	committed = true

	return nil
}

// List returns journaled orders, most recent first.
func (s *JournalService) List(ctx context.Context, q order.QueryOrdersModel) ([]order.Order, error) {
	ctx, span := tracer.Start(ctx, "JournalService.List")
	defer span.End()

	return s.orderRepo.Query(ctx, &q)
}

// UpdateStatus moves an order to status. Any status may follow any other.
func (s *JournalService) UpdateStatus(ctx context.Context, id string, status order.Status) (order.Order, error) {
	ctx, span := tracer.Start(ctx, "JournalService.UpdateStatus")
	defer span.End()

	if _, err := order.ParseStatus(status.String()); err != nil {
		return order.Order{}, err
	}

	return s.orderRepo.UpdateStatus(ctx, id, status, s.now())
}
