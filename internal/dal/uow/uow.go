package uow

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/corray333/backend-labs/storefront/internal/dal/interfaces/iorderrepo"
	"github.com/corray333/backend-labs/storefront/internal/dal/interfaces/ioutboxrepo"
	"github.com/corray333/backend-labs/storefront/internal/dal/postgres"
	orderrepo "github.com/corray333/backend-labs/storefront/internal/dal/repositories/order/postgres"
	outboxrepo "github.com/corray333/backend-labs/storefront/internal/dal/repositories/outbox/postgres"
)

// DB is a connection that can open transactions, such as *pgxpool.Pool.
type DB interface {
	postgres.Conn
	Begin(ctx context.Context) (pgx.Tx, error)
}

type unitOfWork struct {
	db         DB
	tx         pgx.Tx
	orderRepo  iorderrepo.IOrderRepository
	outboxRepo ioutboxrepo.IOutboxRepository
}

func (u *unitOfWork) OrderRepository() iorderrepo.IOrderRepository {
	return u.orderRepo
}

func (u *unitOfWork) OutboxRepository() ioutboxrepo.IOutboxRepository {
	return u.outboxRepo
}

func NewUnitOfWork(db DB) *unitOfWork {
	return &unitOfWork{
		db:         db,
		orderRepo:  orderrepo.NewPostgresOrderRepository(db),
		outboxRepo: outboxrepo.NewOutboxRepository(db),
	}
}

// Begin opens a transaction and rebinds the repositories to it.
func (u *unitOfWork) Begin(ctx context.Context) error {
	tx, err := u.db.Begin(ctx)
	if err != nil {
		return err
	}

	u.tx = tx
	u.orderRepo = orderrepo.NewPostgresOrderRepository(tx)
	u.outboxRepo = outboxrepo.NewOutboxRepository(tx)

	return nil
}

func (u *unitOfWork) Commit(ctx context.Context) error {
	if u.tx == nil {
		return nil
	}

	return u.tx.Commit(ctx)
}

// Rollback is a no-op after a successful Commit.
func (u *unitOfWork) Rollback(ctx context.Context) error {
	if u.tx == nil {
		return nil
	}
	err := u.tx.Rollback(ctx)
	if errors.Is(err, pgx.ErrTxClosed) {
		return nil
	}

	return err
}
