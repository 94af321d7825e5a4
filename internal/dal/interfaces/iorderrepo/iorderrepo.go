package iorderrepo

import (
	"context"
	"time"

	"github.com/corray333/backend-labs/storefront/internal/service/models/order"
)

// IOrderRepository is the order journal.
type IOrderRepository interface {
	Insert(ctx context.Context, o order.Order) error
	// Query returns the most recent orders first.
	Query(ctx context.Context, filter *order.QueryOrdersModel) ([]order.Order, error)
	UpdateStatus(ctx context.Context, id string, status order.Status, updatedAt time.Time) (order.Order, error)
}
