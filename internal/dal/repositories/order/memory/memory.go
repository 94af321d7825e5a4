package memoryrepo

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/corray333/backend-labs/storefront/internal/service/models/order"
)

// MemoryOrderRepository is an append-only journal kept in process memory.
type MemoryOrderRepository struct {
	mu     sync.RWMutex
	orders []order.Order
	index  map[string]int
}

func NewMemoryOrderRepository() *MemoryOrderRepository {
	return &MemoryOrderRepository{index: make(map[string]int)}
}

func (r *MemoryOrderRepository) Insert(_ context.Context, o order.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.index[o.ID]; ok {
		return fmt.Errorf("order %s: %w", o.ID, order.ErrOrderExists)
	}
	r.index[o.ID] = len(r.orders)
	r.orders = append(r.orders, o)

	return nil
}

func (r *MemoryOrderRepository) Query(_ context.Context, filter *order.QueryOrdersModel) ([]order.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]order.Order, 0, len(r.orders))
	for i := len(r.orders) - 1; i >= 0; i-- {
		o := r.orders[i]
		if filter != nil {
			if len(filter.Ids) > 0 && !slices.Contains(filter.Ids, o.ID) {
				continue
			}
			if len(filter.Statuses) > 0 && !slices.Contains(filter.Statuses, o.Status) {
				continue
			}
		}
		result = append(result, o)
	}
	slices.SortStableFunc(result, func(a, b order.Order) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})

	if filter != nil {
		if filter.Offset > 0 {
			result = result[min(filter.Offset, len(result)):]
		}
		if filter.Limit > 0 && filter.Limit < len(result) {
			result = result[:filter.Limit]
		}
	}

	return result, nil
}

func (r *MemoryOrderRepository) UpdateStatus(_ context.Context, id string, status order.Status, updatedAt time.Time) (order.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	i, ok := r.index[id]
	if !ok {
		return order.Order{}, order.ErrOrderNotFound
	}
	r.orders[i].Status = status
	r.orders[i].UpdatedAt = updatedAt

	return r.orders[i], nil
}
