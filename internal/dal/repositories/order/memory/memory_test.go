package memoryrepo

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corray333/backend-labs/storefront/internal/service/models/order"
)

func TestMemoryOrderRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryOrderRepository()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	for i, id := range []string{"a", "b", "c"} {
		require.NoError(t, repo.Insert(ctx, order.Order{ID: id, Status: order.StatusNew, CreatedAt: base.Add(time.Duration(i) * time.Minute)}))
	}
	assert.ErrorIs(t, repo.Insert(ctx, order.Order{ID: "a"}), order.ErrOrderExists)

	list, err := repo.Query(ctx, nil)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "c", list[0].ID)
	assert.Equal(t, "a", list[2].ID)

	updated, err := repo.UpdateStatus(ctx, "b", order.StatusShipped, base.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, order.StatusShipped, updated.Status)

	shipped, err := repo.Query(ctx, &order.QueryOrdersModel{Statuses: []order.Status{order.StatusShipped}})
	require.NoError(t, err)
	require.Len(t, shipped, 1)
	assert.Equal(t, "b", shipped[0].ID)

	_, err = repo.UpdateStatus(ctx, "zzz", order.StatusShipped, base)
	assert.ErrorIs(t, err, order.ErrOrderNotFound)

	page, err := repo.Query(ctx, &order.QueryOrdersModel{Limit: 1, Offset: 1})
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "b", page[0].ID)
}
