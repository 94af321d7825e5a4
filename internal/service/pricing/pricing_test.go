package pricing

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/corray333/backend-labs/storefront/internal/service/models/region"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type feeTable map[int]int64

func (f feeTable) Get(_ context.Context, regionID int) (int64, bool, error) {
	fee, ok := f[regionID]

	return fee, ok, nil
}

type brokenTable struct{}

func (brokenTable) Get(context.Context, int) (int64, bool, error) {
	return 0, false, errors.New("connection refused")
}

func TestComputeTotal(t *testing.T) {
	total, err := ComputeTotal(7500, 2, 500)
	require.NoError(t, err)
	assert.Equal(t, int64(15500), total)

	_, err = ComputeTotal(7500, 0, 500)
	assert.ErrorIs(t, err, ErrInvalidQuantity)

	_, err = ComputeTotal(-1, 1, 500)
	assert.ErrorIs(t, err, ErrInvalidPrice)

	_, err = ComputeTotal(1, 1, -5)
	assert.ErrorIs(t, err, ErrInvalidFee)

	_, err = ComputeTotal(math.MaxInt64, 2, 0)
	assert.ErrorIs(t, err, ErrTotalOverflow)

	_, err = ComputeTotal(math.MaxInt64, 1, 1)
	assert.ErrorIs(t, err, ErrTotalOverflow)
}

func TestComputeTotalFormulaAndMonotonicity(t *testing.T) {
	prices := []int64{0, 1, 999, 7500, 120000}
	quantities := []int{1, 2, 3, 10, 250}
	fees := []int64{0, 300, 500, 1500}

	for _, p := range prices {
		for _, q := range quantities {
			for _, f := range fees {
				total, err := ComputeTotal(p, q, f)
				require.NoError(t, err)
				assert.Equal(t, p*int64(q)+f, total)

				morePrice, _ := ComputeTotal(p+1, q, f)
				moreQty, _ := ComputeTotal(p, q+1, f)
				moreFee, _ := ComputeTotal(p, q, f+1)
				assert.GreaterOrEqual(t, morePrice, total)
				assert.GreaterOrEqual(t, moreQty, total)
				assert.GreaterOrEqual(t, moreFee, total)
			}
		}
	}
}

func TestResolveFee(t *testing.T) {
	ctx := context.Background()

	t.Run("total over all regions", func(t *testing.T) {
		table := feeTable{}
		for id := 1; id <= region.Count; id++ {
			table[id] = int64(100 * id)
		}
		for id := 1; id <= region.Count; id++ {
			fee, ok := ResolveFee(ctx, table, id)
			assert.True(t, ok)
			assert.Equal(t, int64(100*id), fee)
		}
	})

	t.Run("unmapped region defaults to zero", func(t *testing.T) {
		fee, ok := ResolveFee(ctx, feeTable{16: 400}, 31)
		assert.False(t, ok)
		assert.Zero(t, fee)
	})

	t.Run("invalid region id defaults to zero", func(t *testing.T) {
		for _, id := range []int{-1, 0, 59, 1000} {
			fee, ok := ResolveFee(ctx, feeTable{id: 700}, id)
			assert.False(t, ok)
			assert.Zero(t, fee)
		}
	})

	t.Run("lookup failure defaults to zero", func(t *testing.T) {
		fee, ok := ResolveFee(ctx, brokenTable{}, 16)
		assert.False(t, ok)
		assert.Zero(t, fee)
	})
}

func TestNewQuote(t *testing.T) {
	ctx := context.Background()

	q, err := NewQuote(ctx, feeTable{16: 500}, 7500, 2, 16)
	require.NoError(t, err)
	assert.Equal(t, Quote{UnitPrice: 7500, Quantity: 2, Subtotal: 15000, DeliveryFee: 500, Total: 15500, FeeConfigured: true}, q)

	q, err = NewQuote(ctx, feeTable{}, 7500, 2, 16)
	require.NoError(t, err)
	assert.Equal(t, int64(15000), q.Total)
	assert.False(t, q.FeeConfigured)

	q, err = NewQuote(ctx, feeTable{16: 500}, 7500, 0, 16)
	assert.ErrorIs(t, err, ErrInvalidQuantity)
	assert.Zero(t, q.Total)
	assert.Equal(t, int64(500), q.DeliveryFee)
}
