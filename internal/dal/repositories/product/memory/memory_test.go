package memoryrepo

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corray333/backend-labs/storefront/internal/service/models/product"
)

func TestMemoryProductRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryProductRepository(DefaultCatalog(time.Now())...)

	all, err := repo.Query(ctx, nil)
	require.NoError(t, err)
	require.Len(t, all, 6)
	assert.Equal(t, int64(1), all[0].ID)

	electronics, err := repo.Query(ctx, &product.QueryProductsModel{Categories: []product.Category{product.CategoryElectronics}})
	require.NoError(t, err)
	assert.Len(t, electronics, 2)

	created, err := repo.Insert(ctx, product.Product{Name: "Lamp", Price: 900, Category: product.CategoryOther, Images: []string{"/lamp.jpg"}})
	require.NoError(t, err)
	assert.Equal(t, int64(7), created.ID)

	created.Images[0] = "/mutated.jpg"
	got, err := repo.Get(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, "/lamp.jpg", got.MainImage())

	require.NoError(t, repo.Delete(ctx, 7))
	_, err = repo.Get(ctx, 7)
	assert.ErrorIs(t, err, product.ErrProductNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, 7), product.ErrProductNotFound)

	page, err := repo.Query(ctx, &product.QueryProductsModel{Limit: 2, Offset: 5})
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, int64(6), page[0].ID)
}
