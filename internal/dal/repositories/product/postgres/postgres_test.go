package postgresrepo

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corray333/backend-labs/storefront/internal/service/models/product"
)

func productRows(now time.Time) *pgxmock.Rows {
	return pgxmock.NewRows(productColumns).
		AddRow(int64(1), "Wireless headphones", "desc", int64(7500), "electronics",
			[]string{"/a.jpg", "/b.jpg"}, "", now, now)
}

func TestGetProduct(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewPostgresProductRepository(mock)
	now := time.Now()

	t.Run("found", func(t *testing.T) {
		mock.ExpectQuery(`SELECT .* FROM products WHERE id = \$1`).
			WithArgs(int64(1)).
			WillReturnRows(productRows(now))

		p, err := repo.Get(context.Background(), 1)
		require.NoError(t, err)
		assert.Equal(t, "Wireless headphones", p.Name)
		assert.Equal(t, product.CategoryElectronics, p.Category)
		assert.Equal(t, "/a.jpg", p.MainImage())
	})

	t.Run("not found", func(t *testing.T) {
		mock.ExpectQuery(`SELECT .* FROM products WHERE id = \$1`).
			WithArgs(int64(99)).
			WillReturnError(pgx.ErrNoRows)

		_, err := repo.Get(context.Background(), 99)
		assert.ErrorIs(t, err, product.ErrProductNotFound)
	})

	t.Run("database error", func(t *testing.T) {
		mock.ExpectQuery(`SELECT .* FROM products WHERE id = \$1`).
			WithArgs(int64(1)).
			WillReturnError(errors.New("connection refused"))

		_, err := repo.Get(context.Background(), 1)
		require.Error(t, err)
		assert.NotErrorIs(t, err, product.ErrProductNotFound)
	})

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestQueryProductsByCategory(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewPostgresProductRepository(mock)
	mock.ExpectQuery(`SELECT .* FROM products WHERE category IN \(\$1\) ORDER BY id ASC LIMIT 10`).
		WithArgs("electronics").
		WillReturnRows(productRows(time.Now()))

	list, err := repo.Query(context.Background(), &product.QueryProductsModel{
		Categories: []product.Category{product.CategoryElectronics},
		Limit:      10,
	})
	require.NoError(t, err)
	assert.Len(t, list, 1)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteProductNotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewPostgresProductRepository(mock)
	mock.ExpectExec(`DELETE FROM products WHERE id = \$1`).
		WithArgs(int64(7)).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	assert.ErrorIs(t, repo.Delete(context.Background(), 7), product.ErrProductNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}
