package postgresrepo

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corray333/backend-labs/storefront/internal/service/models/currency"
	"github.com/corray333/backend-labs/storefront/internal/service/models/order"
)

func testOrder(now time.Time) order.Order {
	return order.Order{
		ID:            "0190a7a4-0000-7000-8000-000000000001",
		Product:       order.ProductSnapshot{ID: 1, Name: "Wireless headphones", Image: "/a.jpg", UnitPrice: 7500},
		Quantity:      2,
		CustomerName:  "Amina Benali",
		Phone:         "0550123456",
		RegionID:      16,
		RegionName:    "Alger",
		Address:       "12 rue Didouche Mourad",
		PaymentMethod: order.PaymentCashOnDelivery,
		Subtotal:      15000,
		DeliveryFee:   500,
		TotalPrice:    15500,
		Currency:      currency.CurrencyDZD,
		Status:        order.StatusNew,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

func orderRow(o order.Order) []any {
	return []any{
		o.ID, o.Product.ID, o.Product.Name, o.Product.Image, o.Product.UnitPrice, o.Quantity,
		o.CustomerName, o.Phone, o.RegionID, o.RegionName, o.Commune, o.Address,
		o.PaymentMethod.String(), o.Notes, o.Subtotal, o.DeliveryFee, o.TotalPrice,
		o.Currency.String(), o.Status.String(), o.CreatedAt, o.UpdatedAt,
	}
}

func TestInsertOrder(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	o := testOrder(time.Now())
	mock.ExpectExec(`INSERT INTO orders .* ON CONFLICT \(id\) DO NOTHING`).
		WithArgs(orderRow(o)...).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, NewPostgresOrderRepository(mock).Insert(context.Background(), o))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestInsertOrderAlreadyJournaled(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	o := testOrder(time.Now())
	mock.ExpectExec(`INSERT INTO orders .* ON CONFLICT \(id\) DO NOTHING`).
		WithArgs(orderRow(o)...).
		WillReturnResult(pgxmock.NewResult("INSERT", 0))

	err = NewPostgresOrderRepository(mock).Insert(context.Background(), o)
	require.ErrorIs(t, err, order.ErrOrderExists)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestQueryOrdersMostRecentFirst(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	o := testOrder(time.Now())
	mock.ExpectQuery(`SELECT .* FROM orders WHERE status IN \(\$1\) ORDER BY created_at DESC, id DESC LIMIT 20`).
		WithArgs("new").
		WillReturnRows(pgxmock.NewRows(orderColumns).AddRow(orderRow(o)...))

	list, err := NewPostgresOrderRepository(mock).Query(context.Background(), &order.QueryOrdersModel{
		Statuses: []order.Status{order.StatusNew},
		Limit:    20,
	})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, o, list[0])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateOrderStatus(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewPostgresOrderRepository(mock)
	now := time.Now()
	o := testOrder(now)
	o.Status = order.StatusShipped

	mock.ExpectQuery(`UPDATE orders SET status = \$1, updated_at = \$2 WHERE id = \$3 RETURNING`).
		WithArgs("shipped", now, o.ID).
		WillReturnRows(pgxmock.NewRows(orderColumns).AddRow(orderRow(o)...))

	updated, err := repo.UpdateStatus(context.Background(), o.ID, order.StatusShipped, now)
	require.NoError(t, err)
	assert.Equal(t, order.StatusShipped, updated.Status)

	mock.ExpectQuery(`UPDATE orders`).
		WithArgs("shipped", now, "missing").
		WillReturnError(pgx.ErrNoRows)

	_, err = repo.UpdateStatus(context.Background(), "missing", order.StatusShipped, now)
	assert.ErrorIs(t, err, order.ErrOrderNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}
