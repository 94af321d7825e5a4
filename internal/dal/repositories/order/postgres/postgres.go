package postgresrepo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/corray333/backend-labs/storefront/internal/dal/postgres"
	"github.com/corray333/backend-labs/storefront/internal/service/models/currency"
	"github.com/corray333/backend-labs/storefront/internal/service/models/order"
)

var orderColumns = []string{
	"id",
	"product_id",
	"product_name",
	"product_image",
	"unit_price",
	"quantity",
	"customer_name",
	"phone",
	"region_id",
	"region_name",
	"commune",
	"address",
	"payment_method",
	"notes",
	"subtotal",
	"delivery_fee",
	"total_price",
	"currency",
	"status",
	"created_at",
	"updated_at",
}

// OrderDal represents the orders row.
type OrderDal struct {
	Id            string
	ProductId     int64
	ProductName   string
	ProductImage  string
	UnitPrice     int64
	Quantity      int
	CustomerName  string
	Phone         string
	RegionId      int
	RegionName    string
	Commune       string
	Address       string
	PaymentMethod string
	Notes         string
	Subtotal      int64
	DeliveryFee   int64
	TotalPrice    int64
	Currency      string
	Status        string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// ToModel converts OrderDal to the service layer Order model.
func (o *OrderDal) ToModel() (order.Order, error) {
	cur, err := currency.ParseCurrency(o.Currency)
	if err != nil {
		return order.Order{}, err
	}
	status, err := order.ParseStatus(o.Status)
	if err != nil {
		return order.Order{}, err
	}

	return order.Order{
		ID: o.Id,
		Product: order.ProductSnapshot{
			ID:        o.ProductId,
			Name:      o.ProductName,
			Image:     o.ProductImage,
			UnitPrice: o.UnitPrice,
		},
		Quantity:      o.Quantity,
		CustomerName:  o.CustomerName,
		Phone:         o.Phone,
		RegionID:      o.RegionId,
		RegionName:    o.RegionName,
		Commune:       o.Commune,
		Address:       o.Address,
		PaymentMethod: order.PaymentMethod(o.PaymentMethod),
		Notes:         o.Notes,
		Subtotal:      o.Subtotal,
		DeliveryFee:   o.DeliveryFee,
		TotalPrice:    o.TotalPrice,
		Currency:      cur,
		Status:        status,
		CreatedAt:     o.CreatedAt,
		UpdatedAt:     o.UpdatedAt,
	}, nil
}

func scanOrder(row pgx.Row) (order.Order, error) {
	var dal OrderDal
	err := row.Scan(
		&dal.Id,
		&dal.ProductId,
		&dal.ProductName,
		&dal.ProductImage,
		&dal.UnitPrice,
		&dal.Quantity,
		&dal.CustomerName,
		&dal.Phone,
		&dal.RegionId,
		&dal.RegionName,
		&dal.Commune,
		&dal.Address,
		&dal.PaymentMethod,
		&dal.Notes,
		&dal.Subtotal,
		&dal.DeliveryFee,
		&dal.TotalPrice,
		&dal.Currency,
		&dal.Status,
		&dal.CreatedAt,
		&dal.UpdatedAt,
	)
	if err != nil {
		return order.Order{}, err
	}

	return dal.ToModel()
}

// PostgresOrderRepository is the Postgres order journal.
type PostgresOrderRepository struct {
	conn postgres.Conn
	sb   sq.StatementBuilderType
}

func NewPostgresOrderRepository(conn postgres.Conn) *PostgresOrderRepository {
	return &PostgresOrderRepository{
		conn: conn,
		sb:   sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

func (r *PostgresOrderRepository) Insert(ctx context.Context, o order.Order) error {
	query, args, err := r.sb.Insert("orders").
		Columns(orderColumns...).
		Values(
			o.ID,
			o.Product.ID,
			o.Product.Name,
			o.Product.Image,
			o.Product.UnitPrice,
			o.Quantity,
			o.CustomerName,
			o.Phone,
			o.RegionID,
			o.RegionName,
			o.Commune,
			o.Address,
			o.PaymentMethod.String(),
			o.Notes,
			o.Subtotal,
			o.DeliveryFee,
			o.TotalPrice,
			o.Currency.String(),
			o.Status.String(),
			o.CreatedAt,
			o.UpdatedAt,
		).
		Suffix("ON CONFLICT (id) DO NOTHING").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build insert query: %w", err)
	}

	tag, err := r.conn.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to insert order: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("order %s: %w", o.ID, order.ErrOrderExists)
	}

	return nil
}

// Query retrieves orders based on filter criteria, most recent first.
func (r *PostgresOrderRepository) Query(ctx context.Context, filter *order.QueryOrdersModel) ([]order.Order, error) {
	builder := r.sb.Select(orderColumns...).
		From("orders").
		OrderBy("created_at DESC", "id DESC")

	if filter != nil {
		if len(filter.Ids) > 0 {
			builder = builder.Where(sq.Eq{"id": filter.Ids})
		}
		if len(filter.Statuses) > 0 {
			statuses := make([]string, len(filter.Statuses))
			for i, s := range filter.Statuses {
				statuses[i] = s.String()
			}
			builder = builder.Where(sq.Eq{"status": statuses})
		}
		if filter.Limit > 0 {
			builder = builder.Limit(uint64(filter.Limit))
		}
		if filter.Offset > 0 {
			builder = builder.Offset(uint64(filter.Offset))
		}
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select query: %w", err)
	}

	rows, err := r.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	result := []order.Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		result = append(result, o)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return result, nil
}

func (r *PostgresOrderRepository) UpdateStatus(ctx context.Context, id string, status order.Status, updatedAt time.Time) (order.Order, error) {
	query, args, err := r.sb.Update("orders").
		Set("status", status.String()).
		Set("updated_at", updatedAt).
		Where(sq.Eq{"id": id}).
		Suffix("RETURNING " + strings.Join(orderColumns, ", ")).
		ToSql()
	if err != nil {
		return order.Order{}, fmt.Errorf("failed to build update query: %w", err)
	}

	o, err := scanOrder(r.conn.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return order.Order{}, order.ErrOrderNotFound
	}
	if err != nil {
		return order.Order{}, fmt.Errorf("failed to update order status: %w", err)
	}

	return o, nil
}
