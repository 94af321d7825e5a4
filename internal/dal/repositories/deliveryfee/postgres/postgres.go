package postgresrepo

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/corray333/backend-labs/storefront/internal/dal/postgres"
	"github.com/corray333/backend-labs/storefront/internal/service/models/deliveryfee"
)

// PostgresDeliveryFeeRepository is the Postgres delivery fee table.
type PostgresDeliveryFeeRepository struct {
	conn postgres.Conn
	sb   sq.StatementBuilderType
}

func NewPostgresDeliveryFeeRepository(conn postgres.Conn) *PostgresDeliveryFeeRepository {
	return &PostgresDeliveryFeeRepository{
		conn: conn,
		sb:   sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

func (r *PostgresDeliveryFeeRepository) Get(ctx context.Context, regionID int) (int64, bool, error) {
	query, args, err := r.sb.Select("fee").
		From("delivery_fees").
		Where(sq.Eq{"region_id": regionID}).
		ToSql()
	if err != nil {
		return 0, false, fmt.Errorf("failed to build select query: %w", err)
	}

	var fee int64
	err = r.conn.QueryRow(ctx, query, args...).Scan(&fee)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("failed to get delivery fee: %w", err)
	}

	return fee, true, nil
}

func (r *PostgresDeliveryFeeRepository) List(ctx context.Context) ([]deliveryfee.Entry, error) {
	query, args, err := r.sb.Select("region_id", "fee", "updated_at").
		From("delivery_fees").
		OrderBy("region_id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select query: %w", err)
	}

	rows, err := r.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query delivery fees: %w", err)
	}
	defer rows.Close()

	entries := []deliveryfee.Entry{}
	for rows.Next() {
		var e deliveryfee.Entry
		if err := rows.Scan(&e.RegionID, &e.Fee, &e.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan delivery fee: %w", err)
		}
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return entries, nil
}

func (r *PostgresDeliveryFeeRepository) Upsert(ctx context.Context, entry deliveryfee.Entry) (deliveryfee.Entry, error) {
	query, args, err := r.sb.Insert("delivery_fees").
		Columns("region_id", "fee", "updated_at").
		Values(entry.RegionID, entry.Fee, entry.UpdatedAt).
		Suffix("ON CONFLICT (region_id) DO UPDATE SET fee = EXCLUDED.fee, updated_at = EXCLUDED.updated_at RETURNING region_id, fee, updated_at").
		ToSql()
	if err != nil {
		return deliveryfee.Entry{}, fmt.Errorf("failed to build upsert query: %w", err)
	}

	var out deliveryfee.Entry
	if err := r.conn.QueryRow(ctx, query, args...).Scan(&out.RegionID, &out.Fee, &out.UpdatedAt); err != nil {
		return deliveryfee.Entry{}, fmt.Errorf("failed to upsert delivery fee: %w", err)
	}

	return out, nil
}
