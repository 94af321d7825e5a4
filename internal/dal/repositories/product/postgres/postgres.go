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
	"github.com/corray333/backend-labs/storefront/internal/service/models/product"
)

var productColumns = []string{
	"id",
	"name",
	"description",
	"price",
	"category",
	"images",
	"video_url",
	"created_at",
	"updated_at",
}

// ProductDal represents the products row.
type ProductDal struct {
	Id          int64
	Name        string
	Description string
	Price       int64
	Category    string
	Images      []string
	VideoUrl    string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ToModel converts ProductDal to the service layer Product model.
func (p *ProductDal) ToModel() (product.Product, error) {
	cat, err := product.ParseCategory(p.Category)
	if err != nil {
		return product.Product{}, err
	}

	return product.Product{
		ID:          p.Id,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		Category:    cat,
		Images:      p.Images,
		VideoURL:    p.VideoUrl,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}, nil
}

func scanProduct(row pgx.Row) (product.Product, error) {
	var dal ProductDal
	err := row.Scan(
		&dal.Id,
		&dal.Name,
		&dal.Description,
		&dal.Price,
		&dal.Category,
		&dal.Images,
		&dal.VideoUrl,
		&dal.CreatedAt,
		&dal.UpdatedAt,
	)
	if err != nil {
		return product.Product{}, err
	}

	return dal.ToModel()
}

// PostgresProductRepository is the Postgres catalog store.
type PostgresProductRepository struct {
	conn postgres.Conn
	sb   sq.StatementBuilderType
}

func NewPostgresProductRepository(conn postgres.Conn) *PostgresProductRepository {
	return &PostgresProductRepository{
		conn: conn,
		sb:   sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

func (r *PostgresProductRepository) Get(ctx context.Context, id int64) (product.Product, error) {
	query, args, err := r.sb.Select(productColumns...).
		From("products").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return product.Product{}, fmt.Errorf("failed to build select query: %w", err)
	}

	p, err := scanProduct(r.conn.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return product.Product{}, product.ErrProductNotFound
	}
	if err != nil {
		return product.Product{}, fmt.Errorf("failed to get product: %w", err)
	}

	return p, nil
}

func (r *PostgresProductRepository) Query(ctx context.Context, filter *product.QueryProductsModel) ([]product.Product, error) {
	builder := r.sb.Select(productColumns...).
		From("products").
		OrderBy("id ASC")

	if filter != nil {
		if len(filter.Categories) > 0 {
			cats := make([]string, len(filter.Categories))
			for i, c := range filter.Categories {
				cats[i] = c.String()
			}
			builder = builder.Where(sq.Eq{"category": cats})
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
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	result := []product.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		result = append(result, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return result, nil
}

func (r *PostgresProductRepository) Insert(ctx context.Context, p product.Product) (product.Product, error) {
	query, args, err := r.sb.Insert("products").
		Columns("name", "description", "price", "category", "images", "video_url", "created_at", "updated_at").
		Values(p.Name, p.Description, p.Price, p.Category.String(), p.Images, p.VideoURL, p.CreatedAt, p.UpdatedAt).
		Suffix("RETURNING " + strings.Join(productColumns, ", ")).
		ToSql()
	if err != nil {
		return product.Product{}, fmt.Errorf("failed to build insert query: %w", err)
	}

	created, err := scanProduct(r.conn.QueryRow(ctx, query, args...))
	if err != nil {
		return product.Product{}, fmt.Errorf("failed to insert product: %w", err)
	}

	return created, nil
}

func (r *PostgresProductRepository) Update(ctx context.Context, p product.Product) (product.Product, error) {
	query, args, err := r.sb.Update("products").
		Set("name", p.Name).
		Set("description", p.Description).
		Set("price", p.Price).
		Set("category", p.Category.String()).
		Set("images", p.Images).
		Set("video_url", p.VideoURL).
		Set("updated_at", p.UpdatedAt).
		Where(sq.Eq{"id": p.ID}).
		Suffix("RETURNING " + strings.Join(productColumns, ", ")).
		ToSql()
	if err != nil {
		return product.Product{}, fmt.Errorf("failed to build update query: %w", err)
	}

	updated, err := scanProduct(r.conn.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return product.Product{}, product.ErrProductNotFound
	}
	if err != nil {
		return product.Product{}, fmt.Errorf("failed to update product: %w", err)
	}

	return updated, nil
}

func (r *PostgresProductRepository) Delete(ctx context.Context, id int64) error {
	query, args, err := r.sb.Delete("products").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete query: %w", err)
	}

	tag, err := r.conn.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return product.ErrProductNotFound
	}

	return nil
}
