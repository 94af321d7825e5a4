package iproductrepo

import (
	"context"

	"github.com/corray333/backend-labs/storefront/internal/service/models/product"
)

// IProductRepository is the catalog store.
type IProductRepository interface {
	Get(ctx context.Context, id int64) (product.Product, error)
	Query(ctx context.Context, filter *product.QueryProductsModel) ([]product.Product, error)
	Insert(ctx context.Context, p product.Product) (product.Product, error)
	Update(ctx context.Context, p product.Product) (product.Product, error)
	Delete(ctx context.Context, id int64) error
}
