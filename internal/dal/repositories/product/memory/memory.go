package memoryrepo

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/corray333/backend-labs/storefront/internal/service/models/product"
)

// MemoryProductRepository keeps the catalog in process memory.
type MemoryProductRepository struct {
	mu       sync.RWMutex
	products map[int64]product.Product
	nextID   int64
}

func NewMemoryProductRepository(seed ...product.Product) *MemoryProductRepository {
	r := &MemoryProductRepository{products: make(map[int64]product.Product, len(seed))}
	for _, p := range seed {
		if p.ID == 0 {
			r.nextID++
			p.ID = r.nextID
		}
		r.nextID = max(r.nextID, p.ID)
		r.products[p.ID] = clone(p)
	}

	return r
}

func clone(p product.Product) product.Product {
	p.Images = slices.Clone(p.Images)

	return p
}

func (r *MemoryProductRepository) Get(_ context.Context, id int64) (product.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.products[id]
	if !ok {
		return product.Product{}, product.ErrProductNotFound
	}

	return clone(p), nil
}

func (r *MemoryProductRepository) Query(_ context.Context, filter *product.QueryProductsModel) ([]product.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]product.Product, 0, len(r.products))
	for _, p := range r.products {
		if filter != nil && len(filter.Categories) > 0 && !slices.Contains(filter.Categories, p.Category) {
			continue
		}
		result = append(result, clone(p))
	}
	slices.SortFunc(result, func(a, b product.Product) int {
		return int(a.ID - b.ID)
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

func (r *MemoryProductRepository) Insert(_ context.Context, p product.Product) (product.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	p.ID = r.nextID
	r.products[p.ID] = clone(p)

	return clone(p), nil
}

func (r *MemoryProductRepository) Update(_ context.Context, p product.Product) (product.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	old, ok := r.products[p.ID]
	if !ok {
		return product.Product{}, product.ErrProductNotFound
	}
	p.CreatedAt = old.CreatedAt
	r.products[p.ID] = clone(p)

	return clone(p), nil
}

func (r *MemoryProductRepository) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.products[id]; !ok {
		return product.ErrProductNotFound
	}
	delete(r.products, id)

	return nil
}

// DefaultCatalog is the demo catalog the store starts with.
func DefaultCatalog(now time.Time) []product.Product {
	mk := func(id int64, name, desc string, price int64, cat product.Category, images ...string) product.Product {
		return product.Product{
			ID:          id,
			Name:        name,
			Description: desc,
			Price:       price,
			Category:    cat,
			Images:      images,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
	}

	return []product.Product{
		mk(1, "Wireless headphones", "Noise isolating wireless headphones with long battery life.", 7500,
			product.CategoryElectronics,
			"https://images.unsplash.com/photo-1505740420928-5e560c06d30e",
			"https://images.unsplash.com/photo-1546435770-a3e426bf4022"),
		mk(2, "Premium cotton shirt", "Modern shirt in Egyptian cotton, several colours and sizes.", 3200,
			product.CategoryClothing,
			"https://images.unsplash.com/photo-1581655353564-df123a50ba35",
			"https://images.unsplash.com/photo-1620799140408-edc6d5f9650d"),
		mk(3, "Coffee machine", "Espresso and cappuccino at the push of a button.", 12000,
			product.CategoryAppliances,
			"https://images.unsplash.com/photo-1565452344012-752e55a1a1f5",
			"https://images.unsplash.com/photo-1611893343039-5509b6910a9e"),
		mk(4, "Screwdriver set", "Complete stainless steel screwdriver set for home and workshop.", 4500,
			product.CategoryTools,
			"https://images.unsplash.com/photo-1618932331513-3395c879158e"),
		mk(5, "Classic wrist watch", "Water resistant quartz watch with a classic design.", 9800,
			product.CategoryOther,
			"https://images.unsplash.com/photo-1524805444758-089113d48a6d"),
		mk(6, "Laptop backpack", "Water resistant backpack with a padded laptop pocket.", 5500,
			product.CategoryElectronics,
			"https://images.unsplash.com/photo-1553062407-98eeb68c6a62"),
	}
}
