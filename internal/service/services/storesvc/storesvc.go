package storesvc

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"go.opentelemetry.io/otel"

	"github.com/corray333/backend-labs/storefront/internal/dal/interfaces/ideliveryfeerepo"
	"github.com/corray333/backend-labs/storefront/internal/dal/interfaces/iproductrepo"
	"github.com/corray333/backend-labs/storefront/internal/service/models/deliveryfee"
	"github.com/corray333/backend-labs/storefront/internal/service/models/order"
	"github.com/corray333/backend-labs/storefront/internal/service/models/product"
	"github.com/corray333/backend-labs/storefront/internal/service/models/region"
)

var tracer = otel.Tracer("storefront/storesvc")

// ValidationError lists the fields an admin request got wrong.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}

	return "invalid request: " + strings.Join(parts, "; ")
}

type journal interface {
	List(ctx context.Context, q order.QueryOrdersModel) ([]order.Order, error)
	UpdateStatus(ctx context.Context, id string, status order.Status) (order.Order, error)
}

// RegionFee is a wilaya with the fee its customers are charged.
type RegionFee struct {
	RegionID   int        `json:"regionId"`
	RegionName string     `json:"regionName"`
	Fee        int64      `json:"fee"`
	Configured bool       `json:"configured"`
	UpdatedAt  *time.Time `json:"updatedAt,omitempty"`
}

// StoreService backs the public catalog and the admin back-office.
type StoreService struct {
	products iproductrepo.IProductRepository
	fees     ideliveryfeerepo.IDeliveryFeeRepository
	journal  journal
	now      func() time.Time
}

// option is a function that configures the StoreService.
type option func(*StoreService)

// MustNewStoreService creates a new StoreService.
func MustNewStoreService(opts ...option) *StoreService {
	s := &StoreService{now: time.Now}
	for _, opt := range opts {
		opt(s)
	}

	if s.products == nil || s.fees == nil || s.journal == nil {
		panic("storesvc: product repository, fee repository and journal are required")
	}

	return s
}

//goland:noinspection GoExportedFuncWithUnexportedType
func WithProductRepository(repo iproductrepo.IProductRepository) option {
	return func(s *StoreService) {
		s.products = repo
	}
}

//goland:noinspection GoExportedFuncWithUnexportedType
func WithDeliveryFeeRepository(repo ideliveryfeerepo.IDeliveryFeeRepository) option {
	return func(s *StoreService) {
		s.fees = repo
	}
}

//goland:noinspection GoExportedFuncWithUnexportedType
func WithJournal(j journal) option {
	return func(s *StoreService) {
		s.journal = j
	}
}

//goland:noinspection GoExportedFuncWithUnexportedType
func WithClock(now func() time.Time) option {
	return func(s *StoreService) {
		s.now = now
	}
}

func (s *StoreService) ListProducts(ctx context.Context, q product.QueryProductsModel) ([]product.Product, error) {
	ctx, span := tracer.Start(ctx, "StoreService.ListProducts")
	defer span.End()

	return s.products.Query(ctx, &q)
}

func (s *StoreService) GetProduct(ctx context.Context, id int64) (product.Product, error) {
	ctx, span := tracer.Start(ctx, "StoreService.GetProduct")
	defer span.End()

	return s.products.Get(ctx, id)
}

func normalizeProduct(p product.Product) product.Product {
	p.Name = strings.TrimSpace(p.Name)
	p.Description = strings.TrimSpace(p.Description)
	p.VideoURL = strings.TrimSpace(p.VideoURL)

	images := make([]string, 0, len(p.Images))
	for _, img := range p.Images {
		images = append(images, strings.TrimSpace(img))
	}
	p.Images = images

	return p
}

func (s *StoreService) CreateProduct(ctx context.Context, p product.Product) (product.Product, error) {
	ctx, span := tracer.Start(ctx, "StoreService.CreateProduct")
	defer span.End()

	p = normalizeProduct(p)
	if fields := p.Validate(); fields != nil {
		return product.Product{}, &ValidationError{Fields: fields}
	}

	now := s.now()
	p.ID = 0
	p.CreatedAt = now
	p.UpdatedAt = now

	created, err := s.products.Insert(ctx, p)
	if err != nil {
		return product.Product{}, err
	}
	slog.InfoContext(ctx, "Product created", "product_id", created.ID)

	return created, nil
}

func (s *StoreService) UpdateProduct(ctx context.Context, p product.Product) (product.Product, error) {
	ctx, span := tracer.Start(ctx, "StoreService.UpdateProduct")
	defer span.End()

	p = normalizeProduct(p)
	if fields := p.Validate(); fields != nil {
		return product.Product{}, &ValidationError{Fields: fields}
	}
	p.UpdatedAt = s.now()

	updated, err := s.products.Update(ctx, p)
	if err != nil {
		return product.Product{}, err
	}
	slog.InfoContext(ctx, "Product updated", "product_id", updated.ID)

	return updated, nil
}

// DeleteProduct removes a product. Journaled orders keep their snapshot.
func (s *StoreService) DeleteProduct(ctx context.Context, id int64) error {
	ctx, span := tracer.Start(ctx, "StoreService.DeleteProduct")
	defer span.End()

	if err := s.products.Delete(ctx, id); err != nil {
		return err
	}
	slog.InfoContext(ctx, "Product deleted", "product_id", id)

	return nil
}

// DeliveryFees returns every wilaya with its fee; unconfigured ones cost 0.
func (s *StoreService) DeliveryFees(ctx context.Context) ([]RegionFee, error) {
	ctx, span := tracer.Start(ctx, "StoreService.DeliveryFees")
	defer span.End()

	entries, err := s.fees.List(ctx)
	if err != nil {
		return nil, err
	}

	byRegion := make(map[int]deliveryfee.Entry, len(entries))
	for _, e := range entries {
		byRegion[e.RegionID] = e
	}

	out := make([]RegionFee, 0, region.Count)
	for _, r := range region.All() {
		rf := RegionFee{RegionID: r.ID, RegionName: r.Name}
		if e, ok := byRegion[r.ID]; ok {
			updated := e.UpdatedAt
			rf.Fee = e.Fee
			rf.Configured = true
			rf.UpdatedAt = &updated
		}
		out = append(out, rf)
	}

	return out, nil
}

func (s *StoreService) SetDeliveryFee(ctx context.Context, regionID int, fee int64) (RegionFee, error) {
	ctx, span := tracer.Start(ctx, "StoreService.SetDeliveryFee")
	defer span.End()

	r, ok := region.Lookup(regionID)
	fields := map[string]string{}
	if !ok {
		fields["regionId"] = fmt.Sprintf("choose a wilaya between 1 and %d", region.Count)
	}
	if fee < 0 {
		fields["fee"] = "fee must not be negative"
	}
	if len(fields) > 0 {
		return RegionFee{}, &ValidationError{Fields: fields}
	}

	e, err := s.fees.Upsert(ctx, deliveryfee.Entry{RegionID: regionID, Fee: fee, UpdatedAt: s.now()})
	if err != nil {
		return RegionFee{}, err
	}
	slog.InfoContext(ctx, "Delivery fee updated", "region_id", regionID, "fee", fee)

	return RegionFee{RegionID: r.ID, RegionName: r.Name, Fee: e.Fee, Configured: true, UpdatedAt: &e.UpdatedAt}, nil
}

// ConfigurationGaps lists wilayas without a fee entry. Orders to them are
// charged no delivery.
func (s *StoreService) ConfigurationGaps(ctx context.Context) ([]deliveryfee.Gap, error) {
	fees, err := s.DeliveryFees(ctx)
	if err != nil {
		return nil, err
	}

	gaps := []deliveryfee.Gap{}
	for _, f := range fees {
		if f.Configured {
			continue
		}
		gaps = append(gaps, deliveryfee.Gap{
			RegionID:   f.RegionID,
			RegionName: f.RegionName,
			Message:    fmt.Sprintf("no delivery fee configured for %s, orders are delivered for free", f.RegionName),
		})
	}

	return gaps, nil
}

func (s *StoreService) ListOrders(ctx context.Context, q order.QueryOrdersModel) ([]order.Order, error) {
	return s.journal.List(ctx, q)
}

func (s *StoreService) UpdateOrderStatus(ctx context.Context, id string, status order.Status) (order.Order, error) {
	return s.journal.UpdateStatus(ctx, id, status)
}
