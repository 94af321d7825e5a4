// Package admin serves the back-office: catalog edits, delivery fees and the
// order journal. Routes are mounted behind basic auth.
package admin

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/schema"

	"github.com/corray333/backend-labs/storefront/internal/service/models/deliveryfee"
	"github.com/corray333/backend-labs/storefront/internal/service/models/order"
	"github.com/corray333/backend-labs/storefront/internal/service/models/product"
	"github.com/corray333/backend-labs/storefront/internal/service/services/storesvc"
	"github.com/corray333/backend-labs/storefront/internal/transport/http/catalog"
	"github.com/corray333/backend-labs/storefront/internal/transport/http/response"
)

type service interface {
	ListProducts(ctx context.Context, q product.QueryProductsModel) ([]product.Product, error)
	GetProduct(ctx context.Context, id int64) (product.Product, error)
	CreateProduct(ctx context.Context, p product.Product) (product.Product, error)
	UpdateProduct(ctx context.Context, p product.Product) (product.Product, error)
	DeleteProduct(ctx context.Context, id int64) error
	DeliveryFees(ctx context.Context) ([]storesvc.RegionFee, error)
	SetDeliveryFee(ctx context.Context, regionID int, fee int64) (storesvc.RegionFee, error)
	ConfigurationGaps(ctx context.Context) ([]deliveryfee.Gap, error)
	ListOrders(ctx context.Context, q order.QueryOrdersModel) ([]order.Order, error)
	UpdateOrderStatus(ctx context.Context, id string, status order.Status) (order.Order, error)
}

var decoder = func() *schema.Decoder {
	d := schema.NewDecoder()
	d.IgnoreUnknownKeys(true)

	return d
}()

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		response.BadRequest(w, r, "Failed to decode request body")

		return false
	}

	return true
}

func ListProducts(w http.ResponseWriter, r *http.Request, service service) {
	catalog.ListProducts(w, r, service)
}

// productRequest is the editable part of a product.
type productRequest struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Price       int64    `json:"price"`
	Category    string   `json:"category"`
	Images      []string `json:"images"`
	VideoURL    string   `json:"videoUrl"`
}

func (p productRequest) toModel(id int64) product.Product {
	return product.Product{
		ID:          id,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		Category:    product.Category(p.Category),
		Images:      p.Images,
		VideoURL:    p.VideoURL,
	}
}

func CreateProduct(w http.ResponseWriter, r *http.Request, service service) {
	var req productRequest
	if !decodeBody(w, r, &req) {
		return
	}

	p, err := service.CreateProduct(r.Context(), req.toModel(0))
	if err != nil {
		response.Fail(w, r, err)

		return
	}

	response.JSON(w, r, http.StatusCreated, p)
}

func UpdateProduct(w http.ResponseWriter, r *http.Request, service service) {
	id, ok := catalog.ProductID(w, r)
	if !ok {
		return
	}

	var req productRequest
	if !decodeBody(w, r, &req) {
		return
	}

	p, err := service.UpdateProduct(r.Context(), req.toModel(id))
	if err != nil {
		response.Fail(w, r, err)

		return
	}

	response.JSON(w, r, http.StatusOK, p)
}

func DeleteProduct(w http.ResponseWriter, r *http.Request, service service) {
	id, ok := catalog.ProductID(w, r)
	if !ok {
		return
	}

	if err := service.DeleteProduct(r.Context(), id); err != nil {
		response.Fail(w, r, err)

		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func ListDeliveryFees(w http.ResponseWriter, r *http.Request, service service) {
	fees, err := service.DeliveryFees(r.Context())
	if err != nil {
		response.Fail(w, r, err)

		return
	}

	response.JSON(w, r, http.StatusOK, fees)
}

type feeRequest struct {
	Fee *int64 `json:"fee"`
}

// SetDeliveryFee handles PUT /delivery-fees/{regionId}.
func SetDeliveryFee(w http.ResponseWriter, r *http.Request, service service) {
	regionID, err := strconv.Atoi(chi.URLParam(r, "regionId"))
	if err != nil {
		response.BadRequest(w, r, "region id must be an integer")

		return
	}

	var req feeRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Fee == nil {
		response.JSON(w, r, http.StatusUnprocessableEntity, response.Error{
			Error:  "validation failed",
			Fields: map[string]string{"fee": "fee is required"},
		})

		return
	}

	fee, err := service.SetDeliveryFee(r.Context(), regionID, *req.Fee)
	if err != nil {
		response.Fail(w, r, err)

		return
	}

	response.JSON(w, r, http.StatusOK, fee)
}

// Warnings lists configuration gaps the shop owner should fix.
func Warnings(w http.ResponseWriter, r *http.Request, service service) {
	gaps, err := service.ConfigurationGaps(r.Context())
	if err != nil {
		response.Fail(w, r, err)

		return
	}

	response.JSON(w, r, http.StatusOK, gaps)
}

type ordersQuery struct {
	ID     []string `schema:"id"`
	Status []string `schema:"status"`
	Limit  int      `schema:"limit"`
	Offset int      `schema:"offset"`
}

// ListOrders handles GET /orders?status=&id=&limit=&offset=, newest first.
func ListOrders(w http.ResponseWriter, r *http.Request, service service) {
	var q ordersQuery
	if err := decoder.Decode(&q, r.URL.Query()); err != nil {
		response.BadRequest(w, r, "invalid query: "+err.Error())

		return
	}

	model := order.QueryOrdersModel{Ids: q.ID, Limit: q.Limit, Offset: q.Offset}
	for _, raw := range q.Status {
		st, err := order.ParseStatus(raw)
		if err != nil {
			response.Fail(w, r, err)

			return
		}
		model.Statuses = append(model.Statuses, st)
	}

	orders, err := service.ListOrders(r.Context(), model)
	if err != nil {
		response.Fail(w, r, err)

		return
	}
	if orders == nil {
		orders = []order.Order{}
	}

	response.JSON(w, r, http.StatusOK, orders)
}

type statusRequest struct {
	Status string `json:"status"`
}

func UpdateOrderStatus(w http.ResponseWriter, r *http.Request, service service) {
	var req statusRequest
	if !decodeBody(w, r, &req) {
		return
	}

	st, err := order.ParseStatus(req.Status)
	if err != nil {
		response.Fail(w, r, err)

		return
	}

	o, err := service.UpdateOrderStatus(r.Context(), chi.URLParam(r, "id"), st)
	if err != nil {
		response.Fail(w, r, err)

		return
	}

	response.JSON(w, r, http.StatusOK, o)
}
