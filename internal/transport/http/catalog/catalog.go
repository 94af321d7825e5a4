// Package catalog serves the public product listing and the wilaya list.
package catalog

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/schema"

	"github.com/corray333/backend-labs/storefront/internal/service/models/product"
	"github.com/corray333/backend-labs/storefront/internal/service/models/region"
	"github.com/corray333/backend-labs/storefront/internal/transport/http/response"
)

type service interface {
	ListProducts(ctx context.Context, q product.QueryProductsModel) ([]product.Product, error)
	GetProduct(ctx context.Context, id int64) (product.Product, error)
}

type listQuery struct {
	Category []string `schema:"category"`
	Limit    int      `schema:"limit"`
	Offset   int      `schema:"offset"`
}

var decoder = func() *schema.Decoder {
	d := schema.NewDecoder()
	d.IgnoreUnknownKeys(true)

	return d
}()

// ListProducts handles GET /products?category=...&limit=&offset=.
func ListProducts(w http.ResponseWriter, r *http.Request, service service) {
	var q listQuery
	if err := decoder.Decode(&q, r.URL.Query()); err != nil {
		response.BadRequest(w, r, "invalid query: "+err.Error())

		return
	}

	model := product.QueryProductsModel{Limit: q.Limit, Offset: q.Offset}
	for _, raw := range q.Category {
		c, err := product.ParseCategory(raw)
		if err != nil {
			response.JSON(w, r, http.StatusUnprocessableEntity, response.Error{
				Error:  "validation failed",
				Fields: map[string]string{"category": "unknown category " + strconv.Quote(raw)},
			})

			return
		}
		model.Categories = append(model.Categories, c)
	}

	products, err := service.ListProducts(r.Context(), model)
	if err != nil {
		response.Fail(w, r, err)

		return
	}
	if products == nil {
		products = []product.Product{}
	}

	response.JSON(w, r, http.StatusOK, products)
}

func GetProduct(w http.ResponseWriter, r *http.Request, service service) {
	id, ok := ProductID(w, r)
	if !ok {
		return
	}

	p, err := service.GetProduct(r.Context(), id)
	if err != nil {
		response.Fail(w, r, err)

		return
	}

	response.JSON(w, r, http.StatusOK, p)
}

// ListRegions handles GET /regions.
func ListRegions(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, r, http.StatusOK, region.All())
}

// ProductID parses the {id} URL parameter, writing a 400 when it is not a
// positive integer.
func ProductID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		response.BadRequest(w, r, "product id must be a positive integer")

		return 0, false
	}

	return id, true
}
