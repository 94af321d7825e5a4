package httptransport

import (
	"context"
	"crypto/subtle"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/corray333/backend-labs/storefront/internal/config"
	"github.com/corray333/backend-labs/storefront/internal/service/models/deliveryfee"
	"github.com/corray333/backend-labs/storefront/internal/service/models/order"
	"github.com/corray333/backend-labs/storefront/internal/service/models/product"
	"github.com/corray333/backend-labs/storefront/internal/service/services/checkoutsvc"
	"github.com/corray333/backend-labs/storefront/internal/service/services/storesvc"
	"github.com/corray333/backend-labs/storefront/internal/transport/http/admin"
	"github.com/corray333/backend-labs/storefront/internal/transport/http/catalog"
	"github.com/corray333/backend-labs/storefront/internal/transport/http/checkouts"
	"github.com/corray333/backend-labs/storefront/pkg/http/middleware/trace"
	"github.com/corray333/backend-labs/storefront/pkg/logger"
)

type checkoutService interface {
	Start(ctx context.Context, productID int64) (checkoutsvc.Session, error)
	Get(ctx context.Context, id string) (checkoutsvc.Session, error)
	Edit(ctx context.Context, id string, patch order.DraftPatch) (checkoutsvc.Session, error)
	Submit(ctx context.Context, id string) (checkoutsvc.Session, error)
	Close(ctx context.Context, id string) error
}

type storeService interface {
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

type HTTPTransport struct {
	server    *http.Server
	router    *chi.Mux
	checkouts checkoutService
	store     storeService
	admin     config.AdminConfig
	settings  admin.Settings
	metrics   http.Handler
}

type option func(*HTTPTransport)

// WithMetrics serves h on /metrics and records every request through mw.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithMetrics(h http.Handler, mw func(http.Handler) http.Handler) option {
	return func(t *HTTPTransport) {
		t.metrics = h
		t.router.Use(mw)
	}
}

func NewHTTPTransport(cfg *config.Config, checkouts checkoutService, store storeService, opts ...option) *HTTPTransport {
	router := newRouter(cfg)
	t := &HTTPTransport{
		server:    newServer(cfg.Server.HTTP, router),
		router:    router,
		checkouts: checkouts,
		store:     store,
		admin:     cfg.Admin,
		settings:  admin.NewSettings(cfg),
	}
	for _, opt := range opts {
		opt(t)
	}

	return t
}

// Run serves until Shutdown is called.
func (h *HTTPTransport) Run() error {
	slog.Info("Starting HTTP server", "address", h.server.Addr)

	if err := h.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}

func (h *HTTPTransport) Shutdown(ctx context.Context) error {
	return h.server.Shutdown(ctx)
}

// Handler exposes the router, mainly for tests.
func (h *HTTPTransport) Handler() http.Handler {
	return h.router
}

// RegisterRoutes registers the routes for the HTTPTransport.
func (h *HTTPTransport) RegisterRoutes() {
	if h.metrics != nil {
		h.router.Method(http.MethodGet, "/metrics", h.metrics)
	}

	h.router.Route("/api", func(r chi.Router) {
		r.Get("/products", h.listProducts)
		r.Get("/products/{id}", h.getProduct)
		r.Get("/regions", catalog.ListRegions)

		r.Route("/checkouts", func(r chi.Router) {
			r.Post("/", h.startCheckout)
			r.Get("/{id}", h.getCheckout)
			r.Patch("/{id}", h.editCheckout)
			r.Post("/{id}/submit", h.submitCheckout)
			r.Delete("/{id}", h.closeCheckout)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(basicAuth(h.admin))

			r.Get("/products", h.adminListProducts)
			r.Post("/products", h.createProduct)
			r.Put("/products/{id}", h.updateProduct)
			r.Delete("/products/{id}", h.deleteProduct)
			r.Get("/delivery-fees", h.listDeliveryFees)
			r.Put("/delivery-fees/{regionId}", h.setDeliveryFee)
			r.Get("/warnings", h.warnings)
			r.Get("/orders", h.listOrders)
			r.Patch("/orders/{id}/status", h.updateOrderStatus)
			r.Get("/settings", h.getSettings)
		})
	})
}

func (h *HTTPTransport) listProducts(w http.ResponseWriter, r *http.Request) {
	catalog.ListProducts(w, r, h.store)
}

func (h *HTTPTransport) getProduct(w http.ResponseWriter, r *http.Request) {
	catalog.GetProduct(w, r, h.store)
}

func (h *HTTPTransport) startCheckout(w http.ResponseWriter, r *http.Request) {
	checkouts.Start(w, r, h.checkouts)
}

func (h *HTTPTransport) getCheckout(w http.ResponseWriter, r *http.Request) {
	checkouts.Get(w, r, h.checkouts)
}

func (h *HTTPTransport) editCheckout(w http.ResponseWriter, r *http.Request) {
	checkouts.Edit(w, r, h.checkouts)
}

func (h *HTTPTransport) submitCheckout(w http.ResponseWriter, r *http.Request) {
	checkouts.Submit(w, r, h.checkouts)
}

func (h *HTTPTransport) closeCheckout(w http.ResponseWriter, r *http.Request) {
	checkouts.Close(w, r, h.checkouts)
}

func (h *HTTPTransport) adminListProducts(w http.ResponseWriter, r *http.Request) {
	admin.ListProducts(w, r, h.store)
}

func (h *HTTPTransport) createProduct(w http.ResponseWriter, r *http.Request) {
	admin.CreateProduct(w, r, h.store)
}

func (h *HTTPTransport) updateProduct(w http.ResponseWriter, r *http.Request) {
	admin.UpdateProduct(w, r, h.store)
}

func (h *HTTPTransport) deleteProduct(w http.ResponseWriter, r *http.Request) {
	admin.DeleteProduct(w, r, h.store)
}

func (h *HTTPTransport) listDeliveryFees(w http.ResponseWriter, r *http.Request) {
	admin.ListDeliveryFees(w, r, h.store)
}

func (h *HTTPTransport) setDeliveryFee(w http.ResponseWriter, r *http.Request) {
	admin.SetDeliveryFee(w, r, h.store)
}

func (h *HTTPTransport) warnings(w http.ResponseWriter, r *http.Request) {
	admin.Warnings(w, r, h.store)
}

func (h *HTTPTransport) listOrders(w http.ResponseWriter, r *http.Request) {
	admin.ListOrders(w, r, h.store)
}

func (h *HTTPTransport) updateOrderStatus(w http.ResponseWriter, r *http.Request) {
	admin.UpdateOrderStatus(w, r, h.store)
}

func (h *HTTPTransport) getSettings(w http.ResponseWriter, r *http.Request) {
	admin.GetSettings(w, r, h.settings)
}

// basicAuth compares credentials in constant time. chi's BasicAuth takes a
// map, which would not let us do that for the user name.
func basicAuth(cfg config.AdminConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, pass, ok := r.BasicAuth()
			if !ok ||
				subtle.ConstantTimeCompare([]byte(user), []byte(cfg.User)) != 1 ||
				subtle.ConstantTimeCompare([]byte(pass), []byte(cfg.Password)) != 1 {
				w.Header().Set("WWW-Authenticate", `Basic realm="storefront admin"`)
				http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)

				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func newRouter(cfg *config.Config) *chi.Mux {
	router := chi.NewMux()
	router.Use(middleware.RequestID)
	router.Use(middleware.Recoverer)
	router.Use(trace.NewTraceMiddleware(cfg.Tracing.Service))
	router.Use(logger.NewLoggerMiddleware(slog.Default()))

	c := cors.New(cors.Options{
		AllowedOrigins:   cfg.Server.HTTP.CORS.AllowedOrigins,
		AllowedMethods:   cfg.Server.HTTP.CORS.AllowedMethods,
		AllowedHeaders:   cfg.Server.HTTP.CORS.AllowedHeaders,
		ExposedHeaders:   cfg.Server.HTTP.CORS.ExposedHeaders,
		AllowCredentials: cfg.Server.HTTP.CORS.AllowCredentials,
		MaxAge:           cfg.Server.HTTP.CORS.MaxAge,
	})

	router.Use(c.Handler)

	return router
}

func newServer(cfg config.HTTPConfig, router http.Handler) *http.Server {
	return &http.Server{
		Addr:         "0.0.0.0:" + cfg.Port,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
}
