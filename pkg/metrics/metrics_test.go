package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corray333/backend-labs/storefront/internal/service/checkout"
)

func TestServerMetricsMiddleware(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewServerMetrics(reg, "api")

	r := chi.NewRouter()
	r.Use(m.Middleware)
	r.Get("/products/{id}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	for range 2 {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/products/7", nil))
	}

	assert.InDelta(t, 2, testutil.ToFloat64(m.Requests.WithLabelValues("GET /products/{id}", "404")), 0)
}

func TestCheckoutMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewCheckoutMetrics(reg)

	m.Transition(checkout.StateEditing, checkout.StateSubmitting)
	m.Dispatched(120*time.Millisecond, nil)
	m.Dispatched(time.Second, errors.New("boom"))

	assert.InDelta(t, 1, testutil.ToFloat64(m.Transitions.WithLabelValues("editing", "submitting")), 0)

	rec := httptest.NewRecorder()
	Handler(reg).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), `storefront_checkout_dispatch_duration_ms_count{result="error"} 1`))
}
