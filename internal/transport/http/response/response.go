// Package response writes JSON bodies and maps service errors to status codes.
package response

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/corray333/backend-labs/storefront/internal/service/checkout"
	"github.com/corray333/backend-labs/storefront/internal/service/models/order"
	"github.com/corray333/backend-labs/storefront/internal/service/models/product"
	"github.com/corray333/backend-labs/storefront/internal/service/services/checkoutsvc"
	"github.com/corray333/backend-labs/storefront/internal/service/services/storesvc"
)

// Error is the body of every non-2xx response.
type Error struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

func JSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.ErrorContext(r.Context(), "Error writing response", "error", err)
	}
}

// Fail writes err with the status it maps to.
func Fail(w http.ResponseWriter, r *http.Request, err error) {
	status, body := Map(err)
	if status >= http.StatusInternalServerError {
		slog.ErrorContext(r.Context(), "Request failed", "path", r.URL.Path, "error", err)
	}

	JSON(w, r, status, body)
}

func BadRequest(w http.ResponseWriter, r *http.Request, msg string) {
	JSON(w, r, http.StatusBadRequest, Error{Error: msg})
}

func Map(err error) (int, Error) {
	var (
		checkoutInvalid *checkout.ValidationError
		storeInvalid    *storesvc.ValidationError
		dispatchErr     *checkout.DispatchError
	)

	switch {
	case errors.As(err, &checkoutInvalid):
		return http.StatusUnprocessableEntity, Error{Error: "validation failed", Fields: checkoutInvalid.Fields}
	case errors.As(err, &storeInvalid):
		return http.StatusUnprocessableEntity, Error{Error: "validation failed", Fields: storeInvalid.Fields}
	case errors.As(err, &dispatchErr):
		return http.StatusBadGateway, Error{Error: dispatchErr.Reason}
	case errors.Is(err, checkout.ErrJournal):
		return http.StatusBadGateway, Error{Error: err.Error()}
	case errors.Is(err, checkoutsvc.ErrSessionNotFound),
		errors.Is(err, product.ErrProductNotFound),
		errors.Is(err, order.ErrOrderNotFound):
		return http.StatusNotFound, Error{Error: err.Error()}
	case errors.Is(err, checkout.ErrDraftFrozen),
		errors.Is(err, checkout.ErrFinished),
		errors.Is(err, checkout.ErrCloseWhileSubmitting),
		errors.Is(err, checkout.ErrCloseWhileUnrecorded):
		return http.StatusConflict, Error{Error: err.Error()}
	case errors.Is(err, order.ErrInvalidStatus):
		return http.StatusUnprocessableEntity, Error{Error: err.Error()}
	default:
		return http.StatusInternalServerError, Error{Error: "internal server error"}
	}
}
