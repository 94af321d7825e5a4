// Package checkouts exposes checkout sessions over HTTP.
//
// A submit whose dispatch failed still answers 200: the session moved to the
// error state and the body carries the reason. The client retries by
// submitting again.
package checkouts

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/corray333/backend-labs/storefront/internal/service/checkout"
	"github.com/corray333/backend-labs/storefront/internal/service/models/order"
	"github.com/corray333/backend-labs/storefront/internal/service/services/checkoutsvc"
	"github.com/corray333/backend-labs/storefront/internal/transport/http/response"
)

type service interface {
	Start(ctx context.Context, productID int64) (checkoutsvc.Session, error)
	Get(ctx context.Context, id string) (checkoutsvc.Session, error)
	Edit(ctx context.Context, id string, patch order.DraftPatch) (checkoutsvc.Session, error)
	Submit(ctx context.Context, id string) (checkoutsvc.Session, error)
	Close(ctx context.Context, id string) error
}

type startRequest struct {
	ProductID int64 `json:"productId" validate:"required,gt=0"`
}

// invalidResponse returns the session next to the field errors so the form
// can be redrawn.
type invalidResponse struct {
	response.Error
	Session checkoutsvc.Session `json:"session"`
}

var validate = validator.New()

// Start handles POST /checkouts.
func Start(w http.ResponseWriter, r *http.Request, service service) {
	var req startRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, r, "Failed to decode request body")

		return
	}
	if err := validate.Struct(req); err != nil {
		response.JSON(w, r, http.StatusUnprocessableEntity, response.Error{
			Error:  "validation failed",
			Fields: map[string]string{"productId": "a product id is required"},
		})

		return
	}

	session, err := service.Start(r.Context(), req.ProductID)
	if err != nil {
		response.Fail(w, r, err)

		return
	}

	w.Header().Set("Location", "/api/checkouts/"+session.ID)
	response.JSON(w, r, http.StatusCreated, session)
}

func Get(w http.ResponseWriter, r *http.Request, service service) {
	session, err := service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.Fail(w, r, err)

		return
	}

	response.JSON(w, r, http.StatusOK, session)
}

// Edit handles PATCH /checkouts/{id}. Absent fields are left untouched.
func Edit(w http.ResponseWriter, r *http.Request, service service) {
	var patch order.DraftPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		response.BadRequest(w, r, "Failed to decode request body")

		return
	}

	session, err := service.Edit(r.Context(), chi.URLParam(r, "id"), patch)
	if err != nil {
		response.Fail(w, r, err)

		return
	}

	response.JSON(w, r, http.StatusOK, session)
}

// Submit handles POST /checkouts/{id}/submit.
func Submit(w http.ResponseWriter, r *http.Request, service service) {
	session, err := service.Submit(r.Context(), chi.URLParam(r, "id"))

	var dispatchErr *checkout.DispatchError
	switch {
	case err == nil, errors.As(err, &dispatchErr), errors.Is(err, checkout.ErrJournal):
		response.JSON(w, r, http.StatusOK, session)
	case errors.As(err, new(*checkout.ValidationError)):
		status, body := response.Map(err)
		response.JSON(w, r, status, invalidResponse{Error: body, Session: session})
	default:
		response.Fail(w, r, err)
	}
}

func Close(w http.ResponseWriter, r *http.Request, service service) {
	if err := service.Close(r.Context(), chi.URLParam(r, "id")); err != nil {
		response.Fail(w, r, err)

		return
	}

	w.WriteHeader(http.StatusNoContent)
}
