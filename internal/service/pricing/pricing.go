// Package pricing computes order totals from unit price, quantity and the
// delivery fee of the destination wilaya.
package pricing

import (
	"context"
	"errors"
	"log/slog"
	"math"

	"github.com/corray333/backend-labs/storefront/internal/service/models/region"
)

var (
	ErrInvalidQuantity = errors.New("quantity must be at least 1")
	ErrInvalidPrice    = errors.New("unit price must not be negative")
	ErrInvalidFee      = errors.New("delivery fee must not be negative")
	ErrTotalOverflow   = errors.New("order total is too large")
)

// FeeLookup resolves the configured delivery fee of a region.
type FeeLookup interface {
	Get(ctx context.Context, regionID int) (fee int64, found bool, err error)
}

// Quote is the price breakdown shown to the customer.
type Quote struct {
	UnitPrice     int64 `json:"unitPrice"`
	Quantity      int   `json:"quantity"`
	Subtotal      int64 `json:"subtotal"`
	DeliveryFee   int64 `json:"deliveryFee"`
	Total         int64 `json:"total"`
	FeeConfigured bool  `json:"feeConfigured"`
}

// ComputeTotal returns unitPrice*quantity + deliveryFee.
func ComputeTotal(unitPrice int64, quantity int, deliveryFee int64) (int64, error) {
	subtotal, err := Subtotal(unitPrice, quantity)
	if err != nil {
		return 0, err
	}
	if deliveryFee < 0 {
		return 0, ErrInvalidFee
	}
	if subtotal > math.MaxInt64-deliveryFee {
		return 0, ErrTotalOverflow
	}

	return subtotal + deliveryFee, nil
}

// Subtotal returns unitPrice*quantity.
func Subtotal(unitPrice int64, quantity int) (int64, error) {
	if quantity < 1 {
		return 0, ErrInvalidQuantity
	}
	if unitPrice < 0 {
		return 0, ErrInvalidPrice
	}
	if unitPrice != 0 && int64(quantity) > math.MaxInt64/unitPrice {
		return 0, ErrTotalOverflow
	}

	return unitPrice * int64(quantity), nil
}

// ResolveFee returns the fee of regionID. A region without an entry, or a
// lookup that fails, resolves to 0 with configured=false so checkout is never
// blocked by missing configuration.
func ResolveFee(ctx context.Context, lookup FeeLookup, regionID int) (fee int64, configured bool) {
	if !region.Valid(regionID) {
		return 0, false
	}

	fee, found, err := lookup.Get(ctx, regionID)
	if err != nil {
		slog.WarnContext(ctx, "Delivery fee lookup failed, charging no delivery", "region_id", regionID, "error", err)

		return 0, false
	}
	if !found || fee < 0 {
		slog.WarnContext(ctx, "No delivery fee configured for region, charging no delivery", "region_id", regionID)

		return 0, false
	}

	return fee, true
}

// NewQuote prices quantity units at unitPrice delivered to regionID.
func NewQuote(ctx context.Context, lookup FeeLookup, unitPrice int64, quantity int, regionID int) (Quote, error) {
	fee, configured := ResolveFee(ctx, lookup, regionID)
	q := Quote{
		UnitPrice:     unitPrice,
		Quantity:      quantity,
		DeliveryFee:   fee,
		FeeConfigured: configured,
	}

	subtotal, err := Subtotal(unitPrice, quantity)
	if err != nil {
		return q, err
	}
	total, err := ComputeTotal(unitPrice, quantity, fee)
	if err != nil {
		return q, err
	}
	q.Subtotal = subtotal
	q.Total = total

	return q, nil
}
