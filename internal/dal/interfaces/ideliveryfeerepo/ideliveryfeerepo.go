package ideliveryfeerepo

import (
	"context"

	"github.com/corray333/backend-labs/storefront/internal/service/models/deliveryfee"
)

// IDeliveryFeeRepository is the delivery fee table.
type IDeliveryFeeRepository interface {
	// Get returns found=false when the region has no entry.
	Get(ctx context.Context, regionID int) (fee int64, found bool, err error)
	List(ctx context.Context) ([]deliveryfee.Entry, error)
	Upsert(ctx context.Context, entry deliveryfee.Entry) (deliveryfee.Entry, error)
}
