package memoryrepo

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/corray333/backend-labs/storefront/internal/service/models/deliveryfee"
	"github.com/corray333/backend-labs/storefront/internal/service/models/region"
)

// MemoryDeliveryFeeRepository keeps the fee table in process memory.
type MemoryDeliveryFeeRepository struct {
	mu      sync.RWMutex
	entries map[int]deliveryfee.Entry
}

func NewMemoryDeliveryFeeRepository(entries ...deliveryfee.Entry) *MemoryDeliveryFeeRepository {
	r := &MemoryDeliveryFeeRepository{entries: make(map[int]deliveryfee.Entry, len(entries))}
	for _, e := range entries {
		r.entries[e.RegionID] = e
	}

	return r
}

// DefaultFees gives every wilaya the default flat fee.
func DefaultFees(now time.Time) []deliveryfee.Entry {
	entries := make([]deliveryfee.Entry, 0, region.Count)
	for _, r := range region.All() {
		entries = append(entries, deliveryfee.Entry{RegionID: r.ID, Fee: deliveryfee.DefaultFee, UpdatedAt: now})
	}

	return entries
}

func (r *MemoryDeliveryFeeRepository) Get(_ context.Context, regionID int) (int64, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.entries[regionID]

	return e.Fee, ok, nil
}

func (r *MemoryDeliveryFeeRepository) List(_ context.Context) ([]deliveryfee.Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]deliveryfee.Entry, 0, len(r.entries))
	for _, e := range r.entries {
		out = append(out, e)
	}
	slices.SortFunc(out, func(a, b deliveryfee.Entry) int {
		return a.RegionID - b.RegionID
	})

	return out, nil
}

func (r *MemoryDeliveryFeeRepository) Upsert(_ context.Context, entry deliveryfee.Entry) (deliveryfee.Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.entries[entry.RegionID] = entry

	return entry, nil
}
