package checkoutsvc

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/corray333/backend-labs/storefront/internal/service/checkout"
	"github.com/corray333/backend-labs/storefront/internal/service/models/order"
	"github.com/corray333/backend-labs/storefront/internal/service/models/product"
	"github.com/corray333/backend-labs/storefront/internal/service/pricing"
)

var ErrSessionNotFound = errors.New("checkout session not found")

var tracer = otel.Tracer("storefront/checkoutsvc")

type catalog interface {
	Get(ctx context.Context, id int64) (product.Product, error)
}

// Session is a checkout as seen by clients.
type Session struct {
	ID string `json:"id"`
	checkout.View
}

// CheckoutService keeps one checkout machine per open session.
type CheckoutService struct {
	mu       sync.RWMutex
	sessions map[string]*checkout.Machine

	catalog     catalog
	fees        pricing.FeeLookup
	dispatcher  checkout.Dispatcher
	journal     checkout.Journal
	machineOpts []checkout.Option

	now func() time.Time
}

// option is a function that configures the CheckoutService.
type option func(*CheckoutService)

// MustNewCheckoutService creates a new CheckoutService.
func MustNewCheckoutService(opts ...option) *CheckoutService {
	s := &CheckoutService{
		sessions: make(map[string]*checkout.Machine),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.catalog == nil || s.fees == nil || s.dispatcher == nil || s.journal == nil {
		panic("checkoutsvc: catalog, fee lookup, dispatcher and journal are required")
	}

	return s
}

//goland:noinspection GoExportedFuncWithUnexportedType
func WithCatalog(c catalog) option {
	return func(s *CheckoutService) {
		s.catalog = c
	}
}

//goland:noinspection GoExportedFuncWithUnexportedType
func WithFeeLookup(f pricing.FeeLookup) option {
	return func(s *CheckoutService) {
		s.fees = f
	}
}

//goland:noinspection GoExportedFuncWithUnexportedType
func WithDispatcher(d checkout.Dispatcher) option {
	return func(s *CheckoutService) {
		s.dispatcher = d
	}
}

//goland:noinspection GoExportedFuncWithUnexportedType
func WithJournal(j checkout.Journal) option {
	return func(s *CheckoutService) {
		s.journal = j
	}
}

// WithMachineOptions is applied to every machine the service starts.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithMachineOptions(opts ...checkout.Option) option {
	return func(s *CheckoutService) {
		s.machineOpts = append(s.machineOpts, opts...)
	}
}

//goland:noinspection GoExportedFuncWithUnexportedType
func WithClock(now func() time.Time) option {
	return func(s *CheckoutService) {
		s.now = now
	}
}

// Start opens a checkout for productID.
func (s *CheckoutService) Start(ctx context.Context, productID int64) (Session, error) {
	ctx, span := tracer.Start(ctx, "CheckoutService.Start", trace.WithAttributes(attribute.Int64("product.id", productID)))
	defer span.End()

	p, err := s.catalog.Get(ctx, productID)
	if err != nil {
		span.RecordError(err)

		return Session{}, err
	}

	id := uuid.NewString()
	m := checkout.New(ctx, p, s.fees, s.dispatcher, s.journal, s.machineOpts...)

	s.mu.Lock()
	s.sessions[id] = m
	s.mu.Unlock()

	slog.DebugContext(ctx, "Checkout started", "session_id", id, "product_id", productID)

	return Session{ID: id, View: m.View()}, nil
}

func (s *CheckoutService) machine(id string) (*checkout.Machine, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	m, ok := s.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}

	return m, nil
}

func (s *CheckoutService) Get(_ context.Context, id string) (Session, error) {
	m, err := s.machine(id)
	if err != nil {
		return Session{}, err
	}

	return Session{ID: id, View: m.View()}, nil
}

// Edit applies patch to the session's draft. The session is returned even
// when the edit is refused.
func (s *CheckoutService) Edit(ctx context.Context, id string, patch order.DraftPatch) (Session, error) {
	ctx, span := tracer.Start(ctx, "CheckoutService.Edit")
	defer span.End()

	m, err := s.machine(id)
	if err != nil {
		return Session{}, err
	}

	v, err := m.Edit(ctx, patch)

	return Session{ID: id, View: v}, err
}

// Submit validates, dispatches and journals the session's order.
func (s *CheckoutService) Submit(ctx context.Context, id string) (Session, error) {
	ctx, span := tracer.Start(ctx, "CheckoutService.Submit", trace.WithAttributes(attribute.String("session.id", id)))
	defer span.End()

	m, err := s.machine(id)
	if err != nil {
		return Session{}, err
	}

	v, err := m.Submit(ctx)
	if err != nil {
		span.RecordError(err)
	}
	span.SetAttributes(attribute.String("checkout.state", string(v.State)))

	return Session{ID: id, View: v}, err
}

// Close abandons the session and forgets it.
func (s *CheckoutService) Close(ctx context.Context, id string) error {
	m, err := s.machine(id)
	if err != nil {
		return err
	}

	if err := m.Close(); err != nil {
		return err
	}

	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()

	slog.DebugContext(ctx, "Checkout closed", "session_id", id)

	return nil
}

// EvictIdle forgets sessions untouched for longer than ttl. Sessions with an
// order in flight or a sent order missing from the journal are kept.
func (s *CheckoutService) EvictIdle(ttl time.Duration) int {
	cutoff := s.now().Add(-ttl)

	s.mu.Lock()
	defer s.mu.Unlock()

	evicted := 0
	for id, m := range s.sessions {
		if _, submitting := m.State().(checkout.Submitting); submitting || m.Unrecorded() {
			continue
		}
		if m.UpdatedAt().Before(cutoff) {
			delete(s.sessions, id)
			evicted++
		}
	}

	return evicted
}

// RecordUnjournaled retries the journal append for every session whose order
// was sent but not recorded, and returns how many were recorded.
func (s *CheckoutService) RecordUnjournaled(ctx context.Context) int {
	s.mu.RLock()
	pending := make(map[string]*checkout.Machine)
	for id, m := range s.sessions {
		if m.Unrecorded() {
			pending[id] = m
		}
	}
	s.mu.RUnlock()

	recorded := 0
	for id, m := range pending {
		if _, err := m.Submit(ctx); err != nil {
			slog.WarnContext(ctx, "Sent order is still not recorded", "session_id", id, "error", err)

			continue
		}
		recorded++
	}

	return recorded
}

// Len returns the number of open sessions.
func (s *CheckoutService) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.sessions)
}
