// Package checkout drives a single order draft from editing to a confirmed,
// journaled order.
//
// A Machine serializes its events under a mutex. The dispatcher call is the
// only suspension point: it runs outside the lock while the machine is parked
// in Submitting, so concurrent submits observe Submitting and do nothing.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/corray333/backend-labs/storefront/internal/service/models/order"
	"github.com/corray333/backend-labs/storefront/internal/service/models/product"
	"github.com/corray333/backend-labs/storefront/internal/service/models/region"
	"github.com/corray333/backend-labs/storefront/internal/service/pricing"
)

const defaultDispatchTimeout = 15 * time.Second

const (
	reasonTimeout = "the shop did not confirm the order in time, please try again"
	reasonJournal = "your order was sent but could not be saved, please try again"
)

// Dispatcher notifies the shop owner about a frozen order.
type Dispatcher interface {
	Dispatch(ctx context.Context, frozen order.FrozenDraft) error
}

// Journal records confirmed orders.
type Journal interface {
	Append(ctx context.Context, o order.Order) error
}

// Observer is notified about state transitions and dispatch attempts.
type Observer interface {
	Transition(from, to StateName)
	Dispatched(elapsed time.Duration, err error)
}

type noopObserver struct{}

func (noopObserver) Transition(StateName, StateName)  {}
func (noopObserver) Dispatched(time.Duration, error) {}

// View is a snapshot of the machine safe to hand to callers.
type View struct {
	State     StateName             `json:"state"`
	Product   order.ProductSnapshot `json:"product"`
	Draft     order.Draft           `json:"draft"`
	Quote     pricing.Quote         `json:"quote"`
	Errors    order.FieldErrors     `json:"errors,omitempty"`
	Reason    string                `json:"reason,omitempty"`
	Order     *order.Order          `json:"order,omitempty"`
	UpdatedAt time.Time             `json:"updatedAt"`
}

// Machine is the checkout of one product.
type Machine struct {
	mu        sync.Mutex
	state     State
	quote     pricing.Quote
	updatedAt time.Time

	product    product.Product
	fees       pricing.FeeLookup
	dispatcher Dispatcher
	journal    Journal

	now             func() time.Time
	newID           func() (string, error)
	dispatchTimeout time.Duration
	observer        Observer
	log             *slog.Logger
}

type Option func(*Machine)

func WithClock(now func() time.Time) Option {
	return func(m *Machine) {
		m.now = now
	}
}

// WithIDGenerator overrides how order ids are generated. Defaults to UUIDv7.
func WithIDGenerator(gen func() (string, error)) Option {
	return func(m *Machine) {
		m.newID = gen
	}
}

// WithDispatchTimeout bounds every dispatch attempt. Non-positive values are ignored.
func WithDispatchTimeout(d time.Duration) Option {
	return func(m *Machine) {
		if d > 0 {
			m.dispatchTimeout = d
		}
	}
}

func WithObserver(o Observer) Option {
	return func(m *Machine) {
		if o != nil {
			m.observer = o
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(m *Machine) {
		if l != nil {
			m.log = l
		}
	}
}

func newUUIDv7() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", err
	}

	return id.String(), nil
}

// New starts an Idle checkout for p.
func New(ctx context.Context, p product.Product, fees pricing.FeeLookup, dispatcher Dispatcher, journal Journal, opts ...Option) *Machine {
	m := &Machine{
		product:         p,
		fees:            fees,
		dispatcher:      dispatcher,
		journal:         journal,
		now:             time.Now,
		newID:           newUUIDv7,
		dispatchTimeout: defaultDispatchTimeout,
		observer:        noopObserver{},
		log:             slog.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}

	draft := order.NewDraft()
	m.state = Idle{Draft: draft}
	m.quote, _ = pricing.NewQuote(ctx, m.fees, p.Price, draft.Quantity, draft.RegionID)
	m.updatedAt = m.now()

	return m
}

// State returns the current state.
func (m *Machine) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.state
}

// UpdatedAt returns the time of the last transition or edit.
func (m *Machine) UpdatedAt() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.updatedAt
}

func (m *Machine) View() View {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.viewLocked()
}

func (m *Machine) viewLocked() View {
	v := View{
		State:     m.state.Name(),
		Product:   m.snapshot(),
		Quote:     m.quote,
		UpdatedAt: m.updatedAt,
	}

	switch s := m.state.(type) {
	case Idle:
		v.Draft = s.Draft
	case Editing:
		v.Draft = s.Draft
		if s.Invalid != nil {
			v.Errors = s.Invalid.Fields
		}
	case Submitting:
		v.Draft = s.Frozen.Draft
		v.Product = s.Frozen.Product
	case Failed:
		v.Draft = s.Frozen.Draft
		v.Product = s.Frozen.Product
		v.Reason = s.Reason
	case Succeeded:
		o := s.Order
		v.Order = &o
		v.Product = o.Product
	}

	return v
}

func (m *Machine) snapshot() order.ProductSnapshot {
	return order.ProductSnapshot{
		ID:        m.product.ID,
		Name:      m.product.Name,
		Image:     m.product.MainImage(),
		UnitPrice: m.product.Price,
	}
}

func (m *Machine) setLocked(next State) {
	prev := m.state.Name()
	m.state = next
	m.updatedAt = m.now()
	if prev != next.Name() {
		m.observer.Transition(prev, next.Name())
	}
}

// Edit applies patch to the draft. Only Idle and Editing accept edits.
func (m *Machine) Edit(ctx context.Context, patch order.DraftPatch) (View, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var (
		draft   order.Draft
		invalid *ValidationError
	)
	switch s := m.state.(type) {
	case Idle:
		draft = s.Draft
	case Editing:
		draft = s.Draft
		invalid = s.Invalid
	case Succeeded, Closed:
		return m.viewLocked(), ErrFinished
	default:
		return m.viewLocked(), ErrDraftFrozen
	}

	draft = patch.Apply(draft)
	if invalid != nil {
		// Keep showing errors the customer has not fixed yet.
		if fields := draft.Validate(); fields != nil {
			invalid = &ValidationError{Fields: fields}
		} else {
			invalid = nil
		}
	}
	if patch.AffectsPrice() {
		m.quote, _ = pricing.NewQuote(ctx, m.fees, m.product.Price, draft.Quantity, draft.RegionID)
	}

	m.setLocked(Editing{Draft: draft, Invalid: invalid})

	return m.viewLocked(), nil
}

// Submit validates and freezes the draft, then dispatches and journals it.
// A Failed machine retries with its frozen draft. Submitting while a
// dispatch is in flight returns the current view and does nothing.
func (m *Machine) Submit(ctx context.Context) (View, error) {
	m.mu.Lock()

	var (
		frozen     order.FrozenDraft
		dispatched bool
	)
	switch s := m.state.(type) {
	case Idle:
		var err error
		if frozen, err = m.freezeLocked(ctx, s.Draft); err != nil {
			defer m.mu.Unlock()

			return m.viewLocked(), err
		}
	case Editing:
		var err error
		if frozen, err = m.freezeLocked(ctx, s.Draft); err != nil {
			defer m.mu.Unlock()

			return m.viewLocked(), err
		}
	case Failed:
		frozen = s.Frozen
		dispatched = s.Dispatched
	case Submitting:
		defer m.mu.Unlock()

		return m.viewLocked(), nil
	default:
		defer m.mu.Unlock()

		return m.viewLocked(), ErrFinished
	}

	m.setLocked(Submitting{Frozen: frozen})
	m.mu.Unlock()

	return m.complete(ctx, frozen, dispatched)
}

// freezeLocked validates draft and snapshots prices. On failure the machine
// is left in Editing with the validation error.
func (m *Machine) freezeLocked(ctx context.Context, draft order.Draft) (order.FrozenDraft, error) {
	if fields := draft.Validate(); fields != nil {
		verr := &ValidationError{Fields: fields}
		m.setLocked(Editing{Draft: draft, Invalid: verr})

		return order.FrozenDraft{}, verr
	}

	draft = draft.Normalized()
	quote, err := pricing.NewQuote(ctx, m.fees, m.product.Price, draft.Quantity, draft.RegionID)
	if err != nil {
		verr := &ValidationError{Fields: order.FieldErrors{"quantity": err.Error()}}
		m.setLocked(Editing{Draft: draft, Invalid: verr})

		return order.FrozenDraft{}, verr
	}

	id, err := m.newID()
	if err != nil {
		return order.FrozenDraft{}, fmt.Errorf("failed to generate order id: %w", err)
	}

	r, _ := region.Lookup(draft.RegionID)
	m.quote = quote

	return order.FrozenDraft{
		OrderID:       id,
		Draft:         draft,
		Product:       m.snapshot(),
		RegionName:    r.Name,
		Subtotal:      quote.Subtotal,
		DeliveryFee:   quote.DeliveryFee,
		Total:         quote.Total,
		FeeConfigured: quote.FeeConfigured,
		FrozenAt:      m.now(),
	}, nil
}

// complete runs outside the lock. The caller's cancellation does not abort an
// in-flight dispatch; only the dispatch timeout does.
func (m *Machine) complete(ctx context.Context, frozen order.FrozenDraft, dispatched bool) (View, error) {
	dctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), m.dispatchTimeout)
	defer cancel()

	log := m.log.With("order_id", frozen.OrderID, "product_id", frozen.Product.ID)

	if !dispatched {
		start := time.Now()
		err := m.dispatcher.Dispatch(dctx, frozen)
		m.observer.Dispatched(time.Since(start), err)
		if err != nil {
			log.WarnContext(ctx, "Order dispatch failed", "error", err)

			reason := err.Error()
			if errors.Is(err, context.DeadlineExceeded) {
				reason = reasonTimeout
			}

			return m.fail(frozen, false, reason, &DispatchError{Reason: reason, Err: err})
		}
	}

	o := order.FromFrozen(frozen, m.now())
	if err := m.journal.Append(dctx, o); err != nil {
		log.ErrorContext(ctx, "Failed to record dispatched order", "error", err)

		return m.fail(frozen, true, reasonJournal, fmt.Errorf("%w: %w", ErrJournal, err))
	}

	log.InfoContext(ctx, "Order placed", "total", o.TotalPrice)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.setLocked(Succeeded{Order: o})

	return m.viewLocked(), nil
}

func (m *Machine) fail(frozen order.FrozenDraft, dispatched bool, reason string, err error) (View, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.setLocked(Failed{Frozen: frozen, Reason: reason, Dispatched: dispatched})

	return m.viewLocked(), err
}

// Unrecorded reports whether the order was sent but is not journaled yet.
func (m *Machine) Unrecorded() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	f, ok := m.state.(Failed)

	return ok && f.Dispatched
}

// Close abandons the checkout. It is refused while an order is being sent
// and while a sent order is still missing from the journal.
func (m *Machine) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch s := m.state.(type) {
	case Submitting:
		return ErrCloseWhileSubmitting
	case Failed:
		if s.Dispatched {
			return ErrCloseWhileUnrecorded
		}
	case Closed:
		return nil
	}
	m.setLocked(Closed{})

	return nil
}
