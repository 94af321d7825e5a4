package checkout

import (
	"github.com/corray333/backend-labs/storefront/internal/service/models/order"
)

// StateName identifies a checkout state on the wire and in logs.
type StateName string

const (
	StateIdle       StateName = "idle"
	StateEditing    StateName = "editing"
	StateSubmitting StateName = "submitting"
	StateSucceeded  StateName = "success"
	StateFailed     StateName = "error"
	StateClosed     StateName = "closed"
)

// State is one of Idle, Editing, Submitting, Succeeded, Failed or Closed.
type State interface {
	Name() StateName
	state()
}

// Idle is a fresh checkout nobody has touched yet.
type Idle struct {
	Draft order.Draft
}

// Editing holds the mutable draft. Invalid is set after a rejected submit.
type Editing struct {
	Draft   order.Draft
	Invalid *ValidationError
}

// Submitting holds the frozen draft while the notification is in flight.
type Submitting struct {
	Frozen order.FrozenDraft
}

// Succeeded is terminal: the order was dispatched and journaled.
type Succeeded struct {
	Order order.Order
}

// Failed keeps the frozen draft so the customer can retry without retyping.
// Dispatched is set when the notification went out but journaling failed;
// a retry then only records the order.
type Failed struct {
	Frozen     order.FrozenDraft
	Reason     string
	Dispatched bool
}

// Closed means the customer left the checkout.
type Closed struct{}

func (Idle) Name() StateName       { return StateIdle }
func (Editing) Name() StateName    { return StateEditing }
func (Submitting) Name() StateName { return StateSubmitting }
func (Succeeded) Name() StateName  { return StateSucceeded }
func (Failed) Name() StateName     { return StateFailed }
func (Closed) Name() StateName     { return StateClosed }

func (Idle) state()       {}
func (Editing) state()    {}
func (Submitting) state() {}
func (Succeeded) state()  {}
func (Failed) state()     {}
func (Closed) state()     {}
