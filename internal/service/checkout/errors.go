package checkout

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/corray333/backend-labs/storefront/internal/service/models/order"
)

var (
	ErrDraftFrozen          = errors.New("draft can no longer be edited")
	ErrFinished             = errors.New("checkout is already finished")
	ErrCloseWhileSubmitting = errors.New("checkout cannot be closed while the order is being sent")
	ErrCloseWhileUnrecorded = errors.New("checkout cannot be closed until the sent order is recorded")
	ErrJournal              = errors.New("order was sent but could not be recorded")
)

// ValidationError reports the draft fields that block submission.
type ValidationError struct {
	Fields order.FieldErrors
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}

	return "invalid order: " + strings.Join(parts, "; ")
}

// DispatchError reports a failed notification. Reason is safe to show to the customer.
type DispatchError struct {
	Reason string
	Err    error
}

func (e *DispatchError) Error() string {
	return fmt.Sprintf("order notification failed: %s", e.Reason)
}

func (e *DispatchError) Unwrap() error {
	return e.Err
}
