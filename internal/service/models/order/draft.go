package order

import (
	"errors"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}

		return name
	})

	return v
}

// Draft is the customer's order form while it is being edited.
type Draft struct {
	CustomerName  string        `json:"customerName"  validate:"required"`
	Phone         string        `json:"phone"         validate:"required"`
	RegionID      int           `json:"regionId"      validate:"required,min=1,max=58"`
	Commune       string        `json:"commune"`
	Address       string        `json:"address"       validate:"required"`
	Quantity      int           `json:"quantity"      validate:"min=1"`
	PaymentMethod PaymentMethod `json:"paymentMethod" validate:"required,oneof=cod baridimob ccp"`
	Notes         string        `json:"notes"`
}

// NewDraft returns an empty draft for one unit paid cash on delivery.
func NewDraft() Draft {
	return Draft{Quantity: 1, PaymentMethod: PaymentCashOnDelivery}
}

// Normalized trims surrounding whitespace from every text field.
func (d Draft) Normalized() Draft {
	d.CustomerName = strings.TrimSpace(d.CustomerName)
	d.Phone = strings.TrimSpace(d.Phone)
	d.Commune = strings.TrimSpace(d.Commune)
	d.Address = strings.TrimSpace(d.Address)
	d.Notes = strings.TrimSpace(d.Notes)

	return d
}

// FieldErrors maps a json field name to a human-readable problem.
type FieldErrors map[string]string

// Validate checks the normalized draft and returns nil when it can be submitted.
func (d Draft) Validate() FieldErrors {
	err := validate.Struct(d.Normalized())
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return FieldErrors{"": err.Error()}
	}

	out := make(FieldErrors, len(verrs))
	for _, fe := range verrs {
		out[fe.Field()] = fieldMessage(fe)
	}

	return out
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Field() {
	case "regionId":
		return "choose a wilaya between 1 and 58"
	case "quantity":
		return "quantity must be at least 1"
	case "paymentMethod":
		return "unknown payment method"
	}

	return "this field is required"
}

// DraftPatch carries the fields a customer changed. Nil fields are left as they are.
type DraftPatch struct {
	CustomerName  *string        `json:"customerName,omitempty"`
	Phone         *string        `json:"phone,omitempty"`
	RegionID      *int           `json:"regionId,omitempty"`
	Commune       *string        `json:"commune,omitempty"`
	Address       *string        `json:"address,omitempty"`
	Quantity      *int           `json:"quantity,omitempty"`
	PaymentMethod *PaymentMethod `json:"paymentMethod,omitempty"`
	Notes         *string        `json:"notes,omitempty"`
}

// Apply returns d with the patch applied.
func (p DraftPatch) Apply(d Draft) Draft {
	if p.CustomerName != nil {
		d.CustomerName = *p.CustomerName
	}
	if p.Phone != nil {
		d.Phone = *p.Phone
	}
	if p.RegionID != nil {
		d.RegionID = *p.RegionID
	}
	if p.Commune != nil {
		d.Commune = *p.Commune
	}
	if p.Address != nil {
		d.Address = *p.Address
	}
	if p.Quantity != nil {
		d.Quantity = *p.Quantity
	}
	if p.PaymentMethod != nil {
		d.PaymentMethod = *p.PaymentMethod
	}
	if p.Notes != nil {
		d.Notes = *p.Notes
	}

	return d
}

// AffectsPrice reports whether the patch touches a field the total depends on.
func (p DraftPatch) AffectsPrice() bool {
	return p.RegionID != nil || p.Quantity != nil
}

// FrozenDraft is a validated draft together with the prices seen when it was
// submitted. It is what gets dispatched and, once dispatch succeeds, journaled.
type FrozenDraft struct {
	OrderID       string          `json:"orderId"`
	Draft         Draft           `json:"draft"`
	Product       ProductSnapshot `json:"product"`
	RegionName    string          `json:"regionName"`
	Subtotal      int64           `json:"subtotal"`
	DeliveryFee   int64           `json:"deliveryFee"`
	Total         int64           `json:"total"`
	FeeConfigured bool            `json:"feeConfigured"`
	FrozenAt      time.Time       `json:"frozenAt"`
}
