package order

import (
	"errors"
	"time"

	"github.com/corray333/backend-labs/storefront/internal/service/models/currency"
)

var (
	ErrOrderNotFound = errors.New("order not found")
	// ErrOrderExists is returned when an order id is already journaled.
	ErrOrderExists = errors.New("order already exists")
)

// ProductSnapshot is the product as it was priced when the order was placed.
type ProductSnapshot struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Image     string `json:"image"`
	UnitPrice int64  `json:"unitPrice"`
}

// Order represents a confirmed order in the journal.
type Order struct {
	ID            string            `json:"id"`
	Product       ProductSnapshot   `json:"product"`
	Quantity      int               `json:"quantity"`
	CustomerName  string            `json:"customerName"`
	Phone         string            `json:"phone"`
	RegionID      int               `json:"regionId"`
	RegionName    string            `json:"regionName"`
	Commune       string            `json:"commune"`
	Address       string            `json:"address"`
	PaymentMethod PaymentMethod     `json:"paymentMethod"`
	Notes         string            `json:"notes"`
	Subtotal      int64             `json:"subtotal"`
	DeliveryFee   int64             `json:"deliveryFee"`
	TotalPrice    int64             `json:"totalPrice"`
	Currency      currency.Currency `json:"currency"`
	Status        Status            `json:"status"`
	CreatedAt     time.Time         `json:"createdAt"`
	UpdatedAt     time.Time         `json:"updatedAt"`
}

// FromFrozen builds the journal entry for a dispatched draft.
func FromFrozen(f FrozenDraft, now time.Time) Order {
	d := f.Draft.Normalized()

	return Order{
		ID:            f.OrderID,
		Product:       f.Product,
		Quantity:      d.Quantity,
		CustomerName:  d.CustomerName,
		Phone:         d.Phone,
		RegionID:      d.RegionID,
		RegionName:    f.RegionName,
		Commune:       d.Commune,
		Address:       d.Address,
		PaymentMethod: d.PaymentMethod,
		Notes:         d.Notes,
		Subtotal:      f.Subtotal,
		DeliveryFee:   f.DeliveryFee,
		TotalPrice:    f.Total,
		Currency:      currency.CurrencyDZD,
		Status:        StatusNew,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}
