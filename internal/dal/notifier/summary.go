// Package notifier holds the order summary sent to the shop owner. The
// subpackages deliver it over a webhook relay, RabbitMQ or Kafka.
package notifier

import (
	"encoding/json"
	"fmt"

	"github.com/corray333/backend-labs/storefront/internal/service/models/order"
)

var paymentLabels = map[order.PaymentMethod]string{
	order.PaymentCashOnDelivery: "Cash on delivery",
	order.PaymentBaridiMob:      "BaridiMob",
	order.PaymentCCP:            "CCP",
}

// Summary is the flat, labelled view of an order the shop owner reads.
type Summary struct {
	OrderID       string `json:"order_id"`
	Product       string `json:"product"`
	UnitPrice     string `json:"unit_price"`
	Quantity      int    `json:"quantity"`
	CustomerName  string `json:"customer_name"`
	Phone         string `json:"phone"`
	Wilaya        string `json:"wilaya"`
	Commune       string `json:"commune"`
	Address       string `json:"address"`
	PaymentMethod string `json:"payment_method"`
	Notes         string `json:"notes"`
	DeliveryFee   string `json:"delivery_fee"`
	TotalPrice    string `json:"total_price"`
	Subject       string `json:"_subject"`
}

func dzd(amount int64) string {
	return fmt.Sprintf("%d DZD", amount)
}

// NewSummary flattens a frozen draft. subject becomes the message title.
func NewSummary(f order.FrozenDraft, subject string) Summary {
	d := f.Draft
	payment, ok := paymentLabels[d.PaymentMethod]
	if !ok {
		payment = d.PaymentMethod.String()
	}

	notes := d.Notes
	if notes == "" {
		notes = "-"
	}
	commune := d.Commune
	if commune == "" {
		commune = "-"
	}

	return Summary{
		OrderID:       f.OrderID,
		Product:       f.Product.Name,
		UnitPrice:     dzd(f.Product.UnitPrice),
		Quantity:      d.Quantity,
		CustomerName:  d.CustomerName,
		Phone:         d.Phone,
		Wilaya:        fmt.Sprintf("%02d - %s", d.RegionID, f.RegionName),
		Commune:       commune,
		Address:       d.Address,
		PaymentMethod: payment,
		Notes:         notes,
		DeliveryFee:   dzd(f.DeliveryFee),
		TotalPrice:    dzd(f.Total),
		Subject:       fmt.Sprintf("%s: %s", subject, f.Product.Name),
	}
}

func (s Summary) JSON() ([]byte, error) {
	return json.Marshal(s)
}
