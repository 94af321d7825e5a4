package order

// PaymentMethod is how the customer pays the courier or the shop.
type PaymentMethod string

const (
	PaymentCashOnDelivery PaymentMethod = "cod"
	PaymentBaridiMob      PaymentMethod = "baridimob"
	PaymentCCP            PaymentMethod = "ccp"
)

func (p PaymentMethod) String() string {
	return string(p)
}
