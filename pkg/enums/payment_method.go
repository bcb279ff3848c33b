package enums

// PaymentMethod identifies how the goods portion of an order is paid.
// Cash-on-delivery covers the delivery fee only.
type PaymentMethod string

const (
	PaymentMethodPromptPay PaymentMethod = "promptpay"
)

// String implements fmt.Stringer.
func (m PaymentMethod) String() string {
	return string(m)
}
