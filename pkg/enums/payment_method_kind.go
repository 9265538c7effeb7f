package enums

import "fmt"

// PaymentMethodKind classifies how cash moves for a payment method.
type PaymentMethodKind string

const (
	PaymentMethodKindCash     PaymentMethodKind = "cash"
	PaymentMethodKindTransfer PaymentMethodKind = "transfer"
	PaymentMethodKindCard     PaymentMethodKind = "card"
	PaymentMethodKindOther    PaymentMethodKind = "other"
)

var validPaymentMethodKinds = []PaymentMethodKind{
	PaymentMethodKindCash,
	PaymentMethodKindTransfer,
	PaymentMethodKindCard,
	PaymentMethodKindOther,
}

// String implements fmt.Stringer.
func (p PaymentMethodKind) String() string {
	return string(p)
}

// IsValid reports whether the value is a known PaymentMethodKind.
func (p PaymentMethodKind) IsValid() bool {
	for _, candidate := range validPaymentMethodKinds {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParsePaymentMethodKind converts raw input into a PaymentMethodKind.
func ParsePaymentMethodKind(value string) (PaymentMethodKind, error) {
	for _, candidate := range validPaymentMethodKinds {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid payment method kind %q", value)
}
