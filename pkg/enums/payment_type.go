package enums

import "fmt"

// PaymentType is the settlement method a buyer picks before final submission.
// "check" is the deferred-payment method; each tier may carry a distinct
// discount rate per method.
type PaymentType string

const (
	PaymentTypeCash  PaymentType = "cash"
	PaymentTypeCheck PaymentType = "check"
)

var validPaymentTypes = []PaymentType{
	PaymentTypeCash,
	PaymentTypeCheck,
}

// IsValid reports whether the value matches the canonical payment_type enum.
func (p PaymentType) IsValid() bool {
	for _, candidate := range validPaymentTypes {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParsePaymentType converts raw input into PaymentType.
func ParsePaymentType(value string) (PaymentType, error) {
	for _, candidate := range validPaymentTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid payment type %q", value)
}
