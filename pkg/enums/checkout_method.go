package enums

import "fmt"

// CheckoutMethod identifies how the buyer is checking out.
type CheckoutMethod string

const (
	CheckoutMethodGuest    CheckoutMethod = "guest"
	CheckoutMethodCustomer CheckoutMethod = "customer"
	CheckoutMethodRegister CheckoutMethod = "register"
)

var validCheckoutMethods = []CheckoutMethod{
	CheckoutMethodGuest,
	CheckoutMethodCustomer,
	CheckoutMethodRegister,
}

// String implements fmt.Stringer.
func (m CheckoutMethod) String() string {
	return string(m)
}

// IsValid reports whether the value is a known CheckoutMethod.
func (m CheckoutMethod) IsValid() bool {
	for _, candidate := range validCheckoutMethods {
		if candidate == m {
			return true
		}
	}
	return false
}

// ParseCheckoutMethod converts raw input into a CheckoutMethod.
func ParseCheckoutMethod(value string) (CheckoutMethod, error) {
	for _, candidate := range validCheckoutMethods {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid checkout method %q", value)
}
