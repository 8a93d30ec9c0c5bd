package enums

import "fmt"

// OrderState tracks where an order sits in its payment lifecycle.
type OrderState string

const (
	OrderStateNew            OrderState = "new"
	OrderStatePendingPayment OrderState = "pending_payment"
	OrderStateProcessing     OrderState = "processing"
	OrderStateComplete       OrderState = "complete"
	OrderStatePaymentReview  OrderState = "payment_review"
	OrderStateCanceled       OrderState = "canceled"
)

var validOrderStates = []OrderState{
	OrderStateNew,
	OrderStatePendingPayment,
	OrderStateProcessing,
	OrderStateComplete,
	OrderStatePaymentReview,
	OrderStateCanceled,
}

// String implements fmt.Stringer.
func (s OrderState) String() string {
	return string(s)
}

// IsValid reports whether the value is a known OrderState.
func (s OrderState) IsValid() bool {
	for _, candidate := range validOrderStates {
		if candidate == s {
			return true
		}
	}
	return false
}

// IsConfirmable reports whether an order in this state should trigger the
// buyer confirmation notification after placement.
func (s OrderState) IsConfirmable() bool {
	switch s {
	case OrderStateProcessing, OrderStateComplete, OrderStatePaymentReview:
		return true
	default:
		return false
	}
}

// ParseOrderState converts raw input into an OrderState.
func ParseOrderState(value string) (OrderState, error) {
	for _, candidate := range validOrderStates {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid order state %q", value)
}
