package quote

import (
	"github.com/opentechiz/express-checkout/pkg/db/models"
)

// ApplyShippingMethod copies the selected shipping method onto the quote's
// shipping address. Virtual quotes carry no shipping address and are left
// untouched.
func ApplyShippingMethod(q *models.Quote, methodCode string) {
	if methodCode == "" || q.IsVirtual {
		return
	}
	if shipping := q.ShippingAddress(); shipping != nil {
		shipping.ShippingMethod = methodCode
	}
}

// PrepareGuestQuote detaches any customer reference and marks the quote as
// a guest checkout, falling back to the billing email for contact.
func PrepareGuestQuote(q *models.Quote) {
	q.CustomerID = nil
	q.CustomerIsGuest = true
	if q.CustomerEmail == "" {
		if billing := q.BillingAddress(); billing != nil {
			q.CustomerEmail = billing.Email
		}
	}
}

// SkipAddressValidation flags the quote addresses so they save without
// re-validation: upstream already validated them before the buyer left for
// the payment provider. When billing is optional and the billing address
// carries no email, it is marked identical to shipping.
func SkipAddressValidation(q *models.Quote, requireBillingAddress bool) {
	billing := q.BillingAddress()
	if billing != nil {
		billing.SkipValidation = true
	}
	if q.IsVirtual {
		return
	}
	if shipping := q.ShippingAddress(); shipping != nil {
		shipping.SkipValidation = true
	}
	if !requireBillingAddress && billing != nil && billing.Email == "" {
		billing.SameAsBilling = true
	}
}
