package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/opentechiz/express-checkout/pkg/enums"
)

// Order is the durable record produced from a quote. Its increment id is
// the human-facing reference and must never change once assigned.
type Order struct {
	ID                 uuid.UUID        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	State              enums.OrderState `gorm:"column:state;type:text;not null;default:'new'"`
	IncrementID        string           `gorm:"column:increment_id"`
	QuoteID            uuid.UUID        `gorm:"column:quote_id;type:uuid;not null"`
	CustomerID         *uuid.UUID       `gorm:"column:customer_id;type:uuid"`
	CustomerEmail      string           `gorm:"column:customer_email"`
	CustomerFirstname  string           `gorm:"column:customer_firstname"`
	CustomerMiddlename string           `gorm:"column:customer_middlename"`
	CustomerLastname   string           `gorm:"column:customer_lastname"`
	ShippingMethod     string           `gorm:"column:shipping_method"`
	SubtotalCents      int64            `gorm:"column:subtotal_cents;not null;default:0"`
	GrandTotalCents    int64            `gorm:"column:grand_total_cents;not null;default:0"`
	Items              []OrderItem      `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	Addresses          []OrderAddress   `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	Payment            *OrderPayment    `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CanceledAt         *time.Time       `gorm:"column:canceled_at"`
	CreatedAt          time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt          time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}

// ItemByQuoteItemID finds the order item converted from the given quote
// item, if one exists. The quote item id is the stable key that makes
// repeated conversions update items in place instead of duplicating them.
func (o *Order) ItemByQuoteItemID(quoteItemID uuid.UUID) *OrderItem {
	for i := range o.Items {
		if o.Items[i].QuoteItemID == quoteItemID {
			return &o.Items[i]
		}
	}
	return nil
}

// BillingAddress returns the order's billing address, if any.
func (o *Order) BillingAddress() *OrderAddress {
	return o.addressOfType(enums.AddressTypeBilling)
}

// ShippingAddress returns the order's shipping address, if any.
func (o *Order) ShippingAddress() *OrderAddress {
	return o.addressOfType(enums.AddressTypeShipping)
}

func (o *Order) addressOfType(t enums.AddressType) *OrderAddress {
	for i := range o.Addresses {
		if o.Addresses[i].AddressType == t {
			return &o.Addresses[i]
		}
	}
	return nil
}
