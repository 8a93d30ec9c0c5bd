package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/opentechiz/express-checkout/pkg/enums"
)

// Quote is the editable cart aggregate a buyer assembles before placement.
type Quote struct {
	ID                 uuid.UUID            `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	IsActive           bool                 `gorm:"column:is_active;not null;default:true"`
	IsVirtual          bool                 `gorm:"column:is_virtual;not null;default:false"`
	CheckoutMethod     enums.CheckoutMethod `gorm:"column:checkout_method;type:text;not null;default:'customer'"`
	CustomerID         *uuid.UUID           `gorm:"column:customer_id;type:uuid"`
	CustomerIsGuest    bool                 `gorm:"column:customer_is_guest;not null;default:false"`
	CustomerEmail      string               `gorm:"column:customer_email"`
	CustomerFirstname  string               `gorm:"column:customer_firstname"`
	CustomerMiddlename string               `gorm:"column:customer_middlename"`
	CustomerLastname   string               `gorm:"column:customer_lastname"`
	ReservedOrderID    string               `gorm:"column:reserved_order_id"`
	SubtotalCents      int64                `gorm:"column:subtotal_cents;not null;default:0"`
	GrandTotalCents    int64                `gorm:"column:grand_total_cents;not null;default:0"`
	Items              []QuoteItem          `gorm:"foreignKey:QuoteID;constraint:OnDelete:CASCADE"`
	Addresses          []QuoteAddress       `gorm:"foreignKey:QuoteID;constraint:OnDelete:CASCADE"`
	Payment            *QuotePayment        `gorm:"foreignKey:QuoteID;constraint:OnDelete:CASCADE"`
	CreatedAt          time.Time            `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt          time.Time            `gorm:"column:updated_at;autoUpdateTime"`
}

// VisibleItems returns the line items a buyer sees: child items of bundles
// and configurables are carried with a parent reference and stay hidden.
func (q *Quote) VisibleItems() []QuoteItem {
	visible := make([]QuoteItem, 0, len(q.Items))
	for _, item := range q.Items {
		if item.ParentItemID == nil {
			visible = append(visible, item)
		}
	}
	return visible
}

// BillingAddress returns the quote's billing address, if any.
func (q *Quote) BillingAddress() *QuoteAddress {
	return q.addressOfType(enums.AddressTypeBilling)
}

// ShippingAddress returns the quote's shipping address, if any.
func (q *Quote) ShippingAddress() *QuoteAddress {
	return q.addressOfType(enums.AddressTypeShipping)
}

func (q *Quote) addressOfType(t enums.AddressType) *QuoteAddress {
	for i := range q.Addresses {
		if q.Addresses[i].AddressType == t {
			return &q.Addresses[i]
		}
	}
	return nil
}
