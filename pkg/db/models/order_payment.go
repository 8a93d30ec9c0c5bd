package models

import (
	"time"

	"github.com/google/uuid"
)

// PaymentInfoRedirect is the additional-information key the payment
// provider sets when the buyer must finish payment through a redirect.
const PaymentInfoRedirect = "paypal_express_checkout_redirect_required"

// OrderPayment is the payment record converted from the quote payment.
type OrderPayment struct {
	ID             uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID        uuid.UUID         `gorm:"column:order_id;type:uuid;not null;uniqueIndex"`
	Method         string            `gorm:"column:method;not null"`
	AdditionalInfo map[string]string `gorm:"column:additional_info;type:jsonb;serializer:json"`
	CreatedAt      time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}

// RequiresRedirect reports whether the provider asked for an out-of-band
// completion step.
func (p *OrderPayment) RequiresRedirect() bool {
	if p == nil || p.AdditionalInfo == nil {
		return false
	}
	return p.AdditionalInfo[PaymentInfoRedirect] != ""
}
