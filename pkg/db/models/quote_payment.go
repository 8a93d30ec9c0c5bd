package models

import (
	"time"

	"github.com/google/uuid"
)

// QuotePayment is the payment sub-record captured while the quote is open.
type QuotePayment struct {
	ID             uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	QuoteID        uuid.UUID         `gorm:"column:quote_id;type:uuid;not null;uniqueIndex"`
	Method         string            `gorm:"column:method;not null"`
	AdditionalInfo map[string]string `gorm:"column:additional_info;type:jsonb;serializer:json"`
	CreatedAt      time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}
