package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/opentechiz/express-checkout/pkg/enums"
)

// QuoteAddress holds the billing or shipping address attached to a quote.
type QuoteAddress struct {
	ID             uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	QuoteID        uuid.UUID         `gorm:"column:quote_id;type:uuid;not null"`
	AddressType    enums.AddressType `gorm:"column:address_type;type:text;not null"`
	Email          string            `gorm:"column:email"`
	Firstname      string            `gorm:"column:firstname"`
	Lastname       string            `gorm:"column:lastname"`
	Street         string            `gorm:"column:street"`
	City           string            `gorm:"column:city"`
	Region         string            `gorm:"column:region"`
	PostalCode     string            `gorm:"column:postal_code"`
	CountryCode    string            `gorm:"column:country_code"`
	Telephone      string            `gorm:"column:telephone"`
	ShippingMethod string            `gorm:"column:shipping_method"`
	SameAsBilling  bool              `gorm:"column:same_as_billing;not null;default:false"`
	SkipValidation bool              `gorm:"column:skip_validation;not null;default:false"`
	CreatedAt      time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}
