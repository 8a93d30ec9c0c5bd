package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/opentechiz/express-checkout/pkg/enums"
)

// OrderAddress snapshots a quote address at conversion time. The quote
// address id back-reference lets a repeated conversion re-associate the
// record instead of inserting a duplicate.
type OrderAddress struct {
	ID             uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID        uuid.UUID         `gorm:"column:order_id;type:uuid;not null"`
	QuoteAddressID uuid.UUID         `gorm:"column:quote_address_id;type:uuid;not null"`
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
	CreatedAt      time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}
