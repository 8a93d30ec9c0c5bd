package models

import (
	"time"

	"github.com/google/uuid"
)

// OrderItem is one line of an order, linked 1:1 to the quote item it was
// converted from.
type OrderItem struct {
	ID             uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID        uuid.UUID `gorm:"column:order_id;type:uuid;not null"`
	QuoteItemID    uuid.UUID `gorm:"column:quote_item_id;type:uuid;not null"`
	ProductSKU     string    `gorm:"column:product_sku;not null"`
	Name           string    `gorm:"column:name;not null"`
	Qty            int       `gorm:"column:qty;not null"`
	UnitPriceCents int64     `gorm:"column:unit_price_cents;not null"`
	RowTotalCents  int64     `gorm:"column:row_total_cents;not null;default:0"`
	CreatedAt      time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
