package models

import (
	"time"

	"github.com/google/uuid"
)

// QuoteItem is one line of a quote. Child items reference their parent and
// are excluded from the visible set.
type QuoteItem struct {
	ID             uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	QuoteID        uuid.UUID  `gorm:"column:quote_id;type:uuid;not null"`
	ParentItemID   *uuid.UUID `gorm:"column:parent_item_id;type:uuid"`
	ProductSKU     string     `gorm:"column:product_sku;not null"`
	Name           string     `gorm:"column:name;not null"`
	Qty            int        `gorm:"column:qty;not null"`
	UnitPriceCents int64      `gorm:"column:unit_price_cents;not null"`
	RowTotalCents  int64      `gorm:"column:row_total_cents;not null;default:0"`
	CreatedAt      time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}
