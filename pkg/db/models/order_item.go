package models

import (
	"time"

	"github.com/google/uuid"
)

// OrderItem is one product line within an order. Product holds the product
// *name*, not a foreign key to campaign_products: catalogs can be reassigned
// or reseeded without breaking historical rows. Rows are only ever replaced
// as a whole set by the synchronizer, never edited in place, and quantities
// below 1 are never persisted.
type OrderItem struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID   uuid.UUID `gorm:"column:order_id;type:uuid;not null;index:ix_order_items_order"`
	Product   string    `gorm:"column:product;not null"`
	Quantity  int       `gorm:"column:quantity;not null"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}
