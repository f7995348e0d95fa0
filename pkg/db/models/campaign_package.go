package models

import (
	"time"

	"github.com/google/uuid"
)

// CampaignPackage is a discount tier: once the cumulative order quantity
// reaches MinQty the tier's discount applies. Cash and check (deferred)
// settlement may carry distinct rates; when either is NULL the legacy
// single-rate DiscountPercent column is the fallback.
type CampaignPackage struct {
	ID                   uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CampaignID           uuid.UUID `gorm:"column:campaign_id;type:uuid;not null;index:ix_campaign_packages_campaign"`
	Title                string    `gorm:"column:title;not null"`
	MinQty               int       `gorm:"column:min_qty;not null"`
	DiscountPercent      float64   `gorm:"column:discount_percent;type:numeric(5,2);not null;default:0"`
	CashDiscountPercent  *float64  `gorm:"column:cash_discount_percent;type:numeric(5,2)"`
	CheckDiscountPercent *float64  `gorm:"column:check_discount_percent;type:numeric(5,2)"`
	CreatedAt            time.Time `gorm:"column:created_at;autoCreateTime"`
}
