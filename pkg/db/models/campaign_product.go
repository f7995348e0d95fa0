package models

import (
	"time"

	"github.com/google/uuid"
)

// CampaignProduct is a catalog entry scoped to one campaign. BasePrice is in
// whole toman.
type CampaignProduct struct {
	ID         uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CampaignID uuid.UUID `gorm:"column:campaign_id;type:uuid;not null;index:ix_campaign_products_campaign"`
	Name       string    `gorm:"column:name;not null"`
	BasePrice  int64     `gorm:"column:base_price;not null"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime"`
}
