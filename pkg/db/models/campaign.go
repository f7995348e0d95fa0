package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/pooladgaran/campane-backend/pkg/enums"
)

// Campaign is a bulk-purchase run operators open and eventually end. The slug
// is derived from the name and is the public handle buyers use.
type Campaign struct {
	ID        uuid.UUID            `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name      string               `gorm:"column:name;not null"`
	Slug      string               `gorm:"column:slug;not null;uniqueIndex:ux_campaigns_slug"`
	Status    enums.CampaignStatus `gorm:"column:status;type:campaign_status;not null;default:'active'"`
	Packages  []CampaignPackage    `gorm:"foreignKey:CampaignID;constraint:OnDelete:CASCADE"`
	Products  []CampaignProduct    `gorm:"foreignKey:CampaignID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time            `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time            `gorm:"column:updated_at;autoUpdateTime"`
}
