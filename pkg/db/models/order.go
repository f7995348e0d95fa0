package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/pooladgaran/campane-backend/pkg/enums"
)

// Order is a single buyer's draft within a campaign. PaymentType stays NULL
// until the buyer picks a settlement method at submission.
type Order struct {
	ID          uuid.UUID          `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CampaignID  uuid.UUID          `gorm:"column:campaign_id;type:uuid;not null;index:ix_orders_campaign"`
	UserName    string             `gorm:"column:user_name;not null"`
	Phone       string             `gorm:"column:phone;not null"`
	Status      enums.OrderStatus  `gorm:"column:status;type:order_status;not null;default:'draft'"`
	PaymentType *enums.PaymentType `gorm:"column:payment_type;type:payment_type"`
	Items       []OrderItem        `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt   time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}
