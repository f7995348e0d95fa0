package items

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pooladgaran/campane-backend/pkg/db/models"
)

// Repository defines persistence operations for order line items.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	DeleteByOrder(ctx context.Context, orderID uuid.UUID) error
	InsertItems(ctx context.Context, items []models.OrderItem) error
	ListByOrder(ctx context.Context, orderID uuid.UUID) ([]models.OrderItem, error)
	QuantityMap(ctx context.Context, orderID uuid.UUID) (map[string]int, error)
	CampaignTotal(ctx context.Context, campaignID uuid.UUID) (int, error)
}
