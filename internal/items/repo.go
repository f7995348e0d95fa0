package items

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pooladgaran/campane-backend/pkg/db/models"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds an items repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) DeleteByOrder(ctx context.Context, orderID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Delete(&models.OrderItem{}).
		Error
}

func (r *repository) InsertItems(ctx context.Context, items []models.OrderItem) error {
	if len(items) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&items).Error
}

func (r *repository) ListByOrder(ctx context.Context, orderID uuid.UUID) ([]models.OrderItem, error) {
	var items []models.OrderItem
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("created_at ASC").
		Order("id ASC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

// QuantityMap rebuilds the desired-quantity map (product name -> quantity)
// from the persisted rows.
func (r *repository) QuantityMap(ctx context.Context, orderID uuid.UUID) (map[string]int, error) {
	rows, err := r.ListByOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	quantities := make(map[string]int, len(rows))
	for _, row := range rows {
		quantities[row.Product] += row.Quantity
	}
	return quantities, nil
}

// CampaignTotal sums quantities across every order of the campaign. The feed
// recomputes through this on each change event.
func (r *repository) CampaignTotal(ctx context.Context, campaignID uuid.UUID) (int, error) {
	var total int64
	err := r.db.WithContext(ctx).
		Table("order_items oi").
		Joins("JOIN orders o ON o.id = oi.order_id").
		Where("o.campaign_id = ?", campaignID).
		Select("COALESCE(SUM(oi.quantity), 0)").
		Scan(&total).Error
	if err != nil {
		return 0, err
	}
	return int(total), nil
}
