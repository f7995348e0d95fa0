package orders

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pooladgaran/campane-backend/pkg/db/models"
	"github.com/pooladgaran/campane-backend/pkg/enums"
)

// ErrNotDraft reports that a submit lost the race: the row was no longer in
// draft when the guarded update ran.
var ErrNotDraft = errors.New("order is not in draft")

type repository struct {
	db *gorm.DB
}

// NewRepository builds an orders repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) CreateOrder(ctx context.Context, order *models.Order) (*models.Order, error) {
	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Create(order).Error; err != nil {
		return nil, err
	}
	return order, nil
}

func (r *repository) FindByID(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Where("id = ?", orderID).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// MarkSubmitted flips draft to submitted and records the settlement method.
// The status filter makes the transition single-shot: a concurrent submit
// that already won leaves zero rows to update and must not overwrite the
// recorded payment type.
func (r *repository) MarkSubmitted(ctx context.Context, orderID uuid.UUID, method enums.PaymentType) error {
	res := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ? AND status = ?", orderID, enums.OrderStatusDraft).
		Updates(map[string]any{
			"status":       enums.OrderStatusSubmitted,
			"payment_type": method,
			"updated_at":   time.Now().UTC(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotDraft
	}
	return nil
}

// Finder adapts the repository to the item synchronizer's order lookup.
type Finder struct {
	repo Repository
}

// NewFinder wraps the repository for the synchronizer.
func NewFinder(repo Repository) Finder {
	return Finder{repo: repo}
}

// FindOrder loads the order inside the synchronizer's transaction.
func (f Finder) FindOrder(ctx context.Context, tx *gorm.DB, orderID uuid.UUID) (*models.Order, error) {
	return f.repo.WithTx(tx).FindByID(ctx, orderID)
}
