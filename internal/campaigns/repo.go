package campaigns

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pooladgaran/campane-backend/pkg/db/models"
	"github.com/pooladgaran/campane-backend/pkg/enums"
	"github.com/pooladgaran/campane-backend/pkg/pagination"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds a campaigns repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) CreateCampaign(ctx context.Context, campaign *models.Campaign) (*models.Campaign, error) {
	if err := r.db.WithContext(ctx).Create(campaign).Error; err != nil {
		return nil, err
	}
	return campaign, nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Campaign, error) {
	var campaign models.Campaign
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&campaign).Error
	if err != nil {
		return nil, err
	}
	return &campaign, nil
}

func (r *repository) FindBySlug(ctx context.Context, slug string) (*models.Campaign, error) {
	var campaign models.Campaign
	err := r.db.WithContext(ctx).
		Where("slug = ?", slug).
		First(&campaign).Error
	if err != nil {
		return nil, err
	}
	return &campaign, nil
}

func (r *repository) FindPackages(ctx context.Context, campaignID uuid.UUID) ([]models.CampaignPackage, error) {
	var packages []models.CampaignPackage
	err := r.db.WithContext(ctx).
		Where("campaign_id = ?", campaignID).
		Order("min_qty ASC").
		Order("created_at ASC").
		Find(&packages).Error
	if err != nil {
		return nil, err
	}
	return packages, nil
}

func (r *repository) FindProducts(ctx context.Context, campaignID uuid.UUID) ([]models.CampaignProduct, error) {
	var products []models.CampaignProduct
	err := r.db.WithContext(ctx).
		Where("campaign_id = ?", campaignID).
		Order("created_at ASC").
		Find(&products).Error
	if err != nil {
		return nil, err
	}
	return products, nil
}

func (r *repository) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	return r.db.WithContext(ctx).
		Model(&models.Campaign{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":     status,
			"updated_at": time.Now().UTC(),
		}).Error
}

func (r *repository) ListCampaigns(ctx context.Context, params pagination.Params) (*CampaignList, error) {
	normalizedLimit := pagination.NormalizeLimit(params.Limit)
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, err
	}

	query := r.db.WithContext(ctx).Model(&models.Campaign{})
	if cursor != nil {
		query = query.Where(
			"(created_at < ?) OR (created_at = ? AND id < ?)",
			cursor.CreatedAt, cursor.CreatedAt, cursor.ID,
		)
	}

	var rows []models.Campaign
	err = query.
		Order("created_at DESC").
		Order("id DESC").
		Limit(pagination.LimitWithBuffer(params.Limit)).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	list := &CampaignList{Items: make([]Summary, 0, len(rows))}
	pageRows := rows
	if len(rows) > normalizedLimit {
		pageRows = rows[:normalizedLimit]
		last := pageRows[len(pageRows)-1]
		list.NextCursor = pagination.EncodeCursor(pagination.Cursor{
			CreatedAt: last.CreatedAt,
			ID:        last.ID,
		})
	}
	for _, row := range pageRows {
		list.Items = append(list.Items, Summary{
			ID:        row.ID,
			Name:      row.Name,
			Slug:      row.Slug,
			Status:    row.Status,
			CreatedAt: row.CreatedAt,
		})
	}
	return list, nil
}

// customerRecord is the scan target for the orders-with-totals join.
type customerRecord struct {
	OrderID       uuid.UUID
	UserName      string
	Phone         string
	Status        string
	PaymentType   *string
	TotalQuantity int
	CreatedAt     time.Time
}

func (r *repository) ListCustomers(ctx context.Context, campaignID uuid.UUID, params pagination.Params) (*CustomerList, error) {
	normalizedLimit := pagination.NormalizeLimit(params.Limit)
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, err
	}

	query := r.db.WithContext(ctx).
		Table("orders o").
		Select(`o.id AS order_id,
o.user_name,
o.phone,
o.status,
o.payment_type,
COALESCE(SUM(oi.quantity), 0) AS total_quantity,
o.created_at`).
		Joins("LEFT JOIN order_items oi ON oi.order_id = o.id").
		Where("o.campaign_id = ?", campaignID).
		Group("o.id, o.user_name, o.phone, o.status, o.payment_type, o.created_at")

	if cursor != nil {
		query = query.Where(
			"(o.created_at < ?) OR (o.created_at = ? AND o.id < ?)",
			cursor.CreatedAt, cursor.CreatedAt, cursor.ID,
		)
	}

	var records []customerRecord
	err = query.
		Order("o.created_at DESC").
		Order("o.id DESC").
		Limit(pagination.LimitWithBuffer(params.Limit)).
		Scan(&records).Error
	if err != nil {
		return nil, err
	}

	list := &CustomerList{Items: make([]CustomerRow, 0, len(records))}
	pageRows := records
	if len(records) > normalizedLimit {
		pageRows = records[:normalizedLimit]
		last := pageRows[len(pageRows)-1]
		list.NextCursor = pagination.EncodeCursor(pagination.Cursor{
			CreatedAt: last.CreatedAt,
			ID:        last.OrderID,
		})
	}
	for _, record := range pageRows {
		list.Items = append(list.Items, record.toRow())
	}
	return list, nil
}

func (c customerRecord) toRow() CustomerRow {
	row := CustomerRow{
		OrderID:       c.OrderID,
		UserName:      c.UserName,
		Phone:         c.Phone,
		Status:        enums.OrderStatus(c.Status),
		TotalQuantity: c.TotalQuantity,
		CreatedAt:     c.CreatedAt,
	}
	if c.PaymentType != nil && *c.PaymentType != "" {
		method := enums.PaymentType(*c.PaymentType)
		row.PaymentType = &method
	}
	return row
}
