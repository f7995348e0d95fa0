package campaigns

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pooladgaran/campane-backend/pkg/db/models"
	"github.com/pooladgaran/campane-backend/pkg/pagination"
)

// Repository defines persistence operations for campaign tables.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateCampaign(ctx context.Context, campaign *models.Campaign) (*models.Campaign, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Campaign, error)
	FindBySlug(ctx context.Context, slug string) (*models.Campaign, error)
	FindPackages(ctx context.Context, campaignID uuid.UUID) ([]models.CampaignPackage, error)
	FindProducts(ctx context.Context, campaignID uuid.UUID) ([]models.CampaignProduct, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error
	ListCampaigns(ctx context.Context, params pagination.Params) (*CampaignList, error)
	ListCustomers(ctx context.Context, campaignID uuid.UUID, params pagination.Params) (*CustomerList, error)
}
