package campaigns

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/pooladgaran/campane-backend/pkg/db/models"
	"github.com/pooladgaran/campane-backend/pkg/enums"
	"github.com/pooladgaran/campane-backend/pkg/pagination"
)

func setupCampaignsTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	statements := []string{
		`CREATE TABLE IF NOT EXISTS campaigns (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  slug TEXT NOT NULL UNIQUE,
  status TEXT NOT NULL DEFAULT 'active',
  created_at DATETIME,
  updated_at DATETIME
);`,
		`CREATE TABLE IF NOT EXISTS campaign_packages (
  id TEXT PRIMARY KEY,
  campaign_id TEXT NOT NULL,
  title TEXT NOT NULL,
  min_qty INTEGER NOT NULL,
  discount_percent REAL NOT NULL DEFAULT 0,
  cash_discount_percent REAL,
  check_discount_percent REAL,
  created_at DATETIME
);`,
		`CREATE TABLE IF NOT EXISTS campaign_products (
  id TEXT PRIMARY KEY,
  campaign_id TEXT NOT NULL,
  name TEXT NOT NULL,
  base_price INTEGER NOT NULL,
  created_at DATETIME
);`,
		`CREATE TABLE IF NOT EXISTS orders (
  id TEXT PRIMARY KEY,
  campaign_id TEXT NOT NULL,
  user_name TEXT NOT NULL,
  phone TEXT NOT NULL,
  status TEXT NOT NULL DEFAULT 'draft',
  payment_type TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`,
		`CREATE TABLE IF NOT EXISTS order_items (
  id TEXT PRIMARY KEY,
  order_id TEXT NOT NULL,
  product TEXT NOT NULL,
  quantity INTEGER NOT NULL,
  created_at DATETIME
);`,
	}
	for _, stmt := range statements {
		require.NoError(t, db.Exec(stmt).Error)
	}
	return db
}

func seedCampaign(t *testing.T, db *gorm.DB, name, slug string, createdAt time.Time) *models.Campaign {
	t.Helper()
	campaign := &models.Campaign{
		ID:        uuid.New(),
		Name:      name,
		Slug:      slug,
		Status:    enums.CampaignStatusActive,
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}
	require.NoError(t, db.Create(campaign).Error)
	return campaign
}

func TestRepoFindPackagesSortedByThreshold(t *testing.T) {
	db := setupCampaignsTestDB(t)
	repo := NewRepository(db)
	campaign := seedCampaign(t, db, "Tools", "tools", time.Now())

	for _, pkg := range []models.CampaignPackage{
		{ID: uuid.New(), CampaignID: campaign.ID, Title: "Gold", MinQty: 48},
		{ID: uuid.New(), CampaignID: campaign.ID, Title: "Bronze", MinQty: 12},
		{ID: uuid.New(), CampaignID: campaign.ID, Title: "Silver", MinQty: 24},
	} {
		require.NoError(t, db.Create(&pkg).Error)
	}

	packages, err := repo.FindPackages(context.Background(), campaign.ID)
	require.NoError(t, err)
	require.Len(t, packages, 3)
	assert.Equal(t, "Bronze", packages[0].Title)
	assert.Equal(t, "Silver", packages[1].Title)
	assert.Equal(t, "Gold", packages[2].Title)
}

func TestRepoListCampaignsPaginates(t *testing.T) {
	db := setupCampaignsTestDB(t)
	repo := NewRepository(db)

	base := time.Now().Add(-time.Hour)
	for i := 0; i < 3; i++ {
		seedCampaign(t, db, "Campaign", uuid.NewString(), base.Add(time.Duration(i)*time.Minute))
	}

	page, err := repo.ListCampaigns(context.Background(), pagination.Params{Limit: 2})
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	require.NotEmpty(t, page.NextCursor)

	rest, err := repo.ListCampaigns(context.Background(), pagination.Params{Limit: 2, Cursor: page.NextCursor})
	require.NoError(t, err)
	require.Len(t, rest.Items, 1)
	assert.Empty(t, rest.NextCursor)

	// Newest first across both pages.
	assert.True(t, page.Items[0].CreatedAt.After(page.Items[1].CreatedAt))
}

func TestRepoListCustomersAggregatesQuantities(t *testing.T) {
	db := setupCampaignsTestDB(t)
	repo := NewRepository(db)
	campaign := seedCampaign(t, db, "Tools", "tools", time.Now())

	order := &models.Order{
		ID:         uuid.New(),
		CampaignID: campaign.ID,
		UserName:   "Reza",
		Phone:      "09123456789",
		Status:     enums.OrderStatusDraft,
		CreatedAt:  time.Now(),
	}
	require.NoError(t, db.Create(order).Error)

	emptyOrder := &models.Order{
		ID:         uuid.New(),
		CampaignID: campaign.ID,
		UserName:   "Sara",
		Phone:      "09120000000",
		Status:     enums.OrderStatusDraft,
		CreatedAt:  time.Now().Add(-time.Minute),
	}
	require.NoError(t, db.Create(emptyOrder).Error)

	for _, item := range []models.OrderItem{
		{ID: uuid.New(), OrderID: order.ID, Product: "Press 20T", Quantity: 10},
		{ID: uuid.New(), OrderID: order.ID, Product: "Lathe 1.5m", Quantity: 2},
	} {
		require.NoError(t, db.Create(&item).Error)
	}

	list, err := repo.ListCustomers(context.Background(), campaign.ID, pagination.Params{})
	require.NoError(t, err)
	require.Len(t, list.Items, 2)

	assert.Equal(t, "Reza", list.Items[0].UserName)
	assert.Equal(t, 12, list.Items[0].TotalQuantity)
	assert.Equal(t, "Sara", list.Items[1].UserName)
	assert.Equal(t, 0, list.Items[1].TotalQuantity)
}
