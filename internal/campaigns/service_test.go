package campaigns

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/pooladgaran/campane-backend/pkg/db/models"
	"github.com/pooladgaran/campane-backend/pkg/enums"
	pkgerrors "github.com/pooladgaran/campane-backend/pkg/errors"
	"github.com/pooladgaran/campane-backend/pkg/outbox"
	"github.com/pooladgaran/campane-backend/pkg/pagination"
)

type stubRepo struct {
	campaign    *models.Campaign
	packages    []models.CampaignPackage
	products    []models.CampaignProduct
	findErr     error
	createErr   error
	packagesErr error
	productsErr error
	updateErr   error

	created       *models.Campaign
	updatedStatus string
}

func (s *stubRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubRepo) CreateCampaign(_ context.Context, campaign *models.Campaign) (*models.Campaign, error) {
	if s.createErr != nil {
		return nil, s.createErr
	}
	campaign.ID = uuid.New()
	s.created = campaign
	return campaign, nil
}

func (s *stubRepo) FindByID(context.Context, uuid.UUID) (*models.Campaign, error) {
	if s.findErr != nil {
		return nil, s.findErr
	}
	return s.campaign, nil
}

func (s *stubRepo) FindBySlug(context.Context, string) (*models.Campaign, error) {
	if s.findErr != nil {
		return nil, s.findErr
	}
	return s.campaign, nil
}

func (s *stubRepo) FindPackages(context.Context, uuid.UUID) ([]models.CampaignPackage, error) {
	if s.packagesErr != nil {
		return nil, s.packagesErr
	}
	return s.packages, nil
}

func (s *stubRepo) FindProducts(context.Context, uuid.UUID) ([]models.CampaignProduct, error) {
	if s.productsErr != nil {
		return nil, s.productsErr
	}
	return s.products, nil
}

func (s *stubRepo) UpdateStatus(_ context.Context, _ uuid.UUID, status string) error {
	if s.updateErr != nil {
		return s.updateErr
	}
	s.updatedStatus = status
	return nil
}

func (s *stubRepo) ListCampaigns(context.Context, pagination.Params) (*CampaignList, error) {
	return &CampaignList{}, nil
}

func (s *stubRepo) ListCustomers(context.Context, uuid.UUID, pagination.Params) (*CustomerList, error) {
	return &CustomerList{}, nil
}

type stubTx struct{}

func (stubTx) WithTx(_ context.Context, fn func(tx *gorm.DB) error) error { return fn(nil) }

type stubOutbox struct {
	events []outbox.DomainEvent
}

func (s *stubOutbox) Emit(_ context.Context, _ *gorm.DB, event outbox.DomainEvent) error {
	s.events = append(s.events, event)
	return nil
}

func newTestService(t *testing.T, repo Repository) (Service, *stubOutbox) {
	t.Helper()
	ob := &stubOutbox{}
	svc, err := NewService(repo, stubTx{}, ob)
	require.NoError(t, err)
	return svc, ob
}

func TestCreateNormalizesTiers(t *testing.T) {
	repo := &stubRepo{}
	svc, _ := newTestService(t, repo)

	seven := 7.0
	bad := 130.0
	_, err := svc.Create(context.Background(), CreateInput{
		Name: "Industrial Tools Spring",
		Tiers: []TierInput{
			{Title: "Silver", MinQty: 24, DiscountPercent: 10},
			{Title: "", MinQty: 5, DiscountPercent: 3},                             // no title
			{Title: "Broken", MinQty: 0, DiscountPercent: 5},                      // zero threshold
			{Title: "Greedy", MinQty: 10, DiscountPercent: 5, CashDiscountPercent: &bad}, // rate out of range
			{Title: "Bronze", MinQty: 12, DiscountPercent: 5, CheckDiscountPercent: &seven},
		},
	})
	require.NoError(t, err)
	require.NotNil(t, repo.created)

	packages := repo.created.Packages
	require.Len(t, packages, 2)
	assert.Equal(t, "Bronze", packages[0].Title)
	assert.Equal(t, 12, packages[0].MinQty)
	assert.Equal(t, "Silver", packages[1].Title)
}

func TestCreateRejectsEmptyName(t *testing.T) {
	svc, _ := newTestService(t, &stubRepo{})

	_, err := svc.Create(context.Background(), CreateInput{Name: "   "})
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestCreateDuplicateSlugIsConflict(t *testing.T) {
	repo := &stubRepo{createErr: &pq.Error{Code: "23505", Constraint: "ux_campaigns_slug"}}
	svc, _ := newTestService(t, repo)

	_, err := svc.Create(context.Background(), CreateInput{Name: "Twice"})
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeConflict))
}

func TestGetBySlugNotFound(t *testing.T) {
	svc, _ := newTestService(t, &stubRepo{findErr: gorm.ErrRecordNotFound})

	_, err := svc.GetBySlug(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestGetBySlugFallsBackToDefaultCatalog(t *testing.T) {
	campaign := &models.Campaign{ID: uuid.New(), Name: "Empty", Slug: "empty", Status: enums.CampaignStatusActive}
	repo := &stubRepo{
		campaign:    campaign,
		productsErr: &pq.Error{Code: "42P01"}, // undefined_table
	}
	svc, _ := newTestService(t, repo)

	detail, err := svc.GetBySlug(context.Background(), "empty")
	require.NoError(t, err)
	assert.Equal(t, CatalogSourceDefault, detail.CatalogSource)
	assert.NotEmpty(t, detail.Catalog)
}

func TestGetBySlugUsesCampaignCatalogWhenPresent(t *testing.T) {
	campaign := &models.Campaign{ID: uuid.New(), Name: "Stocked", Slug: "stocked", Status: enums.CampaignStatusActive}
	repo := &stubRepo{
		campaign: campaign,
		products: []models.CampaignProduct{
			{ID: uuid.New(), Name: "Press 20T", BasePrice: 50_000},
		},
	}
	svc, _ := newTestService(t, repo)

	detail, err := svc.GetBySlug(context.Background(), "stocked")
	require.NoError(t, err)
	assert.Equal(t, CatalogSourceCampaign, detail.CatalogSource)
	require.Len(t, detail.Catalog, 1)
	assert.Equal(t, "Press 20T", detail.Catalog[0].Name)
}

func TestEndEmitsEvent(t *testing.T) {
	campaign := &models.Campaign{ID: uuid.New(), Slug: "running", Status: enums.CampaignStatusActive}
	repo := &stubRepo{campaign: campaign}
	svc, ob := newTestService(t, repo)

	require.NoError(t, svc.End(context.Background(), campaign.ID))
	assert.Equal(t, string(enums.CampaignStatusEnded), repo.updatedStatus)
	require.Len(t, ob.events, 1)
	assert.Equal(t, enums.EventCampaignEnded, ob.events[0].EventType)
	assert.Equal(t, campaign.ID, ob.events[0].AggregateID)
}

func TestEndAlreadyEndedIsStateConflict(t *testing.T) {
	campaign := &models.Campaign{ID: uuid.New(), Status: enums.CampaignStatusEnded}
	svc, ob := newTestService(t, &stubRepo{campaign: campaign})

	err := svc.End(context.Background(), campaign.ID)
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeStateConflict))
	assert.Empty(t, ob.events)
}

func TestTiersFromPackagesFallsBackToLegacyRate(t *testing.T) {
	cash := 5.0
	check := 7.0
	tiers := TiersFromPackages([]models.CampaignPackage{
		{Title: "Legacy", MinQty: 12, DiscountPercent: 4},
		{Title: "Dual", MinQty: 24, DiscountPercent: 4, CashDiscountPercent: &cash, CheckDiscountPercent: &check},
	})

	require.Len(t, tiers, 2)
	assert.Equal(t, 4.0, tiers[0].CashDiscountPercent)
	assert.Equal(t, 4.0, tiers[0].CheckDiscountPercent)
	assert.Equal(t, 5.0, tiers[1].CashDiscountPercent)
	assert.Equal(t, 7.0, tiers[1].CheckDiscountPercent)
}

func TestSlugify(t *testing.T) {
	assert.Equal(t, "spring-tools-1404", Slugify("Spring Tools 1404"))
	// Persian names must still produce a usable handle.
	assert.NotEmpty(t, Slugify("کمپین ابزار"))
	assert.NotContains(t, Slugify("کمپین ابزار"), " ")
}
