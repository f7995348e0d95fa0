package campaigns

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/google/uuid"
	gosimpleslug "github.com/gosimple/slug"
	"gorm.io/gorm"

	"github.com/pooladgaran/campane-backend/internal/pricing"
	dbpkg "github.com/pooladgaran/campane-backend/pkg/db"
	"github.com/pooladgaran/campane-backend/pkg/db/models"
	"github.com/pooladgaran/campane-backend/pkg/enums"
	pkgerrors "github.com/pooladgaran/campane-backend/pkg/errors"
	"github.com/pooladgaran/campane-backend/pkg/outbox"
	"github.com/pooladgaran/campane-backend/pkg/outbox/payloads"
	"github.com/pooladgaran/campane-backend/pkg/pagination"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// PricingContext bundles what the pricing engine needs for one campaign.
type PricingContext struct {
	CampaignID    uuid.UUID
	Status        enums.CampaignStatus
	Tiers         []pricing.Tier
	Catalog       []pricing.CatalogEntry
	CatalogSource CatalogSource
}

// Service defines campaign-level operations.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*Detail, error)
	GetBySlug(ctx context.Context, slug string) (*Detail, error)
	End(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, params pagination.Params) (*CampaignList, error)
	Customers(ctx context.Context, campaignID uuid.UUID, params pagination.Params) (*CustomerList, error)
	LoadPricingContext(ctx context.Context, campaignID uuid.UUID) (*PricingContext, error)
}

type service struct {
	repo   Repository
	tx     txRunner
	outbox outboxPublisher
}

// NewService builds a campaigns service with the required dependencies.
func NewService(repo Repository, tx txRunner, outbox outboxPublisher) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("campaigns repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if outbox == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	return &service{repo: repo, tx: tx, outbox: outbox}, nil
}

var whitespaceRe = regexp.MustCompile(`\s+`)

// Slugify derives the public handle from a campaign name. gosimple/slug
// covers Latin input; names written entirely in Persian script transliterate
// to nothing, so those fall back to lowercase-with-hyphens which Postgres
// stores fine.
func Slugify(name string) string {
	s := gosimpleslug.Make(name)
	if s != "" {
		return s
	}
	fallback := strings.ToLower(strings.TrimSpace(name))
	return whitespaceRe.ReplaceAllString(fallback, "-")
}

func (s *service) Create(ctx context.Context, input CreateInput) (*Detail, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "campaign name required")
	}

	campaign := &models.Campaign{
		Name:     name,
		Slug:     Slugify(name),
		Status:   enums.CampaignStatusActive,
		Packages: normalizeTiers(input.Tiers),
	}
	for _, product := range input.Products {
		productName := strings.TrimSpace(product.Name)
		if productName == "" || product.BasePrice < 0 {
			continue
		}
		campaign.Products = append(campaign.Products, models.CampaignProduct{
			Name:      productName,
			BasePrice: product.BasePrice,
		})
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		_, err := s.repo.WithTx(tx).CreateCampaign(ctx, campaign)
		return err
	})
	if err != nil {
		if dbpkg.IsUniqueViolation(err, "ux_campaigns_slug") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "campaign with this name already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create campaign")
	}

	return s.buildDetail(ctx, campaign)
}

func (s *service) GetBySlug(ctx context.Context, slugValue string) (*Detail, error) {
	slugValue = strings.TrimSpace(slugValue)
	if slugValue == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "campaign slug required")
	}

	campaign, err := s.repo.FindBySlug(ctx, slugValue)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "campaign not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load campaign")
	}

	return s.buildDetail(ctx, campaign)
}

func (s *service) buildDetail(ctx context.Context, campaign *models.Campaign) (*Detail, error) {
	pricingCtx, err := s.loadPricingParts(ctx, campaign)
	if err != nil {
		return nil, err
	}
	return &Detail{
		ID:            campaign.ID,
		Name:          campaign.Name,
		Slug:          campaign.Slug,
		Status:        campaign.Status,
		Tiers:         pricingCtx.Tiers,
		Catalog:       pricingCtx.Catalog,
		CatalogSource: pricingCtx.CatalogSource,
		CreatedAt:     campaign.CreatedAt,
	}, nil
}

// LoadPricingContext loads the tier ladder and catalog for one campaign by
// id. Order pricing and submission run through this.
func (s *service) LoadPricingContext(ctx context.Context, campaignID uuid.UUID) (*PricingContext, error) {
	if campaignID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "campaign id required")
	}
	campaign, err := s.repo.FindByID(ctx, campaignID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "campaign not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load campaign")
	}
	return s.loadPricingParts(ctx, campaign)
}

func (s *service) loadPricingParts(ctx context.Context, campaign *models.Campaign) (*PricingContext, error) {
	result := &PricingContext{
		CampaignID:    campaign.ID,
		Status:        campaign.Status,
		CatalogSource: CatalogSourceCampaign,
	}

	packages, err := s.repo.FindPackages(ctx, campaign.ID)
	if err != nil {
		if !dbpkg.IsMissingTable(err) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load campaign tiers")
		}
		packages = nil
	}
	result.Tiers = TiersFromPackages(packages)

	products, err := s.repo.FindProducts(ctx, campaign.ID)
	if err != nil {
		if !dbpkg.IsMissingTable(err) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load campaign products")
		}
		// Fresh environments may not have the products table yet; the
		// built-in catalog keeps the campaign page working.
		products = nil
	}
	if len(products) == 0 {
		result.Catalog = DefaultCatalog()
		result.CatalogSource = CatalogSourceDefault
		return result, nil
	}

	result.Catalog = make([]pricing.CatalogEntry, 0, len(products))
	for _, product := range products {
		result.Catalog = append(result.Catalog, pricing.CatalogEntry{
			ID:        product.ID,
			Name:      product.Name,
			UnitPrice: product.BasePrice,
		})
	}
	return result, nil
}

func (s *service) End(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "campaign id required")
	}

	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		campaign, err := repo.FindByID(ctx, id)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "campaign not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load campaign")
		}
		if campaign.Status == enums.CampaignStatusEnded {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "campaign already ended")
		}

		if err := repo.UpdateStatus(ctx, id, string(enums.CampaignStatusEnded)); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "end campaign")
		}

		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventCampaignEnded,
			AggregateType: enums.AggregateCampaign,
			AggregateID:   campaign.ID,
			Data: payloads.CampaignEnded{
				CampaignID: campaign.ID,
				Slug:       campaign.Slug,
			},
		})
	})
}

func (s *service) List(ctx context.Context, params pagination.Params) (*CampaignList, error) {
	list, err := s.repo.ListCampaigns(ctx, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list campaigns")
	}
	return list, nil
}

func (s *service) Customers(ctx context.Context, campaignID uuid.UUID, params pagination.Params) (*CustomerList, error) {
	if campaignID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "campaign id required")
	}
	list, err := s.repo.ListCustomers(ctx, campaignID, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list campaign customers")
	}
	return list, nil
}

// normalizeTiers drops invalid tier rows instead of failing the request: the
// admin screen submits the whole grid and half-filled rows are routine.
// Valid rows are sorted ascending by threshold.
func normalizeTiers(inputs []TierInput) []models.CampaignPackage {
	packages := make([]models.CampaignPackage, 0, len(inputs))
	for _, input := range inputs {
		title := strings.TrimSpace(input.Title)
		if title == "" || input.MinQty <= 0 {
			continue
		}
		if !validPercent(input.DiscountPercent) {
			continue
		}
		if input.CashDiscountPercent != nil && !validPercent(*input.CashDiscountPercent) {
			continue
		}
		if input.CheckDiscountPercent != nil && !validPercent(*input.CheckDiscountPercent) {
			continue
		}
		packages = append(packages, models.CampaignPackage{
			Title:                title,
			MinQty:               input.MinQty,
			DiscountPercent:      input.DiscountPercent,
			CashDiscountPercent:  input.CashDiscountPercent,
			CheckDiscountPercent: input.CheckDiscountPercent,
		})
	}
	sort.SliceStable(packages, func(i, j int) bool {
		return packages[i].MinQty < packages[j].MinQty
	})
	return packages
}

func validPercent(v float64) bool {
	return v >= 0 && v <= 100
}

// TiersFromPackages converts stored rows into the pricing ladder. A missing
// method-specific rate falls back to the single legacy rate, so old
// campaigns keep pricing identically for both methods.
func TiersFromPackages(packages []models.CampaignPackage) []pricing.Tier {
	tiers := make([]pricing.Tier, 0, len(packages))
	for _, pkg := range packages {
		tier := pricing.Tier{
			Title:                pkg.Title,
			MinQty:               pkg.MinQty,
			CashDiscountPercent:  pkg.DiscountPercent,
			CheckDiscountPercent: pkg.DiscountPercent,
		}
		if pkg.CashDiscountPercent != nil {
			tier.CashDiscountPercent = *pkg.CashDiscountPercent
		}
		if pkg.CheckDiscountPercent != nil {
			tier.CheckDiscountPercent = *pkg.CheckDiscountPercent
		}
		tiers = append(tiers, tier)
	}
	return tiers
}
