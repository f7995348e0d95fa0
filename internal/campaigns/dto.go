package campaigns

import (
	"time"

	"github.com/google/uuid"

	"github.com/pooladgaran/campane-backend/internal/pricing"
	"github.com/pooladgaran/campane-backend/pkg/enums"
)

// CatalogSource tells the client whether it is looking at the campaign's own
// products or the built-in fallback set.
type CatalogSource string

const (
	CatalogSourceCampaign CatalogSource = "campaign"
	CatalogSourceDefault  CatalogSource = "default"
)

// TierInput is the raw tier shape accepted from admins. Entries that fail
// validation are dropped silently during normalization rather than rejecting
// the whole campaign.
type TierInput struct {
	Title                string   `json:"title"`
	MinQty               int      `json:"min_qty"`
	DiscountPercent      float64  `json:"discount_percent"`
	CashDiscountPercent  *float64 `json:"cash_discount_percent,omitempty"`
	CheckDiscountPercent *float64 `json:"check_discount_percent,omitempty"`
}

// ProductInput is a catalog entry accepted at campaign creation.
type ProductInput struct {
	Name      string `json:"name" validate:"required"`
	BasePrice int64  `json:"base_price" validate:"gte=0"`
}

// CreateInput carries everything needed to open a campaign.
type CreateInput struct {
	Name     string         `json:"name" validate:"required,min=2"`
	Products []ProductInput `json:"products" validate:"dive"`
	Tiers    []TierInput    `json:"tiers" validate:"dive"`
}

// Detail is the buyer-facing campaign view: identity plus the tier ladder and
// catalog the pricing engine runs against.
type Detail struct {
	ID            uuid.UUID              `json:"id"`
	Name          string                 `json:"name"`
	Slug          string                 `json:"slug"`
	Status        enums.CampaignStatus   `json:"status"`
	Tiers         []pricing.Tier         `json:"tiers"`
	Catalog       []pricing.CatalogEntry `json:"catalog"`
	CatalogSource CatalogSource          `json:"catalog_source"`
	CreatedAt     time.Time              `json:"created_at"`
}

// Summary is the admin listing row.
type Summary struct {
	ID        uuid.UUID            `json:"id"`
	Name      string               `json:"name"`
	Slug      string               `json:"slug"`
	Status    enums.CampaignStatus `json:"status"`
	CreatedAt time.Time            `json:"created_at"`
}

// CampaignList is one page of campaigns plus the cursor for the next.
type CampaignList struct {
	Items      []Summary `json:"items"`
	NextCursor string    `json:"next_cursor,omitempty"`
}

// CustomerRow is one buyer's order as seen on the admin customers screen.
type CustomerRow struct {
	OrderID       uuid.UUID          `json:"order_id"`
	UserName      string             `json:"user_name"`
	Phone         string             `json:"phone"`
	Status        enums.OrderStatus  `json:"status"`
	PaymentType   *enums.PaymentType `json:"payment_type,omitempty"`
	TotalQuantity int                `json:"total_quantity"`
	CreatedAt     time.Time          `json:"created_at"`
}

// CustomerList is one page of customer rows plus the cursor for the next.
type CustomerList struct {
	Items      []CustomerRow `json:"items"`
	NextCursor string        `json:"next_cursor,omitempty"`
}
