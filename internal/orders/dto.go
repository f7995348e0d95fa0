package orders

import (
	"time"

	"github.com/google/uuid"

	"github.com/pooladgaran/campane-backend/internal/pricing"
	"github.com/pooladgaran/campane-backend/pkg/enums"
)

// CreateInput registers a buyer inside a campaign. InitialQuantities is
// optional: when present the first item sync runs right after the order row
// is created.
type CreateInput struct {
	CampaignID        uuid.UUID         `json:"campaign_id" validate:"required"`
	UserName          string            `json:"user_name" validate:"required,min=2"`
	Phone             string            `json:"phone" validate:"required,irmobile"`
	InitialQuantities map[uuid.UUID]int `json:"initial_quantities,omitempty"`
}

// CreateResult reports the new draft plus the synced items when initial
// quantities were supplied.
type CreateResult struct {
	OrderID       uuid.UUID       `json:"order_id"`
	Status        enums.OrderStatus `json:"status"`
	TotalQuantity int             `json:"total_quantity"`
	Summary       *pricing.Summary `json:"summary,omitempty"`
}

// SubmitInput finalizes a draft. PaymentType may stay empty only when the
// campaign's tiers carry a single rate.
type SubmitInput struct {
	OrderID     uuid.UUID         `json:"order_id" validate:"required"`
	PaymentType enums.PaymentType `json:"payment_type,omitempty"`
}

// View is the buyer-facing order snapshot: identity plus the current pricing
// picture over its persisted items.
type View struct {
	OrderID     uuid.UUID          `json:"order_id"`
	CampaignID  uuid.UUID          `json:"campaign_id"`
	UserName    string             `json:"user_name"`
	Phone       string             `json:"phone"`
	Status      enums.OrderStatus  `json:"status"`
	PaymentType *enums.PaymentType `json:"payment_type,omitempty"`
	Items       []ItemView         `json:"items"`
	Summary     pricing.Summary    `json:"summary"`
	CreatedAt   time.Time          `json:"created_at"`
}

// ItemView is one persisted line.
type ItemView struct {
	Product  string `json:"product"`
	Quantity int    `json:"quantity"`
}
