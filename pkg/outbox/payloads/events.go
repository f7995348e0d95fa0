// Package payloads defines the Data shapes carried inside outbox envelopes.
// Consumers (the board feed included) decode these, so field names are part
// of the event contract.
package payloads

import (
	"github.com/google/uuid"

	"github.com/pooladgaran/campane-backend/pkg/enums"
)

// OrderCreated is emitted when a buyer registers a draft order.
type OrderCreated struct {
	OrderID    uuid.UUID `json:"orderId"`
	CampaignID uuid.UUID `json:"campaignId"`
	BuyerName  string    `json:"buyerName"`
}

// OrderSubmitted is emitted when a draft order passes the submission gates.
type OrderSubmitted struct {
	OrderID       uuid.UUID         `json:"orderId"`
	CampaignID    uuid.UUID         `json:"campaignId"`
	TotalQuantity int               `json:"totalQuantity"`
	PayableAmount int64             `json:"payableAmount"`
	PaymentType   enums.PaymentType `json:"paymentType"`
}

// OrderItemsChanged is emitted for both the delete and the insert half of an
// item sync. CampaignID is intentionally absent: items reference only their
// order, and feed consumers resolve the campaign themselves.
type OrderItemsChanged struct {
	OrderID       uuid.UUID `json:"orderId"`
	ItemCount     int       `json:"itemCount"`
	TotalQuantity int       `json:"totalQuantity"`
}

// CampaignEnded is emitted when an admin closes a campaign.
type CampaignEnded struct {
	CampaignID uuid.UUID `json:"campaignId"`
	Slug       string    `json:"slug"`
}
