package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/pooladgaran/campane-backend/api/responses"
	"github.com/pooladgaran/campane-backend/api/validators"
	"github.com/pooladgaran/campane-backend/internal/orders"
	"github.com/pooladgaran/campane-backend/pkg/enums"
	pkgerrors "github.com/pooladgaran/campane-backend/pkg/errors"
	"github.com/pooladgaran/campane-backend/pkg/logger"
)

type quoteRequest struct {
	CampaignID  uuid.UUID         `json:"campaign_id" validate:"required"`
	Quantities  map[uuid.UUID]int `json:"quantities" validate:"required"`
	PaymentType enums.PaymentType `json:"payment_type,omitempty"`
}

// QuotePreview prices a desired-quantity map without touching any order.
// The client calls this on every keystroke.
func QuotePreview(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "order service unavailable"))
			return
		}

		var body quoteRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		summary, err := svc.Quote(r.Context(), body.CampaignID, body.Quantities, body.PaymentType)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, summary)
	}
}
