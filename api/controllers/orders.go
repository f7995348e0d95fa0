package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/pooladgaran/campane-backend/api/responses"
	"github.com/pooladgaran/campane-backend/api/validators"
	"github.com/pooladgaran/campane-backend/internal/orders"
	"github.com/pooladgaran/campane-backend/pkg/enums"
	pkgerrors "github.com/pooladgaran/campane-backend/pkg/errors"
	"github.com/pooladgaran/campane-backend/pkg/logger"
)

// OrderCreate registers a buyer in a campaign, optionally with a first batch
// of items.
func OrderCreate(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "order service unavailable"))
			return
		}

		var input orders.CreateInput
		if err := validators.DecodeJSONBody(r, &input); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Create(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}

// OrderGet returns the order with its items and current pricing.
func OrderGet(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "order service unavailable"))
			return
		}

		orderID, err := validators.ParseUUIDPath(chi.URLParam(r, "orderID"), "orderID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		view, err := svc.Get(r.Context(), orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}

// itemsReplaceRequest carries the complete desired map. An empty map is
// legal and clears the order.
type itemsReplaceRequest struct {
	Quantities map[uuid.UUID]int `json:"quantities"`
}

// OrderItemsReplace swaps the order's whole item set for the submitted map.
func OrderItemsReplace(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "order service unavailable"))
			return
		}

		orderID, err := validators.ParseUUIDPath(chi.URLParam(r, "orderID"), "orderID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body itemsReplaceRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		view, err := svc.ReplaceItems(r.Context(), orderID, body.Quantities, "replace")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}

type itemEditRequest struct {
	Quantity int `json:"quantity" validate:"gte=0"`
}

// OrderItemEdit records one product quantity change in the order's editing
// session. The persisted sync runs debounced once edits go quiet, so this
// returns the session snapshot rather than the stored rows.
func OrderItemEdit(editor *orders.EditCoordinator, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if editor == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "item editor unavailable"))
			return
		}

		orderID, err := validators.ParseUUIDPath(chi.URLParam(r, "orderID"), "orderID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		productID, err := validators.ParseUUIDPath(chi.URLParam(r, "productID"), "productID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body itemEditRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		snapshot, err := editor.SetQuantity(r.Context(), orderID, productID, body.Quantity)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"quantities": snapshot})
	}
}

type orderSubmitRequest struct {
	PaymentType enums.PaymentType `json:"payment_type,omitempty"`
}

// OrderSubmit finalizes the draft with the chosen settlement method.
func OrderSubmit(svc orders.Service, editor *orders.EditCoordinator, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "order service unavailable"))
			return
		}

		orderID, err := validators.ParseUUIDPath(chi.URLParam(r, "orderID"), "orderID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body orderSubmitRequest
		if r.ContentLength > 0 {
			if err := validators.DecodeJSONBody(r, &body); err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
		}

		view, err := svc.Submit(r.Context(), orders.SubmitInput{
			OrderID:     orderID,
			PaymentType: body.PaymentType,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if editor != nil {
			editor.Close(orderID)
		}
		responses.WriteSuccess(w, view)
	}
}
