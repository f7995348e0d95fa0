package controllers

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/pooladgaran/campane-backend/api/responses"
	"github.com/pooladgaran/campane-backend/api/validators"
	"github.com/pooladgaran/campane-backend/internal/feed"
	pkgerrors "github.com/pooladgaran/campane-backend/pkg/errors"
	"github.com/pooladgaran/campane-backend/pkg/logger"
)

// TotalReader serves the point-in-time board number.
type TotalReader interface {
	CampaignTotal(ctx context.Context, campaignID uuid.UUID) (int, error)
}

// BoardSubscriber is the live-feed surface the SSE endpoint consumes.
type BoardSubscriber interface {
	Subscribe(ctx context.Context, campaignID uuid.UUID, onTotal feed.OnTotal) (func(), error)
}

// BoardSnapshot returns the campaign's current aggregate quantity.
func BoardSnapshot(totals TotalReader, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if totals == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "board unavailable"))
			return
		}

		campaignID, err := validators.ParseUUIDPath(chi.URLParam(r, "campaignID"), "campaignID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		total, err := totals.CampaignTotal(r.Context(), campaignID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.WrapStep(pkgerrors.CodeDependency, err, "campaign total"))
			return
		}
		responses.WriteSuccess(w, map[string]any{
			"campaign_id": campaignID,
			"total":       total,
		})
	}
}

// BoardStream pushes live totals over server-sent events until the client
// disconnects.
func BoardStream(board BoardSubscriber, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if board == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "board feed unavailable"))
			return
		}

		campaignID, err := validators.ParseUUIDPath(chi.URLParam(r, "campaignID"), "campaignID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		flusher, ok := w.(http.Flusher)
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "streaming unsupported"))
			return
		}

		// Totals funnel through a channel so only the request goroutine
		// writes to the ResponseWriter.
		totals := make(chan int, 16)
		unsubscribe, err := board.Subscribe(r.Context(), campaignID, func(total int) {
			select {
			case totals <- total:
			default:
			}
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		defer unsubscribe()

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		w.WriteHeader(http.StatusOK)
		flusher.Flush()

		for {
			select {
			case <-r.Context().Done():
				return
			case total := <-totals:
				fmt.Fprintf(w, "event: total\ndata: {\"campaign_id\":%q,\"total\":%d}\n\n", campaignID, total)
				flusher.Flush()
			}
		}
	}
}
