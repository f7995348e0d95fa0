package items

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pooladgaran/campane-backend/internal/pricing"
	dbpkg "github.com/pooladgaran/campane-backend/pkg/db"
	"github.com/pooladgaran/campane-backend/pkg/db/models"
	"github.com/pooladgaran/campane-backend/pkg/enums"
	pkgerrors "github.com/pooladgaran/campane-backend/pkg/errors"
	"github.com/pooladgaran/campane-backend/pkg/logger"
	"github.com/pooladgaran/campane-backend/pkg/metrics"
	"github.com/pooladgaran/campane-backend/pkg/outbox"
	"github.com/pooladgaran/campane-backend/pkg/outbox/payloads"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// orderFinder is the slice of the orders repository the synchronizer needs.
type orderFinder interface {
	FindOrder(ctx context.Context, tx *gorm.DB, orderID uuid.UUID) (*models.Order, error)
}

// SyncInput is one full-replace reconciliation request. Quantities is the
// client's complete desired map, not a delta.
type SyncInput struct {
	OrderID    uuid.UUID
	Quantities map[uuid.UUID]int
	Catalog    []pricing.CatalogEntry
	Trigger    string
}

// SyncResult reports what the order's item set looks like after the replace.
type SyncResult struct {
	Items         []models.OrderItem
	TotalQuantity int
}

// Synchronizer reconciles desired quantities against persisted line items.
type Synchronizer interface {
	Sync(ctx context.Context, input SyncInput) (*SyncResult, error)
}

type synchronizer struct {
	repo   Repository
	orders orderFinder
	tx     txRunner
	outbox outboxPublisher
	stats  *metrics.SyncMetrics
	logg   *logger.Logger
	arena  *lockArena
}

// NewSynchronizer builds the item synchronizer with the required dependencies.
func NewSynchronizer(repo Repository, orders orderFinder, tx txRunner, outbox outboxPublisher, stats *metrics.SyncMetrics, logg *logger.Logger) (Synchronizer, error) {
	if repo == nil {
		return nil, fmt.Errorf("items repository required")
	}
	if orders == nil {
		return nil, fmt.Errorf("order finder required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if outbox == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	return &synchronizer{
		repo:   repo,
		orders: orders,
		tx:     tx,
		outbox: outbox,
		stats:  stats,
		logg:   logg,
		arena:  newLockArena(),
	}, nil
}

// Sync replaces the order's whole item set with the desired map. Serialized
// per order through the lock arena, so a second call for the same order waits
// for the first delete/insert pair to commit instead of interleaving with it.
// Idempotent: the same desired map always converges on the same row set.
func (s *synchronizer) Sync(ctx context.Context, input SyncInput) (*SyncResult, error) {
	if input.OrderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}

	release := s.arena.acquire(input.OrderID)
	defer release()

	start := time.Now()
	rows := buildRows(input)

	result := &SyncResult{Items: rows}
	for _, row := range rows {
		result.TotalQuantity += row.Quantity
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		order, err := s.orders.FindOrder(ctx, tx, input.OrderID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
			}
			return pkgerrors.WrapStep(pkgerrors.CodeDependency, err, "order lookup")
		}
		if order.Status != enums.OrderStatusDraft {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "submitted orders cannot change items")
		}

		repo := s.repo.WithTx(tx)
		if err := repo.DeleteByOrder(ctx, input.OrderID); err != nil {
			return pkgerrors.WrapStep(dbpkg.StorageCode(err), err, "item delete")
		}
		if err := repo.InsertItems(ctx, rows); err != nil {
			return pkgerrors.WrapStep(dbpkg.StorageCode(err), err, "item insert")
		}

		// Both halves ride the same transaction as the row changes, so feed
		// consumers never observe a sync without its notification.
		if err := s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventOrderItemsDeleted,
			AggregateType: enums.AggregateOrderItem,
			AggregateID:   input.OrderID,
			Data: payloads.OrderItemsChanged{
				OrderID: input.OrderID,
			},
		}); err != nil {
			return pkgerrors.WrapStep(pkgerrors.CodeDependency, err, "item delete event")
		}
		return s.emitInserted(ctx, tx, input.OrderID, result)
	})
	if err != nil {
		s.stats.IncFailure(input.Trigger)
		s.stats.ObserveDuration("error", time.Since(start))
		return nil, err
	}

	s.stats.IncSuccess(input.Trigger)
	s.stats.ObserveDuration("ok", time.Since(start))
	if s.logg != nil {
		logCtx := s.logg.WithOrderID(ctx, input.OrderID.String())
		logCtx = s.logg.WithFields(logCtx, map[string]any{
			"item_count":     len(result.Items),
			"total_quantity": result.TotalQuantity,
			"trigger":        input.Trigger,
		})
		s.logg.Info(logCtx, "order items synchronized")
	}
	return result, nil
}

func (s *synchronizer) emitInserted(ctx context.Context, tx *gorm.DB, orderID uuid.UUID, result *SyncResult) error {
	err := s.outbox.Emit(ctx, tx, outbox.DomainEvent{
		EventType:     enums.EventOrderItemsInserted,
		AggregateType: enums.AggregateOrderItem,
		AggregateID:   orderID,
		Data: payloads.OrderItemsChanged{
			OrderID:       orderID,
			ItemCount:     len(result.Items),
			TotalQuantity: result.TotalQuantity,
		},
	})
	if err != nil {
		return pkgerrors.WrapStep(pkgerrors.CodeDependency, err, "item insert event")
	}
	return nil
}

// buildRows maps desired quantities onto catalog entries. Quantities below 1
// and ids not in the catalog are dropped; rows are ordered by catalog
// position so reruns produce an identical set.
func buildRows(input SyncInput) []models.OrderItem {
	rows := make([]models.OrderItem, 0, len(input.Quantities))
	seen := make(map[uuid.UUID]bool, len(input.Quantities))
	for _, entry := range input.Catalog {
		qty := input.Quantities[entry.ID]
		if qty <= 0 || seen[entry.ID] {
			continue
		}
		seen[entry.ID] = true
		rows = append(rows, models.OrderItem{
			ID:       uuid.New(),
			OrderID:  input.OrderID,
			Product:  entry.Name,
			Quantity: qty,
		})
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Product < rows[j].Product })
	return rows
}
