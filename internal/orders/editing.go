package orders

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/pooladgaran/campane-backend/internal/items"
	pkgerrors "github.com/pooladgaran/campane-backend/pkg/errors"
	"github.com/pooladgaran/campane-backend/pkg/logger"
)

// EditCoordinator backs the incremental item edit endpoint. Each order gets
// an Editor session seeded from its persisted rows; individual quantity
// changes update the session immediately and a debounced full-replace sync
// flushes the session to storage once the edits go quiet.
type EditCoordinator struct {
	svc      Service
	pool     *items.EditorPool
	debounce *items.Debouncer
	logg     *logger.Logger
}

// NewEditCoordinator builds the coordinator with the given quiet period.
func NewEditCoordinator(svc Service, debounce time.Duration, logg *logger.Logger) (*EditCoordinator, error) {
	if svc == nil {
		return nil, fmt.Errorf("orders service required")
	}
	if debounce <= 0 {
		debounce = 500 * time.Millisecond
	}
	return &EditCoordinator{
		svc:      svc,
		pool:     items.NewEditorPool(),
		debounce: items.NewDebouncer(debounce),
		logg:     logg,
	}, nil
}

// SetQuantity records one product edit. The first edit for an order loads
// the persisted quantities to open the session; edits racing that load wait
// for the seed instead of being applied to an empty map and wiped by it.
func (c *EditCoordinator) SetQuantity(ctx context.Context, orderID, productID uuid.UUID, qty int) (map[uuid.UUID]int, error) {
	if orderID == uuid.Nil || productID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id and product id required")
	}

	editor := c.pool.Get(orderID)
	err := editor.EnsureLoaded(func() (map[uuid.UUID]int, error) {
		return c.svc.Quantities(ctx, orderID)
	})
	if err != nil {
		return nil, err
	}

	if !editor.SetQuantity(productID, qty) {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "item session still loading")
	}

	c.debounce.Trigger(orderID, func() { c.flush(orderID) })
	return editor.Snapshot(), nil
}

// flush runs outside the request that scheduled it, so it carries its own
// context.
func (c *EditCoordinator) flush(orderID uuid.UUID) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	editor := c.pool.Get(orderID)
	if _, err := c.svc.ReplaceItems(ctx, orderID, editor.Snapshot(), "edit"); err != nil {
		if c.logg != nil {
			c.logg.Error(c.logg.WithOrderID(ctx, orderID.String()), "debounced item sync failed", err)
		}
	}
}

// Close flushes nothing and forgets the order's session, e.g. after the
// order is submitted.
func (c *EditCoordinator) Close(orderID uuid.UUID) {
	c.debounce.Cancel(orderID)
	c.pool.Drop(orderID)
}

// Stop cancels every pending flush. Used on shutdown.
func (c *EditCoordinator) Stop() {
	c.debounce.Stop()
}
