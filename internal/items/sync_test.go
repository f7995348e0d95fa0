package items

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/pooladgaran/campane-backend/internal/pricing"
	"github.com/pooladgaran/campane-backend/pkg/db/models"
	"github.com/pooladgaran/campane-backend/pkg/enums"
	pkgerrors "github.com/pooladgaran/campane-backend/pkg/errors"
	"github.com/pooladgaran/campane-backend/pkg/outbox"
)

var (
	productPress = pricing.CatalogEntry{ID: uuid.New(), Name: "Press 20T", UnitPrice: 50_000}
	productLathe = pricing.CatalogEntry{ID: uuid.New(), Name: "Lathe 1.5m", UnitPrice: 250_000}
)

func testCatalog() []pricing.CatalogEntry {
	return []pricing.CatalogEntry{productPress, productLathe}
}

func setupItemsTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	statements := []string{
		`CREATE TABLE IF NOT EXISTS orders (
  id TEXT PRIMARY KEY,
  campaign_id TEXT NOT NULL,
  user_name TEXT NOT NULL,
  phone TEXT NOT NULL,
  status TEXT NOT NULL DEFAULT 'draft',
  payment_type TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`,
		`CREATE TABLE IF NOT EXISTS order_items (
  id TEXT PRIMARY KEY,
  order_id TEXT NOT NULL,
  product TEXT NOT NULL,
  quantity INTEGER NOT NULL,
  created_at DATETIME
);`,
	}
	for _, stmt := range statements {
		require.NoError(t, db.Exec(stmt).Error)
	}
	return db
}

type testTxRunner struct {
	db *gorm.DB
}

func (r testTxRunner) WithTx(_ context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.Transaction(fn)
}

type testOrderFinder struct {
	db *gorm.DB
}

func (f testOrderFinder) FindOrder(ctx context.Context, tx *gorm.DB, orderID uuid.UUID) (*models.Order, error) {
	db := f.db
	if tx != nil {
		db = tx
	}
	var order models.Order
	if err := db.WithContext(ctx).Where("id = ?", orderID).First(&order).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

type recordingOutbox struct {
	events []outbox.DomainEvent
}

func (r *recordingOutbox) Emit(_ context.Context, _ *gorm.DB, event outbox.DomainEvent) error {
	r.events = append(r.events, event)
	return nil
}

func seedOrder(t *testing.T, db *gorm.DB, status enums.OrderStatus) *models.Order {
	t.Helper()
	order := &models.Order{
		ID:         uuid.New(),
		CampaignID: uuid.New(),
		UserName:   "Reza",
		Phone:      "09123456789",
		Status:     status,
		CreatedAt:  time.Now(),
	}
	require.NoError(t, db.Create(order).Error)
	return order
}

func newTestSynchronizer(t *testing.T, db *gorm.DB) (Synchronizer, Repository, *recordingOutbox) {
	t.Helper()
	repo := NewRepository(db)
	ob := &recordingOutbox{}
	sync, err := NewSynchronizer(repo, testOrderFinder{db: db}, testTxRunner{db: db}, ob, nil, nil)
	require.NoError(t, err)
	return sync, repo, ob
}

func quantitiesByProduct(t *testing.T, repo Repository, orderID uuid.UUID) map[string]int {
	t.Helper()
	quantities, err := repo.QuantityMap(context.Background(), orderID)
	require.NoError(t, err)
	return quantities
}

func TestSyncPersistsPositiveQuantitiesOnly(t *testing.T) {
	db := setupItemsTestDB(t)
	sync, repo, _ := newTestSynchronizer(t, db)
	order := seedOrder(t, db, enums.OrderStatusDraft)

	// M = {press: 6, lathe: 0} keeps only the press row.
	result, err := sync.Sync(context.Background(), SyncInput{
		OrderID: order.ID,
		Quantities: map[uuid.UUID]int{
			productPress.ID: 6,
			productLathe.ID: 0,
		},
		Catalog: testCatalog(),
	})
	require.NoError(t, err)
	assert.Equal(t, 6, result.TotalQuantity)

	quantities := quantitiesByProduct(t, repo, order.ID)
	assert.Equal(t, map[string]int{"Press 20T": 6}, quantities)
}

func TestSyncIsIdempotent(t *testing.T) {
	db := setupItemsTestDB(t)
	sync, repo, _ := newTestSynchronizer(t, db)
	order := seedOrder(t, db, enums.OrderStatusDraft)

	input := SyncInput{
		OrderID: order.ID,
		Quantities: map[uuid.UUID]int{
			productPress.ID: 10,
			productLathe.ID: 2,
		},
		Catalog: testCatalog(),
	}

	_, err := sync.Sync(context.Background(), input)
	require.NoError(t, err)
	first := quantitiesByProduct(t, repo, order.ID)

	_, err = sync.Sync(context.Background(), input)
	require.NoError(t, err)
	second := quantitiesByProduct(t, repo, order.ID)

	assert.Equal(t, first, second)

	rows, err := repo.ListByOrder(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Len(t, rows, 2, "no duplicate rows after rerun")
}

func TestSyncRoundTripReproducesDesiredMap(t *testing.T) {
	db := setupItemsTestDB(t)
	sync, repo, _ := newTestSynchronizer(t, db)
	order := seedOrder(t, db, enums.OrderStatusDraft)

	desired := map[uuid.UUID]int{
		productPress.ID: 3,
		productLathe.ID: 7,
	}
	_, err := sync.Sync(context.Background(), SyncInput{
		OrderID:    order.ID,
		Quantities: desired,
		Catalog:    testCatalog(),
	})
	require.NoError(t, err)

	quantities := quantitiesByProduct(t, repo, order.ID)
	assert.Equal(t, map[string]int{
		"Press 20T":  3,
		"Lathe 1.5m": 7,
	}, quantities)
}

func TestSyncFullReplaceDropsStaleRows(t *testing.T) {
	db := setupItemsTestDB(t)
	sync, repo, _ := newTestSynchronizer(t, db)
	order := seedOrder(t, db, enums.OrderStatusDraft)

	_, err := sync.Sync(context.Background(), SyncInput{
		OrderID:    order.ID,
		Quantities: map[uuid.UUID]int{productPress.ID: 5, productLathe.ID: 1},
		Catalog:    testCatalog(),
	})
	require.NoError(t, err)

	_, err = sync.Sync(context.Background(), SyncInput{
		OrderID:    order.ID,
		Quantities: map[uuid.UUID]int{productLathe.ID: 4},
		Catalog:    testCatalog(),
	})
	require.NoError(t, err)

	quantities := quantitiesByProduct(t, repo, order.ID)
	assert.Equal(t, map[string]int{"Lathe 1.5m": 4}, quantities)
}

func TestSyncEmptyMapClearsOrder(t *testing.T) {
	db := setupItemsTestDB(t)
	sync, repo, _ := newTestSynchronizer(t, db)
	order := seedOrder(t, db, enums.OrderStatusDraft)

	_, err := sync.Sync(context.Background(), SyncInput{
		OrderID:    order.ID,
		Quantities: map[uuid.UUID]int{productPress.ID: 5},
		Catalog:    testCatalog(),
	})
	require.NoError(t, err)

	result, err := sync.Sync(context.Background(), SyncInput{
		OrderID:    order.ID,
		Quantities: map[uuid.UUID]int{},
		Catalog:    testCatalog(),
	})
	require.NoError(t, err)
	assert.Equal(t, 0, result.TotalQuantity)

	rows, err := repo.ListByOrder(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestSyncUnknownOrderIsNotFound(t *testing.T) {
	db := setupItemsTestDB(t)
	sync, _, _ := newTestSynchronizer(t, db)

	_, err := sync.Sync(context.Background(), SyncInput{
		OrderID:    uuid.New(),
		Quantities: map[uuid.UUID]int{productPress.ID: 1},
		Catalog:    testCatalog(),
	})
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestSyncSubmittedOrderIsStateConflict(t *testing.T) {
	db := setupItemsTestDB(t)
	sync, repo, _ := newTestSynchronizer(t, db)
	order := seedOrder(t, db, enums.OrderStatusSubmitted)

	_, err := sync.Sync(context.Background(), SyncInput{
		OrderID:    order.ID,
		Quantities: map[uuid.UUID]int{productPress.ID: 1},
		Catalog:    testCatalog(),
	})
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeStateConflict))

	rows, err := repo.ListByOrder(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestSyncEmitsDeleteAndInsertEvents(t *testing.T) {
	db := setupItemsTestDB(t)
	sync, _, ob := newTestSynchronizer(t, db)
	order := seedOrder(t, db, enums.OrderStatusDraft)

	_, err := sync.Sync(context.Background(), SyncInput{
		OrderID:    order.ID,
		Quantities: map[uuid.UUID]int{productPress.ID: 2},
		Catalog:    testCatalog(),
	})
	require.NoError(t, err)

	require.Len(t, ob.events, 2)
	types := []enums.OutboxEventType{ob.events[0].EventType, ob.events[1].EventType}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
	assert.Equal(t, []enums.OutboxEventType{enums.EventOrderItemsDeleted, enums.EventOrderItemsInserted}, types)
	assert.Equal(t, order.ID, ob.events[0].AggregateID)
}

func TestRepoCampaignTotalJoinsThroughOrders(t *testing.T) {
	db := setupItemsTestDB(t)
	repo := NewRepository(db)

	campaignID := uuid.New()
	otherCampaign := uuid.New()

	orderA := &models.Order{ID: uuid.New(), CampaignID: campaignID, UserName: "A", Phone: "09120000001", Status: enums.OrderStatusDraft}
	orderB := &models.Order{ID: uuid.New(), CampaignID: campaignID, UserName: "B", Phone: "09120000002", Status: enums.OrderStatusDraft}
	orderC := &models.Order{ID: uuid.New(), CampaignID: otherCampaign, UserName: "C", Phone: "09120000003", Status: enums.OrderStatusDraft}
	for _, order := range []*models.Order{orderA, orderB, orderC} {
		require.NoError(t, db.Create(order).Error)
	}

	for _, item := range []models.OrderItem{
		{ID: uuid.New(), OrderID: orderA.ID, Product: "Press 20T", Quantity: 10},
		{ID: uuid.New(), OrderID: orderB.ID, Product: "Lathe 1.5m", Quantity: 5},
		{ID: uuid.New(), OrderID: orderC.ID, Product: "Press 20T", Quantity: 99},
	} {
		require.NoError(t, db.Create(&item).Error)
	}

	total, err := repo.CampaignTotal(context.Background(), campaignID)
	require.NoError(t, err)
	assert.Equal(t, 15, total)

	empty, err := repo.CampaignTotal(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Equal(t, 0, empty)
}
