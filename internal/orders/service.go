package orders

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pooladgaran/campane-backend/internal/campaigns"
	"github.com/pooladgaran/campane-backend/internal/items"
	"github.com/pooladgaran/campane-backend/internal/pricing"
	dbpkg "github.com/pooladgaran/campane-backend/pkg/db"
	"github.com/pooladgaran/campane-backend/pkg/db/models"
	"github.com/pooladgaran/campane-backend/pkg/enums"
	pkgerrors "github.com/pooladgaran/campane-backend/pkg/errors"
	"github.com/pooladgaran/campane-backend/pkg/logger"
	"github.com/pooladgaran/campane-backend/pkg/outbox"
	"github.com/pooladgaran/campane-backend/pkg/outbox/payloads"
)

// PhonePattern is the local mobile format: 11 digits starting 09.
var PhonePattern = regexp.MustCompile(`^09\d{9}$`)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

type campaignLoader interface {
	LoadPricingContext(ctx context.Context, campaignID uuid.UUID) (*campaigns.PricingContext, error)
}

type itemReader interface {
	ListByOrder(ctx context.Context, orderID uuid.UUID) ([]models.OrderItem, error)
}

// Service governs the order lifecycle: draft creation, pricing reads, and
// the one-way transition to submitted.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*CreateResult, error)
	Get(ctx context.Context, orderID uuid.UUID) (*View, error)
	Submit(ctx context.Context, input SubmitInput) (*View, error)
	Quote(ctx context.Context, campaignID uuid.UUID, quantities map[uuid.UUID]int, method enums.PaymentType) (*pricing.Summary, error)
	ReplaceItems(ctx context.Context, orderID uuid.UUID, quantities map[uuid.UUID]int, trigger string) (*View, error)
	Quantities(ctx context.Context, orderID uuid.UUID) (map[uuid.UUID]int, error)
}

type service struct {
	repo      Repository
	tx        txRunner
	outbox    outboxPublisher
	campaigns campaignLoader
	sync      items.Synchronizer
	items     itemReader
	logg      *logger.Logger
}

// NewService builds an orders service with the required dependencies.
func NewService(repo Repository, tx txRunner, outbox outboxPublisher, campaignSvc campaignLoader, sync items.Synchronizer, itemRepo itemReader, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if outbox == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	if campaignSvc == nil {
		return nil, fmt.Errorf("campaign loader required")
	}
	if sync == nil {
		return nil, fmt.Errorf("item synchronizer required")
	}
	if itemRepo == nil {
		return nil, fmt.Errorf("item reader required")
	}
	return &service{
		repo:      repo,
		tx:        tx,
		outbox:    outbox,
		campaigns: campaignSvc,
		sync:      sync,
		items:     itemRepo,
		logg:      logg,
	}, nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (*CreateResult, error) {
	name := strings.TrimSpace(input.UserName)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "buyer name required")
	}
	if !PhonePattern.MatchString(strings.TrimSpace(input.Phone)) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "phone must be 11 digits starting 09")
	}

	pricingCtx, err := s.campaigns.LoadPricingContext(ctx, input.CampaignID)
	if err != nil {
		return nil, err
	}
	if pricingCtx.Status != enums.CampaignStatusActive {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "campaign is not accepting orders")
	}

	order := &models.Order{
		CampaignID: input.CampaignID,
		UserName:   name,
		Phone:      strings.TrimSpace(input.Phone),
		Status:     enums.OrderStatusDraft,
	}
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if _, err := s.repo.WithTx(tx).CreateOrder(ctx, order); err != nil {
			return pkgerrors.WrapStep(pkgerrors.CodeDependency, err, "order insert")
		}
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventOrderCreated,
			AggregateType: enums.AggregateOrder,
			AggregateID:   order.ID,
			Data: payloads.OrderCreated{
				OrderID:    order.ID,
				CampaignID: order.CampaignID,
				BuyerName:  order.UserName,
			},
		})
	})
	if err != nil {
		return nil, err
	}

	result := &CreateResult{OrderID: order.ID, Status: order.Status}
	if len(input.InitialQuantities) == 0 {
		return result, nil
	}

	// The order row exists and committed; a failed first sync must hand the
	// caller the order id so they can retry instead of registering twice.
	syncResult, err := s.sync.Sync(ctx, items.SyncInput{
		OrderID:    order.ID,
		Quantities: input.InitialQuantities,
		Catalog:    pricingCtx.Catalog,
		Trigger:    "create",
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodePartialFailure, err, "order created but items not persisted").
			WithDetails(map[string]any{"order_id": order.ID.String()})
	}

	result.TotalQuantity = syncResult.TotalQuantity
	summary := pricing.Price(input.InitialQuantities, pricingCtx.Catalog, pricingCtx.Tiers, "")
	result.Summary = &summary
	return result, nil
}

func (s *service) Get(ctx context.Context, orderID uuid.UUID) (*View, error) {
	order, pricingCtx, rows, err := s.loadOrderParts(ctx, orderID)
	if err != nil {
		return nil, err
	}

	method := enums.PaymentType("")
	if order.PaymentType != nil {
		method = *order.PaymentType
	}
	return buildView(order, pricingCtx, rows, method), nil
}

func (s *service) Submit(ctx context.Context, input SubmitInput) (*View, error) {
	order, pricingCtx, rows, err := s.loadOrderParts(ctx, input.OrderID)
	if err != nil {
		return nil, err
	}

	if order.Status != enums.OrderStatusDraft {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "order already submitted")
	}
	if pricingCtx.Status != enums.CampaignStatusActive {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "campaign is not accepting orders")
	}

	quantities := quantityMapFromRows(rows, pricingCtx.Catalog)
	totalQuantity := 0
	for _, qty := range quantities {
		totalQuantity += qty
	}
	if totalQuantity < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "order has no items")
	}
	if minQty := pricing.MinThreshold(pricingCtx.Tiers); minQty > 0 && totalQuantity < minQty {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "order quantity below the minimum tier").
			WithDetails(map[string]any{
				"total_quantity": totalQuantity,
				"min_quantity":   minQty,
			})
	}

	method := input.PaymentType
	if method == "" && !pricing.HasDualRates(pricingCtx.Tiers) {
		// Single-rate campaigns price identically either way.
		method = enums.PaymentTypeCash
	}
	if !method.IsValid() {
		if pricing.HasDualRates(pricingCtx.Tiers) {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "settlement method required before submission")
		}
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid settlement method")
	}

	// The chosen method's rate, not the preview rate, becomes the recorded
	// discount.
	summary := pricing.Price(quantities, pricingCtx.Catalog, pricingCtx.Tiers, method)

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.WithTx(tx).MarkSubmitted(ctx, order.ID, method); err != nil {
			if errors.Is(err, ErrNotDraft) {
				// A concurrent submit won between our status read and the
				// guarded update.
				return pkgerrors.New(pkgerrors.CodeStateConflict, "order already submitted")
			}
			return pkgerrors.WrapStep(pkgerrors.CodeDependency, err, "order submit")
		}
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventOrderSubmitted,
			AggregateType: enums.AggregateOrder,
			AggregateID:   order.ID,
			Data: payloads.OrderSubmitted{
				OrderID:       order.ID,
				CampaignID:    order.CampaignID,
				TotalQuantity: summary.TotalQuantity,
				PayableAmount: summary.PayableAmount,
				PaymentType:   method,
			},
		})
	})
	if err != nil {
		return nil, err
	}

	order.Status = enums.OrderStatusSubmitted
	order.PaymentType = &method
	if s.logg != nil {
		logCtx := s.logg.WithOrderID(ctx, order.ID.String())
		logCtx = s.logg.WithCampaignID(logCtx, order.CampaignID.String())
		s.logg.Info(logCtx, "order submitted")
	}
	return buildView(order, pricingCtx, rows, method), nil
}

func (s *service) Quote(ctx context.Context, campaignID uuid.UUID, quantities map[uuid.UUID]int, method enums.PaymentType) (*pricing.Summary, error) {
	if method != "" && !method.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid settlement method")
	}
	pricingCtx, err := s.campaigns.LoadPricingContext(ctx, campaignID)
	if err != nil {
		return nil, err
	}
	summary := pricing.Price(quantities, pricingCtx.Catalog, pricingCtx.Tiers, method)
	return &summary, nil
}

// ReplaceItems runs one full-replace sync with the order's current campaign
// catalog and returns the refreshed view. The synchronizer enforces the
// draft-only rule inside its transaction.
func (s *service) ReplaceItems(ctx context.Context, orderID uuid.UUID, quantities map[uuid.UUID]int, trigger string) (*View, error) {
	order, pricingCtx, _, err := s.loadOrderParts(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if pricingCtx.Status != enums.CampaignStatusActive {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "campaign is not accepting orders")
	}

	result, err := s.sync.Sync(ctx, items.SyncInput{
		OrderID:    orderID,
		Quantities: quantities,
		Catalog:    pricingCtx.Catalog,
		Trigger:    trigger,
	})
	if err != nil {
		return nil, err
	}
	return buildView(order, pricingCtx, result.Items, ""), nil
}

// Quantities rebuilds the order's desired-quantity map keyed by product id,
// for seeding an editing session.
func (s *service) Quantities(ctx context.Context, orderID uuid.UUID) (map[uuid.UUID]int, error) {
	_, pricingCtx, rows, err := s.loadOrderParts(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return quantityMapFromRows(rows, pricingCtx.Catalog), nil
}

func (s *service) loadOrderParts(ctx context.Context, orderID uuid.UUID) (*models.Order, *campaigns.PricingContext, []models.OrderItem, error) {
	if orderID == uuid.Nil {
		return nil, nil, nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil, nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, nil, nil, pkgerrors.WrapStep(pkgerrors.CodeDependency, err, "order lookup")
	}
	pricingCtx, err := s.campaigns.LoadPricingContext(ctx, order.CampaignID)
	if err != nil {
		return nil, nil, nil, err
	}
	rows, err := s.items.ListByOrder(ctx, orderID)
	if err != nil {
		return nil, nil, nil, pkgerrors.WrapStep(dbpkg.StorageCode(err), err, "item list")
	}
	return order, pricingCtx, rows, nil
}

// quantityMapFromRows rebuilds the product-id quantity map by matching the
// denormalized names against the current catalog. Rows whose product no
// longer exists in the catalog stay readable but price as zero.
func quantityMapFromRows(rows []models.OrderItem, catalog []pricing.CatalogEntry) map[uuid.UUID]int {
	byName := make(map[string]uuid.UUID, len(catalog))
	for _, entry := range catalog {
		byName[entry.Name] = entry.ID
	}
	quantities := make(map[uuid.UUID]int, len(rows))
	for _, row := range rows {
		if id, ok := byName[row.Product]; ok {
			quantities[id] += row.Quantity
		}
	}
	return quantities
}

func buildView(order *models.Order, pricingCtx *campaigns.PricingContext, rows []models.OrderItem, method enums.PaymentType) *View {
	view := &View{
		OrderID:     order.ID,
		CampaignID:  order.CampaignID,
		UserName:    order.UserName,
		Phone:       order.Phone,
		Status:      order.Status,
		PaymentType: order.PaymentType,
		Items:       make([]ItemView, 0, len(rows)),
		Summary:     pricing.Price(quantityMapFromRows(rows, pricingCtx.Catalog), pricingCtx.Catalog, pricingCtx.Tiers, method),
		CreatedAt:   order.CreatedAt,
	}
	for _, row := range rows {
		view.Items = append(view.Items, ItemView{Product: row.Product, Quantity: row.Quantity})
	}
	return view
}
