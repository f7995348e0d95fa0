package feed

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/pooladgaran/campane-backend/pkg/config"
	dbpkg "github.com/pooladgaran/campane-backend/pkg/db"
	"github.com/pooladgaran/campane-backend/pkg/enums"
	pkgerrors "github.com/pooladgaran/campane-backend/pkg/errors"
	"github.com/pooladgaran/campane-backend/pkg/logger"
	"github.com/pooladgaran/campane-backend/pkg/metrics"
)

// ChangeEvent is one domain-event notification relevant to the board.
type ChangeEvent struct {
	EventType     enums.OutboxEventType
	AggregateType enums.OutboxAggregateType
	AggregateID   uuid.UUID
}

// TotalSource recomputes a campaign's aggregate quantity from persisted rows.
// The feed never does incremental math off the event payload: every event
// triggers a fresh recompute so a missed or reordered event cannot leave the
// board stale.
type TotalSource interface {
	CampaignTotal(ctx context.Context, campaignID uuid.UUID) (int, error)
}

// CampaignResolver maps an order id to its campaign. Item-level events carry
// only the order id, so the feed resolves the campaign per event.
type CampaignResolver interface {
	ResolveCampaignOf(ctx context.Context, orderID uuid.UUID) (uuid.UUID, error)
}

// OnTotal receives the recomputed campaign total.
type OnTotal func(total int)

type subscription struct {
	campaignID uuid.UUID
	totals     chan int
	done       chan struct{}
	closeOnce  sync.Once
}

func (s *subscription) close() {
	s.closeOnce.Do(func() { close(s.done) })
}

// Feed fans recomputed campaign totals out to board subscribers. One Feed
// serves all campaigns; subscriptions are keyed per campaign.
type Feed struct {
	totals   TotalSource
	resolver CampaignResolver
	stats    *metrics.FeedMetrics
	logg     *logger.Logger
	buffer   int

	mu     sync.Mutex
	nextID uint64
	subs   map[uuid.UUID]map[uint64]*subscription
	closed bool
}

// New builds the board feed.
func New(totals TotalSource, resolver CampaignResolver, cfg config.FeedConfig, stats *metrics.FeedMetrics, logg *logger.Logger) (*Feed, error) {
	if totals == nil {
		return nil, fmt.Errorf("total source required")
	}
	if resolver == nil {
		return nil, fmt.Errorf("campaign resolver required")
	}
	buffer := cfg.EmitBuffer
	if buffer < 1 {
		buffer = 1
	}
	return &Feed{
		totals:   totals,
		resolver: resolver,
		stats:    stats,
		logg:     logg,
		buffer:   buffer,
		subs:     map[uuid.UUID]map[uint64]*subscription{},
	}, nil
}

// Subscribe registers onTotal for a campaign and returns the unsubscribe
// function. The current total is fetched up front and delivered first, so a
// new subscriber never waits for the next change to see a number. After
// unsubscribe returns, results still in flight are discarded rather than
// delivered.
func (f *Feed) Subscribe(ctx context.Context, campaignID uuid.UUID, onTotal OnTotal) (func(), error) {
	if campaignID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "campaign id required")
	}
	if onTotal == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "total callback required")
	}

	initial, err := f.totals.CampaignTotal(ctx, campaignID)
	if err != nil {
		return nil, pkgerrors.WrapStep(dbpkg.StorageCode(err), err, "initial total fetch")
	}

	sub := &subscription{
		campaignID: campaignID,
		totals:     make(chan int, f.buffer),
		done:       make(chan struct{}),
	}

	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "feed is shut down")
	}
	f.nextID++
	id := f.nextID
	if f.subs[campaignID] == nil {
		f.subs[campaignID] = map[uint64]*subscription{}
	}
	f.subs[campaignID][id] = sub
	f.mu.Unlock()

	f.stats.SubscriptionOpened()
	go f.deliverLoop(sub, onTotal)
	sub.totals <- initial

	unsubscribe := func() {
		f.mu.Lock()
		if group, ok := f.subs[campaignID]; ok {
			delete(group, id)
			if len(group) == 0 {
				delete(f.subs, campaignID)
			}
		}
		f.mu.Unlock()
		sub.close()
		f.stats.SubscriptionClosed()
	}
	return unsubscribe, nil
}

// deliverLoop is the per-subscription pump. The done re-check between
// dequeue and callback is what discards totals already in the buffer when
// the subscriber left mid-flight.
func (f *Feed) deliverLoop(sub *subscription, onTotal OnTotal) {
	for {
		select {
		case <-sub.done:
			return
		case total := <-sub.totals:
			select {
			case <-sub.done:
				return
			default:
			}
			onTotal(total)
		}
	}
}

// HandleEvent processes one change notification: resolve the campaign,
// recompute its total from storage, and fan the number out to that
// campaign's subscribers.
func (f *Feed) HandleEvent(ctx context.Context, event ChangeEvent) error {
	f.stats.IncEvent(string(event.EventType))

	campaignID, err := f.campaignFor(ctx, event)
	if err != nil {
		return err
	}

	subs := f.subscribersOf(campaignID)
	if len(subs) == 0 {
		return nil
	}

	start := time.Now()
	total, err := f.totals.CampaignTotal(ctx, campaignID)
	if err != nil {
		return pkgerrors.WrapStep(dbpkg.StorageCode(err), err, "total recompute")
	}
	f.stats.ObserveRecompute(time.Since(start))

	for _, sub := range subs {
		f.push(sub, total)
	}

	if f.logg != nil {
		logCtx := f.logg.WithCampaignID(ctx, campaignID.String())
		logCtx = f.logg.WithFields(logCtx, map[string]any{
			"event_type":  event.EventType,
			"total":       total,
			"subscribers": len(subs),
		})
		f.logg.Info(logCtx, "board total recomputed")
	}
	return nil
}

func (f *Feed) campaignFor(ctx context.Context, event ChangeEvent) (uuid.UUID, error) {
	switch event.AggregateType {
	case enums.AggregateCampaign:
		return event.AggregateID, nil
	case enums.AggregateOrder, enums.AggregateOrderItem:
		campaignID, err := f.resolver.ResolveCampaignOf(ctx, event.AggregateID)
		if err != nil {
			return uuid.Nil, pkgerrors.WrapStep(pkgerrors.CodeDependency, err, "campaign resolution")
		}
		return campaignID, nil
	default:
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown aggregate type").
			WithDetails(map[string]any{"aggregate_type": string(event.AggregateType)})
	}
}

func (f *Feed) subscribersOf(campaignID uuid.UUID) []*subscription {
	f.mu.Lock()
	defer f.mu.Unlock()
	group := f.subs[campaignID]
	subs := make([]*subscription, 0, len(group))
	for _, sub := range group {
		subs = append(subs, sub)
	}
	return subs
}

// push enqueues without blocking the event loop. A full buffer means the
// subscriber is slow; the oldest queued total is evicted so the latest one
// always lands.
func (f *Feed) push(sub *subscription, total int) {
	select {
	case sub.totals <- total:
		return
	default:
	}
	select {
	case <-sub.totals:
	default:
	}
	select {
	case sub.totals <- total:
	default:
	}
}

// Close tears down every subscription. Used on shutdown.
func (f *Feed) Close() {
	f.mu.Lock()
	f.closed = true
	groups := f.subs
	f.subs = map[uuid.UUID]map[uint64]*subscription{}
	f.mu.Unlock()

	for _, group := range groups {
		for _, sub := range group {
			sub.close()
			f.stats.SubscriptionClosed()
		}
	}
}
