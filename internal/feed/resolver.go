package feed

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	pkgerrors "github.com/pooladgaran/campane-backend/pkg/errors"
	"github.com/pooladgaran/campane-backend/pkg/redis"
)

const resolverCacheScope = "order_campaign"

type dbResolver struct {
	db *gorm.DB
}

// NewDBResolver resolves order→campaign straight from the orders table.
func NewDBResolver(db *gorm.DB) CampaignResolver {
	return dbResolver{db: db}
}

func (r dbResolver) ResolveCampaignOf(ctx context.Context, orderID uuid.UUID) (uuid.UUID, error) {
	var row struct {
		CampaignID uuid.UUID
	}
	err := r.db.WithContext(ctx).
		Table("orders").
		Select("campaign_id").
		Where("id = ?", orderID).
		Take(&row).Error
	if err == gorm.ErrRecordNotFound {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	if err != nil {
		return uuid.Nil, err
	}
	return row.CampaignID, nil
}

type cachedResolver struct {
	next  CampaignResolver
	cache redis.Cache
	ttl   time.Duration
}

// NewCachedResolver wraps a resolver with a read-through cache. The mapping
// is immutable for an order's lifetime, so a positive entry never goes stale;
// the TTL only bounds memory.
func NewCachedResolver(next CampaignResolver, cache redis.Cache, ttl time.Duration) CampaignResolver {
	if cache == nil {
		return next
	}
	return cachedResolver{next: next, cache: cache, ttl: ttl}
}

func (r cachedResolver) ResolveCampaignOf(ctx context.Context, orderID uuid.UUID) (uuid.UUID, error) {
	if cached, err := r.cache.CacheGet(ctx, resolverCacheScope, orderID.String()); err == nil {
		if campaignID, parseErr := uuid.Parse(cached); parseErr == nil {
			return campaignID, nil
		}
	}

	campaignID, err := r.next.ResolveCampaignOf(ctx, orderID)
	if err != nil {
		return uuid.Nil, err
	}

	// Best effort: a failed cache write just means the next event resolves
	// from the database again.
	_ = r.cache.CacheSet(ctx, resolverCacheScope, orderID.String(), campaignID.String(), r.ttl)
	return campaignID, nil
}
