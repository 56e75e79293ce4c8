package listings

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"realty_leads_backend/platform/logger"
)

const priceKeyPrefix = "listing:price:"

// CachedLookup fronts a Store with a Redis cache. Cache failures degrade
// to the store; only a store failure fails the lookup.
type CachedLookup struct {
	store Store
	redis *redis.Client
	ttl   time.Duration
	log   *logger.Logger
}

// NewCachedLookup wraps the store. A nil redis client disables caching.
func NewCachedLookup(store Store, rdb *redis.Client, ttl time.Duration, log *logger.Logger) *CachedLookup {
	return &CachedLookup{store: store, redis: rdb, ttl: ttl, log: log}
}

// GetListingPrice implements the price lookup used by conditional rules.
func (c *CachedLookup) GetListingPrice(ctx context.Context, listingID string) (float64, error) {
	if c.redis != nil {
		cached, err := c.redis.Get(ctx, priceKeyPrefix+listingID).Result()
		if err == nil {
			if price, perr := strconv.ParseFloat(cached, 64); perr == nil {
				return price, nil
			}
		} else if !errors.Is(err, redis.Nil) {
			c.log.Warn("listing price cache read failed", "listing_id", listingID, "error", err)
		}
	}

	price, err := c.store.GetListingPrice(ctx, listingID)
	if err != nil {
		return 0, err
	}

	if c.redis != nil {
		value := strconv.FormatFloat(price, 'f', -1, 64)
		if err := c.redis.Set(ctx, priceKeyPrefix+listingID, value, c.ttl).Err(); err != nil {
			c.log.Warn("listing price cache write failed", "listing_id", listingID, "error", err)
		}
	}
	return price, nil
}
