package exchange_rate

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/pdcgo/ledger_service/logging"
	"github.com/pdcgo/shared/pkg/ware_cache"
	"github.com/shopspring/decimal"
)

// CachedProvider keeps looked up rates in a ware cache until ttl expires.
type CachedProvider struct {
	next  Provider
	cache ware_cache.Cache
	ttl   time.Duration
}

func NewCachedProvider(next Provider, cache ware_cache.Cache, ttl time.Duration) *CachedProvider {
	return &CachedProvider{
		next:  next,
		cache: cache,
		ttl:   ttl,
	}
}

// Base implements Provider.
func (c *CachedProvider) Base() string {
	return c.next.Base()
}

// Rate implements Provider.
func (c *CachedProvider) Rate(ctx context.Context, from, to string) (decimal.Decimal, error) {
	key := fmt.Sprintf("exchange_rate/%s/%s", from, to)

	var rate decimal.Decimal
	err := c.cache.Get(ctx, key, &rate)
	if err == nil {
		return rate, nil
	}
	if !errors.Is(err, ware_cache.ErrCacheMiss) {
		logging.FromContext(ctx).Warn().Err(err).Str("key", key).Msg("exchange rate cache read failed")
	}

	rate, err = c.next.Rate(ctx, from, to)
	if err != nil {
		return rate, err
	}

	err = c.cache.Replace(ctx, &ware_cache.CacheItem{
		Key:        key,
		Expiration: c.ttl,
		Data:       rate,
	})
	if err != nil {
		logging.FromContext(ctx).Warn().Err(err).Str("key", key).Msg("exchange rate cache write failed")
	}

	return rate, nil
}
