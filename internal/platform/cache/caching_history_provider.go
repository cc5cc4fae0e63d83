// Package cache provides caching decorators for market data providers.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"stock_analyzer/internal/feature/marketdata/domain/entity"
	"stock_analyzer/internal/feature/marketdata/usecase"
)

// expiryHour is the local market hour at which cached entries expire when no TTL is configured.
const expiryHour = 8

// CachingHistoryProvider decorates a Provider with Redis caching of closed daily ranges.
// Only ranges that end before the current session are cached, so nothing a later request could
// see change is ever served from cache. LatestBar and Summary always reach the inner provider.
type CachingHistoryProvider struct {
	inner     usecase.Provider
	rdb       *redis.Client
	ttl       time.Duration
	namespace string
	loc       *time.Location
	now       func() time.Time
}

var _ usecase.Provider = (*CachingHistoryProvider)(nil)

// NewCachingHistoryProvider decorates a Provider with Redis caching.
// If ttl is 0, entries expire at the next 08:00 in loc. If namespace is empty, it uses "history".
func NewCachingHistoryProvider(rdb *redis.Client, ttl time.Duration, inner usecase.Provider, namespace string, loc *time.Location) *CachingHistoryProvider {
	if ttl < 0 {
		ttl = 0
	}
	if namespace == "" {
		namespace = "history"
	}
	if loc == nil {
		loc = time.UTC
	}
	return &CachingHistoryProvider{
		inner:     inner,
		rdb:       rdb,
		ttl:       ttl,
		namespace: namespace,
		loc:       loc,
		now:       time.Now,
	}
}

func (c *CachingHistoryProvider) Name() string { return c.inner.Name() }

// DailyBars retrieves bars, checking cache first then falling back to the inner provider.
func (c *CachingHistoryProvider) DailyBars(ctx context.Context, symbol string, from, to time.Time) ([]entity.PriceBar, error) {
	// Bypass cache if Redis is not configured or the range reaches the current session
	if c.rdb == nil || !c.closed(to) {
		return c.inner.DailyBars(ctx, symbol, from, to)
	}

	key := c.cacheKey(symbol, from, to)

	// 1) Check cache
	if b, err := c.rdb.Get(ctx, key).Bytes(); err == nil && len(b) > 0 {
		var out []entity.PriceBar
		if err := json.Unmarshal(b, &out); err == nil {
			slog.Debug("history cache hit", "key", key)
			return out, nil
		}
		// Delete corrupted cache entry
		_ = c.rdb.Del(ctx, key).Err()
	}

	// 2) Fallback to provider
	out, err := c.inner.DailyBars(ctx, symbol, from, to)
	if err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return out, nil
	}

	// 3) Store in cache (best effort)
	if b, err := json.Marshal(out); err == nil {
		if err := c.rdb.Set(ctx, key, b, c.expiry()).Err(); err != nil {
			slog.Warn("history cache write failed", "key", key, "error", err)
		}
	}

	return out, nil
}

// LatestBar is never cached: the live price must reflect the provider on every cycle.
func (c *CachingHistoryProvider) LatestBar(ctx context.Context, symbol string) (*entity.PriceBar, error) {
	return c.inner.LatestBar(ctx, symbol)
}

// Summary is never cached.
func (c *CachingHistoryProvider) Summary(ctx context.Context, symbol string) (entity.Summary, error) {
	return c.inner.Summary(ctx, symbol)
}

// closed reports whether the exclusive upper bound to is at or before today's session.
func (c *CachingHistoryProvider) closed(to time.Time) bool {
	today := entity.SessionDate(c.now().In(c.loc))
	return !to.After(today)
}

func (c *CachingHistoryProvider) expiry() time.Duration {
	if c.ttl > 0 {
		return c.ttl
	}
	return TimeUntilNext(expiryHour, c.loc, c.now())
}

// cacheKey generates a cache key for a specific query.
func (c *CachingHistoryProvider) cacheKey(symbol string, from, to time.Time) string {
	return fmt.Sprintf("%s:%s:%s:%s:%s",
		c.namespace,
		safe(c.inner.Name()),
		safe(symbol),
		from.Format(entity.DateLayout),
		to.Format(entity.DateLayout),
	)
}

// safe escapes characters that are problematic for Redis keys.
func safe(s string) string {
	s = strings.ReplaceAll(s, " ", "_")
	s = strings.ReplaceAll(s, ":", "_")
	return s
}
