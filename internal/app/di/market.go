// Package di provides dependency injection factories for creating application components.
package di

import (
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	mdusecase "stock_analyzer/internal/feature/marketdata/usecase"
	"stock_analyzer/internal/platform/cache"
	"stock_analyzer/internal/platform/config"
	"stock_analyzer/internal/platform/externalapi/twelvedata"
	"stock_analyzer/internal/platform/externalapi/yahoo"
	infrahttp "stock_analyzer/internal/platform/http"
	"stock_analyzer/internal/platform/metrics"
	"stock_analyzer/internal/shared/ratelimiter"
)

// NewProvider creates the configured market data provider with its HTTP client and rate limiter,
// wrapped in the Redis history cache when rdb is non-nil and in Prometheus instrumentation when m is non-nil.
func NewProvider(cfg *config.Config, rdb *redis.Client, m *metrics.Metrics) (mdusecase.Provider, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	var p mdusecase.Provider
	switch cfg.Market.Provider {
	case config.ProviderYahoo:
		yc := cfg.YahooConfig()
		p = yahoo.NewClient(yc, infrahttp.NewHTTPClient(yc.Timeout), limiter(yc.RateLimitPerMinute))
	case config.ProviderTwelveData:
		tc := cfg.TwelveDataConfig()
		p = twelvedata.NewTwelveDataMarket(tc, infrahttp.NewHTTPClient(tc.Timeout), limiter(tc.RateLimitPerMinute))
	default:
		return nil, fmt.Errorf("unknown market provider %q", cfg.Market.Provider)
	}

	// Redisが使える場合のみ過去日のヒストリをキャッシュ
	if rdb != nil {
		p = cache.NewCachingHistoryProvider(rdb, cfg.Redis.TTL, p, "history", loc)
	}
	return metrics.NewInstrumentedProvider(p, m), nil
}

// NewMarketData creates the market data gateway on top of NewProvider.
func NewMarketData(cfg *config.Config, rdb *redis.Client, m *metrics.Metrics) (*mdusecase.Gateway, error) {
	p, err := NewProvider(cfg, rdb, m)
	if err != nil {
		return nil, err
	}
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	return mdusecase.NewGateway(p, loc, time.Now), nil
}

// limiter returns nil (no pacing) when perMinute is not positive.
func limiter(perMinute int) ratelimiter.Limiter {
	if perMinute <= 0 {
		return nil
	}
	return ratelimiter.NewRateLimiter(perMinute, time.Minute)
}
