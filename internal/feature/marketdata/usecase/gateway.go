// Package usecase implements the market data gateway: daily history, live price and company summary.
package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"time"

	"github.com/guregu/null/v6"

	"stock_analyzer/internal/feature/marketdata/domain/entity"
)

// Provider abstracts a market data source.
// Following Go convention: interfaces are defined by the consumer (usecase), not the provider (adapters).
type Provider interface {
	// Name identifies the provider in logs, errors and metrics.
	Name() string
	// DailyBars returns daily bars whose session date is in [from, to). to is exclusive.
	DailyBars(ctx context.Context, symbol string, from, to time.Time) ([]entity.PriceBar, error)
	// LatestBar returns the most recent daily bar, or nil when the provider has none.
	LatestBar(ctx context.Context, symbol string) (*entity.PriceBar, error)
	// Summary returns static company metadata.
	Summary(ctx context.Context, symbol string) (entity.Summary, error)
}

// Gateway fetches market data for the dashboard. It keeps no state between calls.
type Gateway struct {
	provider Provider
	loc      *time.Location
	now      func() time.Time
}

// NewGateway creates a Gateway. loc is the exchange timezone used to decide which session is "today";
// now may be nil, in which case time.Now is used.
func NewGateway(provider Provider, loc *time.Location, now func() time.Time) *Gateway {
	if loc == nil {
		loc = time.UTC
	}
	if now == nil {
		now = time.Now
	}
	return &Gateway{provider: provider, loc: loc, now: now}
}

// ProviderName returns the name of the underlying provider.
func (g *Gateway) ProviderName() string { return g.provider.Name() }

// FetchHistory returns the daily bars for symbol over [start, end], both ends inclusive.
func (g *Gateway) FetchHistory(ctx context.Context, symbol string, start, end time.Time) (entity.PriceSeries, error) {
	start, end = entity.SessionDate(start), entity.SessionDate(end)
	if end.Before(start) {
		return entity.PriceSeries{}, fmt.Errorf("%w: start %s is after end %s",
			ErrInvalidRange, start.Format(entity.DateLayout), end.Format(entity.DateLayout))
	}

	// Providers treat the upper bound as exclusive, so ask for one extra day.
	// normalize clamps back to end in case a provider includes the bound after all.
	bars, err := g.provider.DailyBars(ctx, symbol, start, end.AddDate(0, 0, 1))
	if err != nil {
		return entity.PriceSeries{}, g.fetchError(symbol, OpHistory, err)
	}

	series := normalize(symbol, start, end, bars)
	if series.Len() == 0 {
		return entity.PriceSeries{}, g.fetchError(symbol, OpHistory, ErrNoData)
	}
	return series, nil
}

// FetchLivePrice returns the close of the current session. The result is absent, and err is nil,
// when the provider has no trade for today in the exchange timezone (weekend, holiday, pre-open).
func (g *Gateway) FetchLivePrice(ctx context.Context, symbol string) (null.Float, error) {
	bar, err := g.provider.LatestBar(ctx, symbol)
	if errors.Is(err, ErrNoData) {
		return null.Float{}, nil
	}
	if err != nil {
		return null.Float{}, g.fetchError(symbol, OpLivePrice, err)
	}
	if bar == nil {
		return null.Float{}, nil
	}

	today := entity.SessionDate(g.now().In(g.loc))
	if !bar.Time.Equal(today) {
		slog.Debug("no trade in current session",
			"symbol", symbol, "last_session", bar.Time.Format(entity.DateLayout), "today", today.Format(entity.DateLayout))
		return null.Float{}, nil
	}
	if math.IsNaN(bar.Close) || math.IsInf(bar.Close, 0) {
		return null.Float{}, nil
	}
	return null.FloatFrom(bar.Close), nil
}

// FetchSummary returns market cap and P/E. Missing fields stay absent rather than zero.
func (g *Gateway) FetchSummary(ctx context.Context, symbol string) (entity.Summary, error) {
	s, err := g.provider.Summary(ctx, symbol)
	if err != nil {
		return entity.Summary{}, g.fetchError(symbol, OpSummary, err)
	}
	return s, nil
}

func (g *Gateway) fetchError(symbol, op string, err error) *FetchError {
	return &FetchError{Symbol: symbol, Op: op, Provider: g.provider.Name(), Err: err}
}

// normalize keeps bars inside [start, end], sorts them ascending and drops duplicate sessions
// (the later entry wins).
func normalize(symbol string, start, end time.Time, bars []entity.PriceBar) entity.PriceSeries {
	kept := make([]entity.PriceBar, 0, len(bars))
	for _, b := range bars {
		b.Time = entity.SessionDate(b.Time)
		if b.Time.Before(start) || b.Time.After(end) {
			continue
		}
		kept = append(kept, b)
	}
	sort.SliceStable(kept, func(i, j int) bool { return kept[i].Time.Before(kept[j].Time) })

	out := kept[:0]
	for _, b := range kept {
		if n := len(out); n > 0 && out[n-1].Time.Equal(b.Time) {
			out[n-1] = b
			continue
		}
		out = append(out, b)
	}
	return entity.PriceSeries{Symbol: symbol, Start: start, End: end, Bars: out}
}
