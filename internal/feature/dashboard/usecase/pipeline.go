// Package usecase runs one dashboard cycle: fetch history, live price and summary, then compute
// the indicators.
package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/guregu/null/v6"

	"stock_analyzer/internal/feature/dashboard/domain/entity"
	indicators "stock_analyzer/internal/feature/indicators/domain/entity"
	"stock_analyzer/internal/feature/indicators/engine"
	market "stock_analyzer/internal/feature/marketdata/domain/entity"
	mdusecase "stock_analyzer/internal/feature/marketdata/usecase"
	"stock_analyzer/internal/platform/logger"
)

// MarketData is the part of the market data gateway a cycle needs.
type MarketData interface {
	ProviderName() string
	FetchHistory(ctx context.Context, symbol string, start, end time.Time) (market.PriceSeries, error)
	FetchLivePrice(ctx context.Context, symbol string) (null.Float, error)
	FetchSummary(ctx context.Context, symbol string) (market.Summary, error)
}

// Observer receives cycle timings. *metrics.Metrics implements it.
type Observer interface {
	ObserveCycle(outcome string, d time.Duration)
	ObserveIndicators(d time.Duration)
}

// Config tunes the indicator windows and the warm-up lookback.
type Config struct {
	// WarmupDays is how many calendar days before Start are fetched so the indicators are
	// defined from the first displayed session. 0 fetches exactly [Start, End].
	WarmupDays   int
	FastPeriod   int
	SlowPeriod   int
	SignalPeriod int
	RSIPeriod    int
}

// DefaultConfig returns MACD(12, 26, 9) and RSI(14) without warm-up.
func DefaultConfig() Config {
	return Config{
		FastPeriod:   engine.DefaultFastPeriod,
		SlowPeriod:   engine.DefaultSlowPeriod,
		SignalPeriod: engine.DefaultSignalPeriod,
		RSIPeriod:    engine.DefaultRSIPeriod,
	}
}

// Pipeline turns Inputs into a DisplayBundle. It holds no state between runs.
type Pipeline struct {
	md  MarketData
	obs Observer
	cfg Config
	now func() time.Time
}

// NewPipeline creates a Pipeline. obs and now may be nil.
func NewPipeline(md MarketData, obs Observer, cfg Config, now func() time.Time) *Pipeline {
	if now == nil {
		now = time.Now
	}
	if cfg.WarmupDays < 0 {
		cfg.WarmupDays = 0
	}
	return &Pipeline{md: md, obs: obs, cfg: cfg, now: now}
}

// Run executes one cycle. Gateway calls are made one after another (history, live price,
// summary); the first FetchError or InsufficientDataError aborts the cycle.
func (p *Pipeline) Run(ctx context.Context, in entity.Inputs) (entity.DisplayBundle, error) {
	started := time.Now()
	bundle, err := p.run(ctx, in)
	outcome := classify(err)
	if p.obs != nil {
		p.obs.ObserveCycle(outcome, time.Since(started))
	}
	if err != nil {
		slog.Warn("dashboard cycle failed",
			append(logger.Attrs(ctx), "symbol", in.Symbol, "outcome", outcome, "error", err)...)
		return entity.DisplayBundle{}, err
	}
	slog.Info("dashboard cycle completed",
		append(logger.Attrs(ctx), "symbol", bundle.Symbol, "bars", bundle.Series.Len(),
			"macd_defined", bundle.MACD.Defined(), "rsi_defined", bundle.RSI.Defined(),
			"live_price", bundle.LivePrice.Valid, "duration_ms", time.Since(started).Milliseconds())...)
	return bundle, nil
}

// History fetches only the bars of [Start, End], for the CSV export. No indicators are computed,
// so a range too short for MACD or RSI can still be exported.
func (p *Pipeline) History(ctx context.Context, in entity.Inputs) (market.PriceSeries, error) {
	symbol, start, end, err := validate(in)
	if err != nil {
		return market.PriceSeries{}, err
	}
	return p.md.FetchHistory(ctx, symbol, start, end)
}

func (p *Pipeline) run(ctx context.Context, in entity.Inputs) (entity.DisplayBundle, error) {
	symbol, start, end, err := validate(in)
	if err != nil {
		return entity.DisplayBundle{}, err
	}

	// 1) history (with optional warm-up lookback)
	fetched, err := p.md.FetchHistory(ctx, symbol, start.AddDate(0, 0, -p.cfg.WarmupDays), end)
	if err != nil {
		return entity.DisplayBundle{}, err
	}
	// 2) live price, absent is fine
	live, err := p.md.FetchLivePrice(ctx, symbol)
	if err != nil {
		return entity.DisplayBundle{}, err
	}
	// 3) summary, missing fields are fine
	summary, err := p.md.FetchSummary(ctx, symbol)
	if err != nil {
		return entity.DisplayBundle{}, err
	}

	// 4) indicators over everything fetched, then cut back to [start, end]
	computeStart := time.Now()
	macd, signal, rsi, err := p.indicators(fetched)
	if p.obs != nil {
		p.obs.ObserveIndicators(time.Since(computeStart))
	}
	if err != nil {
		return entity.DisplayBundle{}, err
	}

	from := firstIndexFrom(fetched, start)
	series := fetched.Trim(start, end)
	if series.Len() == 0 {
		return entity.DisplayBundle{}, &mdusecase.FetchError{
			Symbol: symbol, Op: mdusecase.OpHistory, Provider: p.md.ProviderName(), Err: mdusecase.ErrNoData,
		}
	}
	to := from + series.Len()

	return entity.DisplayBundle{
		Symbol:      symbol,
		Start:       start,
		End:         end,
		Provider:    p.md.ProviderName(),
		Series:      series,
		MACD:        macd.Slice(from, to),
		MACDSignal:  signal.Slice(from, to),
		RSI:         rsi.Slice(from, to),
		LivePrice:   live,
		Summary:     summary,
		GeneratedAt: p.now(),
	}, nil
}

func (p *Pipeline) indicators(series market.PriceSeries) (macd, signal, rsi indicators.Series, err error) {
	closes := series.Closes()
	times := series.Times()

	m, err := engine.ComputeMACD(closes, p.cfg.FastPeriod, p.cfg.SlowPeriod, p.cfg.SignalPeriod)
	if err != nil {
		return macd, signal, rsi, fmt.Errorf("compute macd: %w", err)
	}
	s, err := engine.ComputeMACDSignal(closes, p.cfg.FastPeriod, p.cfg.SlowPeriod, p.cfg.SignalPeriod)
	if err != nil {
		return macd, signal, rsi, fmt.Errorf("compute macd signal: %w", err)
	}
	r, err := engine.ComputeRSI(closes, p.cfg.RSIPeriod)
	if err != nil {
		return macd, signal, rsi, fmt.Errorf("compute rsi: %w", err)
	}

	return indicators.NewSeries(indicators.NameMACD, times, m),
		indicators.NewSeries(indicators.NameMACDSignal, times, s),
		indicators.NewSeries(indicators.NameRSI, times, r),
		nil
}

// validate normalises the symbol and dates of in.
func validate(in entity.Inputs) (symbol string, start, end time.Time, err error) {
	symbol = strings.ToUpper(strings.TrimSpace(in.Symbol))
	if symbol == "" {
		return "", start, end, fmt.Errorf("%w: symbol is required", ErrInvalidInputs)
	}
	if in.Start.IsZero() || in.End.IsZero() {
		return "", start, end, fmt.Errorf("%w: start and end dates are required", ErrInvalidInputs)
	}
	start, end = market.SessionDate(in.Start), market.SessionDate(in.End)
	if end.Before(start) {
		return "", start, end, fmt.Errorf("%w: start %s is after end %s", mdusecase.ErrInvalidRange,
			start.Format(market.DateLayout), end.Format(market.DateLayout))
	}
	return symbol, start, end, nil
}

// firstIndexFrom returns the index of the first bar on or after start.
func firstIndexFrom(series market.PriceSeries, start time.Time) int {
	for i, b := range series.Bars {
		if !b.Time.Before(start) {
			return i
		}
	}
	return series.Len()
}

func classify(err error) string {
	var insufficient *engine.InsufficientDataError
	var fetch *mdusecase.FetchError
	switch {
	case err == nil:
		return OutcomeOK
	case errors.Is(err, ErrInvalidInputs), errors.Is(err, mdusecase.ErrInvalidRange):
		return OutcomeInvalidInputs
	case errors.As(err, &fetch):
		return OutcomeFetchError
	case errors.As(err, &insufficient):
		return OutcomeInsufficientData
	default:
		return OutcomeError
	}
}
