package metrics

import (
	"context"
	"time"

	"stock_analyzer/internal/feature/marketdata/domain/entity"
	"stock_analyzer/internal/feature/marketdata/usecase"
)

// InstrumentedProvider records a request counter and latency histogram for every provider call.
type InstrumentedProvider struct {
	inner usecase.Provider
	m     *Metrics
}

var _ usecase.Provider = (*InstrumentedProvider)(nil)

// NewInstrumentedProvider wraps inner. A nil m returns inner unchanged.
func NewInstrumentedProvider(inner usecase.Provider, m *Metrics) usecase.Provider {
	if m == nil {
		return inner
	}
	return &InstrumentedProvider{inner: inner, m: m}
}

func (p *InstrumentedProvider) Name() string { return p.inner.Name() }

func (p *InstrumentedProvider) DailyBars(ctx context.Context, symbol string, from, to time.Time) ([]entity.PriceBar, error) {
	defer p.observe(usecase.OpHistory, time.Now())()
	bars, err := p.inner.DailyBars(ctx, symbol, from, to)
	p.count(usecase.OpHistory, err)
	return bars, err
}

func (p *InstrumentedProvider) LatestBar(ctx context.Context, symbol string) (*entity.PriceBar, error) {
	defer p.observe(usecase.OpLivePrice, time.Now())()
	bar, err := p.inner.LatestBar(ctx, symbol)
	p.count(usecase.OpLivePrice, err)
	return bar, err
}

func (p *InstrumentedProvider) Summary(ctx context.Context, symbol string) (entity.Summary, error) {
	defer p.observe(usecase.OpSummary, time.Now())()
	s, err := p.inner.Summary(ctx, symbol)
	p.count(usecase.OpSummary, err)
	return s, err
}

func (p *InstrumentedProvider) observe(op string, start time.Time) func() {
	return func() {
		p.m.ProviderLatency.WithLabelValues(p.inner.Name(), op).Observe(time.Since(start).Seconds())
	}
}

func (p *InstrumentedProvider) count(op string, err error) {
	outcome := OutcomeOK
	if err != nil {
		outcome = OutcomeError
	}
	p.m.ProviderRequests.WithLabelValues(p.inner.Name(), op, outcome).Inc()
}
