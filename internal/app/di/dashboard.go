package di

import (
	"fmt"
	"strings"
	"time"

	"stock_analyzer/internal/feature/dashboard/domain/entity"
	dashusecase "stock_analyzer/internal/feature/dashboard/usecase"
	market "stock_analyzer/internal/feature/marketdata/domain/entity"
	"stock_analyzer/internal/platform/config"
	"stock_analyzer/internal/platform/metrics"
)

// NewPipeline creates the dashboard pipeline over md with the configured warm-up.
func NewPipeline(cfg *config.Config, md dashusecase.MarketData, m *metrics.Metrics) *dashusecase.Pipeline {
	pc := dashusecase.DefaultConfig()
	pc.WarmupDays = cfg.Dashboard.WarmupDays
	return dashusecase.NewPipeline(md, m, pc, time.Now)
}

// DashboardDefaults returns the inputs used when a request omits them.
func DashboardDefaults(cfg *config.Config) (entity.Inputs, error) {
	start, err := market.ParseDate(cfg.Dashboard.DefaultStart)
	if err != nil {
		return entity.Inputs{}, fmt.Errorf("dashboard.default_start: %w", err)
	}
	end, err := market.ParseDate(cfg.Dashboard.DefaultEnd)
	if err != nil {
		return entity.Inputs{}, fmt.Errorf("dashboard.default_end: %w", err)
	}
	if end.Before(start) {
		return entity.Inputs{}, fmt.Errorf("dashboard.default_start %s is after default_end %s", cfg.Dashboard.DefaultStart, cfg.Dashboard.DefaultEnd)
	}
	return entity.Inputs{
		Symbol: strings.ToUpper(strings.TrimSpace(cfg.Dashboard.DefaultSymbol)),
		Start:  start,
		End:    end,
	}, nil
}
