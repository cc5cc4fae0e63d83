// Command export writes the daily bars of one symbol to {symbol}_stock_data.csv without
// starting the server.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"stock_analyzer/internal/app/di"
	"stock_analyzer/internal/feature/dashboard/presentation"
	market "stock_analyzer/internal/feature/marketdata/domain/entity"
	"stock_analyzer/internal/platform/config"
	"stock_analyzer/internal/platform/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid config", "error", err)
		os.Exit(1)
	}
	logger.Init("stock-analyzer-export", cfg.Log.Level, "text")

	defaults, err := di.DashboardDefaults(cfg)
	if err != nil {
		slog.Error("invalid dashboard defaults", "error", err)
		os.Exit(1)
	}

	symbol := flag.String("symbol", defaults.Symbol, "ticker symbol")
	start := flag.String("start", defaults.Start.Format(market.DateLayout), "first session (YYYY-MM-DD)")
	end := flag.String("end", defaults.End.Format(market.DateLayout), "last session (YYYY-MM-DD)")
	dir := flag.String("out", ".", "output directory")
	flag.Parse()

	in := defaults
	in.Symbol = strings.ToUpper(strings.TrimSpace(*symbol))
	if in.Start, err = market.ParseDate(*start); err != nil {
		slog.Error("invalid -start", "error", err)
		os.Exit(2)
	}
	if in.End, err = market.ParseDate(*end); err != nil {
		slog.Error("invalid -end", "error", err)
		os.Exit(2)
	}

	// キャッシュ・メトリクスなしで直接プロバイダを叩く
	md, err := di.NewMarketData(cfg, nil, nil)
	if err != nil {
		slog.Error("failed to create market data gateway", "error", err)
		os.Exit(1)
	}
	pipeline := di.NewPipeline(cfg, md, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	series, err := pipeline.History(ctx, in)
	if err != nil {
		slog.Error("failed to fetch history", "symbol", in.Symbol, "error", err)
		os.Exit(1)
	}
	data, err := presentation.EncodeCSV(series)
	if err != nil {
		slog.Error("failed to encode csv", "error", err)
		os.Exit(1)
	}

	path := filepath.Join(*dir, presentation.CSVFilename(series.Symbol))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		slog.Error("failed to write csv", "path", path, "error", err)
		os.Exit(1)
	}
	slog.Info("export ok", "path", path, "bars", series.Len())
}
