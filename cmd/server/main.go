package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	redisv9 "github.com/redis/go-redis/v9"

	"stock_analyzer/internal/app/di"
	"stock_analyzer/internal/app/router"
	dashboardhandler "stock_analyzer/internal/feature/dashboard/transport/handler"
	markethandler "stock_analyzer/internal/feature/marketdata/transport/handler"
	symbollistadapters "stock_analyzer/internal/feature/symbollist/adapters"
	symbolentity "stock_analyzer/internal/feature/symbollist/domain/entity"
	symbollisthandler "stock_analyzer/internal/feature/symbollist/transport/handler"
	symbollistusecase "stock_analyzer/internal/feature/symbollist/usecase"
	"stock_analyzer/internal/platform/config"
	"stock_analyzer/internal/platform/db"
	platformhandler "stock_analyzer/internal/platform/http/handler"
	"stock_analyzer/internal/platform/logger"
	"stock_analyzer/internal/platform/metrics"
	infraredis "stock_analyzer/internal/platform/redis"
)

// shutdownTimeout bounds graceful shutdown.
const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	logger.Init("stock-analyzer", cfg.Log.Level, cfg.Log.Format)
	gin.SetMode(gin.ReleaseMode)

	// db（銘柄カタログ）
	gdb, err := db.Open(cfg.DBConfig(), &symbolentity.Symbol{})
	if err != nil {
		return err
	}

	// Redis（任意）
	var rdb *redisv9.Client
	if tmp, err := infraredis.NewRedisClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB); err != nil {
		slog.Warn("Redis unavailable. Running without cache.", "error", err)
	} else if tmp != nil {
		rdb = tmp
		defer func() {
			if err := rdb.Close(); err != nil {
				slog.Error("failed to close Redis client", "error", err)
			}
		}()
	}

	m := metrics.NewMetrics()

	// Repository / Usecase
	symbolRepo := symbollistadapters.NewSymbolRepository(gdb)
	symbolUC := symbollistusecase.NewSymbolUsecase(symbolRepo)
	seedCtx, cancel := context.WithTimeout(context.Background(), cfg.Database.ConnectTimeout)
	err = symbolUC.EnsureDefaults(seedCtx)
	cancel()
	if err != nil {
		return err
	}

	md, err := di.NewMarketData(cfg, rdb, m)
	if err != nil {
		return err
	}
	pipeline := di.NewPipeline(cfg, md, m)
	defaults, err := di.DashboardDefaults(cfg)
	if err != nil {
		return err
	}

	// Handler
	checks := map[string]platformhandler.Check{"db": platformhandler.DBCheck(gdb)}
	if rdb != nil {
		checks["redis"] = platformhandler.RedisCheck(rdb)
	}
	r := router.NewRouter(router.Handlers{
		Dashboard: dashboardhandler.NewDashboardHandler(pipeline, symbolUC, defaults),
		Market:    markethandler.NewMarketHandler(md, symbolUC),
		Symbol:    symbollisthandler.NewSymbolHandler(symbolUC, defaults.Symbol),
		Health:    platformhandler.NewHealthHandler(checks),
		Metrics:   m.Handler(),
	}, router.Options{
		CORSOrigins:    cfg.Server.CORSOrigins,
		RequestTimeout: cfg.Server.RequestTimeout,
	})

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		slog.Info("listening", "addr", cfg.Server.Addr, "provider", md.ProviderName())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
