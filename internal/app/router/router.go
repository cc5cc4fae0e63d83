// Package router wires HTTP routes to the feature handlers.
package router

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	dashboardhandler "stock_analyzer/internal/feature/dashboard/transport/handler"
	markethandler "stock_analyzer/internal/feature/marketdata/transport/handler"
	symbollisthandler "stock_analyzer/internal/feature/symbollist/transport/handler"
	platformhandler "stock_analyzer/internal/platform/http/handler"
	"stock_analyzer/internal/platform/logger"
)

// Handlers groups the handlers the router serves. Metrics may be nil.
type Handlers struct {
	Dashboard *dashboardhandler.DashboardHandler
	Market    *markethandler.MarketHandler
	Symbol    *symbollisthandler.SymbolHandler
	Health    *platformhandler.HealthHandler
	Metrics   http.Handler
}

// Options tunes the middleware stack.
type Options struct {
	CORSOrigins    []string      // 空ならCORSミドルウェアを付けない
	RequestTimeout time.Duration // 0 なら無制限
}

func NewRouter(h Handlers, opts Options) *gin.Engine {
	r := gin.New()
	r.Use(logger.Middleware(), gin.Recovery())
	if len(opts.CORSOrigins) > 0 {
		cfg := cors.DefaultConfig()
		cfg.AllowOrigins = opts.CORSOrigins
		cfg.AllowMethods = []string{http.MethodGet, http.MethodHead, http.MethodOptions}
		cfg.ExposeHeaders = []string{logger.RequestIDHeader, "Content-Disposition"}
		r.Use(cors.New(cfg))
	}
	r.SetHTMLTemplate(dashboardhandler.Templates())

	// 導通確認用
	r.GET("/healthz", h.Health.Health)
	r.HEAD("/healthz", h.Health.Health)
	r.OPTIONS("/healthz", h.Health.Health)
	if h.Metrics != nil {
		r.GET("/metrics", gin.WrapH(h.Metrics))
	}

	// ダッシュボード（1リクエスト = 1サイクル）
	app := r.Group("/")
	app.Use(Timeout(opts.RequestTimeout))
	{
		app.GET("/", h.Dashboard.Page)
		app.GET("/dashboard", h.Dashboard.Page)
		app.GET(dashboardhandler.ExportPath, h.Dashboard.ExportCSV)
		app.GET("/api/dashboard", h.Dashboard.Get)
		app.GET("/api/history/:code", h.Market.GetHistory)
		app.GET("/api/quote/:code", h.Market.GetQuote)
		app.GET("/symbols", h.Symbol.List)
	}

	return r
}

// Timeout bounds the request context, so provider calls of a slow cycle are cancelled.
func Timeout(d time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if d <= 0 {
			c.Next()
			return
		}
		ctx, cancel := context.WithTimeout(c.Request.Context(), d)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
