// Package handler はmarketdataフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/guregu/null/v6"
	"github.com/oapi-codegen/runtime"

	"stock_analyzer/internal/api"
	"stock_analyzer/internal/feature/marketdata/domain/entity"
	"stock_analyzer/internal/feature/marketdata/transport/http/dto"
	"stock_analyzer/internal/feature/marketdata/usecase"
)

// MarketData は Gateway のうちハンドラーが使う操作です。
type MarketData interface {
	ProviderName() string
	FetchHistory(ctx context.Context, symbol string, start, end time.Time) (entity.PriceSeries, error)
	FetchLivePrice(ctx context.Context, symbol string) (null.Float, error)
	FetchSummary(ctx context.Context, symbol string) (entity.Summary, error)
}

// SymbolCatalog は銘柄コードが取り扱い対象かを判定します。
type SymbolCatalog interface {
	IsListed(ctx context.Context, code string) (bool, error)
}

// MarketHandler は Gateway をそのまま公開するHTTPハンドラーです。
type MarketHandler struct {
	md      MarketData
	catalog SymbolCatalog
}

// NewMarketHandler は MarketHandler を作成します。catalog が nil の場合は銘柄を検証しません。
func NewMarketHandler(md MarketData, catalog SymbolCatalog) *MarketHandler {
	return &MarketHandler{md: md, catalog: catalog}
}

// GetHistory は期間内の日足をJSONで返します。
//
// エンドポイント例:
// GET /api/history/:code?start=2019-07-06&end=2019-07-10
func (h *MarketHandler) GetHistory(c *gin.Context) {
	code, ok := h.symbol(c)
	if !ok {
		return
	}

	var params api.GetHistoryParams
	q := c.Request.URL.Query()
	if err := runtime.BindQueryParameter("form", true, true, "start", q, &params.Start); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid start: " + err.Error()})
		return
	}
	if err := runtime.BindQueryParameter("form", true, true, "end", q, &params.End); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid end: " + err.Error()})
		return
	}

	series, err := h.md.FetchHistory(c.Request.Context(), code, params.Start.Time, params.End.Time)
	if err != nil {
		writeError(c, err)
		return
	}

	// データをフォーマット
	out := dto.HistoryResponse{
		Symbol:   series.Symbol,
		Start:    series.Start.Format(entity.DateLayout),
		End:      series.End.Format(entity.DateLayout),
		Provider: h.md.ProviderName(),
		Bars:     make([]dto.BarResponse, 0, series.Len()),
	}
	for _, b := range series.Bars {
		out.Bars = append(out.Bars, dto.BarResponse{
			Date:   b.Time.Format(entity.DateLayout),
			Open:   b.Open,
			High:   b.High,
			Low:    b.Low,
			Close:  b.Close,
			Volume: b.Volume,
		})
	}
	c.JSON(http.StatusOK, out)
}

// GetQuote は現在値と時価総額・PERを返します。現在値がない場合は null です。
//
// エンドポイント例:
// GET /api/quote/:code
func (h *MarketHandler) GetQuote(c *gin.Context) {
	code, ok := h.symbol(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	price, err := h.md.FetchLivePrice(ctx, code)
	if err != nil {
		writeError(c, err)
		return
	}
	summary, err := h.md.FetchSummary(ctx, code)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.QuoteResponse{
		Symbol:    code,
		LivePrice: price,
		MarketCap: summary.MarketCap,
		PERatio:   summary.PERatio,
	})
}

// symbol はパスの銘柄コードを正規化し、カタログにない場合は404を書き込みます。
func (h *MarketHandler) symbol(c *gin.Context) (string, bool) {
	code := normalizeCode(c.Param("code"))
	if code == "" {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "symbol is required"})
		return "", false
	}
	if h.catalog == nil {
		return code, true
	}
	listed, err := h.catalog.IsListed(c.Request.Context(), code)
	if err != nil {
		slog.Error("symbol lookup failed", "symbol", code, "error", err)
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "symbol lookup failed"})
		return "", false
	}
	if !listed {
		c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "unknown symbol " + code})
		return "", false
	}
	return code, true
}

// writeError は Gateway のエラーをHTTPステータスに対応付けます。
func writeError(c *gin.Context, err error) {
	var fe *usecase.FetchError
	switch {
	case errors.Is(err, usecase.ErrInvalidRange):
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
	case errors.Is(err, usecase.ErrUnknownSymbol):
		c.JSON(http.StatusNotFound, api.ErrorResponse{Error: err.Error()})
	case errors.As(err, &fe):
		slog.Warn("market data fetch failed", "symbol", fe.Symbol, "op", fe.Op, "provider", fe.Provider, "error", fe.Err)
		c.JSON(http.StatusBadGateway, api.ErrorResponse{Error: err.Error()})
	default:
		slog.Error("unexpected market data error", "error", err)
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: err.Error()})
	}
}

func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
