// Package handler はdashboardフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/oapi-codegen/runtime"

	"stock_analyzer/internal/api"
	"stock_analyzer/internal/feature/dashboard/domain/entity"
	"stock_analyzer/internal/feature/dashboard/presentation"
	"stock_analyzer/internal/feature/dashboard/transport/http/dto"
	dashusecase "stock_analyzer/internal/feature/dashboard/usecase"
	"stock_analyzer/internal/feature/indicators/engine"
	market "stock_analyzer/internal/feature/marketdata/domain/entity"
	mdusecase "stock_analyzer/internal/feature/marketdata/usecase"
	"stock_analyzer/internal/platform/logger"
)

// TemplateName is the page template registered by Templates.
const TemplateName = "dashboard.html"

// ExportPath serves the CSV download.
const ExportPath = "/dashboard/export.csv"

//go:embed templates/*.html
var templateFS embed.FS

// Templates parses the embedded page templates. Register them with gin.Engine.SetHTMLTemplate.
func Templates() *template.Template {
	return template.Must(template.ParseFS(templateFS, "templates/*.html"))
}

// Runner executes dashboard cycles.
// Following Go convention: interfaces are defined by the consumer (handler), not the provider (usecase).
type Runner interface {
	Run(ctx context.Context, in entity.Inputs) (entity.DisplayBundle, error)
	History(ctx context.Context, in entity.Inputs) (market.PriceSeries, error)
}

// SymbolLister returns the selectable symbols in display order.
type SymbolLister interface {
	ListActiveCodes(ctx context.Context) ([]string, error)
}

// DashboardHandler serves the page, its JSON form and the CSV export.
type DashboardHandler struct {
	runner   Runner
	symbols  SymbolLister
	defaults entity.Inputs
}

// NewDashboardHandler creates a DashboardHandler. defaults fill in whatever the query omits.
func NewDashboardHandler(runner Runner, symbols SymbolLister, defaults entity.Inputs) *DashboardHandler {
	return &DashboardHandler{runner: runner, symbols: symbols, defaults: defaults}
}

// pageView is the data the page template renders.
type pageView struct {
	Symbols   []string
	Symbol    string
	Start     string
	End       string
	Error     string
	DateRange string
	Columns   []string
	Rows      []presentation.Row
	FigureIDs []string
	Figures   []presentation.Figure
	Summary   presentation.SummaryPanel
	ExportURL string
}

// Page は入力フォーム・表・チャート・サマリーを含むHTMLページを返します。
// 入力が変わるたびにフォームが再送信され、1サイクルを最初から実行し直します。
//
// エンドポイント例:
// GET /?symbol=AAPL&start=2019-07-06&end=2019-07-10
func (h *DashboardHandler) Page(c *gin.Context) {
	ctx := c.Request.Context()
	in, codes, status, err := h.inputs(c)

	view := pageView{
		Symbols: codes,
		Symbol:  in.Symbol,
		Start:   formatDate(in.Start),
		End:     formatDate(in.End),
		Columns: presentation.TableColumns,
	}
	if err != nil {
		view.Error = err.Error()
		c.HTML(status, TemplateName, view)
		return
	}

	bundle, err := h.runner.Run(ctx, in)
	if err != nil {
		// 失敗したサイクルのチャートは表示しない
		view.Error = errorMessage(err)
		c.HTML(statusFor(err), TemplateName, view)
		return
	}

	view.DateRange = presentation.DateRange(bundle)
	view.Rows = presentation.Table(bundle)
	view.Figures = presentation.Figures(bundle)
	for _, f := range view.Figures {
		view.FigureIDs = append(view.FigureIDs, f.ID)
	}
	view.Summary = presentation.Summary(bundle)
	view.ExportURL = exportURL(bundle.Symbol, in)
	c.HTML(http.StatusOK, TemplateName, view)
}

// Get は1サイクルの結果をJSONで返します。
//
// エンドポイント例:
// GET /api/dashboard?symbol=AAPL&start=2019-07-06&end=2019-07-10
func (h *DashboardHandler) Get(c *gin.Context) {
	in, _, status, err := h.inputs(c)
	if err != nil {
		c.JSON(status, api.ErrorResponse{Error: err.Error()})
		return
	}

	bundle, err := h.runner.Run(c.Request.Context(), in)
	if err != nil {
		c.JSON(statusFor(err), api.ErrorResponse{Error: errorMessage(err)})
		return
	}

	c.JSON(http.StatusOK, dto.DashboardResponse{
		Symbol:      bundle.Symbol,
		Start:       formatDate(bundle.Start),
		End:         formatDate(bundle.End),
		Provider:    bundle.Provider,
		DateRange:   presentation.DateRange(bundle),
		GeneratedAt: bundle.GeneratedAt,
		LivePrice:   bundle.LivePrice,
		MarketCap:   bundle.Summary.MarketCap,
		PERatio:     bundle.Summary.PERatio,
		Summary:     presentation.Summary(bundle),
		Table:       presentation.Table(bundle),
		Indicators: dto.Indicators{
			MACD:       bundle.MACD.Values,
			MACDSignal: bundle.MACDSignal.Values,
			RSI:        bundle.RSI.Values,
		},
		Figures:   presentation.Figures(bundle),
		ExportURL: exportURL(bundle.Symbol, in),
	})
}

// ExportCSV は期間内の日足を {symbol}_stock_data.csv としてダウンロードさせます。
//
// エンドポイント例:
// GET /dashboard/export.csv?symbol=AAPL&start=2019-07-06&end=2019-07-10
func (h *DashboardHandler) ExportCSV(c *gin.Context) {
	in, _, status, err := h.inputs(c)
	if err != nil {
		c.JSON(status, api.ErrorResponse{Error: err.Error()})
		return
	}

	series, err := h.runner.History(c.Request.Context(), in)
	if err != nil {
		c.JSON(statusFor(err), api.ErrorResponse{Error: errorMessage(err)})
		return
	}

	data, err := presentation.EncodeCSV(series)
	if err != nil {
		slog.Error("csv encode failed", append(logger.Attrs(c.Request.Context()), "error", err)...)
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "csv encode failed"})
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", presentation.CSVFilename(series.Symbol)))
	c.Data(http.StatusOK, presentation.CSVContentType, data)
}

// inputs binds symbol/start/end from the query, fills defaults and checks the symbol against
// the catalog. It also returns the catalog codes for the symbol selector.
func (h *DashboardHandler) inputs(c *gin.Context) (entity.Inputs, []string, int, error) {
	in := h.defaults
	q := c.Request.URL.Query()

	var params api.DashboardParams
	if err := runtime.BindQueryParameter("form", true, false, "symbol", q, &params.Symbol); err != nil {
		return in, nil, http.StatusBadRequest, fmt.Errorf("invalid symbol: %w", err)
	}
	if err := runtime.BindQueryParameter("form", true, false, "start", q, &params.Start); err != nil {
		return in, nil, http.StatusBadRequest, fmt.Errorf("invalid start date: %w", err)
	}
	if err := runtime.BindQueryParameter("form", true, false, "end", q, &params.End); err != nil {
		return in, nil, http.StatusBadRequest, fmt.Errorf("invalid end date: %w", err)
	}
	if params.Symbol != nil && strings.TrimSpace(*params.Symbol) != "" {
		in.Symbol = strings.ToUpper(strings.TrimSpace(*params.Symbol))
	}
	if params.Start != nil {
		in.Start = params.Start.Time
	}
	if params.End != nil {
		in.End = params.End.Time
	}

	codes, err := h.symbols.ListActiveCodes(c.Request.Context())
	if err != nil {
		slog.Error("failed to list symbols", append(logger.Attrs(c.Request.Context()), "error", err)...)
		return in, nil, http.StatusInternalServerError, errors.New("symbol catalog unavailable")
	}
	if !slices.Contains(codes, in.Symbol) {
		return in, codes, http.StatusBadRequest, fmt.Errorf("unknown symbol %q, choose one of %s", in.Symbol, strings.Join(codes, ", "))
	}
	return in, codes, http.StatusOK, nil
}

// statusFor maps a cycle error to an HTTP status.
func statusFor(err error) int {
	var insufficient *engine.InsufficientDataError
	var fetch *mdusecase.FetchError
	switch {
	case errors.Is(err, dashusecase.ErrInvalidInputs), errors.Is(err, mdusecase.ErrInvalidRange):
		return http.StatusBadRequest
	case errors.As(err, &fetch):
		return http.StatusBadGateway
	case errors.As(err, &insufficient):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// errorMessage is the text shown to the user for a failed cycle.
func errorMessage(err error) string {
	var insufficient *engine.InsufficientDataError
	if errors.As(err, &insufficient) {
		return fmt.Sprintf("Not enough data for the indicators: %s. Choose a longer date range.", insufficient.Error())
	}
	if statusFor(err) == http.StatusInternalServerError {
		return "internal error"
	}
	return err.Error()
}

func exportURL(symbol string, in entity.Inputs) string {
	q := url.Values{}
	q.Set("symbol", symbol)
	q.Set("start", formatDate(in.Start))
	q.Set("end", formatDate(in.End))
	return ExportPath + "?" + q.Encode()
}

func formatDate(t time.Time) string {
	return t.Format(market.DateLayout)
}
