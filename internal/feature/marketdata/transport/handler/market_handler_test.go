package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/guregu/null/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stock_analyzer/internal/feature/marketdata/domain/entity"
	"stock_analyzer/internal/feature/marketdata/usecase"
)

// mockMarketData はMarketDataインターフェースのモック実装です。
type mockMarketData struct {
	FetchHistoryFunc   func(ctx context.Context, symbol string, start, end time.Time) (entity.PriceSeries, error)
	FetchLivePriceFunc func(ctx context.Context, symbol string) (null.Float, error)
	FetchSummaryFunc   func(ctx context.Context, symbol string) (entity.Summary, error)
}

func (m *mockMarketData) ProviderName() string { return "mock" }

func (m *mockMarketData) FetchHistory(ctx context.Context, symbol string, start, end time.Time) (entity.PriceSeries, error) {
	if m.FetchHistoryFunc != nil {
		return m.FetchHistoryFunc(ctx, symbol, start, end)
	}
	return entity.PriceSeries{}, nil
}

func (m *mockMarketData) FetchLivePrice(ctx context.Context, symbol string) (null.Float, error) {
	if m.FetchLivePriceFunc != nil {
		return m.FetchLivePriceFunc(ctx, symbol)
	}
	return null.Float{}, nil
}

func (m *mockMarketData) FetchSummary(ctx context.Context, symbol string) (entity.Summary, error) {
	if m.FetchSummaryFunc != nil {
		return m.FetchSummaryFunc(ctx, symbol)
	}
	return entity.Summary{}, nil
}

// mockCatalog はSymbolCatalogのモック実装です。
type mockCatalog struct {
	listed map[string]bool
	err    error
}

func (m *mockCatalog) IsListed(ctx context.Context, code string) (bool, error) {
	return m.listed[code], m.err
}

func day(d int) time.Time { return time.Date(2019, 7, d, 0, 0, 0, 0, time.UTC) }

func fetchErr(op string, err error) error {
	return &usecase.FetchError{Symbol: "AAPL", Op: op, Provider: "mock", Err: err}
}

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

func newRouter(md MarketData, catalog SymbolCatalog) *gin.Engine {
	h := NewMarketHandler(md, catalog)
	r := gin.New()
	r.GET("/api/history/:code", h.GetHistory)
	r.GET("/api/quote/:code", h.GetQuote)
	return r
}

func serve(r *gin.Engine, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, path, nil)
	r.ServeHTTP(w, req)
	return w
}

func TestMarketHandler_GetHistory(t *testing.T) {
	t.Parallel()

	var gotSymbol string
	var gotStart, gotEnd time.Time
	md := &mockMarketData{
		FetchHistoryFunc: func(ctx context.Context, symbol string, start, end time.Time) (entity.PriceSeries, error) {
			gotSymbol, gotStart, gotEnd = symbol, start, end
			return entity.PriceSeries{Symbol: symbol, Start: start, End: end, Bars: []entity.PriceBar{
				{Time: day(8), Open: 50.2, High: 50.35, Low: 49.6, Close: 50, Volume: 84064000},
				{Time: day(9), Open: 50.46, High: 50.88, Low: 50.4, Close: 50.31, Volume: 101290000},
			}}, nil
		},
	}

	w := serve(newRouter(md, nil), "/api/history/aapl?start=2019-07-06&end=2019-07-10")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "AAPL", gotSymbol)
	assert.True(t, gotStart.Equal(day(6)))
	assert.True(t, gotEnd.Equal(day(10)))
	assert.JSONEq(t, `{
		"symbol": "AAPL", "start": "2019-07-06", "end": "2019-07-10", "provider": "mock",
		"bars": [
			{"date": "2019-07-08", "open": 50.2, "high": 50.35, "low": 49.6, "close": 50, "volume": 84064000},
			{"date": "2019-07-09", "open": 50.46, "high": 50.88, "low": 50.4, "close": 50.31, "volume": 101290000}
		]
	}`, w.Body.String())
}

func TestMarketHandler_GetHistory_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		path           string
		historyErr     error
		catalog        SymbolCatalog
		expectedStatus int
		expectedBody   string
	}{
		{
			name:           "missing start",
			path:           "/api/history/AAPL?end=2019-07-10",
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "malformed end",
			path:           "/api/history/AAPL?start=2019-07-06&end=07/10/2019",
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "start after end",
			path:           "/api/history/AAPL?start=2019-07-10&end=2019-07-06",
			historyErr:     fmt.Errorf("%w: start after end", usecase.ErrInvalidRange),
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "symbol outside catalog",
			path:           "/api/history/ZZZZ?start=2019-07-06&end=2019-07-10",
			catalog:        &mockCatalog{listed: map[string]bool{"AAPL": true}},
			expectedStatus: http.StatusNotFound,
			expectedBody:   `{"error":"unknown symbol ZZZZ"}`,
		},
		{
			name:           "catalog failure",
			path:           "/api/history/AAPL?start=2019-07-06&end=2019-07-10",
			catalog:        &mockCatalog{err: errors.New("db down")},
			expectedStatus: http.StatusInternalServerError,
		},
		{
			name:           "provider does not know the symbol",
			path:           "/api/history/AAPL?start=2019-07-06&end=2019-07-10",
			historyErr:     fetchErr(usecase.OpHistory, usecase.ErrUnknownSymbol),
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "no data in range",
			path:           "/api/history/AAPL?start=2019-07-06&end=2019-07-07",
			historyErr:     fetchErr(usecase.OpHistory, usecase.ErrNoData),
			expectedStatus: http.StatusBadGateway,
			expectedBody:   `{"error":"fetch history for AAPL from mock: no data returned"}`,
		},
		{
			name:           "unexpected error",
			path:           "/api/history/AAPL?start=2019-07-06&end=2019-07-10",
			historyErr:     errors.New("boom"),
			expectedStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			md := &mockMarketData{
				FetchHistoryFunc: func(ctx context.Context, symbol string, start, end time.Time) (entity.PriceSeries, error) {
					return entity.PriceSeries{}, tt.historyErr
				},
			}

			w := serve(newRouter(md, tt.catalog), tt.path)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedBody != "" {
				assert.JSONEq(t, tt.expectedBody, w.Body.String())
			}
		})
	}
}

func TestMarketHandler_GetQuote(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		livePrice      null.Float
		liveErr        error
		summary        entity.Summary
		summaryErr     error
		expectedStatus int
		expectedBody   string
	}{
		{
			name:           "all values present",
			livePrice:      null.FloatFrom(203.23),
			summary:        entity.Summary{MarketCap: null.FloatFrom(9.2e11), PERatio: null.FloatFrom(17.1)},
			expectedStatus: http.StatusOK,
			expectedBody:   `{"symbol":"AAPL","live_price":203.23,"market_cap":920000000000,"pe_ratio":17.1}`,
		},
		{
			name:           "market closed and no pe",
			summary:        entity.Summary{MarketCap: null.FloatFrom(9.2e11)},
			expectedStatus: http.StatusOK,
			expectedBody:   `{"symbol":"AAPL","live_price":null,"market_cap":920000000000,"pe_ratio":null}`,
		},
		{
			name:           "live price fetch fails",
			liveErr:        fetchErr(usecase.OpLivePrice, errors.New("timeout")),
			expectedStatus: http.StatusBadGateway,
		},
		{
			name:           "summary fetch fails",
			summaryErr:     fetchErr(usecase.OpSummary, errors.New("timeout")),
			expectedStatus: http.StatusBadGateway,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			md := &mockMarketData{
				FetchLivePriceFunc: func(ctx context.Context, symbol string) (null.Float, error) {
					return tt.livePrice, tt.liveErr
				},
				FetchSummaryFunc: func(ctx context.Context, symbol string) (entity.Summary, error) {
					return tt.summary, tt.summaryErr
				},
			}

			w := serve(newRouter(md, &mockCatalog{listed: map[string]bool{"AAPL": true}}), "/api/quote/AAPL")

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedBody != "" {
				assert.JSONEq(t, tt.expectedBody, w.Body.String())
			}
		})
	}
}
