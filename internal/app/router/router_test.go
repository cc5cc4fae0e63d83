package router

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/guregu/null/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stock_analyzer/internal/feature/dashboard/domain/entity"
	dashboardhandler "stock_analyzer/internal/feature/dashboard/transport/handler"
	market "stock_analyzer/internal/feature/marketdata/domain/entity"
	markethandler "stock_analyzer/internal/feature/marketdata/transport/handler"
	symbolentity "stock_analyzer/internal/feature/symbollist/domain/entity"
	symbollisthandler "stock_analyzer/internal/feature/symbollist/transport/handler"
	platformhandler "stock_analyzer/internal/platform/http/handler"
	"stock_analyzer/internal/platform/logger"
)

type stubRunner struct{}

func (stubRunner) Run(ctx context.Context, in entity.Inputs) (entity.DisplayBundle, error) {
	return entity.DisplayBundle{}, errors.New("not used")
}

func (stubRunner) History(ctx context.Context, in entity.Inputs) (market.PriceSeries, error) {
	return market.PriceSeries{}, errors.New("not used")
}

type stubSymbols struct{}

func (stubSymbols) ListActiveCodes(ctx context.Context) ([]string, error) {
	return []string{"AAPL"}, nil
}

func (stubSymbols) ListActiveSymbols(ctx context.Context) ([]symbolentity.Symbol, error) {
	return []symbolentity.Symbol{{Code: "AAPL", Name: "Apple Inc."}}, nil
}

func (stubSymbols) IsListed(ctx context.Context, code string) (bool, error) { return code == "AAPL", nil }

type stubMarket struct{}

func (stubMarket) ProviderName() string { return "stub" }

func (stubMarket) FetchHistory(ctx context.Context, symbol string, start, end time.Time) (market.PriceSeries, error) {
	return market.PriceSeries{Symbol: symbol, Start: start, End: end}, nil
}

func (stubMarket) FetchLivePrice(ctx context.Context, symbol string) (null.Float, error) {
	return null.FloatFrom(1), nil
}

func (stubMarket) FetchSummary(ctx context.Context, symbol string) (market.Summary, error) {
	return market.Summary{}, nil
}

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

func newTestRouter(opts Options) *gin.Engine {
	return NewRouter(Handlers{
		Dashboard: dashboardhandler.NewDashboardHandler(stubRunner{}, stubSymbols{}, entity.DefaultInputs()),
		Market:    markethandler.NewMarketHandler(stubMarket{}, stubSymbols{}),
		Symbol:    symbollisthandler.NewSymbolHandler(stubSymbols{}, "AAPL"),
		Health:    platformhandler.NewHealthHandler(nil),
		Metrics: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("# metrics"))
		}),
	}, opts)
}

func TestNewRouter_Routes(t *testing.T) {
	t.Parallel()

	r := newTestRouter(Options{})

	tests := []struct {
		method string
		path   string
		want   int
	}{
		{http.MethodGet, "/healthz", http.StatusOK},
		{http.MethodHead, "/healthz", http.StatusOK},
		{http.MethodOptions, "/healthz", http.StatusNoContent},
		{http.MethodGet, "/metrics", http.StatusOK},
		{http.MethodGet, "/symbols", http.StatusOK},
		{http.MethodGet, "/api/history/AAPL?start=2019-07-06&end=2019-07-10", http.StatusOK},
		{http.MethodGet, "/api/quote/AAPL", http.StatusOK},
		{http.MethodGet, "/api/dashboard?symbol=IBM", http.StatusBadRequest},
		{http.MethodGet, "/dashboard?symbol=IBM", http.StatusBadRequest},
		{http.MethodGet, "/nope", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			t.Parallel()

			req := httptest.NewRequest(tt.method, tt.path, nil)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.want, w.Code)
			assert.NotEmpty(t, w.Header().Get(logger.RequestIDHeader))
		})
	}
}

func TestNewRouter_CORS(t *testing.T) {
	t.Parallel()

	r := newTestRouter(Options{CORSOrigins: []string{"http://localhost:3000"}})

	req := httptest.NewRequest(http.MethodGet, "/symbols", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestTimeout(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		d            time.Duration
		wantDeadline bool
	}{
		{name: "bounded", d: time.Minute, wantDeadline: true},
		{name: "disabled", d: 0, wantDeadline: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var hasDeadline bool
			r := gin.New()
			r.Use(Timeout(tt.d))
			r.GET("/", func(c *gin.Context) {
				_, hasDeadline = c.Request.Context().Deadline()
				c.Status(http.StatusNoContent)
			})

			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

			assert.Equal(t, http.StatusNoContent, w.Code)
			assert.Equal(t, tt.wantDeadline, hasDeadline)
		})
	}
}
