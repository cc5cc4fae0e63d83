package yahoo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"stock_analyzer/internal/feature/marketdata/domain/entity"
	"stock_analyzer/internal/feature/marketdata/usecase"
	"stock_analyzer/internal/platform/externalapi/yahoo/dto"
	"stock_analyzer/internal/shared/ratelimiter"
)

// ProviderName is the name reported in logs, errors and metrics.
const ProviderName = "yahoo"

// errUnauthorized is returned by getJSON on HTTP 401, which the quote endpoint answers for a missing or stale crumb.
var errUnauthorized = errors.New("yahoo http 401")

// Client はYahoo Financeから日足・会社概要を取得するProvider実装です。
// quote エンドポイントはセッションCookieとcrumbを要求するため、取得したcrumbを保持します。
type Client struct {
	cfg     Config
	client  *http.Client
	limiter ratelimiter.Limiter

	mu    sync.Mutex
	crumb string
}

// ClientがProviderを実装していることをコンパイル時に検証します。
var _ usecase.Provider = (*Client)(nil)

// NewClient は指定された設定とHTTPクライアントでClientを生成します。limiter は nil でもよい。
// client に CookieJar がなければ、Jar を持つコピーを使います（呼び出し元のクライアントは変更しません）。
func NewClient(cfg Config, client *http.Client, limiter ratelimiter.Limiter) *Client {
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}
	if client.Jar == nil {
		jar, _ := cookiejar.New(nil) // nil options never fail
		hc := *client
		hc.Jar = jar
		client = &hc
	}
	return &Client{cfg: cfg, client: client, limiter: limiter}
}

func (c *Client) Name() string { return ProviderName }

// DailyBars は [from, to) の日足を取得します。Yahoo の period2 は排他的です。
func (c *Client) DailyBars(ctx context.Context, symbol string, from, to time.Time) ([]entity.PriceBar, error) {
	q := url.Values{}
	q.Set("period1", strconv.FormatInt(from.Unix(), 10))
	q.Set("period2", strconv.FormatInt(to.Unix(), 10))
	q.Set("interval", "1d")
	q.Set("events", "history")

	bars, err := c.chart(ctx, symbol, q)
	if err != nil {
		return nil, err
	}

	out := bars[:0]
	for _, b := range bars {
		if b.Time.Before(from) || !b.Time.Before(to) {
			continue
		}
		out = append(out, b)
	}
	return out, nil
}

// LatestBar は直近の日足を返します。有効な終値がなければ nil を返します。
func (c *Client) LatestBar(ctx context.Context, symbol string) (*entity.PriceBar, error) {
	q := url.Values{}
	q.Set("range", "5d")
	q.Set("interval", "1d")

	bars, err := c.chart(ctx, symbol, q)
	if err != nil {
		return nil, err
	}
	if len(bars) == 0 {
		return nil, nil
	}
	last := bars[len(bars)-1]
	return &last, nil
}

// Summary は quote エンドポイントから時価総額と実績PERを取得します。
// crumb が失効していた場合（401）は一度だけ取り直して再試行します。
func (c *Client) Summary(ctx context.Context, symbol string) (entity.Summary, error) {
	body, err := c.quote(ctx, symbol)
	if errors.Is(err, errUnauthorized) {
		slog.Debug("yahoo crumb rejected, refreshing", "symbol", symbol)
		c.resetCrumb()
		body, err = c.quote(ctx, symbol)
	}
	if err != nil {
		return entity.Summary{}, err
	}
	if e := body.QuoteResponse.Error; e != nil {
		return entity.Summary{}, apiError(e)
	}
	for _, r := range body.QuoteResponse.Result {
		if r.Symbol != symbol {
			continue
		}
		return entity.Summary{MarketCap: r.MarketCap, PERatio: r.TrailingPE}, nil
	}
	return entity.Summary{}, usecase.ErrUnknownSymbol
}

func (c *Client) quote(ctx context.Context, symbol string) (dto.QuoteResponse, error) {
	crumb, err := c.sessionCrumb(ctx)
	if err != nil {
		return dto.QuoteResponse{}, err
	}
	q := url.Values{}
	q.Set("symbols", symbol)
	q.Set("crumb", crumb)
	u := fmt.Sprintf("%s/v7/finance/quote?%s", c.cfg.BaseURL, q.Encode())

	var body dto.QuoteResponse
	if err := c.getJSON(ctx, u, &body); err != nil {
		return dto.QuoteResponse{}, err
	}
	return body, nil
}

// sessionCrumb returns the cached crumb, or obtains a session cookie and a new crumb.
// The lock is held while fetching so concurrent cycles share one handshake.
func (c *Client) sessionCrumb(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.crumb != "" {
		return c.crumb, nil
	}

	// Cookie取得用のURLは404を返すこともあるが、Set-Cookieさえ受け取れればよい
	if c.cfg.CookieURL != "" {
		res, err := c.do(ctx, c.cfg.CookieURL, "text/html")
		if err != nil {
			return "", fmt.Errorf("yahoo session cookie: %w", err)
		}
		closeBody(res)
	}

	res, err := c.do(ctx, c.cfg.BaseURL+"/v1/test/getcrumb", "text/plain")
	if err != nil {
		return "", fmt.Errorf("yahoo crumb: %w", err)
	}
	defer closeBody(res)
	if res.StatusCode != http.StatusOK {
		return "", fmt.Errorf("yahoo crumb: http %d", res.StatusCode)
	}
	b, err := io.ReadAll(io.LimitReader(res.Body, 256))
	if err != nil {
		return "", fmt.Errorf("yahoo crumb: %w", err)
	}
	crumb := strings.TrimSpace(string(b))
	if crumb == "" || strings.ContainsAny(crumb, "{<") {
		return "", fmt.Errorf("yahoo crumb: unexpected body %q", crumb)
	}
	c.crumb = crumb
	return crumb, nil
}

func (c *Client) resetCrumb() {
	c.mu.Lock()
	c.crumb = ""
	c.mu.Unlock()
}

func (c *Client) chart(ctx context.Context, symbol string, q url.Values) ([]entity.PriceBar, error) {
	u := fmt.Sprintf("%s/v8/finance/chart/%s?%s", c.cfg.BaseURL, url.PathEscape(symbol), q.Encode())

	var body dto.ChartResponse
	if err := c.getJSON(ctx, u, &body); err != nil {
		return nil, err
	}
	if e := body.Chart.Error; e != nil {
		return nil, apiError(e)
	}
	if len(body.Chart.Result) == 0 {
		return nil, usecase.ErrNoData
	}
	return toBars(body.Chart.Result[0])
}

// toBars は chart レスポンスをドメインエンティティに変換します。
// OHLC のいずれかが null のセッションはスキップします。
func toBars(r dto.ChartResult) ([]entity.PriceBar, error) {
	if len(r.Timestamp) == 0 {
		return []entity.PriceBar{}, nil
	}
	if len(r.Indicators.Quote) == 0 {
		return nil, fmt.Errorf("yahoo: chart for %s has timestamps but no quote block", r.Meta.Symbol)
	}
	quote := r.Indicators.Quote[0]
	n := len(r.Timestamp)
	if len(quote.Open) != n || len(quote.High) != n || len(quote.Low) != n || len(quote.Close) != n || len(quote.Volume) != n {
		return nil, fmt.Errorf("yahoo: chart for %s has %d timestamps but mismatched quote arrays", r.Meta.Symbol, n)
	}

	bars := make([]entity.PriceBar, 0, n)
	for i, ts := range r.Timestamp {
		if !quote.Open[i].Valid || !quote.High[i].Valid || !quote.Low[i].Valid || !quote.Close[i].Valid {
			continue
		}
		// タイムスタンプは取引所ローカルの寄付時刻なので、オフセットを足して日付を取る
		local := time.Unix(ts+r.Meta.GMTOffset, 0).UTC()
		bars = append(bars, entity.PriceBar{
			Time:   entity.SessionDate(local),
			Open:   quote.Open[i].Float64,
			High:   quote.High[i].Float64,
			Low:    quote.Low[i].Float64,
			Close:  quote.Close[i].Float64,
			Volume: quote.Volume[i].Int64,
		})
	}
	return bars, nil
}

// do sends a paced GET request. The caller closes the body.
func (c *Client) do(ctx context.Context, u, accept string) (*http.Response, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	// リクエストオブジェクトを作成
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.cfg.UserAgent)
	req.Header.Set("Accept", accept)

	// リクエストを実行
	return c.client.Do(req)
}

func (c *Client) getJSON(ctx context.Context, u string, out any) error {
	res, err := c.do(ctx, u, "application/json")
	if err != nil {
		return err
	}
	defer closeBody(res)

	switch {
	case res.StatusCode == http.StatusNotFound:
		return usecase.ErrUnknownSymbol
	case res.StatusCode == http.StatusUnauthorized:
		return errUnauthorized
	case res.StatusCode >= 400:
		return fmt.Errorf("yahoo http %d", res.StatusCode)
	}

	// JSONレスポンスをDTOにデコード
	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return fmt.Errorf("yahoo decode: %w", err)
	}
	return nil
}

func closeBody(res *http.Response) {
	if err := res.Body.Close(); err != nil {
		slog.Warn("failed to close response body", "error", err)
	}
}

func apiError(e *dto.APIError) error {
	if e.Code == "Not Found" {
		return fmt.Errorf("%w: %s", usecase.ErrUnknownSymbol, e.Description)
	}
	return fmt.Errorf("yahoo api error %s: %s", e.Code, e.Description)
}
