package twelvedata

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"stock_analyzer/internal/feature/marketdata/domain/entity"
	"stock_analyzer/internal/feature/marketdata/usecase"
	"stock_analyzer/internal/platform/externalapi/twelvedata/dto"
	"stock_analyzer/internal/shared/ratelimiter"
)

// ProviderName is the name reported in logs, errors and metrics.
const ProviderName = "twelvedata"

// maxOutputSize is the largest page the time_series endpoint returns.
const maxOutputSize = 5000

// TwelveDataMarket はTwelve Data外部APIから株価データを取得するProvider実装です。
type TwelveDataMarket struct {
	cfg     Config
	client  *http.Client
	limiter ratelimiter.Limiter
}

// TwelveDataMarketがProviderを実装していることをコンパイル時に検証します。
var _ usecase.Provider = (*TwelveDataMarket)(nil)

// NewTwelveDataMarket は指定された設定とHTTPクライアントでTwelveDataMarketの新しいインスタンスを生成します。
// limiter は nil でもよい。
func NewTwelveDataMarket(cfg Config, client *http.Client, limiter ratelimiter.Limiter) *TwelveDataMarket {
	return &TwelveDataMarket{cfg: cfg, client: client, limiter: limiter}
}

func (t *TwelveDataMarket) Name() string { return ProviderName }

// DailyBars は [from, to) の日足を昇順で取得します。
func (t *TwelveDataMarket) DailyBars(ctx context.Context, symbol string, from, to time.Time) ([]entity.PriceBar, error) {
	q := url.Values{}
	// クエリパラメータを追加
	q.Set("symbol", symbol)
	q.Set("interval", "1day")
	q.Set("start_date", from.Format(entity.DateLayout))
	q.Set("end_date", to.Format(entity.DateLayout))
	q.Set("order", "ASC")
	q.Set("outputsize", strconv.Itoa(maxOutputSize))

	candles, err := t.timeSeries(ctx, q)
	if err != nil {
		return nil, err
	}

	// end_date の扱いはプランによって異なるため、ここで [from, to) に揃える
	out := candles[:0]
	for _, c := range candles {
		if c.Time.Before(from) || !c.Time.Before(to) {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

// LatestBar は直近の日足を1本だけ取得します。
func (t *TwelveDataMarket) LatestBar(ctx context.Context, symbol string) (*entity.PriceBar, error) {
	q := url.Values{}
	q.Set("symbol", symbol)
	q.Set("interval", "1day")
	q.Set("outputsize", "1")

	candles, err := t.timeSeries(ctx, q)
	if err != nil {
		return nil, err
	}
	if len(candles) == 0 {
		return nil, nil
	}
	latest := candles[0]
	for _, c := range candles[1:] {
		if c.Time.After(latest.Time) {
			latest = c
		}
	}
	return &latest, nil
}

// Summary は statistics エンドポイントから時価総額と実績PERを取得します。
func (t *TwelveDataMarket) Summary(ctx context.Context, symbol string) (entity.Summary, error) {
	q := url.Values{}
	q.Set("symbol", symbol)

	var body dto.StatisticsResponse
	if err := t.get(ctx, "statistics", q, &body); err != nil {
		return entity.Summary{}, err
	}
	if body.Status == "error" {
		return entity.Summary{}, apiError(body.Code, body.Message)
	}

	m := body.Statistics.ValuationsMetrics
	return entity.Summary{MarketCap: m.MarketCapitalization, PERatio: m.TrailingPE}, nil
}

// timeSeries はTwelve Data APIから時系列株価データを取得し、entity.PriceBarのスライスとして返します。
func (t *TwelveDataMarket) timeSeries(ctx context.Context, q url.Values) ([]entity.PriceBar, error) {
	var body dto.TimeSeriesResponse
	if err := t.get(ctx, "time_series", q, &body); err != nil {
		return nil, err
	}
	if body.Status == "error" {
		return nil, apiError(body.Code, body.Message)
	}

	candles := make([]entity.PriceBar, 0, len(body.Values))
	for _, v := range body.Values {

		// タイムスタンプをパース
		tm, err := time.Parse("2006-01-02 15:04:05", v.Datetime)
		if err != nil {
			tm, err = time.Parse(entity.DateLayout, v.Datetime)
			if err != nil {
				return nil, fmt.Errorf("parse time %q: %w", v.Datetime, err)
			}
		}
		// 始値をパース
		o, err := strconv.ParseFloat(v.Open, 64)
		if err != nil {
			return nil, fmt.Errorf("parse open %q: %w", v.Open, err)
		}
		// 高値をパース
		h, err := strconv.ParseFloat(v.High, 64)
		if err != nil {
			return nil, fmt.Errorf("parse high %q: %w", v.High, err)
		}
		// 安値をパース
		l, err := strconv.ParseFloat(v.Low, 64)
		if err != nil {
			return nil, fmt.Errorf("parse low %q: %w", v.Low, err)
		}
		// 終値をパース
		c, err := strconv.ParseFloat(v.Close, 64)
		if err != nil {
			return nil, fmt.Errorf("parse close %q: %w", v.Close, err)
		}
		// 出来高をパース
		vol64, err := strconv.ParseInt(v.Volume, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("parse volume %q: %w", v.Volume, err)
		}

		// ドメインエンティティに変換
		candles = append(candles, entity.PriceBar{
			Time:   entity.SessionDate(tm),
			Open:   o,
			High:   h,
			Low:    l,
			Close:  c,
			Volume: vol64,
		})
	}
	return candles, nil
}

func (t *TwelveDataMarket) get(ctx context.Context, endpoint string, q url.Values, out any) error {
	if t.limiter != nil {
		if err := t.limiter.Wait(ctx); err != nil {
			return err
		}
	}

	q.Set("apikey", t.cfg.TwelveDataAPIKey)
	// URLを生成
	u := fmt.Sprintf("%s/%s?%s", t.cfg.BaseURL, endpoint, q.Encode())

	// リクエストオブジェクトを作成
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}

	// リクエストを実行
	res, err := t.client.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		if err := res.Body.Close(); err != nil {
			slog.Warn("failed to close response body", "error", err)
		}
	}()

	if res.StatusCode >= 400 {
		return fmt.Errorf("twelvedata http %d", res.StatusCode)
	}

	// JSONレスポンスをDTOにデコード
	return json.NewDecoder(res.Body).Decode(out)
}

// apiError は status=error のレスポンスをゲートウェイのエラーに対応付けます。
func apiError(code int, message string) error {
	switch {
	case code == http.StatusNotFound:
		return fmt.Errorf("%w: %s", usecase.ErrUnknownSymbol, message)
	case strings.Contains(message, "No data is available"):
		return fmt.Errorf("%w: %s", usecase.ErrNoData, message)
	default:
		return fmt.Errorf("twelvedata: %s", message)
	}
}
