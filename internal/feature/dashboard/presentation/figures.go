package presentation

import (
	"github.com/guregu/null/v6"

	"stock_analyzer/internal/feature/dashboard/domain/entity"
	market "stock_analyzer/internal/feature/marketdata/domain/entity"
)

// Figure IDs, also used as DOM element IDs on the page.
const (
	FigureClose       = "close"
	FigureVolume      = "volume"
	FigureMACD        = "macd"
	FigureRSI         = "rsi"
	FigureCandlestick = "candlestick"
)

// Figure is a Plotly figure spec: the browser passes Data and Layout to Plotly.newPlot as is.
type Figure struct {
	ID     string         `json:"id"`
	Title  string         `json:"title"`
	Data   []Trace        `json:"data"`
	Layout map[string]any `json:"layout"`
}

// Trace is the subset of Plotly trace attributes the dashboard uses.
// Undefined points are encoded as null so Plotly leaves a gap.
type Trace struct {
	Type  string       `json:"type"`
	Mode  string       `json:"mode,omitempty"`
	Name  string       `json:"name,omitempty"`
	X     []string     `json:"x"`
	Y     []null.Float `json:"y,omitempty"`
	Open  []float64    `json:"open,omitempty"`
	High  []float64    `json:"high,omitempty"`
	Low   []float64    `json:"low,omitempty"`
	Close []float64    `json:"close,omitempty"`
	XAxis string       `json:"xaxis,omitempty"`
	YAxis string       `json:"yaxis,omitempty"`
}

// Figures returns the four line charts (Close, Volume, MACD, RSI) followed by the
// candlestick chart with volume bars underneath on a shared time axis.
func Figures(b entity.DisplayBundle) []Figure {
	x := dates(b.Series)
	closes := make([]null.Float, 0, b.Series.Len())
	volumes := make([]null.Float, 0, b.Series.Len())
	for _, bar := range b.Series.Bars {
		closes = append(closes, null.FloatFrom(bar.Close))
		volumes = append(volumes, null.FloatFrom(float64(bar.Volume)))
	}

	macd := line(FigureMACD, "MACD Chart", "MACD", x, b.MACD.Values)
	if len(b.MACDSignal.Values) > 0 {
		macd.Data = append(macd.Data, Trace{Type: "scatter", Mode: "lines", Name: "Signal", X: x, Y: b.MACDSignal.Values})
		macd.Layout["showlegend"] = true
	}

	rsi := line(FigureRSI, "RSI Chart", "RSI", x, b.RSI.Values)
	rsi.Layout["yaxis"] = map[string]any{"title": "RSI", "range": []int{0, 100}}

	return []Figure{
		line(FigureClose, "Closing Price Chart", "Price", x, closes),
		line(FigureVolume, "Volume Chart", "Volume", x, volumes),
		macd,
		rsi,
		candlestick(b.Series, x, volumes),
	}
}

func line(id, title, yTitle string, x []string, y []null.Float) Figure {
	return Figure{
		ID:    id,
		Title: title,
		Data:  []Trace{{Type: "scatter", Mode: "lines", Name: yTitle, X: x, Y: y}},
		Layout: map[string]any{
			"title":      title,
			"xaxis":      map[string]any{"title": "Date", "type": "date"},
			"yaxis":      map[string]any{"title": yTitle},
			"hovermode":  "x",
			"showlegend": false,
		},
	}
}

// candlestick puts OHLC on the upper axis pair and volume bars on the lower one.
// xaxis2 matches xaxis so zooming either panel moves both.
func candlestick(s market.PriceSeries, x []string, volumes []null.Float) Figure {
	n := s.Len()
	o, h, l, c := make([]float64, 0, n), make([]float64, 0, n), make([]float64, 0, n), make([]float64, 0, n)
	for _, bar := range s.Bars {
		o = append(o, bar.Open)
		h = append(h, bar.High)
		l = append(l, bar.Low)
		c = append(c, bar.Close)
	}

	return Figure{
		ID:    FigureCandlestick,
		Title: "Candlestick Chart",
		Data: []Trace{
			{Type: "candlestick", Name: s.Symbol, X: x, Open: o, High: h, Low: l, Close: c, XAxis: "x", YAxis: "y"},
			{Type: "bar", Name: "Volume", X: x, Y: volumes, XAxis: "x2", YAxis: "y2"},
		},
		Layout: map[string]any{
			"margin":     map[string]any{"t": 0, "b": 0},
			"showlegend": false,
			"xaxis": map[string]any{
				"type":           "date",
				"anchor":         "y",
				"showticklabels": false,
				"rangeslider":    map[string]any{"visible": false},
			},
			"xaxis2": map[string]any{"type": "date", "anchor": "y2", "matches": "x"},
			"yaxis":  map[string]any{"domain": []float64{0.27, 1}, "title": "Price"},
			"yaxis2": map[string]any{"domain": []float64{0, 0.25}, "title": "Volume"},
		},
	}
}

func dates(s market.PriceSeries) []string {
	out := make([]string, 0, s.Len())
	for _, bar := range s.Bars {
		out = append(out, bar.Time.Format(market.DateLayout))
	}
	return out
}
