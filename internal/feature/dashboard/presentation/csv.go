package presentation

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	market "stock_analyzer/internal/feature/marketdata/domain/entity"
)

// CSVContentType is sent with the export download.
const CSVContentType = "text/csv; charset=utf-8"

// CSVHeader is the first record of every export.
var CSVHeader = []string{"date", "open", "high", "low", "close", "volume"}

// CSVFilename returns "{symbol}_stock_data.csv".
func CSVFilename(symbol string) string {
	return symbol + "_stock_data.csv"
}

// EncodeCSV writes the header and one record per bar. Prices use the shortest decimal form
// that parses back to the same float64.
func EncodeCSV(s market.PriceSeries) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(CSVHeader); err != nil {
		return nil, err
	}
	for _, b := range s.Bars {
		rec := []string{
			b.Time.Format(market.DateLayout),
			strconv.FormatFloat(b.Open, 'f', -1, 64),
			strconv.FormatFloat(b.High, 'f', -1, 64),
			strconv.FormatFloat(b.Low, 'f', -1, 64),
			strconv.FormatFloat(b.Close, 'f', -1, 64),
			strconv.FormatInt(b.Volume, 10),
		}
		if err := w.Write(rec); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// DecodeCSV parses an export produced by EncodeCSV.
func DecodeCSV(data []byte) ([]market.PriceBar, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = len(CSVHeader)

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	for i, name := range CSVHeader {
		if header[i] != name {
			return nil, fmt.Errorf("unexpected csv column %d: %q, want %q", i+1, header[i], name)
		}
	}

	var bars []market.PriceBar
	for line := 2; ; line++ {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		t, err := market.ParseDate(rec[0])
		if err != nil {
			return nil, fmt.Errorf("line %d: parse date %q: %w", line, rec[0], err)
		}
		var ohlc [4]float64
		for i := range ohlc {
			v, err := strconv.ParseFloat(rec[i+1], 64)
			if err != nil {
				return nil, fmt.Errorf("line %d: parse %s %q: %w", line, CSVHeader[i+1], rec[i+1], err)
			}
			ohlc[i] = v
		}
		vol, err := strconv.ParseInt(rec[5], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: parse volume %q: %w", line, rec[5], err)
		}

		bars = append(bars, market.PriceBar{Time: t, Open: ohlc[0], High: ohlc[1], Low: ohlc[2], Close: ohlc[3], Volume: vol})
	}
	return bars, nil
}
