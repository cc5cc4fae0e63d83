// Package http builds the outbound HTTP client shared by the market data providers.
package http

import (
	"net"
	"net/http"
	"time"

	"stock_analyzer/internal/platform/logger"
)

// NewHTTPClient はマーケットデータプロバイダ呼び出し用のHTTPクライアントを作成します。
//
// 設定:
//   - Proxy: 環境変数（HTTP_PROXYなど）が設定されている場合に使用
//   - Dialer.Timeout: TCP接続タイムアウト
//   - MaxIdleConnsPerHost: 同一プロバイダへの接続を使い回す
//   - ResponseHeaderTimeout: ヘッダーが返らないプロバイダを早めに打ち切る
//   - Client.Timeout: リクエスト全体のタイムアウト（呼び出し元から渡される）
//
// リクエストのcontextにリクエストIDがあれば X-Request-ID ヘッダーとして転送します。
//
// 注意:
//   - http.DefaultClientにはタイムアウトがないため、常にこのクライアントを使用すること
func NewHTTPClient(timeout time.Duration) *http.Client {
	t := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   5 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   10,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   5 * time.Second,
		ResponseHeaderTimeout: timeout,
	}
	return &http.Client{Timeout: timeout, Transport: &requestIDTransport{next: t}}
}

// requestIDTransport copies the request ID from the context onto outgoing requests.
type requestIDTransport struct {
	next http.RoundTripper
}

func (t *requestIDTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	id := logger.RequestID(req.Context())
	if id == "" || req.Header.Get(logger.RequestIDHeader) != "" {
		return t.next.RoundTrip(req)
	}
	// RoundTripperは元のリクエストを変更してはいけない
	r := req.Clone(req.Context())
	r.Header.Set(logger.RequestIDHeader, id)
	return t.next.RoundTrip(r)
}
