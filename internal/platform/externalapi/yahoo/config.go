// Package yahoo provides a client for the Yahoo Finance chart and quote API.
package yahoo

import "time"

// Config holds configuration for the Yahoo Finance client.
type Config struct {
	BaseURL            string        // Base URL for the API (e.g., "https://query1.finance.yahoo.com")
	CookieURL          string        // Visited once to obtain the session cookie the crumb is bound to; empty skips it
	UserAgent          string        // Yahoo rejects requests without a browser-like User-Agent
	Timeout            time.Duration // HTTP request timeout
	RateLimitPerMinute int           // 0 disables client-side pacing
}

// DefaultConfig returns the configuration used when nothing is overridden.
func DefaultConfig() Config {
	return Config{
		BaseURL:   "https://query1.finance.yahoo.com",
		CookieURL: "https://fc.yahoo.com",
		UserAgent: "Mozilla/5.0",
		Timeout:   10 * time.Second,
	}
}
