// Package twelvedata provides a client for the Twelve Data stock market API.
package twelvedata

import (
	"time"
)

// Config holds configuration for the Twelve Data API client.
type Config struct {
	TwelveDataAPIKey   string        // API key for authentication
	BaseURL            string        // Base URL for the API (e.g., "https://api.twelvedata.com")
	Timeout            time.Duration // HTTP request timeout
	RateLimitPerMinute int           // Free tier allows 8 requests per minute
}

// DefaultConfig returns the configuration used when nothing is overridden. The API key has no default.
func DefaultConfig() Config {
	return Config{
		BaseURL:            "https://api.twelvedata.com",
		Timeout:            10 * time.Second,
		RateLimitPerMinute: 8,
	}
}
