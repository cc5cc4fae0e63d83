// Package config loads the application configuration from a YAML file, .env and the environment.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"stock_analyzer/internal/platform/db"
	"stock_analyzer/internal/platform/externalapi/twelvedata"
	"stock_analyzer/internal/platform/externalapi/yahoo"
)

// DefaultPath is used when CONFIG_PATH is not set.
const DefaultPath = "configs/config.yaml"

// DefaultWarmupDays is the indicator lookback used when dashboard.warmup_days is not set.
// 60 calendar days cover MACD(12, 26, 9) and RSI(14) from the first displayed session.
const DefaultWarmupDays = 60

const (
	ProviderYahoo      = "yahoo"
	ProviderTwelveData = "twelvedata"
)

// Config holds all application configuration.
type Config struct {
	Server struct {
		Addr           string        `yaml:"addr"`
		RequestTimeout time.Duration `yaml:"request_timeout"`
		CORSOrigins    []string      `yaml:"cors_origins"`
	} `yaml:"server"`
	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"log"`
	Market struct {
		Provider string `yaml:"provider"`
		Timezone string `yaml:"timezone"`
	} `yaml:"market"`
	Yahoo struct {
		BaseURL            string        `yaml:"base_url"`
		CookieURL          string        `yaml:"cookie_url"`
		UserAgent          string        `yaml:"user_agent"`
		Timeout            time.Duration `yaml:"timeout"`
		RateLimitPerMinute int           `yaml:"rate_limit_per_minute"`
	} `yaml:"yahoo"`
	TwelveData struct {
		APIKey             string        `yaml:"api_key"`
		BaseURL            string        `yaml:"base_url"`
		Timeout            time.Duration `yaml:"timeout"`
		RateLimitPerMinute int           `yaml:"rate_limit_per_minute"`
	} `yaml:"twelvedata"`
	Database struct {
		Driver         string        `yaml:"driver"`
		DSN            string        `yaml:"dsn"`
		Host           string        `yaml:"host"`
		Port           string        `yaml:"port"`
		User           string        `yaml:"user"`
		Password       string        `yaml:"password"`
		Name           string        `yaml:"name"`
		SSLMode        string        `yaml:"sslmode"`
		ConnectTimeout time.Duration `yaml:"connect_timeout"`
	} `yaml:"database"`
	Redis struct {
		Addr     string        `yaml:"addr"`
		Password string        `yaml:"password"`
		DB       int           `yaml:"db"`
		TTL      time.Duration `yaml:"ttl"`
	} `yaml:"redis"`
	Dashboard struct {
		WarmupDays    int    `yaml:"warmup_days"`
		DefaultSymbol string `yaml:"default_symbol"`
		DefaultStart  string `yaml:"default_start"`
		DefaultEnd    string `yaml:"default_end"`
	} `yaml:"dashboard"`
}

// Load reads .env (if any), then the YAML file at CONFIG_PATH, applies environment variable
// overrides and fills in defaults. A missing YAML file is not an error.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn("failed to load .env", "error", err)
	}

	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = DefaultPath
	}
	return LoadFile(path)
}

// LoadFile is Load without .env handling, reading the YAML file at path.
// An explicit warmup_days: 0 in the file is kept.
func LoadFile(path string) (*Config, error) {
	cfg := &Config{}
	cfg.Dashboard.WarmupDays = DefaultWarmupDays

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return cfg, nil
}

// applyEnv overrides file values with environment variables.
func (c *Config) applyEnv() error {
	str := map[string]*string{
		"SERVER_ADDR":          &c.Server.Addr,
		"LOG_LEVEL":            &c.Log.Level,
		"LOG_FORMAT":           &c.Log.Format,
		"MARKET_PROVIDER":      &c.Market.Provider,
		"MARKET_TIMEZONE":      &c.Market.Timezone,
		"YAHOO_BASE_URL":       &c.Yahoo.BaseURL,
		"YAHOO_COOKIE_URL":     &c.Yahoo.CookieURL,
		"TWELVE_DATA_API_KEY":  &c.TwelveData.APIKey,
		"TWELVE_DATA_BASE_URL": &c.TwelveData.BaseURL,
		"DB_DRIVER":            &c.Database.Driver,
		"DB_DSN":               &c.Database.DSN,
		"DB_HOST":              &c.Database.Host,
		"DB_PORT":              &c.Database.Port,
		"DB_USER":              &c.Database.User,
		"DB_PASSWORD":          &c.Database.Password,
		"DB_NAME":              &c.Database.Name,
		"DB_SSLMODE":           &c.Database.SSLMode,
		"REDIS_ADDR":           &c.Redis.Addr,
		"REDIS_PASSWORD":       &c.Redis.Password,
	}
	for key, dst := range str {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}

	// REDIS_HOST/REDIS_PORT are still honoured when REDIS_ADDR is not set
	if c.Redis.Addr == "" {
		if host := os.Getenv("REDIS_HOST"); host != "" {
			port := os.Getenv("REDIS_PORT")
			if port == "" {
				port = "6379"
			}
			c.Redis.Addr = host + ":" + port
		}
	}

	durations := map[string]*time.Duration{
		"SERVER_REQUEST_TIMEOUT": &c.Server.RequestTimeout,
		"YAHOO_TIMEOUT":          &c.Yahoo.Timeout,
		"TWELVE_DATA_TIMEOUT":    &c.TwelveData.Timeout,
		"DB_CONNECT_TIMEOUT":     &c.Database.ConnectTimeout,
		"REDIS_TTL":              &c.Redis.TTL,
	}
	for key, dst := range durations {
		v := os.Getenv(key)
		if v == "" {
			continue
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", key, v, err)
		}
		*dst = d
	}

	ints := map[string]*int{
		"YAHOO_RATE_LIMIT":       &c.Yahoo.RateLimitPerMinute,
		"TWELVE_DATA_RATE_LIMIT": &c.TwelveData.RateLimitPerMinute,
		"REDIS_DB":               &c.Redis.DB,
		"DASHBOARD_WARMUP_DAYS":  &c.Dashboard.WarmupDays,
	}
	for key, dst := range ints {
		v := os.Getenv(key)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", key, v, err)
		}
		*dst = n
	}

	if v := os.Getenv("CORS_ORIGINS"); v != "" {
		c.Server.CORSOrigins = nil
		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				c.Server.CORSOrigins = append(c.Server.CORSOrigins, o)
			}
		}
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Server.RequestTimeout == 0 {
		c.Server.RequestTimeout = 30 * time.Second
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "json"
	}
	if c.Market.Provider == "" {
		c.Market.Provider = ProviderYahoo
	}
	if c.Market.Timezone == "" {
		c.Market.Timezone = "America/New_York"
	}

	yd := yahoo.DefaultConfig()
	if c.Yahoo.BaseURL == "" {
		c.Yahoo.BaseURL = yd.BaseURL
	}
	if c.Yahoo.CookieURL == "" {
		c.Yahoo.CookieURL = yd.CookieURL
	}
	if c.Yahoo.UserAgent == "" {
		c.Yahoo.UserAgent = yd.UserAgent
	}
	if c.Yahoo.Timeout == 0 {
		c.Yahoo.Timeout = yd.Timeout
	}

	td := twelvedata.DefaultConfig()
	if c.TwelveData.BaseURL == "" {
		c.TwelveData.BaseURL = td.BaseURL
	}
	if c.TwelveData.Timeout == 0 {
		c.TwelveData.Timeout = td.Timeout
	}
	if c.TwelveData.RateLimitPerMinute == 0 {
		c.TwelveData.RateLimitPerMinute = td.RateLimitPerMinute
	}

	if c.Database.Driver == "" {
		c.Database.Driver = db.DriverSQLite
	}
	if c.Database.ConnectTimeout == 0 {
		c.Database.ConnectTimeout = 30 * time.Second
	}

	if c.Dashboard.DefaultSymbol == "" {
		c.Dashboard.DefaultSymbol = "AAPL"
	}
	if c.Dashboard.DefaultStart == "" {
		c.Dashboard.DefaultStart = "2019-07-06"
	}
	if c.Dashboard.DefaultEnd == "" {
		c.Dashboard.DefaultEnd = "2019-07-10"
	}
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	switch c.Market.Provider {
	case ProviderYahoo:
	case ProviderTwelveData:
		if c.TwelveData.APIKey == "" {
			return fmt.Errorf("twelvedata.api_key is required when market.provider is %q", ProviderTwelveData)
		}
	default:
		return fmt.Errorf("market.provider must be %q or %q, got %q", ProviderYahoo, ProviderTwelveData, c.Market.Provider)
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	switch c.Database.Driver {
	case db.DriverSQLite, db.DriverPostgres:
	default:
		return fmt.Errorf("database.driver must be %q or %q, got %q", db.DriverSQLite, db.DriverPostgres, c.Database.Driver)
	}
	if c.Server.RequestTimeout < 0 {
		return fmt.Errorf("server.request_timeout must not be negative")
	}
	if c.Redis.TTL < 0 {
		return fmt.Errorf("redis.ttl must not be negative")
	}
	if c.Dashboard.WarmupDays < 0 {
		return fmt.Errorf("dashboard.warmup_days must not be negative")
	}
	return nil
}

// Location returns the market time zone.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Market.Timezone)
	if err != nil {
		return nil, fmt.Errorf("market.timezone %q: %w", c.Market.Timezone, err)
	}
	return loc, nil
}

// YahooConfig converts the yahoo section into the client configuration.
func (c *Config) YahooConfig() yahoo.Config {
	return yahoo.Config{
		BaseURL:            c.Yahoo.BaseURL,
		CookieURL:          c.Yahoo.CookieURL,
		UserAgent:          c.Yahoo.UserAgent,
		Timeout:            c.Yahoo.Timeout,
		RateLimitPerMinute: c.Yahoo.RateLimitPerMinute,
	}
}

// TwelveDataConfig converts the twelvedata section into the client configuration.
func (c *Config) TwelveDataConfig() twelvedata.Config {
	return twelvedata.Config{
		TwelveDataAPIKey:   c.TwelveData.APIKey,
		BaseURL:            c.TwelveData.BaseURL,
		Timeout:            c.TwelveData.Timeout,
		RateLimitPerMinute: c.TwelveData.RateLimitPerMinute,
	}
}

// DBConfig converts the database section into the db package configuration.
func (c *Config) DBConfig() db.Config {
	return db.Config{
		Driver:         c.Database.Driver,
		DSN:            c.Database.DSN,
		Host:           c.Database.Host,
		Port:           c.Database.Port,
		User:           c.Database.User,
		Password:       c.Database.Password,
		Name:           c.Database.Name,
		SSLMode:        c.Database.SSLMode,
		ConnectTimeout: c.Database.ConnectTimeout,
	}
}
