package di

import (
	"testing"

	"github.com/go-redis/redismock/v9"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stock_analyzer/internal/feature/dashboard/domain/entity"
	"stock_analyzer/internal/platform/cache"
	"stock_analyzer/internal/platform/config"
	"stock_analyzer/internal/platform/externalapi/twelvedata"
	"stock_analyzer/internal/platform/externalapi/yahoo"
	"stock_analyzer/internal/platform/metrics"
)

func testConfig(t *testing.T, mutate func(c *config.Config)) *config.Config {
	t.Helper()
	cfg, err := config.LoadFile(t.TempDir() + "/none.yaml")
	require.NoError(t, err)
	if mutate != nil {
		mutate(cfg)
	}
	return cfg
}

func TestNewProvider(t *testing.T) {
	t.Run("yahoo without cache or metrics", func(t *testing.T) {
		p, err := NewProvider(testConfig(t, nil), nil, nil)
		require.NoError(t, err)
		_, ok := p.(*yahoo.Client)
		assert.True(t, ok, "got %T", p)
	})

	t.Run("twelvedata", func(t *testing.T) {
		cfg := testConfig(t, func(c *config.Config) {
			c.Market.Provider = config.ProviderTwelveData
			c.TwelveData.APIKey = "k"
		})
		p, err := NewProvider(cfg, nil, nil)
		require.NoError(t, err)
		_, ok := p.(*twelvedata.TwelveDataMarket)
		assert.True(t, ok, "got %T", p)
		assert.Equal(t, twelvedata.ProviderName, p.Name())
	})

	t.Run("cache and metrics decorate the provider", func(t *testing.T) {
		rdb, _ := redismock.NewClientMock()
		reg := prometheus.NewRegistry()
		m := metrics.NewMetricsWith(reg, reg)

		p, err := NewProvider(testConfig(t, nil), rdb, m)
		require.NoError(t, err)
		ip, ok := p.(*metrics.InstrumentedProvider)
		require.True(t, ok, "got %T", p)
		assert.Equal(t, yahoo.ProviderName, ip.Name())
	})

	t.Run("cache only", func(t *testing.T) {
		rdb, _ := redismock.NewClientMock()
		p, err := NewProvider(testConfig(t, nil), rdb, nil)
		require.NoError(t, err)
		_, ok := p.(*cache.CachingHistoryProvider)
		assert.True(t, ok, "got %T", p)
	})

	t.Run("unknown provider", func(t *testing.T) {
		_, err := NewProvider(testConfig(t, func(c *config.Config) { c.Market.Provider = "x" }), nil, nil)
		assert.Error(t, err)
	})
}

func TestDashboardDefaults(t *testing.T) {
	in, err := DashboardDefaults(testConfig(t, nil))
	require.NoError(t, err)
	assert.Equal(t, entity.DefaultInputs(), in)

	_, err = DashboardDefaults(testConfig(t, func(c *config.Config) { c.Dashboard.DefaultStart = "July 6" }))
	assert.ErrorContains(t, err, "dashboard.default_start")

	_, err = DashboardDefaults(testConfig(t, func(c *config.Config) {
		c.Dashboard.DefaultStart = "2019-07-10"
		c.Dashboard.DefaultEnd = "2019-07-06"
	}))
	assert.ErrorContains(t, err, "after default_end")
}
