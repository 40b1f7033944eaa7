package cache

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/andresuchdata/atim/backend-go/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTrendSeriesCacheDisabledIsNoop(t *testing.T) {
	ctx := context.Background()
	c, err := NewTrendSeriesCache(ctx, config.CacheConfig{Enabled: false})
	require.NoError(t, err)

	c.SetSeries(ctx, "US:today 3-m:boots", []float64{1, 2, 3})
	series, ok := c.GetSeries(ctx, "US:today 3-m:boots")
	assert.False(t, ok)
	assert.Nil(t, series)
	removed, err := c.InvalidateAll(ctx)
	assert.NoError(t, err)
	assert.Zero(t, removed)
	assert.NoError(t, c.Close())
}

func TestBuildTrendSeriesKey(t *testing.T) {
	a := buildTrendSeriesKey("US:today 3-m:Ankle Boots")
	b := buildTrendSeriesKey("  us:today 3-m:ankle boots ")
	c := buildTrendSeriesKey("US:today 3-m:loafers")

	assert.True(t, strings.HasPrefix(a, trendSeriesKeyPrefix+":"))
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
}

func TestDecodeSeries(t *testing.T) {
	series, err := decodeSeries([]byte(`[10,20.5,35]`))
	require.NoError(t, err)
	assert.Equal(t, []float64{10, 20.5, 35}, series)

	_, err = decodeSeries([]byte(`[]`))
	assert.Error(t, err)

	_, err = decodeSeries([]byte(`{"nope":1}`))
	assert.Error(t, err)
}

func TestBuildRedisOptions(t *testing.T) {
	t.Run("url wins", func(t *testing.T) {
		opts, err := redisOptions(config.CacheConfig{RedisURL: "redis://:pw@cache.internal:6380/2", RedisHost: "ignored"})
		require.NoError(t, err)
		assert.Equal(t, "cache.internal:6380", opts.Addr)
		assert.Equal(t, "pw", opts.Password)
		assert.Equal(t, 2, opts.DB)
	})

	t.Run("host and port defaults", func(t *testing.T) {
		opts, err := redisOptions(config.CacheConfig{})
		require.NoError(t, err)
		assert.Equal(t, "127.0.0.1:6379", opts.Addr)
		assert.Equal(t, redisClientName, opts.ClientName)
	})

	t.Run("bad url", func(t *testing.T) {
		_, err := redisOptions(config.CacheConfig{RedisURL: "://bad"})
		assert.Error(t, err)
	})
}

func TestTrendTTL(t *testing.T) {
	assert.Equal(t, defaultTrendTTL, trendTTL(config.CacheConfig{}))
	assert.Equal(t, 90*time.Second, trendTTL(config.CacheConfig{TrendTTLSeconds: 90}))
}

func TestNewTrendSeriesCacheUnreachableRedis(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_, err := NewTrendSeriesCache(ctx, config.CacheConfig{Enabled: true, RedisHost: "127.0.0.1", RedisPort: "1"})
	assert.Error(t, err)
}
