package cache

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/andresuchdata/atim/backend-go/internal/config"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	trendSeriesKeyPrefix = "atim:trend:series"
	trendScanBatchSize   = 100
)

// TrendSeriesCache keeps provider responses for a TTL so repeated analyses
// within the window do not spend provider quota.
type TrendSeriesCache interface {
	GetSeries(ctx context.Context, key string) ([]float64, bool)
	SetSeries(ctx context.Context, key string, series []float64)
	// InvalidateAll drops every cached series and returns how many were removed.
	InvalidateAll(ctx context.Context) (int, error)
	Close() error
}

type redisTrendCache struct {
	client *redis.Client
	ttl    time.Duration
}

type noopTrendCache struct{}

// NewTrendSeriesCache returns a redis-backed cache when enabled, otherwise a no-op.
func NewTrendSeriesCache(ctx context.Context, cfg config.CacheConfig) (TrendSeriesCache, error) {
	if !cfg.Enabled {
		return &noopTrendCache{}, nil
	}

	client, err := dialRedis(ctx, cfg)
	if err != nil {
		return nil, err
	}

	return &redisTrendCache{
		client: client,
		ttl:    trendTTL(cfg),
	}, nil
}

func NewNoopTrendSeriesCache() TrendSeriesCache {
	return &noopTrendCache{}
}

func (c *redisTrendCache) GetSeries(ctx context.Context, key string) ([]float64, bool) {
	payload, err := c.client.Get(ctx, buildTrendSeriesKey(key)).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("cache: redis get failed")
		return nil, false
	}

	series, err := decodeSeries(payload)
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("cache: dropping undecodable entry")
		return nil, false
	}
	return series, true
}

func (c *redisTrendCache) SetSeries(ctx context.Context, key string, series []float64) {
	payload, err := json.Marshal(series)
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("cache: encode trend series")
		return
	}

	if err := c.client.Set(ctx, buildTrendSeriesKey(key), payload, c.ttl).Err(); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("cache: redis set failed")
	}
}

func (c *redisTrendCache) InvalidateAll(ctx context.Context) (int, error) {
	return purgePrefix(ctx, c.client, trendSeriesKeyPrefix+":", trendScanBatchSize)
}

func (c *redisTrendCache) Close() error {
	return c.client.Close()
}

func (n *noopTrendCache) GetSeries(ctx context.Context, key string) ([]float64, bool) {
	return nil, false
}

func (n *noopTrendCache) SetSeries(ctx context.Context, key string, series []float64) {}

func (n *noopTrendCache) InvalidateAll(ctx context.Context) (int, error) {
	return 0, nil
}

func (n *noopTrendCache) Close() error {
	return nil
}

func decodeSeries(payload []byte) ([]float64, error) {
	var series []float64
	if err := json.Unmarshal(payload, &series); err != nil {
		return nil, fmt.Errorf("decode trend series cache: %w", err)
	}
	if len(series) == 0 {
		return nil, fmt.Errorf("decode trend series cache: empty series")
	}
	return series, nil
}

func buildTrendSeriesKey(key string) string {
	return fmt.Sprintf("%s:%s", trendSeriesKeyPrefix, trendKeyHash(key))
}

func trendKeyHash(key string) string {
	normalized := strings.ToLower(strings.TrimSpace(key))
	sum := sha1.Sum([]byte(normalized))
	return hex.EncodeToString(sum[:])
}
