package cache

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/andresuchdata/atim/backend-go/internal/config"
	"github.com/redis/go-redis/v9"
)

const (
	defaultTrendTTL  = 6 * time.Hour
	redisPingTimeout = 5 * time.Second
	redisClientName  = "atim"
)

// dialRedis connects and pings; a client that cannot answer is closed.
func dialRedis(ctx context.Context, cfg config.CacheConfig) (*redis.Client, error) {
	opts, err := redisOptions(cfg)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, redisPingTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", opts.Addr, err)
	}
	return client, nil
}

// redisOptions prefers REDIS_URL and falls back to host, port and db.
func redisOptions(cfg config.CacheConfig) (*redis.Options, error) {
	var opts *redis.Options
	if cfg.RedisURL != "" {
		parsed, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("invalid redis url: %w", err)
		}
		opts = parsed
	} else {
		opts = &redis.Options{
			Addr:     net.JoinHostPort(valueOr(cfg.RedisHost, "127.0.0.1"), valueOr(cfg.RedisPort, "6379")),
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		}
	}
	if opts.ClientName == "" {
		opts.ClientName = redisClientName
	}
	return opts, nil
}

func trendTTL(cfg config.CacheConfig) time.Duration {
	if cfg.TrendTTLSeconds <= 0 {
		return defaultTrendTTL
	}
	return time.Duration(cfg.TrendTTLSeconds) * time.Second
}

// purgePrefix unlinks every key under prefix in batches and reports how
// many were removed.
func purgePrefix(ctx context.Context, client *redis.Client, prefix string, batch int) (int, error) {
	removed := 0
	keys := make([]string, 0, batch)

	flush := func() error {
		if len(keys) == 0 {
			return nil
		}
		n, err := client.Unlink(ctx, keys...).Result()
		if err != nil {
			return fmt.Errorf("redis unlink: %w", err)
		}
		removed += int(n)
		keys = keys[:0]
		return nil
	}

	iter := client.Scan(ctx, 0, prefix+"*", int64(batch)).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
		if len(keys) >= batch {
			if err := flush(); err != nil {
				return removed, err
			}
		}
	}
	if err := iter.Err(); err != nil {
		return removed, fmt.Errorf("redis scan %s*: %w", prefix, err)
	}
	if err := flush(); err != nil {
		return removed, err
	}
	return removed, nil
}

func valueOr(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
