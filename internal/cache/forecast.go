package cache

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/ViktorAgafonov/ForecastOrder/backend-go/internal/config"
	"github.com/ViktorAgafonov/ForecastOrder/backend-go/internal/domain"
	"github.com/redis/go-redis/v9"
)

const (
	forecastKeyPrefix  = "forecasts:view"
	defaultForecastTTL = 5 * time.Minute
	pingTimeout        = 5 * time.Second
	unlinkBatch        = 100
)

// ForecastCache stores filtered forecast views between runs.
type ForecastCache interface {
	GetForecasts(ctx context.Context, minConfidence float64) ([]domain.ForecastResult, bool, error)
	SetForecasts(ctx context.Context, minConfidence float64, forecasts []domain.ForecastResult) error
	InvalidateAll(ctx context.Context) error
}

type redisForecastCache struct {
	client *redis.Client
	ttl    time.Duration
}

type noopForecastCache struct{}

// NewForecastCache connects to redis when caching is enabled and falls back
// to a no-op cache otherwise.
func NewForecastCache(cfg config.CacheConfig) (ForecastCache, error) {
	if !cfg.Enabled {
		return &noopForecastCache{}, nil
	}

	opts, err := redisOptions(cfg)
	if err != nil {
		return nil, err
	}
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping %s failed: %w", opts.Addr, err)
	}

	return &redisForecastCache{
		client: client,
		ttl:    forecastTTL(cfg),
	}, nil
}

func NewNoopForecastCache() ForecastCache {
	return &noopForecastCache{}
}

// redisOptions prefers REDIS_URL and otherwise assembles the address from
// host and port, defaulting to a local server.
func redisOptions(cfg config.CacheConfig) (*redis.Options, error) {
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("invalid redis url: %w", err)
		}
		return opts, nil
	}

	host, port := cfg.RedisHost, cfg.RedisPort
	if host == "" {
		host = "127.0.0.1"
	}
	if port == "" {
		port = "6379"
	}
	return &redis.Options{
		Addr:     net.JoinHostPort(host, port),
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	}, nil
}

func forecastTTL(cfg config.CacheConfig) time.Duration {
	if cfg.ForecastTTLSeconds <= 0 {
		return defaultForecastTTL
	}
	return time.Duration(cfg.ForecastTTLSeconds) * time.Second
}

func (c *redisForecastCache) GetForecasts(ctx context.Context, minConfidence float64) ([]domain.ForecastResult, bool, error) {
	payload, err := c.client.Get(ctx, forecastKey(minConfidence)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get failed: %w", err)
	}

	var forecasts []domain.ForecastResult
	if err := json.Unmarshal(payload, &forecasts); err != nil {
		return nil, false, fmt.Errorf("decode forecast cache: %w", err)
	}
	return forecasts, true, nil
}

func (c *redisForecastCache) SetForecasts(ctx context.Context, minConfidence float64, forecasts []domain.ForecastResult) error {
	payload, err := json.Marshal(forecasts)
	if err != nil {
		return fmt.Errorf("encode forecast cache: %w", err)
	}
	if err := c.client.Set(ctx, forecastKey(minConfidence), payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

// InvalidateAll drops every cached view. Keys are walked with SCAN and
// unlinked in batches so a large keyspace never blocks the server.
func (c *redisForecastCache) InvalidateAll(ctx context.Context) error {
	iter := c.client.Scan(ctx, 0, forecastKeyPrefix+":*", unlinkBatch).Iterator()
	batch := make([]string, 0, unlinkBatch)
	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) == unlinkBatch {
			if err := c.client.Unlink(ctx, batch...).Err(); err != nil {
				return fmt.Errorf("redis unlink failed: %w", err)
			}
			batch = batch[:0]
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("redis scan failed: %w", err)
	}
	if len(batch) > 0 {
		if err := c.client.Unlink(ctx, batch...).Err(); err != nil {
			return fmt.Errorf("redis unlink failed: %w", err)
		}
	}
	return nil
}

func (n *noopForecastCache) GetForecasts(ctx context.Context, minConfidence float64) ([]domain.ForecastResult, bool, error) {
	return nil, false, nil
}

func (n *noopForecastCache) SetForecasts(ctx context.Context, minConfidence float64, forecasts []domain.ForecastResult) error {
	return nil
}

func (n *noopForecastCache) InvalidateAll(ctx context.Context) error {
	return nil
}

func forecastKey(minConfidence float64) string {
	raw := "min_confidence=" + strconv.FormatFloat(minConfidence, 'f', -1, 64)
	hash := sha1.Sum([]byte(raw))
	return forecastKeyPrefix + ":" + hex.EncodeToString(hash[:])
}
