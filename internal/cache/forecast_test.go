package cache

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/ViktorAgafonov/ForecastOrder/backend-go/internal/config"
	"github.com/ViktorAgafonov/ForecastOrder/backend-go/internal/domain"
)

func TestForecastKey(t *testing.T) {
	a := forecastKey(50)
	b := forecastKey(50.0)
	c := forecastKey(70)

	if a != b {
		t.Errorf("Expected equal keys for equal thresholds, got %q and %q", a, b)
	}
	if a == c {
		t.Errorf("Expected different keys for different thresholds")
	}
	if !strings.HasPrefix(a, forecastKeyPrefix+":") {
		t.Errorf("Expected prefix %q, got %q", forecastKeyPrefix, a)
	}
}

func TestDisabledCacheIsNoop(t *testing.T) {
	c, err := NewForecastCache(config.CacheConfig{Enabled: false})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	ctx := context.Background()
	if err := c.SetForecasts(ctx, 0, []domain.ForecastResult{{UnifiedArticle: "A1"}}); err != nil {
		t.Fatalf("SetForecasts failed: %v", err)
	}
	got, ok, err := c.GetForecasts(ctx, 0)
	if err != nil || ok || got != nil {
		t.Errorf("Expected a miss, got %v %v %v", got, ok, err)
	}
	if err := c.InvalidateAll(ctx); err != nil {
		t.Errorf("InvalidateAll failed: %v", err)
	}
}

func TestRedisOptions(t *testing.T) {
	opts, err := redisOptions(config.CacheConfig{RedisHost: "cache", RedisPort: "6380", RedisDB: 2})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if opts.Addr != "cache:6380" || opts.DB != 2 {
		t.Errorf("Unexpected options %+v", opts)
	}

	opts, err = redisOptions(config.CacheConfig{RedisURL: "redis://:secret@localhost:6379/3"})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if opts.Password != "secret" || opts.DB != 3 {
		t.Errorf("Unexpected options from url %+v", opts)
	}

	if _, err := redisOptions(config.CacheConfig{RedisURL: "http://bad"}); err == nil {
		t.Errorf("Expected an error for a non-redis url")
	}
}

func TestForecastTTL(t *testing.T) {
	if got := forecastTTL(config.CacheConfig{}); got != defaultForecastTTL {
		t.Errorf("Expected default ttl, got %v", got)
	}
	if got := forecastTTL(config.CacheConfig{ForecastTTLSeconds: 30}); got != 30*time.Second {
		t.Errorf("Expected 30s, got %v", got)
	}
	if got := forecastTTL(config.CacheConfig{ForecastTTLSeconds: -1}); got != defaultForecastTTL {
		t.Errorf("Expected default ttl for a negative value, got %v", got)
	}
}
