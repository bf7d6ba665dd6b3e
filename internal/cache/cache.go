// Package cache provides the Redis-backed cache for safety analysis
// results. Cache failures degrade to recomputation, never to request
// failures.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/citysafe/safewatch/internal/config"
	"github.com/citysafe/safewatch/internal/domain"
	"github.com/citysafe/safewatch/internal/logging"
	"github.com/citysafe/safewatch/internal/metrics"
)

// analysisKey is the cache key for the full safety analysis result.
const analysisKey = "safewatch:analysis:safety"

// NewClient creates a Redis client and verifies the connection.
func NewClient(ctx context.Context, cfg config.RedisConfig, log logging.Logger) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.URL,
		Password:     cfg.Password,
		DB:           cfg.Database,
		DialTimeout:  cfg.Timeout,
		ReadTimeout:  cfg.Timeout,
		WriteTimeout: cfg.Timeout,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	log.Info("Redis connection established", logging.String("addr", cfg.URL))
	return client, nil
}

// AnalysisCache caches the ordered risk profile list.
type AnalysisCache struct {
	client  *redis.Client
	ttl     time.Duration
	logger  logging.Logger
	metrics *metrics.Engine
}

// NewAnalysisCache creates an analysis cache. A nil client disables
// caching; Get then always misses and Set is a no-op.
func NewAnalysisCache(client *redis.Client, ttl time.Duration, log logging.Logger, m *metrics.Engine) *AnalysisCache {
	return &AnalysisCache{client: client, ttl: ttl, logger: log, metrics: m}
}

// Get returns the cached profiles, or (nil, false) on a miss. Redis errors
// count as misses; the caller recomputes.
func (c *AnalysisCache) Get(ctx context.Context) ([]domain.RiskProfile, bool) {
	if c.client == nil {
		return nil, false
	}

	payload, err := c.client.Get(ctx, analysisKey).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.Warn("Analysis cache read failed", logging.Error(err))
		}
		c.miss()
		return nil, false
	}

	var profiles []domain.RiskProfile
	if err := json.Unmarshal(payload, &profiles); err != nil {
		c.logger.Warn("Analysis cache entry corrupt, discarding", logging.Error(err))
		c.miss()
		return nil, false
	}

	if c.metrics != nil {
		c.metrics.CacheHitsTotal.Inc()
	}
	return profiles, true
}

// Set stores the profiles with the configured TTL. Failures are logged and
// swallowed.
func (c *AnalysisCache) Set(ctx context.Context, profiles []domain.RiskProfile) {
	if c.client == nil {
		return
	}

	payload, err := json.Marshal(profiles)
	if err != nil {
		c.logger.Warn("Analysis cache encode failed", logging.Error(err))
		return
	}
	if err := c.client.Set(ctx, analysisKey, payload, c.ttl).Err(); err != nil {
		c.logger.Warn("Analysis cache write failed", logging.Error(err))
	}
}

// Invalidate drops the cached analysis.
func (c *AnalysisCache) Invalidate(ctx context.Context) {
	if c.client == nil {
		return
	}
	if err := c.client.Del(ctx, analysisKey).Err(); err != nil {
		c.logger.Warn("Analysis cache invalidation failed", logging.Error(err))
	}
}

func (c *AnalysisCache) miss() {
	if c.metrics != nil {
		c.metrics.CacheMissesTotal.Inc()
	}
}
