package analysis

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/tejpal123456789/trading-agnetic-workflow/internal/adapters/redis"
	domain "github.com/tejpal123456789/trading-agnetic-workflow/internal/domain/analysis"
	"github.com/tejpal123456789/trading-agnetic-workflow/pkg/errors"
	"github.com/tejpal123456789/trading-agnetic-workflow/pkg/logger"
)

// ResultCache stores terminal states of finished runs.
type ResultCache interface {
	Get(ctx context.Context, subject, date string) (domain.State, bool, error)
	Set(ctx context.Context, s domain.State) error
}

// CachedResult is the stored form of one finished run.
type CachedResult struct {
	State     domain.Snapshot `json:"state"`
	Timestamp time.Time       `json:"timestamp"`
}

// RedisResultCache keeps finished runs in Redis for a fixed TTL.
type RedisResultCache struct {
	client *redis.Client
	ttl    time.Duration
	log    *logger.Logger

	hits   atomic.Int64
	misses atomic.Int64
}

func NewRedisResultCache(client *redis.Client, ttl time.Duration) *RedisResultCache {
	return &RedisResultCache{
		client: client,
		ttl:    ttl,
		log:    logger.Get().With("component", "result_cache"),
	}
}

// CacheKey is analysis:result:<SUBJECT>:<date>.
func CacheKey(subject, date string) string {
	return fmt.Sprintf("analysis:result:%s:%s", strings.ToUpper(strings.TrimSpace(subject)), date)
}

func (c *RedisResultCache) Get(ctx context.Context, subject, date string) (domain.State, bool, error) {
	var cached CachedResult
	found, err := c.client.GetJSON(ctx, CacheKey(subject, date), &cached)
	if err != nil {
		return domain.State{}, false, errors.Wrap(err, "failed to get from cache")
	}
	if !found {
		c.misses.Add(1)
		return domain.State{}, false, nil
	}

	c.hits.Add(1)
	c.log.Debugw("Cache hit", "subject", subject, "date", date, "age", time.Since(cached.Timestamp))
	return domain.FromSnapshot(cached.State), true, nil
}

func (c *RedisResultCache) Set(ctx context.Context, s domain.State) error {
	cached := CachedResult{State: domain.ToSnapshot(s), Timestamp: time.Now()}
	if err := c.client.SetJSON(ctx, CacheKey(s.Subject, s.AsOfDate), cached, c.ttl); err != nil {
		return errors.Wrap(err, "failed to set cache")
	}
	c.log.Debugw("Cache set", "subject", s.Subject, "date", s.AsOfDate, "ttl", c.ttl)
	return nil
}

// Stats returns hit and miss counts since start.
func (c *RedisResultCache) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}
