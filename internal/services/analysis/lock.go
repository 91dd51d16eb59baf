package analysis

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/tejpal123456789/trading-agnetic-workflow/internal/adapters/redis"
)

// Lock is a held run lock.
type Lock interface {
	Release(ctx context.Context) error
}

// Locker serializes runs of the same subject and date across processes.
type Locker interface {
	// Acquire reports ok=false when another holder has the key.
	Acquire(ctx context.Context, key string, ttl time.Duration) (Lock, bool, error)
}

// RedisLocker takes SETNX locks.
type RedisLocker struct {
	client *redis.Client
}

func NewRedisLocker(client *redis.Client) *RedisLocker {
	return &RedisLocker{client: client}
}

func (l *RedisLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (Lock, bool, error) {
	lock, ok, err := l.client.AcquireLock(ctx, key, ttl)
	if err != nil || !ok {
		return nil, ok, err
	}
	return lock, true, nil
}

// LockKey is analysis:<SUBJECT>:<date>.
func LockKey(subject, date string) string {
	return fmt.Sprintf("analysis:%s:%s", strings.ToUpper(strings.TrimSpace(subject)), date)
}
