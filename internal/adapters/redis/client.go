package redis

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/tejpal123456789/trading-agnetic-workflow/internal/adapters/config"
	"github.com/tejpal123456789/trading-agnetic-workflow/pkg/errors"
)

// releaseScript deletes a lock only while it still holds the caller's token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0`)

// Client wraps the go-redis client with JSON caching and token-guarded locks.
type Client struct {
	rdb *redis.Client
}

// NewClient connects and pings Redis.
func NewClient(cfg config.RedisConfig) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := rdb.Ping(context.Background()).Err(); err != nil {
		_ = rdb.Close()
		return nil, errors.Wrapf(errors.ErrUnavailable, "ping redis at %s: %v", cfg.Addr(), err)
	}

	return &Client{rdb: rdb}, nil
}

// NewFromClient wraps an existing go-redis client.
func NewFromClient(rdb *redis.Client) *Client {
	return &Client{rdb: rdb}
}

func (c *Client) Close() error {
	return c.rdb.Close()
}

func (c *Client) Health(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

// SetJSON stores value as JSON with ttl (0 keeps it forever).
func (c *Client) SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return errors.Wrapf(err, "marshal cache value %s", key)
	}
	return c.rdb.Set(ctx, key, data, ttl).Err()
}

// GetJSON decodes the value at key into dest. A missing key reports found=false with no error.
func (c *Client) GetJSON(ctx context.Context, key string, dest interface{}) (bool, error) {
	data, err := c.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, errors.Wrapf(err, "get %s", key)
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return false, errors.Wrapf(err, "decode cache value %s", key)
	}
	return true, nil
}

// Lock is a held distributed lock.
type Lock struct {
	key   string
	token string
	c     *Client
}

// AcquireLock takes "lock:<key>" for ttl. ok is false when someone else holds it.
func (c *Client) AcquireLock(ctx context.Context, key string, ttl time.Duration) (*Lock, bool, error) {
	lock := &Lock{key: "lock:" + key, token: uuid.NewString(), c: c}
	ok, err := c.rdb.SetNX(ctx, lock.key, lock.token, ttl).Result()
	if err != nil {
		return nil, false, errors.Wrapf(err, "acquire %s", lock.key)
	}
	if !ok {
		return nil, false, nil
	}
	return lock, true, nil
}

// Release drops the lock if it is still ours; an expired lock taken over by another holder is left alone.
func (l *Lock) Release(ctx context.Context) error {
	if err := releaseScript.Run(ctx, l.c.rdb, []string{l.key}, l.token).Err(); err != nil && !errors.Is(err, redis.Nil) {
		return errors.Wrapf(err, "release %s", l.key)
	}
	return nil
}
