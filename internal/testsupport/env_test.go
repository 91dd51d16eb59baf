package testsupport

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPostgresConfigFromEnv(t *testing.T) {
	t.Setenv("POSTGRES_HOST", "localhost")
	t.Setenv("POSTGRES_USER", "user")
	t.Setenv("POSTGRES_PASSWORD", "pass")
	t.Setenv("POSTGRES_DB", "db")
	t.Setenv("POSTGRES_PORT", "5543")

	cfg := PostgresConfigFromEnv(t)

	assert.Equal(t, "localhost", cfg.Host)
	assert.Equal(t, 5543, cfg.Port)
	assert.Equal(t, "disable", cfg.SSLMode)
	assert.True(t, cfg.Enabled)
}

func TestRedisConfigFromEnv(t *testing.T) {
	t.Setenv("REDIS_HOST", "redis")
	t.Setenv("REDIS_PORT", "6380")
	t.Setenv("REDIS_DB", "2")

	cfg := RedisConfigFromEnv(t)

	assert.Equal(t, "redis:6380", cfg.Addr())
	assert.Equal(t, 2, cfg.DB)
}
