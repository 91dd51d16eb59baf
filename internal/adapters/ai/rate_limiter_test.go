package ai

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenBucketLimiter_Allow(t *testing.T) {
	limiter := NewTokenBucketLimiter(ProviderNameOpenAI, 60, 2)

	assert.True(t, limiter.Allow(), "first request should use the burst")
	assert.True(t, limiter.Allow(), "second request should use the burst")
	assert.False(t, limiter.Allow(), "third request should be denied")
	assert.InDelta(t, 60, limiter.Limit(), 0.001)
}

func TestTokenBucketLimiter_ContextCancellation(t *testing.T) {
	limiter := NewTokenBucketLimiter(ProviderNameOpenAI, 6, 1)
	require.True(t, limiter.Allow())

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := limiter.Wait(ctx)
	assert.Error(t, err)
}

func TestNewRateLimiter_DisabledIsNoOp(t *testing.T) {
	limiter := NewRateLimiter(ProviderNameOpenAI, 0)
	_, ok := limiter.(*NoOpLimiter)
	assert.True(t, ok)
	assert.NoError(t, limiter.Wait(context.Background()))
	assert.Equal(t, float64(-1), limiter.Limit())
}
