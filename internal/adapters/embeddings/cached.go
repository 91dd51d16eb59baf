package embeddings

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/tejpal123456789/trading-agnetic-workflow/pkg/logger"
)

// Cache is the subset of the redis client used to memoize embeddings.
type Cache interface {
	SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	GetJSON(ctx context.Context, key string, dest interface{}) (bool, error)
}

// CachedProvider memoizes single-text embeddings keyed by model and text hash.
// Cache errors never fail a call; they fall through to the wrapped provider.
type CachedProvider struct {
	inner Provider
	cache Cache
	ttl   time.Duration
	log   *logger.Logger
}

func NewCachedProvider(inner Provider, cache Cache, ttl time.Duration) *CachedProvider {
	return &CachedProvider{
		inner: inner,
		cache: cache,
		ttl:   ttl,
		log:   logger.Get().With("component", "embedding_cache", "model", inner.Name()),
	}
}

func (p *CachedProvider) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	key := p.key(text)

	var cached []float32
	found, err := p.cache.GetJSON(ctx, key, &cached)
	if err != nil {
		p.log.Warnw("Embedding cache read failed", "error", err)
	}
	if found && len(cached) == p.inner.Dimensions() {
		return cached, nil
	}

	vec, err := p.inner.GenerateEmbedding(ctx, text)
	if err != nil {
		return nil, err
	}
	if err := p.cache.SetJSON(ctx, key, vec, p.ttl); err != nil {
		p.log.Warnw("Embedding cache write failed", "error", err)
	}
	return vec, nil
}

func (p *CachedProvider) GenerateBatchEmbeddings(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		vec, err := p.GenerateEmbedding(ctx, text)
		if err != nil {
			return nil, err
		}
		out[i] = vec
	}
	return out, nil
}

func (p *CachedProvider) Dimensions() int {
	return p.inner.Dimensions()
}

func (p *CachedProvider) Name() string {
	return p.inner.Name()
}

func (p *CachedProvider) key(text string) string {
	sum := sha256.Sum256([]byte(text))
	return "embedding:" + p.inner.Name() + ":" + hex.EncodeToString(sum[:])
}
