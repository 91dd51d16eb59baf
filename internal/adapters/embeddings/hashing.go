package embeddings

import (
	"context"
	"hash/fnv"
	"math"
	"strings"
	"unicode"

	"github.com/tejpal123456789/trading-agnetic-workflow/pkg/errors"
)

const defaultHashingDimensions = 256

// HashingProvider is an offline embedder: lowercase word unigrams and bigrams are
// hashed into a fixed number of buckets with a signed count, then L2-normalized.
// Texts sharing vocabulary land close together, which is enough for memory recall
// in tests and in deployments without an embedding API key.
type HashingProvider struct {
	dims int
}

func NewHashingProvider(dims int) *HashingProvider {
	if dims <= 0 {
		dims = defaultHashingDimensions
	}
	return &HashingProvider{dims: dims}
}

func (p *HashingProvider) GenerateEmbedding(_ context.Context, text string) ([]float32, error) {
	if strings.TrimSpace(text) == "" {
		return nil, errors.Wrapf(errors.ErrInvalidInput, "text cannot be empty")
	}
	return p.embed(text), nil
}

func (p *HashingProvider) GenerateBatchEmbeddings(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, errors.Wrapf(errors.ErrInvalidInput, "texts cannot be empty")
	}
	out := make([][]float32, len(texts))
	for i, text := range texts {
		vec, err := p.GenerateEmbedding(ctx, text)
		if err != nil {
			return nil, errors.Wrapf(err, "text %d", i)
		}
		out[i] = vec
	}
	return out, nil
}

func (p *HashingProvider) Dimensions() int {
	return p.dims
}

func (p *HashingProvider) Name() string {
	return "local-hashing"
}

func (p *HashingProvider) embed(text string) []float32 {
	vec := make([]float32, p.dims)
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})

	for i, w := range words {
		p.add(vec, w)
		if i > 0 {
			p.add(vec, words[i-1]+" "+w)
		}
	}

	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	if norm == 0 {
		return vec
	}
	scale := float32(1 / math.Sqrt(norm))
	for i := range vec {
		vec[i] *= scale
	}
	return vec
}

func (p *HashingProvider) add(vec []float32, token string) {
	h := fnv.New64a()
	_, _ = h.Write([]byte(token))
	sum := h.Sum64()
	idx := int(sum % uint64(p.dims))
	if sum&(1<<63) != 0 {
		vec[idx]--
	} else {
		vec[idx]++
	}
}
