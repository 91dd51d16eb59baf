package embeddings

import (
	"context"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"github.com/tejpal123456789/trading-agnetic-workflow/pkg/errors"
	"github.com/tejpal123456789/trading-agnetic-workflow/pkg/logger"
)

// OpenAIProvider embeds texts with the official OpenAI SDK.
type OpenAIProvider struct {
	client     openai.Client // NewClient returns a value, not a pointer
	model      openai.EmbeddingModel
	dimensions int
	timeout    time.Duration
	log        *logger.Logger
}

// NewOpenAIProvider defaults to text-embedding-3-small and a 30s timeout.
func NewOpenAIProvider(apiKey string, model string, timeout time.Duration) (*OpenAIProvider, error) {
	if apiKey == "" {
		return nil, errors.Wrapf(errors.ErrInvalidInput, "openai API key is required for embeddings")
	}
	if model == "" {
		model = openai.EmbeddingModelTextEmbedding3Small
	}
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	return &OpenAIProvider{
		client:     openai.NewClient(option.WithAPIKey(apiKey)),
		model:      openai.EmbeddingModel(model),
		dimensions: dimensionsFor(model),
		timeout:    timeout,
		log:        logger.Get().With("component", "openai_embeddings", "model", model),
	}, nil
}

func (p *OpenAIProvider) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, errors.Wrapf(errors.ErrInvalidInput, "text cannot be empty")
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	response, err := p.client.Embeddings.New(ctx, openai.EmbeddingNewParams{
		Input: openai.EmbeddingNewParamsInputUnion{
			OfString: openai.String(text),
		},
		Model: p.model,
	})
	if err != nil {
		return nil, errors.Wrapf(errors.ErrExternal, "openai embeddings: %v", err)
	}
	if len(response.Data) == 0 {
		return nil, errors.Wrapf(errors.ErrExternal, "openai embeddings: empty response")
	}

	p.log.Debugw("Generated embedding", "text_length", len(text), "tokens_used", response.Usage.TotalTokens)
	return toFloat32(response.Data[0].Embedding), nil
}

func (p *OpenAIProvider) GenerateBatchEmbeddings(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, errors.Wrapf(errors.ErrInvalidInput, "texts cannot be empty")
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	response, err := p.client.Embeddings.New(ctx, openai.EmbeddingNewParams{
		Input: openai.EmbeddingNewParamsInputUnion{
			OfArrayOfStrings: texts,
		},
		Model: p.model,
	})
	if err != nil {
		return nil, errors.Wrapf(errors.ErrExternal, "openai batch embeddings: %v", err)
	}
	if len(response.Data) != len(texts) {
		return nil, errors.Wrapf(errors.ErrExternal, "expected %d embeddings, got %d", len(texts), len(response.Data))
	}

	out := make([][]float32, len(texts))
	for _, data := range response.Data {
		if int(data.Index) < 0 || int(data.Index) >= len(out) {
			return nil, errors.Wrapf(errors.ErrExternal, "embedding index %d out of range", data.Index)
		}
		out[data.Index] = toFloat32(data.Embedding)
	}

	p.log.Debugw("Generated batch embeddings", "batch_size", len(texts), "tokens_used", response.Usage.TotalTokens)
	return out, nil
}

func (p *OpenAIProvider) Dimensions() int {
	return p.dimensions
}

func (p *OpenAIProvider) Name() string {
	return string(p.model)
}

func toFloat32(values []float64) []float32 {
	out := make([]float32, len(values))
	for i, v := range values {
		out[i] = float32(v)
	}
	return out
}

func dimensionsFor(model string) int {
	switch model {
	case openai.EmbeddingModelTextEmbedding3Large:
		return 3072
	default:
		return 1536
	}
}
