package embeddings

import (
	"time"

	"github.com/tejpal123456789/trading-agnetic-workflow/pkg/errors"
)

// ProviderType defines supported embedding providers
type ProviderType string

const (
	ProviderOpenAI ProviderType = "openai"
	ProviderLocal  ProviderType = "local"
)

// Config holds configuration for embedding provider
type Config struct {
	Provider        ProviderType
	APIKey          string
	Model           string
	LocalDimensions int
	Timeout         time.Duration
}

// NewProvider creates an embedding provider based on config
func NewProvider(cfg Config) (Provider, error) {
	switch cfg.Provider {
	case ProviderOpenAI:
		return NewOpenAIProvider(cfg.APIKey, cfg.Model, cfg.Timeout)
	case ProviderLocal:
		return NewHashingProvider(cfg.LocalDimensions), nil
	default:
		return nil, errors.Wrapf(errors.ErrInvalidInput, "unsupported embedding provider: %s", cfg.Provider)
	}
}
