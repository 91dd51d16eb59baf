package ai

import (
	"strings"
	"time"

	"github.com/tejpal123456789/trading-agnetic-workflow/internal/adapters/config"
	"github.com/tejpal123456789/trading-agnetic-workflow/pkg/errors"
)

// NewChatProvider builds the configured chat provider with its rate limiter.
func NewChatProvider(cfg config.LLMConfig, callTimeout time.Duration) (ChatProvider, error) {
	name := ProviderName(NormalizeProviderName(cfg.Provider))
	limiter := NewRateLimiter(name, cfg.RequestsPerMinute)

	switch name {
	case ProviderNameOpenAI:
		if cfg.OpenAIKey == "" {
			return nil, errors.Wrap(errors.ErrInvalidInput, "OPENAI_API_KEY is required for the openai provider")
		}
		return NewOpenAIProvider(cfg.OpenAIKey, cfg.OpenAIBaseURL, callTimeout, limiter), nil
	case ProviderNameGoogle, "google":
		if cfg.GeminiKey == "" {
			return nil, errors.Wrap(errors.ErrInvalidInput, "GEMINI_API_KEY is required for the gemini provider")
		}
		return NewGeminiProvider(cfg.GeminiKey, limiter), nil
	default:
		return nil, errors.Wrapf(errors.ErrInvalidInput, "unsupported LLM provider: %s", cfg.Provider)
	}
}

// NormalizeProviderName makes provider lookup more forgiving.
func NormalizeProviderName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
