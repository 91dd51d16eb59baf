package ai

// ProviderName represents an AI provider identifier
type ProviderName string

// Provider name constants
const (
	ProviderNameOpenAI ProviderName = "openai"
	ProviderNameGoogle ProviderName = "gemini"
)

// String returns the string representation of the provider name
func (p ProviderName) String() string {
	return string(p)
}

// IsValid checks if the provider name is supported
func (p ProviderName) IsValid() bool {
	switch p {
	case ProviderNameOpenAI, ProviderNameGoogle:
		return true
	default:
		return false
	}
}

// Tier selects between the two model sizes of a run.
type Tier string

const (
	// TierQuick serves analysts, debaters, the trader and signal extraction.
	TierQuick Tier = "quick"
	// TierDeep serves the research manager, the portfolio manager and reflections.
	TierDeep Tier = "deep"
)

// Models maps tiers to provider model names.
type Models struct {
	Quick string
	Deep  string
}

// For returns the model name of tier, falling back to the quick model.
func (m Models) For(tier Tier) string {
	if tier == TierDeep && m.Deep != "" {
		return m.Deep
	}
	return m.Quick
}
