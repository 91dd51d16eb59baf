package agents

import (
	"github.com/tejpal123456789/trading-agnetic-workflow/internal/adapters/ai"
	"github.com/tejpal123456789/trading-agnetic-workflow/internal/domain/memory"
)

// AgentConfig captures the static settings of one role.
type AgentConfig struct {
	Type                 AgentType
	Name                 string
	Tier                 ai.Tier
	SystemPromptTemplate string

	// Memory is the long-term store the role reads from; empty for roles without one.
	Memory memory.Role
	// NoMemories is rendered in place of recalled lessons when the store has nothing relevant.
	NoMemories string
}

// DefaultAgentConfigs holds the settings of every pipeline role.
var DefaultAgentConfigs = map[AgentType]AgentConfig{
	AgentMarketAnalyst: {
		Type:                 AgentMarketAnalyst,
		Name:                 "Market Analyst",
		Tier:                 ai.TierQuick,
		SystemPromptTemplate: "agents/market_analyst",
	},
	AgentSocialAnalyst: {
		Type:                 AgentSocialAnalyst,
		Name:                 "Social Media Analyst",
		Tier:                 ai.TierQuick,
		SystemPromptTemplate: "agents/social_analyst",
	},
	AgentNewsAnalyst: {
		Type:                 AgentNewsAnalyst,
		Name:                 "News Analyst",
		Tier:                 ai.TierQuick,
		SystemPromptTemplate: "agents/news_analyst",
	},
	AgentFundamentalsAnalyst: {
		Type:                 AgentFundamentalsAnalyst,
		Name:                 "Fundamentals Analyst",
		Tier:                 ai.TierQuick,
		SystemPromptTemplate: "agents/fundamentals_analyst",
	},
	AgentBullResearcher: {
		Type:                 AgentBullResearcher,
		Name:                 "Bull Researcher",
		Tier:                 ai.TierQuick,
		SystemPromptTemplate: "agents/bull_researcher",
		Memory:               memory.RoleBull,
		NoMemories:           "No past memories found.",
	},
	AgentBearResearcher: {
		Type:                 AgentBearResearcher,
		Name:                 "Bear Researcher",
		Tier:                 ai.TierQuick,
		SystemPromptTemplate: "agents/bear_researcher",
		Memory:               memory.RoleBear,
		NoMemories:           "No past memories found.",
	},
	AgentRiskyAnalyst: {
		Type:                 AgentRiskyAnalyst,
		Name:                 "Risky Analyst",
		Tier:                 ai.TierQuick,
		SystemPromptTemplate: "agents/risk_analyst",
	},
	AgentSafeAnalyst: {
		Type:                 AgentSafeAnalyst,
		Name:                 "Safe Analyst",
		Tier:                 ai.TierQuick,
		SystemPromptTemplate: "agents/risk_analyst",
	},
	AgentNeutralAnalyst: {
		Type:                 AgentNeutralAnalyst,
		Name:                 "Neutral Analyst",
		Tier:                 ai.TierQuick,
		SystemPromptTemplate: "agents/risk_analyst",
	},
	AgentResearchManager: {
		Type:                 AgentResearchManager,
		Name:                 "Research Manager",
		Tier:                 ai.TierDeep,
		SystemPromptTemplate: "agents/research_manager",
		Memory:               memory.RoleInvestJudge,
		NoMemories:           "No past investment decisions found.",
	},
	AgentTrader: {
		Type:                 AgentTrader,
		Name:                 "Trader",
		Tier:                 ai.TierQuick,
		SystemPromptTemplate: "agents/trader",
		Memory:               memory.RoleTrader,
		NoMemories:           "No past trading experiences found.",
	},
	AgentPortfolioManager: {
		Type:                 AgentPortfolioManager,
		Name:                 "Portfolio Manager",
		Tier:                 ai.TierDeep,
		SystemPromptTemplate: "agents/portfolio_manager",
		Memory:               memory.RoleRiskManager,
		NoMemories:           "No past portfolio decisions found.",
	},
	AgentSignalProcessor: {
		Type:                 AgentSignalProcessor,
		Name:                 "Signal Processor",
		Tier:                 ai.TierQuick,
		SystemPromptTemplate: "reflection/signal_processor",
	},
	AgentReflector: {
		Type:                 AgentReflector,
		Name:                 "Reflector",
		Tier:                 ai.TierDeep,
		SystemPromptTemplate: "reflection/reflector",
	},
}

// ConfigFor returns the settings of t, or a quick-tier config named after t.
func ConfigFor(t AgentType) AgentConfig {
	if cfg, ok := DefaultAgentConfigs[t]; ok {
		return cfg
	}
	return AgentConfig{Type: t, Name: string(t), Tier: ai.TierQuick}
}
