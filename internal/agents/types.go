package agents

import "github.com/tejpal123456789/trading-agnetic-workflow/internal/domain/analysis"

// AgentType enumerates the roles of the trading pipeline.
type AgentType string

const (
	AgentMarketAnalyst       AgentType = "market_analyst"
	AgentSocialAnalyst       AgentType = "social_analyst"
	AgentNewsAnalyst         AgentType = "news_analyst"
	AgentFundamentalsAnalyst AgentType = "fundamentals_analyst"

	AgentBullResearcher AgentType = "bull_researcher"
	AgentBearResearcher AgentType = "bear_researcher"
	AgentRiskyAnalyst   AgentType = "risky_analyst"
	AgentSafeAnalyst    AgentType = "safe_analyst"
	AgentNeutralAnalyst AgentType = "neutral_analyst"

	AgentResearchManager  AgentType = "research_manager"
	AgentTrader           AgentType = "trader"
	AgentPortfolioManager AgentType = "portfolio_manager"

	AgentSignalProcessor AgentType = "signal_processor"
	AgentReflector       AgentType = "reflector"
)

func (t AgentType) String() string { return string(t) }

// AnalystFor returns the analyst producing kind.
func AnalystFor(kind analysis.ReportKind) AgentType {
	switch kind {
	case analysis.ReportMarket:
		return AgentMarketAnalyst
	case analysis.ReportSentiment:
		return AgentSocialAnalyst
	case analysis.ReportNews:
		return AgentNewsAnalyst
	default:
		return AgentFundamentalsAnalyst
	}
}

// DebaterFor returns the agent speaking for role.
func DebaterFor(role analysis.DebateRole) AgentType {
	switch role {
	case analysis.RoleBull:
		return AgentBullResearcher
	case analysis.RoleBear:
		return AgentBearResearcher
	case analysis.RoleRisky:
		return AgentRiskyAnalyst
	case analysis.RoleSafe:
		return AgentSafeAnalyst
	default:
		return AgentNeutralAnalyst
	}
}
