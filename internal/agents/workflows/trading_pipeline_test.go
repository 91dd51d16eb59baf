package workflows

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tejpal123456789/trading-agnetic-workflow/internal/adapters/ai"
	"github.com/tejpal123456789/trading-agnetic-workflow/internal/adapters/config"
	"github.com/tejpal123456789/trading-agnetic-workflow/internal/agents"
	"github.com/tejpal123456789/trading-agnetic-workflow/internal/testsupport"
	"github.com/tejpal123456789/trading-agnetic-workflow/internal/tools"
	pkgerrors "github.com/tejpal123456789/trading-agnetic-workflow/pkg/errors"
)

func newTestPipeline(t *testing.T, chat *testsupport.ScriptedChat, debate config.DebateConfig) *Pipeline {
	t.Helper()
	invoker := agents.NewInvoker(chat, agents.InvokerConfig{
		Models:      ai.Models{Quick: "quick", Deep: "deep"},
		Temperature: 0.1,
	}, nil, nil)
	f, err := NewFactory(FactoryDeps{
		Invoker: invoker,
		Catalog: tools.MustCatalog(testsupport.StaticTool("get_yfinance_data", "symbol")),
		Debate:  debate,
	})
	require.NoError(t, err)
	p, err := f.CreateTradingPipeline()
	require.NoError(t, err)
	return p
}

func TestTradingPipeline_EndToEnd(t *testing.T) {
	chat := testsupport.NewScriptedChat().
		Queue(agents.AgentMarketAnalyst.String(),
			testsupport.ToolCall("c1", "get_yfinance_data", `{"symbol":"ACME"}`),
			ai.Message{Content: "ACME trades above its 50-day average."},
		).
		Reply(agents.AgentResearchManager.String(), "Recommendation: BUY").
		Reply(agents.AgentTrader.String(), "FINAL TRANSACTION PROPOSAL: **BUY**").
		Reply(agents.AgentPortfolioManager.String(), "Approve. FINAL TRANSACTION PROPOSAL: **BUY**")

	p := newTestPipeline(t, chat, config.DebateConfig{InvestmentMaxRounds: 1, RiskMaxRounds: 1})
	res, err := p.Run(context.Background(), "ACME", "2024-01-10")
	require.NoError(t, err)

	s := res.State
	assert.Equal(t, "ACME", s.Subject)
	assert.Equal(t, "2024-01-10", s.AsOfDate)
	assert.Equal(t, "ACME trades above its 50-day average.", s.MarketReport)
	assert.Equal(t, "social_analyst response", s.SentimentReport)
	assert.Equal(t, "news_analyst response", s.NewsReport)
	assert.Equal(t, "fundamentals_analyst response", s.FundamentalsReport)

	assert.Equal(t, 1, s.InvestmentDebate.RoundCount)
	assert.Len(t, s.InvestmentDebate.Turns, 2)
	assert.Equal(t, 1, s.RiskDebate.RoundCount)
	assert.Len(t, s.RiskDebate.Turns, 3)

	assert.Equal(t, "Recommendation: BUY", s.InvestmentPlan)
	assert.Equal(t, "Recommendation: BUY", s.InvestmentDebate.ManagerDecision)
	assert.Equal(t, "FINAL TRANSACTION PROPOSAL: **BUY**", s.TradeProposal)
	assert.Equal(t, "Approve. FINAL TRANSACTION PROPOSAL: **BUY**", s.FinalDecision)
	assert.Equal(t, s.FinalDecision, s.RiskDebate.ManagerDecision)

	assert.Equal(t, []string{
		NodeInit, NodeParallelAnalysis, NodeBull, NodeBear, NodeResearchManager, NodeTrader,
		NodeRisky, NodeSafe, NodeNeutral, NodePortfolioManager, NodeConsolidation,
	}, res.Trace.Path())

	first := s.AuditLog[0]
	assert.Equal(t, "human", first.Role)
	assert.Equal(t, "ACME", first.Text)
	last := s.AuditLog[len(s.AuditLog)-1]
	assert.Equal(t, "system", last.Role)
	assert.Contains(t, last.Text, "Investment debate: 1 round(s)")
	assert.Contains(t, last.Text, "Final decision: available")

	// deep tier for the managers, quick tier elsewhere
	assert.Equal(t, "deep", chat.RequestsFor(agents.AgentPortfolioManager.String())[0].Model)
	assert.Equal(t, "quick", chat.RequestsFor(agents.AgentTrader.String())[0].Model)
}

func TestTradingPipeline_DebateLoops(t *testing.T) {
	chat := testsupport.NewScriptedChat()
	p := newTestPipeline(t, chat, config.DebateConfig{InvestmentMaxRounds: 2, RiskMaxRounds: 2})

	res, err := p.Run(context.Background(), "ACME", "2024-01-10")
	require.NoError(t, err)

	assert.Equal(t, []string{
		NodeInit, NodeParallelAnalysis,
		NodeBull, NodeBear, NodeBull, NodeBear,
		NodeResearchManager, NodeTrader,
		NodeRisky, NodeSafe, NodeNeutral, NodeRisky, NodeSafe, NodeNeutral,
		NodePortfolioManager, NodeConsolidation,
	}, res.Trace.Path())
	assert.Equal(t, 2, res.State.InvestmentDebate.RoundCount)
	assert.Equal(t, 2, res.State.RiskDebate.RoundCount)
	assert.Equal(t, 2, chat.Calls(agents.AgentBullResearcher.String()))
	assert.Equal(t, 2, chat.Calls(agents.AgentNeutralAnalyst.String()))

	transcript := res.State.InvestmentDebate.Transcript
	assert.Equal(t, 4, strings.Count(transcript, "\n")+1)
	assert.True(t, strings.HasPrefix(transcript, "Bull Analyst: bull_researcher response"))
}

func TestTradingPipeline_DegradesOnFailures(t *testing.T) {
	chat := testsupport.NewScriptedChat().
		Fail(agents.AgentNewsAnalyst.String(), errors.New("news provider down")).
		Fail(agents.AgentPortfolioManager.String(), errors.New("deep model unavailable"))

	p := newTestPipeline(t, chat, config.DebateConfig{InvestmentMaxRounds: 1, RiskMaxRounds: 1})
	res, err := p.Run(context.Background(), "ACME", "2024-01-10")
	require.NoError(t, err)

	assert.Empty(t, res.State.NewsReport)
	assert.NotEmpty(t, res.State.MarketReport)
	assert.Empty(t, res.State.FinalDecision)
	assert.Contains(t, res.State.AuditLog[len(res.State.AuditLog)-1].Text, "Final decision: missing")
}

func TestTradingPipeline_RecursionLimit(t *testing.T) {
	p := newTestPipeline(t, testsupport.NewScriptedChat(), config.DebateConfig{
		InvestmentMaxRounds: 3, RiskMaxRounds: 3, RecursionLimit: 6,
	})

	res, err := p.Run(context.Background(), "ACME", "2024-01-10")
	require.Error(t, err)
	assert.True(t, pkgerrors.Is(err, pkgerrors.ErrRecursionLimit))
	assert.Len(t, res.Trace.Steps(), 6)
}

func TestTradingPipeline_RequiredNodeExecutionsFitExactly(t *testing.T) {
	debate := config.DebateConfig{InvestmentMaxRounds: 2, RiskMaxRounds: 1}
	debate.RecursionLimit = debate.RequiredNodeExecutions()
	p := newTestPipeline(t, testsupport.NewScriptedChat(), debate)

	res, err := p.Run(context.Background(), "ACME", "2024-01-10")
	require.NoError(t, err)
	assert.Len(t, res.Trace.Steps(), debate.RecursionLimit)
}

func TestTradingPipeline_InputValidation(t *testing.T) {
	p := newTestPipeline(t, testsupport.NewScriptedChat(), config.DebateConfig{InvestmentMaxRounds: 1, RiskMaxRounds: 1})

	_, err := p.Run(context.Background(), "  ", "2024-01-10")
	assert.True(t, pkgerrors.Is(err, pkgerrors.ErrInvalidInput))

	_, err = p.Run(context.Background(), "ACME", "10/01/2024")
	assert.True(t, pkgerrors.Is(err, pkgerrors.ErrInvalidInput))
}

func TestTradingPipeline_DefaultDate(t *testing.T) {
	p := newTestPipeline(t, testsupport.NewScriptedChat(), config.DebateConfig{InvestmentMaxRounds: 1, RiskMaxRounds: 1})

	res, err := p.Run(context.Background(), "ACME", "")
	require.NoError(t, err)
	assert.Len(t, res.State.AsOfDate, len("2006-01-02"))
}

func TestNewFactory_RejectsInvalidRounds(t *testing.T) {
	invoker := agents.NewInvoker(testsupport.NewScriptedChat(), agents.InvokerConfig{}, nil, nil)
	f, err := NewFactory(FactoryDeps{Invoker: invoker, Debate: config.DebateConfig{InvestmentMaxRounds: 0, RiskMaxRounds: 1}})
	require.NoError(t, err)

	_, err = f.CreateTradingPipeline()
	assert.True(t, pkgerrors.Is(err, pkgerrors.ErrInvalidInput))
}
