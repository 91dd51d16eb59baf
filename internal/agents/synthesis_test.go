package agents

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tejpal123456789/trading-agnetic-workflow/internal/domain/analysis"
	"github.com/tejpal123456789/trading-agnetic-workflow/internal/domain/memory"
	"github.com/tejpal123456789/trading-agnetic-workflow/internal/testsupport"
)

func debatedState() analysis.State {
	s := analysis.New("ACME", "2024-01-10")
	s.MarketReport = "market"
	s.InvestmentDebate.Transcript = "Bull Analyst: up\nBear Analyst: down"
	s.InvestmentDebate.RoundCount = 1
	return s
}

func TestResearchManager_WritesPlanAndDebateDecision(t *testing.T) {
	chat := testsupport.NewScriptedChat().Reply(AgentResearchManager.String(), "Recommendation: BUY")
	rm := NewResearchManager(newTestInvoker(chat), newTestBank(t), 2)

	out := analysis.Apply(debatedState(), rm.Synthesize(context.Background(), debatedState()))
	assert.Equal(t, "Recommendation: BUY", out.InvestmentPlan)
	assert.Equal(t, "Recommendation: BUY", out.InvestmentDebate.ManagerDecision)
	assert.Equal(t, AgentResearchManager.String(), out.LastWriter)

	req := chat.RequestsFor(AgentResearchManager.String())[0]
	assert.Equal(t, "deep-model", req.Model)
	assert.Contains(t, testsupport.LastPrompt(req), "No past investment decisions found.")
	assert.Contains(t, testsupport.LastPrompt(req), "Debate Rounds: 1")
}

func TestTrader_QueriesMemoryWithPlan(t *testing.T) {
	chat := testsupport.NewScriptedChat().Reply(AgentTrader.String(), "FINAL TRANSACTION PROPOSAL: **BUY**")
	bank := newTestBank(t)
	require.NoError(t, bank.Remember(context.Background(), memory.RoleTrader, "Buy ACME on strength", "Scale in slowly."))

	s := debatedState()
	s.InvestmentPlan = "Buy ACME on strength"
	out := analysis.Apply(s, NewTrader(newTestInvoker(chat), bank, 1).Synthesize(context.Background(), s))

	assert.Equal(t, "FINAL TRANSACTION PROPOSAL: **BUY**", out.TradeProposal)
	req := chat.RequestsFor(AgentTrader.String())[0]
	assert.Equal(t, "quick-model", req.Model)
	assert.Contains(t, testsupport.LastPrompt(req), "Scale in slowly.")
}

func TestPortfolioManager_TruncatesPlanAndWritesFinalDecision(t *testing.T) {
	chat := testsupport.NewScriptedChat().Reply(AgentPortfolioManager.String(), "FINAL TRANSACTION PROPOSAL: **HOLD**")
	s := debatedState()
	s.InvestmentPlan = strings.Repeat("p", 400)
	s.TradeProposal = "Buy"
	s.RiskDebate.Transcript = "Risky Analyst: go"

	out := analysis.Apply(s, NewPortfolioManager(newTestInvoker(chat), newTestBank(t), 2).Synthesize(context.Background(), s))
	assert.Equal(t, "FINAL TRANSACTION PROPOSAL: **HOLD**", out.FinalDecision)
	assert.Equal(t, out.FinalDecision, out.RiskDebate.ManagerDecision)

	prompt := testsupport.LastPrompt(chat.RequestsFor(AgentPortfolioManager.String())[0])
	assert.Contains(t, prompt, "Original Investment Plan: "+strings.Repeat("p", 300)+"\n")
	assert.Contains(t, prompt, "No past portfolio decisions found.")
}

func TestSynthesizer_FailureLeavesFieldEmpty(t *testing.T) {
	chat := testsupport.NewScriptedChat().Fail(AgentTrader.String(), errors.New("timeout"))
	s := debatedState()
	s.InvestmentPlan = "plan"
	s.TradeProposal = "previous"

	out := analysis.Apply(s, NewTrader(newTestInvoker(chat), newTestBank(t), 2).Synthesize(context.Background(), s))
	assert.Empty(t, out.TradeProposal)
	last := out.AuditLog[len(out.AuditLog)-1]
	assert.Equal(t, "Trader", last.Role)
	assert.Contains(t, last.Text, "Trader failed: timeout")
}
