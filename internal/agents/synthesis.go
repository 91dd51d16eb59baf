package agents

import (
	"context"
	"fmt"
	"time"

	"github.com/tejpal123456789/trading-agnetic-workflow/internal/domain/analysis"
	"github.com/tejpal123456789/trading-agnetic-workflow/internal/domain/memory"
	"github.com/tejpal123456789/trading-agnetic-workflow/internal/metrics"
	"github.com/tejpal123456789/trading-agnetic-workflow/pkg/logger"
)

// Synthesizer turns accumulated context into one authoritative decision text with a
// single non-interactive call. A failed call leaves the decision empty.
type Synthesizer struct {
	agent   AgentType
	invoker *Invoker
	bank    *memory.Bank
	matches int

	// query is the text used to look up past lessons.
	query func(s analysis.State) string
	// data fills the role's prompt template; memories is the rendered recall.
	data func(s analysis.State, memories string) map[string]any
	// write addresses the decision at the role's state field(s).
	write func(decision string) analysis.Delta

	log *logger.Logger
}

// Synthesize returns the delta carrying the decision and its audit entry.
func (sz *Synthesizer) Synthesize(ctx context.Context, s analysis.State) analysis.Delta {
	cfg := ConfigFor(sz.agent)
	start := time.Now()

	memories := sz.bank.Recall(ctx, cfg.Memory, sz.query(s), sz.matches, cfg.NoMemories)

	decision, err := sz.decide(ctx, cfg, s, memories)
	if err != nil {
		metrics.RecordDegraded(sz.agent.String())
		sz.log.Errorw("Synthesis failed, leaving decision empty", "subject", s.Subject, "error", err)
		d := sz.write("")
		d.Writer = sz.agent.String()
		d.Audit = []analysis.AuditEntry{{Role: cfg.Name, Text: fmt.Sprintf("%s failed: %v", cfg.Name, err)}}
		return d
	}

	sz.log.Infow("Decision synthesized", "subject", s.Subject, "length", len(decision), "duration", time.Since(start))
	d := sz.write(decision)
	d.Writer = sz.agent.String()
	d.Audit = []analysis.AuditEntry{{Role: cfg.Name, Text: decision}}
	return d
}

func (sz *Synthesizer) decide(ctx context.Context, cfg AgentConfig, s analysis.State, memories string) (string, error) {
	prompt, err := sz.invoker.Render(cfg.SystemPromptTemplate, sz.data(s, memories))
	if err != nil {
		return "", err
	}
	return sz.invoker.Complete(ctx, sz.agent, "", prompt)
}

// NewResearchManager judges the investment debate; its decision is the investment plan.
func NewResearchManager(invoker *Invoker, bank *memory.Bank, matches int) *Synthesizer {
	return &Synthesizer{
		agent:   AgentResearchManager,
		invoker: invoker,
		bank:    bank,
		matches: matches,
		query:   func(s analysis.State) string { return s.SituationSummary() },
		data: func(s analysis.State, memories string) map[string]any {
			return map[string]any{
				"Subject":    s.Subject,
				"Date":       s.AsOfDate,
				"Situation":  s.SituationSummary(),
				"Transcript": s.InvestmentDebate.Transcript,
				"Rounds":     s.InvestmentDebate.RoundCount,
				"Memories":   memories,
			}
		},
		write: func(decision string) analysis.Delta {
			return analysis.Delta{
				InvestmentPlan:   analysis.Text(decision),
				InvestmentDebate: &analysis.DebateDelta{ManagerDecision: analysis.Text(decision)},
			}
		},
		log: logger.Get().With("component", "synthesis", "agent", AgentResearchManager),
	}
}

// NewTrader turns the investment plan into a trade proposal.
func NewTrader(invoker *Invoker, bank *memory.Bank, matches int) *Synthesizer {
	return &Synthesizer{
		agent:   AgentTrader,
		invoker: invoker,
		bank:    bank,
		matches: matches,
		query:   func(s analysis.State) string { return s.InvestmentPlan },
		data: func(s analysis.State, memories string) map[string]any {
			return map[string]any{
				"Subject":        s.Subject,
				"Date":           s.AsOfDate,
				"InvestmentPlan": s.InvestmentPlan,
				"MarketReport":   s.MarketReport,
				"Memories":       memories,
			}
		},
		write: func(decision string) analysis.Delta {
			return analysis.Delta{TradeProposal: analysis.Text(decision)}
		},
		log: logger.Get().With("component", "synthesis", "agent", AgentTrader),
	}
}

// NewPortfolioManager judges the risk debate; its decision is the final trade decision.
func NewPortfolioManager(invoker *Invoker, bank *memory.Bank, matches int) *Synthesizer {
	return &Synthesizer{
		agent:   AgentPortfolioManager,
		invoker: invoker,
		bank:    bank,
		matches: matches,
		query: func(s analysis.State) string {
			return s.TradeProposal + " Risk Debate: " + s.RiskDebate.Transcript
		},
		data: func(s analysis.State, memories string) map[string]any {
			return map[string]any{
				"Subject":        s.Subject,
				"Date":           s.AsOfDate,
				"TradeProposal":  s.TradeProposal,
				"Transcript":     s.RiskDebate.Transcript,
				"InvestmentPlan": s.InvestmentPlan,
				"Memories":       memories,
			}
		},
		write: func(decision string) analysis.Delta {
			return analysis.Delta{
				FinalDecision: analysis.Text(decision),
				RiskDebate:    &analysis.DebateDelta{ManagerDecision: analysis.Text(decision)},
			}
		},
		log: logger.Get().With("component", "synthesis", "agent", AgentPortfolioManager),
	}
}
