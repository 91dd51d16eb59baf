package reflection

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/tejpal123456789/trading-agnetic-workflow/internal/agents"
	"github.com/tejpal123456789/trading-agnetic-workflow/internal/domain/analysis"
	"github.com/tejpal123456789/trading-agnetic-workflow/internal/domain/memory"
	"github.com/tejpal123456789/trading-agnetic-workflow/pkg/logger"
)

// RoleTarget is one role that learns from an outcome: the state slice it is judged on
// and the memory store its lesson goes to.
type RoleTarget struct {
	Name    string
	Memory  memory.Role
	Extract func(s analysis.State) string
}

// RoleTargets lists the five learning roles in reflection order.
func RoleTargets() []RoleTarget {
	return []RoleTarget{
		{Name: "Bull Researcher", Memory: memory.RoleBull, Extract: func(s analysis.State) string {
			return s.InvestmentDebate.RoleTranscript(analysis.RoleBull)
		}},
		{Name: "Bear Researcher", Memory: memory.RoleBear, Extract: func(s analysis.State) string {
			return s.InvestmentDebate.RoleTranscript(analysis.RoleBear)
		}},
		{Name: "Research Manager", Memory: memory.RoleInvestJudge, Extract: func(s analysis.State) string {
			return s.InvestmentPlan
		}},
		{Name: "Trader", Memory: memory.RoleTrader, Extract: func(s analysis.State) string {
			return s.TradeProposal
		}},
		{Name: "Risk Manager", Memory: memory.RoleRiskManager, Extract: func(s analysis.State) string {
			return s.FinalDecision
		}},
	}
}

const noDecision = "No decision recorded"

// Reflector turns an outcome into per-role lessons and stores them in long-term memory.
type Reflector struct {
	invoker *agents.Invoker
	bank    *memory.Bank
	timeout time.Duration
	log     *logger.Logger
}

// NewReflector bounds each reflection call by timeout when it is positive.
func NewReflector(invoker *agents.Invoker, bank *memory.Bank, timeout time.Duration) *Reflector {
	return &Reflector{
		invoker: invoker,
		bank:    bank,
		timeout: timeout,
		log:     logger.Get().With("component", "reflector"),
	}
}

// Situation renders the context a role's lesson is filed under.
func (r *Reflector) Situation(s analysis.State, target RoleTarget) (string, error) {
	return r.invoker.Render("reflection/situation", map[string]any{
		"Subject":            s.Subject,
		"Date":               s.AsOfDate,
		"MarketReport":       s.MarketReport,
		"SentimentReport":    s.SentimentReport,
		"NewsReport":         s.NewsReport,
		"FundamentalsReport": s.FundamentalsReport,
		"RoleName":           target.Name,
		"RoleContent":        target.Extract(s),
	})
}

// Reflect produces target's lesson and appends it to the role's store. A failed call is
// returned as "Error during reflection: ..." text. A failed memory write is logged and the
// lesson is still returned, with stored false.
func (r *Reflector) Reflect(ctx context.Context, s analysis.State, target RoleTarget, outcome Outcome) (lesson string, stored bool) {
	log := r.log.With("role", target.Name, "subject", s.Subject)

	situation, text, err := r.reflect(ctx, s, target, outcome)
	if err != nil {
		log.Errorw("Error reflecting", "error", err)
		return fmt.Sprintf("Error during reflection: %v", err), false
	}

	if err := r.bank.Remember(ctx, target.Memory, situation, text); err != nil {
		log.Errorw("Failed to store lesson", "memory", target.Memory.StoreName(), "error", err)
		return text, false
	}

	log.Infow("Reflection completed", "memory", target.Memory.StoreName(), "length", len(text))
	return text, true
}

func (r *Reflector) reflect(ctx context.Context, s analysis.State, target RoleTarget, outcome Outcome) (situation, lesson string, err error) {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	situation, err = r.Situation(s, target)
	if err != nil {
		return "", "", err
	}

	decision := s.FinalDecision
	if strings.TrimSpace(decision) == "" {
		decision = noDecision
	}
	prompt, err := r.invoker.Render(agents.ConfigFor(agents.AgentReflector).SystemPromptTemplate, map[string]any{
		"Situation": situation,
		"Decision":  decision,
		"Outcome":   outcome.Description,
		"Result":    FormatResult(outcome.Returns),
	})
	if err != nil {
		return "", "", err
	}

	lesson, err = r.invoker.Complete(ctx, agents.AgentReflector, "", prompt)
	if err != nil {
		return "", "", err
	}
	return situation, lesson, nil
}

// SystemReflection asks for a system-level review of the whole run.
func (r *Reflector) SystemReflection(ctx context.Context, signal Signal, verdict string, returns float64) string {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	prompt, err := r.invoker.Render("reflection/system", map[string]any{
		"Signal":      string(signal),
		"Correctness": verdict,
		"Result":      FormatDollars(returns),
	})
	if err == nil {
		var text string
		if text, err = r.invoker.Complete(ctx, agents.AgentReflector, "", prompt); err == nil {
			return text
		}
	}
	r.log.Errorw("System reflection failed", "error", err)
	return "System reflection generation failed"
}
