package agents

import (
	"context"

	"github.com/tejpal123456789/trading-agnetic-workflow/internal/domain/analysis"
	"github.com/tejpal123456789/trading-agnetic-workflow/internal/domain/memory"
)

// Researcher argues the bull or bear side of the investment debate, drawing on its
// role's long-term memory.
type Researcher struct {
	invoker *Invoker
	bank    *memory.Bank
	matches int
}

func NewResearcher(invoker *Invoker, bank *memory.Bank, matches int) *Researcher {
	return &Researcher{invoker: invoker, bank: bank, matches: matches}
}

func (r *Researcher) Argue(ctx context.Context, s analysis.State, role analysis.DebateRole) (string, error) {
	agent := DebaterFor(role)
	cfg := ConfigFor(agent)
	situation := s.SituationSummary()
	ds := s.InvestmentDebate

	opponent := analysis.RoleBear
	if role == analysis.RoleBear {
		opponent = analysis.RoleBull
	}

	prompt, err := r.invoker.Render(cfg.SystemPromptTemplate, map[string]any{
		"Subject":          s.Subject,
		"Date":             s.AsOfDate,
		"Situation":        situation,
		"Transcript":       ds.Transcript,
		"OpponentArgument": ds.LatestFrom(opponent),
		"Memories":         r.bank.Recall(ctx, cfg.Memory, situation, r.matches, cfg.NoMemories),
	})
	if err != nil {
		return "", err
	}
	return r.invoker.Complete(ctx, agent, "", prompt)
}

// PeerArgument is another risk analyst's latest argument.
type PeerArgument struct {
	Label    string
	Argument string
}

// RiskAnalyst argues one risk perspective on the trader's proposal. Risk analysts have no memory store.
type RiskAnalyst struct {
	invoker *Invoker
	roles   []analysis.DebateRole
}

// NewRiskAnalyst takes the party order so each speaker sees its peers' latest arguments.
func NewRiskAnalyst(invoker *Invoker, roles []analysis.DebateRole) *RiskAnalyst {
	return &RiskAnalyst{invoker: invoker, roles: roles}
}

func (r *RiskAnalyst) Argue(ctx context.Context, s analysis.State, role analysis.DebateRole) (string, error) {
	agent := DebaterFor(role)
	ds := s.RiskDebate

	peers := make([]PeerArgument, 0, len(r.roles)-1)
	for _, peer := range r.roles {
		if peer == role {
			continue
		}
		if arg := ds.LatestFrom(peer); arg != "" {
			peers = append(peers, PeerArgument{Label: peer.Label(), Argument: arg})
		}
	}

	prompt, err := r.invoker.Render(ConfigFor(agent).SystemPromptTemplate, map[string]any{
		"Perspective":   string(role),
		"Subject":       s.Subject,
		"Date":          s.AsOfDate,
		"TradeProposal": s.TradeProposal,
		"Transcript":    ds.Transcript,
		"PeerArguments": peers,
		"MarketReport":  s.MarketReport,
	})
	if err != nil {
		return "", err
	}
	return r.invoker.Complete(ctx, agent, "", prompt)
}
