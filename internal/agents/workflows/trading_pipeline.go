package workflows

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/tejpal123456789/trading-agnetic-workflow/internal/agents"
	"github.com/tejpal123456789/trading-agnetic-workflow/internal/domain/analysis"
	"github.com/tejpal123456789/trading-agnetic-workflow/internal/metrics"
	"github.com/tejpal123456789/trading-agnetic-workflow/pkg/errors"
	"github.com/tejpal123456789/trading-agnetic-workflow/pkg/logger"
)

// Node names of the trading pipeline.
const (
	NodeInit             = "init"
	NodeParallelAnalysis = "parallel_analysis"
	NodeBull             = "bull"
	NodeBear             = "bear"
	NodeResearchManager  = "research_manager"
	NodeTrader           = "trader"
	NodeRisky            = "risky"
	NodeSafe             = "safe"
	NodeNeutral          = "neutral"
	NodePortfolioManager = "portfolio_manager"
	NodeConsolidation    = "consolidation"
)

// Result is the outcome of one pipeline run.
type Result struct {
	State analysis.State
	Trace *Trace
}

// Pipeline is the fixed trading graph:
//
//	init → parallel_analysis → bull → bear → (bull | research_manager)
//	research_manager → trader → risky → safe → neutral → (risky | portfolio_manager)
//	portfolio_manager → consolidation
type Pipeline struct {
	graph *Graph
	log   *logger.Logger
}

// CreateTradingPipeline wires every stage into the trading graph.
func (f *Factory) CreateTradingPipeline() (*Pipeline, error) {
	f.log.Info("Creating trading pipeline workflow")

	analysts, err := f.CreateParallelAnalysts()
	if err != nil {
		return nil, err
	}
	investment, err := f.CreateInvestmentDebate()
	if err != nil {
		return nil, err
	}
	risk, err := f.CreateRiskDebate()
	if err != nil {
		return nil, err
	}

	matches := f.deps.Debate.MemoryMatches
	manager := agents.NewResearchManager(f.deps.Invoker, f.deps.Memory, matches)
	trader := agents.NewTrader(f.deps.Invoker, f.deps.Memory, matches)
	portfolio := agents.NewPortfolioManager(f.deps.Invoker, f.deps.Memory, matches)

	g := NewGraph("trading_pipeline", f.deps.Debate.RecursionLimit).
		AddNode(NodeInit, initNode).
		AddNode(NodeParallelAnalysis, func(ctx context.Context, s analysis.State) (analysis.State, error) {
			return analysis.ApplyAll(s, analysts.Run(ctx, s)...), nil
		}).
		AddNode(NodeBull, debateNode(investment, analysis.RoleBull)).
		AddNode(NodeBear, debateNode(investment, analysis.RoleBear)).
		AddNode(NodeResearchManager, synthesisNode(manager)).
		AddNode(NodeTrader, synthesisNode(trader)).
		AddNode(NodeRisky, debateNode(risk, analysis.RoleRisky)).
		AddNode(NodeSafe, debateNode(risk, analysis.RoleSafe)).
		AddNode(NodeNeutral, debateNode(risk, analysis.RoleNeutral)).
		AddNode(NodePortfolioManager, synthesisNode(portfolio)).
		AddNode(NodeConsolidation, consolidationNode).
		AddEdge(NodeInit, NodeParallelAnalysis).
		AddEdge(NodeParallelAnalysis, NodeBull).
		AddEdge(NodeBull, NodeBear).
		AddConditionalEdge(NodeBear, debateRoute(investment, NodeResearchManager), NodeBull, NodeResearchManager).
		AddEdge(NodeResearchManager, NodeTrader).
		AddEdge(NodeTrader, NodeRisky).
		AddEdge(NodeRisky, NodeSafe).
		AddEdge(NodeSafe, NodeNeutral).
		AddConditionalEdge(NodeNeutral, debateRoute(risk, NodePortfolioManager), NodeRisky, NodePortfolioManager).
		AddEdge(NodePortfolioManager, NodeConsolidation).
		AddEdge(NodeConsolidation, End)

	if err := g.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid trading pipeline")
	}

	f.log.Infow("Trading pipeline workflow created",
		"investment_rounds", investment.MaxRounds(),
		"risk_rounds", risk.MaxRounds(),
		"recursion_limit", g.RecursionLimit(),
	)
	return &Pipeline{graph: g, log: logger.Get().With("component", "trading_pipeline")}, nil
}

// Graph exposes the underlying graph.
func (p *Pipeline) Graph() *Graph { return p.graph }

// Run analyses subject as of asOfDate (YYYY-MM-DD). An empty date means two days ago.
//
// Only structural failures are returned as errors; failed model or tool calls degrade
// to empty fields in the returned state.
func (p *Pipeline) Run(ctx context.Context, subject, asOfDate string) (*Result, error) {
	subject = strings.TrimSpace(subject)
	if subject == "" {
		return nil, errors.Wrapf(errors.ErrInvalidInput, "subject is required")
	}
	if asOfDate == "" {
		asOfDate = analysis.DefaultAsOfDate(time.Now())
	}
	if _, err := time.Parse(analysis.DateLayout, asOfDate); err != nil {
		return nil, errors.Wrapf(errors.ErrInvalidInput, "as-of date %q: expected YYYY-MM-DD", asOfDate)
	}

	trace := NewTrace()
	p.log.Infow("Pipeline run started", "subject", subject, "date", asOfDate, "session_id", trace.SessionID())

	final, err := p.graph.Execute(ctx, analysis.New(subject, asOfDate), trace)
	result := &Result{State: final, Trace: trace}
	if err != nil {
		p.log.Errorw("Pipeline run failed", "subject", subject, "date", asOfDate, "error", err)
		return result, err
	}

	p.log.Infow("Pipeline run finished",
		"subject", subject,
		"date", asOfDate,
		"session_id", trace.SessionID(),
		"nodes", len(trace.Steps()),
		"duration", trace.Total(),
	)
	p.log.Debug(trace.Summary())
	return result, nil
}

func initNode(_ context.Context, s analysis.State) (analysis.State, error) {
	return analysis.Apply(s, analysis.Delta{
		Writer: NodeInit,
		Audit:  []analysis.AuditEntry{{Role: "human", Text: s.Subject}},
	}), nil
}

func debateNode(d *agents.Debate, role analysis.DebateRole) NodeFunc {
	return func(ctx context.Context, s analysis.State) (analysis.State, error) {
		return analysis.Apply(s, d.Turn(ctx, s, role)), nil
	}
}

// debateRoute loops back to the first speaker until the round cap is reached, then leaves for after.
func debateRoute(d *agents.Debate, after string) RouteFunc {
	return func(s analysis.State) string {
		role, done := d.Next(s)
		if done {
			metrics.RecordDebate(d.Slot().String(), s.Debate(d.Slot()).RoundCount)
			return after
		}
		return nodeForRole(role)
	}
}

func nodeForRole(role analysis.DebateRole) string {
	switch role {
	case analysis.RoleBull:
		return NodeBull
	case analysis.RoleBear:
		return NodeBear
	case analysis.RoleRisky:
		return NodeRisky
	case analysis.RoleSafe:
		return NodeSafe
	case analysis.RoleNeutral:
		return NodeNeutral
	default:
		return string(role)
	}
}

func synthesisNode(sz *agents.Synthesizer) NodeFunc {
	return func(ctx context.Context, s analysis.State) (analysis.State, error) {
		return analysis.Apply(s, sz.Synthesize(ctx, s)), nil
	}
}

func consolidationNode(_ context.Context, s analysis.State) (analysis.State, error) {
	summary := fmt.Sprintf("Analysis complete for %s on %s. Investment debate: %d round(s). Risk debate: %d round(s). Trade proposal: %s. Final decision: %s.",
		s.Subject, s.AsOfDate,
		s.InvestmentDebate.RoundCount, s.RiskDebate.RoundCount,
		availability(s.TradeProposal), availability(s.FinalDecision),
	)
	return analysis.Apply(s, analysis.Delta{
		Writer: NodeConsolidation,
		Audit:  []analysis.AuditEntry{{Role: "system", Text: summary}},
	}), nil
}

func availability(text string) string {
	if strings.TrimSpace(text) == "" {
		return "missing"
	}
	return "available"
}
