package workflows

import (
	"time"

	"github.com/tejpal123456789/trading-agnetic-workflow/internal/adapters/config"
	"github.com/tejpal123456789/trading-agnetic-workflow/internal/agents"
	"github.com/tejpal123456789/trading-agnetic-workflow/internal/domain/analysis"
	"github.com/tejpal123456789/trading-agnetic-workflow/internal/domain/memory"
	"github.com/tejpal123456789/trading-agnetic-workflow/internal/tools"
	"github.com/tejpal123456789/trading-agnetic-workflow/pkg/errors"
	"github.com/tejpal123456789/trading-agnetic-workflow/pkg/logger"
)

// FactoryDeps contains everything the pipeline stages are built from.
type FactoryDeps struct {
	Invoker *agents.Invoker
	Catalog tools.Catalog
	// Memory may be nil, in which case every role prompts with its "no past memories" text.
	Memory         *memory.Bank
	Debate         config.DebateConfig
	AnalystTimeout time.Duration
}

// Factory creates the pipeline stages and wires them into graphs.
type Factory struct {
	deps FactoryDeps
	log  *logger.Logger
}

// NewFactory validates deps and fills in debate defaults.
func NewFactory(deps FactoryDeps) (*Factory, error) {
	if deps.Invoker == nil {
		return nil, errors.Wrapf(errors.ErrInvalidInput, "workflow factory requires an invoker")
	}
	if deps.Debate.RecursionLimit <= 0 {
		deps.Debate.RecursionLimit = DefaultRecursionLimit
	}
	if deps.Debate.AnalystMaxSteps <= 0 {
		deps.Debate.AnalystMaxSteps = agents.DefaultMaxSteps
	}
	if deps.Debate.MemoryMatches <= 0 {
		deps.Debate.MemoryMatches = 1
	}
	return &Factory{
		deps: deps,
		log:  logger.Get().With("component", "workflow_factory"),
	}, nil
}

// CreateParallelAnalysts builds the four report producers, each with the full tool catalog.
func (f *Factory) CreateParallelAnalysts() (*agents.ParallelAnalysis, error) {
	kinds := analysis.ReportKinds()
	producers := make([]agents.Producer, 0, len(kinds))
	for _, kind := range kinds {
		producers = append(producers, agents.NewAnalyst(kind, f.deps.Invoker, f.deps.Catalog, f.deps.Debate.AnalystMaxSteps))
	}

	pa, err := agents.NewParallelAnalysis(f.deps.AnalystTimeout, producers...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create parallel analysts")
	}
	f.log.Infof("Created %d analysts with %d tools", len(producers), f.deps.Catalog.Len())
	return pa, nil
}

// InvestmentRoles is the speaking order of the investment debate.
func InvestmentRoles() []analysis.DebateRole {
	return []analysis.DebateRole{analysis.RoleBull, analysis.RoleBear}
}

// RiskRoles is the speaking order of the risk debate.
func RiskRoles() []analysis.DebateRole {
	return []analysis.DebateRole{analysis.RoleRisky, analysis.RoleSafe, analysis.RoleNeutral}
}

// CreateInvestmentDebate builds the bull/bear debate.
func (f *Factory) CreateInvestmentDebate() (*agents.Debate, error) {
	researcher := agents.NewResearcher(f.deps.Invoker, f.deps.Memory, f.deps.Debate.MemoryMatches)
	d, err := agents.NewDebate(analysis.SlotInvestment, InvestmentRoles(), f.deps.Debate.InvestmentMaxRounds,
		map[analysis.DebateRole]agents.Debater{
			analysis.RoleBull: researcher,
			analysis.RoleBear: researcher,
		})
	if err != nil {
		return nil, errors.Wrap(err, "failed to create investment debate")
	}
	return d, nil
}

// CreateRiskDebate builds the risky/safe/neutral debate.
func (f *Factory) CreateRiskDebate() (*agents.Debate, error) {
	roles := RiskRoles()
	analyst := agents.NewRiskAnalyst(f.deps.Invoker, roles)
	debaters := make(map[analysis.DebateRole]agents.Debater, len(roles))
	for _, role := range roles {
		debaters[role] = analyst
	}
	d, err := agents.NewDebate(analysis.SlotRisk, roles, f.deps.Debate.RiskMaxRounds, debaters)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create risk debate")
	}
	return d, nil
}
