package reflection

import (
	"context"
	"errors"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tejpal123456789/trading-agnetic-workflow/internal/adapters/ai"
	"github.com/tejpal123456789/trading-agnetic-workflow/internal/adapters/embeddings"
	"github.com/tejpal123456789/trading-agnetic-workflow/internal/agents"
	"github.com/tejpal123456789/trading-agnetic-workflow/internal/domain/analysis"
	"github.com/tejpal123456789/trading-agnetic-workflow/internal/domain/memory"
	"github.com/tejpal123456789/trading-agnetic-workflow/internal/events"
	"github.com/tejpal123456789/trading-agnetic-workflow/internal/repository/inmemory"
	"github.com/tejpal123456789/trading-agnetic-workflow/internal/testsupport"
)

func TestNormalizeSignal(t *testing.T) {
	tests := []struct {
		reply string
		want  Signal
	}{
		{"BUY", SignalBuy},
		{" sell\n", SignalSell},
		{"Hold", SignalHold},
		{"I would BUY this", SignalBuy},
		{"SELL or HOLD", SignalSell},
		{"buy then sell", SignalBuy},
		{"maybe hold", SignalHold},
		{"no idea", SignalUnparsable},
		{"", SignalUnparsable},
	}
	for _, tt := range tests {
		t.Run(tt.reply, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeSignal(tt.reply))
		})
	}
}

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name    string
		signal  Signal
		returns float64
		want    string
	}{
		{"buy profit", SignalBuy, 1250, VerdictBoughtProfited},
		{"buy loss", SignalBuy, -10, VerdictBoughtLost},
		{"buy flat", SignalBuy, 0, VerdictNeutral},
		{"sell loss", SignalSell, -300, VerdictSoldAvoidedLoss},
		{"sell gain", SignalSell, 40, VerdictSoldMissedGains},
		{"hold small up", SignalHold, 99.99, VerdictHeldSideways},
		{"hold small down", SignalHold, -50, VerdictHeldSideways},
		{"hold at lower bound", SignalHold, 100, VerdictNeutral},
		{"hold middle", SignalHold, 300, VerdictNeutral},
		{"hold at upper bound", SignalHold, 500, VerdictNeutral},
		{"hold big down", SignalHold, -501, VerdictHeldSignificant},
		{"unparsable", SignalUnparsable, 1000, VerdictNeutral},
		{"failed", SignalFailed, -1000, VerdictNeutral},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Evaluate(tt.signal, tt.returns, DefaultThresholds))
		})
	}
}

func TestEvaluate_CustomThresholds(t *testing.T) {
	th := Thresholds{HoldCorrectBelow: 10, HoldIncorrectAbove: 20}
	assert.Equal(t, VerdictNeutral, Evaluate(SignalHold, 50, DefaultThresholds))
	assert.Equal(t, VerdictHeldSignificant, Evaluate(SignalHold, 50, th))
}

func TestFormatting(t *testing.T) {
	assert.Equal(t, "$1,250.00", FormatDollars(1250))
	assert.Equal(t, "$-500.00", FormatDollars(-500))
	assert.Equal(t, "Break-even", FormatResult(0))
	assert.Equal(t, "$12.50", FormatResult(12.5))
	assert.Equal(t, "Stock moved favorably, generating $1,250.00 profit", Describe(1250))
	assert.Equal(t, "Stock moved unfavorably, resulting in $500.00 loss", Describe(-500))
}

func TestSimulate(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 100; i++ {
		o := Simulate(rng, nil, "")
		assert.GreaterOrEqual(t, o.Returns, -1000.0)
		assert.Less(t, o.Returns, 2000.0)
		assert.NotEmpty(t, o.Description)
	}

	fixed := 42.0
	o := Simulate(rng, &fixed, "custom")
	assert.Equal(t, 42.0, o.Returns)
	assert.Equal(t, "custom", o.Description)

	assert.Equal(t, Describe(42), Simulate(rng, &fixed, "").Description)
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "reflection_ACME_2024-01-10.json", FileName("ACME", "2024-01-10"))
	assert.Equal(t, "reflection_BRK_B_2024-01-10.json", FileName("BRK/B", "2024-01-10"))
}

type recordingProducer struct {
	topics []string
	events []interface{}
}

func (p *recordingProducer) Publish(_ context.Context, topic, _ string, event interface{}) error {
	p.topics = append(p.topics, topic)
	p.events = append(p.events, event)
	return nil
}

func terminalState() analysis.State {
	s := analysis.New("ACME", "2024-01-10")
	s.MarketReport = "Strong uptrend"
	s.SentimentReport = "Positive"
	s.NewsReport = "New product launch"
	s.FundamentalsReport = "Growing revenue"
	s.InvestmentDebate.RoleTranscripts = map[analysis.DebateRole]string{
		analysis.RoleBull: "Bull Analyst: growth ahead",
		analysis.RoleBear: "Bear Analyst: valuation stretched",
	}
	s.InvestmentPlan = "Recommendation: BUY"
	s.TradeProposal = "FINAL TRANSACTION PROPOSAL: **BUY**"
	s.FinalDecision = "Approved. FINAL TRANSACTION PROPOSAL: **BUY**"
	return s
}

func newTestService(t *testing.T, chat *testsupport.ScriptedChat, dir string) (*Service, *memory.Bank, *recordingProducer) {
	t.Helper()
	bank, err := memory.NewBank(inmemory.Factory(embeddings.NewHashingProvider(64)))
	require.NoError(t, err)

	invoker := agents.NewInvoker(chat, agents.InvokerConfig{Models: ai.Models{Quick: "quick", Deep: "deep"}}, nil, nil)
	producer := &recordingProducer{}
	svc := NewService(invoker, bank, events.NewPublisher(producer), Config{
		Thresholds: DefaultThresholds,
		OutputDir:  dir,
		Save:       dir != "",
	})
	return svc, bank, producer
}

func storeCount(t *testing.T, bank *memory.Bank, role memory.Role) int {
	t.Helper()
	store, err := bank.Store(role)
	require.NoError(t, err)
	n, err := store.Count(context.Background())
	require.NoError(t, err)
	return n
}

func TestService_ProcessProfitableBuy(t *testing.T) {
	chat := testsupport.NewScriptedChat().
		Reply(agents.AgentSignalProcessor.String(), "buy").
		Respond(agents.AgentReflector.String(), func(req ai.ChatRequest) string {
			if strings.Contains(testsupport.LastPrompt(req), "overall system performance") {
				return "system lesson"
			}
			return "lesson"
		})
	dir := t.TempDir()
	svc, bank, producer := newTestService(t, chat, dir)

	bundle, err := svc.Process(context.Background(), terminalState(), Outcome{Returns: 1250, Description: "Stock rose"})
	require.NoError(t, err)

	assert.Equal(t, SignalBuy, bundle.ExtractedSignal)
	assert.Equal(t, VerdictBoughtProfited, bundle.DecisionCorrectness)
	assert.Equal(t, "ACME", bundle.Company)
	assert.Equal(t, "2024-01-10", bundle.TradeDate)
	assert.Equal(t, "Approved. FINAL TRANSACTION PROPOSAL: **BUY**", bundle.RawDecision)
	assert.Equal(t, "system lesson", bundle.SystemReflection)
	assert.Equal(t, 5, bundle.LessonsStored)
	require.Len(t, bundle.AgentReflections, 5)
	for _, target := range RoleTargets() {
		assert.Equal(t, "lesson", bundle.AgentReflections[target.Name])
		assert.Equal(t, 1, storeCount(t, bank, target.Memory), target.Name)
	}

	// signal on the quick tier, reflections on the deep tier
	assert.Equal(t, "quick", chat.RequestsFor(agents.AgentSignalProcessor.String())[0].Model)
	reflections := chat.RequestsFor(agents.AgentReflector.String())
	require.Len(t, reflections, 6)
	assert.Equal(t, "deep", reflections[0].Model)

	bull := testsupport.LastPrompt(reflections[0])
	assert.Contains(t, bull, "BULL RESEARCHER SPECIFIC CONTENT:")
	assert.Contains(t, bull, "Bull Analyst: growth ahead")
	assert.Contains(t, bull, "Financial Result: $1,250.00")
	assert.Contains(t, testsupport.LastPrompt(reflections[5]), "Returns: $1,250.00")

	assert.Equal(t, filepath.Join(dir, "reflection_ACME_2024-01-10.json"), bundle.SavedPath)
	saved, err := Load(bundle.SavedPath)
	require.NoError(t, err)
	assert.Equal(t, bundle.DecisionCorrectness, saved.DecisionCorrectness)
	assert.Equal(t, bundle.AgentReflections, saved.AgentReflections)

	require.Len(t, producer.topics, 1)
	ev, ok := producer.events[0].(events.ReflectionEvent)
	require.True(t, ok)
	assert.Equal(t, 5, ev.Lessons)
	assert.Equal(t, "BUY", ev.Signal)
}

func TestService_FailuresAreRecordedNotRaised(t *testing.T) {
	chat := testsupport.NewScriptedChat().
		Fail(agents.AgentSignalProcessor.String(), errors.New("quick model down")).
		Fail(agents.AgentReflector.String(), errors.New("deep model down"))
	svc, bank, _ := newTestService(t, chat, "")

	bundle, err := svc.Process(context.Background(), terminalState(), Outcome{Returns: 0, Description: "flat"})
	require.NoError(t, err)

	assert.Equal(t, SignalFailed, bundle.ExtractedSignal)
	assert.Equal(t, VerdictNeutral, bundle.DecisionCorrectness)
	assert.Equal(t, "System reflection generation failed", bundle.SystemReflection)
	assert.Equal(t, 0, bundle.LessonsStored)
	for _, target := range RoleTargets() {
		assert.True(t, strings.HasPrefix(bundle.AgentReflections[target.Name], "Error during reflection: "))
		assert.Equal(t, 0, storeCount(t, bank, target.Memory))
	}
}

type failingStore struct {
	memory.Store
	err error
}

func (s failingStore) Add(context.Context, []memory.Pair) error { return s.err }

func TestService_MemoryWriteFailureSkipsOnlyThatRole(t *testing.T) {
	base := inmemory.Factory(embeddings.NewHashingProvider(64))
	bank, err := memory.NewBank(func(role memory.Role) (memory.Store, error) {
		store, err := base(role)
		if role == memory.RoleTrader {
			return failingStore{Store: store, err: errors.New("disk full")}, err
		}
		return store, err
	})
	require.NoError(t, err)

	chat := testsupport.NewScriptedChat().
		Reply(agents.AgentSignalProcessor.String(), "BUY").
		Respond(agents.AgentReflector.String(), func(ai.ChatRequest) string { return "lesson" })
	invoker := agents.NewInvoker(chat, agents.InvokerConfig{Models: ai.Models{Quick: "quick", Deep: "deep"}}, nil, nil)
	svc := NewService(invoker, bank, nil, Config{Thresholds: DefaultThresholds})

	bundle, err := svc.Process(context.Background(), terminalState(), Outcome{Returns: 300, Description: "up"})
	require.NoError(t, err)

	assert.Equal(t, 4, bundle.LessonsStored)
	for _, target := range RoleTargets() {
		assert.Equal(t, "lesson", bundle.AgentReflections[target.Name], target.Name)
		if target.Memory == memory.RoleTrader {
			assert.Equal(t, 0, storeCount(t, bank, target.Memory))
			continue
		}
		assert.Equal(t, 1, storeCount(t, bank, target.Memory), target.Name)
	}
}

func TestService_SaveFailureIsNotRaised(t *testing.T) {
	notADir := filepath.Join(t.TempDir(), "occupied")
	require.NoError(t, os.WriteFile(notADir, []byte("x"), 0o644))

	chat := testsupport.NewScriptedChat().Reply(agents.AgentSignalProcessor.String(), "SELL")
	svc, _, producer := newTestService(t, chat, notADir)

	bundle, err := svc.Process(context.Background(), terminalState(), Outcome{Returns: -200, Description: "down"})
	require.NoError(t, err)
	assert.Empty(t, bundle.SavedPath)
	assert.Equal(t, VerdictSoldAvoidedLoss, bundle.DecisionCorrectness)
	assert.Equal(t, 5, bundle.LessonsStored)
	assert.Len(t, producer.events, 1)
}

func TestReflector_BreakEvenAndMissingDecision(t *testing.T) {
	chat := testsupport.NewScriptedChat()
	svc, _, _ := newTestService(t, chat, "")

	s := terminalState()
	s.FinalDecision = ""
	lesson, stored := svc.reflector.Reflect(context.Background(), s, RoleTargets()[3], Outcome{Returns: 0, Description: "flat"})
	assert.True(t, stored)
	assert.Equal(t, "reflector response", lesson)

	prompt := testsupport.LastPrompt(chat.RequestsFor(agents.AgentReflector.String())[0])
	assert.Contains(t, prompt, "Financial Result: Break-even")
	assert.Contains(t, prompt, "Original Decision: No decision recorded")
	assert.Contains(t, prompt, "TRADER SPECIFIC CONTENT:")
}
