package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tejpal123456789/trading-agnetic-workflow/pkg/errors"
)

func populatedState() State {
	s := New("ACME", "2024-01-10")
	s = Apply(s, ReportDelta("market_analyst", ReportMarket, "uptrend", AuditEntry{Role: "market_analyst", Text: "uptrend"}))
	s = Apply(s, DebateUpdate("bull", SlotInvestment, DebateDelta{
		Transcript:      Text("Bull Analyst: buy"),
		RoleTranscripts: map[DebateRole]string{RoleBull: "Bull Analyst: buy"},
		LatestArgument:  map[DebateRole]string{RoleBull: "buy"},
		LastSpeaker:     Speaker(RoleBull),
		Turns:           []DebateTurn{{Role: RoleBull, Argument: "buy"}},
	}))
	return s
}

func TestApply_EmptyDeltaIsIdentity(t *testing.T) {
	for name, s := range map[string]State{
		"initial":   New("ACME", "2024-01-10"),
		"populated": populatedState(),
	} {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, s, Apply(s, Delta{}))
		})
	}
}

func TestApply_OverwritesTextAndConcatenatesAudit(t *testing.T) {
	s := populatedState()

	next := Apply(s, Delta{
		Writer:         "research_manager",
		InvestmentPlan: Text("BUY with a 5% stop"),
		Audit:          []AuditEntry{{Role: "research_manager", Text: "plan"}},
	})

	assert.Equal(t, "BUY with a 5% stop", next.InvestmentPlan)
	assert.Equal(t, "research_manager", next.LastWriter)
	require.Len(t, next.AuditLog, 2)
	assert.Equal(t, "market_analyst", next.AuditLog[0].Role)
	assert.Equal(t, "research_manager", next.AuditLog[1].Role)
	assert.Equal(t, "uptrend", next.MarketReport)
}

func TestApply_DoesNotMutateInput(t *testing.T) {
	s := populatedState()
	before := Apply(s, Delta{})

	_ = Apply(s, DebateUpdate("bear", SlotInvestment, DebateDelta{
		RoleTranscripts: map[DebateRole]string{RoleBear: "Bear Analyst: sell"},
		LatestArgument:  map[DebateRole]string{RoleBear: "sell"},
		Turns:           []DebateTurn{{Role: RoleBear, Argument: "sell"}},
		RoundCount:      Count(1),
	}, AuditEntry{Role: "bear", Text: "sell"}))

	assert.Equal(t, before, s)
	assert.Len(t, s.InvestmentDebate.Turns, 1)
	assert.NotContains(t, s.InvestmentDebate.LatestArgument, RoleBear)
}

func TestApply_MergesDebateFieldsPerRole(t *testing.T) {
	s := populatedState()

	next := Apply(s, DebateUpdate("bear", SlotInvestment, DebateDelta{
		Transcript:      Text("Bull Analyst: buy\nBear Analyst: sell"),
		RoleTranscripts: map[DebateRole]string{RoleBear: "Bear Analyst: sell"},
		LatestArgument:  map[DebateRole]string{RoleBear: "sell"},
		LastSpeaker:     Speaker(RoleBear),
		Turns:           []DebateTurn{{Role: RoleBear, Argument: "sell"}},
		RoundCount:      Count(1),
	}))

	inv := next.InvestmentDebate
	assert.Equal(t, "Bull Analyst: buy", inv.RoleTranscript(RoleBull))
	assert.Equal(t, "Bear Analyst: sell", inv.RoleTranscript(RoleBear))
	assert.Equal(t, "buy", inv.LatestFrom(RoleBull))
	assert.Equal(t, "sell", inv.LatestArgumentText())
	assert.Equal(t, 1, inv.RoundCount)
	assert.Len(t, inv.Turns, 2)
	assert.Equal(t, 0, next.RiskDebate.RoundCount)
}

func TestApplyAll_DisjointReportsAreOrderIndependent(t *testing.T) {
	s := New("ACME", "2024-01-10")
	a := ReportDelta("news_analyst", ReportNews, "news")
	b := ReportDelta("fundamentals_analyst", ReportFundamentals, "fundamentals")

	ab := ApplyAll(s, a, b)
	ba := ApplyAll(s, b, a)

	assert.Equal(t, ab.NewsReport, ba.NewsReport)
	assert.Equal(t, ab.FundamentalsReport, ba.FundamentalsReport)
}

func TestCheckTransition(t *testing.T) {
	base := populatedState()

	t.Run("legal step", func(t *testing.T) {
		next := Apply(base, DebateUpdate("bear", SlotInvestment, DebateDelta{RoundCount: Count(1)}))
		assert.NoError(t, CheckTransition(base, next))
	})

	t.Run("report overwritten", func(t *testing.T) {
		next := Apply(base, ReportDelta("rogue", ReportMarket, "downtrend"))
		err := CheckTransition(base, next)
		require.Error(t, err)
		assert.True(t, errors.Is(err, errors.ErrMalformedState))
	})

	t.Run("round count jumps", func(t *testing.T) {
		next := Apply(base, DebateUpdate("bear", SlotInvestment, DebateDelta{RoundCount: Count(2)}))
		assert.True(t, errors.Is(CheckTransition(base, next), errors.ErrMalformedState))
	})

	t.Run("round count decreases", func(t *testing.T) {
		advanced := Apply(base, DebateUpdate("bear", SlotRisk, DebateDelta{RoundCount: Count(1)}))
		back := Apply(advanced, DebateUpdate("risky", SlotRisk, DebateDelta{RoundCount: Count(0)}))
		assert.True(t, errors.Is(CheckTransition(advanced, back), errors.ErrMalformedState))
	})

	t.Run("decision is write once", func(t *testing.T) {
		decided := Apply(base, Delta{FinalDecision: Text("HOLD")})
		changed := Apply(decided, Delta{FinalDecision: Text("SELL")})
		assert.NoError(t, CheckTransition(base, decided))
		assert.Error(t, CheckTransition(decided, changed))
	})
}

func TestSnapshot_PreservesDebateShape(t *testing.T) {
	s := Apply(populatedState(), Delta{FinalDecision: Text("FINAL TRANSACTION PROPOSAL: **BUY**")})

	data, err := Marshal(s)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"final_trade_decision"`)
	assert.Contains(t, string(data), `"bull_transcript": "Bull Analyst: buy"`)

	decoded, err := Unmarshal(data)
	require.NoError(t, err)
	assert.Equal(t, s.InvestmentDebate.Turns, decoded.InvestmentDebate.Turns)
	assert.Equal(t, RoleBull, decoded.InvestmentDebate.LastSpeaker)
	assert.Equal(t, s.FinalDecision, decoded.FinalDecision)
	assert.Equal(t, s.AuditLog, decoded.AuditLog)
}

func TestSnapshot_RoundTripIsLossless(t *testing.T) {
	s := New("ACME", "2024-01-10")
	s = Apply(s, DebateUpdate("bull_researcher", SlotInvestment, DebateDelta{
		Transcript:      Text("Bull Analyst: buy"),
		RoleTranscripts: map[DebateRole]string{RoleBull: "Bull Analyst: buy"},
		LatestArgument:  map[DebateRole]string{RoleBull: "Bull Analyst: buy"},
		LastSpeaker:     Speaker(RoleBull),
		Turns:           []DebateTurn{{Role: RoleBull, Argument: "buy"}},
	}, AuditEntry{Role: "Bull Analyst", Text: "Bull Analyst: buy"}))
	s = Apply(s, DebateUpdate("risky_analyst", SlotRisk, DebateDelta{
		Transcript:      Text("Risky Analyst: go big"),
		RoleTranscripts: map[DebateRole]string{RoleRisky: "Risky Analyst: go big"},
		LatestArgument:  map[DebateRole]string{RoleRisky: "Risky Analyst: go big"},
		LastSpeaker:     Speaker(RoleRisky),
		Turns:           []DebateTurn{{Role: RoleRisky, Argument: "go big"}},
	}, AuditEntry{Role: "Risky Analyst", Text: "Risky Analyst: go big"}))
	s = Apply(s, Delta{FinalDecision: Text("FINAL TRANSACTION PROPOSAL: **BUY**")})

	data, err := Marshal(s)
	require.NoError(t, err)
	decoded, err := Unmarshal(data)
	require.NoError(t, err)

	assert.Equal(t, s, decoded)
	assert.Equal(t, "Risky Analyst: go big", decoded.RiskDebate.LatestFrom(RoleRisky))
	assert.Equal(t, "Bull Analyst: buy", decoded.InvestmentDebate.LatestArgumentText())
}

func TestFromSnapshot_RebuildsLabelledArgumentsFromTurns(t *testing.T) {
	state := FromSnapshot(Snapshot{
		Subject:  "ACME",
		AsOfDate: "2024-01-10",
		RiskDebate: RiskDebateSnapshot{
			Turns: []DebateTurn{{Role: RoleRisky, Argument: "go big"}, {Role: RoleSafe, Argument: "hedge"}},
		},
	})
	assert.Equal(t, "Risky Analyst: go big", state.RiskDebate.LatestFrom(RoleRisky))
	assert.Equal(t, RoleSafe, state.RiskDebate.LastSpeaker)
	assert.Equal(t, "Safe Analyst: hedge", state.RiskDebate.LatestArgumentText())
}

func TestUnmarshal_RejectsMissingSubject(t *testing.T) {
	_, err := Unmarshal([]byte(`{"as_of_date":"2024-01-10"}`))
	assert.True(t, errors.Is(err, errors.ErrInvalidInput))
}

func TestState_Complete(t *testing.T) {
	s := New("ACME", "2024-01-10")
	s.MarketReport = "uptrend"
	s.SentimentReport = "positive"
	s.NewsReport = "quiet"
	s.FundamentalsReport = "solid"
	assert.False(t, s.Complete())

	s.FinalDecision = "HOLD"
	assert.True(t, s.Complete())

	s.NewsReport = "  "
	assert.False(t, s.Complete())
}
