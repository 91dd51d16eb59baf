package analysis

import (
	"encoding/json"

	"github.com/tejpal123456789/trading-agnetic-workflow/pkg/errors"
)

// Snapshot is the serialized form of a State, written as final_state.json.
type Snapshot struct {
	Subject            string                   `json:"subject"`
	AsOfDate           string                   `json:"as_of_date"`
	MarketReport       string                   `json:"market_report"`
	SentimentReport    string                   `json:"sentiment_report"`
	NewsReport         string                   `json:"news_report"`
	FundamentalsReport string                   `json:"fundamentals_report"`
	AuditLog           []AuditEntry             `json:"audit_log"`
	LastWriter         string                   `json:"last_writer"`
	InvestmentDebate   InvestmentDebateSnapshot `json:"investment_debate_state"`
	RiskDebate         RiskDebateSnapshot       `json:"risk_debate_state"`
	InvestmentPlan     string                   `json:"investment_plan"`
	TradeProposal      string                   `json:"trade_proposal"`
	FinalDecision      string                   `json:"final_trade_decision"`
}

type InvestmentDebateSnapshot struct {
	Transcript      string       `json:"transcript"`
	BullTranscript  string       `json:"bull_transcript"`
	BearTranscript  string       `json:"bear_transcript"`
	LatestArgument  string       `json:"latest_argument"`
	RoundCount      int          `json:"round_count"`
	ManagerDecision string       `json:"manager_decision"`
	Turns           []DebateTurn `json:"turns"`
}

type RiskDebateSnapshot struct {
	Transcript           string                `json:"transcript"`
	RiskyTranscript      string                `json:"risky_transcript"`
	SafeTranscript       string                `json:"safe_transcript"`
	NeutralTranscript    string                `json:"neutral_transcript"`
	LatestArgumentByRole map[DebateRole]string `json:"latest_argument_by_role"`
	LastSpeaker          DebateRole            `json:"last_speaker"`
	RoundCount           int                   `json:"round_count"`
	ManagerDecision      string                `json:"manager_decision"`
	Turns                []DebateTurn          `json:"turns"`
}

// ToSnapshot flattens s for serialization. The audit log is always a list, never null.
func ToSnapshot(s State) Snapshot {
	audit := s.AuditLog
	if audit == nil {
		audit = []AuditEntry{}
	}

	inv := s.InvestmentDebate
	risk := s.RiskDebate

	return Snapshot{
		Subject:            s.Subject,
		AsOfDate:           s.AsOfDate,
		MarketReport:       s.MarketReport,
		SentimentReport:    s.SentimentReport,
		NewsReport:         s.NewsReport,
		FundamentalsReport: s.FundamentalsReport,
		AuditLog:           audit,
		LastWriter:         s.LastWriter,
		InvestmentDebate: InvestmentDebateSnapshot{
			Transcript:      inv.Transcript,
			BullTranscript:  inv.RoleTranscript(RoleBull),
			BearTranscript:  inv.RoleTranscript(RoleBear),
			LatestArgument:  inv.LatestArgumentText(),
			RoundCount:      inv.RoundCount,
			ManagerDecision: inv.ManagerDecision,
			Turns:           inv.Turns,
		},
		RiskDebate: RiskDebateSnapshot{
			Transcript:           risk.Transcript,
			RiskyTranscript:      risk.RoleTranscript(RoleRisky),
			SafeTranscript:       risk.RoleTranscript(RoleSafe),
			NeutralTranscript:    risk.RoleTranscript(RoleNeutral),
			LatestArgumentByRole: risk.LatestArgument,
			LastSpeaker:          risk.LastSpeaker,
			RoundCount:           risk.RoundCount,
			ManagerDecision:      risk.ManagerDecision,
			Turns:                risk.Turns,
		},
		InvestmentPlan: s.InvestmentPlan,
		TradeProposal:  s.TradeProposal,
		FinalDecision:  s.FinalDecision,
	}
}

// FromSnapshot rebuilds a State. Latest arguments come from the serialized fields when present
// and are otherwise rebuilt from the turns as labelled lines, the form debate turns write.
func FromSnapshot(snap Snapshot) State {
	inv := debateFromSnapshot(
		snap.InvestmentDebate.Transcript,
		map[DebateRole]string{RoleBull: snap.InvestmentDebate.BullTranscript, RoleBear: snap.InvestmentDebate.BearTranscript},
		snap.InvestmentDebate.Turns,
		snap.InvestmentDebate.RoundCount,
		snap.InvestmentDebate.ManagerDecision,
	)
	if snap.InvestmentDebate.LatestArgument != "" && inv.LastSpeaker != "" {
		inv.LatestArgument[inv.LastSpeaker] = snap.InvestmentDebate.LatestArgument
	}

	risk := debateFromSnapshot(
		snap.RiskDebate.Transcript,
		map[DebateRole]string{
			RoleRisky:   snap.RiskDebate.RiskyTranscript,
			RoleSafe:    snap.RiskDebate.SafeTranscript,
			RoleNeutral: snap.RiskDebate.NeutralTranscript,
		},
		snap.RiskDebate.Turns,
		snap.RiskDebate.RoundCount,
		snap.RiskDebate.ManagerDecision,
	)
	for role, text := range snap.RiskDebate.LatestArgumentByRole {
		if risk.LatestArgument == nil {
			risk.LatestArgument = make(map[DebateRole]string)
		}
		risk.LatestArgument[role] = text
	}
	if snap.RiskDebate.LastSpeaker != "" {
		risk.LastSpeaker = snap.RiskDebate.LastSpeaker
	}

	return State{
		Subject:            snap.Subject,
		AsOfDate:           snap.AsOfDate,
		MarketReport:       snap.MarketReport,
		SentimentReport:    snap.SentimentReport,
		NewsReport:         snap.NewsReport,
		FundamentalsReport: snap.FundamentalsReport,
		AuditLog:           snap.AuditLog,
		LastWriter:         snap.LastWriter,
		InvestmentDebate:   inv,
		RiskDebate:         risk,
		InvestmentPlan:     snap.InvestmentPlan,
		TradeProposal:      snap.TradeProposal,
		FinalDecision:      snap.FinalDecision,
	}
}

func debateFromSnapshot(transcript string, roleTranscripts map[DebateRole]string, turns []DebateTurn, rounds int, decision string) DebateState {
	ds := DebateState{
		Transcript:      transcript,
		Turns:           turns,
		RoundCount:      rounds,
		ManagerDecision: decision,
	}
	for role, text := range roleTranscripts {
		if text == "" {
			continue
		}
		if ds.RoleTranscripts == nil {
			ds.RoleTranscripts = make(map[DebateRole]string)
		}
		ds.RoleTranscripts[role] = text
	}
	for _, turn := range turns {
		if ds.LatestArgument == nil {
			ds.LatestArgument = make(map[DebateRole]string)
		}
		ds.LatestArgument[turn.Role] = turn.Role.Label() + ": " + turn.Argument
		ds.LastSpeaker = turn.Role
	}
	return ds
}

// Marshal encodes s as indented JSON.
func Marshal(s State) ([]byte, error) {
	data, err := json.MarshalIndent(ToSnapshot(s), "", "  ")
	if err != nil {
		return nil, errors.Wrap(err, "marshal analysis state")
	}
	return data, nil
}

// Unmarshal decodes a final_state.json document.
func Unmarshal(data []byte) (State, error) {
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return State{}, errors.Wrapf(errors.ErrInvalidInput, "decode analysis state: %v", err)
	}
	if snap.Subject == "" {
		return State{}, errors.Wrap(errors.ErrInvalidInput, "decode analysis state: subject missing")
	}
	return FromSnapshot(snap), nil
}
