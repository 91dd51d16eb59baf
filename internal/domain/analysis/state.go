package analysis

import (
	"strings"
	"time"
)

// DateLayout is the format of State.AsOfDate.
const DateLayout = "2006-01-02"

// ReportKind names one of the four analysis reports.
type ReportKind string

const (
	ReportMarket       ReportKind = "market"
	ReportSentiment    ReportKind = "sentiment"
	ReportNews         ReportKind = "news"
	ReportFundamentals ReportKind = "fundamentals"
)

// ReportKinds lists the reports in the order they are presented to downstream agents.
func ReportKinds() []ReportKind {
	return []ReportKind{ReportMarket, ReportSentiment, ReportNews, ReportFundamentals}
}

// Title is the human-readable report heading used in prompts.
func (k ReportKind) Title() string {
	switch k {
	case ReportMarket:
		return "Market Report"
	case ReportSentiment:
		return "Sentiment Report"
	case ReportNews:
		return "News Report"
	case ReportFundamentals:
		return "Fundamentals Report"
	default:
		return string(k)
	}
}

// DebateRole is a speaker in one of the two debates.
type DebateRole string

const (
	RoleBull    DebateRole = "bull"
	RoleBear    DebateRole = "bear"
	RoleRisky   DebateRole = "risky"
	RoleSafe    DebateRole = "safe"
	RoleNeutral DebateRole = "neutral"
)

// Label is the prefix written in front of the role's arguments.
func (r DebateRole) Label() string {
	switch r {
	case RoleBull:
		return "Bull Analyst"
	case RoleBear:
		return "Bear Analyst"
	case RoleRisky:
		return "Risky Analyst"
	case RoleSafe:
		return "Safe Analyst"
	case RoleNeutral:
		return "Neutral Analyst"
	default:
		return string(r)
	}
}

// AuditEntry is one (role, text) contribution to the run's log.
type AuditEntry struct {
	Role string `json:"role"`
	Text string `json:"text"`
}

// DebateTurn is one argument in a debate, in speaking order.
type DebateTurn struct {
	Role     DebateRole `json:"role"`
	Argument string     `json:"argument"`
}

// DebateState is shared by the investment debate (bull, bear) and the risk debate (risky, safe, neutral).
//
// Transcript and RoleTranscripts are newline-joined "<Label>: <argument>" lines.
// RoundCount counts completed cycles of the debate's party order, never individual turns.
type DebateState struct {
	Transcript      string
	RoleTranscripts map[DebateRole]string
	LatestArgument  map[DebateRole]string
	LastSpeaker     DebateRole
	Turns           []DebateTurn
	RoundCount      int
	ManagerDecision string
}

// RoleTranscript returns the transcript of a single role, empty when it never spoke.
func (d DebateState) RoleTranscript(role DebateRole) string {
	return d.RoleTranscripts[role]
}

// LatestFrom returns the most recent argument of role.
func (d DebateState) LatestFrom(role DebateRole) string {
	return d.LatestArgument[role]
}

// LatestArgumentText is the argument of whoever spoke last.
func (d DebateState) LatestArgumentText() string {
	if d.LastSpeaker == "" {
		return ""
	}
	return d.LatestArgument[d.LastSpeaker]
}

// State is the single aggregate threaded through every pipeline node.
//
// Nodes never mutate a State they received; they return a Delta which the driver
// combines with Apply. Text fields are overwritten, AuditLog and debate Turns only grow.
type State struct {
	Subject  string
	AsOfDate string

	MarketReport       string
	SentimentReport    string
	NewsReport         string
	FundamentalsReport string

	AuditLog   []AuditEntry
	LastWriter string

	InvestmentDebate DebateState
	RiskDebate       DebateState

	InvestmentPlan string
	TradeProposal  string
	FinalDecision  string
}

// New builds the initial state of a run: every text field empty and both round counters zero.
func New(subject, asOfDate string) State {
	return State{
		Subject:  strings.TrimSpace(subject),
		AsOfDate: asOfDate,
	}
}

// DefaultAsOfDate is two days before now, the date used when a run does not name one.
func DefaultAsOfDate(now time.Time) string {
	return now.AddDate(0, 0, -2).Format(DateLayout)
}

// Complete reports whether every analyst report and the final decision are present.
// An empty field marks a degraded step.
func (s State) Complete() bool {
	for _, kind := range ReportKinds() {
		if strings.TrimSpace(s.Report(kind)) == "" {
			return false
		}
	}
	return strings.TrimSpace(s.FinalDecision) != ""
}

// Report returns the text of one report field.
func (s State) Report(kind ReportKind) string {
	switch kind {
	case ReportMarket:
		return s.MarketReport
	case ReportSentiment:
		return s.SentimentReport
	case ReportNews:
		return s.NewsReport
	case ReportFundamentals:
		return s.FundamentalsReport
	default:
		return ""
	}
}

// Debate returns the debate sub-state addressed by slot.
func (s State) Debate(slot DebateSlot) DebateState {
	if slot == SlotRisk {
		return s.RiskDebate
	}
	return s.InvestmentDebate
}

// SituationSummary renders the four reports as one block, the query text used against long-term memory.
func (s State) SituationSummary() string {
	var b strings.Builder
	for _, kind := range ReportKinds() {
		b.WriteString(kind.Title())
		b.WriteString(": ")
		b.WriteString(s.Report(kind))
		b.WriteString("\n")
	}
	return b.String()
}
