package analysis

import (
	"maps"
	"slices"
)

// DebateSlot addresses one of the two debate sub-states of a State.
type DebateSlot int

const (
	SlotInvestment DebateSlot = iota
	SlotRisk
)

func (s DebateSlot) String() string {
	if s == SlotRisk {
		return "risk"
	}
	return "investment"
}

// DebateDelta is a partial update of a DebateState.
// Nil pointers and nil maps leave the field untouched; map entries overwrite per role; Turns are appended.
type DebateDelta struct {
	Transcript      *string
	RoleTranscripts map[DebateRole]string
	LatestArgument  map[DebateRole]string
	LastSpeaker     *DebateRole
	Turns           []DebateTurn
	RoundCount      *int
	ManagerDecision *string
}

// Delta names only the fields a node intends to change.
type Delta struct {
	// Writer becomes State.LastWriter when non-empty.
	Writer string

	Reports map[ReportKind]string
	Audit   []AuditEntry

	InvestmentDebate *DebateDelta
	RiskDebate       *DebateDelta

	InvestmentPlan *string
	TradeProposal  *string
	FinalDecision  *string
}

// Text returns a pointer to s, for building deltas.
func Text(s string) *string {
	return &s
}

// Count returns a pointer to n, for building deltas.
func Count(n int) *int {
	return &n
}

// Speaker returns a pointer to r, for building deltas.
func Speaker(r DebateRole) *DebateRole {
	return &r
}

// ReportDelta is the delta of one analysis producer: its report plus its audit entries.
func ReportDelta(writer string, kind ReportKind, report string, audit ...AuditEntry) Delta {
	return Delta{
		Writer:  writer,
		Reports: map[ReportKind]string{kind: report},
		Audit:   audit,
	}
}

// DebateUpdate wraps a DebateDelta into a Delta addressed at slot.
func DebateUpdate(writer string, slot DebateSlot, dd DebateDelta, audit ...AuditEntry) Delta {
	d := Delta{Writer: writer, Audit: audit}
	if slot == SlotRisk {
		d.RiskDebate = &dd
	} else {
		d.InvestmentDebate = &dd
	}
	return d
}

// Apply returns a new State with d merged into s. s itself is never modified, so a
// snapshot handed to a concurrent reader stays valid.
//
// Text and counter fields are overwritten, AuditLog and debate Turns are concatenated,
// and debate sub-states are merged field by field with the same rule.
func Apply(s State, d Delta) State {
	out := s.clone()

	if d.Writer != "" {
		out.LastWriter = d.Writer
	}
	for kind, text := range d.Reports {
		out.setReport(kind, text)
	}
	if len(d.Audit) > 0 {
		out.AuditLog = append(out.AuditLog, d.Audit...)
	}
	if d.InvestmentDebate != nil {
		out.InvestmentDebate = applyDebate(out.InvestmentDebate, *d.InvestmentDebate)
	}
	if d.RiskDebate != nil {
		out.RiskDebate = applyDebate(out.RiskDebate, *d.RiskDebate)
	}
	if d.InvestmentPlan != nil {
		out.InvestmentPlan = *d.InvestmentPlan
	}
	if d.TradeProposal != nil {
		out.TradeProposal = *d.TradeProposal
	}
	if d.FinalDecision != nil {
		out.FinalDecision = *d.FinalDecision
	}

	return out
}

// ApplyAll folds deltas into s in slice order.
func ApplyAll(s State, deltas ...Delta) State {
	for _, d := range deltas {
		s = Apply(s, d)
	}
	return s
}

func applyDebate(ds DebateState, dd DebateDelta) DebateState {
	if dd.Transcript != nil {
		ds.Transcript = *dd.Transcript
	}
	if len(dd.RoleTranscripts) > 0 {
		if ds.RoleTranscripts == nil {
			ds.RoleTranscripts = make(map[DebateRole]string, len(dd.RoleTranscripts))
		}
		maps.Copy(ds.RoleTranscripts, dd.RoleTranscripts)
	}
	if len(dd.LatestArgument) > 0 {
		if ds.LatestArgument == nil {
			ds.LatestArgument = make(map[DebateRole]string, len(dd.LatestArgument))
		}
		maps.Copy(ds.LatestArgument, dd.LatestArgument)
	}
	if dd.LastSpeaker != nil {
		ds.LastSpeaker = *dd.LastSpeaker
	}
	if len(dd.Turns) > 0 {
		ds.Turns = append(ds.Turns, dd.Turns...)
	}
	if dd.RoundCount != nil {
		ds.RoundCount = *dd.RoundCount
	}
	if dd.ManagerDecision != nil {
		ds.ManagerDecision = *dd.ManagerDecision
	}
	return ds
}

// setReport ignores unknown kinds; CheckTransition reports producers that write outside their field.
func (s *State) setReport(kind ReportKind, text string) {
	switch kind {
	case ReportMarket:
		s.MarketReport = text
	case ReportSentiment:
		s.SentimentReport = text
	case ReportNews:
		s.NewsReport = text
	case ReportFundamentals:
		s.FundamentalsReport = text
	}
}

// clone deep-copies the slices and maps of s, keeping nil and empty distinct.
func (s State) clone() State {
	out := s
	out.AuditLog = slices.Clone(s.AuditLog)
	out.InvestmentDebate = s.InvestmentDebate.clone()
	out.RiskDebate = s.RiskDebate.clone()
	return out
}

func (d DebateState) clone() DebateState {
	out := d
	out.RoleTranscripts = maps.Clone(d.RoleTranscripts)
	out.LatestArgument = maps.Clone(d.LatestArgument)
	out.Turns = slices.Clone(d.Turns)
	return out
}
