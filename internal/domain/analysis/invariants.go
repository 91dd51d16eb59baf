package analysis

import (
	"github.com/tejpal123456789/trading-agnetic-workflow/pkg/errors"
)

// CheckTransition verifies that next is a legal successor of prev:
// identity unchanged, audit log and debate turns never shrink, round counters
// advance by at most one per step, and every write-once field keeps its first value.
func CheckTransition(prev, next State) error {
	var errs errors.MultiError

	if prev.Subject != next.Subject || prev.AsOfDate != next.AsOfDate {
		errs.Add(errors.Wrapf(errors.ErrMalformedState, "identity changed from %s@%s to %s@%s",
			prev.Subject, prev.AsOfDate, next.Subject, next.AsOfDate))
	}
	if len(next.AuditLog) < len(prev.AuditLog) {
		errs.Add(errors.Wrapf(errors.ErrMalformedState, "audit log shrank from %d to %d entries",
			len(prev.AuditLog), len(next.AuditLog)))
	}

	for _, kind := range ReportKinds() {
		errs.Add(writeOnce(kind.Title(), prev.Report(kind), next.Report(kind)))
	}
	errs.Add(writeOnce("investment plan", prev.InvestmentPlan, next.InvestmentPlan))
	errs.Add(writeOnce("trade proposal", prev.TradeProposal, next.TradeProposal))
	errs.Add(writeOnce("final decision", prev.FinalDecision, next.FinalDecision))

	errs.Add(checkDebate(SlotInvestment, prev.InvestmentDebate, next.InvestmentDebate))
	errs.Add(checkDebate(SlotRisk, prev.RiskDebate, next.RiskDebate))

	return errs.ToError()
}

func checkDebate(slot DebateSlot, prev, next DebateState) error {
	var errs errors.MultiError

	switch delta := next.RoundCount - prev.RoundCount; {
	case delta < 0:
		errs.Add(errors.Wrapf(errors.ErrMalformedState, "%s debate round count decreased from %d to %d",
			slot, prev.RoundCount, next.RoundCount))
	case delta > 1:
		errs.Add(errors.Wrapf(errors.ErrMalformedState, "%s debate round count jumped from %d to %d",
			slot, prev.RoundCount, next.RoundCount))
	}
	if len(next.Turns) < len(prev.Turns) {
		errs.Add(errors.Wrapf(errors.ErrMalformedState, "%s debate lost turns (%d -> %d)",
			slot, len(prev.Turns), len(next.Turns)))
	}
	errs.Add(writeOnce(slot.String()+" manager decision", prev.ManagerDecision, next.ManagerDecision))

	return errs.ToError()
}

func writeOnce(field, prev, next string) error {
	if prev != "" && prev != next {
		return errors.Wrapf(errors.ErrMalformedState, "%s is write-once but was overwritten", field)
	}
	return nil
}
