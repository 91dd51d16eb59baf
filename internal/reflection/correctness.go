package reflection

import "math"

// Verdict strings of the correctness table.
const (
	VerdictBoughtProfited  = "CORRECT - Bought and profited"
	VerdictSoldAvoidedLoss = "CORRECT - Sold and avoided loss"
	VerdictHeldSideways    = "CORRECT - Held during sideways movement"
	VerdictBoughtLost      = "INCORRECT - Bought but lost money"
	VerdictSoldMissedGains = "INCORRECT - Sold but missed gains"
	VerdictHeldSignificant = "INCORRECT - Held during significant movement"
	VerdictNeutral         = "NEUTRAL - Outcome unclear or break-even"
)

// Thresholds are absolute dollar amounts bounding the HOLD verdicts.
type Thresholds struct {
	HoldCorrectBelow   float64
	HoldIncorrectAbove float64
}

// DefaultThresholds is 100 and 500 dollars.
var DefaultThresholds = Thresholds{HoldCorrectBelow: 100, HoldIncorrectAbove: 500}

// Evaluate applies the correctness table. Rows are checked in order; the first match wins.
func Evaluate(signal Signal, returns float64, th Thresholds) string {
	abs := math.Abs(returns)
	switch {
	case signal == SignalBuy && returns > 0:
		return VerdictBoughtProfited
	case signal == SignalSell && returns < 0:
		return VerdictSoldAvoidedLoss
	case signal == SignalHold && abs < th.HoldCorrectBelow:
		return VerdictHeldSideways
	case signal == SignalBuy && returns < 0:
		return VerdictBoughtLost
	case signal == SignalSell && returns > 0:
		return VerdictSoldMissedGains
	case signal == SignalHold && abs > th.HoldIncorrectAbove:
		return VerdictHeldSignificant
	default:
		return VerdictNeutral
	}
}
