package reflection

import (
	"context"
	"strings"

	"github.com/tejpal123456789/trading-agnetic-workflow/internal/agents"
	"github.com/tejpal123456789/trading-agnetic-workflow/pkg/logger"
)

// Signal is the normalized trading decision label.
type Signal string

const (
	SignalBuy  Signal = "BUY"
	SignalSell Signal = "SELL"
	SignalHold Signal = "HOLD"

	// SignalUnparsable marks a reply naming none of the three labels.
	SignalUnparsable Signal = "ERROR_UNPARSABLE_SIGNAL"
	// SignalFailed marks a classification call that errored.
	SignalFailed Signal = "ERROR_PROCESSING_FAILED"
)

// Valid reports whether s is one of BUY, SELL or HOLD.
func (s Signal) Valid() bool {
	return s == SignalBuy || s == SignalSell || s == SignalHold
}

// NormalizeSignal maps a classifier reply to a label: an exact match first, then the
// first label contained in the reply in BUY, SELL, HOLD priority, else SignalUnparsable.
func NormalizeSignal(reply string) Signal {
	reply = strings.ToUpper(strings.TrimSpace(reply))
	switch Signal(reply) {
	case SignalBuy, SignalSell, SignalHold:
		return Signal(reply)
	}
	for _, label := range []Signal{SignalBuy, SignalSell, SignalHold} {
		if strings.Contains(reply, string(label)) {
			return label
		}
	}
	return SignalUnparsable
}

// SignalProcessor extracts the label from free-text decisions with one classification call.
type SignalProcessor struct {
	invoker *agents.Invoker
	log     *logger.Logger
}

func NewSignalProcessor(invoker *agents.Invoker) *SignalProcessor {
	return &SignalProcessor{invoker: invoker, log: logger.Get().With("component", "signal_processor")}
}

// Process never fails: call errors yield SignalFailed.
func (p *SignalProcessor) Process(ctx context.Context, decision string) Signal {
	system, err := p.invoker.Render(agents.ConfigFor(agents.AgentSignalProcessor).SystemPromptTemplate, nil)
	if err != nil {
		p.log.Errorw("Signal prompt render failed", "error", err)
		return SignalFailed
	}

	reply, err := p.invoker.Complete(ctx, agents.AgentSignalProcessor, system, decision)
	if err != nil {
		p.log.Errorw("Error processing signal", "error", err)
		return SignalFailed
	}

	signal := NormalizeSignal(reply)
	p.log.Debugw("Signal extracted", "reply", reply, "signal", signal)
	return signal
}
