package workflows

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	"github.com/tejpal123456789/trading-agnetic-workflow/internal/events"
)

// NodeTiming is one node execution.
type NodeTiming struct {
	Node     string        `json:"node"`
	Duration time.Duration `json:"duration"`
}

// Trace records the node execution order and timings of one run.
type Trace struct {
	mu        sync.Mutex
	sessionID string
	started   time.Time
	finished  time.Time
	steps     []NodeTiming
}

func NewTrace() *Trace {
	return &Trace{sessionID: uuid.NewString()}
}

func (t *Trace) SessionID() string { return t.sessionID }

func (t *Trace) start() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.started.IsZero() {
		t.started = time.Now()
	}
}

func (t *Trace) finish() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.finished = time.Now()
}

func (t *Trace) record(node string, d time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.steps = append(t.steps, NodeTiming{Node: node, Duration: d})
}

// Steps returns node executions in order, loop re-entries included.
func (t *Trace) Steps() []NodeTiming {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]NodeTiming(nil), t.steps...)
}

// Path is the node names in execution order.
func (t *Trace) Path() []string {
	steps := t.Steps()
	out := make([]string, len(steps))
	for i, s := range steps {
		out[i] = s.Node
	}
	return out
}

// Total is the wall time between the first node start and the last node end.
func (t *Trace) Total() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.started.IsZero() {
		return 0
	}
	end := t.finished
	if end.IsZero() {
		end = time.Now()
	}
	return end.Sub(t.started)
}

// NodeTotals sums durations per node name.
func (t *Trace) NodeTotals() map[string]time.Duration {
	out := make(map[string]time.Duration)
	for _, s := range t.Steps() {
		out[s.Node] += s.Duration
	}
	return out
}

// Average is the mean node duration.
func (t *Trace) Average() time.Duration {
	steps := t.Steps()
	if len(steps) == 0 {
		return 0
	}
	var sum time.Duration
	for _, s := range steps {
		sum += s.Duration
	}
	return sum / time.Duration(len(steps))
}

// Extremes returns the slowest and fastest node by summed duration.
func (t *Trace) Extremes() (slowest, fastest NodeTiming) {
	first := true
	for node, d := range t.NodeTotals() {
		if first || d > slowest.Duration || (d == slowest.Duration && node < slowest.Node) {
			slowest = NodeTiming{Node: node, Duration: d}
		}
		if first || d < fastest.Duration || (d == fastest.Duration && node < fastest.Node) {
			fastest = NodeTiming{Node: node, Duration: d}
		}
		first = false
	}
	return slowest, fastest
}

// Summary renders the trace for logs and the CLI.
func (t *Trace) Summary() string {
	steps := t.Steps()
	var b strings.Builder
	fmt.Fprintf(&b, "Session %s: %s nodes in %s (avg %s)\n",
		t.sessionID, humanize.Comma(int64(len(steps))), t.Total().Round(time.Millisecond), t.Average().Round(time.Millisecond))
	if len(steps) > 0 {
		slowest, fastest := t.Extremes()
		fmt.Fprintf(&b, "Slowest: %s (%s), fastest: %s (%s)\n",
			slowest.Node, slowest.Duration.Round(time.Millisecond), fastest.Node, fastest.Duration.Round(time.Millisecond))
	}
	for i, s := range steps {
		fmt.Fprintf(&b, "%s %s %s\n", humanize.Ordinal(i+1), s.Node, s.Duration.Round(time.Millisecond))
	}
	return b.String()
}

// ToEvent converts the trace for a decision event.
func (t *Trace) ToEvent() events.TraceSummary {
	steps := t.Steps()
	return events.TraceSummary{
		SessionID:   t.sessionID,
		Path:        t.Path(),
		TotalMillis: t.Total().Milliseconds(),
		AverageNode: t.Average().Milliseconds(),
		NodeCount:   len(steps),
	}
}
