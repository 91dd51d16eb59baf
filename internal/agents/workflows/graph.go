package workflows

import (
	"context"
	"time"

	"github.com/tejpal123456789/trading-agnetic-workflow/internal/domain/analysis"
	"github.com/tejpal123456789/trading-agnetic-workflow/internal/metrics"
	"github.com/tejpal123456789/trading-agnetic-workflow/pkg/errors"
	"github.com/tejpal123456789/trading-agnetic-workflow/pkg/logger"
)

// End is the terminal pseudo-node.
const End = "__end__"

// DefaultRecursionLimit bounds node executions per run.
const DefaultRecursionLimit = 100

// NodeFunc maps a state to its successor. It must not modify s.
type NodeFunc func(ctx context.Context, s analysis.State) (analysis.State, error)

// RouteFunc picks the successor of a node from the state it produced.
type RouteFunc func(s analysis.State) string

type route struct {
	fn      RouteFunc
	targets map[string]bool
}

// Graph is a directed graph of state transitions executed one node at a time.
// Each node has either one static edge or one conditional edge.
type Graph struct {
	name           string
	entry          string
	nodes          map[string]NodeFunc
	order          []string
	edges          map[string]string
	routes         map[string]route
	recursionLimit int
	log            *logger.Logger
}

// NewGraph creates an empty graph. A non-positive limit falls back to DefaultRecursionLimit.
func NewGraph(name string, recursionLimit int) *Graph {
	if recursionLimit <= 0 {
		recursionLimit = DefaultRecursionLimit
	}
	return &Graph{
		name:           name,
		nodes:          make(map[string]NodeFunc),
		edges:          make(map[string]string),
		routes:         make(map[string]route),
		recursionLimit: recursionLimit,
		log:            logger.Get().With("component", "graph", "graph", name),
	}
}

// AddNode registers fn under name. The first node added is the entry unless SetEntry says otherwise.
func (g *Graph) AddNode(name string, fn NodeFunc) *Graph {
	if _, exists := g.nodes[name]; !exists {
		g.order = append(g.order, name)
	}
	g.nodes[name] = fn
	if g.entry == "" {
		g.entry = name
	}
	return g
}

func (g *Graph) SetEntry(name string) *Graph {
	g.entry = name
	return g
}

// AddEdge links from to a fixed successor.
func (g *Graph) AddEdge(from, to string) *Graph {
	g.edges[from] = to
	return g
}

// AddConditionalEdge lets fn choose the successor of from among targets.
func (g *Graph) AddConditionalEdge(from string, fn RouteFunc, targets ...string) *Graph {
	allowed := make(map[string]bool, len(targets))
	for _, t := range targets {
		allowed[t] = true
	}
	g.routes[from] = route{fn: fn, targets: allowed}
	return g
}

// Nodes returns node names in registration order.
func (g *Graph) Nodes() []string {
	return append([]string(nil), g.order...)
}

func (g *Graph) RecursionLimit() int { return g.recursionLimit }

// Validate checks that every edge names a registered node and every node has exactly one way out.
func (g *Graph) Validate() error {
	var errs errors.MultiError

	if _, ok := g.nodes[g.entry]; !ok {
		errs.Add(errors.Wrapf(errors.ErrUnknownNode, "entry node %q", g.entry))
	}
	for _, name := range g.order {
		_, static := g.edges[name]
		_, conditional := g.routes[name]
		switch {
		case static && conditional:
			errs.Add(errors.Wrapf(errors.ErrInvalidInput, "node %q has both a static and a conditional edge", name))
		case !static && !conditional:
			errs.Add(errors.Wrapf(errors.ErrInvalidInput, "node %q has no outgoing edge", name))
		}
	}
	for from, to := range g.edges {
		errs.Add(g.checkTarget(from, to))
	}
	for from, r := range g.routes {
		for to := range r.targets {
			errs.Add(g.checkTarget(from, to))
		}
	}
	return errs.ToError()
}

func (g *Graph) checkTarget(from, to string) error {
	if _, ok := g.nodes[from]; !ok {
		return errors.Wrapf(errors.ErrUnknownNode, "edge source %q", from)
	}
	if to == End {
		return nil
	}
	if _, ok := g.nodes[to]; !ok {
		return errors.Wrapf(errors.ErrUnknownNode, "edge %q -> %q", from, to)
	}
	return nil
}

// Execute runs the graph from its entry until End, holding exactly one state at a time.
//
// Each transition is checked against the state invariants. The run fails with
// ErrRecursionLimit once the node budget is spent, and with ErrUnknownNode when a route
// names a node it did not declare. The trace is returned even on failure.
func (g *Graph) Execute(ctx context.Context, s analysis.State, trace *Trace) (analysis.State, error) {
	if trace == nil {
		trace = NewTrace()
	}
	trace.start()
	defer trace.finish()

	current := g.entry
	for steps := 0; current != End; steps++ {
		if steps >= g.recursionLimit {
			return s, errors.Wrapf(errors.ErrRecursionLimit, "%s: %d node executions, next was %s", g.name, steps, current)
		}
		fn, ok := g.nodes[current]
		if !ok {
			return s, errors.Wrapf(errors.ErrUnknownNode, "%s: %q", g.name, current)
		}
		if err := ctx.Err(); err != nil {
			return s, errors.Wrapf(errors.ErrTimeout, "%s cancelled before %s: %v", g.name, current, err)
		}

		g.log.Debugw("Node started", "node", current, "subject", s.Subject, "step", steps+1)
		start := time.Now()
		next, err := fn(ctx, s)
		elapsed := time.Since(start)
		trace.record(current, elapsed)
		metrics.RecordNode(current, elapsed)
		if err != nil {
			return s, errors.Wrapf(err, "node %s", current)
		}
		if err := analysis.CheckTransition(s, next); err != nil {
			return s, errors.Wrapf(err, "node %s", current)
		}
		g.log.Infow("Node finished", "node", current, "subject", s.Subject, "duration", elapsed)

		s = next
		if current, err = g.successor(current, s); err != nil {
			return s, err
		}
	}
	return s, nil
}

func (g *Graph) successor(node string, s analysis.State) (string, error) {
	if r, ok := g.routes[node]; ok {
		to := r.fn(s)
		if !r.targets[to] {
			return "", errors.Wrapf(errors.ErrUnknownNode, "route from %s chose undeclared %q", node, to)
		}
		return to, nil
	}
	to, ok := g.edges[node]
	if !ok {
		return "", errors.Wrapf(errors.ErrUnknownNode, "node %s has no outgoing edge", node)
	}
	return to, nil
}
