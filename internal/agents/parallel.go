package agents

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"github.com/tejpal123456789/trading-agnetic-workflow/internal/domain/analysis"
	"github.com/tejpal123456789/trading-agnetic-workflow/internal/metrics"
	"github.com/tejpal123456789/trading-agnetic-workflow/pkg/errors"
	"github.com/tejpal123456789/trading-agnetic-workflow/pkg/logger"
)

// Producer writes exactly one report field.
type Producer interface {
	Kind() analysis.ReportKind
	Name() string
	// Produce must treat snapshot as read-only.
	Produce(ctx context.Context, snapshot analysis.State) (report string, audit []analysis.AuditEntry, err error)
}

// ParallelAnalysis runs every producer concurrently against the same snapshot and joins
// their deltas once all of them have returned.
type ParallelAnalysis struct {
	producers []Producer
	timeout   time.Duration
	log       *logger.Logger
}

// NewParallelAnalysis rejects two producers writing the same report.
func NewParallelAnalysis(timeout time.Duration, producers ...Producer) (*ParallelAnalysis, error) {
	seen := make(map[analysis.ReportKind]string, len(producers))
	for _, p := range producers {
		if owner, dup := seen[p.Kind()]; dup {
			return nil, errors.Wrapf(errors.ErrInvalidInput, "report %s produced by both %s and %s", p.Kind(), owner, p.Name())
		}
		seen[p.Kind()] = p.Name()
	}
	return &ParallelAnalysis{
		producers: producers,
		timeout:   timeout,
		log:       logger.Get().With("component", "parallel_analysis"),
	}, nil
}

// Run returns one delta per producer, in producer order regardless of completion order.
// A failed producer yields an empty report plus an audit entry describing the failure.
func (p *ParallelAnalysis) Run(ctx context.Context, snapshot analysis.State) []analysis.Delta {
	deltas := make([]analysis.Delta, len(p.producers))

	var wg sync.WaitGroup
	for i, producer := range p.producers {
		wg.Add(1)
		go func(i int, producer Producer) {
			defer wg.Done()
			deltas[i] = p.runOne(ctx, producer, snapshot)
		}(i, producer)
	}
	wg.Wait()

	return deltas
}

func (p *ParallelAnalysis) runOne(ctx context.Context, producer Producer, snapshot analysis.State) (delta analysis.Delta) {
	log := p.log.With("producer", producer.Name(), "subject", snapshot.Subject)
	start := time.Now()

	fail := func(err error, audit []analysis.AuditEntry) analysis.Delta {
		metrics.RecordDegraded("analyst")
		log.Errorw("Producer failed, report left empty", "error", err, "duration", time.Since(start))
		audit = append(audit, analysis.AuditEntry{
			Role: producer.Name(),
			Text: fmt.Sprintf("%s failed: %v", producer.Name(), err),
		})
		return analysis.ReportDelta(producer.Name(), producer.Kind(), "", audit...)
	}

	defer func() {
		if r := recover(); r != nil {
			log.Errorw("Producer panicked", "panic", r, "stack", string(debug.Stack()))
			delta = fail(errors.Newf("panic: %v", r), nil)
		}
	}()

	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	report, audit, err := producer.Produce(ctx, snapshot)
	if err != nil {
		return fail(err, audit)
	}

	log.Infow("Producer completed", "duration", time.Since(start), "report_length", len(report))
	return analysis.ReportDelta(producer.Name(), producer.Kind(), report, audit...)
}
