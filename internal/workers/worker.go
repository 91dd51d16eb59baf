package workers

import (
	"context"
	"sync"
	"time"

	"github.com/tejpal123456789/trading-agnetic-workflow/pkg/logger"
)

// Worker is a periodic background job driven by the Scheduler.
type Worker interface {
	Name() string

	// Run performs one iteration and returns. The scheduler calls it again every Interval.
	Run(ctx context.Context) error

	Interval() time.Duration
	Enabled() bool
}

// Health is a point-in-time view of a worker's history.
type Health struct {
	LastRun     time.Time
	LastError   error
	RunCount    int64
	ErrorCount  int64
	AvgDuration time.Duration
	Enabled     bool
}

// BaseWorker carries the bookkeeping shared by concrete workers.
type BaseWorker struct {
	name     string
	interval time.Duration
	log      *logger.Logger

	mu            sync.RWMutex
	enabled       bool
	lastRun       time.Time
	lastError     error
	runCount      int64
	errorCount    int64
	totalDuration time.Duration
}

func NewBaseWorker(name string, interval time.Duration, enabled bool) *BaseWorker {
	return &BaseWorker{
		name:     name,
		interval: interval,
		enabled:  enabled,
		log:      logger.Get().With("worker", name),
	}
}

func (w *BaseWorker) Name() string {
	return w.name
}

func (w *BaseWorker) Interval() time.Duration {
	return w.interval
}

func (w *BaseWorker) Enabled() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.enabled
}

func (w *BaseWorker) SetEnabled(enabled bool) {
	w.mu.Lock()
	w.enabled = enabled
	w.mu.Unlock()
	w.log.Infow("Worker enabled state changed", "enabled", enabled)
}

func (w *BaseWorker) Log() *logger.Logger {
	return w.log
}

func (w *BaseWorker) Health() Health {
	w.mu.RLock()
	defer w.mu.RUnlock()

	var avg time.Duration
	if w.runCount > 0 {
		avg = time.Duration(int64(w.totalDuration) / w.runCount)
	}
	return Health{
		LastRun:     w.lastRun,
		LastError:   w.lastError,
		RunCount:    w.runCount,
		ErrorCount:  w.errorCount,
		AvgDuration: avg,
		Enabled:     w.enabled,
	}
}

// Record books one finished iteration. A nil err clears the last error.
func (w *BaseWorker) Record(duration time.Duration, err error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.lastRun = time.Now()
	w.runCount++
	w.totalDuration += duration
	w.lastError = err
	if err != nil {
		w.errorCount++
	}
}
