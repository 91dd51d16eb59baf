package workers

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/tejpal123456789/trading-agnetic-workflow/internal/metrics"
	"github.com/tejpal123456789/trading-agnetic-workflow/pkg/errors"
	"github.com/tejpal123456789/trading-agnetic-workflow/pkg/logger"
)

// DefaultStopTimeout leaves room for an in-flight pipeline run to finish.
const DefaultStopTimeout = 2 * time.Minute

// recorder is implemented by workers embedding *BaseWorker.
type recorder interface {
	Record(duration time.Duration, err error)
}

// Scheduler runs every registered worker on its own ticker.
type Scheduler struct {
	workers     []Worker
	stopTimeout time.Duration

	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	mu      sync.RWMutex
	started bool
	log     *logger.Logger
}

func NewScheduler() *Scheduler {
	return &Scheduler{
		stopTimeout: DefaultStopTimeout,
		log:         logger.Get().With("component", "scheduler"),
	}
}

// WithStopTimeout overrides how long Stop waits for workers.
func (s *Scheduler) WithStopTimeout(d time.Duration) *Scheduler {
	if d > 0 {
		s.stopTimeout = d
	}
	return s
}

// RegisterWorker adds w. Registration after Start is ignored.
func (s *Scheduler) RegisterWorker(w Worker) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		s.log.Warnw("Cannot register worker after scheduler has started", "worker", w.Name())
		return
	}
	s.workers = append(s.workers, w)
	s.log.Infow("Worker registered", "worker", w.Name(), "interval", w.Interval())
}

func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return errors.Wrapf(errors.ErrInternal, "scheduler already started")
	}
	s.started = true
	s.ctx, s.cancel = context.WithCancel(ctx)
	workers := append([]Worker(nil), s.workers...)
	s.mu.Unlock()

	s.log.Infow("Starting worker scheduler", "workers", len(workers))
	for _, w := range workers {
		if !w.Enabled() {
			s.log.Infow("Skipping disabled worker", "worker", w.Name())
			continue
		}
		if w.Interval() <= 0 {
			s.log.Warnw("Skipping worker without a positive interval", "worker", w.Name())
			continue
		}
		s.wg.Add(1)
		go s.runWorker(w)
	}
	return nil
}

// Stop cancels all workers and waits up to the stop timeout for them to return.
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return errors.Wrapf(errors.ErrInternal, "scheduler not started")
	}
	s.cancel()
	s.mu.Unlock()

	s.log.Info("Stopping worker scheduler")

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	var err error
	select {
	case <-done:
		s.log.Info("All workers stopped")
	case <-time.After(s.stopTimeout):
		err = errors.Wrapf(errors.ErrTimeout, "workers still running after %s", s.stopTimeout)
		s.log.Warnw("Worker shutdown timed out", "timeout", s.stopTimeout)
	}

	s.mu.Lock()
	s.started = false
	s.mu.Unlock()
	return err
}

func (s *Scheduler) runWorker(w Worker) {
	defer s.wg.Done()

	ticker := time.NewTicker(w.Interval())
	defer ticker.Stop()

	s.execute(w)
	for {
		select {
		case <-s.ctx.Done():
			s.log.Infow("Worker stopping", "worker", w.Name())
			return
		case <-ticker.C:
			if w.Enabled() {
				s.execute(w)
			}
		}
	}
}

func (s *Scheduler) execute(w Worker) {
	start := time.Now()
	var err error

	defer func() {
		if r := recover(); r != nil {
			err = errors.Wrapf(errors.ErrInternal, "panic: %s", fmt.Sprint(r))
			s.log.Errorw("Worker panicked", "worker", w.Name(), "panic", r)
		}
		duration := time.Since(start)
		metrics.RecordWorkerExecution(w.Name(), duration, err)
		if rec, ok := w.(recorder); ok {
			rec.Record(duration, err)
		}
	}()

	err = w.Run(s.ctx)
	if err != nil {
		s.log.Errorw("Worker execution failed", "worker", w.Name(), "error", err, "duration", time.Since(start))
		return
	}
	s.log.Debugw("Worker execution completed", "worker", w.Name(), "duration", time.Since(start))
}

func (s *Scheduler) Workers() []Worker {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Worker(nil), s.workers...)
}

func (s *Scheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.started
}
