package bootstrap

import (
	"context"
	"sync"
	"time"

	"github.com/tejpal123456789/trading-agnetic-workflow/internal/adapters/kafka"
	pgclient "github.com/tejpal123456789/trading-agnetic-workflow/internal/adapters/postgres"
	redisclient "github.com/tejpal123456789/trading-agnetic-workflow/internal/adapters/redis"
	"github.com/tejpal123456789/trading-agnetic-workflow/internal/api"
	"github.com/tejpal123456789/trading-agnetic-workflow/internal/workers"
	"github.com/tejpal123456789/trading-agnetic-workflow/pkg/errors"
	"github.com/tejpal123456789/trading-agnetic-workflow/pkg/logger"
)

// Lifecycle manages graceful shutdown of components.
type Lifecycle struct {
	shutdownTimeout time.Duration
	goroutineWait   time.Duration
}

func NewLifecycle() *Lifecycle {
	return &Lifecycle{
		shutdownTimeout: 150 * time.Second,
		goroutineWait:   5 * time.Second,
	}
}

// Shutdown stops components in dependency order. Every argument may be nil.
//  1. HTTP server stops accepting scrapes
//  2. workers finish their current pass
//  3. the request consumer unblocks before goroutines are awaited
//  4. the producer closes after its last publisher
//  5. error tracker and logs flush
//  6. data stores close last
func (l *Lifecycle) Shutdown(
	wg *sync.WaitGroup,
	httpServer *api.Server,
	scheduler *workers.Scheduler,
	requestConsumer *kafka.Consumer,
	producer *kafka.Producer,
	pg *pgclient.Client,
	rdb *redisclient.Client,
	tracker errors.Tracker,
	log *logger.Logger,
) {
	ctx, cancel := context.WithTimeout(context.Background(), l.shutdownTimeout)
	defer cancel()

	if httpServer != nil {
		log.Info("[1/6] Stopping HTTP server...")
		httpCtx, httpCancel := context.WithTimeout(ctx, 5*time.Second)
		if err := httpServer.Shutdown(httpCtx); err != nil {
			log.Errorw("HTTP server shutdown failed", "error", err)
		}
		httpCancel()
	}

	if scheduler != nil && scheduler.IsRunning() {
		log.Info("[2/6] Stopping background workers...")
		if err := scheduler.Stop(); err != nil {
			log.Errorw("Workers shutdown failed", "error", err)
		}
	}

	if requestConsumer != nil {
		log.Info("[3/6] Closing Kafka consumer...")
		if err := requestConsumer.Close(); err != nil {
			log.Errorw("Kafka consumer close failed", "error", err)
		}
	}
	if wg != nil {
		l.waitForGoroutines(wg, l.goroutineWait, log)
	}

	if producer != nil {
		log.Info("[4/6] Closing Kafka producer...")
		if err := producer.Close(); err != nil {
			log.Errorw("Kafka producer close failed", "error", err)
		}
	}

	log.Info("[5/6] Flushing error tracker and logs...")
	l.flushErrorTracker(ctx, tracker, log)
	_ = logger.Sync()

	l.closeDatabases(pg, rdb, log)
	log.Info("[6/6] Shutdown complete")
}

func (l *Lifecycle) waitForGoroutines(wg *sync.WaitGroup, timeout time.Duration, log *logger.Logger) {
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(timeout):
		log.Warnw("Some goroutines did not finish within timeout", "timeout", timeout)
	}
}

func (l *Lifecycle) flushErrorTracker(ctx context.Context, tracker errors.Tracker, log *logger.Logger) {
	if tracker == nil {
		return
	}
	flushCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	if err := tracker.Flush(flushCtx); err != nil {
		log.Errorw("Error tracker flush failed", "error", err)
	}
}

func (l *Lifecycle) closeDatabases(pg *pgclient.Client, rdb *redisclient.Client, log *logger.Logger) {
	var errs errors.MultiError
	if pg != nil {
		errs.Add(errors.Wrap(pg.Close(), "postgres"))
	}
	if rdb != nil {
		errs.Add(errors.Wrap(rdb.Close(), "redis"))
	}
	if errs.HasErrors() {
		log.Errorw("Database close errors", "errors", errs.Errors)
	}
}
