package bootstrap

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/tejpal123456789/trading-agnetic-workflow/internal/adapters/kafka"
	"github.com/tejpal123456789/trading-agnetic-workflow/internal/api"
	"github.com/tejpal123456789/trading-agnetic-workflow/internal/api/health"
	"github.com/tejpal123456789/trading-agnetic-workflow/internal/metrics"
	"github.com/tejpal123456789/trading-agnetic-workflow/internal/workers"
)

// Version is reported by the HTTP root and health endpoints.
var Version = "dev"

// ========================================
// Phase 6: Background Processing (serve only)
// ========================================

// InitBackground builds the scheduler, the request consumer and the HTTP server.
func (c *Container) InitBackground() {
	metrics.Init()
	if err := prometheus.Register(metrics.NewMemoryCollector(c.Business.Memory)); err != nil {
		c.Log.Warnw("Memory collector not registered", "error", err)
	}

	c.Background.Scheduler = workers.NewScheduler()
	c.Background.Watchlist = workers.NewWatchlistWorker(
		c.Services.Analysis,
		c.Config.Scheduler.Watchlist,
		c.Config.Scheduler.Interval,
		c.Config.Scheduler.Enabled,
	)
	c.Background.Scheduler.RegisterWorker(c.Background.Watchlist)

	if c.Config.Kafka.Enabled {
		c.Background.RequestConsumer = provideKafkaConsumer(c.Config, kafka.TopicAnalysisRequests, c.Log)
	}

	checks := map[string]health.Check{}
	if c.PG != nil {
		checks["postgres"] = c.PG.Health
	}
	if c.Redis != nil {
		checks["redis"] = c.Redis.Health
	}
	c.Background.HTTPServer = api.NewServer(api.ServerConfig{
		Addr:        c.Config.Metrics.Addr,
		ServiceName: c.Config.App.Name,
		Version:     Version,
	}, health.New(c.Config.App.Name, Version, checks))
}

// Start launches every background component. It returns once they are running;
// HTTP server failures are reported on the returned channel.
func (c *Container) Start() (<-chan error, error) {
	errCh := make(chan error, 2)

	if err := c.Background.Scheduler.Start(c.Context); err != nil {
		return nil, err
	}

	c.WG.Add(1)
	go func() {
		defer c.WG.Done()
		if err := c.Background.HTTPServer.Start(); err != nil {
			errCh <- err
		}
	}()

	if consumer := c.Background.RequestConsumer; consumer != nil {
		c.WG.Add(1)
		go func() {
			defer c.WG.Done()
			if err := c.Services.Analysis.Serve(c.Context, consumer); err != nil && c.Context.Err() == nil {
				c.Log.Errorw("Analysis request consumer stopped", "error", err)
				errCh <- err
			}
		}()
	}

	c.Log.Infow("Background components started",
		"watchlist", c.Background.Watchlist.Subjects(),
		"interval", c.Config.Scheduler.Interval,
		"consumer", c.Background.RequestConsumer != nil,
		"metrics_addr", c.Config.Metrics.Addr,
	)
	return errCh, nil
}

// Wait blocks until ctx is done or a background component fails.
func (c *Container) Wait(ctx context.Context, errCh <-chan error) error {
	select {
	case <-ctx.Done():
		return nil
	case err := <-errCh:
		return err
	}
}
