package metrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/tejpal123456789/trading-agnetic-workflow/internal/domain/memory"
	"github.com/tejpal123456789/trading-agnetic-workflow/pkg/logger"
)

// MemoryCollector reports the size of every role's memory store at scrape time.
type MemoryCollector struct {
	log  *logger.Logger
	bank *memory.Bank

	records *prometheus.Desc
}

// NewMemoryCollector creates a collector over bank.
func NewMemoryCollector(bank *memory.Bank) *MemoryCollector {
	return &MemoryCollector{
		log:  logger.Get().With("component", "memory_collector"),
		bank: bank,
		records: prometheus.NewDesc(
			"trading_agents_memory_records",
			"Number of records in each role's long-term memory",
			[]string{"role"}, nil,
		),
	}
}

// Describe implements prometheus.Collector
func (c *MemoryCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.records
}

// Collect implements prometheus.Collector
func (c *MemoryCollector) Collect(ch chan<- prometheus.Metric) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	for _, role := range memory.Roles() {
		store, err := c.bank.Store(role)
		if err != nil {
			continue
		}
		n, err := store.Count(ctx)
		if err != nil {
			c.log.Warnw("Failed to count memory records", "role", role, "error", err)
			continue
		}
		ch <- prometheus.MustNewConstMetric(c.records, prometheus.GaugeValue, float64(n), string(role))
	}
}
