package agents

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tejpal123456789/trading-agnetic-workflow/internal/domain/analysis"
)

type stubProducer struct {
	kind   analysis.ReportKind
	report string
	err    error
	delay  time.Duration
	panics bool
}

func (p stubProducer) Kind() analysis.ReportKind { return p.kind }

func (p stubProducer) Name() string { return string(p.kind) + "_stub" }

func (p stubProducer) Produce(ctx context.Context, _ analysis.State) (string, []analysis.AuditEntry, error) {
	if p.panics {
		panic("producer exploded")
	}
	if p.delay > 0 {
		select {
		case <-time.After(p.delay):
		case <-ctx.Done():
			return "", nil, ctx.Err()
		}
	}
	if p.err != nil {
		return "", nil, p.err
	}
	return p.report, []analysis.AuditEntry{{Role: p.Name(), Text: p.report}}, nil
}

func TestParallelAnalysis_DeltasInProducerOrder(t *testing.T) {
	pa, err := NewParallelAnalysis(time.Second,
		stubProducer{kind: analysis.ReportMarket, report: "M", delay: 30 * time.Millisecond},
		stubProducer{kind: analysis.ReportSentiment, report: "S"},
		stubProducer{kind: analysis.ReportNews, report: "N", delay: 10 * time.Millisecond},
		stubProducer{kind: analysis.ReportFundamentals, report: "F"},
	)
	require.NoError(t, err)

	s := analysis.New("ACME", "2024-01-10")
	deltas := pa.Run(context.Background(), s)
	require.Len(t, deltas, 4)

	out := analysis.ApplyAll(s, deltas...)
	assert.Equal(t, "M", out.MarketReport)
	assert.Equal(t, "S", out.SentimentReport)
	assert.Equal(t, "N", out.NewsReport)
	assert.Equal(t, "F", out.FundamentalsReport)

	require.Len(t, out.AuditLog, 4)
	assert.Equal(t, "market_stub", out.AuditLog[0].Role)
	assert.Equal(t, "fundamentals_stub", out.AuditLog[3].Role)
	assert.Empty(t, s.MarketReport, "input snapshot must not change")
}

func TestParallelAnalysis_FailuresDegradeToEmptyReports(t *testing.T) {
	pa, err := NewParallelAnalysis(20*time.Millisecond,
		stubProducer{kind: analysis.ReportMarket, report: "M"},
		stubProducer{kind: analysis.ReportSentiment, err: errors.New("rate limited")},
		stubProducer{kind: analysis.ReportNews, delay: time.Second},
		stubProducer{kind: analysis.ReportFundamentals, panics: true},
	)
	require.NoError(t, err)

	out := analysis.ApplyAll(analysis.New("ACME", "2024-01-10"), pa.Run(context.Background(), analysis.New("ACME", "2024-01-10"))...)
	assert.Equal(t, "M", out.MarketReport)
	assert.Empty(t, out.SentimentReport)
	assert.Empty(t, out.NewsReport)
	assert.Empty(t, out.FundamentalsReport)

	var failures []string
	for _, e := range out.AuditLog {
		if e.Role != "market_stub" {
			failures = append(failures, e.Text)
		}
	}
	require.Len(t, failures, 3)
	assert.Contains(t, failures[0], "rate limited")
}

func TestNewParallelAnalysis_RejectsDuplicateKinds(t *testing.T) {
	_, err := NewParallelAnalysis(time.Second,
		stubProducer{kind: analysis.ReportMarket},
		stubProducer{kind: analysis.ReportMarket},
	)
	require.Error(t, err)
}
