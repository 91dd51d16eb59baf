package middleware

import (
	"context"
	"time"

	"github.com/tejpal123456789/trading-agnetic-workflow/internal/metrics"
	"github.com/tejpal123456789/trading-agnetic-workflow/internal/tools"
	"github.com/tejpal123456789/trading-agnetic-workflow/pkg/logger"
)

// Metrics records tool latency and outcome in prometheus and logs failures.
func Metrics() tools.Middleware {
	return func(t tools.Tool) tools.Tool {
		log := logger.Get().With("component", "tools", "tool", t.Name())
		return tools.Decorate(t, func(ctx context.Context, args tools.Args) (string, error) {
			start := time.Now()
			out, err := t.Execute(ctx, args)
			metrics.RecordToolExecution(t.Name(), time.Since(start), err)
			if err != nil {
				log.Warnw("Tool execution failed", "error", err, "duration", time.Since(start))
			} else {
				log.Debugw("Tool executed", "duration", time.Since(start), "result_length", len(out))
			}
			return out, err
		})
	}
}
