package middleware

import (
	"context"
	"time"

	"github.com/tejpal123456789/trading-agnetic-workflow/internal/tools"
)

// Timeout enforces a per-call deadline for tool execution. Zero disables it.
func Timeout(d time.Duration) tools.Middleware {
	return func(t tools.Tool) tools.Tool {
		if d <= 0 {
			return t
		}
		return tools.Decorate(t, func(ctx context.Context, args tools.Args) (string, error) {
			ctx, cancel := context.WithTimeout(ctx, d)
			defer cancel()
			return t.Execute(ctx, args)
		})
	}
}
