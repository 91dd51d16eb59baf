package errors

import (
	"context"
)

// Tracker reports errors and breadcrumbs to an external service (Sentry or no-op).
type Tracker interface {
	// CaptureError sends an error with tags such as node, role or subject
	CaptureError(ctx context.Context, err error, tags map[string]string) error

	// CaptureMessage sends a plain message at the given level
	CaptureMessage(ctx context.Context, message string, level Level, tags map[string]string) error

	// AddBreadcrumb records a pipeline step so later errors carry the path that led to them
	AddBreadcrumb(ctx context.Context, message string, category string, level Level, data map[string]interface{})

	// Flush waits for all pending events to be sent
	Flush(ctx context.Context) error
}

// Level represents the severity level of an error or message
type Level string

const (
	LevelDebug   Level = "debug"
	LevelInfo    Level = "info"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
	LevelFatal   Level = "fatal"
)

func (l Level) String() string {
	return string(l)
}
