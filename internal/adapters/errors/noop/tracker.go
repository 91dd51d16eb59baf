package noop

import (
	"context"

	"github.com/tejpal123456789/trading-agnetic-workflow/pkg/errors"
)

var _ errors.Tracker = (*Tracker)(nil)

// Tracker discards everything. Used when error tracking is disabled and in tests.
type Tracker struct{}

func New() *Tracker {
	return &Tracker{}
}

func (t *Tracker) CaptureError(context.Context, error, map[string]string) error {
	return nil
}

func (t *Tracker) CaptureMessage(context.Context, string, errors.Level, map[string]string) error {
	return nil
}

func (t *Tracker) AddBreadcrumb(context.Context, string, string, errors.Level, map[string]interface{}) {}

func (t *Tracker) Flush(context.Context) error {
	return nil
}
