package workers

import (
	"context"
	"strings"
	"time"

	analysissvc "github.com/tejpal123456789/trading-agnetic-workflow/internal/services/analysis"
	"github.com/tejpal123456789/trading-agnetic-workflow/pkg/errors"
)

// Analyzer runs the pipeline for one subject. *analysis.Service implements it.
type Analyzer interface {
	Run(ctx context.Context, subject, asOfDate string) (*analysissvc.Output, error)
}

// WatchlistWorker runs the pipeline for each watchlist subject once per tick, one subject at a time.
type WatchlistWorker struct {
	*BaseWorker
	analyzer Analyzer
	subjects []string
}

func NewWatchlistWorker(analyzer Analyzer, watchlist []string, interval time.Duration, enabled bool) *WatchlistWorker {
	seen := make(map[string]bool, len(watchlist))
	subjects := make([]string, 0, len(watchlist))
	for _, s := range watchlist {
		s = strings.ToUpper(strings.TrimSpace(s))
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		subjects = append(subjects, s)
	}
	return &WatchlistWorker{
		BaseWorker: NewBaseWorker("watchlist_analysis", interval, enabled && len(subjects) > 0),
		analyzer:   analyzer,
		subjects:   subjects,
	}
}

func (w *WatchlistWorker) Subjects() []string {
	return append([]string(nil), w.subjects...)
}

// Run analyses every subject with the default as-of date. Subjects already being analysed elsewhere are skipped;
// other failures are collected and do not stop the remaining subjects.
func (w *WatchlistWorker) Run(ctx context.Context) error {
	var errs errors.MultiError
	completed := 0

	for _, subject := range w.subjects {
		if ctx.Err() != nil {
			errs.Add(errors.Wrapf(errors.ErrTimeout, "watchlist interrupted before %s", subject))
			break
		}

		out, err := w.analyzer.Run(ctx, subject, "")
		switch {
		case errors.Is(err, errors.ErrRunInProgress):
			w.Log().Infow("Skipping subject with a run in progress", "subject", subject)
		case err != nil:
			w.Log().Errorw("Watchlist analysis failed", "subject", subject, "error", err)
			errs.Add(errors.Wrapf(err, "analyse %s", subject))
		default:
			completed++
			w.Log().Infow("Watchlist analysis finished",
				"subject", subject,
				"signal", out.Signal,
				"cached", out.Cached,
			)
		}
	}

	w.Log().Infow("Watchlist pass finished", "subjects", len(w.subjects), "completed", completed)
	return errs.ToError()
}
