package analysis

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"

	kafkaadapter "github.com/tejpal123456789/trading-agnetic-workflow/internal/adapters/kafka"
	"github.com/tejpal123456789/trading-agnetic-workflow/internal/agents/workflows"
	domain "github.com/tejpal123456789/trading-agnetic-workflow/internal/domain/analysis"
	"github.com/tejpal123456789/trading-agnetic-workflow/internal/events"
	"github.com/tejpal123456789/trading-agnetic-workflow/internal/metrics"
	"github.com/tejpal123456789/trading-agnetic-workflow/internal/reflection"
	"github.com/tejpal123456789/trading-agnetic-workflow/pkg/errors"
	"github.com/tejpal123456789/trading-agnetic-workflow/pkg/logger"
)

// Runner executes the trading graph once.
type Runner interface {
	Run(ctx context.Context, subject, asOfDate string) (*workflows.Result, error)
}

// SignalExtractor labels a final decision. *reflection.SignalProcessor implements it.
type SignalExtractor interface {
	Process(ctx context.Context, decision string) reflection.Signal
}

// Config tunes one Service.
type Config struct {
	// RunTimeout bounds a whole run. Zero disables it.
	RunTimeout time.Duration
	LockTTL    time.Duration
	// OutputDir receives FinalStateFile after every run; empty disables the dump.
	OutputDir      string
	FinalStateFile string
}

// Deps are the collaborators of a Service. Only Pipeline is required.
type Deps struct {
	Pipeline  Runner
	Locker    Locker
	Cache     ResultCache
	Signals   SignalExtractor
	Publisher *events.Publisher
}

// Output is what one run produced.
type Output struct {
	RunID string
	State domain.State
	// Trace is nil when the state came from the result cache.
	Trace     *workflows.Trace
	Signal    reflection.Signal
	StatePath string
	Cached    bool
}

// Service is the run entrypoint: it guards, executes, persists and announces pipeline runs.
type Service struct {
	deps Deps
	cfg  Config
	now  func() time.Time
	log  *logger.Logger
}

func NewService(deps Deps, cfg Config) (*Service, error) {
	if deps.Pipeline == nil {
		return nil, errors.Wrapf(errors.ErrInvalidInput, "analysis service requires a pipeline")
	}
	if deps.Publisher == nil {
		deps.Publisher = events.NewPublisher(nil)
	}
	if cfg.FinalStateFile == "" {
		cfg.FinalStateFile = "final_state.json"
	}
	if cfg.LockTTL <= 0 {
		cfg.LockTTL = time.Hour
	}
	return &Service{
		deps: deps,
		cfg:  cfg,
		now:  time.Now,
		log:  logger.Get().With("component", "analysis_service"),
	}, nil
}

// Run analyses subject as of asOfDate, defaulting the date to two days ago.
func (s *Service) Run(ctx context.Context, subject, asOfDate string) (*Output, error) {
	subject = strings.TrimSpace(subject)
	if asOfDate == "" {
		asOfDate = domain.DefaultAsOfDate(s.now())
	}
	start := time.Now()
	out := &Output{RunID: uuid.NewString()}
	log := s.log.With("run_id", out.RunID, "subject", subject, "date", asOfDate)

	if s.deps.Cache != nil && subject != "" {
		state, found, err := s.deps.Cache.Get(ctx, subject, asOfDate)
		if err != nil {
			log.Warnw("Result cache lookup failed", "error", err)
		} else if found {
			log.Info("Serving run from result cache")
			out.State, out.Cached = state, true
			metrics.RecordRun(0, "cached")
			return out, nil
		}
	}

	if s.deps.Locker != nil && subject != "" {
		lock, ok, err := s.deps.Locker.Acquire(ctx, LockKey(subject, asOfDate), s.cfg.LockTTL)
		if err != nil {
			return nil, errors.Wrapf(errors.ErrUnavailable, "run lock: %v", err)
		}
		if !ok {
			metrics.RecordRun(0, "locked")
			return nil, errors.Wrapf(errors.ErrRunInProgress, "%s on %s", subject, asOfDate)
		}
		defer func() {
			if err := lock.Release(context.Background()); err != nil {
				log.Warnw("Failed to release run lock", "error", err)
			}
		}()
	}

	runCtx := ctx
	if s.cfg.RunTimeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, s.cfg.RunTimeout)
		defer cancel()
	}

	res, err := s.deps.Pipeline.Run(runCtx, subject, asOfDate)
	if res != nil {
		out.State, out.Trace = res.State, res.Trace
	}
	if err != nil {
		metrics.RecordRun(time.Since(start), "error")
		return out, err
	}

	if path, err := s.dumpState(out.State); err != nil {
		log.Errorw("Failed to write final state", "error", err)
	} else {
		out.StatePath = path
	}

	if s.deps.Signals != nil {
		out.Signal = s.deps.Signals.Process(ctx, out.State.FinalDecision)
		metrics.RecordDecision(string(out.Signal))
	}

	event := events.DecisionEvent{
		RunID:         out.RunID,
		Subject:       out.State.Subject,
		Date:          out.State.AsOfDate,
		Signal:        string(out.Signal),
		FinalDecision: out.State.FinalDecision,
	}
	if out.Trace != nil {
		event.Trace = out.Trace.ToEvent()
	}
	_ = s.deps.Publisher.PublishDecision(ctx, event)

	switch {
	case s.deps.Cache == nil:
	case !out.State.Complete():
		log.Warn("Run degraded, not caching result")
	default:
		if err := s.deps.Cache.Set(ctx, out.State); err != nil {
			log.Warnw("Failed to cache run result", "error", err)
		}
	}

	metrics.RecordRun(time.Since(start), "success")
	log.Infow("Run completed", "duration", time.Since(start), "signal", out.Signal, "state_path", out.StatePath)
	return out, nil
}

func (s *Service) dumpState(state domain.State) (string, error) {
	if s.cfg.OutputDir == "" {
		return "", nil
	}
	if err := os.MkdirAll(s.cfg.OutputDir, 0o755); err != nil {
		return "", errors.Wrapf(err, "create output dir %s", s.cfg.OutputDir)
	}
	data, err := domain.Marshal(state)
	if err != nil {
		return "", err
	}
	path := filepath.Join(s.cfg.OutputDir, s.cfg.FinalStateFile)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", errors.Wrapf(err, "write %s", path)
	}
	return path, nil
}

// LoadState reads a state written by a previous run.
func LoadState(path string) (domain.State, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.State{}, errors.Wrapf(err, "read %s", path)
	}
	return domain.Unmarshal(data)
}

// Consumer is the subset of the Kafka consumer Serve needs.
type Consumer interface {
	Consume(ctx context.Context, handler kafkaadapter.MessageHandler) error
}

// Serve runs the pipeline for every analysis request read from consumer until ctx ends.
func (s *Service) Serve(ctx context.Context, consumer Consumer) error {
	return consumer.Consume(ctx, s.HandleRequest)
}

// HandleRequest decodes one AnalysisRequest and runs it. A locked run is skipped.
func (s *Service) HandleRequest(ctx context.Context, msg kafkago.Message) error {
	var req events.AnalysisRequest
	if err := json.Unmarshal(msg.Value, &req); err != nil {
		return errors.Wrapf(errors.ErrInvalidInput, "decode analysis request: %v", err)
	}

	_, err := s.Run(ctx, req.Subject, req.AsOfDate)
	if errors.Is(err, errors.ErrRunInProgress) {
		s.log.Infow("Skipping request, run already in progress", "subject", req.Subject, "date", req.AsOfDate)
		return nil
	}
	return err
}
