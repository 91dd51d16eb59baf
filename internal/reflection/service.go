package reflection

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/tejpal123456789/trading-agnetic-workflow/internal/agents"
	"github.com/tejpal123456789/trading-agnetic-workflow/internal/domain/analysis"
	"github.com/tejpal123456789/trading-agnetic-workflow/internal/domain/memory"
	"github.com/tejpal123456789/trading-agnetic-workflow/internal/events"
	"github.com/tejpal123456789/trading-agnetic-workflow/internal/metrics"
	"github.com/tejpal123456789/trading-agnetic-workflow/pkg/errors"
	"github.com/tejpal123456789/trading-agnetic-workflow/pkg/logger"
)

// Bundle is the full record of one post-trade reflection.
type Bundle struct {
	Timestamp           time.Time         `json:"timestamp"`
	Company             string            `json:"company"`
	TradeDate           string            `json:"trade_date"`
	ExtractedSignal     Signal            `json:"extracted_signal"`
	ActualReturns       float64           `json:"actual_returns"`
	OutcomeDescription  string            `json:"outcome_description"`
	DecisionCorrectness string            `json:"decision_correctness"`
	AgentReflections    map[string]string `json:"agent_reflections"`
	SystemReflection    string            `json:"system_reflection"`
	RawDecision         string            `json:"raw_decision"`

	// LessonsStored counts the roles whose lesson reached memory.
	LessonsStored int `json:"-"`
	// SavedPath is where the bundle was written, empty when saving was off or failed.
	SavedPath string `json:"-"`
}

// Config tunes the reflection service.
type Config struct {
	Thresholds Thresholds
	// OutputDir receives reflection_<company>_<date>.json when Save is set.
	OutputDir string
	Save      bool
	// CallTimeout bounds each reflection call.
	CallTimeout time.Duration
}

// Service runs the post-trade learning loop. It is the only writer of long-term memory.
type Service struct {
	signals   *SignalProcessor
	reflector *Reflector
	publisher *events.Publisher
	cfg       Config
	now       func() time.Time
	log       *logger.Logger
}

// NewService wires the processor and reflector. publisher may be nil.
func NewService(invoker *agents.Invoker, bank *memory.Bank, publisher *events.Publisher, cfg Config) *Service {
	if cfg.Thresholds == (Thresholds{}) {
		cfg.Thresholds = DefaultThresholds
	}
	if publisher == nil {
		publisher = events.NewPublisher(nil)
	}
	return &Service{
		signals:   NewSignalProcessor(invoker),
		reflector: NewReflector(invoker, bank, cfg.CallTimeout),
		publisher: publisher,
		cfg:       cfg,
		now:       time.Now,
		log:       logger.Get().With("component", "reflection"),
	}
}

// Process extracts the signal, labels the outcome, reflects for every role and the system,
// then saves and publishes the bundle. Save failures are logged and leave SavedPath empty.
func (s *Service) Process(ctx context.Context, state analysis.State, outcome Outcome) (*Bundle, error) {
	s.log.Infow("Starting post-trade reflection", "subject", state.Subject, "date", state.AsOfDate, "returns", outcome.Returns)

	signal := s.signals.Process(ctx, state.FinalDecision)
	verdict := Evaluate(signal, outcome.Returns, s.cfg.Thresholds)
	metrics.RecordDecision(string(signal))
	metrics.RecordReflectionVerdict(verdict)
	s.log.Infow("Outcome evaluated", "signal", signal, "verdict", verdict, "returns", FormatDollars(outcome.Returns))

	bundle := &Bundle{
		Timestamp:           s.now(),
		Company:             state.Subject,
		TradeDate:           state.AsOfDate,
		ExtractedSignal:     signal,
		ActualReturns:       outcome.Returns,
		OutcomeDescription:  outcome.Description,
		DecisionCorrectness: verdict,
		AgentReflections:    make(map[string]string, len(RoleTargets())),
		RawDecision:         state.FinalDecision,
	}

	for _, target := range RoleTargets() {
		lesson, stored := s.reflector.Reflect(ctx, state, target, outcome)
		bundle.AgentReflections[target.Name] = lesson
		if stored {
			bundle.LessonsStored++
		}
	}
	bundle.SystemReflection = s.reflector.SystemReflection(ctx, signal, verdict, outcome.Returns)

	if s.cfg.Save {
		path, err := Save(bundle, s.cfg.OutputDir)
		if err != nil {
			s.log.Errorw("Error saving reflection", "error", err)
		} else {
			bundle.SavedPath = path
		}
	}

	_ = s.publisher.PublishReflection(ctx, events.ReflectionEvent{
		Subject:     bundle.Company,
		Date:        bundle.TradeDate,
		Signal:      string(signal),
		Returns:     outcome.Returns,
		Correctness: verdict,
		Lessons:     bundle.LessonsStored,
	})

	s.log.Infow("Post-trade reflection completed", "subject", state.Subject, "lessons_stored", bundle.LessonsStored)
	return bundle, nil
}

// FileName is reflection_<company>_<date>.json.
func FileName(company, date string) string {
	return fmt.Sprintf("reflection_%s_%s.json", sanitizeName(company), sanitizeName(date))
}

// Save writes the bundle as indented JSON into dir and returns the file path.
func Save(b *Bundle, dir string) (string, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", errors.Wrapf(err, "create reflection dir %s", dir)
	}
	data, err := json.MarshalIndent(b, "", "  ")
	if err != nil {
		return "", errors.Wrap(err, "encode reflection bundle")
	}
	path := filepath.Join(dir, FileName(b.Company, b.TradeDate))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", errors.Wrapf(err, "write %s", path)
	}
	return path, nil
}

// Load reads a bundle written by Save.
func Load(path string) (*Bundle, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read %s", path)
	}
	var b Bundle
	if err := json.Unmarshal(data, &b); err != nil {
		return nil, errors.Wrapf(errors.ErrInvalidInput, "decode %s: %v", path, err)
	}
	return &b, nil
}

func sanitizeName(s string) string {
	return strings.Map(func(r rune) rune {
		if r == '/' || r == '\\' || r == ' ' {
			return '_'
		}
		return r
	}, s)
}
