package agents

import (
	"context"
	"time"

	"github.com/tejpal123456789/trading-agnetic-workflow/internal/domain/analysis"
	"github.com/tejpal123456789/trading-agnetic-workflow/internal/metrics"
	"github.com/tejpal123456789/trading-agnetic-workflow/pkg/errors"
	"github.com/tejpal123456789/trading-agnetic-workflow/pkg/logger"
)

// Debater produces one argument for role from the current state.
type Debater interface {
	Argue(ctx context.Context, s analysis.State, role analysis.DebateRole) (string, error)
}

// DebaterFunc adapts a function to Debater.
type DebaterFunc func(ctx context.Context, s analysis.State, role analysis.DebateRole) (string, error)

func (f DebaterFunc) Argue(ctx context.Context, s analysis.State, role analysis.DebateRole) (string, error) {
	return f(ctx, s, role)
}

// Debate is a round-robin argument loop over a fixed party order with a round cap.
//
// A round is one full cycle of the order. The round counter advances when the last
// role of the order has spoken, and the debate is over once it reaches MaxRounds.
type Debate struct {
	slot      analysis.DebateSlot
	roles     []analysis.DebateRole
	maxRounds int
	debaters  map[analysis.DebateRole]Debater
	log       *logger.Logger
}

// NewDebate needs at least two roles, a cap of at least one round, and a debater per role.
func NewDebate(slot analysis.DebateSlot, roles []analysis.DebateRole, maxRounds int, debaters map[analysis.DebateRole]Debater) (*Debate, error) {
	if len(roles) < 2 {
		return nil, errors.Wrapf(errors.ErrInvalidInput, "%s debate needs at least two roles", slot)
	}
	if maxRounds < 1 {
		return nil, errors.Wrapf(errors.ErrInvalidInput, "%s debate max rounds must be >= 1, got %d", slot, maxRounds)
	}
	seen := make(map[analysis.DebateRole]bool, len(roles))
	for _, role := range roles {
		if seen[role] {
			return nil, errors.Wrapf(errors.ErrInvalidInput, "%s debate lists %s twice", slot, role)
		}
		seen[role] = true
		if debaters[role] == nil {
			return nil, errors.Wrapf(errors.ErrInvalidInput, "%s debate has no debater for %s", slot, role)
		}
	}

	return &Debate{
		slot:      slot,
		roles:     append([]analysis.DebateRole(nil), roles...),
		maxRounds: maxRounds,
		debaters:  debaters,
		log:       logger.Get().With("component", "debate", "debate", slot.String()),
	}, nil
}

func (d *Debate) Slot() analysis.DebateSlot { return d.slot }

func (d *Debate) Roles() []analysis.DebateRole {
	return append([]analysis.DebateRole(nil), d.roles...)
}

func (d *Debate) MaxRounds() int { return d.maxRounds }

// Next returns the role due to speak, or done once the round cap is reached.
func (d *Debate) Next(s analysis.State) (role analysis.DebateRole, done bool) {
	ds := s.Debate(d.slot)
	if ds.RoundCount >= d.maxRounds {
		return "", true
	}
	return d.roles[len(ds.Turns)%len(d.roles)], false
}

// Turn runs role's argument and returns its delta. A failed argument is recorded as an
// empty turn; it still occupies its slot in the order and still counts toward the round.
func (d *Debate) Turn(ctx context.Context, s analysis.State, role analysis.DebateRole) analysis.Delta {
	start := time.Now()
	argument, err := d.debaters[role].Argue(ctx, s, role)
	if err != nil {
		metrics.RecordDegraded("debate_turn")
		d.log.Errorw("Debate turn failed, recording empty argument",
			"role", role, "subject", s.Subject, "error", err)
		argument = ""
	}

	ds := s.Debate(d.slot)
	line := role.Label() + ": " + argument

	dd := analysis.DebateDelta{
		Transcript:      analysis.Text(joinLines(ds.Transcript, line)),
		RoleTranscripts: map[analysis.DebateRole]string{role: joinLines(ds.RoleTranscript(role), line)},
		LatestArgument:  map[analysis.DebateRole]string{role: line},
		LastSpeaker:     analysis.Speaker(role),
		Turns:           []analysis.DebateTurn{{Role: role, Argument: argument}},
	}

	if role == d.roles[len(d.roles)-1] {
		dd.RoundCount = analysis.Count(ds.RoundCount + 1)
	}

	d.log.Debugw("Debate turn completed", "role", role, "turn", len(ds.Turns)+1, "duration", time.Since(start))
	return analysis.DebateUpdate(DebaterFor(role).String(), d.slot, dd, analysis.AuditEntry{Role: role.Label(), Text: line})
}

func joinLines(existing, line string) string {
	if existing == "" {
		return line
	}
	return existing + "\n" + line
}
