// Package session owns the state of one playthrough. Every player decision goes through Session, which
// records it, applies the consequences it triggers and persists the result before the next call is served.
package session

import (
	"context"
	"log/slog"
	"maps"
	"sync"
	"time"

	"github.com/tatianab/integrity-trail/internal/consequence"
	"github.com/tatianab/integrity-trail/internal/errors"
	"github.com/tatianab/integrity-trail/internal/models"
	"github.com/tatianab/integrity-trail/internal/store"
)

var ErrUnknownScenario = errors.NewSentinel("unknown scenario")

// ScenarioSource provides the static base scenarios.
type ScenarioSource interface {
	Scenario(id int) (models.Scenario, bool)
	Scenarios() []models.Scenario
}

type Option func(*Session)

// WithClock replaces the clock used to timestamp decisions.
func WithClock(now func() time.Time) Option {
	return func(s *Session) {
		s.now = now
	}
}

type Session struct {
	mu        sync.Mutex
	scenarios ScenarioSource
	catalog   *consequence.Catalog
	evaluator *consequence.Evaluator
	gateway   *Gateway
	state     *models.SessionState
	resumed   bool
	now       func() time.Time
	logger    *slog.Logger
}

// New resumes the session saved in st, or starts a fresh one when there is none or it cannot be read.
func New(
	ctx context.Context,
	scenarios ScenarioSource,
	catalog *consequence.Catalog,
	st store.Store,
	logger *slog.Logger,
	opts ...Option,
) *Session {
	s := &Session{
		scenarios: scenarios,
		catalog:   catalog,
		evaluator: consequence.NewEvaluator(catalog, logger),
		gateway:   NewGateway(st, logger),
		now:       time.Now,
		logger:    logger.With("source", "Session"),
	}
	for _, opt := range opts {
		opt(s)
	}

	for _, d := range catalog.Diagnostics() {
		s.logger.LogAttrs(ctx, slog.LevelWarn, "consequence catalog", slog.String("diagnostic", d))
	}

	s.state, s.resumed = s.gateway.Load(ctx)
	return s
}

// Resumed reports whether the session was restored from a save.
func (s *Session) Resumed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.resumed
}

func (s *Session) PlaythroughID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.PlaythroughID
}

// RecordChoice appends the decision, applies every consequence it triggers and saves the session. stats
// is the snapshot after the choice's base outcome. The newly applied consequences are returned in catalog
// order. A failed save is logged and does not undo the decision.
func (s *Session) RecordChoice(
	ctx context.Context,
	scenarioID, choiceID int,
	stats models.Stats,
) ([]consequence.Consequence, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ctx, newlyApplied, err := s.record(ctx, scenarioID, choiceID, stats)
	if err != nil {
		return nil, err
	}
	s.persist(ctx)
	return newlyApplied, nil
}

// TurnEvents is everything one decision produced.
type TurnEvents struct {
	Decision     models.Decision
	Decisions    []models.Decision
	Consequences []consequence.Consequence
	News         []models.NewsEvent
	Specials     []models.SpecialEvent
}

// PlayTurn records a decision, drains both queues and lets update change the progress, then saves once.
// A resumed save therefore either has none of the turn or all of it. update runs with the session locked
// and must not call back into the session.
func (s *Session) PlayTurn(
	ctx context.Context,
	scenarioID, choiceID int,
	stats models.Stats,
	update func(p *models.Progress, events TurnEvents),
) (TurnEvents, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ctx, newlyApplied, err := s.record(ctx, scenarioID, choiceID, stats)
	if err != nil {
		return TurnEvents{}, err
	}

	decision, _ := s.state.Decisions.Last()
	events := TurnEvents{
		Decision:     decision,
		Decisions:    s.state.Decisions.All(),
		Consequences: newlyApplied,
		News:         s.state.PendingNews,
		Specials:     s.state.PendingSpecial,
	}
	s.state.PendingNews = []models.NewsEvent{}
	s.state.PendingSpecial = []models.SpecialEvent{}

	if update != nil {
		p := s.state.Progress.Clone()
		update(&p, events)
		s.state.Progress = p
	}
	s.persist(ctx)
	return events, nil
}

// record appends the decision and applies what it triggers without saving. Callers hold mu.
func (s *Session) record(
	ctx context.Context,
	scenarioID, choiceID int,
	stats models.Stats,
) (context.Context, []consequence.Consequence, error) {
	if _, ok := s.scenarios.Scenario(scenarioID); !ok {
		return ctx, nil, errors.Wrap(ErrUnknownScenario, "record choice", slog.Int("scenarioID", scenarioID))
	}

	decision := s.state.Decisions.Append(models.Decision{
		ScenarioID: scenarioID,
		ChoiceID:   choiceID,
		Timestamp:  s.now().UTC().Round(0),
		Stats:      stats,
	})
	ctx = withDecision(ctx, decision)
	s.logger.LogAttrs(ctx, slog.LevelInfo, "decision recorded")

	newlyApplied := s.evaluator.Evaluate(ctx, s.state.Decisions.All(), s.state.ConsequenceApplied)
	consequence.Apply(s.state, newlyApplied)
	return ctx, newlyApplied, nil
}

// EffectiveScenario returns the base scenario with every accumulated modification merged in. A choice
// collision is logged and the colliding choice left out.
func (s *Session) EffectiveScenario(ctx context.Context, id int) (models.Scenario, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	base, ok := s.scenarios.Scenario(id)
	if !ok {
		return models.Scenario{}, errors.Wrap(ErrUnknownScenario, "resolve scenario", slog.Int("scenarioID", id))
	}
	effective, err := consequence.Resolve(base, s.state.ScenarioModifications[id])
	if err != nil {
		s.logger.LogAttrs(ctx, slog.LevelWarn, "scenario modifications collided",
			slog.Int("scenarioID", id), errors.SlogError(err))
	}
	return effective, nil
}

// DrainNewsEvents returns the pending headlines in the order they were queued and empties the queue.
func (s *Session) DrainNewsEvents(ctx context.Context) []models.NewsEvent {
	s.mu.Lock()
	defer s.mu.Unlock()

	drained := s.state.PendingNews
	s.state.PendingNews = []models.NewsEvent{}
	if len(drained) > 0 {
		s.persist(ctx)
	}
	return drained
}

// DrainSpecialEvents returns the pending special events in the order they were queued and empties the
// queue.
func (s *Session) DrainSpecialEvents(ctx context.Context) []models.SpecialEvent {
	s.mu.Lock()
	defer s.mu.Unlock()

	drained := s.state.PendingSpecial
	s.state.PendingSpecial = []models.SpecialEvent{}
	if len(drained) > 0 {
		s.persist(ctx)
	}
	return drained
}

// Reset discards the playthrough, clears the store and starts a fresh state with nothing applied. The
// fresh state is in place even when clearing the store fails.
func (s *Session) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.gateway.Reset(ctx)
	s.state = state
	s.resumed = false
	if err != nil {
		return err
	}
	s.logger.LogAttrs(ctx, slog.LevelInfo, "session reset", slog.String("playthrough_id", state.PlaythroughID))
	return nil
}

// Decisions returns a copy of the decision log.
func (s *Session) Decisions() []models.Decision {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Decisions.All()
}

// Applied returns a copy of the applied flags.
func (s *Session) Applied() map[string]bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return maps.Clone(s.state.ConsequenceApplied)
}

// AppliedConsequences returns the applied consequences in catalog order.
func (s *Session) AppliedConsequences() []consequence.Consequence {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []consequence.Consequence
	for _, c := range s.catalog.All() {
		if s.state.ConsequenceApplied[c.ID] {
			out = append(out, c)
		}
	}
	return out
}

func (s *Session) Progress() models.Progress {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Progress.Clone()
}

// SaveProgress replaces the game progress and saves the session.
func (s *Session) SaveProgress(ctx context.Context, p models.Progress) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Progress = p.Clone()
	s.persist(ctx)
}

// persist saves the state. Callers hold mu.
func (s *Session) persist(ctx context.Context) {
	if err := s.gateway.Save(ctx, s.state); err != nil {
		s.logger.LogAttrs(ctx, slog.LevelError, "session not saved, continuing", errors.SlogError(err))
	}
}
