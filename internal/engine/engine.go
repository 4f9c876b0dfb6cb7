// Package engine runs the game loop: scenarios, stat changes, interstitial headlines and the special
// activities between scenarios. The state it advances lives in the session so that a resumed game
// continues exactly where it stopped.
package engine

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/tatianab/integrity-trail/internal/consequence"
	"github.com/tatianab/integrity-trail/internal/errors"
	"github.com/tatianab/integrity-trail/internal/models"
	"github.com/tatianab/integrity-trail/internal/profile"
	"github.com/tatianab/integrity-trail/internal/session"
)

var (
	ErrInvalidChoice = errors.NewSentinel("invalid choice")
	ErrWrongPhase    = errors.NewSentinel("action not allowed in this phase")
)

// activityChance is the probability that a special activity follows a scenario summary.
const activityChance = 0.7

// Content is the static content the engine reads besides scenarios.
type Content interface {
	session.ScenarioSource
	Questions(scenarioID int) []string
	News(scenarioID int) []models.NewsItem
}

// Coach comments on reflection answers.
type Coach interface {
	Feedback(ctx context.Context, scenario models.Scenario, question, answer string) (string, error)
}

// Rand is the random source used to schedule activities and pick questions. *rand.Rand satisfies it.
type Rand interface {
	Float64() float64
	IntN(n int) int
}

type Option func(*Engine)

func WithCoach(c Coach) Option {
	return func(e *Engine) {
		e.coach = c
	}
}

func WithRand(r Rand) Option {
	return func(e *Engine) {
		e.rand = r
	}
}

type Engine struct {
	mu      sync.Mutex
	session *session.Session
	content Content
	coach   Coach
	rand    Rand
	logger  *slog.Logger
}

func NewEngine(sess *session.Session, content Content, logger *slog.Logger, opts ...Option) *Engine {
	seed := uint64(time.Now().UnixNano())
	e := &Engine{
		session: sess,
		content: content,
		rand:    rand.New(rand.NewPCG(seed, seed>>1)),
		logger:  logger.With("source", "Engine"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Turn is what happened after a choice.
type Turn struct {
	Scenario     models.Scenario
	Choice       models.Choice
	Stats        models.Stats
	Consequences []consequence.Consequence
	Headlines    []models.NewsEvent
	Specials     []models.SpecialEvent
	Style        profile.Style
	StyleChanged bool
}

// Progress returns the current game state.
func (e *Engine) Progress() models.Progress {
	return e.session.Progress()
}

// News returns the real-world headlines related to a scenario.
func (e *Engine) News(scenarioID int) []models.NewsItem {
	return e.content.News(scenarioID)
}

// ScenarioCount returns the number of scenarios in a playthrough.
func (e *Engine) ScenarioCount() int {
	return len(e.content.Scenarios())
}

// Scenario returns the scenario being played, with every consequence merged in.
func (e *Engine) Scenario(ctx context.Context) (models.Scenario, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	p := e.session.Progress()
	if p.Phase == models.PhaseComplete {
		return models.Scenario{}, errors.Wrap(ErrWrongPhase, "current scenario", slog.String("phase", string(p.Phase)))
	}
	return e.current(ctx, p)
}

func (e *Engine) current(ctx context.Context, p models.Progress) (models.Scenario, error) {
	scenarios := e.content.Scenarios()
	if p.ScenarioIndex < 0 || p.ScenarioIndex >= len(scenarios) {
		return models.Scenario{}, errors.Wrap(session.ErrUnknownScenario, "current scenario",
			slog.Int("index", p.ScenarioIndex))
	}
	return e.session.EffectiveScenario(ctx, scenarios[p.ScenarioIndex].ID)
}

// Choose plays choiceID in the current scenario. The base outcome is applied to the stats, the decision is
// recorded, and the headlines and special events it triggers are drained and returned. Headline impacts
// are applied to the stats after the decision snapshot is taken. The whole turn is saved in one write.
func (e *Engine) Choose(ctx context.Context, choiceID int) (Turn, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	p := e.session.Progress()
	if p.Phase != models.PhaseScenario {
		return Turn{}, errors.Wrap(ErrWrongPhase, "choose", slog.String("phase", string(p.Phase)))
	}
	scenario, err := e.current(ctx, p)
	if err != nil {
		return Turn{}, err
	}
	choice, ok := scenario.Choice(choiceID)
	if !ok {
		return Turn{}, errors.Wrap(ErrInvalidChoice, "choose",
			slog.Int("scenarioID", scenario.ID), slog.Int("choiceID", choiceID))
	}

	stats := p.Stats.Apply(choice.Outcomes)
	turn := Turn{Scenario: scenario, Choice: choice}
	var activity models.Activity
	_, err = e.session.PlayTurn(ctx, scenario.ID, choice.ID, stats, func(p *models.Progress, events session.TurnEvents) {
		turn.Consequences = events.Consequences
		turn.Headlines = events.News
		turn.Specials = events.Specials
		for _, h := range turn.Headlines {
			stats = stats.Apply(h.Impact)
		}
		turn.Stats = stats
		turn.Style = profile.Determine(stats.Integrity, events.Decisions)
		turn.StyleChanged = string(turn.Style) != p.Style

		p.Stats = stats
		p.Style = string(turn.Style)
		p.LastChoiceID = choice.ID
		p.Phase = models.PhaseSummary
		p.Headlines = append(p.Headlines, turn.Headlines...)
		p.Specials = append(p.Specials, turn.Specials...)
		p.Activity, p.Question = e.planActivity(*p, scenario.ID)
		activity = p.Activity
	})
	if err != nil {
		return Turn{}, err
	}

	e.logger.LogAttrs(ctx, slog.LevelInfo, "choice played",
		slog.Int("scenarioID", scenario.ID),
		slog.Int("choiceID", choice.ID),
		slog.Int("consequences", len(turn.Consequences)),
		slog.String("style", string(turn.Style)),
		slog.String("activity", string(activity)))
	return turn, nil
}

// Continue leaves the summary, either into the planned activity or on to the next scenario.
func (e *Engine) Continue(ctx context.Context) (models.Progress, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	p := e.session.Progress()
	if p.Phase != models.PhaseSummary {
		return p, errors.Wrap(ErrWrongPhase, "continue", slog.String("phase", string(p.Phase)))
	}
	if p.Activity != "" {
		p.Phase = models.PhaseActivity
	} else {
		e.advance(&p)
	}
	e.session.SaveProgress(ctx, p)
	return p, nil
}

// CompleteActivity finishes the current activity and moves on to the next scenario.
func (e *Engine) CompleteActivity(ctx context.Context) (models.Progress, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	p := e.session.Progress()
	if p.Phase != models.PhaseActivity {
		return p, errors.Wrap(ErrWrongPhase, "complete activity", slog.String("phase", string(p.Phase)))
	}
	e.finishActivity(&p)
	e.session.SaveProgress(ctx, p)
	return p, nil
}

// SubmitReflection stores the answer to the current reflection question, asks the coach for feedback
// when one is configured and finishes the activity. A failing coach is logged and the answer kept
// without feedback.
func (e *Engine) SubmitReflection(ctx context.Context, answer string) (models.Reflection, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	p := e.session.Progress()
	if p.Phase != models.PhaseActivity || p.Activity != models.ActivityReflection {
		return models.Reflection{}, errors.Wrap(ErrWrongPhase, "submit reflection",
			slog.String("phase", string(p.Phase)), slog.String("activity", string(p.Activity)))
	}

	scenarioID := e.content.Scenarios()[p.ScenarioIndex].ID
	reflection := models.Reflection{
		ScenarioID: scenarioID,
		Question:   p.Question,
		Answer:     answer,
	}
	if e.coach != nil && answer != "" {
		scenario, _ := e.content.Scenario(scenarioID)
		feedback, err := e.coach.Feedback(ctx, scenario, p.Question, answer)
		if err != nil {
			e.logger.LogAttrs(ctx, slog.LevelWarn, "no reflection feedback", errors.SlogError(err))
		}
		reflection.Feedback = feedback
	}

	p.Reflections = append(p.Reflections, reflection)
	e.finishActivity(&p)
	e.session.SaveProgress(ctx, p)
	return reflection, nil
}

// Restart throws the playthrough away and starts from the first scenario.
func (e *Engine) Restart(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	err := e.session.Reset(ctx)
	e.session.SaveProgress(ctx, models.NewProgress())
	if err != nil {
		return errors.Wrap(err, "restart")
	}
	return nil
}

func (e *Engine) finishActivity(p *models.Progress) {
	p.Activities = append(p.Activities, p.Activity)
	p.Activity = ""
	p.Question = ""
	e.advance(p)
}

func (e *Engine) advance(p *models.Progress) {
	if p.ScenarioIndex+1 >= len(e.content.Scenarios()) {
		p.Phase = models.PhaseComplete
		return
	}
	p.ScenarioIndex++
	p.Phase = models.PhaseScenario
	p.LastChoiceID = 0
}
