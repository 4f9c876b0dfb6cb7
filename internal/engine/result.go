package engine

import (
	"context"

	"github.com/tatianab/integrity-trail/internal/consequence"
	"github.com/tatianab/integrity-trail/internal/models"
	"github.com/tatianab/integrity-trail/internal/profile"
)

// PlayedDecision is a decision together with the text the player saw.
type PlayedDecision struct {
	models.Decision
	ScenarioTitle string
	ChoiceText    string
	OutcomeText   string
}

// Result summarizes a playthrough. It can be built at any point; Complete reports whether the last
// scenario has been played.
type Result struct {
	PlaythroughID   string
	Complete        bool
	Stats           models.Stats
	Style           profile.Style
	Rating          profile.Rating
	CorruptionLevel string
	Decisions       []PlayedDecision
	Consequences    []consequence.Consequence
	Headlines       []models.NewsEvent
	Specials        []models.SpecialEvent
	Reflections     []models.Reflection
}

func (e *Engine) Result(ctx context.Context) Result {
	e.mu.Lock()
	defer e.mu.Unlock()

	p := e.session.Progress()
	r := Result{
		PlaythroughID:   e.session.PlaythroughID(),
		Complete:        p.Phase == models.PhaseComplete,
		Stats:           p.Stats,
		Style:           profile.Style(p.Style),
		Rating:          profile.FinalRating(p.Stats.Integrity),
		CorruptionLevel: profile.CorruptionLevel(p.Stats.Integrity),
		Consequences:    e.session.AppliedConsequences(),
		Headlines:       p.Headlines,
		Specials:        p.Specials,
		Reflections:     p.Reflections,
	}
	for _, d := range e.session.Decisions() {
		played := PlayedDecision{Decision: d}
		if scenario, err := e.session.EffectiveScenario(ctx, d.ScenarioID); err == nil {
			played.ScenarioTitle = scenario.Title
			if choice, ok := scenario.Choice(d.ChoiceID); ok {
				played.ChoiceText = choice.Text
				played.OutcomeText = choice.OutcomeText
			}
		}
		r.Decisions = append(r.Decisions, played)
	}
	return r
}
