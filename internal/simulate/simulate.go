package simulate

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/tatianab/integrity-trail/internal/engine"
	"github.com/tatianab/integrity-trail/internal/errors"
	"github.com/tatianab/integrity-trail/internal/models"
)

// maxSteps bounds a run in case the engine stops advancing.
const maxSteps = 100

var ErrStalled = errors.NewSentinel("simulation did not reach the end of the game")

// Run plays eng to completion with player, narrating each turn to w.
func Run(ctx context.Context, eng *engine.Engine, player Player, w io.Writer) (engine.Result, error) {
	turn := 0
	for step := 0; step < maxSteps; step++ {
		p := eng.Progress()
		switch p.Phase {
		case models.PhaseComplete:
			result := eng.Result(ctx)
			fmt.Fprintf(w, "--- Game over ---\n%s: %s\n", result.Rating.Title, result.Rating.Description)
			fmt.Fprintf(w, "Style: %s, corruption risk: %s\n", result.Style, result.CorruptionLevel)
			return result, nil

		case models.PhaseScenario:
			scenario, err := eng.Scenario(ctx)
			if err != nil {
				return engine.Result{}, err
			}
			turn++
			fmt.Fprintf(w, "--- Turn %d: %s ---\n", turn, scenario.Title)

			choiceID, err := player.Choose(ctx, scenario, p)
			if err != nil {
				return engine.Result{}, errors.Wrap(err, "player choice", slog.Int("scenarioID", scenario.ID))
			}
			t, err := eng.Choose(ctx, choiceID)
			if err != nil {
				return engine.Result{}, err
			}
			printTurn(w, t)

		case models.PhaseSummary:
			if _, err := eng.Continue(ctx); err != nil {
				return engine.Result{}, err
			}

		case models.PhaseActivity:
			if err := runActivity(ctx, eng, player, w); err != nil {
				return engine.Result{}, err
			}
		}
	}
	return engine.Result{}, errors.Wrap(ErrStalled, "run", slog.Int("steps", maxSteps))
}

func runActivity(ctx context.Context, eng *engine.Engine, player Player, w io.Writer) error {
	b, err := eng.Briefing(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "Activity: %s\n", b.Title)

	if b.Activity != models.ActivityReflection {
		_, err := eng.CompleteActivity(ctx)
		return err
	}

	scenario, err := eng.Scenario(ctx)
	if err != nil {
		return err
	}
	question := b.Lines[0]
	answer, err := player.Reflect(ctx, scenario, question)
	if err != nil {
		return errors.Wrap(err, "player reflection", slog.Int("scenarioID", scenario.ID))
	}
	fmt.Fprintf(w, "Q: %s\nA: %s\n", question, answer)
	r, err := eng.SubmitReflection(ctx, answer)
	if err != nil {
		return err
	}
	if r.Feedback != "" {
		fmt.Fprintf(w, "Coach: %s\n", r.Feedback)
	}
	return nil
}

func printTurn(w io.Writer, t engine.Turn) {
	fmt.Fprintf(w, "Player chose: %s\n", t.Choice.Text)
	fmt.Fprintf(w, "Outcome: %s\n", t.Choice.OutcomeText)
	for _, c := range t.Consequences {
		fmt.Fprintf(w, "Consequence: %s\n", c.Title)
	}
	for _, h := range t.Headlines {
		fmt.Fprintf(w, "HEADLINE: %s (%s)\n", h.Headline, h.Source)
	}
	for _, e := range t.Specials {
		fmt.Fprintf(w, "EVENT: %s\n", e.Title)
	}
	fmt.Fprintf(w, "Stats: Integrity=%d, Money=%d, Power=%d, Reputation=%d\n\n",
		t.Stats.Integrity, t.Stats.Money, t.Stats.Power, t.Stats.Reputation)
}
