package engine

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/tatianab/integrity-trail/internal/errors"
	"github.com/tatianab/integrity-trail/internal/models"
	"github.com/tatianab/integrity-trail/internal/profile"
)

const fallbackQuestion = "What would you do differently if you faced this situation again?"

// planActivity decides whether an activity follows the summary of scenarioID and, for a reflection, which
// question is asked. No activity follows the last scenario.
func (e *Engine) planActivity(p models.Progress, scenarioID int) (models.Activity, string) {
	completed := p.ScenarioIndex + 1
	if completed >= len(e.content.Scenarios()) {
		return "", ""
	}
	if e.rand.Float64() >= activityChance {
		return "", ""
	}

	activity := e.schedule(completed, p.Stats.Integrity, profile.Style(p.Style))
	if activity != models.ActivityReflection {
		return activity, ""
	}
	questions := e.content.Questions(scenarioID)
	if len(questions) == 0 {
		return activity, fallbackQuestion
	}
	return activity, questions[e.rand.IntN(len(questions))]
}

// schedule picks the activity after the given number of completed scenarios.
func (e *Engine) schedule(completed, integrity int, style profile.Style) models.Activity {
	switch completed {
	case 1:
		return models.ActivityReflection
	case 2:
		return models.ActivityEcosystem
	case 3:
		if integrity < 50 {
			return models.ActivityInvestigation
		}
		return models.ActivityBranching
	case 4:
		return models.ActivityVulnerabilities
	}

	pick := func(a, b models.Activity) models.Activity {
		if e.rand.IntN(2) == 0 {
			return a
		}
		return b
	}
	switch style {
	case profile.Reformer, profile.Pragmatist:
		return pick(models.ActivityEcosystem, models.ActivityReflection)
	case profile.Opportunist:
		return pick(models.ActivityBranching, models.ActivityInvestigation)
	case profile.Idealist, profile.Whistleblower:
		return pick(models.ActivityReflection, models.ActivityVulnerabilities)
	}
	return models.AllActivities[e.rand.IntN(len(models.AllActivities))]
}

// Briefing is the text of an activity screen.
type Briefing struct {
	Activity models.Activity
	Title    string
	Lines    []string
}

// Briefing describes the current activity using the scenario just played and the player's record.
func (e *Engine) Briefing(ctx context.Context) (Briefing, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	p := e.session.Progress()
	if p.Phase != models.PhaseActivity {
		return Briefing{}, errors.Wrap(ErrWrongPhase, "briefing", slog.String("phase", string(p.Phase)))
	}
	scenario, err := e.current(ctx, p)
	if err != nil {
		return Briefing{}, err
	}

	b := Briefing{Activity: p.Activity}
	switch p.Activity {
	case models.ActivityReflection:
		b.Title = "Reflection"
		b.Lines = []string{p.Question}
	case models.ActivityEcosystem:
		b.Title = "Corruption Ecosystem"
		b.Lines = append(b.Lines, "Who is affected by \""+scenario.Title+"\":")
		for _, s := range scenario.Stakeholders {
			b.Lines = append(b.Lines, "  • "+s)
		}
		b.Lines = append(b.Lines, "", "Key concepts:")
		for _, k := range scenario.KeyConcepts {
			b.Lines = append(b.Lines, "  • "+k)
		}
		if scenario.GlobalImpact != "" {
			b.Lines = append(b.Lines, "", scenario.GlobalImpact)
		}
	case models.ActivityInvestigation:
		b.Title = "Investigation"
		b.Lines = append(b.Lines, "An auditor is reviewing your file. These are the decisions on record:")
		for _, d := range e.session.Decisions() {
			b.Lines = append(b.Lines, "  • "+e.describeDecision(ctx, d))
		}
		b.Lines = append(b.Lines, "", "Which of them would you want to explain first?")
	case models.ActivityBranching:
		b.Title = "Branching Narrative"
		b.Lines = append(b.Lines, "Your leadership style: "+p.Style)
		applied := e.session.AppliedConsequences()
		if len(applied) > 0 {
			b.Lines = append(b.Lines, "", "Paths your decisions have opened:")
			for _, c := range applied {
				b.Lines = append(b.Lines, "  • "+c.Title)
			}
		}
	case models.ActivityVulnerabilities:
		b.Title = "Vulnerability Assessment"
		b.Lines = append(b.Lines,
			fmt.Sprintf("Integrity %d, Money %d, Power %d, Reputation %d",
				p.Stats.Integrity, p.Stats.Money, p.Stats.Power, p.Stats.Reputation),
			"Corruption risk: "+profile.CorruptionLevel(p.Stats.Integrity))
		if scenario.Hint != "" {
			b.Lines = append(b.Lines, "", scenario.Hint)
		}
	default:
		return Briefing{}, errors.Wrap(ErrWrongPhase, "briefing", slog.String("activity", string(p.Activity)))
	}
	return b, nil
}

func (e *Engine) describeDecision(ctx context.Context, d models.Decision) string {
	scenario, err := e.session.EffectiveScenario(ctx, d.ScenarioID)
	if err != nil {
		return fmt.Sprintf("scenario %d, choice %d", d.ScenarioID, d.ChoiceID)
	}
	choice, ok := scenario.Choice(d.ChoiceID)
	if !ok {
		return fmt.Sprintf("%s: choice %d", scenario.Title, d.ChoiceID)
	}
	return scenario.Title + ": " + choice.Text
}
