package consequence

import (
	"log/slog"

	"github.com/tatianab/integrity-trail/internal/errors"
	"github.com/tatianab/integrity-trail/internal/models"
)

var ErrChoiceCollision = errors.NewSentinel("appended choice id already in use")

// Resolve builds the scenario to display by applying mods, in order, to a copy of base:
//
//   - ModifiedText replaces the description; the last one wins.
//   - Each ChoiceEdit overwrites only the fields it sets on the choice with the same id. Edits to an id the
//     scenario does not have are ignored.
//   - AdditionalChoice is appended. A choice whose id is already present is skipped and reported through
//     the returned error, which wraps ErrChoiceCollision. The returned scenario is valid either way.
//
// base is never modified.
func Resolve(base models.Scenario, mods []models.ScenarioModification) (models.Scenario, error) {
	effective := base.Clone()
	var errs []error

	for _, m := range mods {
		if m.ModifiedText != nil {
			effective.Description = *m.ModifiedText
		}

		for _, edit := range m.ModifiedChoices {
			for i := range effective.Choices {
				choice := &effective.Choices[i]
				if choice.ID != edit.ChoiceID {
					continue
				}
				if edit.NewText != nil {
					choice.Text = *edit.NewText
				}
				if edit.NewOutcome != nil {
					choice.OutcomeText = *edit.NewOutcome
				}
				if len(edit.NewEffects) > 0 {
					choice.Outcomes = choice.Outcomes.Merge(edit.NewEffects)
				}
			}
		}

		if m.AdditionalChoice != nil {
			if _, taken := effective.Choice(m.AdditionalChoice.ID); taken {
				errs = append(errs, errors.Wrap(ErrChoiceCollision, "skip appended choice",
					slog.Int("scenarioID", base.ID),
					slog.Int("choiceID", m.AdditionalChoice.ID),
					slog.String("consequence", m.ConsequenceID)))
				continue
			}
			effective.Choices = append(effective.Choices, m.AdditionalChoice.Clone())
		}
	}

	return effective, errors.Join(errs...)
}
