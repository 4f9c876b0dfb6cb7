package consequence

import "github.com/tatianab/integrity-trail/internal/models"

// Apply routes every effect of the newly applied consequences into state, in order. Scenario
// modifications are appended to the list of their target scenario, news and special events are queued.
// All effects of one consequence land in the same call.
func Apply(state *models.SessionState, newlyApplied []Consequence) {
	if state.ScenarioModifications == nil {
		state.ScenarioModifications = map[int][]models.ScenarioModification{}
	}
	for _, c := range newlyApplied {
		for _, effect := range c.Effects {
			switch e := models.Stamp(effect, c.ID).(type) {
			case models.ScenarioModification:
				state.ScenarioModifications[e.ScenarioID] = append(state.ScenarioModifications[e.ScenarioID], e)
			case models.NewsEvent:
				state.PendingNews = append(state.PendingNews, e)
			case models.SpecialEvent:
				state.PendingSpecial = append(state.PendingSpecial, e)
			}
		}
	}
}
