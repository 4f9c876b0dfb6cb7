package consequence_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tatianab/integrity-trail/internal/consequence"
	"github.com/tatianab/integrity-trail/internal/models"
)

func baseScenario() models.Scenario {
	return models.Scenario{
		ID:          5,
		Title:       "The Environmental Compliance Report",
		Description: "The plant's emissions data does not add up.",
		Choices: []models.Choice{
			{ID: 1, Text: "Report the discrepancy", OutcomeText: "Regulators step in.",
				Outcomes: models.Effects{models.StatIntegrity: 15, models.StatMoney: -10}},
			{ID: 2, Text: "Ask for a quiet correction", OutcomeText: "The numbers change.",
				Outcomes: models.Effects{models.StatIntegrity: -5}},
		},
	}
}

func TestResolveMergeDeterminism(t *testing.T) {
	base := baseScenario()
	mods := []models.ScenarioModification{
		{ConsequenceID: "A", ScenarioID: 5, ModifiedChoices: []models.ChoiceEdit{
			{ChoiceID: 2, NewText: strPtr("A's text"), NewOutcome: strPtr("A's outcome")},
		}},
		{ConsequenceID: "B", ScenarioID: 5, ModifiedChoices: []models.ChoiceEdit{
			{ChoiceID: 2, NewText: strPtr("B's text")},
		}},
		{ConsequenceID: "C", ScenarioID: 5, AdditionalChoice: &models.Choice{
			ID: 6, Text: "Leak the data", OutcomeText: "The story breaks.",
		}},
	}

	effective, err := consequence.Resolve(base, mods)
	require.NoError(t, err)

	choice, ok := effective.Choice(2)
	require.True(t, ok)
	require.Equal(t, "B's text", choice.Text, "last write wins for the same choice")
	require.Equal(t, "A's outcome", choice.OutcomeText, "fields B did not set keep A's value")

	appended, ok := effective.Choice(6)
	require.True(t, ok, "appended choice survives")
	require.Equal(t, "Leak the data", appended.Text)
	require.Len(t, effective.Choices, 3)
}

func TestResolveTextAndEffects(t *testing.T) {
	base := baseScenario()
	mods := []models.ScenarioModification{
		{ScenarioID: 5, ModifiedText: strPtr("first")},
		{ScenarioID: 5, ModifiedChoices: []models.ChoiceEdit{
			{ChoiceID: 1, NewEffects: models.Effects{models.StatMoney: 0, models.StatPower: 5}},
			{ChoiceID: 42, NewText: strPtr("no such choice")},
		}},
		{ScenarioID: 5, ModifiedText: strPtr("second")},
	}

	effective, err := consequence.Resolve(base, mods)
	require.NoError(t, err)
	require.Equal(t, "second", effective.Description)

	choice, _ := effective.Choice(1)
	require.Equal(t, models.Effects{models.StatIntegrity: 15, models.StatMoney: 0, models.StatPower: 5}, choice.Outcomes)
	require.Len(t, effective.Choices, 2)
}

func TestResolveLeavesBaseUntouched(t *testing.T) {
	base := baseScenario()
	pristine := baseScenario()

	_, err := consequence.Resolve(base, []models.ScenarioModification{
		{ScenarioID: 5, ModifiedText: strPtr("X"), ModifiedChoices: []models.ChoiceEdit{
			{ChoiceID: 1, NewText: strPtr("changed"), NewEffects: models.Effects{models.StatIntegrity: -50}},
		}, AdditionalChoice: &models.Choice{ID: 7, Text: "new"}},
	})
	require.NoError(t, err)
	require.Equal(t, pristine, base)
}

func TestResolveNoModifications(t *testing.T) {
	base := baseScenario()
	effective, err := consequence.Resolve(base, nil)
	require.NoError(t, err)
	require.Equal(t, base, effective)
}

func TestResolveChoiceCollision(t *testing.T) {
	base := baseScenario()
	mods := []models.ScenarioModification{
		{ConsequenceID: "first", ScenarioID: 5, AdditionalChoice: &models.Choice{ID: 6, Text: "first"}},
		{ConsequenceID: "second", ScenarioID: 5, AdditionalChoice: &models.Choice{ID: 6, Text: "second"}},
		{ConsequenceID: "shadow", ScenarioID: 5, AdditionalChoice: &models.Choice{ID: 1, Text: "shadow"}},
	}

	effective, err := consequence.Resolve(base, mods)
	require.ErrorIs(t, err, consequence.ErrChoiceCollision)
	require.Len(t, effective.Choices, 3)

	kept, _ := effective.Choice(6)
	require.Equal(t, "first", kept.Text)
	original, _ := effective.Choice(1)
	require.Equal(t, "Report the discrepancy", original.Text)
}
