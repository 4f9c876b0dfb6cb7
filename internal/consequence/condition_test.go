package consequence_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tatianab/integrity-trail/internal/consequence"
	"github.com/tatianab/integrity-trail/internal/models"
	"github.com/tatianab/integrity-trail/internal/profile"
)

func intPtr(v int) *int { return &v }

func strPtr(v string) *string { return &v }

func decide(scenarioID, choiceID int, stats models.Stats) models.Decision {
	return models.Decision{ScenarioID: scenarioID, ChoiceID: choiceID, Stats: stats}
}

func TestConditionSatisfied(t *testing.T) {
	honest := models.Stats{Integrity: 90, Money: 50, Power: 30, Reputation: 80}
	crooked := models.Stats{Integrity: 30, Money: 80, Power: 50, Reputation: 40}
	history := []models.Decision{
		decide(1, 3, honest),
		decide(2, 1, crooked),
	}

	tests := []struct {
		name      string
		condition consequence.Condition
		decisions []models.Decision
		want      bool
	}{
		{
			name:      "empty condition never holds",
			condition: consequence.Condition{},
			decisions: history,
			want:      false,
		},
		{
			name:      "chose matches",
			condition: consequence.Condition{Chose: &consequence.ChoiceRef{Scenario: 1, Choice: 3}},
			decisions: history,
			want:      true,
		},
		{
			name:      "chose misses",
			condition: consequence.Condition{Chose: &consequence.ChoiceRef{Scenario: 1, Choice: 1}},
			decisions: history,
			want:      false,
		},
		{
			name: "chose any",
			condition: consequence.Condition{ChoseAny: []consequence.ChoiceRef{
				{Scenario: 5, Choice: 5},
				{Scenario: 2, Choice: 1},
			}},
			decisions: history,
			want:      true,
		},
		{
			name: "chose and reached",
			condition: consequence.Condition{
				Chose:   &consequence.ChoiceRef{Scenario: 1, Choice: 3},
				Reached: intPtr(3),
			},
			decisions: history,
			want:      false,
		},
		{
			name:      "min decisions",
			condition: consequence.Condition{MinDecisions: intPtr(2)},
			decisions: history,
			want:      true,
		},
		{
			name: "count below threshold",
			condition: consequence.Condition{Count: &consequence.ChoiceCount{
				Choices: []consequence.ChoiceRef{{Scenario: 1, Choice: 3}, {Scenario: 2, Choice: 3}},
				AtLeast: 2,
			}},
			decisions: history,
			want:      false,
		},
		{
			name:      "stat uses latest snapshot",
			condition: consequence.Condition{Stat: &consequence.StatRange{Name: models.StatIntegrity, Max: intPtr(40)}},
			decisions: history,
			want:      true,
		},
		{
			name:      "stat on empty log",
			condition: consequence.Condition{Stat: &consequence.StatRange{Name: models.StatMoney, Min: intPtr(0)}},
			decisions: nil,
			want:      false,
		},
		{
			name: "style",
			condition: consequence.Condition{Style: &consequence.StyleMatch{
				Is:           profile.Idealist,
				MinIntegrity: 75,
			}},
			decisions: []models.Decision{decide(1, 1, honest), decide(2, 1, honest)},
			want:      true,
		},
		{
			name: "all and any",
			condition: consequence.Condition{
				All: []consequence.Condition{
					{Chose: &consequence.ChoiceRef{Scenario: 1, Choice: 3}},
					{MinDecisions: intPtr(1)},
				},
				Any: []consequence.Condition{
					{Reached: intPtr(9)},
					{Reached: intPtr(2)},
				},
			},
			decisions: history,
			want:      true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, tt.condition.Satisfied(tt.decisions))
		})
	}
}

func TestConditionMonotonic(t *testing.T) {
	c := consequence.Condition{Chose: &consequence.ChoiceRef{Scenario: 1, Choice: 3}}
	history := []models.Decision{decide(1, 3, models.InitialStats)}
	require.True(t, c.Satisfied(history))

	for i := 2; i <= 5; i++ {
		history = append(history, decide(i, 1, models.InitialStats))
		require.True(t, c.Satisfied(history), "must stay satisfied after %d decisions", len(history))
	}
}

func TestConditionValidate(t *testing.T) {
	require.NoError(t, consequence.Condition{}.Validate())
	require.NoError(t, consequence.Condition{Chose: &consequence.ChoiceRef{Scenario: 1, Choice: 1}}.Validate())

	bad := []consequence.Condition{
		{Count: &consequence.ChoiceCount{AtLeast: 0}},
		{Stat: &consequence.StatRange{Name: "charisma", Min: intPtr(1)}},
		{Stat: &consequence.StatRange{Name: models.StatPower}},
		{Style: &consequence.StyleMatch{Is: "Saint"}},
		{Any: []consequence.Condition{{Style: &consequence.StyleMatch{Is: "Saint"}}}},
		{All: []consequence.Condition{{}}},
		{Any: []consequence.Condition{{Chose: &consequence.ChoiceRef{Scenario: 1, Choice: 1}}, {}}},
	}
	for _, c := range bad {
		require.Error(t, c.Validate())
	}
}
