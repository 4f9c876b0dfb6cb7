package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestStatsApplyClamps(t *testing.T) {
	tests := []struct {
		name    string
		start   Stats
		effects Effects
		want    Stats
	}{
		{
			name:    "plain deltas",
			start:   Stats{Integrity: 50, Money: 50, Power: 50, Reputation: 50},
			effects: Effects{StatIntegrity: 10, StatMoney: -5},
			want:    Stats{Integrity: 60, Money: 45, Power: 50, Reputation: 50},
		},
		{
			name:    "clamped at both ends",
			start:   Stats{Integrity: 95, Money: 3, Power: 30, Reputation: 70},
			effects: Effects{StatIntegrity: 15, StatMoney: -20},
			want:    Stats{Integrity: 100, Money: 0, Power: 30, Reputation: 70},
		},
		{
			name:  "nil effects",
			start: InitialStats,
			want:  InitialStats,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, tt.start.Apply(tt.effects))
		})
	}
}

func TestEffectsMerge(t *testing.T) {
	base := Effects{StatIntegrity: -20, StatMoney: 15}
	merged := base.Merge(Effects{StatMoney: 0, StatPower: 5})

	require.Equal(t, Effects{StatIntegrity: -20, StatMoney: 0, StatPower: 5}, merged)
	require.Equal(t, Effects{StatIntegrity: -20, StatMoney: 15}, base, "base must not change")
}

func TestScenarioCloneIsDeep(t *testing.T) {
	base := Scenario{
		ID: 1,
		Choices: []Choice{
			{ID: 1, Text: "report it", Outcomes: Effects{StatIntegrity: 10}},
		},
		KeyConcepts: []string{"Conflict of Interest"},
	}
	clone := base.Clone()
	clone.Choices[0].Text = "ignore it"
	clone.Choices[0].Outcomes[StatIntegrity] = -10
	clone.KeyConcepts[0] = "changed"

	require.Equal(t, "report it", base.Choices[0].Text)
	require.Equal(t, 10, base.Choices[0].Outcomes[StatIntegrity])
	require.Equal(t, "Conflict of Interest", base.KeyConcepts[0])
}

func TestSessionStateRoundTrip(t *testing.T) {
	text := "X"
	state := NewSessionState()
	state.Decisions = append(state.Decisions, Decision{
		Seq:        1,
		ScenarioID: 1,
		ChoiceID:   3,
		Timestamp:  time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
		Stats:      Stats{Integrity: 80, Money: 65, Power: 40, Reputation: 60},
	})
	state.ConsequenceApplied["c1"] = true
	state.ConsequenceApplied["c2"] = false
	state.ScenarioModifications[3] = []ScenarioModification{
		{ConsequenceID: "c1", ScenarioID: 3, ModifiedText: &text},
	}
	state.PendingNews = append(state.PendingNews, NewsEvent{ConsequenceID: "c1", Headline: "Audit opened"})
	state.PendingSpecial = append(state.PendingSpecial, SpecialEvent{ConsequenceID: "c1", Type: SpecialScandal})

	data, err := EncodeState(state)
	require.NoError(t, err)

	decoded, err := DecodeState(data)
	require.NoError(t, err)

	again, err := EncodeState(decoded)
	require.NoError(t, err)
	require.Equal(t, string(data), string(again))
	require.Equal(t, state.Decisions, decoded.Decisions)
	require.Equal(t, "X", *decoded.ScenarioModifications[3][0].ModifiedText)
}

func TestDecodeStateRejects(t *testing.T) {
	tests := []struct {
		name string
		data string
		is   error
	}{
		{name: "empty blob", data: "", is: ErrEmptyState},
		{name: "missing version", data: "decisions: []\n", is: ErrUnsupportedSchema},
		{name: "future version", data: "schema_version: 99\n", is: ErrUnsupportedSchema},
		{name: "garbage", data: "{{{not yaml"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			state, err := DecodeState([]byte(tt.data))
			require.Error(t, err)
			require.Nil(t, state)
			if tt.is != nil {
				require.ErrorIs(t, err, tt.is)
			}
		})
	}
}

func TestDecodeStateNormalizes(t *testing.T) {
	state, err := DecodeState([]byte("schema_version: 1\nplaythrough_id: abc\n"))
	require.NoError(t, err)
	require.NotNil(t, state.ConsequenceApplied)
	require.NotNil(t, state.ScenarioModifications)
	require.Empty(t, state.PendingNews)
	require.Equal(t, PhaseScenario, state.Progress.Phase)
}

func TestDecisionLogAppend(t *testing.T) {
	var log DecisionLog
	first := log.Append(Decision{ScenarioID: 1, ChoiceID: 3})
	second := log.Append(Decision{ScenarioID: 2, ChoiceID: 1})

	require.Equal(t, 1, first.Seq)
	require.Equal(t, 2, second.Seq)

	all := log.All()
	require.Len(t, all, 2)
	all[0].ChoiceID = 99
	require.Equal(t, 3, log[0].ChoiceID, "All must return a copy")

	last, ok := log.Last()
	require.True(t, ok)
	require.Equal(t, 2, last.ScenarioID)

	_, ok = DecisionLog{}.Last()
	require.False(t, ok)
}
