package tui

import (
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"
	"github.com/tatianab/integrity-trail/internal/models"
	"github.com/tatianab/integrity-trail/internal/profile"
)

func TestStatLine(t *testing.T) {
	line := statLine(models.StatIntegrity, 70)
	require.Contains(t, line, "Integrity")
	require.Contains(t, line, " 70")
	require.Contains(t, line, "░░░")

	require.NotPanics(t, func() { statLine(models.StatMoney, 130) })
	require.NotPanics(t, func() { statLine(models.StatMoney, -5) })
}

func TestImpactLine(t *testing.T) {
	require.Empty(t, impactLine(nil))
	require.Equal(t, "\n\nintegrity -5, reputation -10",
		impactLine(models.Effects{models.StatReputation: -10, models.StatIntegrity: -5}))
}

func scenarioModel() model {
	m := NewModel(nil)
	m.state = stateScenario
	m.scenario = models.Scenario{
		ID:    1,
		Title: "The Contract Bidding",
		Hint:  "Think about who benefits.",
		Choices: []models.Choice{
			{ID: 1, Text: "Award the contract to the lowest qualified bidder."},
		},
	}
	return m
}

func TestSubmitRejectsBadChoices(t *testing.T) {
	m := scenarioModel()

	next, cmd := m.submit("abc")
	require.Nil(t, cmd)
	require.Contains(t, next.(model).gameLog, `not "abc"`)
	require.False(t, next.(model).busy)

	next, cmd = m.submit("9")
	require.Nil(t, cmd)
	require.Contains(t, next.(model).gameLog, "There is no choice 9.")
}

func TestSubmitHint(t *testing.T) {
	next, _ := scenarioModel().submit("/hint")
	require.Contains(t, next.(model).gameLog, "Think about who benefits.")
}

func TestSubmitChoiceStartsTurn(t *testing.T) {
	next, cmd := scenarioModel().submit("1")
	require.NotNil(t, cmd)
	got := next.(model)
	require.True(t, got.busy)
	require.Contains(t, got.gameLog, "lowest qualified bidder")
}

func TestEnterIgnoredWhileBusy(t *testing.T) {
	m := scenarioModel()
	m.busy = true
	m.textInput.SetValue("1")

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.Nil(t, cmd)
	require.Empty(t, next.(model).gameLog)
}

func TestStyleLabel(t *testing.T) {
	require.Equal(t, string(profile.Undetermined), styleLabel(models.Progress{}))
	require.Equal(t, string(profile.Reformer), styleLabel(models.Progress{Style: string(profile.Reformer)}))
}

func TestQuitWaitsForTurn(t *testing.T) {
	m := scenarioModel()
	m.busy = true

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	require.Nil(t, cmd, "quitting mid-turn would drop the save")
	got := next.(model)
	require.True(t, got.quitting)
	require.Contains(t, got.gameLog, "Saving")

	next, cmd = got.Update(turnMsg{err: errors.New("disk full")})
	require.NotNil(t, cmd)
	require.IsType(t, tea.QuitMsg{}, cmd())
	require.False(t, next.(model).busy)
}

func TestQuitWhenIdle(t *testing.T) {
	_, cmd := scenarioModel().Update(tea.KeyMsg{Type: tea.KeyEsc})
	require.NotNil(t, cmd)
	require.IsType(t, tea.QuitMsg{}, cmd())
}
