package consequence_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tatianab/integrity-trail/internal/consequence"
	"github.com/tatianab/integrity-trail/internal/models"
)

const catalogYAML = `
consequences:
  - id: audit
    title: Audit opened
    description: The rigged tender comes back.
    trigger:
      chose: {scenario: 1, choice: 3}
      reached: 3
    effects:
      - news:
          headline: Investigation Opened Into Previous Government Contracts
          source: City Ledger
          content: Irregularities in the bidding process.
          impact: {integrity: -5, reputation: -10}
      - special:
          type: investigation
          title: Auditors at the door
          description: They want the procurement file.
  - id: inspector-shortcut
    title: Shortcut remembered
    trigger:
      chose: {scenario: 2, choice: 3}
    effects:
      - scenario_modification:
          scenario_id: 4
          modified_text: The supplier already knows you look the other way.
          modified_choices:
            - choice_id: 1
              new_text: Report the supplier, knowing your own file is not clean.
          additional_choice:
            id: 6
            text: Ask for a bigger cut.
            outcome_text: They agree, for now.
            outcomes: {money: 20, integrity: -25}
`

func TestLoadCatalog(t *testing.T) {
	catalog, err := consequence.LoadCatalog(strings.NewReader(catalogYAML))
	require.NoError(t, err)
	require.Equal(t, 2, catalog.Len())
	require.Empty(t, catalog.Diagnostics())

	audit, ok := catalog.Get("audit")
	require.True(t, ok)
	require.Len(t, audit.Effects, 2)

	news, ok := audit.Effects[0].(models.NewsEvent)
	require.True(t, ok)
	require.Equal(t, "audit", news.ConsequenceID, "effects are stamped with their consequence")
	require.Equal(t, models.Effects{models.StatIntegrity: -5, models.StatReputation: -10}, news.Impact)

	special, ok := audit.Effects[1].(models.SpecialEvent)
	require.True(t, ok)
	require.Equal(t, models.SpecialInvestigation, special.Type)

	shortcut, ok := catalog.Get("inspector-shortcut")
	require.True(t, ok)
	mod, ok := shortcut.Effects[0].(models.ScenarioModification)
	require.True(t, ok)
	require.Equal(t, 4, mod.ScenarioID)
	require.Equal(t, 6, mod.AdditionalChoice.ID)
	require.Equal(t, 20, mod.AdditionalChoice.Outcomes[models.StatMoney])

	ids := make([]string, 0, catalog.Len())
	for _, c := range catalog.All() {
		ids = append(ids, c.ID)
	}
	require.Equal(t, []string{"audit", "inspector-shortcut"}, ids, "declaration order is kept")
}

func TestLoadCatalogRejects(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{
			name: "two variants in one effect entry",
			yaml: `
consequences:
  - id: a
    trigger: {min_decisions: 1}
    effects:
      - news: {headline: h}
        special: {type: scandal}
`,
		},
		{
			name: "duplicate ids",
			yaml: `
consequences:
  - id: a
    trigger: {min_decisions: 1}
    effects: [{news: {headline: h}}]
  - id: a
    trigger: {min_decisions: 2}
    effects: [{news: {headline: h}}]
`,
		},
		{
			name: "empty condition nested in all",
			yaml: `
consequences:
  - id: a
    trigger:
      all:
        - chose: {scenario: 1, choice: 1}
        - {}
    effects: [{news: {headline: h}}]
`,
		},
		{
			name: "unknown special type",
			yaml: `
consequences:
  - id: a
    trigger: {min_decisions: 1}
    effects: [{special: {type: party}}]
`,
		},
		{
			name: "modification without changes",
			yaml: `
consequences:
  - id: a
    trigger: {min_decisions: 1}
    effects: [{scenario_modification: {scenario_id: 2}}]
`,
		},
		{
			name: "unknown field",
			yaml: `
consequences:
  - id: a
    when: {min_decisions: 1}
`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			catalog, err := consequence.LoadCatalog(strings.NewReader(tt.yaml))
			require.ErrorIs(t, err, consequence.ErrInvalidCatalog)
			require.Nil(t, catalog)
		})
	}
}

func TestCatalogDiagnostics(t *testing.T) {
	catalog, err := consequence.NewCatalog(
		consequence.Consequence{
			ID:      "untriggered",
			Effects: []models.Effect{models.NewsEvent{Headline: "never"}},
		},
		consequence.Consequence{
			ID:      "first",
			Trigger: consequence.Condition{MinDecisions: intPtr(1)},
			Effects: []models.Effect{models.ScenarioModification{
				ScenarioID:       5,
				AdditionalChoice: &models.Choice{ID: 6, Text: "one"},
			}},
		},
		consequence.Consequence{
			ID:      "second",
			Trigger: consequence.Condition{MinDecisions: intPtr(2)},
			Effects: []models.Effect{models.ScenarioModification{
				ScenarioID:       5,
				AdditionalChoice: &models.Choice{ID: 6, Text: "two"},
			}},
		},
	)
	require.NoError(t, err)

	diagnostics := catalog.Diagnostics()
	require.Len(t, diagnostics, 2)
	require.Contains(t, diagnostics[0], "untriggered")
	require.Contains(t, diagnostics[1], `"first" and "second"`)
}
