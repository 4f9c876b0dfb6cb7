// Package profile classifies the player's leadership style from their decisions.
package profile

import "github.com/tatianab/integrity-trail/internal/models"

// Style is a leadership style derived from past decisions.
type Style string

const (
	Idealist      Style = "Idealist"
	Pragmatist    Style = "Pragmatist"
	Opportunist   Style = "Opportunist"
	Whistleblower Style = "Whistleblower"
	Reformer      Style = "Reformer"
	Undetermined  Style = "Undetermined"
)

// Valid reports whether s names a known style.
func (s Style) Valid() bool {
	switch s {
	case Idealist, Pragmatist, Opportunist, Whistleblower, Reformer, Undetermined:
		return true
	}
	return false
}

// Choice ids carry a fixed meaning in every core scenario.
const (
	ethicalChoice    = 1
	compromiseChoice = 2
	corruptChoice    = 3
)

// coreScenarios are the scenarios whose choices are classified.
var coreScenarios = map[int]bool{1: true, 2: true, 3: true, 4: true, 5: true}

// whistleblowerScenario is where reporting corruption marks a whistleblower.
const whistleblowerScenario = 4

// Tally counts the classified choices in a decision history.
type Tally struct {
	Ethical    int
	Compromise int
	Corrupt    int
}

// Count classifies decisions made in the core scenarios.
func Count(decisions []models.Decision) Tally {
	var t Tally
	for _, d := range decisions {
		if !coreScenarios[d.ScenarioID] {
			continue
		}
		switch d.ChoiceID {
		case ethicalChoice:
			t.Ethical++
		case compromiseChoice:
			t.Compromise++
		case corruptChoice:
			t.Corrupt++
		}
	}
	return t
}

// Determine returns the style matching the player's integrity and decisions. At least two decisions are
// needed before a style emerges.
func Determine(integrity int, decisions []models.Decision) Style {
	if len(decisions) < 2 {
		return Undetermined
	}
	t := Count(decisions)

	switch {
	case integrity >= 75 && t.Ethical > t.Corrupt && t.Ethical > t.Compromise:
		return Idealist
	case integrity >= 60 && reported(decisions):
		return Whistleblower
	case integrity >= 40 && integrity < 75 && t.Compromise >= t.Ethical && t.Compromise >= t.Corrupt:
		return Pragmatist
	case integrity >= 50 && t.Ethical+t.Compromise > t.Corrupt:
		return Reformer
	case integrity < 40 && t.Corrupt > t.Ethical:
		return Opportunist
	}
	return Undetermined
}

func reported(decisions []models.Decision) bool {
	for _, d := range decisions {
		if d.ScenarioID == whistleblowerScenario && d.ChoiceID == ethicalChoice {
			return true
		}
	}
	return false
}

// Rating is the verdict shown at the end of a playthrough.
type Rating struct {
	Title       string
	Description string
}

// FinalRating grades a playthrough by final integrity.
func FinalRating(integrity int) Rating {
	switch {
	case integrity >= 80:
		return Rating{
			Title:       "Beacon of Integrity",
			Description: "You navigated the challenges with remarkable integrity, showing that ethical leadership is possible even in difficult circumstances.",
		}
	case integrity >= 60:
		return Rating{
			Title:       "Mostly Ethical Leader",
			Description: "You tried to maintain your principles while being practical. Your leadership showed a commitment to ethics with a few compromises.",
		}
	case integrity >= 40:
		return Rating{
			Title:       "Pragmatic Opportunist",
			Description: "You balanced ethics and self-interest, making compromises when convenient. Your leadership was marked by pragmatism over principle.",
		}
	}
	return Rating{
		Title:       "Corruption Enabler",
		Description: "You frequently chose personal gain over ethical considerations, contributing to systemic corruption in your environment.",
	}
}

// CorruptionLevel describes how exposed the player is given their integrity.
func CorruptionLevel(integrity int) string {
	switch {
	case integrity >= 80:
		return "Low"
	case integrity >= 50:
		return "Moderate"
	case integrity >= 30:
		return "High"
	}
	return "Severe"
}
