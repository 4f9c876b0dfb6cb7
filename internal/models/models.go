package models

import "time"

// Stat names one of the four tracked player attributes.
type Stat string

const (
	StatIntegrity  Stat = "integrity"
	StatMoney      Stat = "money"
	StatPower      Stat = "power"
	StatReputation Stat = "reputation"
)

// AllStats lists the stats in display order.
var AllStats = []Stat{StatIntegrity, StatMoney, StatPower, StatReputation}

const (
	statMin = 0
	statMax = 100
)

// Stats is a snapshot of the four player attributes.
type Stats struct {
	Integrity  int `yaml:"integrity"`
	Money      int `yaml:"money"`
	Power      int `yaml:"power"`
	Reputation int `yaml:"reputation"`
}

// Get returns the value of a single stat. Unknown stats read as zero.
func (s Stats) Get(stat Stat) int {
	switch stat {
	case StatIntegrity:
		return s.Integrity
	case StatMoney:
		return s.Money
	case StatPower:
		return s.Power
	case StatReputation:
		return s.Reputation
	}
	return 0
}

// Apply adds the deltas in e and clamps every stat to 0..100.
func (s Stats) Apply(e Effects) Stats {
	return Stats{
		Integrity:  clamp(s.Integrity + e[StatIntegrity]),
		Money:      clamp(s.Money + e[StatMoney]),
		Power:      clamp(s.Power + e[StatPower]),
		Reputation: clamp(s.Reputation + e[StatReputation]),
	}
}

func clamp(v int) int {
	return max(statMin, min(statMax, v))
}

// Effects maps stats to deltas. Stats missing from the map are unchanged.
type Effects map[Stat]int

// Clone returns an independent copy. Cloning nil yields nil.
func (e Effects) Clone() Effects {
	if e == nil {
		return nil
	}
	out := make(Effects, len(e))
	for k, v := range e {
		out[k] = v
	}
	return out
}

// Merge returns a copy of e with every delta present in overrides replacing the old one.
func (e Effects) Merge(overrides Effects) Effects {
	if len(overrides) == 0 {
		return e.Clone()
	}
	out := make(Effects, len(e)+len(overrides))
	for k, v := range e {
		out[k] = v
	}
	for k, v := range overrides {
		out[k] = v
	}
	return out
}

// Setting describes where and as whom the player acts in a scenario.
type Setting struct {
	Position string `yaml:"position"`
	Year     string `yaml:"year"`
	Location string `yaml:"location"`
	Context  string `yaml:"context"`
}

// Choice is one response the player can pick in a scenario.
type Choice struct {
	ID          int     `yaml:"id"`
	Text        string  `yaml:"text"`
	Reasoning   string  `yaml:"reasoning,omitempty"`
	OutcomeText string  `yaml:"outcome_text"`
	Outcomes    Effects `yaml:"outcomes,omitempty"`
}

// Clone returns a copy that shares no maps with c.
func (c Choice) Clone() Choice {
	c.Outcomes = c.Outcomes.Clone()
	return c
}

// Scenario is a single dilemma from the static catalog.
type Scenario struct {
	ID               int      `yaml:"id"`
	Title            string   `yaml:"title"`
	Description      string   `yaml:"description"`
	Setting          Setting  `yaml:"setting"`
	Context          string   `yaml:"context"`
	Lesson           string   `yaml:"lesson"`
	RealWorldExample string   `yaml:"real_world_example"`
	Hint             string   `yaml:"hint"`
	KeyConcepts      []string `yaml:"key_concepts"`
	GlobalImpact     string   `yaml:"global_impact"`
	Stakeholders     []string `yaml:"stakeholders"`
	Choices          []Choice `yaml:"choices"`
}

// Choice looks up a choice by id.
func (s Scenario) Choice(id int) (Choice, bool) {
	for _, c := range s.Choices {
		if c.ID == id {
			return c, true
		}
	}
	return Choice{}, false
}

// Clone returns a deep copy so that callers may edit choices without touching the catalog record.
func (s Scenario) Clone() Scenario {
	out := s
	out.KeyConcepts = append([]string(nil), s.KeyConcepts...)
	out.Stakeholders = append([]string(nil), s.Stakeholders...)
	out.Choices = make([]Choice, len(s.Choices))
	for i, c := range s.Choices {
		out.Choices[i] = c.Clone()
	}
	return out
}

// Decision records one player choice together with the stats right after its base outcome.
type Decision struct {
	Seq        int       `yaml:"seq"`
	ScenarioID int       `yaml:"scenario_id"`
	ChoiceID   int       `yaml:"choice_id"`
	Timestamp  time.Time `yaml:"timestamp"`
	Stats      Stats     `yaml:"stats"`
}

// NewsItem is a real-world headline from the news library, unrelated to consequence news.
type NewsItem struct {
	ID                int    `yaml:"id"`
	Title             string `yaml:"title"`
	Source            string `yaml:"source"`
	Date              string `yaml:"date"`
	Summary           string `yaml:"summary"`
	RelatedScenarioID int    `yaml:"related_scenario_id"`
}
