package models

// EffectKind discriminates the variants of [Effect].
type EffectKind string

const (
	EffectScenarioModification EffectKind = "scenario_modification"
	EffectNews                 EffectKind = "news"
	EffectSpecial              EffectKind = "special"
)

// Effect is produced by a consequence once its trigger holds. The set of variants is closed:
// ScenarioModification, NewsEvent and SpecialEvent.
type Effect interface {
	Kind() EffectKind
	// withConsequence stamps the originating consequence id on a copy of the effect.
	withConsequence(id string) Effect
}

// Stamp returns a copy of e attributed to the consequence with the given id.
func Stamp(e Effect, consequenceID string) Effect {
	return e.withConsequence(consequenceID)
}

// ChoiceEdit overwrites fields of an existing choice. Nil fields keep the previous value and
// NewEffects only replaces the stats it names.
type ChoiceEdit struct {
	ChoiceID   int     `yaml:"choice_id"`
	NewText    *string `yaml:"new_text,omitempty"`
	NewOutcome *string `yaml:"new_outcome,omitempty"`
	NewEffects Effects `yaml:"new_effects,omitempty"`
}

// ScenarioModification rewrites parts of one scenario.
type ScenarioModification struct {
	ConsequenceID    string       `yaml:"consequence_id"`
	ScenarioID       int          `yaml:"scenario_id"`
	ModifiedText     *string      `yaml:"modified_text,omitempty"`
	ModifiedChoices  []ChoiceEdit `yaml:"modified_choices,omitempty"`
	AdditionalChoice *Choice      `yaml:"additional_choice,omitempty"`
}

func (ScenarioModification) Kind() EffectKind { return EffectScenarioModification }

func (m ScenarioModification) withConsequence(id string) Effect {
	m.ConsequenceID = id
	return m
}

// NewsEvent is a headline shown once between scenarios. Impact is applied to the player stats
// when the headline is displayed.
type NewsEvent struct {
	ConsequenceID string  `yaml:"consequence_id"`
	Headline      string  `yaml:"headline"`
	Source        string  `yaml:"source"`
	Content       string  `yaml:"content"`
	Image         string  `yaml:"image,omitempty"`
	Impact        Effects `yaml:"impact,omitempty"`
}

func (NewsEvent) Kind() EffectKind { return EffectNews }

func (n NewsEvent) withConsequence(id string) Effect {
	n.ConsequenceID = id
	return n
}

// SpecialEventType categorises special events.
type SpecialEventType string

const (
	SpecialInvestigation SpecialEventType = "investigation"
	SpecialConfrontation SpecialEventType = "confrontation"
	SpecialOpportunity   SpecialEventType = "opportunity"
	SpecialScandal       SpecialEventType = "scandal"
)

// Valid reports whether t is one of the known special event types.
func (t SpecialEventType) Valid() bool {
	switch t {
	case SpecialInvestigation, SpecialConfrontation, SpecialOpportunity, SpecialScandal:
		return true
	}
	return false
}

// SpecialEvent is a one-time modal event.
type SpecialEvent struct {
	ConsequenceID string           `yaml:"consequence_id"`
	Type          SpecialEventType `yaml:"type"`
	Title         string           `yaml:"title"`
	Description   string           `yaml:"description"`
}

func (SpecialEvent) Kind() EffectKind { return EffectSpecial }

func (s SpecialEvent) withConsequence(id string) Effect {
	s.ConsequenceID = id
	return s
}
