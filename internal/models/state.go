package models

import "github.com/google/uuid"

// SchemaVersion is written into every saved session. Bump it when the layout changes incompatibly.
const SchemaVersion = 1

// Phase is the step of the game loop the player is in.
type Phase string

const (
	PhaseScenario Phase = "scenario"
	PhaseSummary  Phase = "summary"
	PhaseActivity Phase = "activity"
	PhaseComplete Phase = "complete"
)

// Activity is a special activity interleaved between scenarios.
type Activity string

const (
	ActivityReflection      Activity = "reflection"
	ActivityInvestigation   Activity = "investigation"
	ActivityEcosystem       Activity = "ecosystem"
	ActivityBranching       Activity = "branching-narrative"
	ActivityVulnerabilities Activity = "vulnerability-assessment"
)

// AllActivities lists every activity in a stable order.
var AllActivities = []Activity{
	ActivityReflection,
	ActivityInvestigation,
	ActivityEcosystem,
	ActivityBranching,
	ActivityVulnerabilities,
}

// Reflection is the player's written answer to a reflection question.
type Reflection struct {
	ScenarioID int    `yaml:"scenario_id"`
	Question   string `yaml:"question"`
	Answer     string `yaml:"answer"`
	Feedback   string `yaml:"feedback,omitempty"`
}

// InitialStats are the stats a fresh playthrough starts with.
var InitialStats = Stats{Integrity: 100, Money: 50, Power: 30, Reputation: 70}

// Progress is the game-loop state that lives next to the consequence state so that a resumed session
// continues where it stopped.
type Progress struct {
	Stats         Stats          `yaml:"stats"`
	ScenarioIndex int            `yaml:"scenario_index"`
	Phase         Phase          `yaml:"phase"`
	Activity      Activity       `yaml:"activity,omitempty"`
	Question      string         `yaml:"question,omitempty"`
	Style         string         `yaml:"style"`
	LastChoiceID  int            `yaml:"last_choice_id,omitempty"`
	Activities    []Activity     `yaml:"activities"`
	Reflections   []Reflection   `yaml:"reflections"`
	Headlines     []NewsEvent    `yaml:"headlines"`
	Specials      []SpecialEvent `yaml:"specials"`
}

// NewProgress returns the progress of a game that has not started yet.
func NewProgress() Progress {
	return Progress{
		Stats:       InitialStats,
		Phase:       PhaseScenario,
		Style:       "Undetermined",
		Activities:  []Activity{},
		Reflections: []Reflection{},
		Headlines:   []NewsEvent{},
		Specials:    []SpecialEvent{},
	}
}

// SessionState aggregates everything that must survive a restart: the decision log, which consequences
// have been applied, the accumulated scenario modifications, undisplayed events and the game progress.
type SessionState struct {
	SchemaVersion         int                            `yaml:"schema_version"`
	PlaythroughID         string                         `yaml:"playthrough_id"`
	Decisions             DecisionLog                    `yaml:"decisions"`
	ConsequenceApplied    map[string]bool                `yaml:"consequence_applied"`
	ScenarioModifications map[int][]ScenarioModification `yaml:"scenario_modifications"`
	PendingNews           []NewsEvent                    `yaml:"pending_news"`
	PendingSpecial        []SpecialEvent                 `yaml:"pending_special"`
	Progress              Progress                       `yaml:"progress"`
}

// NewSessionState creates the state of a new playthrough: empty log, nothing applied, empty queues.
func NewSessionState() *SessionState {
	return &SessionState{
		SchemaVersion:         SchemaVersion,
		PlaythroughID:         uuid.NewString(),
		Decisions:             DecisionLog{},
		ConsequenceApplied:    map[string]bool{},
		ScenarioModifications: map[int][]ScenarioModification{},
		PendingNews:           []NewsEvent{},
		PendingSpecial:        []SpecialEvent{},
		Progress:              NewProgress(),
	}
}

// normalize replaces nil collections left by decoding so that callers never need nil checks.
func (s *SessionState) normalize() {
	if s.Decisions == nil {
		s.Decisions = DecisionLog{}
	}
	if s.ConsequenceApplied == nil {
		s.ConsequenceApplied = map[string]bool{}
	}
	if s.ScenarioModifications == nil {
		s.ScenarioModifications = map[int][]ScenarioModification{}
	}
	if s.PendingNews == nil {
		s.PendingNews = []NewsEvent{}
	}
	if s.PendingSpecial == nil {
		s.PendingSpecial = []SpecialEvent{}
	}
	p := &s.Progress
	if p.Phase == "" {
		p.Phase = PhaseScenario
	}
	if p.Activities == nil {
		p.Activities = []Activity{}
	}
	if p.Reflections == nil {
		p.Reflections = []Reflection{}
	}
	if p.Headlines == nil {
		p.Headlines = []NewsEvent{}
	}
	if p.Specials == nil {
		p.Specials = []SpecialEvent{}
	}
}

// Clone returns a copy that shares no slices or maps with p.
func (p Progress) Clone() Progress {
	out := p
	out.Activities = append([]Activity{}, p.Activities...)
	out.Reflections = append([]Reflection{}, p.Reflections...)
	out.Headlines = make([]NewsEvent, len(p.Headlines))
	for i, h := range p.Headlines {
		h.Impact = h.Impact.Clone()
		out.Headlines[i] = h
	}
	out.Specials = append([]SpecialEvent{}, p.Specials...)
	return out
}
