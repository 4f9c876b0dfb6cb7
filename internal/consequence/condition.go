package consequence

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/tatianab/integrity-trail/internal/errors"
	"github.com/tatianab/integrity-trail/internal/models"
	"github.com/tatianab/integrity-trail/internal/profile"
)

// ChoiceRef points at one choice of one scenario.
type ChoiceRef struct {
	Scenario int `yaml:"scenario"`
	Choice   int `yaml:"choice"`
}

func (r ChoiceRef) matches(d models.Decision) bool {
	return d.ScenarioID == r.Scenario && d.ChoiceID == r.Choice
}

// ChoiceCount holds when at least AtLeast decisions match any of Choices.
type ChoiceCount struct {
	Choices []ChoiceRef `yaml:"choices"`
	AtLeast int         `yaml:"at_least"`
}

// StatRange bounds a stat of the most recent decision snapshot. Nil bounds are open.
type StatRange struct {
	Name models.Stat `yaml:"name"`
	Min  *int        `yaml:"min,omitempty"`
	Max  *int        `yaml:"max,omitempty"`
}

// StyleMatch holds when the player's current style is Is and integrity is at least MinIntegrity.
type StyleMatch struct {
	Is           profile.Style `yaml:"is"`
	MinIntegrity int           `yaml:"min_integrity"`
}

// Condition is a declarative trigger over the decision log. Every field that is set must hold; a
// condition with no field set never holds.
//
// Chose, ChoseAny, Reached, MinDecisions and Count are monotonic: once true they stay true as decisions
// are appended. Stat and Style look at the latest snapshot and can flip back, so authors should only use
// them where firing on the first match is intended.
type Condition struct {
	Chose        *ChoiceRef   `yaml:"chose,omitempty"`
	ChoseAny     []ChoiceRef  `yaml:"chose_any,omitempty"`
	Reached      *int         `yaml:"reached,omitempty"`
	MinDecisions *int         `yaml:"min_decisions,omitempty"`
	Count        *ChoiceCount `yaml:"count,omitempty"`
	Stat         *StatRange   `yaml:"stat,omitempty"`
	Style        *StyleMatch  `yaml:"style,omitempty"`
	All          []Condition  `yaml:"all,omitempty"`
	Any          []Condition  `yaml:"any,omitempty"`
}

// IsZero reports whether no field is set.
func (c Condition) IsZero() bool {
	return c.Chose == nil &&
		len(c.ChoseAny) == 0 &&
		c.Reached == nil &&
		c.MinDecisions == nil &&
		c.Count == nil &&
		c.Stat == nil &&
		c.Style == nil &&
		len(c.All) == 0 &&
		len(c.Any) == 0
}

// Satisfied evaluates the condition against the full decision history.
func (c Condition) Satisfied(decisions []models.Decision) bool {
	if c.IsZero() {
		return false
	}

	if c.Chose != nil && !slices.ContainsFunc(decisions, c.Chose.matches) {
		return false
	}

	if len(c.ChoseAny) > 0 && !slices.ContainsFunc(decisions, func(d models.Decision) bool {
		return slices.ContainsFunc(c.ChoseAny, func(r ChoiceRef) bool { return r.matches(d) })
	}) {
		return false
	}

	if c.Reached != nil && !slices.ContainsFunc(decisions, func(d models.Decision) bool {
		return d.ScenarioID == *c.Reached
	}) {
		return false
	}

	if c.MinDecisions != nil && len(decisions) < *c.MinDecisions {
		return false
	}

	if c.Count != nil {
		n := 0
		for _, d := range decisions {
			if slices.ContainsFunc(c.Count.Choices, func(r ChoiceRef) bool { return r.matches(d) }) {
				n++
			}
		}
		if n < c.Count.AtLeast {
			return false
		}
	}

	if c.Stat != nil || c.Style != nil {
		if len(decisions) == 0 {
			return false
		}
		latest := decisions[len(decisions)-1].Stats
		if c.Stat != nil {
			v := latest.Get(c.Stat.Name)
			if c.Stat.Min != nil && v < *c.Stat.Min {
				return false
			}
			if c.Stat.Max != nil && v > *c.Stat.Max {
				return false
			}
		}
		if c.Style != nil {
			if latest.Integrity < c.Style.MinIntegrity {
				return false
			}
			if profile.Determine(latest.Integrity, decisions) != c.Style.Is {
				return false
			}
		}
	}

	for _, sub := range c.All {
		if !sub.Satisfied(decisions) {
			return false
		}
	}

	if len(c.Any) > 0 && !slices.ContainsFunc(c.Any, func(sub Condition) bool {
		return sub.Satisfied(decisions)
	}) {
		return false
	}

	return true
}

// Validate reports malformed fields. An empty condition is valid at the top level, where the evaluator
// treats it as never satisfied, but not nested in all or any.
func (c Condition) Validate() error {
	var errs []error
	if c.Count != nil {
		if c.Count.AtLeast < 1 {
			errs = append(errs, errors.New("count needs at_least >= 1", slog.Int("atLeast", c.Count.AtLeast)))
		}
		if len(c.Count.Choices) == 0 {
			errs = append(errs, errors.New("count needs at least one choice"))
		}
	}
	if c.Stat != nil {
		if !slices.Contains(models.AllStats, c.Stat.Name) {
			errs = append(errs, errors.New("unknown stat", slog.String("stat", string(c.Stat.Name))))
		}
		if c.Stat.Min == nil && c.Stat.Max == nil {
			errs = append(errs, errors.New("stat condition needs min or max", slog.String("stat", string(c.Stat.Name))))
		}
	}
	if c.Style != nil && !c.Style.Is.Valid() {
		errs = append(errs, errors.New("unknown style", slog.String("style", string(c.Style.Is))))
	}
	for i, sub := range c.All {
		if sub.IsZero() {
			errs = append(errs, errors.New("empty condition", slog.Int("all", i)))
			continue
		}
		if err := sub.Validate(); err != nil {
			errs = append(errs, errors.Wrap(err, fmt.Sprintf("all[%d]", i)))
		}
	}
	for i, sub := range c.Any {
		if sub.IsZero() {
			errs = append(errs, errors.New("empty condition", slog.Int("any", i)))
			continue
		}
		if err := sub.Validate(); err != nil {
			errs = append(errs, errors.Wrap(err, fmt.Sprintf("any[%d]", i)))
		}
	}
	return errors.Join(errs...)
}
