// Package consequence decides which future content changes because of past decisions.
//
// A Catalog holds static Consequence definitions. The Evaluator checks them against the decision log and
// marks newly satisfied ones as applied, Apply routes their effects into a session state, and Resolve
// merges the accumulated scenario modifications onto a base scenario before it is shown.
package consequence

import (
	"fmt"
	"io"
	"log/slog"
	"slices"

	"github.com/tatianab/integrity-trail/internal/errors"
	"github.com/tatianab/integrity-trail/internal/models"
	"gopkg.in/yaml.v3"
)

var ErrInvalidCatalog = errors.NewSentinel("invalid consequence catalog")

// Predicate decides from the full decision history whether a consequence fires. It must not have side
// effects and should be monotonic: once true for a history it stays true for any longer history.
type Predicate func(decisions []models.Decision) bool

// Consequence is a static definition. Whether it has been applied is session state, not part of the
// definition.
type Consequence struct {
	ID          string
	Title       string
	Description string
	// Trigger is the declarative condition loaded from the catalog file.
	Trigger Condition
	// Predicate overrides Trigger when set.
	Predicate Predicate
	Effects   []models.Effect
}

// HasTrigger reports whether the consequence can ever fire.
func (c Consequence) HasTrigger() bool {
	return c.Predicate != nil || !c.Trigger.IsZero()
}

func (c Consequence) triggered(decisions []models.Decision) bool {
	if c.Predicate != nil {
		return c.Predicate(decisions)
	}
	return c.Trigger.Satisfied(decisions)
}

// Catalog is the read-only, ordered set of consequences. Declaration order is evaluation order.
type Catalog struct {
	consequences []Consequence
	index        map[string]int
	diagnostics  []string
}

// NewCatalog validates the consequences and builds a catalog. Duplicate or empty ids and malformed
// effects or triggers are rejected. Softer problems, such as a consequence without a trigger or two
// appended choices sharing an id, are kept and reported through Diagnostics.
func NewCatalog(consequences ...Consequence) (*Catalog, error) {
	c := &Catalog{
		consequences: make([]Consequence, 0, len(consequences)),
		index:        make(map[string]int, len(consequences)),
	}

	var errs []error
	for _, cons := range consequences {
		if cons.ID == "" {
			errs = append(errs, errors.New("consequence without id", slog.String("title", cons.Title)))
			continue
		}
		if _, dup := c.index[cons.ID]; dup {
			errs = append(errs, errors.New("duplicate consequence id", slog.String("id", cons.ID)))
			continue
		}
		if err := validate(cons); err != nil {
			errs = append(errs, errors.Wrap(err, "consequence "+cons.ID, slog.String("id", cons.ID)))
			continue
		}
		stamped := cons
		stamped.Effects = make([]models.Effect, len(cons.Effects))
		for i, e := range cons.Effects {
			stamped.Effects[i] = models.Stamp(e, cons.ID)
		}
		c.index[cons.ID] = len(c.consequences)
		c.consequences = append(c.consequences, stamped)
	}
	if len(errs) > 0 {
		return nil, errors.Wrap(errors.Join(append([]error{ErrInvalidCatalog}, errs...)...), "build catalog")
	}

	c.diagnostics = diagnose(c.consequences)
	return c, nil
}

func validate(c Consequence) error {
	var errs []error
	if err := c.Trigger.Validate(); err != nil {
		errs = append(errs, errors.Wrap(err, "trigger"))
	}
	for i, e := range c.Effects {
		if err := validateEffect(e); err != nil {
			errs = append(errs, errors.Wrap(err, fmt.Sprintf("effect %d", i)))
		}
	}
	return errors.Join(errs...)
}

func validateEffect(e models.Effect) error {
	switch e := e.(type) {
	case models.ScenarioModification:
		if e.ScenarioID < 1 {
			return errors.New("scenario modification needs a scenario id")
		}
		if e.ModifiedText == nil && len(e.ModifiedChoices) == 0 && e.AdditionalChoice == nil {
			return errors.New("scenario modification changes nothing", slog.Int("scenarioID", e.ScenarioID))
		}
		if e.AdditionalChoice != nil && e.AdditionalChoice.ID < 1 {
			return errors.New("additional choice needs an id", slog.Int("scenarioID", e.ScenarioID))
		}
	case models.NewsEvent:
		if e.Headline == "" {
			return errors.New("news event needs a headline")
		}
	case models.SpecialEvent:
		if !e.Type.Valid() {
			return errors.New("unknown special event type", slog.String("type", string(e.Type)))
		}
	case nil:
		return errors.New("nil effect")
	default:
		return errors.New("unknown effect kind", slog.String("kind", string(e.Kind())))
	}
	return nil
}

// diagnose lists problems that do not stop the game but deserve a log line.
func diagnose(consequences []Consequence) []string {
	var out []string
	type key struct{ scenario, choice int }
	appended := map[key]string{}
	for _, c := range consequences {
		if !c.HasTrigger() {
			out = append(out, fmt.Sprintf("consequence %q has no trigger and will never apply", c.ID))
		}
		if len(c.Effects) == 0 {
			out = append(out, fmt.Sprintf("consequence %q has no effects", c.ID))
		}
		for _, e := range c.Effects {
			m, ok := e.(models.ScenarioModification)
			if !ok || m.AdditionalChoice == nil {
				continue
			}
			k := key{m.ScenarioID, m.AdditionalChoice.ID}
			if owner, taken := appended[k]; taken {
				out = append(out, fmt.Sprintf(
					"consequences %q and %q both append choice %d to scenario %d; only the first applied is kept",
					owner, c.ID, k.choice, k.scenario))
				continue
			}
			appended[k] = c.ID
		}
	}
	return out
}

// All returns the consequences in declaration order.
func (c *Catalog) All() []Consequence {
	return slices.Clone(c.consequences)
}

// Get looks up a consequence by id.
func (c *Catalog) Get(id string) (Consequence, bool) {
	i, ok := c.index[id]
	if !ok {
		return Consequence{}, false
	}
	return c.consequences[i], true
}

// Len returns the number of consequences.
func (c *Catalog) Len() int {
	return len(c.consequences)
}

// Diagnostics returns non-fatal problems found while building the catalog.
func (c *Catalog) Diagnostics() []string {
	return slices.Clone(c.diagnostics)
}

// catalogFile is the on-disk layout of a consequence catalog.
type catalogFile struct {
	Consequences []consequenceDoc `yaml:"consequences"`
}

type consequenceDoc struct {
	ID          string      `yaml:"id"`
	Title       string      `yaml:"title"`
	Description string      `yaml:"description"`
	Trigger     Condition   `yaml:"trigger"`
	Effects     []effectDoc `yaml:"effects"`
}

// effectDoc holds exactly one effect variant.
type effectDoc struct {
	ScenarioModification *models.ScenarioModification `yaml:"scenario_modification"`
	News                 *models.NewsEvent            `yaml:"news"`
	Special              *models.SpecialEvent         `yaml:"special"`
}

func (d effectDoc) effect() (models.Effect, error) {
	var effects []models.Effect
	if d.ScenarioModification != nil {
		effects = append(effects, *d.ScenarioModification)
	}
	if d.News != nil {
		effects = append(effects, *d.News)
	}
	if d.Special != nil {
		effects = append(effects, *d.Special)
	}
	if len(effects) != 1 {
		return nil, errors.New("effect entry must set exactly one of scenario_modification, news or special",
			slog.Int("set", len(effects)))
	}
	return effects[0], nil
}

// LoadCatalog reads a YAML consequence catalog.
func LoadCatalog(r io.Reader) (*Catalog, error) {
	var file catalogFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil {
		return nil, errors.Wrap(errors.Join(ErrInvalidCatalog, err), "decode catalog")
	}

	consequences := make([]Consequence, 0, len(file.Consequences))
	var errs []error
	for _, doc := range file.Consequences {
		cons := Consequence{
			ID:          doc.ID,
			Title:       doc.Title,
			Description: doc.Description,
			Trigger:     doc.Trigger,
		}
		for i, ed := range doc.Effects {
			e, err := ed.effect()
			if err != nil {
				errs = append(errs, errors.Wrap(err, fmt.Sprintf("consequence %s effect %d", doc.ID, i)))
				continue
			}
			cons.Effects = append(cons.Effects, e)
		}
		consequences = append(consequences, cons)
	}
	if len(errs) > 0 {
		return nil, errors.Wrap(errors.Join(append([]error{ErrInvalidCatalog}, errs...)...), "decode effects")
	}
	return NewCatalog(consequences...)
}
