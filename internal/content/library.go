// Package content loads the static game content: scenarios, the consequence catalog, related news and
// reflection questions. Everything is read once and never modified afterwards.
package content

import (
	"embed"
	"fmt"
	"io/fs"
	"log/slog"
	"slices"

	"github.com/tatianab/integrity-trail/internal/consequence"
	"github.com/tatianab/integrity-trail/internal/errors"
	"github.com/tatianab/integrity-trail/internal/models"
	"gopkg.in/yaml.v3"
)

//go:embed data/*.yaml
var embedded embed.FS

var ErrInvalidContent = errors.NewSentinel("invalid content")

const (
	scenariosFile    = "scenarios.yaml"
	consequencesFile = "consequences.yaml"
	newsFile         = "news.yaml"
	reflectionsFile  = "reflections.yaml"
)

// Library is the read-only game content.
type Library struct {
	scenarios   []models.Scenario
	byID        map[int]int
	news        []models.NewsItem
	questions   map[int][]string
	catalog     *consequence.Catalog
	diagnostics []string
}

// Load reads the content built into the binary.
func Load() (*Library, error) {
	sub, err := fs.Sub(embedded, "data")
	if err != nil {
		return nil, errors.Wrap(err, "open embedded content")
	}
	return LoadFS(sub)
}

// LoadFS reads content from the YAML files at the root of fsys.
func LoadFS(fsys fs.FS) (*Library, error) {
	var scenarioDoc struct {
		Scenarios []models.Scenario `yaml:"scenarios"`
	}
	if err := decodeFile(fsys, scenariosFile, &scenarioDoc); err != nil {
		return nil, err
	}
	var newsDoc struct {
		News []models.NewsItem `yaml:"news"`
	}
	if err := decodeFile(fsys, newsFile, &newsDoc); err != nil {
		return nil, err
	}
	var reflectionDoc struct {
		Reflections []struct {
			ScenarioID int      `yaml:"scenario_id"`
			Questions  []string `yaml:"questions"`
		} `yaml:"reflections"`
	}
	if err := decodeFile(fsys, reflectionsFile, &reflectionDoc); err != nil {
		return nil, err
	}

	f, err := fsys.Open(consequencesFile)
	if err != nil {
		return nil, errors.Wrap(err, "open content file", slog.String("file", consequencesFile))
	}
	defer f.Close()
	catalog, err := consequence.LoadCatalog(f)
	if err != nil {
		return nil, errors.Wrap(err, "load consequence catalog")
	}

	lib := &Library{
		scenarios: scenarioDoc.Scenarios,
		byID:      make(map[int]int, len(scenarioDoc.Scenarios)),
		news:      newsDoc.News,
		questions: make(map[int][]string, len(reflectionDoc.Reflections)),
		catalog:   catalog,
	}
	for i, s := range lib.scenarios {
		lib.byID[s.ID] = i
	}
	for _, r := range reflectionDoc.Reflections {
		lib.questions[r.ScenarioID] = append(lib.questions[r.ScenarioID], r.Questions...)
	}

	if err = lib.validate(); err != nil {
		return nil, err
	}
	lib.diagnostics = append(catalog.Diagnostics(), lib.diagnose()...)
	return lib, nil
}

func decodeFile(fsys fs.FS, name string, out any) error {
	f, err := fsys.Open(name)
	if err != nil {
		return errors.Wrap(err, "open content file", slog.String("file", name))
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err = dec.Decode(out); err != nil {
		return errors.Wrap(errors.Join(ErrInvalidContent, err), "decode content file", slog.String("file", name))
	}
	return nil
}

// validate rejects content the game cannot be played with. Scenarios are played in order, so their ids
// must run 1..n.
func (l *Library) validate() error {
	var errs []error
	if len(l.scenarios) == 0 {
		errs = append(errs, errors.New("no scenarios"))
	}
	for i, s := range l.scenarios {
		if s.ID != i+1 {
			errs = append(errs, errors.New("scenario ids must run from 1 without gaps",
				slog.Int("position", i+1), slog.Int("scenarioID", s.ID)))
		}
		if len(s.Choices) == 0 {
			errs = append(errs, errors.New("scenario has no choices", slog.Int("scenarioID", s.ID)))
		}
		seen := map[int]bool{}
		for _, c := range s.Choices {
			if seen[c.ID] {
				errs = append(errs, errors.New("duplicate choice id",
					slog.Int("scenarioID", s.ID), slog.Int("choiceID", c.ID)))
			}
			seen[c.ID] = true
		}
	}
	for _, n := range l.news {
		if _, ok := l.byID[n.RelatedScenarioID]; !ok {
			errs = append(errs, errors.New("news item relates to unknown scenario",
				slog.Int("newsID", n.ID), slog.Int("scenarioID", n.RelatedScenarioID)))
		}
	}
	if len(errs) > 0 {
		return errors.Wrap(errors.Join(append([]error{ErrInvalidContent}, errs...)...), "validate content")
	}
	return nil
}

// diagnose reports modifications that will never be visible and appended choices that shadow a base
// choice.
func (l *Library) diagnose() []string {
	var out []string
	for _, c := range l.catalog.All() {
		for _, e := range c.Effects {
			m, ok := e.(models.ScenarioModification)
			if !ok {
				continue
			}
			base, ok := l.Scenario(m.ScenarioID)
			if !ok {
				out = append(out, fmt.Sprintf("consequence %q modifies unknown scenario %d", c.ID, m.ScenarioID))
				continue
			}
			if m.AdditionalChoice != nil {
				if _, taken := base.Choice(m.AdditionalChoice.ID); taken {
					out = append(out, fmt.Sprintf("consequence %q appends choice %d which scenario %d already has",
						c.ID, m.AdditionalChoice.ID, m.ScenarioID))
				}
			}
			for _, edit := range m.ModifiedChoices {
				if _, exists := base.Choice(edit.ChoiceID); !exists {
					out = append(out, fmt.Sprintf("consequence %q edits missing choice %d of scenario %d",
						c.ID, edit.ChoiceID, m.ScenarioID))
				}
			}
		}
	}
	return out
}

// Scenario returns a copy of the base scenario with the given id.
func (l *Library) Scenario(id int) (models.Scenario, bool) {
	i, ok := l.byID[id]
	if !ok {
		return models.Scenario{}, false
	}
	return l.scenarios[i].Clone(), true
}

// Scenarios returns copies of all base scenarios in play order.
func (l *Library) Scenarios() []models.Scenario {
	out := make([]models.Scenario, len(l.scenarios))
	for i, s := range l.scenarios {
		out[i] = s.Clone()
	}
	return out
}

// News returns the real-world headlines related to a scenario.
func (l *Library) News(scenarioID int) []models.NewsItem {
	var out []models.NewsItem
	for _, n := range l.news {
		if n.RelatedScenarioID == scenarioID {
			out = append(out, n)
		}
	}
	return out
}

// Questions returns the reflection questions for a scenario.
func (l *Library) Questions(scenarioID int) []string {
	return slices.Clone(l.questions[scenarioID])
}

func (l *Library) Catalog() *consequence.Catalog {
	return l.catalog
}

// Diagnostics returns non-fatal content problems.
func (l *Library) Diagnostics() []string {
	return slices.Clone(l.diagnostics)
}
