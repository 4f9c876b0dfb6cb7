// Package simulate plays whole games without a terminal, either with a scripted strategy or with an LLM
// standing in for the player.
package simulate

import (
	"context"
	"log/slog"
	"slices"
	"strings"

	"github.com/tatianab/integrity-trail/internal/engine"
	"github.com/tatianab/integrity-trail/internal/errors"
	"github.com/tatianab/integrity-trail/internal/models"
)

var ErrUnknownStrategy = errors.NewSentinel("unknown strategy")

const (
	StrategyEthical    = "ethical"
	StrategyCorrupt    = "corrupt"
	StrategyCompromise = "compromise"
	StrategyRandom     = "random"
	StrategyLLM        = "llm"
)

var Strategies = []string{StrategyEthical, StrategyCorrupt, StrategyCompromise, StrategyRandom, StrategyLLM}

// Player makes the decisions a human would.
type Player interface {
	Choose(ctx context.Context, scenario models.Scenario, progress models.Progress) (int, error)
	Reflect(ctx context.Context, scenario models.Scenario, question string) (string, error)
}

// NewStrategy returns a scripted player. The llm strategy is built with NewGeminiPlayer instead.
func NewStrategy(name string, r engine.Rand) (Player, error) {
	switch name {
	case StrategyEthical:
		return scripted{pick: mostEthical}, nil
	case StrategyCorrupt:
		return scripted{pick: leastEthical}, nil
	case StrategyCompromise:
		return scripted{pick: middleGround}, nil
	case StrategyRandom:
		return scripted{pick: func(s models.Scenario) models.Choice {
			return s.Choices[r.IntN(len(s.Choices))]
		}}, nil
	}
	return nil, errors.Wrap(ErrUnknownStrategy, "new strategy", slog.String("strategy", name),
		slog.String("known", strings.Join(Strategies, ",")))
}

type scripted struct {
	pick func(models.Scenario) models.Choice
}

func (p scripted) Choose(_ context.Context, scenario models.Scenario, _ models.Progress) (int, error) {
	if len(scenario.Choices) == 0 {
		return 0, errors.New("scenario has no choices", slog.Int("scenarioID", scenario.ID))
	}
	return p.pick(scenario).ID, nil
}

func (scripted) Reflect(_ context.Context, scenario models.Scenario, _ string) (string, error) {
	if scenario.Lesson == "" {
		return "I would think about who pays for the decision before making it.", nil
	}
	return "The lesson I take from this: " + scenario.Lesson, nil
}

func integrity(c models.Choice) int {
	return c.Outcomes[models.StatIntegrity]
}

// byIntegrity returns the choices ordered by their integrity effect, keeping authored order for ties.
func byIntegrity(s models.Scenario) []models.Choice {
	choices := slices.Clone(s.Choices)
	slices.SortStableFunc(choices, func(a, b models.Choice) int {
		return integrity(a) - integrity(b)
	})
	return choices
}

func mostEthical(s models.Scenario) models.Choice {
	choices := byIntegrity(s)
	best := integrity(choices[len(choices)-1])
	// first authored choice among the best
	for _, c := range s.Choices {
		if integrity(c) == best {
			return c
		}
	}
	return choices[len(choices)-1]
}

func leastEthical(s models.Scenario) models.Choice {
	return byIntegrity(s)[0]
}

func middleGround(s models.Scenario) models.Choice {
	choices := byIntegrity(s)
	return choices[(len(choices)-1)/2]
}
