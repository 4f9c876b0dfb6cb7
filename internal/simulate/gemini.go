package simulate

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/tatianab/integrity-trail/internal/coach"
	"github.com/tatianab/integrity-trail/internal/errors"
	"github.com/tatianab/integrity-trail/internal/models"
	"google.golang.org/api/option"
)

var firstNumber = regexp.MustCompile(`\d+`)

// GeminiPlayer asks a Gemini model to play. Any failure falls back to the first choice so a simulation
// always reaches the end.
type GeminiPlayer struct {
	client  *genai.Client
	model   *genai.GenerativeModel
	logger  *slog.Logger
	history []string
}

func NewGeminiPlayer(ctx context.Context, apiKey, modelName string, logger *slog.Logger) (*GeminiPlayer, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, errors.Wrap(err, "create player client")
	}
	return &GeminiPlayer{
		client: client,
		model:  client.GenerativeModel(modelName),
		logger: logger.With("source", "GeminiPlayer"),
	}, nil
}

func (g *GeminiPlayer) Close() {
	if err := g.client.Close(); err != nil {
		g.logger.LogAttrs(context.Background(), slog.LevelWarn, "close player client", errors.SlogError(err))
	}
}

func (g *GeminiPlayer) Choose(ctx context.Context, scenario models.Scenario, progress models.Progress) (int, error) {
	var choices strings.Builder
	for _, c := range scenario.Choices {
		fmt.Fprintf(&choices, "%d) %s\n", c.ID, c.Text)
	}

	prompt := fmt.Sprintf(`You are playing an educational game about corruption in public office.
You are: %s in %s, %s.

Scenario: %s
%s

Your stats: Integrity=%d, Money=%d, Power=%d, Reputation=%d

Decisions so far:
%s

Choices:
%s
Which choice do you make? Return ONLY the number of the choice, no extra commentary.`,
		scenario.Setting.Position, scenario.Setting.Location, scenario.Setting.Year,
		scenario.Title, scenario.Description,
		progress.Stats.Integrity, progress.Stats.Money, progress.Stats.Power, progress.Stats.Reputation,
		strings.Join(g.history, "\n"),
		choices.String(),
	)

	id := scenario.Choices[0].ID
	text, err := g.generate(ctx, prompt)
	if err == nil {
		if n, ok := parseChoice(text, scenario); ok {
			id = n
		} else {
			g.logger.LogAttrs(ctx, slog.LevelWarn, "player answered with an unknown choice",
				slog.Int("scenarioID", scenario.ID), slog.String("answer", text))
		}
	}

	c, _ := scenario.Choice(id)
	g.history = append(g.history, fmt.Sprintf("%s: %s", scenario.Title, c.Text))
	return id, nil
}

func (g *GeminiPlayer) Reflect(ctx context.Context, scenario models.Scenario, question string) (string, error) {
	prompt := fmt.Sprintf(`You are playing an educational game about corruption in public office.
You just played the scenario "%s".

Reflection question: %s

Answer in two or three sentences, in the first person. Return ONLY the answer.`, scenario.Title, question)

	text, err := g.generate(ctx, prompt)
	if err != nil {
		return "I need more time to think about it.", nil
	}
	return text, nil
}

func (g *GeminiPlayer) generate(ctx context.Context, prompt string) (string, error) {
	resp, err := g.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		g.logger.LogAttrs(ctx, slog.LevelWarn, "player generation failed", errors.SlogError(err))
		return "", err
	}
	text, err := coach.ResponseText(resp)
	if err != nil {
		g.logger.LogAttrs(ctx, slog.LevelWarn, "player returned no text", errors.SlogError(err))
		return "", err
	}
	return text, nil
}

func parseChoice(text string, scenario models.Scenario) (int, bool) {
	n, err := strconv.Atoi(firstNumber.FindString(text))
	if err != nil {
		return 0, false
	}
	_, ok := scenario.Choice(n)
	return n, ok
}
