// Package coach asks Gemini for feedback on the player's reflection answers.
package coach

import (
	"bytes"
	"context"
	_ "embed"
	"log/slog"
	"strings"
	"text/template"

	"github.com/google/generative-ai-go/genai"
	"github.com/tatianab/integrity-trail/internal/errors"
	"github.com/tatianab/integrity-trail/internal/models"
	"google.golang.org/api/option"
)

//go:embed prompts/reflection_feedback.txt
var reflectionFeedbackPrompt string

var feedbackTemplate = template.Must(template.New("reflection_feedback").
	Funcs(template.FuncMap{"join": strings.Join}).
	Parse(reflectionFeedbackPrompt))

var ErrEmptyResponse = errors.NewSentinel("no content returned from Gemini")

type Gemini struct {
	client *genai.Client
	model  *genai.GenerativeModel
	logger *slog.Logger
}

func NewGemini(ctx context.Context, apiKey, modelName string, logger *slog.Logger) (*Gemini, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, errors.Wrap(err, "create gemini client")
	}

	model := client.GenerativeModel(modelName)
	model.SetTemperature(0.4)
	return &Gemini{
		client: client,
		model:  model,
		logger: logger.With("source", "Coach", "model", modelName),
	}, nil
}

func (g *Gemini) Close() {
	if err := g.client.Close(); err != nil {
		g.logger.LogAttrs(context.Background(), slog.LevelWarn, "close gemini client", errors.SlogError(err))
	}
}

// Feedback returns a few sentences of feedback on the answer to a reflection question about scenario.
func (g *Gemini) Feedback(ctx context.Context, scenario models.Scenario, question, answer string) (string, error) {
	prompt, err := feedbackPrompt(scenario, question, answer)
	if err != nil {
		return "", err
	}

	resp, err := g.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", errors.Wrap(err, "generate feedback", slog.Int("scenarioID", scenario.ID))
	}
	text, err := ResponseText(resp)
	if err != nil {
		return "", errors.Wrap(err, "read feedback", slog.Int("scenarioID", scenario.ID))
	}
	g.logger.LogAttrs(ctx, slog.LevelDebug, "feedback generated", slog.Int("scenarioID", scenario.ID))
	return text, nil
}

func feedbackPrompt(scenario models.Scenario, question, answer string) (string, error) {
	var buf bytes.Buffer
	data := struct {
		Title       string
		Description string
		Lesson      string
		KeyConcepts []string
		Question    string
		Answer      string
	}{
		Title:       scenario.Title,
		Description: scenario.Description,
		Lesson:      scenario.Lesson,
		KeyConcepts: scenario.KeyConcepts,
		Question:    question,
		Answer:      strings.TrimSpace(answer),
	}
	if err := feedbackTemplate.Execute(&buf, data); err != nil {
		return "", errors.Wrap(err, "render feedback prompt")
	}
	return buf.String(), nil
}

// ResponseText returns the text of the first candidate with surrounding whitespace and code fences
// removed.
func ResponseText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil ||
		len(resp.Candidates[0].Content.Parts) == 0 {
		return "", ErrEmptyResponse
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}
	if sb.Len() == 0 {
		return "", errors.New("unexpected response type from Gemini")
	}
	return cleanText(sb.String()), nil
}

func cleanText(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```text")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
