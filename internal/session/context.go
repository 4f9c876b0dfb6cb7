package session

import (
	"context"
	"log/slog"

	"github.com/tatianab/integrity-trail/internal/logging"
	"github.com/tatianab/integrity-trail/internal/models"
)

// withDecision tags every log line written while processing d.
func withDecision(ctx context.Context, d models.Decision) context.Context {
	return logging.WithAttrs(ctx,
		slog.Int("seq", d.Seq),
		slog.Int("scenarioID", d.ScenarioID),
		slog.Int("choiceID", d.ChoiceID))
}
