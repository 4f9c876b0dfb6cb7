package consequence

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/tatianab/integrity-trail/internal/errors"
	"github.com/tatianab/integrity-trail/internal/models"
)

// Evaluator finds consequences whose triggers have become true.
type Evaluator struct {
	catalog *Catalog
	logger  *slog.Logger
}

func NewEvaluator(catalog *Catalog, logger *slog.Logger) *Evaluator {
	return &Evaluator{
		catalog: catalog,
		logger:  logger.With("source", "Evaluator"),
	}
}

// Evaluate visits the catalog in declaration order, skips consequences already marked in applied, and
// marks and returns those whose trigger holds for decisions. Running it again on the same log returns
// nothing. A trigger that panics counts as not satisfied.
func (e *Evaluator) Evaluate(ctx context.Context, decisions []models.Decision, applied map[string]bool) []Consequence {
	var newlyApplied []Consequence
	for _, c := range e.catalog.consequences {
		if applied[c.ID] {
			continue
		}
		if !c.HasTrigger() {
			continue
		}
		if !e.triggered(ctx, c, decisions) {
			continue
		}
		applied[c.ID] = true
		newlyApplied = append(newlyApplied, c)
		e.logger.LogAttrs(ctx, slog.LevelInfo, "consequence applied",
			slog.String("consequence", c.ID),
			slog.Int("decisions", len(decisions)))
	}
	return newlyApplied
}

func (e *Evaluator) triggered(ctx context.Context, c Consequence, decisions []models.Decision) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			err := errors.New(fmt.Sprintf("trigger panicked: %v", r), slog.String("consequence", c.ID))
			e.logger.LogAttrs(ctx, slog.LevelError, "treating consequence as not satisfied", errors.SlogError(err))
			ok = false
		}
	}()
	// Triggers get their own copy so a misbehaving predicate cannot rewrite history.
	history := make([]models.Decision, len(decisions))
	copy(history, decisions)
	return c.triggered(history)
}
