package session

import (
	"context"
	"log/slog"

	"github.com/tatianab/integrity-trail/internal/errors"
	"github.com/tatianab/integrity-trail/internal/models"
	"github.com/tatianab/integrity-trail/internal/store"
)

// Gateway wraps a store with the recovery rules of the game: an unreadable save never stops the game.
type Gateway struct {
	store  store.Store
	logger *slog.Logger
}

func NewGateway(s store.Store, logger *slog.Logger) *Gateway {
	return &Gateway{
		store:  s,
		logger: logger.With("source", "Gateway"),
	}
}

func (g *Gateway) Save(ctx context.Context, state *models.SessionState) error {
	if err := g.store.Save(ctx, state); err != nil {
		return errors.Wrap(err, "save session", slog.String("playthrough_id", state.PlaythroughID))
	}
	return nil
}

// Load returns the saved state and true, or a fresh state and false when nothing is saved or the save
// cannot be read.
func (g *Gateway) Load(ctx context.Context) (*models.SessionState, bool) {
	state, err := g.store.Load(ctx)
	if errors.Is(err, store.ErrNotFound) {
		g.logger.LogAttrs(ctx, slog.LevelInfo, "no saved session, starting fresh")
		return models.NewSessionState(), false
	}
	if err != nil {
		g.logger.LogAttrs(ctx, slog.LevelError, "discarding unreadable save, starting fresh", errors.SlogError(err))
		return models.NewSessionState(), false
	}
	g.logger.LogAttrs(ctx, slog.LevelInfo, "resumed session",
		slog.String("playthrough_id", state.PlaythroughID),
		slog.Int("decisions", len(state.Decisions)))
	return state, true
}

// Reset clears the store and returns a fresh state. The fresh state is valid even when clearing fails.
func (g *Gateway) Reset(ctx context.Context) (*models.SessionState, error) {
	state := models.NewSessionState()
	if err := g.store.Clear(ctx); err != nil {
		return state, errors.Wrap(err, "clear saved session")
	}
	return state, nil
}
