// Package store persists session state. Every implementation keeps one serialized session per save slot.
package store

import (
	"context"

	"github.com/tatianab/integrity-trail/internal/errors"
	"github.com/tatianab/integrity-trail/internal/models"
)

var ErrNotFound = errors.NewSentinel("no saved session")

// Store is the durable home of a session state.
type Store interface {
	// Save replaces the stored state.
	Save(ctx context.Context, state *models.SessionState) error
	// Load returns the stored state, ErrNotFound when nothing is stored, or a decode error when the stored
	// blob is unreadable.
	Load(ctx context.Context) (*models.SessionState, error)
	// Clear removes the stored state. Clearing an empty store is not an error.
	Clear(ctx context.Context) error
}
