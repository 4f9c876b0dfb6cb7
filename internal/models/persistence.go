package models

import (
	"log/slog"

	"github.com/tatianab/integrity-trail/internal/errors"
	"gopkg.in/yaml.v3"
)

var (
	ErrUnsupportedSchema = errors.NewSentinel("unsupported schema version")
	ErrEmptyState        = errors.NewSentinel("empty session state")
)

// EncodeState serializes the session state to the YAML blob that stores persist.
func EncodeState(s *SessionState) ([]byte, error) {
	data, err := yaml.Marshal(s)
	if err != nil {
		return nil, errors.Wrap(err, "marshal session state")
	}
	return data, nil
}

// DecodeState parses a blob written by EncodeState. Blobs without a schema version or with a version
// newer than SchemaVersion are rejected.
func DecodeState(data []byte) (*SessionState, error) {
	if len(data) == 0 {
		return nil, ErrEmptyState
	}
	var state SessionState
	if err := yaml.Unmarshal(data, &state); err != nil {
		return nil, errors.Wrap(err, "unmarshal session state")
	}
	if state.SchemaVersion < 1 || state.SchemaVersion > SchemaVersion {
		return nil, errors.Wrap(ErrUnsupportedSchema, "check schema version",
			slog.Int("schemaVersion", state.SchemaVersion),
			slog.Int("supported", SchemaVersion))
	}
	state.normalize()
	return &state, nil
}
