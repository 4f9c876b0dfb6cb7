package testhelpers

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tatianab/integrity-trail/internal/logging"
)

func TestLevel(t *testing.T) {
	t.Setenv(LevelEnv, "")
	require.Equal(t, slog.LevelDebug, Level())

	t.Setenv(LevelEnv, "warn")
	require.Equal(t, slog.LevelWarn, Level())

	t.Setenv(LevelEnv, "loud")
	require.Equal(t, slog.LevelInfo, Level())
}

func TestNewLoggerCarriesContextAttrs(t *testing.T) {
	t.Setenv(LevelEnv, "info")
	var buf bytes.Buffer
	logger := NewLogger(&buf)

	ctx := logging.WithAttrs(context.Background(), slog.Int("scenario_id", 3))
	logger.DebugContext(ctx, "hidden")
	logger.InfoContext(ctx, "decision recorded")

	require.NotContains(t, buf.String(), "hidden")
	require.Contains(t, buf.String(), "decision recorded")
	require.Contains(t, buf.String(), "scenario_id=3")
}
