package logging_test

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tatianab/integrity-trail/internal/logging"
)

func TestContextHandler(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(logging.NewContextHandler(slog.NewTextHandler(&buf, nil)))

	ctx := logging.WithAttrs(context.Background(), slog.String("playthrough", "p-1"))
	ctx = logging.WithAttrs(ctx, slog.Int("scenario", 3))
	logger.InfoContext(ctx, "recorded decision")

	out := buf.String()
	require.Contains(t, out, "playthrough=p-1")
	require.Contains(t, out, "scenario=3")
	require.Contains(t, out, `msg="recorded decision"`)
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		name string
		want slog.Level
	}{
		{name: "debug", want: slog.LevelDebug},
		{name: "WARN", want: slog.LevelWarn},
		{name: "error", want: slog.LevelError},
		{name: "chatty", want: slog.LevelInfo},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, logging.ParseLevel(tt.name))
		})
	}
}
