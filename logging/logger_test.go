package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  slog.Level
	}{
		{"info", "info", slog.LevelInfo},
		{"debug", "debug", slog.LevelDebug},
		{"trace", "trace", LevelTrace},
		{"warn", "warn", slog.LevelWarn},
		{"error", "error", slog.LevelError},
		{"uppercase TRACE", "TRACE", LevelTrace},
		{"mixed case Debug", "Debug", slog.LevelDebug},
		{"unknown defaults to info", "unknown", slog.LevelInfo},
		{"empty defaults to info", "", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, ParseLevel(tt.input))
		})
	}
}

func TestNewLogger_LevelFiltering(t *testing.T) {
	tests := []struct {
		level     string
		wantDebug bool
		wantTrace bool
	}{
		{"info", false, false},
		{"debug", true, false},
		{"trace", true, true},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			var buf bytes.Buffer
			logger := NewLogger(tt.level, &buf)

			logger.Debug("debug message")
			logger.Log(context.Background(), LevelTrace, "trace message")
			logger.Info("info message")

			out := buf.String()
			require.Contains(t, out, "info message")
			require.Equal(t, tt.wantDebug, strings.Contains(out, "debug message"))
			require.Equal(t, tt.wantTrace, strings.Contains(out, "trace message"))
		})
	}
}

func TestNewLogger_TraceLabel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger("trace", &buf)
	logger.Log(context.Background(), LevelTrace, "event")

	require.Contains(t, buf.String(), "level=TRACE")
}

func TestNew_JSONFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := New("info", "json", &buf)
	logger.Info("trial finished", slog.Int("trial", 3))

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	require.Equal(t, "trial finished", rec["msg"])
	require.EqualValues(t, 3, rec["trial"])
}

func TestDiscard(t *testing.T) {
	logger := Discard()
	require.False(t, logger.Enabled(context.Background(), slog.LevelError))
}
