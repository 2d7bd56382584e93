package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
		ok   bool
	}{
		{"debug", slog.LevelDebug, true},
		{"INFO", slog.LevelInfo, true},
		{"", slog.LevelInfo, true},
		{"warning", slog.LevelWarn, true},
		{"error", slog.LevelError, true},
		{"loud", slog.LevelInfo, false},
	}
	for _, tt := range tests {
		got, ok := ParseLevel(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("ParseLevel(%q) = %v, %v, want %v, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestNewJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, "warn", "json")

	logger.Info("hidden")
	logger.Warn("quiz not started", "reason", "no_questions")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)

	var rec map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &rec))
	assert.Equal(t, "quiz not started", rec["msg"])
	assert.Equal(t, "no_questions", rec["reason"])
	assert.Equal(t, "WARN", rec["level"])
}

func TestNewText(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, "debug", "text")
	logger.Debug("skill cast", "skill", "spark")
	assert.Contains(t, buf.String(), "skill cast")
	assert.Contains(t, buf.String(), "spark")
}

func TestNewUnknownLevelWarns(t *testing.T) {
	var buf bytes.Buffer
	New(&buf, "loud", "json")
	assert.Contains(t, buf.String(), "unknown log level")
}
