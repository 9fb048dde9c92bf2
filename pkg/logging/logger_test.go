package logging

import (
	"bytes"
	"context"
	"testing"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func captureJSON(t *testing.T, level string) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	Init(Config{Level: level, Format: "json", Output: &buf})
	t.Cleanup(func() { Init(Config{}) })
	return &buf
}

func TestCtx_AttachesTraceID(t *testing.T) {
	buf := captureJSON(t, "info")

	ctx := WithTraceID(context.Background(), "trace-123")
	Ctx(ctx).Info().Str("restaurant_id", "r1").Msg("scored")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "trace-123", entry["trace_id"])
	assert.Equal(t, "r1", entry["restaurant_id"])
	assert.Equal(t, "scored", entry["message"])
}

func TestCtx_WithoutTraceID(t *testing.T) {
	buf := captureJSON(t, "info")

	Ctx(context.Background()).Info().Msg("plain")
	assert.NotContains(t, buf.String(), "trace_id")
	assert.Empty(t, TraceIDFromContext(context.Background()))
}

func TestInit_LevelFilters(t *testing.T) {
	buf := captureJSON(t, "warn")

	Info().Msg("dropped")
	Warn().Msg("kept")

	assert.NotContains(t, buf.String(), "dropped")
	assert.Contains(t, buf.String(), "kept")
}

func TestParseLevel(t *testing.T) {
	tests := map[string]zerolog.Level{
		"debug":    zerolog.DebugLevel,
		"WARNING":  zerolog.WarnLevel,
		"disabled": zerolog.Disabled,
		"":         zerolog.InfoLevel,
		"bogus":    zerolog.InfoLevel,
	}
	for in, want := range tests {
		assert.Equal(t, want, parseLevel(in), in)
	}
}
