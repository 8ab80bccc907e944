package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
)

func decodeEntry(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry), "failed to parse JSON: %s", buf.String())
	return entry
}

func TestNew_JSONFormat(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	logger, err := New(Options{Program: "sessionctl", Version: "1.0.0", Format: FormatJSON, Output: &buf})
	require.NoError(t, err)

	logger.Info("test message", "email", "a@b.com")

	entry := decodeEntry(t, &buf)
	assert.Equal(t, "test message", entry["msg"])
	assert.Equal(t, "sessionctl", entry["program"])
	assert.Equal(t, "1.0.0", entry["version"])
	assert.Equal(t, "a@b.com", entry["email"])
}

func TestNew_TextFormat(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	logger, err := New(Options{Program: "identity-testserver", Format: FormatText, Output: &buf})
	require.NoError(t, err)

	logger.Info("test message")

	assert.Contains(t, buf.String(), "test message")
	assert.Contains(t, buf.String(), "program=identity-testserver")
}

func TestNew_DefaultsToJSON(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	logger, err := New(Options{Output: &buf})
	require.NoError(t, err)

	logger.Info("test message")

	decodeEntry(t, &buf)
}

func TestNew_UnknownFormat(t *testing.T) {
	t.Parallel()

	_, err := New(Options{Format: "xml"})
	assert.ErrorIs(t, err, ErrUnknownFormat)
}

func TestNew_Level(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	logger, err := New(Options{Output: &buf})
	require.NoError(t, err)

	// debug is dropped at the default level
	logger.Debug("hidden")
	assert.Empty(t, buf.String())

	buf.Reset()
	logger, err = New(Options{Output: &buf, Level: slog.LevelDebug})
	require.NoError(t, err)
	logger.Debug("shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestHandler_TraceContext(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	logger, err := New(Options{Output: &buf})
	require.NoError(t, err)

	traceID, _ := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	spanID, _ := trace.SpanIDFromHex("00f067aa0ba902b7")
	spanCtx := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID: traceID,
		SpanID:  spanID,
	})
	ctx := trace.ContextWithSpanContext(context.Background(), spanCtx)

	logger.With("component", "session").InfoContext(ctx, "traced message")

	// trace attributes survive With
	entry := decodeEntry(t, &buf)
	assert.Equal(t, "4bf92f3577b34da6a3ce929d0e0e4736", entry["trace_id"])
	assert.Equal(t, "00f067aa0ba902b7", entry["span_id"])
	assert.Equal(t, "session", entry["component"])
}

func TestHandler_NoTraceContext(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	logger, err := New(Options{Output: &buf})
	require.NoError(t, err)

	logger.Info("no trace message")

	entry := decodeEntry(t, &buf)
	assert.NotContains(t, entry, "trace_id")
	assert.NotContains(t, entry, "span_id")
}

func TestDiscard(t *testing.T) {
	t.Parallel()

	// discard logger is disabled at every level
	assert.False(t, Discard().Enabled(context.Background(), slog.LevelError))
}
