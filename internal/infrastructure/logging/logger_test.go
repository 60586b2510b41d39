package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexisbeaulieu97/cadence/internal/ports"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]interface{} {
	t.Helper()
	var out []map[string]interface{}
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		payload := make(map[string]interface{})
		require.NoError(t, json.Unmarshal([]byte(line), &payload), "line %q", line)
		out = append(out, payload)
	}
	return out
}

func TestJSONLoggerIncludesCorrelationIDAndLayer(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Options{
		Writer:    &buf,
		Level:     "debug",
		Backend:   BackendJSON,
		Layer:     "infrastructure",
		Component: "chain_loader",
	})
	require.NoError(t, err)

	ctx := ports.WithCorrelationID(context.Background(), "abc123")
	logger.Info(ctx, "loaded chain", "path", "/tmp/chain.yaml")

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 1)
	payload := lines[0]
	assert.Equal(t, "infrastructure", payload["layer"])
	assert.Equal(t, "chain_loader", payload["component"])
	assert.Equal(t, "abc123", payload["correlation_id"])
	assert.Equal(t, "/tmp/chain.yaml", payload["path"])
	assert.Equal(t, "loaded chain", payload["message"])
	assert.Equal(t, "info", payload["level"])
}

func TestJSONLoggerWithAddsFields(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Options{Writer: &buf, Backend: BackendJSON})
	require.NoError(t, err)

	child := logger.With("component", "driver")
	child.Warn(context.Background(), "dispatch failed", "target", "logo", "error", errors.New("boom"))

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 1)
	assert.Equal(t, "driver", lines[0]["component"])
	assert.Equal(t, "logo", lines[0]["target"])
	assert.Equal(t, "boom", lines[0]["error"])
	assert.Equal(t, "infrastructure", lines[0]["layer"])
}

func TestJSONLoggerRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Options{Writer: &buf, Backend: BackendJSON, Level: "warn"})
	require.NoError(t, err)

	logger.Info(context.Background(), "hidden")
	logger.Error(context.Background(), "shown")

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 1)
	assert.Equal(t, "shown", lines[0]["message"])
}

func TestTextLoggerWritesFields(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Options{Writer: &buf, Component: "cli"})
	require.NoError(t, err)

	logger.Info(context.Background(), "keyframe settled", "cursor", 3)

	out := buf.String()
	assert.Contains(t, out, "keyframe settled")
	assert.Contains(t, out, "component=cli")
	assert.Contains(t, out, "cursor=3")
}

func TestNewRejectsUnknownBackendAndLevel(t *testing.T) {
	_, err := New(Options{Backend: "xml"})
	assert.Error(t, err)

	_, err = New(Options{Level: "loud"})
	assert.Error(t, err)

	_, err = New(Options{Backend: BackendJSON, Level: "loud"})
	assert.Error(t, err)
}

func TestDiscardDropsEverything(t *testing.T) {
	Discard.Info(context.Background(), "hello world")
	assert.Equal(t, Discard, Discard.With("key", "value"))
}

func TestMergeFieldsLaterKeysWin(t *testing.T) {
	merged := mergeFields(
		[]interface{}{"component", "driver", 42, "ignored"},
		[]interface{}{"component", "engine", "target", "logo"},
		map[string]interface{}{"layer": "app", "correlation_id": ""},
	)
	assert.Equal(t, []interface{}{"component", "engine", "target", "logo", "layer", "app"}, merged)
}

func TestHeldReleasesInOrder(t *testing.T) {
	held, err := NewHeld("info", 10)
	require.NoError(t, err)

	ctx := ports.WithCorrelationID(context.Background(), "held")
	held.Info(ctx, "booting", "component", "preview")
	held.Debug(ctx, "below the minimum level")
	held.With("component", "driver").Error(ctx, "dispatch failed", "cursor", 1)
	assert.Equal(t, 2, held.Pending())

	var output bytes.Buffer
	sink, err := New(Options{Writer: &output, Backend: BackendJSON})
	require.NoError(t, err)
	assert.Empty(t, output.String())

	assert.Equal(t, 2, held.Release(sink))
	assert.Equal(t, 0, held.Pending())

	lines := decodeLines(t, &output)
	require.Len(t, lines, 2)
	assert.Equal(t, "booting", lines[0]["message"])
	assert.Equal(t, "preview", lines[0]["component"])
	assert.Equal(t, "dispatch failed", lines[1]["message"])
	assert.Equal(t, "error", lines[1]["level"])
	assert.Equal(t, "driver", lines[1]["component"])
	assert.Equal(t, "held", lines[1]["correlation_id"])
}

func TestHeldDropsOldestWhenFull(t *testing.T) {
	held, err := NewHeld("", 2)
	require.NoError(t, err)
	for _, msg := range []string{"one", "two", "three"} {
		held.Info(context.Background(), msg)
	}
	assert.Equal(t, 2, held.Pending())

	var output bytes.Buffer
	sink, err := New(Options{Writer: &output, Backend: BackendJSON})
	require.NoError(t, err)
	held.Release(sink)

	lines := decodeLines(t, &output)
	require.Len(t, lines, 3)
	assert.Equal(t, "held log entries dropped", lines[0]["message"])
	assert.EqualValues(t, 1, lines[0]["dropped"])
	assert.Equal(t, "two", lines[1]["message"])
	assert.Equal(t, "three", lines[2]["message"])
}

func TestHeldRejectsUnknownLevel(t *testing.T) {
	_, err := NewHeld("loud", 0)
	assert.Error(t, err)
	held, err := NewHeld("warn", 0)
	require.NoError(t, err)
	assert.Equal(t, 0, held.Release(nil))
}
