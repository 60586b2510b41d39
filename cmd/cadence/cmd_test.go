package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexisbeaulieu97/cadence/internal/app/sequence"
	"github.com/alexisbeaulieu97/cadence/internal/engine"
	httpapi "github.com/alexisbeaulieu97/cadence/internal/infrastructure/http"
)

var (
	introChain = filepath.Join("..", "..", "examples", "intro", "chain.yaml")
	introDeps  = filepath.Join("..", "..", "examples", "intro", "deps.yaml")
)

func executeCommand(cmd *cobra.Command, args ...string) (string, string, error) {
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestRunReportsEveryKeyframe(t *testing.T) {
	out, _, err := executeCommand(newRootCmd(), "run",
		"-c", introChain, "-d", introDeps, "--time-scale", "0",
		"--session-dir", t.TempDir(), "-o", "json")
	require.NoError(t, err)

	var run httpapi.RunResponse
	require.NoError(t, json.Unmarshal([]byte(out), &run))
	assert.Equal(t, "ceiling", run.Stop)
	assert.Equal(t, 4, run.EndCursor)
	require.Len(t, run.Keyframes, 4)

	first := run.Keyframes[0].Styles["logo"]
	assert.EqualValues(t, -100, first["y"])
	assert.EqualValues(t, 0, first["opacity"])

	middle := run.Keyframes[2].Styles["background"]
	assert.EqualValues(t, 592, middle["x"])
	assert.EqualValues(t, 312, middle["y"])
	assert.EqualValues(t, 5, middle["scale"])

	last := run.Keyframes[3].Styles["logo"]
	assert.EqualValues(t, 5, last["scale"])
	assert.Equal(t, "-35deg", last["rotate"])
	assert.NotContains(t, last, "backgroundColor")
	transition, ok := last["transition"].(map[string]any)
	require.True(t, ok)
	assert.Empty(t, transition)
	assert.Equal(t, "#1F1C24", run.Keyframes[2].Styles["logo"]["backgroundColor"])
	assert.EqualValues(t, 100, run.Keyframes[3].Styles["background"]["scale"])

	for _, kf := range run.Keyframes {
		for _, res := range kf.Results {
			assert.Equal(t, "settled", res.Status)
		}
	}
}

func TestRunDirectiveOverridesTransition(t *testing.T) {
	out, _, err := executeCommand(newRootCmd(), "run",
		"-c", introChain, "-d", introDeps, "--time-scale", "0", "-n", "2",
		"--session-dir", t.TempDir(), "-o", "json")
	require.NoError(t, err)

	var run httpapi.RunResponse
	require.NoError(t, json.Unmarshal([]byte(out), &run))
	assert.Equal(t, "max_keyframes", run.Stop)
	require.Len(t, run.Keyframes, 2)
	transition, ok := run.Keyframes[1].Styles["logo"]["transition"].(map[string]any)
	require.True(t, ok)
	assert.EqualValues(t, 0, transition["duration"])
}

func TestRunTextWithDiff(t *testing.T) {
	out, _, err := executeCommand(newRootCmd(), "run",
		"-c", introChain, "-d", introDeps, "--time-scale", "0", "--diff",
		"--session-dir", t.TempDir())
	require.NoError(t, err)

	assert.Contains(t, out, "intro: forward from 0 to 4, stopped on ceiling after 4 keyframe(s)")
	assert.Contains(t, out, "keyframe 0")
	assert.Contains(t, out, "keyframe 3")
	assert.Contains(t, out, "✓ logo")
	assert.Contains(t, out, "-scale: 5")
	assert.Contains(t, out, "+scale: 100")
}

func TestRunWithoutMeasurementsResolvesEmptyStyles(t *testing.T) {
	out, _, err := executeCommand(newRootCmd(), "run",
		"-c", introChain, "--time-scale", "0", "--session-dir", t.TempDir(), "-o", "json")
	require.NoError(t, err)

	var run httpapi.RunResponse
	require.NoError(t, json.Unmarshal([]byte(out), &run))
	require.Len(t, run.Keyframes, 4)

	background := run.Keyframes[2].Styles["background"]
	assert.Equal(t, "sync", background["activeState"])
	assert.NotContains(t, background, "x")
	assert.NotContains(t, background, "scale")
}

func TestRunRejectsBadInput(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"missing file", []string{"run", "-c", "/path/does/not/exist"}, "does not exist"},
		{"directory", []string{"run", "-c", os.TempDir()}, "is a directory"},
		{"direction", []string{"run", "-c", introChain, "--direction", "sideways"}, "sideways"},
		{"output", []string{"run", "-c", introChain, "-d", introDeps, "--time-scale", "0", "-o", "xml"}, "unknown output format"},
		{"controller", []string{"run", "-c", introChain, "-d", introDeps, "--controller", "css"}, "unknown controller"},
		{"log format", []string{"run", "-c", introChain, "--log-format", "xml"}, "unknown log backend"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append(tt.args, "--session-dir", t.TempDir())
			_, _, err := executeCommand(newRootCmd(), args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestStepWalksSession(t *testing.T) {
	sessions := t.TempDir()
	step := func(args ...string) httpapi.RunResponse {
		t.Helper()
		base := []string{"step", "-c", introChain, "-d", introDeps, "--time-scale", "0", "--session-dir", sessions, "-o", "json"}
		out, _, err := executeCommand(newRootCmd(), append(base, args...)...)
		require.NoError(t, err)
		var run httpapi.RunResponse
		require.NoError(t, json.Unmarshal([]byte(out), &run))
		return run
	}

	first := step()
	assert.Equal(t, 0, first.StartCursor)
	assert.Equal(t, 1, first.EndCursor)
	require.Len(t, first.Keyframes, 1)

	second := step("forward")
	assert.Equal(t, 1, second.StartCursor)
	assert.Equal(t, 2, second.EndCursor)

	held := step("hold")
	assert.Equal(t, 2, held.StartCursor)
	assert.Equal(t, 2, held.EndCursor)
	assert.Equal(t, "hold", held.Stop)

	back := step("backward")
	assert.Equal(t, 1, back.EndCursor)

	out, _, err := executeCommand(newRootCmd(), "reset", "--session-dir", sessions)
	require.NoError(t, err)
	assert.Contains(t, out, "session default reset")

	assert.Equal(t, 0, step().StartCursor)
}

func TestStepUnknownState(t *testing.T) {
	_, _, err := executeCommand(newRootCmd(), "step", "hold", "nowhere",
		"-c", introChain, "-d", introDeps, "--time-scale", "0", "--session-dir", t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nowhere")
}

func TestValidateCommand(t *testing.T) {
	broken := filepath.Join(t.TempDir(), "broken.yaml")
	require.NoError(t, os.WriteFile(broken, []byte("version: \"1.0\"\nname: broken\ntargets: []\n"), 0o600))

	out, _, err := executeCommand(newRootCmd(), "validate", introChain)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ "+introChain)

	out, _, err = executeCommand(newRootCmd(), "validate", introChain, broken)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 2 chain file(s) invalid")
	assert.Contains(t, out, "✗ "+broken)
}

func TestPreviewHeadless(t *testing.T) {
	out, _, err := executeCommand(newRootCmd(), "preview",
		"-c", introChain, "-d", introDeps, "--session-dir", t.TempDir())
	require.NoError(t, err)

	assert.Contains(t, out, "Cadence • Intro")
	assert.Contains(t, out, "4/4")
	assert.Contains(t, out, "Stopped: ceiling")
	assert.NotContains(t, out, "q quit")
}

func TestJSONLogsGoToStderr(t *testing.T) {
	_, stderr, err := executeCommand(newRootCmd(), "run",
		"-c", introChain, "-d", introDeps, "--time-scale", "0", "-n", "1",
		"--session-dir", t.TempDir(), "--log-format", "json", "--log-level", "info",
		"--correlation-id", "req-42")
	require.NoError(t, err)
	assert.Contains(t, stderr, `"correlation_id":"req-42"`)
	assert.Contains(t, stderr, "keyframe settled")
}

func TestHeldLogsReachStderrOnClose(t *testing.T) {
	var stderr bytes.Buffer
	cmd := &cobra.Command{Use: "preview"}
	cmd.SetErr(&stderr)
	flags := &rootFlags{logLevel: "info", logFormat: "json", sessionDir: t.TempDir()}

	app, err := newAppContext(cmd, flags, withHeldLogs())
	require.NoError(t, err)

	ctx := context.Background()
	instant := 0.0
	prepared, err := app.Service.Prepare(ctx, sequence.PrepareRequest{
		ChainPath: introChain,
		DepsPath:  introDeps,
		TimeScale: &instant,
	})
	require.NoError(t, err)
	_, err = app.Service.Advance(ctx, prepared, "", engine.Request{Direction: engine.Forward, MaxKeyframes: 1})
	require.NoError(t, err)
	assert.Empty(t, stderr.String())

	app.Close()
	assert.Contains(t, stderr.String(), "keyframe settled")
	assert.Contains(t, stderr.String(), `"component":"driver"`)
}
