package main

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/alexisbeaulieu97/cadence/internal/domain/style"
	httpapi "github.com/alexisbeaulieu97/cadence/internal/infrastructure/http"
	"github.com/alexisbeaulieu97/cadence/internal/model"
	"github.com/alexisbeaulieu97/cadence/pkg/diff"
)

const (
	outputText = "text"
	outputJSON = "json"
)

type reportOptions struct {
	Format string
	Diff   bool
	Chain  string
}

func writeRun(w io.Writer, run *model.Run, opts reportOptions) error {
	if run == nil {
		return nil
	}
	switch opts.Format {
	case "", outputText:
		return writeRunText(w, run, opts)
	case outputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(httpapi.NewRunResponse(run))
	default:
		return fmt.Errorf("unknown output format %q (want %s or %s)", opts.Format, outputText, outputJSON)
	}
}

func writeRunText(w io.Writer, run *model.Run, opts reportOptions) error {
	fmt.Fprintf(w, "%s: %s from %d to %d, stopped on %s after %d keyframe(s) in %s\n",
		opts.Chain, run.Direction, run.StartCursor, run.EndCursor, run.Stop,
		len(run.Keyframes), run.Duration.Truncate(time.Millisecond))

	var previous map[string]style.Record
	for _, kf := range run.Keyframes {
		header := fmt.Sprintf("keyframe %d", kf.Cursor)
		if kf.State != "" {
			header += fmt.Sprintf(" [%s]", kf.State)
		}
		fmt.Fprintln(w, header)

		status := make(map[string]model.DispatchResult, len(kf.Results))
		for _, res := range kf.Results {
			status[res.Target] = res
		}

		names := make([]string, 0, len(kf.Styles))
		width := 0
		for name := range kf.Styles {
			names = append(names, name)
			width = max(width, len(name))
		}
		sort.Strings(names)

		current := make(map[string]style.Record, len(names))
		for _, name := range names {
			final := kf.Styles[name]
			current[name] = final.Record
			res := status[name]
			line := fmt.Sprintf("  %s %-*s %-12s %s", statusGlyph(res.Status), width, name, final.ActiveState, formatRecord(final.Record))
			if res.Error != nil {
				line += " · " + res.Error.Error()
			}
			fmt.Fprintln(w, strings.TrimRight(line, " "))

			if opts.Diff && previous != nil {
				out, err := diff.Styles(previous[name], final.Record, name, fmt.Sprintf("%s @%d", name, kf.Cursor))
				if err != nil {
					return err
				}
				if out != "" {
					fmt.Fprint(w, indent(out, "      "))
				}
			}
		}
		previous = current
	}
	return nil
}

func statusGlyph(status string) string {
	switch status {
	case model.StatusSettled:
		return "✓"
	case model.StatusFailed:
		return "✗"
	case model.StatusRunning:
		return "⏳"
	default:
		return "…"
	}
}

// formatRecord renders a style record as sorted "k=v" pairs.
func formatRecord(rec style.Record) string {
	keys := make([]string, 0, len(rec))
	for k := range rec {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		v := rec[k]
		if nested, ok := v.(style.Record); ok {
			parts = append(parts, fmt.Sprintf("%s={%s}", k, formatRecord(nested)))
			continue
		}
		if nested, ok := v.(map[string]any); ok {
			parts = append(parts, fmt.Sprintf("%s={%s}", k, formatRecord(nested)))
			continue
		}
		parts = append(parts, fmt.Sprintf("%s=%v", k, v))
	}
	return strings.Join(parts, " ")
}

func indent(text, prefix string) string {
	lines := strings.Split(strings.TrimRight(text, "\n"), "\n")
	for i, line := range lines {
		lines[i] = prefix + line
	}
	return strings.Join(lines, "\n") + "\n"
}
