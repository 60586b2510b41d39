package main

import (
	"github.com/spf13/cobra"

	"github.com/alexisbeaulieu97/cadence/internal/engine"
)

type runOptions struct {
	chain        chainFlags
	direction    string
	state        string
	maxKeyframes int
	session      string
	output       string
	diff         bool
}

func newRunCmd(root *rootFlags) *cobra.Command {
	opts := &runOptions{}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Advance a chain and report every keyframe",
		Long: "Run composes and dispatches keyframes starting at the current cursor. " +
			"Forward runs chain automatically until the ceiling, backward runs until the floor, " +
			"and hold dispatches the current keyframe once.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateChainPath(opts.chain.chainPath); err != nil {
				return err
			}
			direction, err := engine.ParseDirection(opts.direction)
			if err != nil {
				return err
			}
			return runSequence(cmd, root, &opts.chain, opts.session, engine.Request{
				Direction:    direction,
				State:        opts.state,
				MaxKeyframes: opts.maxKeyframes,
			}, reportOptions{Format: opts.output, Diff: opts.diff})
		},
	}

	addChainFlags(cmd, &opts.chain)
	cmd.Flags().StringVar(&opts.direction, "direction", "forward", "Direction (forward, backward or hold)")
	cmd.Flags().StringVarP(&opts.state, "state", "s", "", "Explicit state for the first keyframe")
	cmd.Flags().IntVarP(&opts.maxKeyframes, "max-keyframes", "n", 0, "Stop after this many keyframes (0 means no limit)")
	cmd.Flags().StringVar(&opts.session, "session", "", "Resume from and save to this session")
	cmd.Flags().StringVarP(&opts.output, "output", "o", outputText, "Output format (text or json)")
	cmd.Flags().BoolVar(&opts.diff, "diff", false, "Show style changes between keyframes")

	return cmd
}

// runSequence prepares the chain, runs one Advance call and prints the run.
// The run is reported even when it failed part way.
func runSequence(cmd *cobra.Command, root *rootFlags, flags *chainFlags, sessionID string, req engine.Request, report reportOptions) error {
	app, err := newAppContext(cmd, root)
	if err != nil {
		return err
	}
	defer app.Close()
	ctx := app.Context(cmd, root)

	prepared, err := app.Service.Prepare(ctx, flags.request(cmd))
	if err != nil {
		return err
	}

	run, runErr := app.Service.Advance(ctx, prepared, sessionID, req)
	report.Chain = prepared.Loaded.Chain.Name
	if err := writeRun(cmd.OutOrStdout(), run, report); err != nil {
		return err
	}
	return runErr
}
