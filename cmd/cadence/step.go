package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/alexisbeaulieu97/cadence/internal/engine"
)

const defaultSession = "default"

type stepOptions struct {
	chain   chainFlags
	session string
	output  string
}

func newStepCmd(root *rootFlags) *cobra.Command {
	opts := &stepOptions{}

	cmd := &cobra.Command{
		Use:   "step [forward|backward|hold] [state]",
		Short: "Dispatch a single keyframe and remember the cursor",
		Long: "Step dispatches exactly one keyframe and stores the new cursor and state history " +
			"in a session, so repeated invocations walk the chain one keyframe at a time.",
		Args: cobra.RangeArgs(0, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateChainPath(opts.chain.chainPath); err != nil {
				return err
			}
			direction := engine.Forward
			if len(args) > 0 {
				d, err := engine.ParseDirection(args[0])
				if err != nil {
					return err
				}
				direction = d
			}
			req := engine.Request{Direction: direction, MaxKeyframes: 1}
			if len(args) > 1 {
				req.State = args[1]
			}
			return runSequence(cmd, root, &opts.chain, opts.session, req, reportOptions{Format: opts.output})
		},
	}

	addChainFlags(cmd, &opts.chain)
	cmd.Flags().StringVar(&opts.session, "session", defaultSession, "Session that stores the cursor")
	cmd.Flags().StringVarP(&opts.output, "output", "o", outputText, "Output format (text or json)")

	return cmd
}

func newResetCmd(root *rootFlags) *cobra.Command {
	var sessionID string

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Forget a stored session so the next step starts at the floor",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newAppContext(cmd, root)
			if err != nil {
				return err
			}
			defer app.Close()

			if err := app.Service.Reset(app.Context(cmd, root), nil, sessionID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "session %s reset\n", sessionID)
			return nil
		},
	}

	cmd.Flags().StringVar(&sessionID, "session", defaultSession, "Session to reset")
	return cmd
}
