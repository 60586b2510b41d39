package main

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/alexisbeaulieu97/cadence/internal/app/sequence"
	"github.com/alexisbeaulieu97/cadence/internal/controller"
	"github.com/alexisbeaulieu97/cadence/internal/engine"
	"github.com/alexisbeaulieu97/cadence/internal/model"
	"github.com/alexisbeaulieu97/cadence/internal/ports"
	"github.com/alexisbeaulieu97/cadence/internal/tui"
)

type previewOptions struct {
	chain          chainFlags
	auto           bool
	session        string
	NonInteractive bool
}

func newPreviewCmd(root *rootFlags) *cobra.Command {
	opts := &previewOptions{}

	cmd := &cobra.Command{
		Use:   "preview",
		Short: "Step through a chain interactively with spring animation",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateChainPath(opts.chain.chainPath); err != nil {
				return err
			}
			opts.NonInteractive = !isTerminal(cmd.OutOrStdout())
			return runPreview(cmd, root, opts)
		},
	}

	addChainFlags(cmd, &opts.chain)
	cmd.Flags().Lookup("controller").DefValue = sequence.ControllerSpring
	opts.chain.controller = sequence.ControllerSpring
	cmd.Flags().BoolVar(&opts.auto, "auto", false, "Run forward to the ceiling and exit")
	cmd.Flags().StringVar(&opts.session, "session", "", "Resume from and save to this session")

	return cmd
}

func runPreview(cmd *cobra.Command, root *rootFlags, opts *previewOptions) error {
	interactive := !opts.NonInteractive
	var appOpts []appOption
	if interactive {
		appOpts = append(appOpts, withHeldLogs())
	}

	app, err := newAppContext(cmd, root, appOpts...)
	if err != nil {
		return err
	}
	defer app.Close()
	ctx := app.Context(cmd, root)

	var program *tea.Program
	send := func(tea.Msg) {}

	req := opts.chain.request(cmd)
	req.Realtime = interactive
	req.OnFrame = func(f controller.Frame) { send(tui.FrameMsg{Frame: f}) }

	prepared, err := app.Service.Prepare(ctx, req)
	if err != nil {
		return err
	}
	if err := app.Service.Resume(ctx, prepared, opts.session); err != nil {
		return err
	}

	sub, err := app.Events.Subscribe(ports.EventKeyframeStarted, func(_ context.Context, e ports.DomainEvent) error {
		if data, ok := e.Payload().(map[string]interface{}); ok {
			if cursor, ok := data["cursor"].(int); ok {
				send(tui.KeyframeMsg{Cursor: cursor})
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	defer sub.Unsubscribe()

	session := app.Service.Bind(prepared, opts.session)
	state := tui.NewModel(tui.Options{
		Title:   prepared.Loaded.Chain.Name,
		Targets: prepared.Loaded.Chain.TargetNames(),
		Floor:   prepared.Driver.Floor(),
		Ceiling: prepared.Driver.Ceiling(),
		Cursor:  prepared.Driver.Cursor(),
		Advance: func(ctx context.Context, r engine.Request) (*model.Run, error) {
			return session.Advance(ctx, r)
		},
		Auto: opts.auto || !interactive,
	})

	if !interactive {
		return runHeadless(ctx, cmd, state, session)
	}

	program = tea.NewProgram(state, tea.WithContext(ctx), tea.WithOutput(cmd.OutOrStdout()))
	send = program.Send
	final, err := program.Run()
	if err != nil {
		return err
	}
	if m, ok := final.(tui.Model); ok {
		return m.Err()
	}
	return nil
}

// runHeadless drives the model without a terminal: one forward run, then the
// final view is printed once.
func runHeadless(ctx context.Context, cmd *cobra.Command, state tui.Model, session *sequence.Session) error {
	run, err := session.Advance(ctx, engine.Request{Direction: engine.Forward})
	updated, _ := state.Update(tui.RunMsg{Run: run, Err: err})
	if m, ok := updated.(tui.Model); ok {
		state = m
	}
	fmt.Fprintln(cmd.OutOrStdout(), state.View())
	return err
}

func isTerminal(w interface{}) bool {
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(file.Fd()))
}
