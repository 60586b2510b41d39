package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	httpapi "github.com/alexisbeaulieu97/cadence/internal/infrastructure/http"
)

type serveOptions struct {
	chain   chainFlags
	addr    string
	session string
}

func newServeCmd(root *rootFlags) *cobra.Command {
	opts := &serveOptions{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Expose a chain over HTTP",
		Long: "Serve loads a chain once and accepts POST /advance requests. " +
			"GET /state, /events, /healthz and /metrics report on the driver.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateChainPath(opts.chain.chainPath); err != nil {
				return err
			}

			app, err := newAppContext(cmd, root)
			if err != nil {
				return err
			}
			defer app.Close()

			ctx, stop := signal.NotifyContext(app.Context(cmd, root), os.Interrupt, syscall.SIGTERM)
			defer stop()

			prepared, err := app.Service.Prepare(ctx, opts.chain.request(cmd))
			if err != nil {
				return err
			}
			if err := app.Service.Resume(ctx, prepared, opts.session); err != nil {
				return err
			}

			handler := httpapi.NewHandler(httpapi.Options{
				Sequencer: app.Service.Bind(prepared, opts.session),
				Metrics:   app.Metrics.Handler(),
				Events:    app.Events,
				Logger:    app.Logger.With("component", "http"),
			})

			app.Logger.Info(ctx, "serving chain", "chain", prepared.Loaded.Chain.Name, "addr", opts.addr)
			return httpapi.ListenAndServe(ctx, opts.addr, handler)
		},
	}

	addChainFlags(cmd, &opts.chain)
	cmd.Flags().StringVar(&opts.addr, "addr", "127.0.0.1:8080", "Listen address")
	cmd.Flags().StringVar(&opts.session, "session", "", "Persist the cursor to this session after every advance")

	return cmd
}
