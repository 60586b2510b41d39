package main

import (
	"context"
	"io"

	"github.com/spf13/cobra"

	"github.com/alexisbeaulieu97/cadence/internal/app/sequence"
	configloader "github.com/alexisbeaulieu97/cadence/internal/infrastructure/config"
	"github.com/alexisbeaulieu97/cadence/internal/infrastructure/events"
	"github.com/alexisbeaulieu97/cadence/internal/infrastructure/logging"
	"github.com/alexisbeaulieu97/cadence/internal/infrastructure/metrics"
	"github.com/alexisbeaulieu97/cadence/internal/infrastructure/session"
	"github.com/alexisbeaulieu97/cadence/internal/ports"
)

// AppContext bundles the services a command needs.
type AppContext struct {
	Logger   ports.Logger
	Events   *events.LoggingPublisher
	Metrics  *metrics.Collector
	Sessions ports.SessionStore
	Loader   *configloader.FileLoader
	Service  *sequence.Service

	sink    ports.Logger
	held    *logging.Held
	closers []io.Closer
}

type appOption func(*appConfig)

type appConfig struct {
	holdLogs bool
}

// withHeldLogs queues every log entry until Close, for commands that hand the
// terminal to a full screen program.
func withHeldLogs() appOption {
	return func(c *appConfig) { c.holdLogs = true }
}

// newAppContext wires adapters from the root flags. Logs go to the command's
// stderr so stdout stays reserved for results.
func newAppContext(cmd *cobra.Command, flags *rootFlags, opts ...appOption) (*AppContext, error) {
	var cfg appConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	level := flags.logLevel
	if flags.verbose {
		level = "debug"
	}

	logger, err := logging.New(logging.Options{
		Writer:    cmd.ErrOrStderr(),
		Level:     level,
		Backend:   flags.logFormat,
		Layer:     "cli",
		Component: cmd.Name(),
	})
	if err != nil {
		return nil, err
	}

	sink := logger
	var held *logging.Held
	if cfg.holdLogs {
		if held, err = logging.NewHeld(level, 0); err != nil {
			return nil, err
		}
		logger = held
	}

	app := &AppContext{
		Logger:  logger,
		sink:    sink,
		held:    held,
		Events:  events.NewLoggingPublisher(logger.With("component", "events")),
		Metrics: metrics.NewCollector(logger),
		Loader:  configloader.NewFileLoader(logger.With("component", "loader")),
	}

	if flags.redisURL != "" {
		store, err := session.NewRedisStore(flags.redisURL)
		if err != nil {
			return nil, err
		}
		app.Sessions = store
		app.closers = append(app.closers, store)
	} else {
		app.Sessions = session.NewFileStore(flags.sessionDir)
	}

	app.Service = sequence.NewService(sequence.Dependencies{
		Loader:     app.Loader,
		DepsLoader: app.Loader,
		Sessions:   app.Sessions,
		Logger:     logger,
		Events:     app.Events,
		Metrics:    app.Metrics,
	})
	return app, nil
}

// Context returns the command context carrying the correlation id.
func (a *AppContext) Context(cmd *cobra.Command, flags *rootFlags) context.Context {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	id := flags.correlationID
	if id == "" {
		id = ports.GenerateCorrelationID()
	}
	return ports.WithCorrelationID(ctx, id)
}

// Close releases adapters that hold connections, then replays held log
// entries to stderr.
func (a *AppContext) Close() {
	for _, c := range a.closers {
		if err := c.Close(); err != nil {
			a.Logger.Warn(context.Background(), "close failed", "error", err)
		}
	}
	if a.held != nil {
		a.held.Release(a.sink)
	}
}
