package main

import (
	"github.com/spf13/cobra"
)

type rootFlags struct {
	verbose       bool
	logLevel      string
	logFormat     string
	correlationID string
	sessionDir    string
	redisURL      string
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}

	cmd := &cobra.Command{
		Use:           "cadence",
		Short:         "Cadence sequences multi-target animations from declarative chains",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := cmd.PersistentFlags()
	pf.BoolVarP(&flags.verbose, "verbose", "v", false, "Enable debug logging")
	pf.StringVar(&flags.logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")
	pf.StringVar(&flags.logFormat, "log-format", "text", "Log format (text or json)")
	pf.StringVar(&flags.correlationID, "correlation-id", "", "Correlation id attached to every log entry")
	pf.StringVar(&flags.sessionDir, "session-dir", "", "Directory for stored sessions (default .cadence/sessions)")
	pf.StringVar(&flags.redisURL, "redis", "", "Store sessions in Redis at this URL instead of files")

	cmd.AddCommand(newRunCmd(flags))
	cmd.AddCommand(newStepCmd(flags))
	cmd.AddCommand(newResetCmd(flags))
	cmd.AddCommand(newValidateCmd(flags))
	cmd.AddCommand(newServeCmd(flags))
	cmd.AddCommand(newPreviewCmd(flags))
	cmd.AddCommand(newVersionCmd())

	return cmd
}
