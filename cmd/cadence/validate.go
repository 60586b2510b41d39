package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/multierr"
)

func newValidateCmd(root *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <chain-file>...",
		Short: "Check chain files without running them",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newAppContext(cmd, root)
			if err != nil {
				return err
			}
			defer app.Close()
			ctx := app.Context(cmd, root)

			var all error
			for _, path := range args {
				if err := app.Loader.Validate(ctx, path); err != nil {
					fmt.Fprintf(cmd.OutOrStdout(), "✗ %s: %v\n", path, err)
					all = multierr.Append(all, err)
					continue
				}
				fmt.Fprintf(cmd.OutOrStdout(), "✓ %s\n", path)
			}
			if all != nil {
				return fmt.Errorf("%d of %d chain file(s) invalid", len(multierr.Errors(all)), len(args))
			}
			return nil
		},
	}

	return cmd
}
