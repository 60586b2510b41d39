package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/alexisbeaulieu97/cadence/internal/app/sequence"
)

// chainFlags are shared by every command that drives a chain.
type chainFlags struct {
	chainPath  string
	depsPath   string
	overrides  []string
	controller string
	parallel   int
	ceiling    int
	floor      int
	timeScale  float64
}

func addChainFlags(cmd *cobra.Command, f *chainFlags) {
	cmd.Flags().StringVarP(&f.chainPath, "chain", "c", "", "Path to chain file (YAML or TOML)")
	cmd.Flags().StringVarP(&f.depsPath, "deps", "d", "", "Path to dependency context file")
	cmd.Flags().StringArrayVar(&f.overrides, "set", nil, "Dependency override key=value (repeatable, dotted keys nest)")
	cmd.Flags().StringVar(&f.controller, "controller", sequence.ControllerLog, "Controller kind (log or spring)")
	cmd.Flags().IntVar(&f.parallel, "parallel", 0, "Maximum controllers started at once (0 means unlimited)")
	cmd.Flags().IntVar(&f.ceiling, "ceiling", 0, "Cursor value that stops forward runs")
	cmd.Flags().IntVar(&f.floor, "floor", 0, "Lowest cursor a backward run may dispatch")
	cmd.Flags().Float64Var(&f.timeScale, "time-scale", 1, "Multiplier for transition waits (0 skips waiting)")
	cmd.MarkFlagRequired("chain") //nolint:errcheck
}

// request builds a PrepareRequest, overriding chain settings only for flags
// the user actually set.
func (f *chainFlags) request(cmd *cobra.Command) sequence.PrepareRequest {
	req := sequence.PrepareRequest{
		ChainPath:  f.chainPath,
		DepsPath:   f.depsPath,
		Overrides:  f.overrides,
		Controller: f.controller,
	}
	changed := cmd.Flags().Changed
	if changed("parallel") {
		req.Parallel = &f.parallel
	}
	if changed("ceiling") {
		req.Ceiling = &f.ceiling
	}
	if changed("floor") {
		req.Floor = &f.floor
	}
	if changed("time-scale") {
		req.TimeScale = &f.timeScale
	}
	return req
}

func validateChainPath(path string) error {
	if strings.TrimSpace(path) == "" {
		return fmt.Errorf("chain file is required")
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolve chain path: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return fmt.Errorf("chain file does not exist: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf("chain path %s is a directory", abs)
	}

	return nil
}
