// Package controller contains the animation controllers a sequence driver
// dispatches final styles to.
package controller

import (
	"context"
	"sort"

	"github.com/alexisbeaulieu97/cadence/internal/domain/target"
)

// Controller drives one target to a final style. Start returns once the
// transition has settled, failed, or ctx was cancelled.
type Controller interface {
	Start(ctx context.Context, final target.FinalStyle) error
}

// Func adapts a plain function to Controller.
type Func func(ctx context.Context, final target.FinalStyle) error

// Start implements Controller.
func (f Func) Start(ctx context.Context, final target.FinalStyle) error {
	if f == nil {
		return nil
	}
	return f(ctx, final)
}

// Map binds ordinary target names to controllers.
type Map map[string]Controller

// Missing returns the names without a registered controller, sorted.
func (m Map) Missing(names []string) []string {
	var out []string
	for _, name := range names {
		if c, ok := m[name]; !ok || c == nil {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}
