package ports

import (
	"context"

	"github.com/alexisbeaulieu97/cadence/internal/domain/chain"
	"github.com/alexisbeaulieu97/cadence/internal/domain/style"
)

// LoadedChain bundles a compiled chain with the settings declared next to it.
type LoadedChain struct {
	Path     string
	Chain    *chain.Chain
	Settings Settings
}

// Settings are the driver knobs a chain document may declare.
type Settings struct {
	Parallel  int
	Ceiling   int
	Floor     int
	FPS       int
	TimeScale float64
}

// ChainLoader loads chain definitions from an external source such as the
// filesystem. Implementations must respect context cancellation and return
// errors from pkg/errors (ParseError, ValidationError) so callers can tell
// broken documents from I/O failures.
type ChainLoader interface {
	// Load materialises a fully validated, compiled chain.
	Load(ctx context.Context, path string) (*LoadedChain, error)

	// Validate checks a document without keeping the compiled result.
	Validate(ctx context.Context, path string) error
}

// DependencyLoader reads a dependency context document.
type DependencyLoader interface {
	LoadDependencies(ctx context.Context, path string) (style.Dependencies, error)
}
