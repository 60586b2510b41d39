package chain

import (
	"fmt"

	"github.com/alexisbeaulieu97/cadence/internal/domain/target"
	cadenceerrors "github.com/alexisbeaulieu97/cadence/pkg/errors"
)

// Chain groups the ordinary targets bound to controllers and the abstract
// targets resolved only to feed them. Slices keep resolution order stable.
type Chain struct {
	Name     string
	Abstract []*target.Target
	Targets  []*target.Target
}

// Validate checks that every target has a unique, non-empty name and that the
// abstract and ordinary tiers are disjoint.
func (c *Chain) Validate() error {
	if c == nil {
		return cadenceerrors.NewValidationError("chain", "chain is nil", nil)
	}
	if len(c.Targets) == 0 {
		return cadenceerrors.NewValidationError("targets", "at least one target is required", nil)
	}

	seen := make(map[string]string, len(c.Abstract)+len(c.Targets))
	check := func(tier string, list []*target.Target) error {
		for i, t := range list {
			field := fmt.Sprintf("%s[%d]", tier, i)
			if t == nil {
				return cadenceerrors.NewValidationError(field, "target is nil", nil)
			}
			if t.Name == "" {
				return cadenceerrors.NewValidationError(field+".name", "name is required", nil)
			}
			if previous, exists := seen[t.Name]; exists {
				if previous != tier {
					return cadenceerrors.NewValidationError(field+".name", fmt.Sprintf("target %q is declared both abstract and ordinary", t.Name), nil)
				}
				return cadenceerrors.NewValidationError(field+".name", fmt.Sprintf("duplicate target %q", t.Name), nil)
			}
			seen[t.Name] = tier
		}
		return nil
	}

	if err := check("abstract", c.Abstract); err != nil {
		return err
	}
	return check("targets", c.Targets)
}

// TargetNames returns the ordinary target names in resolution order.
func (c *Chain) TargetNames() []string {
	names := make([]string, 0, len(c.Targets))
	for _, t := range c.Targets {
		names = append(names, t.Name)
	}
	return names
}

// AbstractNames returns the abstract target names in resolution order.
func (c *Chain) AbstractNames() []string {
	names := make([]string, 0, len(c.Abstract))
	for _, t := range c.Abstract {
		names = append(names, t.Name)
	}
	return names
}
