package chain

import (
	"fmt"
	"strings"
)

// Tier names used in plans.
const (
	TierAbstract = "abstract"
	TierTargets  = "targets"
)

// Plan describes the resolution order of a chain: the abstract tier first, then
// the ordinary targets that may consume it.
type Plan struct {
	Levels []Level
}

// Level is a group of targets resolved against the same dependency context.
type Level struct {
	Tier    string
	Targets []string
}

// GeneratePlan converts a chain into its two-tier plan.
func GeneratePlan(c *Chain) (*Plan, error) {
	if c == nil {
		return nil, fmt.Errorf("chain cannot be nil")
	}

	levels := make([]Level, 0, 2)
	if len(c.Abstract) > 0 {
		levels = append(levels, Level{Tier: TierAbstract, Targets: c.AbstractNames()})
	}
	levels = append(levels, Level{Tier: TierTargets, Targets: c.TargetNames()})

	return &Plan{Levels: levels}, nil
}

// String renders a human readable summary of the plan.
func (p *Plan) String() string {
	if p == nil {
		return ""
	}

	var b strings.Builder
	for i, level := range p.Levels {
		fmt.Fprintf(&b, "Level %d %s (%d targets): %s\n", i, level.Tier, len(level.Targets), strings.Join(level.Targets, ", "))
	}
	return b.String()
}
