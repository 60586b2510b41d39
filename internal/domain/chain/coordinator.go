package chain

import (
	"github.com/alexisbeaulieu97/cadence/internal/domain/style"
	"github.com/alexisbeaulieu97/cadence/internal/domain/target"
)

// Coordinator resolves a chain in dependency order: abstract targets first
// against the base context, then ordinary targets against the base context
// extended with every abstract result.
type Coordinator struct {
	compositor *target.Compositor
}

// NewCoordinator creates a coordinator around compositor. A nil compositor
// gets a fresh one.
func NewCoordinator(compositor *target.Compositor) *Coordinator {
	if compositor == nil {
		compositor = target.NewCompositor()
	}
	return &Coordinator{compositor: compositor}
}

// Compositor returns the compositor whose history this coordinator updates.
func (c *Coordinator) Compositor() *target.Compositor {
	return c.compositor
}

// ComposeAll returns the final style of every ordinary target keyed by name.
// Abstract targets are resolved for their dependency value only and never see
// each other's output. explicit, when non-empty, overrides state selection for
// every target. A failure leaves the compositor's history as it was before
// the call.
func (c *Coordinator) ComposeAll(ch *Chain, base style.Dependencies, cursor int, explicit string) (map[string]target.FinalStyle, error) {
	if err := ch.Validate(); err != nil {
		return nil, err
	}

	history := c.compositor.History()
	committed := history.Snapshot()
	fail := func(err error) (map[string]target.FinalStyle, error) {
		history.Restore(committed)
		return nil, err
	}

	index := style.Dependencies{style.SequenceIndexKey: cursor}

	extended := style.Dependencies{style.SequenceIndexKey: cursor}
	for _, t := range ch.Abstract {
		active := target.SelectState(t.Meta, cursor, explicit)
		final, err := c.compositor.ComposeOne(t, active, base, index)
		if err != nil {
			return fail(err)
		}
		extended[t.Name] = final.Record
	}

	out := make(map[string]target.FinalStyle, len(ch.Targets))
	for _, t := range ch.Targets {
		active := target.SelectState(t.Meta, cursor, explicit)
		final, err := c.compositor.ComposeOne(t, active, base, extended)
		if err != nil {
			return fail(err)
		}
		out[t.Name] = final
	}

	return out, nil
}
