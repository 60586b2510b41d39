package chain

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/alexisbeaulieu97/cadence/internal/domain/style"
	"github.com/alexisbeaulieu97/cadence/internal/domain/target"
	cadenceerrors "github.com/alexisbeaulieu97/cadence/pkg/errors"
)

func syncChain() *Chain {
	bg := &target.Target{
		Name: "bg",
		States: map[string]style.Raw{
			"sync": style.Computed(func(deps style.Dependencies) (style.Record, error) {
				x, err := deps.Require("x")
				if err != nil {
					return nil, err
				}
				return style.Record{"opacity": x}, nil
			}),
		},
		Meta: target.Meta{DefaultDirection: "sync"},
	}
	logo := &target.Target{
		Name: "logo",
		States: map[string]style.Raw{
			"sync": style.Computed(func(deps style.Dependencies) (style.Record, error) {
				return deps.Record("bg")
			}),
		},
		Meta: target.Meta{DefaultDirection: "sync"},
	}
	return &Chain{Name: "sync", Abstract: []*target.Target{bg}, Targets: []*target.Target{logo}}
}

func TestComposeAllFeedsAbstractIntoTargets(t *testing.T) {
	t.Parallel()

	c := NewCoordinator(nil)
	styles, err := c.ComposeAll(syncChain(), style.Dependencies{"x": 1}, 0, "")
	require.NoError(t, err)

	require.Len(t, styles, 1)
	require.NotContains(t, styles, "bg")
	require.Equal(t, style.Record{"opacity": 1, style.ActiveStateKey: "sync"}, styles["logo"].Record)
}

func TestComposeAllAbstractTargetsAreSingleTier(t *testing.T) {
	t.Parallel()

	var sawOther bool
	first := &target.Target{
		Name:   "first",
		States: map[string]style.Raw{"on": style.Static(style.Record{"v": 1})},
		Meta:   target.Meta{DefaultDirection: "on"},
	}
	second := &target.Target{
		Name: "second",
		States: map[string]style.Raw{
			"on": style.Computed(func(deps style.Dependencies) (style.Record, error) {
				_, sawOther = deps["first"]
				return style.Record{}, nil
			}),
		},
		Meta: target.Meta{DefaultDirection: "on"},
	}
	consumer := &target.Target{
		Name: "consumer",
		States: map[string]style.Raw{
			"on": style.Computed(func(deps style.Dependencies) (style.Record, error) {
				a, err := deps.Record("first")
				if err != nil {
					return nil, err
				}
				_, err = deps.Record("second")
				if err != nil {
					return nil, err
				}
				return style.Record{"v": a["v"], "index": deps[style.SequenceIndexKey]}, nil
			}),
		},
		Meta: target.Meta{DefaultDirection: "on"},
	}

	ch := &Chain{Abstract: []*target.Target{first, second}, Targets: []*target.Target{consumer}}
	styles, err := NewCoordinator(nil).ComposeAll(ch, style.Dependencies{}, 4, "")
	require.NoError(t, err)

	require.False(t, sawOther, "abstract targets must not see each other's output")
	require.Equal(t, 1, styles["consumer"].Record["v"])
	require.Equal(t, 4, styles["consumer"].Record["index"])
}

func TestComposeAllExplicitStateOverridesDirections(t *testing.T) {
	t.Parallel()

	tgt := &target.Target{
		Name: "card",
		States: map[string]style.Raw{
			"a":    style.Static(style.Record{"x": "a"}),
			"b":    style.Static(style.Record{"x": "b"}),
			"rest": style.Static(style.Record{"x": "rest"}),
		},
		Meta: target.Meta{Directions: []string{"a", "b"}, DefaultDirection: "rest"},
	}
	ch := &Chain{Targets: []*target.Target{tgt}}
	c := NewCoordinator(nil)

	for cursor, want := range []string{"a", "b", "rest"} {
		styles, err := c.ComposeAll(ch, nil, cursor, "")
		require.NoError(t, err)
		require.Equal(t, want, styles["card"].ActiveState)
	}

	styles, err := c.ComposeAll(ch, nil, 0, "b")
	require.NoError(t, err)
	require.Equal(t, "b", styles["card"].Record["x"])
}

func TestComposeAllPropagatesUnknownState(t *testing.T) {
	t.Parallel()

	ch := syncChain()
	_, err := NewCoordinator(nil).ComposeAll(ch, style.Dependencies{"x": 1}, 0, "nope")

	var unknown *cadenceerrors.UnknownStateError
	require.ErrorAs(t, err, &unknown)
	require.Equal(t, "bg", unknown.Target)
}

func TestComposeAllFailureKeepsHistory(t *testing.T) {
	t.Parallel()

	card := &target.Target{
		Name: "card",
		States: map[string]style.Raw{
			"a": style.Static(style.Record{"x": "a"}),
			"b": style.Static(style.Record{"x": "b"}),
		},
		Meta: target.Meta{
			Directions: []string{"a", "b"},
			Directives: map[string]style.Record{target.PairKey("a", "b"): {"transition": "none"}},
		},
	}
	badge := &target.Target{
		Name:   "badge",
		States: map[string]style.Raw{"on": style.Static(style.Record{"y": 1})},
		Meta:   target.Meta{Directions: []string{"on", "late"}},
	}
	ch := &Chain{Targets: []*target.Target{card, badge}}
	c := NewCoordinator(nil)

	_, err := c.ComposeAll(ch, nil, 0, "")
	require.NoError(t, err)
	before := c.Compositor().History().Snapshot()

	_, err = c.ComposeAll(ch, nil, 1, "")
	var unknown *cadenceerrors.UnknownStateError
	require.ErrorAs(t, err, &unknown)
	require.Equal(t, "badge", unknown.Target)
	require.Equal(t, before, c.Compositor().History().Snapshot())

	badge.States["late"] = style.Static(style.Record{"y": 2})
	styles, err := c.ComposeAll(ch, nil, 1, "")
	require.NoError(t, err)
	require.Equal(t, "none", styles["card"].Record["transition"])
	require.Equal(t, "b", styles["card"].Record["x"])
}

func TestComposeAllMissingDependencyDegrades(t *testing.T) {
	t.Parallel()

	styles, err := NewCoordinator(nil).ComposeAll(syncChain(), style.Dependencies{}, 0, "")
	require.NoError(t, err)
	require.Equal(t, style.Record{style.ActiveStateKey: "sync"}, styles["logo"].Record)
}

func TestValidate(t *testing.T) {
	t.Parallel()

	named := func(name string) *target.Target { return &target.Target{Name: name} }

	tests := []struct {
		name  string
		chain *Chain
		want  string
	}{
		{name: "nil", chain: nil, want: "chain is nil"},
		{name: "no targets", chain: &Chain{}, want: "at least one target"},
		{name: "empty name", chain: &Chain{Targets: []*target.Target{named("")}}, want: "name is required"},
		{name: "duplicate", chain: &Chain{Targets: []*target.Target{named("a"), named("a")}}, want: "duplicate target"},
		{name: "overlap", chain: &Chain{Abstract: []*target.Target{named("a")}, Targets: []*target.Target{named("a")}}, want: "both abstract and ordinary"},
		{name: "nil target", chain: &Chain{Targets: []*target.Target{nil}}, want: "target is nil"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := tt.chain.Validate()
			var validationErr *cadenceerrors.ValidationError
			require.ErrorAs(t, err, &validationErr)
			require.Contains(t, err.Error(), tt.want)
		})
	}

	require.NoError(t, syncChain().Validate())
}

func TestGeneratePlan(t *testing.T) {
	t.Parallel()

	plan, err := GeneratePlan(syncChain())
	require.NoError(t, err)
	require.Len(t, plan.Levels, 2)
	require.Equal(t, TierAbstract, plan.Levels[0].Tier)
	require.Equal(t, []string{"logo"}, plan.Levels[1].Targets)
	require.Contains(t, plan.String(), "Level 0 abstract (1 targets): bg")

	flat, err := GeneratePlan(&Chain{Targets: []*target.Target{{Name: "only"}}})
	require.NoError(t, err)
	require.Len(t, flat.Levels, 1)

	_, err = GeneratePlan(nil)
	require.Error(t, err)

	var nilPlan *Plan
	require.Empty(t, nilPlan.String())
}
