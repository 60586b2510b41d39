package target

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/alexisbeaulieu97/cadence/internal/domain/style"
	cadenceerrors "github.com/alexisbeaulieu97/cadence/pkg/errors"
)

func TestSelectState(t *testing.T) {
	t.Parallel()

	meta := Meta{Directions: []string{"offsetTop", "middle"}, DefaultDirection: "rest"}

	tests := []struct {
		name     string
		cursor   int
		explicit string
		want     string
	}{
		{name: "cursor 0", cursor: 0, want: "offsetTop"},
		{name: "cursor 1", cursor: 1, want: "middle"},
		{name: "out of range", cursor: 2, want: "rest"},
		{name: "negative cursor", cursor: -1, want: "rest"},
		{name: "explicit wins", cursor: 0, explicit: "sync", want: "sync"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tt.want, SelectState(meta, tt.cursor, tt.explicit))
		})
	}
}

func TestSelectStateSkipsEmptyDirection(t *testing.T) {
	t.Parallel()

	meta := Meta{Directions: []string{"", "b"}, DefaultDirection: "a"}
	require.Equal(t, "a", SelectState(meta, 0, ""))
}

func TestMatchIsSymmetric(t *testing.T) {
	t.Parallel()

	directives := map[string]style.Record{
		PairKey("offsetTop", "middle"): {"transition": map[string]any{"duration": 0}},
	}

	forward := Match(directives, "offsetTop", "middle")
	backward := Match(directives, "middle", "offsetTop")
	require.NotEmpty(t, forward)
	require.Equal(t, forward, backward)
}

func TestMatchEmptyCases(t *testing.T) {
	t.Parallel()

	directives := map[string]style.Record{"a_b": {"x": 1}}

	require.Empty(t, Match(nil, "a", "b"))
	require.Empty(t, Match(directives, "", "b"))
	require.Empty(t, Match(directives, "a", "c"))
}

func TestMatchPrefersPreviousActiveOrder(t *testing.T) {
	t.Parallel()

	directives := map[string]style.Record{
		"a_b": {"x": "forward"},
		"b_a": {"x": "reverse"},
	}
	require.Equal(t, "forward", Match(directives, "a", "b")["x"])
	require.Equal(t, "reverse", Match(directives, "b", "a")["x"])
}

func TestComposeOneMergeOrder(t *testing.T) {
	t.Parallel()

	tgt := &Target{
		Name: "logo",
		States: map[string]style.Raw{
			DefaultState: style.Static(style.Record{"opacity": 1, "scale": 1, "borderRadius": "20%"}),
			"rest":       style.Static(style.Record{"scale": 2}),
			"middle": style.Computed(func(style.Dependencies) (style.Record, error) {
				return style.Record{"scale": 5, "transition": map[string]any{"duration": 0.5}, style.ActiveStateKey: "bogus"}, nil
			}),
		},
		Meta: Meta{Directives: map[string]style.Record{
			"rest_middle": {"transition": map[string]any{"duration": 0}},
		}},
	}

	c := NewCompositor()

	first, err := c.ComposeOne(tgt, "rest", nil, nil)
	require.NoError(t, err)
	require.Equal(t, style.Record{"opacity": 1, "scale": 2, "borderRadius": "20%", style.ActiveStateKey: "rest"}, first.Record)

	second, err := c.ComposeOne(tgt, "middle", nil, nil)
	require.NoError(t, err)
	require.Equal(t, "middle", second.ActiveState)
	require.Equal(t, "middle", second.Record[style.ActiveStateKey])
	require.Equal(t, 5, second.Record["scale"])
	require.Equal(t, map[string]any{"duration": 0}, second.Record["transition"])
}

func TestComposeOneWithoutDirectiveEqualsBaselinePlusActive(t *testing.T) {
	t.Parallel()

	baseline := style.Record{"x": 0, "y": 0}
	active := style.Record{"y": 10}
	tgt := &Target{
		Name: "card",
		States: map[string]style.Raw{
			DefaultState: style.Static(baseline),
			"up":         style.Static(active),
			"down":       style.Static(style.Record{"y": -10}),
		},
	}

	c := NewCompositor()
	_, err := c.ComposeOne(tgt, "down", nil, nil)
	require.NoError(t, err)
	got, err := c.ComposeOne(tgt, "up", nil, nil)
	require.NoError(t, err)

	want := style.Merge(baseline, active, style.Record{style.ActiveStateKey: "up"})
	require.Equal(t, want, got.Record)
}

func TestComposeOneWithoutDefaultTagsOnlyState(t *testing.T) {
	t.Parallel()

	tgt := &Target{Name: "bare", States: map[string]style.Raw{"on": style.Static(nil)}}
	got, err := NewCompositor().ComposeOne(tgt, "on", nil, nil)
	require.NoError(t, err)
	require.Equal(t, style.Record{style.ActiveStateKey: "on"}, got.Record)
}

func TestComposeOneUnknownStateFailsAndKeepsHistory(t *testing.T) {
	t.Parallel()

	tgt := &Target{Name: "logo", States: map[string]style.Raw{"a": style.Static(style.Record{})}}
	c := NewCompositor()

	_, err := c.ComposeOne(tgt, "a", nil, nil)
	require.NoError(t, err)

	_, err = c.ComposeOne(tgt, "missing", nil, nil)
	var unknown *cadenceerrors.UnknownStateError
	require.ErrorAs(t, err, &unknown)
	require.Equal(t, "missing", unknown.State)
	require.Equal(t, "a", c.History().Previous("logo"))

	_, err = c.ComposeOne(tgt, "", nil, nil)
	require.ErrorAs(t, err, &unknown)
}

func TestComposeOneRecordsHistoryEvenWhenEmpty(t *testing.T) {
	t.Parallel()

	tgt := &Target{
		Name: "bg",
		States: map[string]style.Raw{
			"measured": style.Computed(func(deps style.Dependencies) (style.Record, error) {
				_, err := deps.Require("ctnRef")
				return nil, err
			}),
		},
	}
	c := NewCompositor()

	got, err := c.ComposeOne(tgt, "measured", style.Dependencies{}, nil)
	require.NoError(t, err)
	require.Equal(t, style.Record{style.ActiveStateKey: "measured"}, got.Record)
	require.Equal(t, "measured", c.History().Previous("bg"))
}

func TestHistoryIsPerCompositor(t *testing.T) {
	t.Parallel()

	shared := &Target{
		Name:   "logo",
		States: map[string]style.Raw{"a": style.Static(nil), "b": style.Static(nil)},
		Meta:   Meta{Directives: map[string]style.Record{"a_b": {"instant": true}}},
	}

	one := NewCompositor()
	two := NewCompositor()

	_, err := one.ComposeOne(shared, "a", nil, nil)
	require.NoError(t, err)

	got, err := two.ComposeOne(shared, "b", nil, nil)
	require.NoError(t, err)
	require.NotContains(t, got.Record, "instant")

	got, err = one.ComposeOne(shared, "b", nil, nil)
	require.NoError(t, err)
	require.Equal(t, true, got.Record["instant"])
}

func TestHistorySnapshotRestore(t *testing.T) {
	t.Parallel()

	h := NewHistory()
	h.Record("logo", "a")
	snap := h.Snapshot()
	h.Record("logo", "b")

	restored := NewHistory()
	restored.Restore(snap)
	require.Equal(t, "a", restored.Previous("logo"))

	restored.Reset()
	require.Empty(t, restored.Previous("logo"))

	var nilHistory *History
	require.Empty(t, nilHistory.Previous("logo"))
}
