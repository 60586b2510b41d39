package model

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRunFailedCollectsAcrossKeyframes(t *testing.T) {
	t.Parallel()

	run := &Run{Keyframes: []Keyframe{
		{Cursor: 0, Results: []DispatchResult{{Target: "a", Status: StatusSettled}, {Target: "b", Status: StatusFailed, Error: errors.New("x")}}},
		{Cursor: 1, Results: []DispatchResult{{Target: "a", Status: StatusFailed}}},
	}}

	failed := run.Failed()
	require.Len(t, failed, 2)
	require.Equal(t, "b", failed[0].Target)
	require.Equal(t, "a", failed[1].Target)
}

func TestRunLast(t *testing.T) {
	t.Parallel()

	var nilRun *Run
	require.Nil(t, nilRun.Last())
	require.Nil(t, nilRun.Failed())
	require.Nil(t, (&Run{}).Last())

	run := &Run{Keyframes: []Keyframe{{Cursor: 0}, {Cursor: 1}}}
	require.Equal(t, 1, run.Last().Cursor)
}
