package model

import (
	"time"

	"github.com/alexisbeaulieu97/cadence/internal/domain/target"
)

const (
	// StatusPending indicates a controller has not been started yet.
	StatusPending = "pending"
	// StatusRunning indicates a controller is animating towards its style.
	StatusRunning = "running"
	// StatusSettled marks a controller that reached its final style.
	StatusSettled = "settled"
	// StatusFailed marks a controller that returned an error.
	StatusFailed = "failed"
)

// StopReason explains why an Advance call stopped auto-chaining.
type StopReason string

const (
	// StopHold means the caller asked for a single keyframe without cursor movement.
	StopHold StopReason = "hold"
	// StopCeiling means a forward run reached the configured upper bound.
	StopCeiling StopReason = "ceiling"
	// StopFloor means a backward run went below the configured lower bound.
	StopFloor StopReason = "floor"
	// StopLimit means the per-call keyframe budget was used up.
	StopLimit StopReason = "max_keyframes"
	// StopCancelled means the context was cancelled between keyframes.
	StopCancelled StopReason = "cancelled"
	// StopError means composition or dispatch failed.
	StopError StopReason = "error"
)

// DispatchResult captures the outcome of driving one controller.
type DispatchResult struct {
	Target      string
	ActiveState string
	Status      string
	Message     string
	Error       error
	Duration    time.Duration
	Timestamp   time.Time
}

// Keyframe is one composed and dispatched step of a sequence.
type Keyframe struct {
	Cursor   int
	State    string
	Styles   map[string]target.FinalStyle
	Results  []DispatchResult
	Duration time.Duration
}

// Run summarises a single Advance call.
type Run struct {
	Direction   string
	StartCursor int
	EndCursor   int
	Keyframes   []Keyframe
	Stop        StopReason
	Duration    time.Duration
}

// Failed returns the dispatch results that did not settle, across all keyframes.
func (r *Run) Failed() []DispatchResult {
	if r == nil {
		return nil
	}
	var out []DispatchResult
	for _, kf := range r.Keyframes {
		for _, res := range kf.Results {
			if res.Status == StatusFailed {
				out = append(out, res)
			}
		}
	}
	return out
}

// Last returns the most recent keyframe, or nil when none was dispatched.
func (r *Run) Last() *Keyframe {
	if r == nil || len(r.Keyframes) == 0 {
		return nil
	}
	return &r.Keyframes[len(r.Keyframes)-1]
}
