package controller

import (
	"context"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/charmbracelet/harmonica"

	"github.com/alexisbeaulieu97/cadence/internal/domain/style"
	"github.com/alexisbeaulieu97/cadence/internal/domain/target"
)

const (
	defaultFPS       = 60
	defaultStiffness = 170.0
	defaultDamping   = 26.0
	defaultMaxFrames = 600
	settleEpsilon    = 0.001
)

// Frame is one simulated step of a spring animation.
type Frame struct {
	Target  string
	State   string
	Index   int
	Values  map[string]float64
	Settled bool
}

// SpringOptions configures a Spring controller.
type SpringOptions struct {
	FPS       int
	MaxFrames int
	// Realtime sleeps one frame interval between steps. Tests leave it off.
	Realtime bool
	OnFrame  func(Frame)
}

// Spring animates every numeric property of a final style with a damped
// spring. Non-numeric properties are applied immediately. The transition
// record's stiffness and damping tune the spring; an explicit zero duration
// jumps straight to the target values.
type Spring struct {
	name string
	opts SpringOptions

	mu       sync.Mutex
	position map[string]float64
	velocity map[string]float64
	applied  style.Record
}

// NewSpring creates a spring controller for the named target.
func NewSpring(name string, opts SpringOptions) *Spring {
	if opts.FPS <= 0 {
		opts.FPS = defaultFPS
	}
	if opts.MaxFrames <= 0 {
		opts.MaxFrames = defaultMaxFrames
	}
	return &Spring{
		name:     name,
		opts:     opts,
		position: make(map[string]float64),
		velocity: make(map[string]float64),
		applied:  style.Record{},
	}
}

// Values returns a copy of the current numeric positions.
func (s *Spring) Values() map[string]float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]float64, len(s.position))
	for k, v := range s.position {
		out[k] = v
	}
	return out
}

// Applied returns the non-numeric properties set by the last Start.
func (s *Spring) Applied() style.Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.applied.Clone()
}

// Start implements Controller.
func (s *Spring) Start(ctx context.Context, final target.FinalStyle) error {
	tr, _, err := final.Record.Transition()
	if err != nil {
		return err
	}

	goals := s.apply(final.Record)
	keys := make([]string, 0, len(goals))
	for k := range goals {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	if tr.Instant() {
		s.mu.Lock()
		for _, k := range keys {
			s.position[k] = goals[k]
			s.velocity[k] = 0
		}
		s.mu.Unlock()
		s.emit(final.ActiveState, 0, true)
		return nil
	}

	spring := newHarmonicaSpring(s.opts.FPS, tr)
	var ticker *time.Ticker
	if s.opts.Realtime {
		ticker = time.NewTicker(time.Second / time.Duration(s.opts.FPS))
		defer ticker.Stop()
	}

	for frame := 1; frame <= s.opts.MaxFrames; frame++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		settled := s.step(spring, keys, goals)
		s.emit(final.ActiveState, frame, settled)
		if settled {
			return nil
		}

		if ticker != nil {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-ticker.C:
			}
		}
	}

	// Frame budget exhausted: snap to the goal.
	s.mu.Lock()
	for _, k := range keys {
		s.position[k] = goals[k]
		s.velocity[k] = 0
	}
	s.mu.Unlock()
	s.emit(final.ActiveState, s.opts.MaxFrames+1, true)
	return nil
}

func (s *Spring) apply(record style.Record) map[string]float64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	goals := make(map[string]float64)
	s.applied = style.Record{}
	for key, value := range record {
		if key == style.TransitionKey {
			continue
		}
		if n, ok := style.Number(value); ok {
			goals[key] = n
			if _, seen := s.position[key]; !seen {
				// First sighting starts at rest on the goal.
				s.position[key] = n
			}
			continue
		}
		s.applied[key] = value
	}
	return goals
}

func (s *Spring) step(spring harmonica.Spring, keys []string, goals map[string]float64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	settled := true
	for _, k := range keys {
		pos, vel := spring.Update(s.position[k], s.velocity[k], goals[k])
		if math.Abs(pos-goals[k]) < settleEpsilon && math.Abs(vel) < settleEpsilon {
			pos, vel = goals[k], 0
		} else {
			settled = false
		}
		s.position[k] = pos
		s.velocity[k] = vel
	}
	return settled
}

func (s *Spring) emit(state string, index int, settled bool) {
	if s.opts.OnFrame == nil {
		return
	}
	s.opts.OnFrame(Frame{
		Target:  s.name,
		State:   state,
		Index:   index,
		Values:  s.Values(),
		Settled: settled,
	})
}

// newHarmonicaSpring maps stiffness/damping (unit mass) onto harmonica's
// angular frequency and damping ratio.
func newHarmonicaSpring(fps int, tr style.Transition) harmonica.Spring {
	stiffness := tr.Stiffness
	if stiffness <= 0 {
		stiffness = defaultStiffness
	}
	damping := tr.Damping
	if damping <= 0 {
		damping = defaultDamping
	}
	frequency := math.Sqrt(stiffness)
	ratio := damping / (2 * frequency)
	return harmonica.NewSpring(harmonica.FPS(fps), frequency, ratio)
}
