package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/atomic"

	"github.com/alexisbeaulieu97/cadence/internal/controller"
	"github.com/alexisbeaulieu97/cadence/internal/domain/chain"
	"github.com/alexisbeaulieu97/cadence/internal/domain/style"
	"github.com/alexisbeaulieu97/cadence/internal/infrastructure/logging"
	"github.com/alexisbeaulieu97/cadence/internal/model"
	"github.com/alexisbeaulieu97/cadence/internal/ports"
	cadenceerrors "github.com/alexisbeaulieu97/cadence/pkg/errors"
)

// DefaultCeiling is the forward auto-chain bound used when none is configured.
const DefaultCeiling = 10

// Request describes one Advance call.
type Request struct {
	Direction Direction
	// State, when set, overrides state selection for the first keyframe only.
	State string
	// MaxKeyframes caps the number of keyframes in this call. Zero means no cap
	// beyond the ceiling and floor.
	MaxKeyframes int
}

// Driver owns the sequence cursor and drives controllers through keyframes.
type Driver struct {
	chain       *chain.Chain
	controllers controller.Map
	coordinator *chain.Coordinator
	deps        style.Dependencies

	ceiling  int
	floor    int
	parallel int

	logger  ports.Logger
	events  ports.EventPublisher
	metrics ports.MetricsCollector

	cursor *atomic.Int64
	mu     sync.Mutex
}

// Option configures a Driver.
type Option func(*Driver)

// WithLogger injects a logger.
func WithLogger(logger ports.Logger) Option {
	return func(d *Driver) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// WithEvents injects an event publisher.
func WithEvents(events ports.EventPublisher) Option {
	return func(d *Driver) { d.events = events }
}

// WithMetrics injects a metrics collector.
func WithMetrics(metrics ports.MetricsCollector) Option {
	return func(d *Driver) { d.metrics = metrics }
}

// WithDependencies sets the global dependency context.
func WithDependencies(deps style.Dependencies) Option {
	return func(d *Driver) { d.deps = deps }
}

// WithCeiling sets the forward bound. Values <= 0 keep DefaultCeiling.
func WithCeiling(ceiling int) Option {
	return func(d *Driver) {
		if ceiling > 0 {
			d.ceiling = ceiling
		}
	}
}

// WithFloor sets the backward bound.
func WithFloor(floor int) Option {
	return func(d *Driver) { d.floor = floor }
}

// WithParallelism limits how many controllers run at once. Zero is unlimited.
func WithParallelism(parallel int) Option {
	return func(d *Driver) { d.parallel = parallel }
}

// WithStartCursor positions the cursor before the first Advance.
func WithStartCursor(cursor int) Option {
	return func(d *Driver) { d.cursor.Store(int64(cursor)) }
}

// NewDriver validates the chain and builds a driver with a fresh history.
func NewDriver(ch *chain.Chain, controllers controller.Map, opts ...Option) (*Driver, error) {
	if err := ch.Validate(); err != nil {
		return nil, err
	}
	d := &Driver{
		chain:       ch,
		controllers: controllers,
		coordinator: chain.NewCoordinator(nil),
		ceiling:     DefaultCeiling,
		logger:      logging.Discard,
		cursor:      atomic.NewInt64(0),
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.floor >= d.ceiling {
		return nil, fmt.Errorf("floor %d must be below ceiling %d", d.floor, d.ceiling)
	}
	return d, nil
}

// Chain returns the chain this driver sequences.
func (d *Driver) Chain() *chain.Chain { return d.chain }

// Cursor returns the current sequence position. Safe to call during a run.
func (d *Driver) Cursor() int { return int(d.cursor.Load()) }

// Ceiling returns the cursor value that stops forward runs.
func (d *Driver) Ceiling() int { return d.ceiling }

// Floor returns the lowest cursor a backward run dispatches.
func (d *Driver) Floor() int { return d.floor }

// SetDependencies replaces the global dependency context for later keyframes.
func (d *Driver) SetDependencies(deps style.Dependencies) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.deps = deps
}

// Advance composes and dispatches keyframes until the request's direction,
// the configured bounds, MaxKeyframes or ctx stop it. Every controller of a
// keyframe settles before the next keyframe is composed. Calls are serialized.
// A step that leaves the cursor at or above the ceiling ends the run in either
// direction.
//
// The returned Run is non-nil whenever at least the missing-controller check
// passed, including on errors, so callers can see how far the run got.
func (d *Driver) Advance(ctx context.Context, req Request) (*model.Run, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if missing := d.controllers.Missing(d.chain.TargetNames()); len(missing) > 0 {
		return nil, cadenceerrors.NewMissingControllerError(missing[0])
	}

	started := time.Now()
	run := &model.Run{Direction: req.Direction.String(), StartCursor: d.Cursor()}
	d.publish(ctx, ports.EventSequenceStarted, map[string]interface{}{
		"chain":     d.chain.Name,
		"direction": run.Direction,
		"cursor":    run.StartCursor,
		"state":     req.State,
	})

	finish := func(reason model.StopReason, err error) (*model.Run, error) {
		run.Stop = reason
		run.EndCursor = d.Cursor()
		run.Duration = time.Since(started)
		fields := map[string]interface{}{
			"chain":     d.chain.Name,
			"reason":    string(reason),
			"cursor":    run.EndCursor,
			"keyframes": len(run.Keyframes),
		}
		if err != nil {
			fields["error"] = err.Error()
		}
		d.publish(ctx, ports.EventSequenceStopped, fields)
		return run, err
	}

	explicit := req.State
	for {
		if err := ctx.Err(); err != nil {
			return finish(model.StopCancelled, err)
		}

		cursor := d.Cursor()
		kf, err := d.keyframe(ctx, cursor, explicit)
		if kf != nil {
			run.Keyframes = append(run.Keyframes, *kf)
		}
		if err != nil {
			return finish(model.StopError, err)
		}
		explicit = ""

		if req.Direction == Hold {
			return finish(model.StopHold, nil)
		}

		next := cursor + 1
		if req.Direction == Backward {
			next = cursor - 1
		}
		d.cursor.Store(int64(next))
		d.gauge(ctx)

		switch {
		case next >= d.ceiling:
			return finish(model.StopCeiling, nil)
		case req.Direction == Backward && next < d.floor:
			return finish(model.StopFloor, nil)
		case req.MaxKeyframes > 0 && len(run.Keyframes) >= req.MaxKeyframes:
			return finish(model.StopLimit, nil)
		}
	}
}

// keyframe composes the chain at cursor and dispatches the ordinary targets.
func (d *Driver) keyframe(ctx context.Context, cursor int, explicit string) (*model.Keyframe, error) {
	started := time.Now()
	d.logger.Debug(ctx, "start key frame", "chain", d.chain.Name, "cursor", cursor, "state", explicit)

	styles, err := d.coordinator.ComposeAll(d.chain, d.deps, cursor, explicit)
	if err != nil {
		d.logger.Error(ctx, "compose failed", "chain", d.chain.Name, "cursor", cursor, "error", err)
		d.keyframeDone(ctx, cursor, model.StatusFailed, time.Since(started), err)
		return nil, err
	}

	d.publish(ctx, ports.EventKeyframeStarted, map[string]interface{}{
		"chain":   d.chain.Name,
		"cursor":  cursor,
		"state":   explicit,
		"targets": len(styles),
	})

	results, err := d.dispatch(ctx, styles)
	kf := &model.Keyframe{
		Cursor:   cursor,
		State:    explicit,
		Styles:   styles,
		Results:  results,
		Duration: time.Since(started),
	}

	if err != nil {
		d.keyframeDone(ctx, cursor, model.StatusFailed, kf.Duration, err)
		return kf, err
	}
	d.logger.Info(ctx, "keyframe settled", "chain", d.chain.Name, "cursor", cursor, "duration", kf.Duration)
	d.keyframeDone(ctx, cursor, model.StatusSettled, kf.Duration, nil)
	return kf, nil
}

func (d *Driver) keyframeDone(ctx context.Context, cursor int, status string, elapsed time.Duration, err error) {
	if d.metrics != nil {
		labels := map[string]string{"chain": d.chain.Name}
		d.metrics.ObserveHistogram(ctx, ports.MetricKeyframeDurationSeconds, elapsed.Seconds(), labels)
		d.metrics.IncCounter(ctx, ports.MetricKeyframesTotal, map[string]string{"chain": d.chain.Name, "status": status})
	}

	eventType := ports.EventKeyframeSettled
	fields := map[string]interface{}{"chain": d.chain.Name, "cursor": cursor, "duration_ms": elapsed.Milliseconds()}
	if err != nil {
		eventType = ports.EventKeyframeFailed
		fields["error"] = err.Error()
	}
	d.publish(ctx, eventType, fields)
}

func (d *Driver) gauge(ctx context.Context) {
	if d.metrics != nil {
		d.metrics.SetGauge(ctx, ports.MetricCursor, float64(d.Cursor()), map[string]string{"chain": d.chain.Name})
	}
}

func (d *Driver) publish(ctx context.Context, eventType string, data map[string]interface{}) {
	if d.events == nil {
		return
	}
	if err := d.events.Publish(ctx, ports.Event{Type: eventType, Data: data}); err != nil {
		d.logger.Warn(ctx, "failed to publish event", "event_type", eventType, "error", err)
	}
}

// Snapshot captures the cursor and per-target history.
func (d *Driver) Snapshot() *ports.Snapshot {
	d.mu.Lock()
	defer d.mu.Unlock()
	return &ports.Snapshot{
		Chain:     d.chain.Name,
		Cursor:    d.Cursor(),
		History:   d.coordinator.Compositor().History().Snapshot(),
		UpdatedAt: time.Now().UTC(),
	}
}

// Restore replaces the cursor and history with a snapshot of the same chain.
func (d *Driver) Restore(snapshot *ports.Snapshot) error {
	if snapshot == nil {
		return nil
	}
	if snapshot.Chain != "" && snapshot.Chain != d.chain.Name {
		return fmt.Errorf("snapshot belongs to chain %q, not %q", snapshot.Chain, d.chain.Name)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.cursor.Store(int64(snapshot.Cursor))
	d.coordinator.Compositor().History().Restore(snapshot.History)
	return nil
}

// Reset rewinds the cursor to zero and forgets every previous state.
func (d *Driver) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.cursor.Store(0)
	d.coordinator.Compositor().History().Reset()
}
