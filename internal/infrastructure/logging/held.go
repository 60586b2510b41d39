package logging

import (
	"context"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/alexisbeaulieu97/cadence/internal/ports"
)

const defaultHoldLimit = 1000

// Held is a ports.Logger that queues entries while another writer owns the
// terminal. Release replays them, in order, into the real logger. Entries
// below the minimum level are never queued, and once the queue is full the
// oldest entries are dropped and counted.
type Held struct {
	queue  *heldQueue
	fields []interface{}
}

type heldQueue struct {
	mu      sync.Mutex
	min     zerolog.Level
	limit   int
	dropped int
	entries []heldEntry
}

type heldEntry struct {
	ctx    context.Context
	level  zerolog.Level
	msg    string
	fields []interface{}
}

// NewHeld returns a Held logger keeping at most limit entries at or above
// level. A non-positive limit keeps 1000.
func NewHeld(level string, limit int) (*Held, error) {
	threshold := zerolog.InfoLevel
	if level != "" {
		parsed, err := zerolog.ParseLevel(strings.ToLower(level))
		if err != nil {
			return nil, err
		}
		threshold = parsed
	}
	if limit <= 0 {
		limit = defaultHoldLimit
	}
	return &Held{queue: &heldQueue{min: threshold, limit: limit}}, nil
}

func (h *Held) Debug(ctx context.Context, msg string, fields ...interface{}) {
	h.hold(ctx, zerolog.DebugLevel, msg, fields)
}

func (h *Held) Info(ctx context.Context, msg string, fields ...interface{}) {
	h.hold(ctx, zerolog.InfoLevel, msg, fields)
}

func (h *Held) Warn(ctx context.Context, msg string, fields ...interface{}) {
	h.hold(ctx, zerolog.WarnLevel, msg, fields)
}

func (h *Held) Error(ctx context.Context, msg string, fields ...interface{}) {
	h.hold(ctx, zerolog.ErrorLevel, msg, fields)
}

// With shares the queue with the parent.
func (h *Held) With(fields ...interface{}) ports.Logger {
	return &Held{queue: h.queue, fields: append(append([]interface{}{}, h.fields...), fields...)}
}

func (h *Held) hold(ctx context.Context, level zerolog.Level, msg string, fields []interface{}) {
	q := h.queue
	if level < q.min {
		return
	}
	entry := heldEntry{
		ctx:    ctx,
		level:  level,
		msg:    msg,
		fields: append(append([]interface{}{}, h.fields...), fields...),
	}

	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.entries) >= q.limit {
		q.entries = append(q.entries[1:], entry)
		q.dropped++
		return
	}
	q.entries = append(q.entries, entry)
}

// Pending reports how many entries wait for Release.
func (h *Held) Pending() int {
	h.queue.mu.Lock()
	defer h.queue.mu.Unlock()
	return len(h.queue.entries)
}

// Release replays queued entries into sink and empties the queue. A warning
// naming the dropped count comes first when the queue overflowed. It returns
// the number of entries replayed.
func (h *Held) Release(sink ports.Logger) int {
	if sink == nil {
		return 0
	}
	q := h.queue
	q.mu.Lock()
	entries, dropped := q.entries, q.dropped
	q.entries, q.dropped = nil, 0
	q.mu.Unlock()

	if dropped > 0 {
		sink.Warn(context.Background(), "held log entries dropped", "dropped", dropped)
	}
	for _, e := range entries {
		switch e.level {
		case zerolog.DebugLevel:
			sink.Debug(e.ctx, e.msg, e.fields...)
		case zerolog.WarnLevel:
			sink.Warn(e.ctx, e.msg, e.fields...)
		case zerolog.ErrorLevel:
			sink.Error(e.ctx, e.msg, e.fields...)
		default:
			sink.Info(e.ctx, e.msg, e.fields...)
		}
	}
	return len(entries)
}

var _ ports.Logger = (*Held)(nil)
